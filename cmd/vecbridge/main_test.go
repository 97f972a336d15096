package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/vecbridge/internal/chromemdb"
	"github.com/fyrsmithlabs/vecbridge/internal/vectorstore"
)

const testDataset = "5a8e0c3e-1f2b-4c5d-9e6f-7a8b9c0d1e2f"

// setupEnv points the CLI at a fresh on-disk store and quiets logging.
func setupEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	store := filepath.Join(t.TempDir(), "vectors")
	t.Setenv("HOME", home)
	t.Setenv("VECTORSTORE_URL", store)
	t.Setenv("VECTORSTORE_TYPE", "chromem")
	t.Setenv("OBSERVABILITY_LOG_LEVEL", "error")
	return home
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := execute(t, stdin, args...)
	require.NoError(t, err, "vecbridge %s", strings.Join(args, " "))
	return out
}

const twoDocs = `[
  {"page_content": "alpha", "metadata": {"doc_id": "a", "dataset_id": "ds"}, "vector": [1, 0, 0]},
  {"page_content": "beta", "metadata": {"doc_id": "b", "dataset_id": "ds"}, "vector": [0, 1, 0]}
]`

func search(t *testing.T, vector string, extra ...string) []vectorstore.Document {
	t.Helper()
	args := append([]string{"search", "--dataset", testDataset, "--vector", vector}, extra...)
	var docs []vectorstore.Document
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, "", args...)), &docs))
	return docs
}

func exists(t *testing.T, id string) bool {
	t.Helper()
	var resp map[string]bool
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, "", "exists", "--dataset", testDataset, id)), &resp))
	return resp["exists"]
}

func TestAddSearchDelete(t *testing.T) {
	setupEnv(t)

	var added AddResult
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, twoDocs, "add", "--dataset", testDataset)), &added))
	require.Len(t, added.IDs, 2)
	assert.NotEqual(t, added.IDs[0], added.IDs[1])

	docs := search(t, "[1, 0, 0]", "--top-k", "1")
	require.Len(t, docs, 1)
	assert.Equal(t, "alpha", docs[0].PageContent)
	assert.Equal(t, "a", docs[0].Metadata["doc_id"])

	assert.True(t, exists(t, added.IDs[0]))
	assert.False(t, exists(t, "no-such-id"))

	mustExecute(t, "", "delete-ids", "--dataset", testDataset, added.IDs[0])
	assert.False(t, exists(t, added.IDs[0]))
	assert.True(t, exists(t, added.IDs[1]))
}

func TestAddTwiceStoresDuplicates(t *testing.T) {
	setupEnv(t)

	mustExecute(t, twoDocs, "add", "--dataset", testDataset)
	mustExecute(t, twoDocs, "add", "--dataset", testDataset)

	assert.Len(t, search(t, "[1, 0, 0]", "--top-k", "10"), 4)
}

func TestDeleteMeta(t *testing.T) {
	setupEnv(t)
	mustExecute(t, twoDocs, "add", "--dataset", testDataset)

	mustExecute(t, "", "delete-meta", "--dataset", testDataset, "doc_id", "a")

	docs := search(t, "[1, 0, 0]")
	require.Len(t, docs, 1)
	assert.Equal(t, "beta", docs[0].PageContent)
}

func TestCreateReportsCollection(t *testing.T) {
	setupEnv(t)

	var created CreateResult
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, twoDocs, "create", "--dataset", testDataset)), &created))

	assert.Equal(t, "vector_index_5a8e0c3e_1f2b_4c5d_9e6f_7a8b9c0d1e2f_node", created.Collection)
	assert.Equal(t, 2, created.Documents)

	ds := vectorstore.Dataset{ID: testDataset, IndexStruct: created.IndexStruct}
	is, err := ds.IndexStructDict()
	require.NoError(t, err)
	assert.Equal(t, vectorstore.VectorTypeChromem, is.Type)
	assert.Equal(t, created.Collection, is.VectorStore.ClassPrefix)

	// An explicit index structure keeps the recorded collection.
	var again CreateResult
	out := mustExecute(t, "[]", "create", "--dataset", "other", "--index-struct", created.IndexStruct)
	require.NoError(t, json.Unmarshal([]byte(out), &again))
	assert.Equal(t, created.Collection, again.Collection)
	assert.Equal(t, 0, again.Documents)
}

func TestFullTextIsEmpty(t *testing.T) {
	setupEnv(t)

	out := mustExecute(t, "", "fulltext", "--dataset", testDataset, "alpha")
	assert.JSONEq(t, "[]", out)
}

func TestDrop(t *testing.T) {
	setupEnv(t)
	var added AddResult
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, twoDocs, "add", "--dataset", testDataset)), &added))

	mustExecute(t, "", "drop", "--dataset", testDataset)

	_, err := execute(t, "", "exists", "--dataset", testDataset, added.IDs[0])
	assert.ErrorIs(t, err, chromemdb.ErrCollectionNotFound)

	// Dropping again is fine.
	mustExecute(t, "", "drop", "--dataset", testDataset)
}

func TestCommandErrors(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr string
	}{
		{"missing dataset", "", []string{"exists", "id"}, "--dataset is required"},
		{"missing vector", "", []string{"search", "--dataset", testDataset}, "--vector is required"},
		{"bad vector", "", []string{"search", "--dataset", testDataset, "--vector", "nope"}, "parsing vector"},
		{"record without vector", `[{"page_content": "x"}]`, []string{"add", "--dataset", testDataset}, "has no vector"},
		{"bad index struct", "[]", []string{"create", "--dataset", testDataset, "--index-struct", "{"}, "invalid index struct"},
		{"bad log level", "", []string{"fulltext", "--dataset", testDataset, "--log-level", "loud", "q"}, "logging config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.stdin, tt.args...)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestUnknownVectorStoreType(t *testing.T) {
	setupEnv(t)
	t.Setenv("VECTORSTORE_TYPE", "qdrant")

	_, err := execute(t, "", "exists", "--dataset", testDataset, "id")
	assert.ErrorIs(t, err, vectorstore.ErrUnknownVectorType)
}

func TestConfigFile(t *testing.T) {
	home := setupEnv(t)
	store := os.Getenv("VECTORSTORE_URL")
	// The environment overrides the file, so drop the variable entirely.
	require.NoError(t, os.Unsetenv("VECTORSTORE_URL"))

	dir := filepath.Join(home, ".config", "vecbridge")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	path := filepath.Join(dir, "config.yaml")
	yaml := "vectorstore:\n  url: " + store + "\n  index_name_prefix: Custom\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	var created CreateResult
	out := mustExecute(t, twoDocs, "create", "--config", path, "--dataset", "ds-2")
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "custom_ds_2_node", created.Collection)
}

func TestConfigFileOutsideAllowedDirs(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	_, err := execute(t, "", "fulltext", "--config", path, "--dataset", testDataset, "q")
	assert.ErrorContains(t, err, "loading config")
}

func setupApp(t *testing.T) *app {
	t.Helper()
	a := &app{}
	cmd := &cobra.Command{Use: "test"}
	cmd.SetContext(context.Background())
	require.NoError(t, a.setup(cmd, nil))
	t.Cleanup(func() { _ = a.teardown(context.Background()) })
	return a
}

func TestNewServerReportsHealth(t *testing.T) {
	setupEnv(t)
	a := setupApp(t)

	srv, client, err := a.newServer("127.0.0.1")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, client.Close())
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNewServerUnknownType(t *testing.T) {
	setupEnv(t)
	t.Setenv("VECTORSTORE_TYPE", "qdrant")
	a := setupApp(t)

	_, _, err := a.newServer("127.0.0.1")
	assert.ErrorIs(t, err, vectorstore.ErrUnknownVectorType)
}

func TestReadRecords(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		docs, embeddings, err := readRecords("", strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, docs)
		assert.Empty(t, embeddings)
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "docs.json")
		require.NoError(t, os.WriteFile(path, []byte(twoDocs), 0o600))

		docs, embeddings, err := readRecords(path, strings.NewReader("ignored"))
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "beta", docs[1].PageContent)
		assert.Equal(t, []float32{0, 1, 0}, embeddings[1])
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := readRecords(filepath.Join(t.TempDir(), "nope.json"), nil)
		assert.ErrorContains(t, err, "opening input")
	})
}

func inspectStore(t *testing.T) chromemdb.StoreReport {
	t.Helper()
	var report chromemdb.StoreReport
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, "", "store", "inspect")), &report))
	return report
}

func TestStoreInspectAndRecover(t *testing.T) {
	setupEnv(t)
	var created CreateResult
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, twoDocs, "create", "--dataset", testDataset)), &created))

	report := inspectStore(t)
	assert.Equal(t, chromemdb.StatusHealthy, report.Status)
	require.Len(t, report.Collections, 1)
	assert.Equal(t, created.Collection, report.Collections[0].Name)
	assert.Equal(t, 2, report.Collections[0].Documents)

	dir := chromemdb.CollectionDirName(created.Collection)
	require.NoError(t, os.Remove(filepath.Join(os.Getenv("VECTORSTORE_URL"), dir, "00000000.gob")))
	assert.Equal(t, chromemdb.StatusDegraded, inspectStore(t).Status)

	var recovered map[string]any
	out := mustExecute(t, "", "store", "recover", created.Collection)
	require.NoError(t, json.Unmarshal([]byte(out), &recovered))
	assert.Equal(t, true, recovered["recovered"])
	assert.Equal(t, dir, recovered["dir"])

	assert.Equal(t, chromemdb.StatusHealthy, inspectStore(t).Status)
	assert.Len(t, search(t, "[1, 0, 0]"), 2)

	// Nothing left to do.
	out = mustExecute(t, "", "store", "recover", created.Collection)
	require.NoError(t, json.Unmarshal([]byte(out), &recovered))
	assert.Equal(t, false, recovered["recovered"])
}

func TestStoreCommandErrors(t *testing.T) {
	setupEnv(t)
	mustExecute(t, twoDocs, "add", "--dataset", testDataset)

	_, err := execute(t, "", "store", "recover", "missing")
	assert.ErrorIs(t, err, chromemdb.ErrCollectionNotFound)

	_, err = execute(t, "", "store", "restore", "../escape")
	assert.ErrorIs(t, err, chromemdb.ErrInvalidCollectionDir)

	t.Setenv("VECTORSTORE_URL", "")
	_, err = execute(t, "", "store", "inspect")
	assert.ErrorIs(t, err, chromemdb.ErrNotPersistent)
}
