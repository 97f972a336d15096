package chromemdb_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/vecbridge/internal/chromemdb"
)

// seedStore persists collections named names, each holding one document.
func seedStore(t *testing.T, params chromemdb.ClientParams, names ...string) {
	t.Helper()
	ctx := context.Background()

	client, err := chromemdb.NewClient(params, zap.NewNop())
	require.NoError(t, err)
	for _, name := range names {
		coll, err := client.GetOrCreateCollection(ctx, name)
		require.NoError(t, err)
		require.NoError(t, coll.Upsert(ctx, []chromemdb.Item{{ID: name, Text: name, Vector: []float32{1, 1}}}))
	}
	require.NoError(t, client.Close())
}

func TestInspect_Healthy(t *testing.T) {
	dir := t.TempDir()
	params := chromemdb.ClientParams{URL: dir}
	seedStore(t, params, "alpha", "beta")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "notes"), 0o700))

	report, err := chromemdb.Inspect(params)
	require.NoError(t, err)

	assert.Equal(t, chromemdb.StatusHealthy, report.Status)
	assert.Equal(t, filepath.Clean(dir), report.Path)
	require.Len(t, report.Collections, 2)
	assert.Empty(t, report.Quarantined)

	byName := map[string]chromemdb.CollectionDir{}
	for _, c := range report.Collections {
		byName[c.Name] = c
	}
	assert.Equal(t, chromemdb.CollectionDirName("alpha"), byName["alpha"].Dir)
	assert.Equal(t, 1, byName["alpha"].Documents)
	assert.Equal(t, chromemdb.StateHealthy, byName["beta"].State)
}

func TestInspect_CorruptAndEmpty(t *testing.T) {
	dir := t.TempDir()
	params := chromemdb.ClientParams{URL: dir}
	seedStore(t, params, "alpha")

	broken := filepath.Join(dir, chromemdb.CollectionDirName("alpha"))
	require.NoError(t, os.Remove(filepath.Join(broken, "00000000.gob")))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "0badcafe"), 0o700))

	report, err := chromemdb.Inspect(params)
	require.NoError(t, err)

	assert.Equal(t, chromemdb.StatusDegraded, report.Status)
	require.Len(t, report.Collections, 2)
	assert.Equal(t, "0badcafe", report.Collections[0].Dir)
	assert.Equal(t, chromemdb.StateEmpty, report.Collections[0].State)
	assert.Equal(t, chromemdb.StateCorrupt, report.Collections[1].State)
	assert.Equal(t, 1, report.Collections[1].Documents)
}

func TestInspect_InMemory(t *testing.T) {
	_, err := chromemdb.Inspect(chromemdb.ClientParams{URL: "memory://"})
	assert.ErrorIs(t, err, chromemdb.ErrNotPersistent)
}

func TestRecoverMetadata_InPlace(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	params := chromemdb.ClientParams{URL: dir}
	seedStore(t, params, "alpha")

	collDir := filepath.Join(dir, chromemdb.CollectionDirName("alpha"))
	require.NoError(t, os.Remove(filepath.Join(collDir, "00000000.gob")))

	repaired, err := chromemdb.RecoverMetadata(params, "alpha")
	require.NoError(t, err)
	assert.Equal(t, collDir, repaired)

	again, err := chromemdb.RecoverMetadata(params, "alpha")
	require.NoError(t, err)
	assert.Empty(t, again, "existing metadata is left alone")

	client, err := chromemdb.NewClient(params, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	coll, err := client.GetCollection(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, 1, coll.Count())
}

func TestRecoverMetadata_Errors(t *testing.T) {
	params := chromemdb.ClientParams{URL: t.TempDir()}

	_, err := chromemdb.RecoverMetadata(params, "")
	assert.ErrorIs(t, err, chromemdb.ErrEmptyCollectionName)

	_, err = chromemdb.RecoverMetadata(params, "never-created")
	assert.ErrorIs(t, err, chromemdb.ErrCollectionNotFound)

	_, err = chromemdb.RecoverMetadata(chromemdb.ClientParams{}, "alpha")
	assert.ErrorIs(t, err, chromemdb.ErrNotPersistent)
}

func TestQuarantineRecoverRestore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	params := chromemdb.ClientParams{URL: dir}
	seedStore(t, params, "alpha", "beta")

	alphaDir := chromemdb.CollectionDirName("alpha")
	require.NoError(t, os.Remove(filepath.Join(dir, alphaDir, "00000000.gob")))

	// Opening quarantines the broken collection.
	client, err := chromemdb.NewClient(params, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	report, err := chromemdb.Inspect(params)
	require.NoError(t, err)
	assert.Equal(t, chromemdb.StatusHealthy, report.Status)
	require.Len(t, report.Quarantined, 1)
	assert.Equal(t, alphaDir, report.Quarantined[0].Dir)
	assert.Equal(t, chromemdb.StateCorrupt, report.Quarantined[0].State)

	err = chromemdb.RestoreQuarantined(params, alphaDir)
	assert.ErrorContains(t, err, "recover it first")

	repaired, err := chromemdb.RecoverMetadata(params, "alpha")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".quarantine", alphaDir), repaired)

	require.NoError(t, chromemdb.RestoreQuarantined(params, alphaDir))

	client, err = chromemdb.NewClient(params, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	names, err := client.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)
}

func TestRestoreQuarantined_Errors(t *testing.T) {
	params := chromemdb.ClientParams{URL: t.TempDir()}

	err := chromemdb.RestoreQuarantined(params, "../etc")
	assert.ErrorIs(t, err, chromemdb.ErrInvalidCollectionDir)

	err = chromemdb.RestoreQuarantined(params, "deadbeef")
	assert.ErrorContains(t, err, "quarantined collection deadbeef")
}

func TestRecoverMetadata_Compressed(t *testing.T) {
	ctx := context.Background()
	params := chromemdb.ClientParams{URL: "file://" + t.TempDir() + "?compress=true"}
	seedStore(t, params, "zipped")

	report, err := chromemdb.Inspect(params)
	require.NoError(t, err)
	require.Len(t, report.Collections, 1)
	assert.Equal(t, "zipped", report.Collections[0].Name)

	collDir := filepath.Join(report.Path, chromemdb.CollectionDirName("zipped"))
	require.NoError(t, os.Remove(filepath.Join(collDir, "00000000.gob.gz")))

	_, err = chromemdb.RecoverMetadata(params, "zipped")
	require.NoError(t, err)

	client, err := chromemdb.NewClient(params, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	coll, err := client.GetCollection(ctx, "zipped")
	require.NoError(t, err)
	assert.Equal(t, 1, coll.Count())
}
