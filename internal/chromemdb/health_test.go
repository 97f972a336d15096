package chromemdb_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fyrsmithlabs/vecbridge/internal/chromemdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_Health(t *testing.T) {
	ctx := context.Background()

	t.Run("in memory", func(t *testing.T) {
		client, err := chromemdb.NewClient(chromemdb.ClientParams{}, zap.NewNop())
		require.NoError(t, err)

		assert.NoError(t, client.Health(ctx))
		require.NoError(t, client.Close())
		assert.ErrorIs(t, client.Health(ctx), chromemdb.ErrClientClosed)
	})

	t.Run("persistent directory removed", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "db")
		client, err := chromemdb.NewClient(chromemdb.ClientParams{URL: dir}, zap.NewNop())
		require.NoError(t, err)
		defer client.Close()

		assert.NoError(t, client.Health(ctx))

		require.NoError(t, os.RemoveAll(dir))
		assert.ErrorIs(t, client.Health(ctx), os.ErrNotExist)
	})
}
