package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/leadgrid/harvester/internal/config"
)

func baseConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load(viper.New(), "")
	require.NoError(t, err)
	return cfg
}

func TestNewApp_SQLiteBackend(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	cfg.Logging.Development = false
	cfg.Store.SQLite.Path = filepath.Join(t.TempDir(), "pipeline.db")

	a, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.GetLogger())
	require.NotNil(t, a.GetStore())

	// The schema is ready: listing an empty backlog succeeds.
	urls, err := a.GetStore().FetchPending(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, urls)
}

func TestNewApp_APIBackend(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	cfg.Logging.Development = false
	cfg.Store.Backend = config.BackendAPI
	cfg.Store.API.BaseURL = "http://localhost:8000"

	a, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.GetStore())
}

func TestNewApp_UnknownBackend(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	cfg.Store.Backend = "dynamo"

	_, err := NewApp(context.Background(), cfg)
	require.Error(t, err)
}
