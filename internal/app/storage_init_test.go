package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/pos/internal/fixtures"
	"github.com/vladislavdragonenkov/pos/internal/storage/sqlite"
)

func TestOpenStore_SeedsFromLocale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "nested", "pos.db")
	cfg.SeedLocale = "en"

	store, err := OpenStore(context.Background(), cfg, nil, log.WithField("test", "storage"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	want, err := fixtures.Load("en")
	require.NoError(t, err)

	counts, err := store.Counts(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(len(want.Categories)), counts.Categories)
	require.Equal(t, int64(len(want.Products)), counts.Products)

	_, err = os.Stat(cfg.DBPath)
	require.NoError(t, err)
}

func TestOpenStore_SeedFile(t *testing.T) {
	seedFile := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(seedFile, []byte(`
categories:
  - id: tea
    label: Tea
    color: "#10b981"
products:
  - id: green
    name: Green tea
    price: 250
    category_id: tea
`), 0o600))

	cfg := DefaultConfig()
	cfg.DBPath = sqlite.MemoryPath
	cfg.SeedFile = seedFile

	store, err := OpenStore(context.Background(), cfg, nil, log.WithField("test", "storage"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	counts, err := store.Counts(context.Background())
	require.NoError(t, err)
	require.Equal(t, sqlite.Counts{Categories: 1, Products: 1}, counts)
}

func TestOpenStore_UnknownLocale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DBPath = sqlite.MemoryPath
	cfg.SeedLocale = "xx"

	_, err := OpenStore(context.Background(), cfg, nil, log.WithField("test", "storage"))
	require.ErrorIs(t, err, fixtures.ErrUnknownLocale)
}
