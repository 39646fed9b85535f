package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"luckydraw/internal/models"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "luckyDrawWinners")
	require.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, store.Set(ctx, "luckyDrawWinners", `[{"code":"A"}]`))
	value, err := store.Get(ctx, "luckyDrawWinners")
	require.NoError(t, err)
	require.Equal(t, `[{"code":"A"}]`, value)

	require.NoError(t, store.Set(ctx, "luckyDrawWinners", `[]`))
	value, err = store.Get(ctx, "luckyDrawWinners")
	require.NoError(t, err)
	require.Equal(t, `[]`, value)

	require.NoError(t, store.Del(ctx, "luckyDrawWinners"))
	_, err = store.Get(ctx, "luckyDrawWinners")
	require.ErrorIs(t, err, models.ErrNotFound)

	// Deleting an absent key is not an error.
	require.NoError(t, store.Del(ctx, "luckyDrawWinners"))
	require.NoError(t, store.Close())
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "data"))
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "a/b", "value"))

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	value, err := reopened.Get(ctx, "a/b")
	require.NoError(t, err)
	require.Equal(t, "value", value)
}

func TestSQLStore(t *testing.T) {
	store, err := OpenSQLStore(filepath.Join(t.TempDir(), "luckydraw.db"))
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, Options{})
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, store)

	store, err = Open(ctx, Options{Backend: "FILE", Dir: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, store)

	store, err = Open(ctx, Options{Backend: BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	require.IsType(t, &SQLStore{}, store)
	require.NoError(t, store.Close())

	_, err = Open(ctx, Options{Backend: "etcd"})
	require.Error(t, err)
}

func TestRedisStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedisStore(ctx, "127.0.0.1:1", "", 0)
	require.Error(t, err)
}
