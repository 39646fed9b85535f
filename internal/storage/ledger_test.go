package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"luckydraw/internal/models"
)

type brokenStore struct{ err error }

func (b brokenStore) Get(context.Context, string) (string, error) { return "", b.err }
func (b brokenStore) Set(context.Context, string, string) error    { return b.err }
func (b brokenStore) Del(context.Context, string) error            { return b.err }
func (b brokenStore) Close() error                                 { return nil }

func sampleRecords() []models.WinnerRecord {
	at := time.Date(2025, 1, 24, 20, 15, 30, 123000000, time.UTC)
	return []models.WinnerRecord{
		{Code: "KM000002", Name: "Smith, John", TierKey: "consolation", TierDisplayName: "Khuyến Khích", TierIcon: "🎁", Timestamp: at.Add(time.Minute), ID: 1884312345678901250},
		{Code: "NV000003", Name: "Lê Hoàng Cường", TierKey: "special", TierDisplayName: "Giải Đặc Biệt", TierIcon: "🏆", Timestamp: at, ID: 1884312345678901249},
	}
}

func TestLedgerRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository(NewMemoryStore(), "")

	records := sampleRecords()
	require.NoError(t, repo.Save(ctx, records))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, records, loaded)
}

func TestLedgerRepository_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("absent ledger is empty", func(t *testing.T) {
		loaded, err := NewLedgerRepository(NewMemoryStore(), "").Load(ctx)
		require.NoError(t, err)
		require.Empty(t, loaded)
	})

	t.Run("corrupt ledger is empty", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Set(ctx, DefaultLedgerKey, "{not json"))

		loaded, err := NewLedgerRepository(store, "").Load(ctx)
		require.NoError(t, err)
		require.Empty(t, loaded)
	})

	t.Run("records without code are dropped", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Set(ctx, DefaultLedgerKey, `[{"code":"A","name":"Alice","prize":"first","id":1},{"name":"ghost","id":2}]`))

		loaded, err := NewLedgerRepository(store, "").Load(ctx)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		require.Equal(t, "A", loaded[0].Code)
		require.Equal(t, "first", loaded[0].TierKey)
	})

	t.Run("browser ledger format loads", func(t *testing.T) {
		store := NewMemoryStore()
		payload := `[{"code":"NV000001","name":"Nguyễn Văn An","prize":"first","prizeName":"Giải Nhất","prizeIcon":"🥇","timestamp":"2025-01-24T12:00:00.000Z","id":1737720000000}]`
		require.NoError(t, store.Set(ctx, "luckyDrawWinners", payload))

		loaded, err := NewLedgerRepository(store, "luckyDrawWinners").Load(ctx)
		require.NoError(t, err)
		require.Equal(t, []models.WinnerRecord{{
			Code:            "NV000001",
			Name:            "Nguyễn Văn An",
			TierKey:         "first",
			TierDisplayName: "Giải Nhất",
			TierIcon:        "🥇",
			Timestamp:       time.Date(2025, 1, 24, 12, 0, 0, 0, time.UTC),
			ID:              1737720000000,
		}}, loaded)
	})

	t.Run("failing store reports persistence failure", func(t *testing.T) {
		loaded, err := NewLedgerRepository(brokenStore{errors.New("disk on fire")}, "").Load(ctx)
		require.ErrorIs(t, err, models.ErrPersistenceFailure)
		require.Empty(t, loaded)
	})
}

func TestLedgerRepository_SaveAndPurgeFailures(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository(brokenStore{errors.New("quota exceeded")}, "")

	err := repo.Save(ctx, sampleRecords())
	require.ErrorIs(t, err, models.ErrPersistenceFailure)
	require.Contains(t, err.Error(), "quota exceeded")

	require.ErrorIs(t, repo.Purge(ctx), models.ErrPersistenceFailure)
}

func TestLedgerRepository_Purge(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewLedgerRepository(store, "winners")

	require.NoError(t, repo.Save(ctx, sampleRecords()))
	require.NoError(t, repo.Purge(ctx))

	_, err := store.Get(ctx, "winners")
	require.ErrorIs(t, err, models.ErrNotFound)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded)
}
