package txindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/ledgerlens/internal/models"
	"github.com/hyperjump/ledgerlens/internal/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIndex(t *testing.T, dims int) *Index {
	t.Helper()
	vi, err := vector.NewMemoryIndex(dims)
	require.NoError(t, err)
	return New(vi)
}

func sampleRecords() ([][]float32, []models.Transaction) {
	bal := 1200.5
	vecs := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	recs := []models.Transaction{
		{ID: "txn_1001", UserID: "user_1", Date: "2024-01-05", Description: "Swiggy order", Amount: 250, Type: models.Debit, Category: "Food", Method: "UPI", Balance: &bal},
		{ID: "txn_1002", UserID: "user_1", Date: "2024-01-06", Description: "Uber ride", Amount: 180, Type: models.Debit, Category: "Travel"},
		{ID: "txn_1003", UserID: "user_2", Date: "2024-01-31", Description: "Salary credited", Amount: 50000, Type: models.Credit, Category: "Salary"},
	}
	return vecs, recs
}

func TestIndex_NotReadyBeforeBuild(t *testing.T) {
	x := newIndex(t, 3)
	assert.False(t, x.Ready())
	_, err := x.Search(context.Background(), []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, models.ErrNotReady)
	assert.ErrorIs(t, x.Persist(filepath.Join(t.TempDir(), "i"), filepath.Join(t.TempDir(), "m")), models.ErrNotReady)
}

func TestIndex_BuildAndSearch(t *testing.T) {
	x := newIndex(t, 3)
	vecs, recs := sampleRecords()
	require.NoError(t, x.Build(context.Background(), vecs, recs))
	require.True(t, x.Ready())

	hits, err := x.Search(context.Background(), []float32{0, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "txn_1002", hits[0].Record.ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)

	info := x.Info()
	assert.True(t, info.Ready)
	assert.Equal(t, 3, info.TransactionCount)
	assert.Equal(t, 3, info.IndexSize)
	assert.Equal(t, "memory", info.IndexType)
	assert.NotEmpty(t, info.BuildID)
}

func TestIndex_BuildCountMismatch(t *testing.T) {
	x := newIndex(t, 3)
	vecs, recs := sampleRecords()
	err := x.Build(context.Background(), vecs[:2], recs)
	assert.ErrorIs(t, err, models.ErrCountMismatch)
	assert.False(t, x.Ready())
}

func TestIndex_EmptyBuildIsReady(t *testing.T) {
	x := newIndex(t, 3)
	require.NoError(t, x.Build(context.Background(), [][]float32{}, []models.Transaction{}))
	assert.True(t, x.Ready())
	hits, err := x.Search(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_SearchDimensionMismatch(t *testing.T) {
	x := newIndex(t, 3)
	vecs, recs := sampleRecords()
	require.NoError(t, x.Build(context.Background(), vecs, recs))
	_, err := x.Search(context.Background(), []float32{1, 0}, 1)
	assert.ErrorIs(t, err, models.ErrDimensionMismatch)
}

func TestIndex_PersistLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "idx", "transactions.index")
	metaPath := filepath.Join(dir, "idx", "transactions_meta.json")

	x := newIndex(t, 3)
	vecs, recs := sampleRecords()
	require.NoError(t, x.Build(context.Background(), vecs, recs))
	require.NoError(t, x.Persist(indexPath, metaPath))

	y := newIndex(t, 3)
	require.NoError(t, y.Load(indexPath, metaPath))
	assert.Equal(t, x.Records(), y.Records())
	assert.Equal(t, x.Info().BuildID, y.Info().BuildID)

	for _, q := range [][]float32{{1, 0, 0}, {0.2, 0.9, 0.1}, {0, 0, 1}} {
		want, err := x.Search(context.Background(), q, 3)
		require.NoError(t, err)
		got, err := y.Search(context.Background(), q, 3)
		require.NoError(t, err)
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].Record.ID, got[i].Record.ID)
			assert.InDelta(t, want[i].Score, got[i].Score, 1e-6)
		}
	}
}

func TestIndex_LoadMissing(t *testing.T) {
	dir := t.TempDir()
	x := newIndex(t, 3)
	err := x.Load(filepath.Join(dir, "none.index"), filepath.Join(dir, "none.json"))
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.False(t, x.Ready())
}

func persisted(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "transactions.index")
	metaPath := filepath.Join(dir, "transactions_meta.json")
	x := newIndex(t, 3)
	vecs, recs := sampleRecords()
	require.NoError(t, x.Build(context.Background(), vecs, recs))
	require.NoError(t, x.Persist(indexPath, metaPath))
	return indexPath, metaPath
}

func TestIndex_LoadCorruptDeletesArtifacts(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(t *testing.T, indexPath, metaPath string)
		dims    int
		wantErr error
	}{
		{
			name: "missing_metadata",
			corrupt: func(t *testing.T, _, metaPath string) {
				require.NoError(t, os.Remove(metaPath))
			},
			dims:    3,
			wantErr: models.ErrCorruptArtifact,
		},
		{
			name: "garbage_metadata",
			corrupt: func(t *testing.T, _, metaPath string) {
				require.NoError(t, os.WriteFile(metaPath, []byte("{not json"), 0644))
			},
			dims:    3,
			wantErr: models.ErrCorruptArtifact,
		},
		{
			name: "count_mismatch",
			corrupt: func(t *testing.T, _, metaPath string) {
				require.NoError(t, os.WriteFile(metaPath, []byte(`{"transactions":[],"count":0}`), 0644))
			},
			dims:    3,
			wantErr: models.ErrCorruptArtifact,
		},
		{
			name: "truncated_index",
			corrupt: func(t *testing.T, indexPath, _ string) {
				require.NoError(t, os.Truncate(indexPath, 10))
			},
			dims:    3,
			wantErr: models.ErrCorruptArtifact,
		},
		{
			name:    "wrong_dimension",
			corrupt: func(*testing.T, string, string) {},
			dims:    4,
			wantErr: models.ErrDimensionMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			indexPath, metaPath := persisted(t)
			tt.corrupt(t, indexPath, metaPath)

			x := newIndex(t, tt.dims)
			err := x.Load(indexPath, metaPath)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, x.Ready())

			_, statErr := os.Stat(indexPath)
			assert.True(t, os.IsNotExist(statErr), "index artifact should be deleted")
			_, statErr = os.Stat(metaPath)
			assert.True(t, os.IsNotExist(statErr), "metadata artifact should be deleted")
		})
	}
}

func TestRemove_MissingIsNotError(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, Remove(filepath.Join(dir, "a"), filepath.Join(dir, "b")))
}
