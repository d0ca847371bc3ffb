package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docquery/internal/errs"
	"docquery/internal/models"
)

func testNodes() []models.IndexNode {
	return []models.IndexNode{
		{ID: "a_0", Source: "a.pdf", ChunkIndex: 0, Text: "alpha", Embedding: []float32{1, 0, 0}},
		{ID: "a_1", Source: "a.pdf", ChunkIndex: 1, Text: "beta", Embedding: []float32{0, 1, 0}},
		{ID: "b_0", Source: "b.pdf", ChunkIndex: 0, Text: "gamma", Embedding: []float32{0.7, 0.7, 0}},
	}
}

func TestSearchRanksByCosine(t *testing.T) {
	idx := NewFileIndex(filepath.Join(t.TempDir(), "index.json"))
	require.NoError(t, idx.Upsert(context.Background(), testNodes()))

	results, err := idx.Search(context.Background(), []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "a_0", results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "b_0", results[1].ID)
	assert.Greater(t, results[0].Score, results[1].Score)

	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
	}
}

func TestSearchTopKClamped(t *testing.T) {
	idx := NewFileIndex(filepath.Join(t.TempDir(), "index.json"))
	require.NoError(t, idx.Upsert(context.Background(), testNodes()))

	results, err := idx.Search(context.Background(), []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchEmptyIndex(t *testing.T) {
	idx := NewFileIndex(filepath.Join(t.TempDir(), "index.json"))

	results, err := idx.Search(context.Background(), []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPersistAndOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indexes", "index.json")

	idx := NewFileIndex(path)
	require.NoError(t, idx.Upsert(context.Background(), testNodes()))
	require.NoError(t, idx.Persist())

	loaded, err := OpenFileIndex(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Len())

	results, err := loaded.Search(context.Background(), []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a_1", results[0].ID)
	assert.Equal(t, "beta", results[0].Text)
}

func TestPersistOverwritesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")

	first := NewFileIndex(path)
	require.NoError(t, first.Upsert(context.Background(), testNodes()))
	require.NoError(t, first.Persist())

	second := NewFileIndex(path)
	require.NoError(t, second.Upsert(context.Background(), []models.IndexNode{
		{ID: "c_0", Source: "c.pdf", Text: "delta", Embedding: []float32{1, 1, 1}},
	}))
	require.NoError(t, second.Persist())

	loaded, err := OpenFileIndex(path)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}

func TestOpenMissingIndex(t *testing.T) {
	_, err := OpenFileIndex(filepath.Join(t.TempDir(), "index.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestOpenMalformedIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := OpenFileIndex(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestUpsertReplacesByID(t *testing.T) {
	idx := NewFileIndex(filepath.Join(t.TempDir(), "index.json"))
	require.NoError(t, idx.Upsert(context.Background(), testNodes()))

	require.NoError(t, idx.Upsert(context.Background(), []models.IndexNode{
		{ID: "a_0", Source: "a.pdf", Text: "alpha v2", Embedding: []float32{0, 0, 1}},
	}))
	assert.Equal(t, 3, idx.Len())

	results, err := idx.Search(context.Background(), []float32{0, 0, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, "alpha v2", results[0].Text)
}

func TestUpsertRejectsMissingEmbedding(t *testing.T) {
	idx := NewFileIndex(filepath.Join(t.TempDir(), "index.json"))

	err := idx.Upsert(context.Background(), []models.IndexNode{{ID: "x_0", Text: "no vector"}})
	require.Error(t, err)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-6)
	assert.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, cosine([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	assert.Equal(t, 0.0, cosine([]float32{0, 0}, []float32{1, 1}))
}
