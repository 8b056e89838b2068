package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	argerrors "github.com/argus-dev/argus/internal/errors"
	"github.com/argus-dev/argus/internal/lang"
	"github.com/argus-dev/argus/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestFloatBytesRoundTrip(t *testing.T) {
	v := []float32{0.1, -2.5, 3.0, 0, 1e10}
	assert.Equal(t, v, bytesToFloats(floatsToBytes(v)))
}

func TestSetDimensionsFirstWriteThenNoop(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.SetDimensions(768))
	d, ok, err := s.Dimensions()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 768, d)

	require.NoError(t, s.SetDimensions(768)) // equal value is a no-op
}

func TestSetDimensionsConflictNamesBothValues(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.SetDimensions(1024))
	err := s.SetDimensions(768)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1024")
	assert.Contains(t, err.Error(), "768")
	assert.Equal(t, argerrors.KindDatabase, argerrors.KindOf(err))
}

func sampleChunk(hash, path string) model.CodeChunk {
	return model.CodeChunk{
		FilePath:      path,
		StartLine:     1,
		EndLine:       3,
		EntityName:    "parse_json",
		EntityType:    model.EntityFunction,
		Language:      lang.Go,
		Content:       "func parse_json() {}",
		ContextHeader: "# File: " + path,
		ContentHash:   hash,
	}
}

func TestInsertChunkReplaceByContentHash(t *testing.T) {
	s := openTestStore(t)
	c := sampleChunk("hash1", "a.go")
	require.NoError(t, s.InsertChunk(c, []float32{1, 0}))
	require.NoError(t, s.InsertChunk(c, []float32{0, 1})) // same hash, new vector

	hits, err := s.VectorSearch([]float32{0, 1}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestRemoveFileCascadesChunks(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.InsertChunk(sampleChunk("h1", "a.go"), []float32{1, 0}))
	require.NoError(t, s.RecordFile("a.go", "filehash"))

	require.NoError(t, s.RemoveFile("a.go"))

	_, err := s.FileHash("a.go")
	require.Error(t, err)
	assert.Equal(t, argerrors.KindNotFound, argerrors.KindOf(err))

	hits, err := s.VectorSearch([]float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestVectorSearchCosineOrdering(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.InsertChunk(sampleChunk("close", "a.go"), []float32{1, 0}))
	require.NoError(t, s.InsertChunk(sampleChunk("far", "b.go"), []float32{0, 1}))

	hits, err := s.VectorSearch([]float32{1, 0.01}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "close", hits[0].Chunk.ContentHash)
}

func TestVectorSearchMismatchedLengthScoresZero(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.InsertChunk(sampleChunk("h1", "a.go"), []float32{1, 0, 0}))

	hits, err := s.VectorSearch([]float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 0.0, hits[0].Score)
}

func TestKeywordSearchFindsTokenizedTerms(t *testing.T) {
	s := openTestStore(t)
	c := sampleChunk("h1", "a.go")
	c.Content = "func parseJSON(data string) error { return nil }"
	c.EntityName = "parseJSON"
	require.NoError(t, s.InsertChunk(c, nil))

	hits, err := s.KeywordSearch("parseJSON", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, model.SourceKeyword, hits[0].Source)
	assert.GreaterOrEqual(t, hits[0].Score, 0.0)
}

func TestKeywordSearchEmptySanitizedQueryReturnsEmpty(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.InsertChunk(sampleChunk("h1", "a.go"), nil))

	hits, err := s.KeywordSearch("   ", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestStatsEmptyStore(t *testing.T) {
	s := openTestStore(t)
	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalChunks)
	assert.Equal(t, 0, stats.TotalFiles)
}

func TestIndexedFiles(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.RecordFile("a.go", "h1"))
	require.NoError(t, s.RecordFile("b.go", "h2"))

	paths, err := s.IndexedFiles()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.go", "b.go"}, paths)
}

func TestSanitizeKeywordQueryDropsEmpties(t *testing.T) {
	assert.Equal(t, []string{"foo", "bar_baz", "1"}, sanitizeKeywordQuery("  foo   bar_baz! 1 "))
}
