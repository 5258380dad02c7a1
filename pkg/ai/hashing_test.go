package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/vector"
)

func TestHashingEmbedderDeterministicAndNormalised(t *testing.T) {
	h := NewHashingEmbedder(0)
	a, err := h.Embed(context.Background(), []string{"Python programming", "python programming"})
	require.NoError(t, err)

	require.Len(t, a[0], DefaultHashingDims)
	assert.Equal(t, a[0], a[1], "case must not matter")
	assert.InDelta(t, 1.0, vector.Cosine(a[0], a[0]), 1e-6)

	b, err := h.Embed(context.Background(), []string{"Python programming"})
	require.NoError(t, err)
	assert.Equal(t, a[0], b[0])
}

func TestHashingEmbedderSimilarity(t *testing.T) {
	h := NewHashingEmbedder(DefaultHashingDims)
	vecs, err := h.Embed(context.Background(), []string{"python", "python programming", "java", "kubernetes"})
	require.NoError(t, err)

	related := vector.Cosine(vecs[0], vecs[1])
	unrelated := vector.Cosine(vecs[0], vecs[2])
	assert.GreaterOrEqual(t, related, 0.5)
	assert.Less(t, unrelated, related)
	assert.Less(t, vector.Cosine(vecs[2], vecs[3]), 0.5)
}

func TestHashingEmbedderEmptyText(t *testing.T) {
	vecs, err := NewHashingEmbedder(8).Embed(context.Background(), []string{""})
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), vecs[0])
	assert.Equal(t, "hashing/8", NewHashingEmbedder(8).Name())
}
