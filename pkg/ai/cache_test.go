package ai

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	*HashingEmbedder
	seen []string
}

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	c.seen = append(c.seen, texts...)
	return c.HashingEmbedder.Embed(ctx, texts)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCachedEmbedderServesHits(t *testing.T) {
	_, rdb := newTestRedis(t)
	inner := &countingEmbedder{HashingEmbedder: NewHashingEmbedder(16)}
	c := NewCachedEmbedder(inner, rdb, 0, nil)
	ctx := context.Background()

	first, err := c.Embed(ctx, []string{"golang", "docker"})
	require.NoError(t, err)
	assert.Equal(t, []string{"golang", "docker"}, inner.seen)

	second, err := c.Embed(ctx, []string{"docker", "rust", "golang"})
	require.NoError(t, err)
	assert.Equal(t, []string{"golang", "docker", "rust"}, inner.seen, "only the miss reaches the inner embedder")

	assert.Equal(t, first[1], second[0])
	assert.Equal(t, first[0], second[2])
	assert.Len(t, second[1], 16)
}

func TestCachedEmbedderSurvivesRedisOutage(t *testing.T) {
	mr, rdb := newTestRedis(t)
	inner := &countingEmbedder{HashingEmbedder: NewHashingEmbedder(16)}
	c := NewCachedEmbedder(inner, rdb, 0, nil)
	mr.Close()

	vecs, err := c.Embed(context.Background(), []string{"golang"})
	require.NoError(t, err)
	assert.Len(t, vecs, 1)
	assert.Equal(t, []string{"golang"}, inner.seen)
}

func TestCachedEmbedderKeysByEmbedderName(t *testing.T) {
	_, rdb := newTestRedis(t)
	a := NewCachedEmbedder(NewHashingEmbedder(8), rdb, 0, nil)
	b := NewCachedEmbedder(NewHashingEmbedder(16), rdb, 0, nil)
	assert.NotEqual(t, a.key("go"), b.key("go"))
}

func TestVectorCodec(t *testing.T) {
	v := []float32{0, -1.5, 3.25}
	got, err := decodeVector(encodeVector(v))
	require.NoError(t, err)
	assert.Equal(t, v, got)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)

	_, err = decodeVector(nil)
	assert.Error(t, err)
}

func TestCachedEmbedderReembedsEmptyEntries(t *testing.T) {
	mr, rdb := newTestRedis(t)
	inner := &countingEmbedder{HashingEmbedder: NewHashingEmbedder(16)}
	c := NewCachedEmbedder(inner, rdb, 0, nil)
	require.NoError(t, mr.Set(c.key("golang"), ""))

	vecs, err := c.Embed(context.Background(), []string{"golang"})
	require.NoError(t, err)
	assert.Equal(t, []string{"golang"}, inner.seen)
	require.Len(t, vecs, 1)
	assert.Len(t, vecs[0], 16)

	got, err := mr.Get(c.key("golang"))
	require.NoError(t, err)
	assert.Len(t, got, 4*16)
}
