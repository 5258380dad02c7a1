package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStorage(rdb), mr, rdb
}

func TestRedisStorageRoundTrip(t *testing.T) {
	s, mr, _ := newStorage(t)

	val, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, s.Set("abc", []byte("payload"), time.Minute))
	val, err = s.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), val)
	assert.True(t, mr.Exists("session:abc"))

	mr.FastForward(2 * time.Minute)
	val, err = s.Get("abc")
	require.NoError(t, err)
	assert.Nil(t, val, "expired sessions disappear")

	require.NoError(t, s.Set("def", []byte("x"), 0))
	require.NoError(t, s.Delete("def"))
	val, err = s.Get("def")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestRedisStorageResetKeepsForeignKeys(t *testing.T) {
	s, _, rdb := newStorage(t)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, s.Set(k, []byte("v"), 0))
	}
	require.NoError(t, rdb.Set(ctx, "emb:123", "vector", 0).Err())

	require.NoError(t, s.Reset())

	keys, err := rdb.Keys(ctx, "*").Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"emb:123"}, keys)
	assert.NoError(t, s.Close())
}
