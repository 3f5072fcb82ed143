package revocation

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_backend/internal/testdb"
)

func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	ok, err := s.Contains(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	added, err := s.Add(ctx, "a", exp)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Add(ctx, "a", exp)
	require.NoError(t, err)
	assert.False(t, added, "second add must report the key as already present")

	ok, err = s.Contains(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	added, err = s.Add(ctx, "expired", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.True(t, added)
	ok, err = s.Contains(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, ok)

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			added, err := s.Add(ctx, "race", exp)
			assert.NoError(t, err)
			if added {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestMemoryStore_Contract(t *testing.T) {
	t.Parallel()
	testStoreContract(t, NewMemoryStore())
}

func TestRedisStore_Contract(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	testStoreContract(t, NewRedisStore(client))
}

func TestGormStore_Contract(t *testing.T) {
	t.Parallel()
	testStoreContract(t, NewGormStore(testdb.SQLite(t)))
}

func TestMemoryStore_SweepsExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := s.Add(ctx, "short", now.Add(time.Minute))
	require.NoError(t, err)
	_, err = s.Add(ctx, "long", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	now = now.Add(2 * time.Minute)
	ok, err := s.Contains(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Add(ctx, "other", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestRedisStore_EntriesExpire(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStore(client)
	ctx := context.Background()

	added, err := s.Add(ctx, "k", time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, mr.Exists(defaultRedisPrefix+"k"))

	mr.FastForward(2 * time.Minute)

	ok, err := s.Contains(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_SurfacesErrors(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStore(client)
	mr.Close()

	_, err := s.Add(context.Background(), "k", time.Now().Add(time.Minute))
	assert.Error(t, err)
}

func TestGormStore_PurgeExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewGormStore(testdb.SQLite(t))
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := s.Add(ctx, "short", now.Add(time.Minute))
	require.NoError(t, err)
	_, err = s.Add(ctx, "long", now.Add(time.Hour))
	require.NoError(t, err)

	now = now.Add(5 * time.Minute)
	n, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, err := s.Contains(ctx, "long")
	require.NoError(t, err)
	assert.True(t, ok)
}
