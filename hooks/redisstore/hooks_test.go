package redisstore

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/lrubuffer/cache"
)

// fakeRedis implements the handful of commands Hooks uses. Any other
// Cmdable method panics through the nil embedded interface.
type fakeRedis struct {
	redis.Cmdable

	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewStringCmd(ctx, "get", key)
	if v, ok := f.data[key]; ok {
		cmd.SetVal(v)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, exp time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewStatusCmd(ctx, "set", key, value)
	f.data[key] = string(value.([]byte))
	f.ttls[key] = exp
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewIntCmd(ctx, "del")
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

type user struct {
	Name string `json:"name" yaml:"name"`
	Age  int    `json:"age" yaml:"age"`
}

func TestHooks_ReadThrough(t *testing.T) {
	t.Parallel()

	rdb := newFakeRedis()
	rdb.data["users:ann"] = `{"name":"Ann","age":31}`

	b, err := cache.New[string, user](cache.Options[string, user]{
		Hooks: New[user](rdb, Options[user]{Prefix: "users:"}),
	})
	require.NoError(t, err)

	u, ok := b.Get("ann")
	require.True(t, ok)
	assert.Equal(t, user{Name: "Ann", Age: 31}, u)
	assert.Equal(t, uint64(1), b.CreateCount())
	assert.Equal(t, uint64(1), b.MissCount())
	assert.True(t, b.Contains("ann"), "read-through value is resident")

	_, ok = b.Get("bob")
	assert.False(t, ok)
	assert.Equal(t, uint64(1), b.CreateCount())
}

func TestHooks_WriteBackOnEviction(t *testing.T) {
	t.Parallel()

	rdb := newFakeRedis()
	b, err := cache.New[string, string](cache.Options[string, string]{
		Capacity: 1,
		Hooks: New[string](rdb, Options[string]{
			Prefix:    "s:",
			WriteBack: true,
			TTL:       time.Minute,
			Codec:     StringCodec{},
		}),
	})
	require.NoError(t, err)

	b.Put("a", "alpha")
	b.Put("a", "alpha2") // overwrite: nothing written
	assert.Empty(t, rdb.data)

	b.Put("b", "beta") // evicts a
	assert.Equal(t, "alpha2", rdb.data["s:a"])
	assert.Equal(t, time.Minute, rdb.ttls["s:a"])

	// a comes back through CreateDefault and pushes b out to Redis.
	v, ok := b.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha2", v)
	assert.Equal(t, "beta", rdb.data["s:b"])
	assert.Equal(t, []string{"a"}, b.Keys())
}

func TestHooks_DeleteOnRemove(t *testing.T) {
	t.Parallel()

	rdb := newFakeRedis()
	rdb.data["k"] = "1"
	rdb.data["other"] = "2"

	b, err := cache.New[string, int](cache.Options[string, int]{
		Hooks: New[int](rdb, Options[int]{DeleteOnRemove: true}),
	})
	require.NoError(t, err)

	v, ok := b.Get("k")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	b.Put("other", 5) // plain insert
	b.Put("other", 6) // overwrite keeps the Redis copy
	assert.Contains(t, rdb.data, "other")

	_, ok = b.Remove("k")
	require.True(t, ok)
	assert.NotContains(t, rdb.data, "k")
}

func TestHooks_DecodeFailureIsMiss(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	rdb := newFakeRedis()
	rdb.data["bad"] = "{not json"

	h := New[user](rdb, Options[user]{
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	})
	_, ok := h.CreateDefault("bad")
	assert.False(t, ok)
	assert.Contains(t, logs.String(), "redisstore: decode failed")
	assert.Contains(t, logs.String(), "key=bad")
}

func TestHooks_UnreachableServerIsMiss(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	var logs bytes.Buffer
	b, err := cache.New[string, string](cache.Options[string, string]{
		Capacity: 1,
		Hooks: New[string](client, Options[string]{
			Timeout:   200 * time.Millisecond,
			WriteBack: true,
			Codec:     StringCodec{},
			Logger:    slog.New(slog.NewTextHandler(&logs, nil)),
		}),
	})
	require.NoError(t, err)

	_, ok := b.Get("x")
	assert.False(t, ok)
	assert.Contains(t, logs.String(), "redisstore: get failed")

	b.Put("a", "1")
	b.Put("b", "2") // eviction write-back fails, buffer still consistent
	assert.Equal(t, []string{"b"}, b.Keys())
	assert.Contains(t, logs.String(), "redisstore: write-back failed")
}

func TestCodecs(t *testing.T) {
	t.Parallel()

	u := user{Name: "Zoe", Age: 7}

	data, err := YAMLCodec[user]{}.Encode(u)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Zoe")
	got, err := YAMLCodec[user]{}.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	data, err = JSONCodec[user]{}.Encode(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Zoe","age":7}`, string(data))

	s, err := StringCodec{}.Decode([]byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, "raw", s)
}

func TestConnect_Errors(t *testing.T) {
	t.Parallel()

	_, err := Connect(context.Background(), Config{ConnectionURL: "http://not-redis"})
	require.ErrorIs(t, err, ErrFailedToParseURL)

	_, err = Connect(context.Background(), Config{
		ConnectionURL:  "redis://127.0.0.1:1/0",
		RetryAttempts:  2,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: time.Second,
	})
	require.ErrorIs(t, err, ErrNotReady)
}

// Runs against a real server when REDIS_URL is set.
func TestIntegration_RealRedis(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, Config{ConnectionURL: url, RetryAttempts: 1, ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	prefix := "lrubuffer-test:" + t.Name() + ":"
	t.Cleanup(func() { client.Del(ctx, prefix+"a", prefix+"b") })

	b, err := cache.New[string, user](cache.Options[string, user]{
		Capacity: 1,
		Hooks:    New[user](client, Options[user]{Prefix: prefix, WriteBack: true, TTL: time.Minute}),
	})
	require.NoError(t, err)

	b.Put("a", user{Name: "A"})
	b.Put("b", user{Name: "B"}) // a written back

	u, ok := b.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A", u.Name)
}
