package redisstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/IvanBrykalov/lrubuffer/cache"
)

const defaultTimeout = 500 * time.Millisecond

// Options configures Hooks. Zero values are safe.
type Options[V any] struct {
	// Prefix is prepended to every buffer key to form the Redis key.
	Prefix string

	// Timeout bounds each Redis round trip (0 => 500ms).
	Timeout time.Duration

	// WriteBack stores capacity-evicted entries in Redis so a later miss can
	// bring them back through CreateDefault.
	WriteBack bool
	// TTL applies to written-back keys (0 = no expiration).
	TTL time.Duration

	// DeleteOnRemove deletes the Redis copy when a key is removed explicitly.
	DeleteOnRemove bool

	Codec  Codec[V] // nil => JSONCodec
	Logger *slog.Logger
}

// Hooks implements cache.Hooks[string, V] on top of Redis: misses are read
// through from Redis and evictions can be written back to it.
//
// Backend failures are logged and treated as "no value"; they never fail the
// buffer operation that triggered them.
type Hooks[V any] struct {
	client redis.Cmdable
	opt    Options[V]
}

// New binds Hooks to a Redis client.
func New[V any](client redis.Cmdable, opt Options[V]) *Hooks[V] {
	if opt.Timeout <= 0 {
		opt.Timeout = defaultTimeout
	}
	if opt.Codec == nil {
		opt.Codec = JSONCodec[V]{}
	}
	if opt.Logger == nil {
		opt.Logger = slog.New(slog.DiscardHandler)
	}
	return &Hooks[V]{client: client, opt: opt}
}

// CreateDefault loads Prefix+k from Redis.
func (h *Hooks[V]) CreateDefault(k string) (V, bool) {
	var zero V

	ctx, cancel := context.WithTimeout(context.Background(), h.opt.Timeout)
	defer cancel()

	data, err := h.client.Get(ctx, h.key(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false
	}
	if err != nil {
		h.opt.Logger.Warn("redisstore: get failed", slog.String("key", k), slog.Any("error", err))
		return zero, false
	}

	v, err := h.opt.Codec.Decode(data)
	if err != nil {
		h.opt.Logger.Warn("redisstore: decode failed",
			slog.String("key", k),
			slog.Any("error", errors.Join(ErrDecode, err)),
		)
		return zero, false
	}
	return v, true
}

// AfterRemoval writes evicted entries back (WriteBack) and deletes explicitly
// removed ones (DeleteOnRemove). Overwrites (isEvict=false with a newValue)
// leave Redis untouched.
func (h *Hooks[V]) AfterRemoval(isEvict bool, k string, v V, newValue *V) {
	switch {
	case isEvict && h.opt.WriteBack:
		h.store(k, v)
	case !isEvict && newValue == nil && h.opt.DeleteOnRemove:
		h.delete(k)
	}
}

func (h *Hooks[V]) store(k string, v V) {
	data, err := h.opt.Codec.Encode(v)
	if err != nil {
		h.opt.Logger.Warn("redisstore: encode failed",
			slog.String("key", k),
			slog.Any("error", errors.Join(ErrEncode, err)),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.opt.Timeout)
	defer cancel()
	if err := h.client.Set(ctx, h.key(k), data, h.opt.TTL).Err(); err != nil {
		h.opt.Logger.Warn("redisstore: write-back failed", slog.String("key", k), slog.Any("error", err))
	}
}

func (h *Hooks[V]) delete(k string) {
	ctx, cancel := context.WithTimeout(context.Background(), h.opt.Timeout)
	defer cancel()
	if err := h.client.Del(ctx, h.key(k)).Err(); err != nil {
		h.opt.Logger.Warn("redisstore: delete failed", slog.String("key", k), slog.Any("error", err))
	}
}

func (h *Hooks[V]) key(k string) string { return h.opt.Prefix + k }

var _ cache.Hooks[string, int] = (*Hooks[int])(nil)
