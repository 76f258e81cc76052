// Package redisstore backs a cache.Buffer with Redis as a second tier.
//
// Hooks implements cache.Hooks[string, V]:
//
//   - CreateDefault reads Prefix+key from Redis on a buffer miss, so the
//     value is re-inserted into the buffer (read-through).
//   - AfterRemoval with WriteBack stores capacity-evicted entries in Redis
//     (optionally with a TTL); with DeleteOnRemove an explicit Remove also
//     deletes the Redis copy.
//
// Values are serialized with a Codec (JSONCodec by default, YAMLCodec and
// StringCodec are provided). Redis errors are logged through Options.Logger
// and treated as a miss.
//
// Usage
//
//	client, err := redisstore.Connect(ctx, redisstore.Config{ConnectionURL: "redis://localhost:6379/0"})
//	if err != nil {
//	    return err
//	}
//	b, _ := cache.New[string, User](cache.Options[string, User]{
//	    Capacity: 1024,
//	    Hooks: redisstore.New[User](client, redisstore.Options[User]{
//	        Prefix:    "users:",
//	        WriteBack: true,
//	        TTL:       time.Hour,
//	    }),
//	})
//
// Hooks block on Redis for at most Options.Timeout per call. When the buffer
// is wrapped in cache.Sync that time is spent under the buffer lock.
package redisstore
