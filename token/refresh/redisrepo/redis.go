// Package redisrepo stores refresh tokens in Redis so that several server
// processes share one rotation state.
package redisrepo

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-jwt-server/internal/errors"
	"github.com/jrsteele09/go-jwt-server/token/refresh"
	"github.com/redis/go-redis/v9"
)

var _ refresh.Repo = (*Repo)(nil)

const DefaultKeyPrefix = "jwt:refresh:"

// Replaces the stored token only if it still equals the expected one.
// KEYS[1] login key, ARGV[1] expected, ARGV[2] next, ARGV[3] ttl in ms (0 keeps no expiry)
const compareAndSwapScript = `
local current = redis.call("GET", KEYS[1])
if current ~= ARGV[1] then
  return 0
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
  redis.call("SET", KEYS[1], ARGV[2], "PX", ttl)
else
  redis.call("SET", KEYS[1], ARGV[2])
end
return 1
`

var compareAndSwapLua = redis.NewScript(compareAndSwapScript)

// Config for a Redis-backed refresh repo
type Config struct {
	Addr      string        // like "localhost:6379"
	KeyPrefix string        // prefix for all keys
	TTL       time.Duration // entries expire with the refresh token they hold
}

type Repo struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// New wraps an existing client
func New(client redis.UniversalClient, keyPrefix string, ttl time.Duration) *Repo {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &Repo{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Dial connects to Redis and checks the connection
func Dial(ctx context.Context, cfg Config) (*Repo, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	cl := redis.NewClient(&redis.Options{Addr: addr})
	if err := cl.Ping(ctx).Err(); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("%w: redis ping %s: %v", errors.ErrStoreUnavailable, addr, err)
	}
	return New(cl, cfg.KeyPrefix, cfg.TTL), nil
}

// Close closes the Redis client
func (r *Repo) Close() error { return r.client.Close() }

func (r *Repo) key(login string) string { return r.keyPrefix + login }

func (r *Repo) Get(ctx context.Context, login string) (string, error) {
	token, err := r.client.Get(ctx, r.key(login)).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", errors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: get refresh token: %v", errors.ErrStoreUnavailable, err)
	}
	return token, nil
}

func (r *Repo) Put(ctx context.Context, login, token string) error {
	if err := r.client.Set(ctx, r.key(login), token, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: put refresh token: %v", errors.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *Repo) CompareAndSwap(ctx context.Context, login, expected, next string) (bool, error) {
	res, err := compareAndSwapLua.Run(ctx, r.client, []string{r.key(login)}, expected, next, r.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: rotate refresh token: %v", errors.ErrStoreUnavailable, err)
	}
	return res == 1, nil
}
