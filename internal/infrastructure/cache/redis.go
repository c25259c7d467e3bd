package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"job-board/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	revokedSessionPrefix = "session:revoked:"
	rateLimitPrefix      = "ratelimit:"
)

var errUnavailable = errors.New("redis unavailable")

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// Redis backs session revocation and rate-limit counters. When the server is
// unreachable at startup the client is nil: lookups report nothing revoked so
// the API keeps serving, while writes and counters return an error.
type Redis struct {
	client *redis.Client
	script *redis.Script
	logger *log.Logger

	warnedUnavailable atomic.Bool
}

func NewRedis(cfg config.RedisConfig, logger *log.Logger) *Redis {
	if logger == nil {
		logger = log.Default()
	}

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Printf("[Cache] Redis unavailable, sessions cannot be revoked: addr=%s err=%v", addr, err)
		_ = client.Close()
		return &Redis{logger: logger}
	}

	return &Redis{client: client, script: redis.NewScript(rateLimitScript), logger: logger}
}

// NewRedisWithClient wraps an existing client, mainly for tests.
func NewRedisWithClient(client *redis.Client, logger *log.Logger) *Redis {
	if logger == nil {
		logger = log.Default()
	}
	return &Redis{client: client, script: redis.NewScript(rateLimitScript), logger: logger}
}

func (r *Redis) Available() bool {
	return r != nil && r.client != nil
}

func (r *Redis) Close() error {
	if !r.Available() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Printf("[Cache] Redis error, degrading: %v", err)
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if !r.Available() {
		return errUnavailable
	}
	return r.client.Ping(ctx).Err()
}

// RevokeSession marks sessionID as logged out for ttl. Keys expire together
// with the tokens they block. Without Redis nothing can be revoked, which is
// reported as an error.
func (r *Redis) RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	if sessionID == "" || ttl <= 0 {
		return nil
	}
	if !r.Available() {
		return errUnavailable
	}
	if err := r.client.Set(ctx, revokedSessionPrefix+sessionID, "1", ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) IsSessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	if !r.Available() || sessionID == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, revokedSessionPrefix+sessionID).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return false, err
	}
	return n > 0, nil
}

// Allow counts a hit for key in a fixed window and reports whether the
// caller is still under limit.
func (r *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.Available() {
		return true, errUnavailable
	}
	if key == "" || limit <= 0 || window <= 0 {
		return true, nil
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	allowed, err := r.script.Run(ctx, r.client, []string{rateLimitPrefix + key}, ttl, limit).Int64()
	if err != nil {
		r.warnUnavailableOnce(err)
		return true, err
	}
	return allowed == 1, nil
}
