package middleware

import (
	"context"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"job-board/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/time/rate"
)

// maxLocalLimiters bounds the fallback buckets kept in memory.
const maxLocalLimiters = 10000

// CounterStore is a shared fixed-window counter. An error means the store
// could not decide and the local limiter takes over.
type CounterStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimitMiddleware limits requests per client IP. Counters live in the
// shared store; while it is unreachable each process falls back to its own
// token buckets with the same average rate.
type RateLimitMiddleware struct {
	store  CounterStore
	scope  string
	limit  int
	window time.Duration
	logger *log.Logger

	mu       sync.Mutex
	local    map[string]*localLimiter
	maxLocal int
	now      func() time.Time

	warnedFallback atomic.Bool
}

func NewRateLimitMiddleware(store CounterStore, scope string, limit int, window time.Duration, logger *log.Logger) *RateLimitMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &RateLimitMiddleware{
		store:  store,
		scope:  scope,
		limit:  limit,
		window: window,
		logger: logger,

		local:    make(map[string]*localLimiter),
		maxLocal: maxLocalLimiters,
		now:      time.Now,
	}
}

type localLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func (m *RateLimitMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if m.limit <= 0 || m.window <= 0 {
			return c.Next()
		}
		ip := c.IP()
		if ip == "" {
			return c.Next()
		}

		if !m.allow(c.Context(), m.scope+":"+ip) {
			c.Set(fiber.HeaderRetryAfter, retryAfterSeconds(m.window))
			return NewAppError(fiber.StatusTooManyRequests, response.MessageTooManyRequests, nil, nil)
		}
		return c.Next()
	}
}

func (m *RateLimitMiddleware) allow(ctx context.Context, key string) bool {
	if m.store != nil {
		ok, err := m.store.Allow(ctx, key, m.limit, m.window)
		if err == nil {
			return ok
		}
		if m.warnedFallback.CompareAndSwap(false, true) {
			m.logger.Printf("[RateLimit] shared counters unavailable, using local limiter scope=%s err=%v", m.scope, err)
		}
	}
	return m.limiterFor(key).Allow()
}

func (m *RateLimitMiddleware) limiterFor(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if l, ok := m.local[key]; ok {
		l.lastSeen = now
		return l.lim
	}
	if len(m.local) >= m.maxLocal {
		m.evictLocked(now)
	}
	l := &localLimiter{
		lim:      rate.NewLimiter(rate.Every(m.window/time.Duration(m.limit)), m.limit),
		lastSeen: now,
	}
	m.local[key] = l
	return l.lim
}

// evictLocked drops buckets idle for a full window, which have refilled and
// carry no state. If every bucket is active the least recently seen goes.
func (m *RateLimitMiddleware) evictLocked(now time.Time) {
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, l := range m.local {
		if now.Sub(l.lastSeen) >= m.window {
			delete(m.local, k)
			continue
		}
		if oldestKey == "" || l.lastSeen.Before(oldest) {
			oldestKey, oldest = k, l.lastSeen
		}
	}
	if len(m.local) >= m.maxLocal && oldestKey != "" {
		delete(m.local, oldestKey)
	}
}

func retryAfterSeconds(window time.Duration) string {
	secs := int(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
