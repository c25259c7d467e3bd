package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"job-board/internal/domain"
	"job-board/internal/domain/policy"
	"job-board/internal/domain/user"
	"job-board/internal/pkg/response"

	qt "github.com/frankban/quicktest"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

var discard = log.New(io.Discard, "", 0)

func newTestApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(NewErrorMiddleware(discard).Middleware())
	for _, h := range handlers {
		app.Use(h)
	}
	return app
}

func decode(c *qt.C, res *http.Response) response.SemanticResponse {
	c.Helper()
	defer res.Body.Close()
	var body response.SemanticResponse
	c.Assert(json.NewDecoder(res.Body).Decode(&body), qt.IsNil)
	return body
}

func TestErrorMiddleware_DomainMapping(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		err    error
		status int
	}{
		{err: fmt.Errorf("%w: nope", domain.ErrForbidden), status: fiber.StatusForbidden},
		{err: fmt.Errorf("%w: job", domain.ErrNotFound), status: fiber.StatusNotFound},
		{err: fmt.Errorf("%w: title", domain.ErrInvalidInput), status: fiber.StatusBadRequest},
		{err: fmt.Errorf("%w: decided", domain.ErrConflict), status: fiber.StatusConflict},
		{err: fmt.Errorf("%w: s3 down", domain.ErrUpstream), status: fiber.StatusBadGateway},
		{err: errors.New("boom"), status: fiber.StatusInternalServerError},
		{err: fiber.ErrRequestEntityTooLarge, status: fiber.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		c.Run(tt.err.Error(), func(c *qt.C) {
			app := newTestApp()
			app.Get("/", func(fiber.Ctx) error { return tt.err })

			res, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			c.Assert(err, qt.IsNil)
			c.Assert(res.StatusCode, qt.Equals, tt.status)

			body := decode(c, res)
			c.Assert(body.Status, qt.Equals, tt.status)
			if tt.status >= 500 {
				c.Assert(body.Message, qt.Not(qt.Contains), "s3")
				c.Assert(body.Message, qt.Not(qt.Contains), "boom")
			}
		})
	}
}

func TestErrorMiddleware_RecoversPanic(t *testing.T) {
	c := qt.New(t)
	app := newTestApp()
	app.Get("/", func(fiber.Ctx) error { panic("kaboom") })

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	c.Assert(err, qt.IsNil)
	c.Assert(res.StatusCode, qt.Equals, fiber.StatusInternalServerError)
}

type stubResolver struct {
	tokens map[string]policy.Actor
}

func (s stubResolver) Resolve(_ context.Context, token string) (policy.Actor, error) {
	a, ok := s.tokens[token]
	if !ok {
		return policy.Actor{}, fmt.Errorf("%w: no session", domain.ErrUnauthenticated)
	}
	return a, nil
}

func TestAuthMiddleware(t *testing.T) {
	c := qt.New(t)
	actor := policy.Actor{ID: uuid.New(), Role: user.RoleRecruiter}
	resolver := stubResolver{tokens: map[string]policy.Actor{"good": actor}}

	app := newTestApp(NewAuthMiddleware(resolver).Middleware())
	app.Get("/me", func(c fiber.Ctx) error {
		return c.SendString(ActorFrom(c).ID.String())
	})

	c.Run("bearer", func(c *qt.C) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		res, err := app.Test(req)
		c.Assert(err, qt.IsNil)
		c.Assert(res.StatusCode, qt.Equals, fiber.StatusOK)
		b, _ := io.ReadAll(res.Body)
		c.Assert(string(b), qt.Equals, actor.ID.String())
	})

	c.Run("cookie", func(c *qt.C) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})
		res, err := app.Test(req)
		c.Assert(err, qt.IsNil)
		c.Assert(res.StatusCode, qt.Equals, fiber.StatusOK)
	})

	for name, setup := range map[string]func(*http.Request){
		"missing": func(*http.Request) {},
		"invalid": func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad") },
		"scheme":  func(r *http.Request) { r.Header.Set("Authorization", "Basic good") },
	} {
		c.Run(name, func(c *qt.C) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			setup(req)
			res, err := app.Test(req)
			c.Assert(err, qt.IsNil)
			c.Assert(res.StatusCode, qt.Equals, fiber.StatusUnauthorized)

			body := decode(c, res)
			data, ok := body.Data.(map[string]any)
			c.Assert(ok, qt.IsTrue)
			c.Assert(data["redirect"], qt.Equals, LoginPath)
		})
	}
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return true, errors.New("redis unavailable")
}

type countingStore struct {
	hits map[string]int
}

func (s *countingStore) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	s.hits[key]++
	return s.hits[key] <= limit, nil
}

func TestRateLimitMiddleware(t *testing.T) {
	c := qt.New(t)

	for name, store := range map[string]CounterStore{
		"shared store":   &countingStore{hits: map[string]int{}},
		"local fallback": failingStore{},
	} {
		c.Run(name, func(c *qt.C) {
			rl := NewRateLimitMiddleware(store, "auth", 2, time.Hour, discard)
			app := newTestApp(rl.Middleware())
			app.Post("/login", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

			var codes []int
			for i := 0; i < 3; i++ {
				res, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
				c.Assert(err, qt.IsNil)
				codes = append(codes, res.StatusCode)
				if res.StatusCode == fiber.StatusTooManyRequests {
					c.Assert(res.Header.Get(fiber.HeaderRetryAfter), qt.Equals, "3600")
				}
			}
			c.Assert(codes, qt.DeepEquals, []int{200, 200, 429})
		})
	}
}

func TestRateLimitMiddleware_LocalBucketsStayBounded(t *testing.T) {
	c := qt.New(t)

	clock := time.Unix(1700000000, 0)
	rl := NewRateLimitMiddleware(failingStore{}, "auth", 1, time.Minute, discard)
	rl.maxLocal = 2
	rl.now = func() time.Time { return clock }

	c.Assert(rl.allow(context.Background(), "auth:10.0.0.1"), qt.IsTrue)
	c.Assert(rl.allow(context.Background(), "auth:10.0.0.2"), qt.IsTrue)

	// both idle for a whole window: the third client clears them out
	clock = clock.Add(time.Minute)
	c.Assert(rl.allow(context.Background(), "auth:10.0.0.3"), qt.IsTrue)
	c.Assert(rl.local, qt.HasLen, 1)

	// all active: only the least recently seen bucket is dropped
	clock = clock.Add(time.Second)
	c.Assert(rl.allow(context.Background(), "auth:10.0.0.4"), qt.IsTrue)
	clock = clock.Add(time.Second)
	c.Assert(rl.allow(context.Background(), "auth:10.0.0.5"), qt.IsTrue)
	c.Assert(rl.local, qt.HasLen, 2)
	_, kept := rl.local["auth:10.0.0.3"]
	c.Assert(kept, qt.IsFalse)

	// an active bucket keeps its state
	c.Assert(rl.allow(context.Background(), "auth:10.0.0.5"), qt.IsFalse)
}
