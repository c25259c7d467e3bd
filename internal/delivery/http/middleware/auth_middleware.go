package middleware

import (
	"context"
	"strings"

	"job-board/internal/domain/policy"

	"github.com/gofiber/fiber/v3"
)

const (
	CtxActorKey = "actor"

	// SessionCookie carries the access token for browser clients.
	SessionCookie = "session"
	// RefreshCookie carries the refresh token for browser clients.
	RefreshCookie = "refresh_session"
)

type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (policy.Actor, error)
}

type AuthMiddleware struct {
	resolver IdentityResolver
}

func NewAuthMiddleware(resolver IdentityResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Middleware rejects the request before any resource lookup when no live
// session is presented.
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := SessionToken(c)
		if !ok {
			return Unauthenticated(nil)
		}

		actor, err := m.resolver.Resolve(c.Context(), token)
		if err != nil {
			return FromDomain(err)
		}

		c.Locals(CtxActorKey, actor)
		return c.Next()
	}
}

// ActorFrom returns the actor stored by AuthMiddleware, or the anonymous
// actor.
func ActorFrom(c fiber.Ctx) policy.Actor {
	actor, _ := c.Locals(CtxActorKey).(policy.Actor)
	return actor
}

// SessionToken prefers the Authorization header over the session cookie.
func SessionToken(c fiber.Ctx) (string, bool) {
	if tok, ok := BearerToken(c.Get("Authorization")); ok {
		return tok, true
	}
	tok := strings.TrimSpace(c.Cookies(SessionCookie))
	return tok, tok != ""
}

func BearerToken(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
