package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"job-board/internal/domain"
	"job-board/internal/domain/policy"
	"job-board/internal/domain/user"
	"job-board/internal/pkg/jwt"
)

var ErrNoSession = fmt.Errorf("%w: no valid session", domain.ErrUnauthenticated)

// IdentityResolver maps a session token to the acting user. The role comes
// from the users table, not from the token, so it is always current.
type IdentityResolver struct {
	jwt      jwt.Service
	sessions SessionStore
	users    user.Repository
	logger   *log.Logger
}

func NewIdentityResolver(jwtSvc jwt.Service, sessions SessionStore, users user.Repository, logger *log.Logger) *IdentityResolver {
	if logger == nil {
		logger = log.Default()
	}
	return &IdentityResolver{jwt: jwtSvc, sessions: sessions, users: users, logger: logger}
}

// Resolve returns the anonymous actor together with ErrNoSession for any
// token that does not identify a live session.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (policy.Actor, error) {
	if token == "" {
		return policy.Actor{}, ErrNoSession
	}

	claims, err := r.jwt.ValidateToken(token)
	if err != nil || r.jwt.IsRefreshToken(claims) {
		return policy.Actor{}, ErrNoSession
	}

	revoked, err := r.sessions.IsSessionRevoked(ctx, claims.SessionID())
	if err != nil {
		// revocation store outage: keep serving, the token is still signed
		r.logger.Printf("[Identity] revocation lookup failed session=%s err=%v", claims.SessionID(), err)
	}
	if revoked {
		return policy.Actor{}, ErrNoSession
	}

	u, err := r.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return policy.Actor{}, ErrNoSession
		}
		return policy.Actor{}, fmt.Errorf("%w: load user: %v", domain.ErrUpstream, err)
	}

	return policy.Actor{ID: u.ID, Role: u.Role}, nil
}
