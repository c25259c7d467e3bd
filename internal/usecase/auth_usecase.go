package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"job-board/internal/domain"
	"job-board/internal/domain/user"
	"job-board/internal/pkg/jwt"
	ucauth "job-board/internal/usecase/auth"

	"github.com/google/uuid"
)

var (
	ErrInvalidRefreshToken = fmt.Errorf("%w: invalid refresh token", domain.ErrUnauthenticated)
	ErrRefreshTokenExpired = fmt.Errorf("%w: refresh token expired", domain.ErrUnauthenticated)
	ErrInternal            = fmt.Errorf("%w: token issuing failed", domain.ErrUpstream)
)

// SessionStore remembers logged-out sessions until their tokens expire.
type SessionStore interface {
	RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error
	IsSessionRevoked(ctx context.Context, sessionID string) (bool, error)
}

type Session struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
}

type AuthUsecase interface {
	Register(ctx context.Context, in ucauth.RegisterInput) (user.User, Session, error)
	Login(ctx context.Context, in ucauth.LoginInput) (user.User, Session, error)
	Refresh(ctx context.Context, refreshToken string) (Session, error)
	Logout(ctx context.Context, token string) error
}

type Auth struct {
	authSvc    *ucauth.Service
	users      user.Repository
	jwt        jwt.Service
	sessions   SessionStore
	refreshTTL time.Duration
	logger     *log.Logger
	now        func() time.Time
}

func NewAuthUsecase(authSvc *ucauth.Service, users user.Repository, jwtSvc jwt.Service, sessions SessionStore, refreshTTL time.Duration, logger *log.Logger) *Auth {
	if logger == nil {
		logger = log.Default()
	}
	return &Auth{
		authSvc:    authSvc,
		users:      users,
		jwt:        jwtSvc,
		sessions:   sessions,
		refreshTTL: refreshTTL,
		logger:     logger,
		now:        time.Now,
	}
}

func (u *Auth) Register(ctx context.Context, in ucauth.RegisterInput) (user.User, Session, error) {
	usr, err := u.authSvc.Register(ctx, in)
	if err != nil {
		return user.User{}, Session{}, err
	}
	u.logger.Printf("[Auth] registered user_id=%s role=%s", usr.ID, usr.Role)

	sess, err := u.issue(usr)
	if err != nil {
		return user.User{}, Session{}, err
	}
	return usr, sess, nil
}

func (u *Auth) Login(ctx context.Context, in ucauth.LoginInput) (user.User, Session, error) {
	usr, err := u.authSvc.Login(ctx, in)
	if err != nil {
		return user.User{}, Session{}, err
	}

	sess, err := u.issue(usr)
	if err != nil {
		return user.User{}, Session{}, err
	}
	return usr, sess, nil
}

// Refresh rotates the session: the old session id is revoked and a new pair
// is issued with a fresh one.
func (u *Auth) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	if refreshToken == "" {
		return Session{}, ErrInvalidRefreshToken
	}

	claims, err := u.jwt.ValidateToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, ErrRefreshTokenExpired
		}
		return Session{}, ErrInvalidRefreshToken
	}
	if !u.jwt.IsRefreshToken(claims) {
		return Session{}, ErrInvalidRefreshToken
	}

	revoked, err := u.sessions.IsSessionRevoked(ctx, claims.SessionID())
	if err != nil {
		u.logger.Printf("[Auth] revocation lookup failed session=%s err=%v", claims.SessionID(), err)
	}
	if revoked {
		return Session{}, ErrInvalidRefreshToken
	}

	usr, err := u.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, ErrInvalidRefreshToken
		}
		return Session{}, ErrInternal
	}

	if err := u.sessions.RevokeSession(ctx, claims.SessionID(), u.remaining(claims.Expiry())); err != nil {
		u.logger.Printf("[Auth] revoke on refresh failed session=%s err=%v", claims.SessionID(), err)
	}
	return u.issue(usr)
}

// Logout is idempotent: unparseable or expired tokens have nothing left to
// revoke.
func (u *Auth) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := u.jwt.ValidateToken(token)
	if err != nil {
		return nil
	}

	// both tokens of a session share the jti, so block it for as long as the
	// refresh token can live
	until := claims.Expiry()
	if !u.jwt.IsRefreshToken(claims) && claims.IssuedAt != nil {
		until = claims.IssuedAt.Time.Add(u.refreshTTL)
	}
	if err := u.sessions.RevokeSession(ctx, claims.SessionID(), u.remaining(until)); err != nil {
		return fmt.Errorf("%w: revoke session: %v", domain.ErrUpstream, err)
	}
	u.logger.Printf("[Auth] logout user_id=%s session=%s", claims.UserID, claims.SessionID())
	return nil
}

func (u *Auth) issue(usr user.User) (Session, error) {
	sid := uuid.NewString()
	access, err := u.jwt.GenerateAccessToken(usr.ID, string(usr.Role), sid)
	if err != nil {
		return Session{}, ErrInternal
	}
	refresh, err := u.jwt.GenerateRefreshToken(usr.ID, sid)
	if err != nil {
		return Session{}, ErrInternal
	}
	return Session{AccessToken: access, RefreshToken: refresh, SessionID: sid}, nil
}

func (u *Auth) remaining(until time.Time) time.Duration {
	d := until.Sub(u.now())
	if d < time.Second {
		return time.Second
	}
	return d
}
