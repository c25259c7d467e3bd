package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"job-board/internal/domain"
	"job-board/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailAlreadyRegistered  = fmt.Errorf("%w: email already registered", domain.ErrConflict)
	ErrInvalidCredentials      = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)
	ErrAdminRegistrationDenied = fmt.Errorf("%w: admin registration is not allowed", domain.ErrForbidden)
	ErrInternal                = fmt.Errorf("%w: user store failure", domain.ErrUpstream)
)

const (
	minPasswordLength = 8
	// bcrypt rejects longer input
	maxPasswordBytes = 72
)

type RegisterInput struct {
	Email     string
	Password  string
	Name      string
	Role      string
	AdminCode string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthUsecase interface {
	Register(ctx context.Context, in RegisterInput) (user.User, error)
	Login(ctx context.Context, in LoginInput) (user.User, error)
}

type Options struct {
	// AdminRegistrationCode must be presented to self-register as ADMIN.
	// Empty disables ADMIN self-registration.
	AdminRegistrationCode string
	BcryptCost            int
}

type Service struct {
	users user.Repository
	opts  Options
	now   func() time.Time
}

func NewService(users user.Repository, opts Options) *Service {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{users: users, opts: opts, now: time.Now}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	email, name, role, err := validateRegistration(in)
	if err != nil {
		return user.User{}, err
	}
	if role == user.RoleAdmin && !s.adminCodeMatches(in.AdminCode) {
		return user.User{}, ErrAdminRegistrationDenied
	}
	return s.create(ctx, email, in.Password, name, role)
}

// CreateAdmin provisions an ADMIN account without a registration code. It
// backs the create-admin command.
func (s *Service) CreateAdmin(ctx context.Context, email, password, name string) (user.User, error) {
	em, nm, _, err := validateRegistration(RegisterInput{
		Email:    email,
		Password: password,
		Name:     name,
		Role:     string(user.RoleAdmin),
	})
	if err != nil {
		return user.User{}, err
	}
	return s.create(ctx, em, password, nm, user.RoleAdmin)
}

func (s *Service) create(ctx context.Context, email, password, name string, role user.Role) (user.User, error) {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return user.User{}, ErrInternal
	}
	if exists {
		return user.User{}, ErrEmailAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return user.User{}, ErrInternal
	}

	now := s.now().UTC()
	u := user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         &name,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, u); err != nil {
		// lost the race against a concurrent registration
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, ErrEmailAlreadyRegistered
		}
		return user.User{}, ErrInternal
	}

	return sanitizeUser(u), nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (user.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return user.User{}, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return user.User{}, ErrInvalidCredentials
	}

	return sanitizeUser(u), nil
}

func (s *Service) adminCodeMatches(code string) bool {
	want := s.opts.AdminRegistrationCode
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1
}

func validateRegistration(in RegisterInput) (string, string, user.Role, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" || in.Password == "" || strings.TrimSpace(in.Role) == "" {
		return "", "", "", fmt.Errorf("%w: email, password, name and role are required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", "", "", fmt.Errorf("%w: email is malformed", domain.ErrInvalidInput)
	}
	if len(strings.TrimSpace(in.Password)) < minPasswordLength {
		return "", "", "", fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	if len(in.Password) > maxPasswordBytes {
		return "", "", "", fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, maxPasswordBytes)
	}
	role, ok := user.ParseRole(in.Role)
	if !ok {
		return "", "", "", fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, in.Role)
	}
	return email, name, role, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
