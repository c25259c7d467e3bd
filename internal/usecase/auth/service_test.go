package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"job-board/internal/domain"
	"job-board/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type memUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]user.User
	err     error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: map[string]user.User{}}
}

func (m *memUserRepo) Create(_ context.Context, u user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return user.ErrEmailTaken
	}
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.byEmail[email]
	return ok, nil
}

func newTestService(repo user.Repository, code string) *Service {
	return NewService(repo, Options{AdminRegistrationCode: code, BcryptCost: bcrypt.MinCost})
}

func TestRegister_Success(t *testing.T) {
	repo := newMemUserRepo()
	s := newTestService(repo, "")

	u, err := s.Register(context.Background(), RegisterInput{
		Email:    "  Alice@Example.com ",
		Password: "password123",
		Name:     "Alice",
		Role:     "recruiter",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.Email != "alice@example.com" || u.Role != user.RoleRecruiter {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.PasswordHash != "" {
		t.Fatalf("password hash must not leave the service")
	}
	stored, _ := repo.GetByEmail(context.Background(), "alice@example.com")
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")) != nil {
		t.Fatalf("stored hash does not match password")
	}
}

func TestRegister_Validation(t *testing.T) {
	s := newTestService(newMemUserRepo(), "")

	cases := []RegisterInput{
		{Email: "", Password: "password123", Name: "A", Role: "APPLICANT"},
		{Email: "a@b.co", Password: "short", Name: "A", Role: "APPLICANT"},
		{Email: "a@b.co", Password: "password123", Name: " ", Role: "APPLICANT"},
		{Email: "a@b.co", Password: "password123", Name: "A", Role: "OWNER"},
		{Email: "not-an-email", Password: "password123", Name: "A", Role: "APPLICANT"},
		{Email: "a@b.co", Password: strings.Repeat("p", maxPasswordBytes+1), Name: "A", Role: "APPLICANT"},
	}
	for _, in := range cases {
		if _, err := s.Register(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %+v, got %v", in, err)
		}
	}
}

func TestRegister_LongestPasswordAccepted(t *testing.T) {
	s := newTestService(newMemUserRepo(), "")
	pw := strings.Repeat("p", maxPasswordBytes)

	if _, err := s.Register(context.Background(), RegisterInput{Email: "long@example.com", Password: pw, Name: "L", Role: "APPLICANT"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := s.Login(context.Background(), LoginInput{Email: "long@example.com", Password: pw}); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newTestService(newMemUserRepo(), "")
	in := RegisterInput{Email: "dup@example.com", Password: "password123", Name: "D", Role: "APPLICANT"}

	if _, err := s.Register(context.Background(), in); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err := s.Register(context.Background(), in)
	if !errors.Is(err, ErrEmailAlreadyRegistered) || !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegister_AdminRequiresConfiguredCode(t *testing.T) {
	in := RegisterInput{Email: "root@example.com", Password: "password123", Name: "Root", Role: "ADMIN", AdminCode: "9999"}

	disabled := newTestService(newMemUserRepo(), "")
	if _, err := disabled.Register(context.Background(), in); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("admin self-registration must be disabled without a code, got %v", err)
	}

	enabled := newTestService(newMemUserRepo(), "long-random-code")
	if _, err := enabled.Register(context.Background(), in); !errors.Is(err, ErrAdminRegistrationDenied) {
		t.Fatalf("wrong code must be denied, got %v", err)
	}

	in.AdminCode = "long-random-code"
	u, err := enabled.Register(context.Background(), in)
	if err != nil || u.Role != user.RoleAdmin {
		t.Fatalf("expected admin, got %+v %v", u, err)
	}
}

func TestCreateAdmin_BypassesCode(t *testing.T) {
	s := newTestService(newMemUserRepo(), "")

	u, err := s.CreateAdmin(context.Background(), "ops@example.com", "password123", "Ops")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.Role != user.RoleAdmin {
		t.Fatalf("expected admin role, got %s", u.Role)
	}
}

func TestLogin(t *testing.T) {
	s := newTestService(newMemUserRepo(), "")
	ctx := context.Background()
	if _, err := s.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "password123", Name: "Bob", Role: "APPLICANT"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	u, err := s.Login(ctx, LoginInput{Email: "BOB@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.Role != user.RoleApplicant || u.PasswordHash != "" {
		t.Fatalf("unexpected user: %+v", u)
	}

	if _, err := s.Login(ctx, LoginInput{Email: "bob@example.com", Password: "wrong-password"}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if _, err := s.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "password123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email must look like bad credentials, got %v", err)
	}
}

func TestRegister_StoreFailure(t *testing.T) {
	repo := newMemUserRepo()
	repo.err = errors.New("connection refused")
	s := newTestService(repo, "")

	_, err := s.Register(context.Background(), RegisterInput{Email: "x@example.com", Password: "password123", Name: "X", Role: "APPLICANT"})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected upstream failure, got %v", err)
	}
}
