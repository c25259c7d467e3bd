package seeder

import (
	"context"
	"fmt"

	"job-board/internal/database"
	"job-board/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UsersSeeder struct {
	Password string
}

func (UsersSeeder) Name() string { return "users" }

func (s UsersSeeder) Run(ctx context.Context, db database.DB) error {
	if len(s.Password) < 8 {
		return fmt.Errorf("demo password must be at least 8 characters")
	}
	if err := EnsureTableColumns(ctx, db, "users", "id", "email", "password_hash", "name", "role"); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	items := []struct {
		Email string
		Name  string
		Role  user.Role
	}{
		{Email: DemoRecruiterEmail, Name: "Demo Recruiter", Role: user.RoleRecruiter},
		{Email: DemoApplicantEmail, Name: "Demo Applicant", Role: user.RoleApplicant},
	}

	for _, it := range items {
		if _, err := db.Exec(
			ctx,
			`INSERT INTO users (id, email, password_hash, name, role) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (email) DO NOTHING`,
			uuid.New(),
			it.Email,
			string(hash),
			it.Name,
			string(it.Role),
		); err != nil {
			return err
		}
	}
	return nil
}
