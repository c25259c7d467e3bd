package user

import (
	"context"
	"errors"
	"fmt"

	"job-board/internal/domain"
	"job-board/internal/domain/user"

	"github.com/google/uuid"
)

var (
	ErrNotFound = fmt.Errorf("%w: user not found", domain.ErrNotFound)
	ErrInternal = fmt.Errorf("%w: user store failure", domain.ErrUpstream)
)

type Service struct {
	users user.Repository
}

func NewService(users user.Repository) *Service {
	return &Service{users: users}
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (user.User, error) {
	usr, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, ErrInternal
	}
	usr.PasswordHash = ""
	return usr, nil
}
