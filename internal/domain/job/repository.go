package job

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("job not found")
	// ErrHasApplications is returned by Delete when applications still
	// reference the job.
	ErrHasApplications = errors.New("job has applications")
)

type ListFilter struct {
	OnlyOpen bool
}

type Repository interface {
	Create(ctx context.Context, j Job) error
	GetByID(ctx context.Context, id uuid.UUID) (Job, error)
	Update(ctx context.Context, j Job) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter) ([]ListItem, error)
}
