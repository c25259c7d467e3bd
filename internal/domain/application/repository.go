package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("application not found")
	// ErrJobNotOpen is returned by Create when the job is missing or no
	// longer OPEN at insert time.
	ErrJobNotOpen = errors.New("job is not open")
	// ErrStatusConflict is returned by UpdateStatusIfPending when the
	// application is no longer PENDING.
	ErrStatusConflict = errors.New("application is not pending")
)

type ListFilter struct {
	PublisherID *uuid.UUID
	ApplicantID *uuid.UUID
}

type Repository interface {
	// Create inserts the application only while its job is OPEN.
	Create(ctx context.Context, a Application) error
	GetByID(ctx context.Context, id uuid.UUID) (Detail, error)
	List(ctx context.Context, f ListFilter) ([]Detail, error)
	ExistsForApplicant(ctx context.Context, jobID, applicantID uuid.UUID) (bool, error)
	// UpdateStatusIfPending moves a PENDING application to status in one
	// conditional write.
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status Status) error
	FindResumeOwner(ctx context.Context, key string) (ResumeOwner, error)
}
