package job

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"job-board/internal/domain"
	"job-board/internal/domain/job"
	"job-board/internal/domain/policy"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = fmt.Errorf("%w: job not found", domain.ErrNotFound)
	ErrForbidden       = fmt.Errorf("%w: not allowed to manage this job", domain.ErrForbidden)
	ErrHasApplications = fmt.Errorf("%w: job still has applications", domain.ErrConflict)
	ErrInternal        = fmt.Errorf("%w: job store failure", domain.ErrUpstream)
)

type Fields struct {
	Title       string
	Description string
	Location    string
	Salary      *float64
}

// ApplicationLookup answers whether an applicant already applied to a job.
type ApplicationLookup interface {
	ExistsForApplicant(ctx context.Context, jobID, applicantID uuid.UUID) (bool, error)
}

// Detail is a job as shown on its own page.
type Detail struct {
	job.Job
	HasApplied bool
	CanManage  bool
}

type Service struct {
	jobs   job.Repository
	apps   ApplicationLookup
	logger *log.Logger
	now    func() time.Time
}

func NewService(jobs job.Repository, apps ApplicationLookup, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{jobs: jobs, apps: apps, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, actor policy.Actor, in Fields) (job.Job, error) {
	if !policy.CanCreateJob(actor.Role) {
		return job.Job{}, fmt.Errorf("%w: only recruiters can post jobs", domain.ErrForbidden)
	}
	f, err := validateFields(in)
	if err != nil {
		return job.Job{}, err
	}

	now := s.now().UTC()
	j := job.Job{
		ID:          uuid.New(),
		Title:       f.Title,
		Description: f.Description,
		Location:    f.Location,
		Salary:      f.Salary,
		PublisherID: actor.ID,
		Status:      job.StatusOpen,
		PostedAt:    now,
		UpdatedAt:   now,
	}
	if err := s.jobs.Create(ctx, j); err != nil {
		s.logger.Printf("[Job] create failed publisher_id=%s err=%v", actor.ID, err)
		return job.Job{}, ErrInternal
	}
	s.logger.Printf("[Job] created job_id=%s publisher_id=%s", j.ID, actor.ID)
	return j, nil
}

func (s *Service) Update(ctx context.Context, actor policy.Actor, jobID uuid.UUID, in Fields) (job.Job, error) {
	j, err := s.loadManaged(ctx, actor, jobID)
	if err != nil {
		return job.Job{}, err
	}
	f, err := validateFields(in)
	if err != nil {
		return job.Job{}, err
	}

	j.Title = f.Title
	j.Description = f.Description
	j.Location = f.Location
	j.Salary = f.Salary
	j.UpdatedAt = s.now().UTC()

	if err := s.jobs.Update(ctx, j); err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return job.Job{}, ErrNotFound
		}
		return job.Job{}, ErrInternal
	}
	return j, nil
}

// UpdateStatus is idempotent: setting the current status again succeeds.
func (s *Service) UpdateStatus(ctx context.Context, actor policy.Actor, jobID uuid.UUID, status string) (job.Job, error) {
	st, ok := job.ParseStatus(status)
	if !ok {
		return job.Job{}, fmt.Errorf("%w: status must be OPEN or CLOSED", domain.ErrInvalidInput)
	}
	j, err := s.loadManaged(ctx, actor, jobID)
	if err != nil {
		return job.Job{}, err
	}
	if j.Status == st {
		return j, nil
	}

	if err := s.jobs.UpdateStatus(ctx, jobID, st); err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return job.Job{}, ErrNotFound
		}
		return job.Job{}, ErrInternal
	}
	s.logger.Printf("[Job] status job_id=%s from=%s to=%s", jobID, j.Status, st)
	j.Status = st
	j.UpdatedAt = s.now().UTC()
	return j, nil
}

func (s *Service) Delete(ctx context.Context, actor policy.Actor, jobID uuid.UUID) error {
	if _, err := s.loadManaged(ctx, actor, jobID); err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, jobID); err != nil {
		switch {
		case errors.Is(err, job.ErrHasApplications):
			return ErrHasApplications
		case errors.Is(err, job.ErrNotFound):
			return ErrNotFound
		default:
			return ErrInternal
		}
	}
	s.logger.Printf("[Job] deleted job_id=%s by=%s", jobID, actor.ID)
	return nil
}

// List hides CLOSED jobs from roles that cannot see them. Application counts
// are only kept on jobs the actor manages.
func (s *Service) List(ctx context.Context, actor policy.Actor) ([]job.ListItem, error) {
	items, err := s.jobs.List(ctx, job.ListFilter{OnlyOpen: !policy.CanViewClosedJobs(actor.Role)})
	if err != nil {
		return nil, ErrInternal
	}
	for i := range items {
		if !policy.CanManageJob(actor, items[i].PublisherID) {
			items[i].ApplicationCount = 0
		}
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, actor policy.Actor, jobID uuid.UUID) (Detail, error) {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return Detail{}, ErrNotFound
		}
		return Detail{}, ErrInternal
	}
	if j.Status == job.StatusClosed && !policy.CanViewClosedJobs(actor.Role) {
		return Detail{}, ErrNotFound
	}

	d := Detail{Job: j, CanManage: policy.CanManageJob(actor, j.PublisherID)}
	if policy.CanSubmitApplications(actor.Role) && s.apps != nil {
		applied, err := s.apps.ExistsForApplicant(ctx, j.ID, actor.ID)
		if err != nil {
			return Detail{}, ErrInternal
		}
		d.HasApplied = applied
	}
	return d, nil
}

func (s *Service) loadManaged(ctx context.Context, actor policy.Actor, jobID uuid.UUID) (job.Job, error) {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return job.Job{}, ErrNotFound
		}
		return job.Job{}, ErrInternal
	}
	if !policy.CanManageJob(actor, j.PublisherID) {
		return job.Job{}, ErrForbidden
	}
	return j, nil
}

func validateFields(in Fields) (Fields, error) {
	out := Fields{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		Salary:      in.Salary,
	}
	if out.Title == "" || out.Description == "" || out.Location == "" {
		return Fields{}, fmt.Errorf("%w: title, description and location are required", domain.ErrInvalidInput)
	}
	if out.Salary != nil && (*out.Salary < 0 || math.IsNaN(*out.Salary) || math.IsInf(*out.Salary, 0)) {
		return Fields{}, fmt.Errorf("%w: salary must be a non-negative number", domain.ErrInvalidInput)
	}
	return out, nil
}
