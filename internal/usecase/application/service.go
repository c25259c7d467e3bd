package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"job-board/internal/domain"
	"job-board/internal/domain/application"
	"job-board/internal/domain/job"
	"job-board/internal/domain/policy"
	"job-board/internal/usecase/resume"

	"github.com/google/uuid"
)

var (
	ErrJobNotFound       = fmt.Errorf("%w: job not found", domain.ErrNotFound)
	ErrNotFound          = fmt.Errorf("%w: application not found", domain.ErrNotFound)
	ErrJobClosed         = fmt.Errorf("%w: job is not accepting applications", domain.ErrConflict)
	ErrAlreadyApplied    = fmt.Errorf("%w: already applied to this job", domain.ErrConflict)
	ErrAlreadyDecided    = fmt.Errorf("%w: application is no longer pending", domain.ErrConflict)
	ErrCannotApply       = fmt.Errorf("%w: only applicants can apply", domain.ErrForbidden)
	ErrCannotManage      = fmt.Errorf("%w: not allowed to review this application", domain.ErrForbidden)
	ErrCannotList        = fmt.Errorf("%w: not allowed to list applications", domain.ErrForbidden)
	ErrMissingCover      = fmt.Errorf("%w: cover letter is required", domain.ErrInvalidInput)
	ErrInvalidTransition = fmt.Errorf("%w: status must be APPROVED or REJECTED", domain.ErrInvalidInput)
	ErrInternal          = fmt.Errorf("%w: application store failure", domain.ErrUpstream)
)

// ResumeUploader stores the résumé attached to a submission.
type ResumeUploader interface {
	Upload(ctx context.Context, in resume.Upload) (string, error)
}

// JobReader is the part of the job store submissions need.
type JobReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (job.Job, error)
}

// StatusNotifier is told about every decided application.
type StatusNotifier interface {
	ApplicationStatusChanged(ctx context.Context, d application.Detail)
}

type ResumeFile struct {
	Data        []byte
	ContentType string
	Filename    string
}

type SubmitInput struct {
	JobID       uuid.UUID
	CoverLetter string
	Resume      *ResumeFile
}

type Options struct {
	AllowDuplicates bool
}

type Service struct {
	apps     application.Repository
	jobs     JobReader
	resumes  ResumeUploader
	notifier StatusNotifier
	opts     Options
	logger   *log.Logger
	now      func() time.Time
}

func NewService(apps application.Repository, jobs JobReader, resumes ResumeUploader, notifier StatusNotifier, opts Options, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		apps:     apps,
		jobs:     jobs,
		resumes:  resumes,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit writes the application row only after the résumé is stored, and
// the insert itself re-checks that the job is still OPEN.
func (s *Service) Submit(ctx context.Context, actor policy.Actor, in SubmitInput) (application.Application, error) {
	if !policy.CanSubmitApplications(actor.Role) {
		return application.Application{}, ErrCannotApply
	}

	j, err := s.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return application.Application{}, ErrJobNotFound
		}
		return application.Application{}, ErrInternal
	}
	if !policy.CanApplyToJob(actor.Role, j.Status) {
		return application.Application{}, ErrJobClosed
	}

	cover := strings.TrimSpace(in.CoverLetter)
	if cover == "" {
		return application.Application{}, ErrMissingCover
	}

	if !s.opts.AllowDuplicates {
		exists, err := s.apps.ExistsForApplicant(ctx, j.ID, actor.ID)
		if err != nil {
			return application.Application{}, ErrInternal
		}
		if exists {
			return application.Application{}, ErrAlreadyApplied
		}
	}

	var resumeKey *string
	if in.Resume != nil {
		key, err := s.resumes.Upload(ctx, resume.Upload{
			JobID:       j.ID,
			ApplicantID: actor.ID,
			Data:        in.Resume.Data,
			ContentType: in.Resume.ContentType,
			Filename:    in.Resume.Filename,
		})
		if err != nil {
			return application.Application{}, err
		}
		resumeKey = &key
	}

	now := s.now().UTC()
	a := application.Application{
		ID:          uuid.New(),
		JobID:       j.ID,
		ApplicantID: actor.ID,
		CoverLetter: cover,
		ResumeKey:   resumeKey,
		Status:      application.StatusPending,
		AppliedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.apps.Create(ctx, a); err != nil {
		if resumeKey != nil {
			s.logger.Printf("[Application] unreferenced resume key=%s err=%v", *resumeKey, err)
		}
		if errors.Is(err, application.ErrJobNotOpen) {
			return application.Application{}, ErrJobClosed
		}
		return application.Application{}, ErrInternal
	}

	s.logger.Printf("[Application] submitted application_id=%s job_id=%s applicant_id=%s", a.ID, j.ID, actor.ID)
	return a, nil
}

// List returns every application to admins and the applications on their own
// jobs to recruiters, newest first.
func (s *Service) List(ctx context.Context, actor policy.Actor) ([]application.Detail, error) {
	var f application.ListFilter
	switch {
	case policy.CanViewAllApplications(actor.Role):
	case policy.CanViewOwnPublishedApplications(actor.Role):
		id := actor.ID
		f.PublisherID = &id
	default:
		return nil, ErrCannotList
	}

	out, err := s.apps.List(ctx, f)
	if err != nil {
		return nil, ErrInternal
	}
	return out, nil
}

// ListMine returns the actor's own applications, newest first.
func (s *Service) ListMine(ctx context.Context, actor policy.Actor) ([]application.Detail, error) {
	if !policy.CanSubmitApplications(actor.Role) {
		return nil, ErrCannotList
	}
	id := actor.ID
	out, err := s.apps.List(ctx, application.ListFilter{ApplicantID: &id})
	if err != nil {
		return nil, ErrInternal
	}
	return out, nil
}

// UpdateStatus decides a PENDING application. The write only matches a
// PENDING row, so of two concurrent decisions exactly one wins.
func (s *Service) UpdateStatus(ctx context.Context, actor policy.Actor, applicationID uuid.UUID, status string) (application.Detail, error) {
	st, ok := application.ParseStatus(status)
	if !ok || !st.IsDecision() {
		return application.Detail{}, ErrInvalidTransition
	}

	d, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			return application.Detail{}, ErrNotFound
		}
		return application.Detail{}, ErrInternal
	}
	if !policy.CanManageApplication(actor, d.JobPublisherID) {
		return application.Detail{}, ErrCannotManage
	}
	if !policy.CanTransitionApplicationStatus(d.Status) {
		return application.Detail{}, ErrAlreadyDecided
	}

	if err := s.apps.UpdateStatusIfPending(ctx, applicationID, st); err != nil {
		switch {
		case errors.Is(err, application.ErrStatusConflict):
			return application.Detail{}, ErrAlreadyDecided
		case errors.Is(err, application.ErrNotFound):
			return application.Detail{}, ErrNotFound
		default:
			return application.Detail{}, ErrInternal
		}
	}

	d.Status = st
	d.UpdatedAt = s.now().UTC()
	s.logger.Printf("[Application] status application_id=%s status=%s by=%s", d.ID, st, actor.ID)
	if s.notifier != nil {
		s.notifier.ApplicationStatusChanged(ctx, d)
	}
	return d, nil
}
