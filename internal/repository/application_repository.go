package repository

import (
	"context"

	"job-board/internal/database"
	"job-board/internal/domain/application"

	"github.com/google/uuid"
)

type PostgresApplicationRepository struct {
	db database.DB
}

func NewPostgresApplicationRepository(db database.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

const applicationDetailSelect = `SELECT a.id, a.job_id, a.applicant_id, a.cover_letter, a.resume_url, a.status, a.applied_at, a.updated_at,
	       j.title, j.publisher_id, u.name, u.email
	FROM applications a
	JOIN jobs j ON j.id = a.job_id
	JOIN users u ON u.id = a.applicant_id`

// Create writes the row only while the job is OPEN, so a job closed between
// the caller's check and this insert still rejects the application.
func (r *PostgresApplicationRepository) Create(ctx context.Context, a application.Application) error {
	n, err := r.db.Exec(ctx,
		`INSERT INTO applications (id, job_id, applicant_id, cover_letter, resume_url, status, applied_at, updated_at)
		 SELECT $1, $2, $3, $4, $5, $6, $7, $7
		 WHERE EXISTS (SELECT 1 FROM jobs WHERE id = $2 AND status = 'OPEN')`,
		a.ID, a.JobID, a.ApplicantID, a.CoverLetter, a.ResumeKey, string(a.Status), a.AppliedAt,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return application.ErrJobNotOpen
	}
	return nil
}

func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (application.Detail, error) {
	row := r.db.QueryRow(ctx, applicationDetailSelect+` WHERE a.id = $1`, id)
	d, err := scanApplicationDetail(row)
	if err != nil {
		if database.IsNoRows(err) {
			return application.Detail{}, application.ErrNotFound
		}
		return application.Detail{}, err
	}
	return d, nil
}

// List orders by applied_at DESC with id as a tie breaker so pages are stable.
func (r *PostgresApplicationRepository) List(ctx context.Context, f application.ListFilter) ([]application.Detail, error) {
	rows, err := r.db.Query(ctx,
		applicationDetailSelect+`
	WHERE ($1::uuid IS NULL OR j.publisher_id = $1)
	  AND ($2::uuid IS NULL OR a.applicant_id = $2)
	ORDER BY a.applied_at DESC, a.id DESC`,
		f.PublisherID, f.ApplicantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]application.Detail, 0)
	for rows.Next() {
		d, err := scanApplicationDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresApplicationRepository) ExistsForApplicant(ctx context.Context, jobID, applicantID uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM applications WHERE job_id = $1 AND applicant_id = $2)`,
		jobID, applicantID,
	)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresApplicationRepository) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status application.Status) error {
	n, err := r.db.Exec(ctx,
		`UPDATE applications SET status = $2, updated_at = now()
		 WHERE id = $1 AND status = 'PENDING'`,
		id, string(status),
	)
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)`, id)
	if err := row.Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return application.ErrNotFound
	}
	return application.ErrStatusConflict
}

func (r *PostgresApplicationRepository) FindResumeOwner(ctx context.Context, key string) (application.ResumeOwner, error) {
	var o application.ResumeOwner
	row := r.db.QueryRow(ctx,
		`SELECT a.id, a.applicant_id, a.job_id, j.publisher_id
		 FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 WHERE a.resume_url = $1`,
		key,
	)
	if err := row.Scan(&o.ApplicationID, &o.ApplicantID, &o.JobID, &o.JobPublisherID); err != nil {
		if database.IsNoRows(err) {
			return application.ResumeOwner{}, application.ErrNotFound
		}
		return application.ResumeOwner{}, err
	}
	return o, nil
}

func scanApplicationDetail(row database.Row) (application.Detail, error) {
	var (
		d      application.Detail
		status string
	)
	err := row.Scan(
		&d.ID, &d.JobID, &d.ApplicantID, &d.CoverLetter, &d.ResumeKey, &status, &d.AppliedAt, &d.UpdatedAt,
		&d.JobTitle, &d.JobPublisherID, &d.ApplicantName, &d.ApplicantEmail,
	)
	if err != nil {
		return application.Detail{}, err
	}
	d.Status = application.Status(status)
	return d, nil
}
