package repository

import (
	"context"

	"job-board/internal/database"
	"job-board/internal/domain/job"

	"github.com/google/uuid"
)

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobColumns = `j.id, j.title, j.description, j.location, j.salary, j.publisher_id, j.status, j.posted_at, j.updated_at`

func (r *PostgresJobRepository) Create(ctx context.Context, j job.Job) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO jobs (id, title, description, location, salary, publisher_id, status, posted_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		j.ID, j.Title, j.Description, j.Location, j.Salary, j.PublisherID, string(j.Status), j.PostedAt,
	)
	return err
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Job, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE j.id = $1`, id)

	var (
		j      job.Job
		status string
	)
	if err := row.Scan(&j.ID, &j.Title, &j.Description, &j.Location, &j.Salary, &j.PublisherID, &status, &j.PostedAt, &j.UpdatedAt); err != nil {
		if database.IsNoRows(err) {
			return job.Job{}, job.ErrNotFound
		}
		return job.Job{}, err
	}
	j.Status = job.Status(status)
	return j, nil
}

func (r *PostgresJobRepository) Update(ctx context.Context, j job.Job) error {
	n, err := r.db.Exec(ctx,
		`UPDATE jobs
		 SET title = $2, description = $3, location = $4, salary = $5, updated_at = now()
		 WHERE id = $1`,
		j.ID, j.Title, j.Description, j.Location, j.Salary,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return job.ErrNotFound
	}
	return nil
}

func (r *PostgresJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status job.Status) error {
	n, err := r.db.Exec(ctx,
		`UPDATE jobs SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return job.ErrNotFound
	}
	return nil
}

// Delete relies on the applications.job_id foreign key to refuse jobs that
// still have applications.
func (r *PostgresJobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return job.ErrHasApplications
		}
		return err
	}
	if n == 0 {
		return job.ErrNotFound
	}
	return nil
}

func (r *PostgresJobRepository) List(ctx context.Context, f job.ListFilter) ([]job.ListItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+jobColumns+`, u.name, u.email,
		        (SELECT COUNT(*) FROM applications a WHERE a.job_id = j.id)
		 FROM jobs j
		 JOIN users u ON u.id = j.publisher_id
		 WHERE ($1::boolean IS FALSE OR j.status = 'OPEN')
		 ORDER BY j.posted_at DESC, j.id DESC`,
		f.OnlyOpen,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.ListItem, 0)
	for rows.Next() {
		var (
			it     job.ListItem
			status string
		)
		if err := rows.Scan(
			&it.ID, &it.Title, &it.Description, &it.Location, &it.Salary, &it.PublisherID, &status, &it.PostedAt, &it.UpdatedAt,
			&it.PublisherName, &it.PublisherEmail, &it.ApplicationCount,
		); err != nil {
			return nil, err
		}
		it.Status = job.Status(status)
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
