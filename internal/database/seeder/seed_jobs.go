package seeder

import (
	"context"
	"fmt"

	"job-board/internal/database"
	"job-board/internal/domain/job"

	"github.com/google/uuid"
)

type JobsSeeder struct {
	PublisherEmail string
}

func (JobsSeeder) Name() string { return "jobs" }

// Run is a no-op once the publisher has any job, so reseeding never
// duplicates listings.
func (s JobsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "jobs", "id", "title", "description", "location", "salary", "publisher_id", "status"); err != nil {
		return err
	}

	var publisherID uuid.UUID
	if err := db.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, s.PublisherEmail).Scan(&publisherID); err != nil {
		if database.IsNoRows(err) {
			return fmt.Errorf("publisher %s not seeded", s.PublisherEmail)
		}
		return err
	}

	var existing int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE publisher_id = $1`, publisherID).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	salary := func(v float64) *float64 { return &v }
	items := []struct {
		Title       string
		Description string
		Location    string
		Salary      *float64
		Status      job.Status
	}{
		{Title: "Backend Engineer (Go)", Description: "Build and run the services behind our marketplace.", Location: "Remote", Salary: salary(95000), Status: job.StatusOpen},
		{Title: "Frontend Engineer", Description: "Own the candidate facing web app.", Location: "Jakarta", Salary: salary(80000), Status: job.StatusOpen},
		{Title: "Site Reliability Engineer", Description: "Keep Postgres, Redis and S3 healthy.", Location: "Singapore", Status: job.StatusOpen},
		{Title: "Data Analyst", Description: "Hiring funnel reporting. Position filled.", Location: "Remote", Salary: salary(60000), Status: job.StatusClosed},
	}

	tx, err := db.SQLDB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, it := range items {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO jobs (id, title, description, location, salary, publisher_id, status) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(),
			it.Title,
			it.Description,
			it.Location,
			it.Salary,
			publisherID,
			string(it.Status),
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
