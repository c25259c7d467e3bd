package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"job-board/internal/database"
	"job-board/internal/domain/application"
	"job-board/internal/domain/job"
	"job-board/internal/domain/user"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *bool:
			*d = v.(bool)
		case *string:
			*d = v.(string)
		}
	}
	return nil
}

type emptyRows struct{}

func (emptyRows) Close() {}
func (emptyRows) Next() bool { return false }
func (emptyRows) Scan(dest ...any) error { return nil }
func (emptyRows) Err() error { return nil }

// scriptedDB records every statement and answers from queues.
type scriptedDB struct {
	execs   []string
	queries []string
	args    [][]any

	execResults []int64
	execErr     error
	rows        []fakeRow
}

func (d *scriptedDB) Ping(context.Context) error { return nil }
func (d *scriptedDB) Close() error { return nil }
func (d *scriptedDB) SQLDB() *sql.DB { return nil }

func (d *scriptedDB) Exec(_ context.Context, query string, args ...any) (int64, error) {
	d.execs = append(d.execs, query)
	d.args = append(d.args, args)
	if d.execErr != nil {
		return 0, d.execErr
	}
	if len(d.execResults) == 0 {
		return 0, nil
	}
	n := d.execResults[0]
	d.execResults = d.execResults[1:]
	return n, nil
}

func (d *scriptedDB) Query(_ context.Context, query string, args ...any) (database.Rows, error) {
	d.queries = append(d.queries, query)
	d.args = append(d.args, args)
	return emptyRows{}, nil
}

func (d *scriptedDB) QueryRow(_ context.Context, query string, args ...any) database.Row {
	d.queries = append(d.queries, query)
	d.args = append(d.args, args)
	if len(d.rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	r := d.rows[0]
	d.rows = d.rows[1:]
	return r
}

func squash(q string) string {
	return strings.Join(strings.Fields(q), " ")
}

func TestApplicationRepository_UpdateStatusIfPending(t *testing.T) {
	c := qt.New(t)
	id := uuid.New()

	c.Run("decided", func(c *qt.C) {
		db := &scriptedDB{execResults: []int64{1}}
		err := NewPostgresApplicationRepository(db).UpdateStatusIfPending(context.Background(), id, application.StatusApproved)
		c.Assert(err, qt.IsNil)
		c.Assert(squash(db.execs[0]), qt.Contains, "WHERE id = $1 AND status = 'PENDING'")
		c.Assert(db.args[0], qt.DeepEquals, []any{id, "APPROVED"})
	})

	c.Run("already decided", func(c *qt.C) {
		db := &scriptedDB{execResults: []int64{0}, rows: []fakeRow{{values: []any{true}}}}
		err := NewPostgresApplicationRepository(db).UpdateStatusIfPending(context.Background(), id, application.StatusRejected)
		c.Assert(err, qt.ErrorIs, application.ErrStatusConflict)
	})

	c.Run("missing", func(c *qt.C) {
		db := &scriptedDB{execResults: []int64{0}, rows: []fakeRow{{values: []any{false}}}}
		err := NewPostgresApplicationRepository(db).UpdateStatusIfPending(context.Background(), id, application.StatusRejected)
		c.Assert(err, qt.ErrorIs, application.ErrNotFound)
	})
}

func TestApplicationRepository_CreateOnlyWhileOpen(t *testing.T) {
	c := qt.New(t)
	db := &scriptedDB{execResults: []int64{0}}

	err := NewPostgresApplicationRepository(db).Create(context.Background(), application.Application{
		ID:          uuid.New(),
		JobID:       uuid.New(),
		ApplicantID: uuid.New(),
		Status:      application.StatusPending,
		AppliedAt:   time.Now(),
	})
	c.Assert(err, qt.ErrorIs, application.ErrJobNotOpen)
	c.Assert(squash(db.execs[0]), qt.Contains, "WHERE EXISTS (SELECT 1 FROM jobs WHERE id = $2 AND status = 'OPEN')")
}

func TestApplicationRepository_ListNewestFirst(t *testing.T) {
	c := qt.New(t)
	db := &scriptedDB{}
	publisher := uuid.New()

	out, err := NewPostgresApplicationRepository(db).List(context.Background(), application.ListFilter{PublisherID: &publisher})
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.HasLen, 0)
	c.Assert(squash(db.queries[0]), qt.Contains, "ORDER BY a.applied_at DESC, a.id DESC")
	c.Assert(db.args[0][0], qt.Equals, &publisher)
}

func TestApplicationRepository_FindResumeOwnerMissing(t *testing.T) {
	c := qt.New(t)
	_, err := NewPostgresApplicationRepository(&scriptedDB{}).FindResumeOwner(context.Background(), "resumes/x/y.pdf")
	c.Assert(err, qt.ErrorIs, application.ErrNotFound)
}

func TestJobRepository_Delete(t *testing.T) {
	c := qt.New(t)
	id := uuid.New()

	c.Run("referenced by applications", func(c *qt.C) {
		db := &scriptedDB{execErr: &pgconn.PgError{Code: "23503"}}
		err := NewPostgresJobRepository(db).Delete(context.Background(), id)
		c.Assert(err, qt.ErrorIs, job.ErrHasApplications)
	})

	c.Run("missing", func(c *qt.C) {
		err := NewPostgresJobRepository(&scriptedDB{execResults: []int64{0}}).Delete(context.Background(), id)
		c.Assert(err, qt.ErrorIs, job.ErrNotFound)
	})

	c.Run("other failure passes through", func(c *qt.C) {
		boom := errors.New("connection reset")
		err := NewPostgresJobRepository(&scriptedDB{execErr: boom}).Delete(context.Background(), id)
		c.Assert(err, qt.ErrorIs, boom)
	})
}

func TestJobRepository_ListNewestFirst(t *testing.T) {
	c := qt.New(t)
	db := &scriptedDB{}

	_, err := NewPostgresJobRepository(db).List(context.Background(), job.ListFilter{OnlyOpen: true})
	c.Assert(err, qt.IsNil)
	c.Assert(squash(db.queries[0]), qt.Contains, "ORDER BY j.posted_at DESC, j.id DESC")
	c.Assert(db.args[0], qt.DeepEquals, []any{true})
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	c := qt.New(t)
	db := &scriptedDB{execErr: &pgconn.PgError{Code: "23505"}}

	err := NewPostgresUserRepository(db).Create(context.Background(), user.User{ID: uuid.New(), Email: "a@example.com", Role: user.RoleApplicant})
	c.Assert(err, qt.ErrorIs, user.ErrEmailTaken)
}
