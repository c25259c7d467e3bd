package seeder

import (
	"context"

	"job-board/internal/database"
)

// Seeder inserts one kind of demo data. Run must be safe to repeat.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
