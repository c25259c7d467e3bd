package job

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusOpen, StatusClosed:
		return st, true
	default:
		return "", false
	}
}

type Job struct {
	ID          uuid.UUID
	Title       string
	Description string
	Location    string
	Salary      *float64
	PublisherID uuid.UUID
	Status      Status
	PostedAt    time.Time
	UpdatedAt   time.Time
}

// ListItem is a Job as shown in listings, with its publisher and the number
// of applications it has received.
type ListItem struct {
	Job
	PublisherName    *string
	PublisherEmail   string
	ApplicationCount int
}
