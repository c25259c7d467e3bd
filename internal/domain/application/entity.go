package application

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, true
	default:
		return "", false
	}
}

// IsDecision reports whether st is a valid target of a review decision.
func (st Status) IsDecision() bool {
	return st == StatusApproved || st == StatusRejected
}

type Application struct {
	ID          uuid.UUID
	JobID       uuid.UUID
	ApplicantID uuid.UUID
	CoverLetter string
	ResumeKey   *string
	Status      Status
	AppliedAt   time.Time
	UpdatedAt   time.Time
}

// Detail is an Application joined with the job and applicant fields the
// review screens need.
type Detail struct {
	Application
	JobTitle       string
	JobPublisherID uuid.UUID
	ApplicantName  *string
	ApplicantEmail string
}

// ResumeOwner identifies the application a stored résumé belongs to.
type ResumeOwner struct {
	ApplicationID  uuid.UUID
	ApplicantID    uuid.UUID
	JobID          uuid.UUID
	JobPublisherID uuid.UUID
}
