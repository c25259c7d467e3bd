package dto

import (
	"time"

	"job-board/internal/domain/application"

	"github.com/google/uuid"
)

type ApplicationResponse struct {
	ID             uuid.UUID `json:"id"`
	JobID          uuid.UUID `json:"job_id"`
	JobTitle       string    `json:"job_title,omitempty"`
	ApplicantID    uuid.UUID `json:"applicant_id"`
	ApplicantName  *string   `json:"applicant_name,omitempty"`
	ApplicantEmail string    `json:"applicant_email,omitempty"`
	CoverLetter    string    `json:"cover_letter"`
	ResumeKey      *string   `json:"resume_key"`
	Status         string    `json:"status"`
	AppliedAt      time.Time `json:"applied_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewApplicationResponse(a application.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:          a.ID,
		JobID:       a.JobID,
		ApplicantID: a.ApplicantID,
		CoverLetter: a.CoverLetter,
		ResumeKey:   a.ResumeKey,
		Status:      string(a.Status),
		AppliedAt:   a.AppliedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func NewApplicationDetailResponse(d application.Detail) ApplicationResponse {
	res := NewApplicationResponse(d.Application)
	res.JobTitle = d.JobTitle
	res.ApplicantName = d.ApplicantName
	res.ApplicantEmail = d.ApplicantEmail
	return res
}

func NewApplicationListResponse(items []application.Detail) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(items))
	for _, d := range items {
		out = append(out, NewApplicationDetailResponse(d))
	}
	return out
}

type ResumeLinkResponse struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in"`
}
