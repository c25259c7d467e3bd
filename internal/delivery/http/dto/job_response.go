package dto

import (
	"time"

	"job-board/internal/domain/job"
	ucjob "job-board/internal/usecase/job"

	"github.com/google/uuid"
)

type JobResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Salary      *float64  `json:"salary"`
	PublisherID uuid.UUID `json:"publisher_id"`
	Status      string    `json:"status"`
	PostedAt    time.Time `json:"posted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewJobResponse(j job.Job) JobResponse {
	return JobResponse{
		ID:          j.ID,
		Title:       j.Title,
		Description: j.Description,
		Location:    j.Location,
		Salary:      j.Salary,
		PublisherID: j.PublisherID,
		Status:      string(j.Status),
		PostedAt:    j.PostedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

type JobListResponse struct {
	JobResponse
	PublisherName    *string `json:"publisher_name"`
	PublisherEmail   string  `json:"publisher_email"`
	ApplicationCount int     `json:"application_count"`
}

func NewJobListResponse(items []job.ListItem) []JobListResponse {
	out := make([]JobListResponse, 0, len(items))
	for _, it := range items {
		out = append(out, JobListResponse{
			JobResponse:      NewJobResponse(it.Job),
			PublisherName:    it.PublisherName,
			PublisherEmail:   it.PublisherEmail,
			ApplicationCount: it.ApplicationCount,
		})
	}
	return out
}

type JobDetailResponse struct {
	JobResponse
	HasApplied bool `json:"has_applied"`
	CanManage  bool `json:"can_manage"`
}

func NewJobDetailResponse(d ucjob.Detail) JobDetailResponse {
	return JobDetailResponse{
		JobResponse: NewJobResponse(d.Job),
		HasApplied:  d.HasApplied,
		CanManage:   d.CanManage,
	}
}
