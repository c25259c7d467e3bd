package ws

import (
	"context"
	"encoding/json"
	"time"

	"job-board/internal/domain/application"

	"github.com/google/uuid"
)

const EventApplicationStatus = "application_status_changed"

type ApplicationStatusEvent struct {
	Type          string    `json:"type"`
	ApplicationID uuid.UUID `json:"application_id"`
	JobID         uuid.UUID `json:"job_id"`
	JobTitle      string    `json:"job_title"`
	Status        string    `json:"status"`
	Timestamp     string    `json:"timestamp"`
}

// Notifier tells applicants about decisions on their applications.
type Notifier struct {
	hub *Hub
	now func() time.Time
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub, now: time.Now}
}

func (n *Notifier) ApplicationStatusChanged(_ context.Context, d application.Detail) {
	if n == nil || n.hub == nil {
		return
	}

	evt := ApplicationStatusEvent{
		Type:          EventApplicationStatus,
		ApplicationID: d.ID,
		JobID:         d.JobID,
		JobTitle:      d.JobTitle,
		Status:        string(d.Status),
		Timestamp:     n.now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}

	n.hub.SendTo(d.ApplicantID, b)
}
