package v1

import (
	"job-board/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterJobs(r fiber.Router, jobHandler *handler.JobHandler, applicationHandler *handler.ApplicationHandler) {
	if r == nil {
		return
	}
	if jobHandler == nil {
		return
	}

	jobHandler.RegisterRoutes(r)
	if applicationHandler != nil {
		r.Post("/:id/applications", applicationHandler.Submit)
	}
}

func RegisterApplications(r fiber.Router, applicationHandler *handler.ApplicationHandler) {
	if r == nil {
		return
	}
	if applicationHandler == nil {
		return
	}

	applicationHandler.RegisterRoutes(r)
}
