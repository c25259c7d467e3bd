package v1

import (
	"job-board/internal/delivery/http/handler"
	"job-board/internal/delivery/http/middleware"
	"job-board/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// Handlers is everything the v1 API mounts. Nil handlers are skipped.
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Job          *handler.JobHandler
	Application  *handler.ApplicationHandler
	Resume       *handler.ResumeHandler
	Health       *handler.HealthHandler
	Notification *ws.Handler

	AuthMiddleware *middleware.AuthMiddleware
	AuthRateLimit  *middleware.RateLimitMiddleware
}

func Register(r fiber.Router, h Handlers) {
	if r == nil {
		return
	}

	if h.Auth != nil {
		authGroup := r.Group("/auth")
		if h.AuthRateLimit != nil {
			authGroup.Use(h.AuthRateLimit.Middleware())
		}
		h.Auth.RegisterRoutes(authGroup)
	}

	if h.AuthMiddleware == nil {
		return
	}
	protected := r.Group("", h.AuthMiddleware.Middleware())

	RegisterUsers(protected.Group("/users"), h.User)
	RegisterJobs(protected.Group("/jobs"), h.Job, h.Application)
	RegisterApplications(protected.Group("/applications"), h.Application)

	if h.Resume != nil {
		h.Resume.RegisterRoutes(protected.Group("/resumes"))
	}
	if h.Notification != nil {
		protected.Get("/ws/notifications", h.Notification.HandleNotifications)
	}
}
