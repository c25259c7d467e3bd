package handler

import (
	"context"

	"job-board/internal/delivery/http/dto"
	"job-board/internal/delivery/http/middleware"
	"job-board/internal/domain/job"
	"job-board/internal/domain/policy"
	"job-board/internal/pkg/response"
	ucjob "job-board/internal/usecase/job"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type JobUsecase interface {
	Create(ctx context.Context, actor policy.Actor, in ucjob.Fields) (job.Job, error)
	Update(ctx context.Context, actor policy.Actor, jobID uuid.UUID, in ucjob.Fields) (job.Job, error)
	UpdateStatus(ctx context.Context, actor policy.Actor, jobID uuid.UUID, status string) (job.Job, error)
	Delete(ctx context.Context, actor policy.Actor, jobID uuid.UUID) error
	List(ctx context.Context, actor policy.Actor) ([]job.ListItem, error)
	Get(ctx context.Context, actor policy.Actor, jobID uuid.UUID) (ucjob.Detail, error)
}

type JobHandler struct {
	uc JobUsecase
}

type jobRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Salary      *float64 `json:"salary"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func NewJobHandler(uc JobUsecase) *JobHandler {
	return &JobHandler{uc: uc}
}

func (h *JobHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/:id", h.Get)
	r.Put("/:id", h.Update)
	r.Patch("/:id/status", h.UpdateStatus)
	r.Delete("/:id", h.Delete)
}

func (h *JobHandler) List(c fiber.Ctx) error {
	items, err := h.uc.List(c.Context(), middleware.ActorFrom(c))
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobListResponse(items))
}

func (h *JobHandler) Get(c fiber.Ctx) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.uc.Get(c.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobDetailResponse(d))
}

func (h *JobHandler) Create(c fiber.Ctx) error {
	var req jobRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	j, err := h.uc.Create(c.Context(), middleware.ActorFrom(c), req.fields())
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, dto.NewJobResponse(j))
}

func (h *JobHandler) Update(c fiber.Ctx) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req jobRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	j, err := h.uc.Update(c.Context(), middleware.ActorFrom(c), id, req.fields())
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobResponse(j))
}

func (h *JobHandler) UpdateStatus(c fiber.Ctx) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	j, err := h.uc.UpdateStatus(c.Context(), middleware.ActorFrom(c), id, req.Status)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobResponse(j))
}

func (h *JobHandler) Delete(c fiber.Ctx) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Context(), middleware.ActorFrom(c), id); err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (r jobRequest) fields() ucjob.Fields {
	return ucjob.Fields{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Salary:      r.Salary,
	}
}

func pathUUID(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+name, nil, err)
	}
	return id, nil
}
