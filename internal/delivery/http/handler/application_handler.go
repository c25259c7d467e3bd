package handler

import (
	"context"
	"io"
	"mime/multipart"

	"job-board/internal/delivery/http/dto"
	"job-board/internal/delivery/http/middleware"
	"job-board/internal/domain/application"
	"job-board/internal/domain/policy"
	"job-board/internal/pkg/response"
	ucapp "job-board/internal/usecase/application"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	formCoverLetter = "coverLetter"
	formResume      = "resume"
)

type ApplicationUsecase interface {
	Submit(ctx context.Context, actor policy.Actor, in ucapp.SubmitInput) (application.Application, error)
	List(ctx context.Context, actor policy.Actor) ([]application.Detail, error)
	ListMine(ctx context.Context, actor policy.Actor) ([]application.Detail, error)
	UpdateStatus(ctx context.Context, actor policy.Actor, applicationID uuid.UUID, status string) (application.Detail, error)
}

type ApplicationHandler struct {
	uc             ApplicationUsecase
	maxResumeBytes int64
}

func NewApplicationHandler(uc ApplicationUsecase, maxResumeBytes int64) *ApplicationHandler {
	return &ApplicationHandler{uc: uc, maxResumeBytes: maxResumeBytes}
}

func (h *ApplicationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Get("/mine", h.ListMine)
	r.Patch("/:id/status", h.UpdateStatus)
}

// Submit handles POST /jobs/:id/applications as a multipart form with a
// coverLetter field and an optional resume file.
func (h *ApplicationHandler) Submit(c fiber.Ctx) error {
	jobID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Expected a multipart form", nil, err)
	}

	in := ucapp.SubmitInput{JobID: jobID}
	if vals := form.Value[formCoverLetter]; len(vals) > 0 {
		in.CoverLetter = vals[0]
	}
	if files := form.File[formResume]; len(files) > 0 && files[0].Size > 0 {
		rf, err := h.readResume(files[0])
		if err != nil {
			return err
		}
		in.Resume = rf
	}

	app, err := h.uc.Submit(c.Context(), middleware.ActorFrom(c), in)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, dto.NewApplicationResponse(app))
}

func (h *ApplicationHandler) List(c fiber.Ctx) error {
	items, err := h.uc.List(c.Context(), middleware.ActorFrom(c))
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationListResponse(items))
}

func (h *ApplicationHandler) ListMine(c fiber.Ctx) error {
	items, err := h.uc.ListMine(c.Context(), middleware.ActorFrom(c))
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationListResponse(items))
}

func (h *ApplicationHandler) UpdateStatus(c fiber.Ctx) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	d, err := h.uc.UpdateStatus(c.Context(), middleware.ActorFrom(c), id, req.Status)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationDetailResponse(d))
}

// readResume reads at most one byte past the limit so the résumé service can
// still tell an oversized file apart.
func (h *ApplicationHandler) readResume(fh *multipart.FileHeader) (*ucapp.ResumeFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, middleware.NewAppError(fiber.StatusBadRequest, "Unreadable resume upload", nil, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxResumeBytes+1))
	if err != nil {
		return nil, middleware.NewAppError(fiber.StatusBadRequest, "Unreadable resume upload", nil, err)
	}
	return &ucapp.ResumeFile{
		Data:        data,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Filename:    fh.Filename,
	}, nil
}
