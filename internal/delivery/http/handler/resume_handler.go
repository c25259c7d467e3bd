package handler

import (
	"context"
	"time"

	"job-board/internal/delivery/http/dto"
	"job-board/internal/delivery/http/middleware"
	"job-board/internal/domain/policy"
	"job-board/internal/pkg/response"
	"job-board/internal/usecase/resume"

	"github.com/gofiber/fiber/v3"
)

type ResumeUsecase interface {
	RequestDownloadLink(ctx context.Context, actor policy.Actor, key string) (string, error)
}

type ResumeHandler struct {
	uc ResumeUsecase
}

func NewResumeHandler(uc ResumeUsecase) *ResumeHandler {
	return &ResumeHandler{uc: uc}
}

func (h *ResumeHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/download", h.Download)
}

// Download answers with a presigned link; the file itself never passes
// through this service.
func (h *ResumeHandler) Download(c fiber.Ctx) error {
	url, err := h.uc.RequestDownloadLink(c.Context(), middleware.ActorFrom(c), c.Query("key"))
	if err != nil {
		return middleware.FromDomain(err)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ResumeLinkResponse{
		URL:       url,
		ExpiresIn: int64(resume.LinkTTL / time.Second),
	})
}
