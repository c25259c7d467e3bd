package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"job-board/internal/delivery/http/middleware"
	"job-board/internal/domain"
	"job-board/internal/domain/application"
	"job-board/internal/domain/job"
	"job-board/internal/domain/policy"
	"job-board/internal/domain/user"
	ucapp "job-board/internal/usecase/application"
	ucjob "job-board/internal/usecase/job"

	qt "github.com/frankban/quicktest"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

func newTestApp(actor policy.Actor) *fiber.App {
	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(log.New(io.Discard, "", 0)).Middleware())
	app.Use(func(c fiber.Ctx) error {
		c.Locals(middleware.CtxActorKey, actor)
		return c.Next()
	})
	return app
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(c *qt.C, res *http.Response) envelope {
	c.Helper()
	defer res.Body.Close()
	var e envelope
	c.Assert(json.NewDecoder(res.Body).Decode(&e), qt.IsNil)
	return e
}

type stubApplications struct {
	got    ucapp.SubmitInput
	actor  policy.Actor
	err    error
	detail application.Detail
}

func (s *stubApplications) Submit(_ context.Context, actor policy.Actor, in ucapp.SubmitInput) (application.Application, error) {
	s.actor, s.got = actor, in
	if s.err != nil {
		return application.Application{}, s.err
	}
	return application.Application{ID: uuid.New(), JobID: in.JobID, ApplicantID: actor.ID, CoverLetter: in.CoverLetter, Status: application.StatusPending}, nil
}

func (s *stubApplications) List(context.Context, policy.Actor) ([]application.Detail, error) {
	return []application.Detail{s.detail}, s.err
}

func (s *stubApplications) ListMine(context.Context, policy.Actor) ([]application.Detail, error) {
	return nil, s.err
}

func (s *stubApplications) UpdateStatus(_ context.Context, _ policy.Actor, id uuid.UUID, status string) (application.Detail, error) {
	if s.err != nil {
		return application.Detail{}, s.err
	}
	d := s.detail
	d.ID = id
	d.Status = application.Status(status)
	return d, nil
}

func multipartBody(c *qt.C, cover string, file []byte, contentType string) (*bytes.Buffer, string) {
	c.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	c.Assert(w.WriteField(formCoverLetter, cover), qt.IsNil)
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="cv.pdf"`, formResume))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		c.Assert(err, qt.IsNil)
		_, err = part.Write(file)
		c.Assert(err, qt.IsNil)
	}
	c.Assert(w.Close(), qt.IsNil)
	return &buf, w.FormDataContentType()
}

func TestApplicationHandler_Submit(t *testing.T) {
	c := qt.New(t)
	actor := policy.Actor{ID: uuid.New(), Role: user.RoleApplicant}
	stub := &stubApplications{}
	app := newTestApp(actor)
	app.Post("/jobs/:id/applications", NewApplicationHandler(stub, 1024).Submit)

	jobID := uuid.New()
	body, ct := multipartBody(c, "hello", []byte("%PDF-1.4 data"), "application/pdf")
	req := httptest.NewRequest(http.MethodPost, "/jobs/"+jobID.String()+"/applications", body)
	req.Header.Set("Content-Type", ct)

	res, err := app.Test(req)
	c.Assert(err, qt.IsNil)
	c.Assert(res.StatusCode, qt.Equals, fiber.StatusCreated)

	c.Assert(stub.actor, qt.Equals, actor)
	c.Assert(stub.got.JobID, qt.Equals, jobID)
	c.Assert(stub.got.CoverLetter, qt.Equals, "hello")
	c.Assert(stub.got.Resume, qt.Not(qt.IsNil))
	c.Assert(stub.got.Resume.ContentType, qt.Equals, "application/pdf")
	c.Assert(stub.got.Resume.Filename, qt.Equals, "cv.pdf")
	c.Assert(string(stub.got.Resume.Data), qt.Equals, "%PDF-1.4 data")
}

func TestApplicationHandler_SubmitWithoutResume(t *testing.T) {
	c := qt.New(t)
	stub := &stubApplications{}
	app := newTestApp(policy.Actor{ID: uuid.New(), Role: user.RoleApplicant})
	app.Post("/jobs/:id/applications", NewApplicationHandler(stub, 1024).Submit)

	body, ct := multipartBody(c, "hello", nil, "")
	req := httptest.NewRequest(http.MethodPost, "/jobs/"+uuid.NewString()+"/applications", body)
	req.Header.Set("Content-Type", ct)

	res, err := app.Test(req)
	c.Assert(err, qt.IsNil)
	c.Assert(res.StatusCode, qt.Equals, fiber.StatusCreated)
	c.Assert(stub.got.Resume, qt.IsNil)
}

func TestApplicationHandler_SubmitErrors(t *testing.T) {
	c := qt.New(t)

	c.Run("not multipart", func(c *qt.C) {
		app := newTestApp(policy.Actor{ID: uuid.New(), Role: user.RoleApplicant})
		app.Post("/jobs/:id/applications", NewApplicationHandler(&stubApplications{}, 1024).Submit)

		req := httptest.NewRequest(http.MethodPost, "/jobs/"+uuid.NewString()+"/applications", strings.NewReader(`{"coverLetter":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		res, err := app.Test(req)
		c.Assert(err, qt.IsNil)
		c.Assert(res.StatusCode, qt.Equals, fiber.StatusBadRequest)
	})

	c.Run("bad job id", func(c *qt.C) {
		app := newTestApp(policy.Actor{ID: uuid.New(), Role: user.RoleApplicant})
		app.Post("/jobs/:id/applications", NewApplicationHandler(&stubApplications{}, 1024).Submit)

		body, ct := multipartBody(c, "hello", nil, "")
		req := httptest.NewRequest(http.MethodPost, "/jobs/not-a-uuid/applications", body)
		req.Header.Set("Content-Type", ct)
		res, err := app.Test(req)
		c.Assert(err, qt.IsNil)
		c.Assert(res.StatusCode, qt.Equals, fiber.StatusBadRequest)
	})

	c.Run("closed job", func(c *qt.C) {
		stub := &stubApplications{err: ucapp.ErrJobClosed}
		app := newTestApp(policy.Actor{ID: uuid.New(), Role: user.RoleApplicant})
		app.Post("/jobs/:id/applications", NewApplicationHandler(stub, 1024).Submit)

		body, ct := multipartBody(c, "hello", nil, "")
		req := httptest.NewRequest(http.MethodPost, "/jobs/"+uuid.NewString()+"/applications", body)
		req.Header.Set("Content-Type", ct)
		res, err := app.Test(req)
		c.Assert(err, qt.IsNil)
		c.Assert(res.StatusCode, qt.Equals, fiber.StatusConflict)
		c.Assert(decode(c, res).Message, qt.Contains, "not accepting applications")
	})
}

func TestApplicationHandler_UpdateStatus(t *testing.T) {
	c := qt.New(t)
	stub := &stubApplications{detail: application.Detail{JobTitle: "Engineer"}}
	app := newTestApp(policy.Actor{ID: uuid.New(), Role: user.RoleRecruiter})
	h := NewApplicationHandler(stub, 1024)
	app.Patch("/applications/:id/status", h.UpdateStatus)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodPatch, "/applications/"+id.String()+"/status", strings.NewReader(`{"status":"APPROVED"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	c.Assert(err, qt.IsNil)
	c.Assert(res.StatusCode, qt.Equals, fiber.StatusOK)

	var data struct {
		ID       uuid.UUID `json:"id"`
		Status   string    `json:"status"`
		JobTitle string    `json:"job_title"`
	}
	c.Assert(json.Unmarshal(decode(c, res).Data, &data), qt.IsNil)
	c.Assert(data.ID, qt.Equals, id)
	c.Assert(data.Status, qt.Equals, "APPROVED")
	c.Assert(data.JobTitle, qt.Equals, "Engineer")

	stub.err = ucapp.ErrAlreadyDecided
	req = httptest.NewRequest(http.MethodPatch, "/applications/"+id.String()+"/status", strings.NewReader(`{"status":"REJECTED"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err = app.Test(req)
	c.Assert(err, qt.IsNil)
	c.Assert(res.StatusCode, qt.Equals, fiber.StatusConflict)
}

type stubJobs struct {
	created ucjob.Fields
	err     error
}

func (s *stubJobs) Create(_ context.Context, actor policy.Actor, in ucjob.Fields) (job.Job, error) {
	s.created = in
	if s.err != nil {
		return job.Job{}, s.err
	}
	return job.Job{ID: uuid.New(), Title: in.Title, PublisherID: actor.ID, Status: job.StatusOpen}, nil
}

func (s *stubJobs) Update(context.Context, policy.Actor, uuid.UUID, ucjob.Fields) (job.Job, error) {
	return job.Job{}, s.err
}

func (s *stubJobs) UpdateStatus(context.Context, policy.Actor, uuid.UUID, string) (job.Job, error) {
	return job.Job{}, s.err
}

func (s *stubJobs) Delete(context.Context, policy.Actor, uuid.UUID) error {
	return s.err
}

func (s *stubJobs) List(context.Context, policy.Actor) ([]job.ListItem, error) {
	return nil, s.err
}

func (s *stubJobs) Get(context.Context, policy.Actor, uuid.UUID) (ucjob.Detail, error) {
	return ucjob.Detail{}, s.err
}

func TestJobHandler_Create(t *testing.T) {
	c := qt.New(t)
	stub := &stubJobs{}
	app := newTestApp(policy.Actor{ID: uuid.New(), Role: user.RoleRecruiter})
	NewJobHandler(stub).RegisterRoutes(app.Group("/jobs"))

	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(`{"title":"Go dev","description":"d","location":"Remote","salary":100}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	c.Assert(err, qt.IsNil)
	c.Assert(res.StatusCode, qt.Equals, fiber.StatusCreated)
	c.Assert(stub.created.Title, qt.Equals, "Go dev")
	c.Assert(stub.created.Salary, qt.Not(qt.IsNil))
	c.Assert(*stub.created.Salary, qt.Equals, 100.0)
}

func TestJobHandler_DeleteConflict(t *testing.T) {
	c := qt.New(t)
	stub := &stubJobs{err: ucjob.ErrHasApplications}
	app := newTestApp(policy.Actor{ID: uuid.New(), Role: user.RoleAdmin})
	NewJobHandler(stub).RegisterRoutes(app.Group("/jobs"))

	res, err := app.Test(httptest.NewRequest(http.MethodDelete, "/jobs/"+uuid.NewString(), nil))
	c.Assert(err, qt.IsNil)
	c.Assert(res.StatusCode, qt.Equals, fiber.StatusConflict)
}

type stubResumes struct {
	url string
	err error
	key string
}

func (s *stubResumes) RequestDownloadLink(_ context.Context, _ policy.Actor, key string) (string, error) {
	s.key = key
	return s.url, s.err
}

func TestResumeHandler_Download(t *testing.T) {
	c := qt.New(t)

	c.Run("link", func(c *qt.C) {
		stub := &stubResumes{url: "https://blob.example/resumes/a.pdf?sig=1"}
		app := newTestApp(policy.Actor{ID: uuid.New(), Role: user.RoleAdmin})
		NewResumeHandler(stub).RegisterRoutes(app.Group("/resumes"))

		res, err := app.Test(httptest.NewRequest(http.MethodGet, "/resumes/download?key=resumes/a.pdf", nil))
		c.Assert(err, qt.IsNil)
		c.Assert(res.StatusCode, qt.Equals, fiber.StatusOK)
		c.Assert(res.Header.Get("Cache-Control"), qt.Equals, "no-store")
		c.Assert(stub.key, qt.Equals, "resumes/a.pdf")

		var data struct {
			URL       string `json:"url"`
			ExpiresIn int64  `json:"expires_in"`
		}
		c.Assert(json.Unmarshal(decode(c, res).Data, &data), qt.IsNil)
		c.Assert(data.URL, qt.Equals, stub.url)
		c.Assert(data.ExpiresIn, qt.Equals, int64(3600))
	})

	c.Run("forbidden", func(c *qt.C) {
		stub := &stubResumes{err: fmt.Errorf("%w: applicants cannot download", domain.ErrForbidden)}
		app := newTestApp(policy.Actor{ID: uuid.New(), Role: user.RoleApplicant})
		NewResumeHandler(stub).RegisterRoutes(app.Group("/resumes"))

		res, err := app.Test(httptest.NewRequest(http.MethodGet, "/resumes/download?key=resumes/a.pdf", nil))
		c.Assert(err, qt.IsNil)
		c.Assert(res.StatusCode, qt.Equals, fiber.StatusForbidden)
	})
}
