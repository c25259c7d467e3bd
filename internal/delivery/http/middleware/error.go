package middleware

import (
	"errors"
	"log"

	"job-board/internal/domain"
	"job-board/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// LoginPath is where unauthenticated clients are sent.
const LoginPath = "/login"

type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data interface{}, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

// Unauthenticated is the redirect-equivalent answer for requests without a
// usable session.
func Unauthenticated(cause error) *AppError {
	return NewAppError(fiber.StatusUnauthorized, response.MessageUnauthorized, fiber.Map{"redirect": LoginPath}, cause)
}

// FromDomain maps the domain error taxonomy onto HTTP. The message of 4xx
// answers is the wrapped error text, which never carries storage details.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return Unauthenticated(err)
	case errors.Is(err, domain.ErrForbidden):
		return NewAppError(fiber.StatusForbidden, err.Error(), nil, err)
	case errors.Is(err, domain.ErrNotFound):
		return NewAppError(fiber.StatusNotFound, err.Error(), nil, err)
	case errors.Is(err, domain.ErrInvalidInput):
		return NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, domain.ErrConflict):
		return NewAppError(fiber.StatusConflict, err.Error(), nil, err)
	case errors.Is(err, domain.ErrUpstream):
		return NewAppError(fiber.StatusBadGateway, response.MessageBadGateway, nil, err)
	default:
		return NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

type ErrorMiddleware struct {
	logger *log.Logger
}

func NewErrorMiddleware(logger *log.Logger) *ErrorMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &ErrorMiddleware{logger: logger}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Printf("[HTTP] panic recovered: path=%s err=%v", c.Path(), r)
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg, data := normalizeError(err)
		if status >= 500 {
			m.logger.Printf("[HTTP] request failed: method=%s path=%s status=%d err=%v", c.Method(), c.Path(), status, err)
		}
		return response.Error(c, status, msg, data)
	}
}

func normalizeError(err error) (int, string, interface{}) {
	if err == nil {
		return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := fiberErr.Code
		if status <= 0 || status >= 500 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}

		msg := fiberErr.Message
		if msg == "" {
			msg = defaultMessageForStatus(status)
		}
		return status, msg, nil
	}

	appErr := FromDomain(err)
	if appErr.StatusCode <= 0 {
		return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
	}

	status := appErr.StatusCode
	if status >= 500 {
		// 5xx bodies never carry the cause
		return status, defaultMessageForStatus(status), nil
	}

	msg := appErr.Message
	if msg == "" {
		msg = defaultMessageForStatus(status)
	}
	return status, msg, appErr.Data
}

func defaultMessageForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return response.MessageBadRequest
	case fiber.StatusUnauthorized:
		return response.MessageUnauthorized
	case fiber.StatusForbidden:
		return response.MessageForbidden
	case fiber.StatusNotFound:
		return response.MessageNotFound
	case fiber.StatusConflict:
		return response.MessageConflict
	case fiber.StatusTooManyRequests:
		return response.MessageTooManyRequests
	case fiber.StatusBadGateway:
		return response.MessageBadGateway
	default:
		if status >= 500 {
			return response.MessageInternalServerError
		}
		return response.MessageError
	}
}
