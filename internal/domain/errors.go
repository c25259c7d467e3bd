package domain

import "errors"

// Outcome taxonomy shared by the use cases. Callers wrap these with context
// via fmt.Errorf("%w: ...") and test with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
	ErrUpstream        = errors.New("upstream failure")
)
