package blob

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"job-board/internal/config"
)

func newTestStore(t *testing.T) *S3Store {
	t.Helper()
	s, err := NewS3Store(context.Background(), config.S3Config{
		Region:          "us-east-1",
		Bucket:          "resumes",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		Endpoint:        "http://localhost:9000",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return s
}

func TestPresign_PathStyleURLWithExpiry(t *testing.T) {
	s := newTestStore(t)

	raw, err := s.Presign(context.Background(), "resumes/job/applicant-1.pdf", time.Hour)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid url %q: %v", raw, err)
	}
	if u.Host != "localhost:9000" {
		t.Fatalf("unexpected host %q", u.Host)
	}
	if !strings.HasPrefix(u.Path, "/resumes/resumes/job/applicant-1.pdf") {
		t.Fatalf("unexpected path %q", u.Path)
	}
	if got := u.Query().Get("X-Amz-Expires"); got != "3600" {
		t.Fatalf("expected 3600s expiry, got %q", got)
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put(context.Background(), "", []byte("x"), "application/pdf"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if _, err := s.Presign(context.Background(), "", time.Hour); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	if _, err := NewS3Store(context.Background(), config.S3Config{Region: "us-east-1"}); err == nil {
		t.Fatalf("expected error for empty bucket")
	}
}
