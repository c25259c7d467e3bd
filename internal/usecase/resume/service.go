// Package resume stores résumé files in blob storage and hands out
// short-lived download links to the people allowed to read them.
package resume

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"job-board/internal/domain"
	"job-board/internal/domain/application"
	"job-board/internal/domain/policy"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// LinkTTL is the validity of every presigned download link.
const LinkTTL = 3600 * time.Second

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDoc  = "application/msword"
	ContentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var allowedTypes = map[string][]string{
	ContentTypePDF:  {".pdf"},
	ContentTypeDoc:  {".doc"},
	ContentTypeDocx: {".docx"},
}

var (
	ErrInvalidFileType = fmt.Errorf("%w: résumé must be a PDF, DOC or DOCX file", domain.ErrInvalidInput)
	ErrEmptyFile       = fmt.Errorf("%w: résumé is empty", domain.ErrInvalidInput)
	ErrFileTooLarge    = fmt.Errorf("%w: résumé is too large", domain.ErrInvalidInput)
	ErrContentMismatch = fmt.Errorf("%w: résumé content does not match its type", domain.ErrInvalidInput)
	ErrNotFound        = fmt.Errorf("%w: résumé not found", domain.ErrNotFound)
	ErrForbidden       = fmt.Errorf("%w: not allowed to download this résumé", domain.ErrForbidden)
	ErrStorage         = fmt.Errorf("%w: résumé storage failure", domain.ErrUpstream)
)

type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// OwnerLookup resolves the application a storage key belongs to.
type OwnerLookup interface {
	FindResumeOwner(ctx context.Context, key string) (application.ResumeOwner, error)
}

type Upload struct {
	JobID       uuid.UUID
	ApplicantID uuid.UUID
	Data        []byte
	ContentType string
	Filename    string
}

type Options struct {
	MaxBytes int64
	Timeout  time.Duration
}

type Service struct {
	blobs  BlobStore
	owners OwnerLookup
	opts   Options
	logger *log.Logger
	now    func() time.Time
}

func NewService(blobs BlobStore, owners OwnerLookup, opts Options, logger *log.Logger) *Service {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 2 << 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{blobs: blobs, owners: owners, opts: opts, logger: logger, now: time.Now}
}

func (s *Service) MaxBytes() int64 {
	return s.opts.MaxBytes
}

// Upload validates the file and stores it under a key derived from the job,
// the applicant and the upload time. The returned key is what the
// application row keeps; it is never a public URL.
func (s *Service) Upload(ctx context.Context, in Upload) (string, error) {
	contentType := normalizeContentType(in.ContentType)
	exts, ok := allowedTypes[contentType]
	if !ok {
		return "", ErrInvalidFileType
	}
	if len(in.Data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(in.Data)) > s.opts.MaxBytes {
		return "", ErrFileTooLarge
	}
	if !contentMatches(in.Data, contentType) {
		return "", ErrContentMismatch
	}

	key := s.storageKey(in.JobID, in.ApplicantID, pickExtension(in.Filename, exts))

	putCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	if err := s.blobs.Put(putCtx, key, in.Data, contentType); err != nil {
		s.logger.Printf("[Resume] upload failed key=%s err=%v", key, err)
		return "", ErrStorage
	}
	s.logger.Printf("[Resume] stored key=%s bytes=%d", key, len(in.Data))
	return key, nil
}

func (s *Service) RequestDownloadLink(ctx context.Context, actor policy.Actor, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrNotFound
	}

	owner, err := s.owners.FindResumeOwner(ctx, key)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: resolve résumé owner", domain.ErrUpstream)
	}
	if !policy.CanDownloadResume(actor, owner.JobPublisherID) {
		return "", ErrForbidden
	}

	url, err := s.blobs.Presign(ctx, key, LinkTTL)
	if err != nil {
		s.logger.Printf("[Resume] presign failed key=%s err=%v", key, err)
		return "", ErrStorage
	}
	return url, nil
}

func (s *Service) storageKey(jobID, applicantID uuid.UUID, ext string) string {
	return fmt.Sprintf("resumes/%s/%s-%d%s", jobID, applicantID, s.now().UnixMilli(), ext)
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

// pickExtension keeps the client's extension only when it is one of the
// extensions allowed for the declared type.
func pickExtension(filename string, allowed []string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(filename, "\\", "/")))
	for _, a := range allowed {
		if ext == a {
			return ext
		}
	}
	return allowed[0]
}

// contentMatches compares the sniffed type with the declared one in both
// directions of the mimetype tree, since a DOCX sniffs as a zip archive and a
// DOC as an OLE container when their inner markers are missing.
func contentMatches(data []byte, declared string) bool {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(declared) {
			return true
		}
	}
	want := mimetype.Lookup(declared)
	for m := want; m != nil; m = m.Parent() {
		if m.Is(detected.String()) && !m.Is("application/octet-stream") {
			return true
		}
	}
	return false
}
