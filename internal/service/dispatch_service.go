package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/scoreline/scoreline-api/internal/dto"
	"github.com/scoreline/scoreline-api/internal/models"
	"github.com/scoreline/scoreline-api/internal/observability"
	"github.com/scoreline/scoreline-api/internal/repository"
	"github.com/scoreline/scoreline-api/internal/wizard"
)

// allowedMimeTypes are the document types accepted for dispatch, sniffed
// from content rather than trusted from the filename.
var allowedMimeTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
}

// FileUploader persists a document blob and returns its public URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// SubmissionEventPublisher fans out submission lifecycle events to
// interested feeds.
type SubmissionEventPublisher interface {
	PublishCreated(ctx context.Context, submission models.Submission)
	PublishUpdated(ctx context.Context, submission models.Submission)
}

// GradingEnqueuer hands a freshly dispatched submission to the grading
// pipeline.
type GradingEnqueuer interface {
	Enqueue(ctx context.Context, submission models.Submission) error
}

// DispatchService turns a submittable wizard draft plus a chosen feedback
// tier into exactly one persisted submission. The whole dispatch is a
// single shot: it is not idempotent and the caller must debounce while one
// is in flight.
type DispatchService interface {
	Dispatch(ctx context.Context, ownerID uint, tier wizard.Tier, file *multipart.FileHeader) (dto.SubmissionResponse, error)
}

type dispatchService struct {
	submissions repository.SubmissionRepository
	accounts    repository.AccountRepository
	sessions    repository.WizardSessionRepository
	storage     FileUploader
	events      SubmissionEventPublisher
	grading     GradingEnqueuer
	logger      zerolog.Logger
	tracer      trace.Tracer
	timeout     time.Duration
	now         func() time.Time
}

// NewDispatchService constructs a DispatchService instance. The timeout
// bounds the upload-and-insert sequence so a stalled blob store surfaces as
// a failed dispatch rather than a hang.
func NewDispatchService(
	submissions repository.SubmissionRepository,
	accounts repository.AccountRepository,
	sessions repository.WizardSessionRepository,
	storage FileUploader,
	events SubmissionEventPublisher,
	grading GradingEnqueuer,
	timeout time.Duration,
	logger zerolog.Logger,
) DispatchService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &dispatchService{
		submissions: submissions,
		accounts:    accounts,
		sessions:    sessions,
		storage:     storage,
		events:      events,
		grading:     grading,
		logger:      logger.With().Str("component", "dispatch_service").Logger(),
		tracer:      otel.Tracer("github.com/scoreline/scoreline-api/internal/service/dispatch"),
		timeout:     timeout,
		now:         time.Now,
	}
}

func (s *dispatchService) Dispatch(parent context.Context, ownerID uint, tier wizard.Tier, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "submission.dispatch", trace.WithAttributes(
		attribute.String("submission.tier", string(tier)),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		observability.DispatchLatency().Observe(time.Since(start).Seconds())
	}()

	if ownerID == 0 {
		return s.fail(span, "auth", ErrAuthRequired)
	}

	if !tier.Valid() {
		return s.fail(span, "tier", fmt.Errorf("unknown feedback tier %q", tier))
	}

	session, err := s.sessions.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return s.fail(span, "draft", ErrDraftNotSubmittable)
		}
		return s.fail(span, "draft", err)
	}

	draft := session.Draft
	draft.Tier = &tier
	if !draft.Submittable() {
		return s.fail(span, "draft", ErrDraftNotSubmittable)
	}

	// Entitlement check runs before any network effect so a broke premium
	// dispatch never uploads a blob it cannot pay for.
	if tier == wizard.TierPremium {
		account, err := s.accounts.GetByUserID(ctx, ownerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return s.fail(span, "credits", ErrInsufficientCredits)
			}
			return s.fail(span, "credits", err)
		}
		if account.FeedbackCredits <= 0 {
			return s.fail(span, "credits", ErrInsufficientCredits)
		}
	}

	content, err := s.readAndCheckFile(file)
	if err != nil {
		return s.fail(span, "file", err)
	}

	path := s.namespacedPath(ownerID, file.Filename)
	span.SetAttributes(attribute.String("submission.blob_path", path))

	fileURL, err := s.storage.Upload(ctx, path, bytes.NewReader(content))
	if err != nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		return s.fail(span, "upload", fmt.Errorf("%w: %v", ErrUploadFailed, err))
	}

	submission := models.Submission{
		OwnerID:  ownerID,
		Type:     string(draft.Type),
		Group:    draft.Group,
		Subject:  draft.Subject,
		Level:    draft.Level,
		FileURL:  fileURL,
		FileName: file.Filename,
		Language: string(*draft.Language),
		Tier:     string(tier),
		Status:   models.SubmissionStatusPending,
	}
	if draft.TOKType != nil {
		tokType := string(*draft.TOKType)
		submission.TOKType = &tokType
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		// The uploaded blob is orphaned here; there is no rollback and a
		// retried dispatch will upload a fresh one.
		return s.fail(span, "persist", fmt.Errorf("%w: %v", ErrPersistFailed, err))
	}

	if tier == wizard.TierPremium {
		if err := s.accounts.ConsumeCredit(ctx, ownerID); err != nil {
			// The record already exists; losing the decrement race is
			// reconciled against the authoritative balance, not rolled back.
			s.logger.Error().Err(err).Uint("owner_id", ownerID).Uint("submission_id", submission.ID).Msg("credit decrement failed after dispatch")
		}
	}

	if err := s.sessions.Delete(ctx, ownerID); err != nil {
		s.logger.Warn().Err(err).Uint("owner_id", ownerID).Msg("failed to clear wizard session")
	}

	if s.events != nil {
		s.events.PublishCreated(ctx, submission)
	}

	if s.grading != nil {
		if err := s.grading.Enqueue(ctx, submission); err != nil {
			s.logger.Error().Err(err).Uint("submission_id", submission.ID).Msg("failed to enqueue grading job")
		}
	}

	observability.Dispatches().WithLabelValues("success").Inc()
	s.logger.Info().Uint("submission_id", submission.ID).Uint("owner_id", ownerID).Str("tier", string(tier)).Msg("submission dispatched")

	return dto.NewSubmissionResponse(submission), nil
}

// readAndCheckFile buffers the upload and enforces the size and sniffed
// MIME-type constraints.
func (s *dispatchService) readAndCheckFile(file *multipart.FileHeader) ([]byte, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: file is required", ErrFileNotAllowed)
	}

	if file.Size > wizard.MaxFileBytes {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrFileNotAllowed, int64(wizard.MaxFileBytes))
	}

	handle, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, wizard.MaxFileBytes+1)); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(buf.Len()) > wizard.MaxFileBytes {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrFileNotAllowed, int64(wizard.MaxFileBytes))
	}

	mime := mimetype.Detect(buf.Bytes())
	for _, allowed := range allowedMimeTypes {
		if mime.Is(allowed) {
			return buf.Bytes(), nil
		}
	}

	observability.UploadRejected().WithLabelValues("type").Inc()
	return nil, fmt.Errorf("%w: %s", ErrFileNotAllowed, mime.String())
}

// namespacedPath builds the blob path: owner-scoped with a timestamp suffix
// so concurrent uploads of the same filename cannot collide.
func (s *dispatchService) namespacedPath(ownerID uint, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%d/%d%s", ownerID, s.now().UnixNano(), ext)
}

func (s *dispatchService) fail(span trace.Span, stage string, err error) (dto.SubmissionResponse, error) {
	observability.Dispatches().WithLabelValues(stage).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, stage)
	return dto.SubmissionResponse{}, err
}
