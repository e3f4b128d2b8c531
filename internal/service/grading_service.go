package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/scoreline/scoreline-api/internal/dto"
	"github.com/scoreline/scoreline-api/internal/feedback"
	"github.com/scoreline/scoreline-api/internal/models"
	"github.com/scoreline/scoreline-api/internal/observability"
	"github.com/scoreline/scoreline-api/internal/repository"
)

// GradingService applies grading outcomes to pending submissions. It is the
// only writer of the completed and failed states; the dispatch path never
// touches status after creation.
type GradingService interface {
	Apply(ctx context.Context, payload dto.GradingCallbackRequest, raw []byte) (dto.SubmissionResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	events      SubmissionEventPublisher
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewGradingService constructs a GradingService instance.
func NewGradingService(submissions repository.SubmissionRepository, events SubmissionEventPublisher, validate *validator.Validate, logger zerolog.Logger) GradingService {
	return &gradingService{
		submissions: submissions,
		events:      events,
		validator:   validate,
		logger:      logger.With().Str("component", "grading_service").Logger(),
	}
}

// Apply moves a pending submission to its terminal state and records the
// feedback payload. Re-applying to an already terminal submission is a
// no-op returning the stored state, so grader retries are safe.
func (s *gradingService) Apply(ctx context.Context, payload dto.GradingCallbackRequest, raw []byte) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, payload.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if submission.Terminal() {
		return dto.NewSubmissionResponse(submission), nil
	}

	switch payload.Outcome {
	case models.SubmissionStatusCompleted:
		submission.Status = models.SubmissionStatusCompleted
		submission.Feedback = payload.Feedback
		if _, err := feedback.Parse(payload.Feedback); err != nil {
			// Stored regardless; the results view degrades to unavailable.
			observability.ParseFailures().Inc()
			s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("grader returned unparseable feedback")
		}
	case models.SubmissionStatusFailed:
		submission.Status = models.SubmissionStatusFailed
	}

	if len(raw) > 0 {
		submission.GradingRaw = datatypes.JSON(raw)
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	observability.GradingOutcomes().WithLabelValues(submission.Status).Inc()
	s.logger.Info().Uint("submission_id", submission.ID).Str("status", submission.Status).Msg("grading outcome applied")

	if s.events != nil {
		s.events.PublishUpdated(ctx, submission)
	}

	return dto.NewSubmissionResponse(submission), nil
}
