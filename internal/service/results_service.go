package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/scoreline/scoreline-api/internal/dto"
	"github.com/scoreline/scoreline-api/internal/feedback"
	"github.com/scoreline/scoreline-api/internal/models"
	"github.com/scoreline/scoreline-api/internal/observability"
	"github.com/scoreline/scoreline-api/internal/repository"
	"github.com/scoreline/scoreline-api/internal/wizard"
)

// ResultsService serves a user's submissions and their tier-gated feedback.
type ResultsService interface {
	List(ctx context.Context, ownerID uint) ([]dto.SubmissionResponse, error)
	Results(ctx context.Context, ownerID, id uint) (dto.ResultsResponse, error)
	Download(ctx context.Context, ownerID, id uint) (string, []byte, error)
}

type resultsService struct {
	submissions repository.SubmissionRepository
	logger      zerolog.Logger
}

// NewResultsService constructs a ResultsService instance.
func NewResultsService(submissions repository.SubmissionRepository, logger zerolog.Logger) ResultsService {
	return &resultsService{
		submissions: submissions,
		logger:      logger.With().Str("component", "results_service").Logger(),
	}
}

func (s *resultsService) List(ctx context.Context, ownerID uint) ([]dto.SubmissionResponse, error) {
	if ownerID == 0 {
		return nil, ErrAuthRequired
	}

	submissions, err := s.submissions.ListByOwner(ctx, ownerID, 0)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

// Results returns the parsed, tier-gated view for one owned submission. A
// submission that is not completed yet, or whose feedback payload cannot be
// parsed, degrades to Available=false rather than an error.
func (s *resultsService) Results(ctx context.Context, ownerID, id uint) (dto.ResultsResponse, error) {
	submission, err := s.ownedSubmission(ctx, ownerID, id)
	if err != nil {
		return dto.ResultsResponse{}, err
	}

	response := dto.ResultsResponse{
		SubmissionID: submission.ID,
		Status:       submission.Status,
	}

	if submission.Status != models.SubmissionStatusCompleted {
		return response, nil
	}

	parsed, err := feedback.Parse(submission.Feedback)
	if err != nil {
		observability.ParseFailures().Inc()
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("feedback payload unparseable")
		return response, nil
	}

	view := feedback.Present(parsed, wizard.Tier(submission.Tier))
	response.Available = true
	response.Result = &view

	return response, nil
}

// Download returns the full narrative text as a plain-text attachment.
// Only premium submissions may download the report.
func (s *resultsService) Download(ctx context.Context, ownerID, id uint) (string, []byte, error) {
	submission, err := s.ownedSubmission(ctx, ownerID, id)
	if err != nil {
		return "", nil, err
	}

	if submission.Tier != string(wizard.TierPremium) {
		return "", nil, ErrPremiumRequired
	}

	parsed, err := feedback.Parse(submission.Feedback)
	if err != nil {
		observability.ParseFailures().Inc()
		return "", nil, err
	}

	name := fmt.Sprintf("feedback_report_%d.txt", submission.ID)
	return name, []byte(parsed.FullText), nil
}

func (s *resultsService) ownedSubmission(ctx context.Context, ownerID, id uint) (models.Submission, error) {
	if ownerID == 0 {
		return models.Submission{}, ErrAuthRequired
	}

	submission, err := s.submissions.GetByIDForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}

	return submission, nil
}
