package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/scoreline/scoreline-api/internal/dto"
	"github.com/scoreline/scoreline-api/internal/repository"
	"github.com/scoreline/scoreline-api/internal/wizard"
)

// WizardService owns the per-user submission wizard session: the step
// cursor, the accumulated draft and the legal transitions between steps.
type WizardService interface {
	Start(ctx context.Context, userID uint) (dto.WizardSessionResponse, error)
	Current(ctx context.Context, userID uint) (dto.WizardSessionResponse, error)
	Advance(ctx context.Context, userID uint, patch wizard.Patch) (dto.WizardSessionResponse, error)
	Back(ctx context.Context, userID uint) (dto.WizardSessionResponse, error)
	Catalog() dto.CatalogResponse
}

type wizardService struct {
	sessions repository.WizardSessionRepository
	logger   zerolog.Logger
}

// NewWizardService constructs a WizardService instance.
func NewWizardService(sessions repository.WizardSessionRepository, logger zerolog.Logger) WizardService {
	return &wizardService{
		sessions: sessions,
		logger:   logger.With().Str("component", "wizard_service").Logger(),
	}
}

// Start resets the user's wizard to a fresh session at the first step.
func (s *wizardService) Start(ctx context.Context, userID uint) (dto.WizardSessionResponse, error) {
	session := wizard.NewSession()
	if err := s.sessions.Save(ctx, userID, session); err != nil {
		return dto.WizardSessionResponse{}, err
	}

	return dto.NewWizardSessionResponse(session), nil
}

// Current returns the active session, creating one if none exists.
func (s *wizardService) Current(ctx context.Context, userID uint) (dto.WizardSessionResponse, error) {
	session, err := s.load(ctx, userID)
	if err != nil {
		return dto.WizardSessionResponse{}, err
	}

	return dto.NewWizardSessionResponse(session), nil
}

// Advance merges the step widget's patch and moves the cursor forward. The
// session re-validates completeness and, for the details steps, checks the
// selection against the subject catalog; the cursor never moves on error.
func (s *wizardService) Advance(ctx context.Context, userID uint, patch wizard.Patch) (dto.WizardSessionResponse, error) {
	session, err := s.load(ctx, userID)
	if err != nil {
		return dto.WizardSessionResponse{}, err
	}

	from := session.Step
	if err := session.Advance(patch); err != nil {
		return dto.WizardSessionResponse{}, err
	}

	if err := validateAgainstCatalog(from, session.Draft); err != nil {
		return dto.WizardSessionResponse{}, err
	}

	if err := s.sessions.Save(ctx, userID, session); err != nil {
		return dto.WizardSessionResponse{}, err
	}

	s.logger.Debug().Uint("user_id", userID).Str("from", string(from)).Str("to", string(session.Step)).Msg("wizard advanced")

	return dto.NewWizardSessionResponse(session), nil
}

// Back moves the cursor to the inverse of the last forward transition,
// recomputed from the draft's assessment type.
func (s *wizardService) Back(ctx context.Context, userID uint) (dto.WizardSessionResponse, error) {
	session, err := s.load(ctx, userID)
	if err != nil {
		return dto.WizardSessionResponse{}, err
	}

	session.Back()

	if err := s.sessions.Save(ctx, userID, session); err != nil {
		return dto.WizardSessionResponse{}, err
	}

	return dto.NewWizardSessionResponse(session), nil
}

// Catalog serves the subject groups and levels the details steps offer.
func (s *wizardService) Catalog() dto.CatalogResponse {
	return dto.CatalogResponse{
		IAGroups: wizard.IAGroups,
		EEGroups: wizard.EEGroups,
		Levels:   wizard.Levels,
	}
}

func (s *wizardService) load(ctx context.Context, userID uint) (wizard.Session, error) {
	session, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return wizard.NewSession(), nil
		}
		return wizard.Session{}, err
	}

	return session, nil
}

// validateAgainstCatalog rejects details selections the catalog does not
// offer. `from` is the step the widget just completed.
func validateAgainstCatalog(from wizard.Step, draft wizard.Draft) error {
	switch from {
	case wizard.StepIADetails:
		if !wizard.ValidSelection(wizard.TypeIA, *draft.Group, *draft.Subject) {
			return fmt.Errorf("%w: unknown IA subject selection", wizard.ErrValidationIncomplete)
		}
		if !wizard.ValidLevel(*draft.Level) {
			return fmt.Errorf("%w: unknown level", wizard.ErrValidationIncomplete)
		}
	case wizard.StepEEDetails:
		if !wizard.ValidSelection(wizard.TypeEE, *draft.Group, *draft.Subject) {
			return fmt.Errorf("%w: unknown EE subject selection", wizard.ErrValidationIncomplete)
		}
	case wizard.StepUpload:
		if draft.File.SizeBytes > wizard.MaxFileBytes {
			return fmt.Errorf("%w: file exceeds %d bytes", wizard.ErrValidationIncomplete, wizard.MaxFileBytes)
		}
		if !wizard.AllowedExtension(draft.File.Name) {
			return fmt.Errorf("%w: unsupported document type", wizard.ErrValidationIncomplete)
		}
	}

	return nil
}
