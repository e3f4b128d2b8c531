package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/scoreline/scoreline-api/internal/dto"
	"github.com/scoreline/scoreline-api/internal/repository"
)

// AccountService exposes the authoritative entitlement balance. Clients
// treat their copy of the counter as a read-through cache invalidated by
// every fetch from here.
type AccountService interface {
	Get(ctx context.Context, userID uint) (dto.AccountResponse, error)
	TopUp(ctx context.Context, payload dto.CreditTopUpRequest) (dto.AccountResponse, error)
}

type accountService struct {
	accounts  repository.AccountRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAccountService constructs an AccountService instance.
func NewAccountService(accounts repository.AccountRepository, validate *validator.Validate, logger zerolog.Logger) AccountService {
	return &accountService{
		accounts:  accounts,
		validator: validate,
		logger:    logger.With().Str("component", "account_service").Logger(),
	}
}

func (s *accountService) Get(ctx context.Context, userID uint) (dto.AccountResponse, error) {
	if userID == 0 {
		return dto.AccountResponse{}, ErrAuthRequired
	}

	account, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AccountResponse{}, ErrAccountNotFound
		}
		return dto.AccountResponse{}, err
	}

	return dto.AccountResponse{
		UserID:          account.UserID,
		Email:           account.Email,
		FeedbackCredits: account.FeedbackCredits,
	}, nil
}

// TopUp is invoked by the payment webhook after a purchase completes.
func (s *accountService) TopUp(ctx context.Context, payload dto.CreditTopUpRequest) (dto.AccountResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AccountResponse{}, err
	}

	if err := s.accounts.AddCredits(ctx, payload.UserID, payload.Credits); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AccountResponse{}, ErrAccountNotFound
		}
		return dto.AccountResponse{}, err
	}

	s.logger.Info().Uint("user_id", payload.UserID).Int("credits", payload.Credits).Msg("feedback credits added")

	return s.Get(ctx, payload.UserID)
}
