package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/scoreline/scoreline-api/internal/dto"
	"github.com/scoreline/scoreline-api/internal/models"
)

func TestAccountGet(t *testing.T) {
	accounts := newFakeAccountRepo()
	accounts.accounts[7] = models.Account{UserID: 7, Email: "student@example.com", FeedbackCredits: 3}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAccountService(accounts, validate, testLogger())

	response, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 3, response.FeedbackCredits)
	require.Equal(t, "student@example.com", response.Email)

	_, err = svc.Get(context.Background(), 8)
	require.ErrorIs(t, err, ErrAccountNotFound)

	_, err = svc.Get(context.Background(), 0)
	require.ErrorIs(t, err, ErrAuthRequired)
}

func TestAccountTopUp(t *testing.T) {
	accounts := newFakeAccountRepo()
	accounts.accounts[7] = models.Account{UserID: 7, FeedbackCredits: 1}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAccountService(accounts, validate, testLogger())

	response, err := svc.TopUp(context.Background(), dto.CreditTopUpRequest{UserID: 7, Credits: 5})
	require.NoError(t, err)
	require.Equal(t, 6, response.FeedbackCredits)

	_, err = svc.TopUp(context.Background(), dto.CreditTopUpRequest{UserID: 7, Credits: 0})
	require.Error(t, err, "zero credit top-ups are rejected")
}
