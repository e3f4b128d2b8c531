package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/scoreline/scoreline-api/internal/models"
)

// ErrNoCredits indicates a guarded decrement found no remaining credits.
var ErrNoCredits = errors.New("no feedback credits remaining")

// AccountRepository defines data operations for entitlement accounts.
type AccountRepository interface {
	GetByUserID(ctx context.Context, userID uint) (models.Account, error)
	ConsumeCredit(ctx context.Context, userID uint) error
	AddCredits(ctx context.Context, userID uint, credits int) error
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository instantiates the repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID uint) (models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error; err != nil {
		return models.Account{}, err
	}

	return account, nil
}

// ConsumeCredit decrements the balance by one with a credits > 0 guard so
// concurrent premium dispatches can never drive it negative.
func (r *accountRepository) ConsumeCredit(ctx context.Context, userID uint) error {
	result := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("user_id = ?", userID).
		Where("feedback_credits > 0").
		UpdateColumn("feedback_credits", gorm.Expr("feedback_credits - 1"))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoCredits
	}

	return nil
}

func (r *accountRepository) AddCredits(ctx context.Context, userID uint, credits int) error {
	result := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("user_id = ?", userID).
		UpdateColumn("feedback_credits", gorm.Expr("feedback_credits + ?", credits))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
