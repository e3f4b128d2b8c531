package models

import "time"

// Account tracks the per-user entitlement state. FeedbackCredits is the
// number of premium feedback rounds the user may still consume; it is the
// authoritative balance, clients only cache it.
type Account struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Email           string    `gorm:"size:256" json:"email"`
	FeedbackCredits int       `gorm:"not null;default:0" json:"feedback_credits"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
