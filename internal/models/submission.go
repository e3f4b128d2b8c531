package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is one persisted essay submission. It is created exactly once
// per successful dispatch and its status is only ever advanced by the
// grading pipeline, never by the dispatch path.
type Submission struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	OwnerID    uint           `gorm:"not null;index" json:"owner_id"`
	Type       string         `gorm:"size:8;not null" json:"type"`
	Group      *string        `gorm:"size:128" json:"group"`
	Subject    *string        `gorm:"size:128" json:"subject"`
	Level      *string        `gorm:"size:8" json:"level"`
	TOKType    *string        `gorm:"size:16" json:"tok_type"`
	FileURL    string         `gorm:"size:512;not null" json:"file_url"`
	FileName   string         `gorm:"size:256" json:"file_name"`
	Language   string         `gorm:"size:16;not null" json:"language"`
	Tier       string         `gorm:"size:16;not null" json:"tier"`
	Status     string         `gorm:"size:16;not null" json:"status"`
	Feedback   string         `gorm:"type:text" json:"feedback"`
	GradingRaw datatypes.JSON `json:"grading_raw,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Submission lifecycle states.
const (
	// SubmissionStatusPending marks a dispatched submission awaiting grading.
	SubmissionStatusPending = "pending"
	// SubmissionStatusCompleted marks a submission whose feedback is ready.
	SubmissionStatusCompleted = "completed"
	// SubmissionStatusFailed marks a submission the grader could not process.
	SubmissionStatusFailed = "failed"
)

// Terminal reports whether the submission has reached a final state.
func (s Submission) Terminal() bool {
	return s.Status == SubmissionStatusCompleted || s.Status == SubmissionStatusFailed
}
