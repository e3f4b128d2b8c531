package dto

import (
	"time"

	"github.com/scoreline/scoreline-api/internal/models"
)

// SubmissionDispatchRequest is the multipart payload finalising the wizard.
// The file itself travels alongside as a multipart part.
type SubmissionDispatchRequest struct {
	Tier string `form:"tier" validate:"required,oneof=free premium"`
}

// SubmissionResponse is returned when viewing or listing submissions.
type SubmissionResponse struct {
	ID        uint      `json:"id"`
	Type      string    `json:"type"`
	Group     *string   `json:"group,omitempty"`
	Subject   *string   `json:"subject,omitempty"`
	Level     *string   `json:"level,omitempty"`
	TOKType   *string   `json:"tok_type,omitempty"`
	FileURL   string    `json:"file_url"`
	FileName  string    `json:"file_name"`
	Language  string    `json:"language"`
	Tier      string    `json:"tier"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSubmissionResponse converts a Submission model into a DTO. The feedback
// body deliberately stays out; results have their own gated view.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:        model.ID,
		Type:      model.Type,
		Group:     model.Group,
		Subject:   model.Subject,
		Level:     model.Level,
		TOKType:   model.TOKType,
		FileURL:   model.FileURL,
		FileName:  model.FileName,
		Language:  model.Language,
		Tier:      model.Tier,
		Status:    model.Status,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(models []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(models))
	for _, submission := range models {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}

// SubmissionEvent is pushed over the realtime feed when a submission is
// created or its status changes.
type SubmissionEvent struct {
	Kind       string             `json:"kind"` // created | updated
	Submission SubmissionResponse `json:"submission"`
}

// Realtime event kinds.
const (
	SubmissionEventCreated = "created"
	SubmissionEventUpdated = "updated"
)
