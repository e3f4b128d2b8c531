package dto

import "github.com/scoreline/scoreline-api/internal/feedback"

// ResultsResponse wraps the tier-gated feedback view for one submission.
// Available is false when the submission is not completed yet or its
// feedback payload could not be parsed; the client renders a neutral
// "could not load results" state in that case.
type ResultsResponse struct {
	SubmissionID uint           `json:"submission_id"`
	Status       string         `json:"status"`
	Available    bool           `json:"available"`
	Result       *feedback.View `json:"result,omitempty"`
}

// GradingCallbackRequest is posted by an out-of-process grader when it
// finishes a submission. Feedback is the JSON-wrapped free-text payload in
// the literal backend format; it is required for completed outcomes.
type GradingCallbackRequest struct {
	SubmissionID uint   `json:"submission_id" validate:"required,gt=0"`
	Outcome      string `json:"outcome" validate:"required,oneof=completed failed"`
	Feedback     string `json:"feedback" validate:"required_if=Outcome completed"`
}

// AccountResponse reports the caller's entitlement balance.
type AccountResponse struct {
	UserID          uint   `json:"user_id"`
	Email           string `json:"email"`
	FeedbackCredits int    `json:"feedback_credits"`
}

// CreditTopUpRequest is posted by the payment webhook after a purchase.
type CreditTopUpRequest struct {
	UserID  uint `json:"user_id" validate:"required,gt=0"`
	Credits int  `json:"credits" validate:"required,gt=0"`
}
