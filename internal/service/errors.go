package service

import "errors"

// Dispatch and results error taxonomy. Handlers translate these into
// user-facing responses with an actionable next step.
var (
	// ErrAuthRequired indicates the caller is not authenticated; the client
	// redirects to sign-in.
	ErrAuthRequired = errors.New("authentication required")
	// ErrInsufficientCredits indicates a premium dispatch with no feedback
	// credits left; the client redirects to the purchase flow.
	ErrInsufficientCredits = errors.New("no feedback credits remaining")
	// ErrDraftNotSubmittable indicates the wizard draft is missing fields
	// required by its assessment type.
	ErrDraftNotSubmittable = errors.New("draft is not submittable")
	// ErrFileNotAllowed indicates the uploaded document failed type or size
	// constraints.
	ErrFileNotAllowed = errors.New("file type or size not allowed")
	// ErrUploadFailed indicates the blob store rejected the upload; no
	// record was written.
	ErrUploadFailed = errors.New("file upload failed")
	// ErrPersistFailed indicates the submission row could not be written
	// after a successful upload. The orphaned blob is not rolled back.
	ErrPersistFailed = errors.New("submission could not be saved")
	// ErrSubmissionNotFound indicates no submission matches the id for the
	// requesting owner.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrPremiumRequired indicates a premium-only operation was attempted
	// on a free-tier submission.
	ErrPremiumRequired = errors.New("premium feedback required")
	// ErrAccountNotFound indicates no entitlement account exists for the user.
	ErrAccountNotFound = errors.New("account not found")
)
