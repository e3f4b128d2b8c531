package service

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/scoreline/scoreline-api/internal/models"
)

// GradingJob is the message handed to the grading worker for one pending
// submission.
type GradingJob struct {
	SubmissionID uint   `json:"submission_id"`
	OwnerID      uint   `json:"owner_id"`
	Type         string `json:"type"`
	Group        string `json:"group,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Level        string `json:"level,omitempty"`
	TOKType      string `json:"tok_type,omitempty"`
	Language     string `json:"language"`
	Tier         string `json:"tier"`
	FileURL      string `json:"file_url"`
}

// NewGradingJob builds the job payload for a dispatched submission.
func NewGradingJob(submission models.Submission) GradingJob {
	job := GradingJob{
		SubmissionID: submission.ID,
		OwnerID:      submission.OwnerID,
		Type:         submission.Type,
		Language:     submission.Language,
		Tier:         submission.Tier,
		FileURL:      submission.FileURL,
	}
	if submission.Group != nil {
		job.Group = *submission.Group
	}
	if submission.Subject != nil {
		job.Subject = *submission.Subject
	}
	if submission.Level != nil {
		job.Level = *submission.Level
	}
	if submission.TOKType != nil {
		job.TOKType = *submission.TOKType
	}

	return job
}

// natsGradingQueue enqueues grading jobs on a NATS subject consumed by the
// grading worker's queue group.
type natsGradingQueue struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSGradingQueue constructs a GradingEnqueuer backed by NATS.
func NewNATSGradingQueue(conn *nats.Conn, subject string, logger zerolog.Logger) GradingEnqueuer {
	if subject == "" {
		subject = "scoreline.grading.jobs"
	}

	return &natsGradingQueue{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "grading_queue").Logger(),
	}
}

func (q *natsGradingQueue) Enqueue(_ context.Context, submission models.Submission) error {
	payload, err := json.Marshal(NewGradingJob(submission))
	if err != nil {
		return err
	}

	if err := q.conn.Publish(q.subject, payload); err != nil {
		return err
	}

	q.logger.Debug().Uint("submission_id", submission.ID).Str("subject", q.subject).Msg("grading job enqueued")
	return nil
}
