package grader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/scoreline/scoreline-api/internal/dto"
	"github.com/scoreline/scoreline-api/internal/service"
	"github.com/scoreline/scoreline-api/pkg/ai"
)

// maxDocumentBytes bounds how much of a stored document the worker will
// pull back for inline marking.
const maxDocumentBytes = 2 << 20

// Worker consumes grading jobs from NATS, marks each document with the AI
// evaluator and applies the outcome.
type Worker struct {
	conn      *nats.Conn
	subject   string
	queue     string
	evaluator ai.Evaluator
	grading   service.GradingService
	fetcher   *http.Client
	logger    zerolog.Logger
}

// NewWorker constructs a grading worker instance.
func NewWorker(conn *nats.Conn, subject string, evaluator ai.Evaluator, grading service.GradingService, logger zerolog.Logger) *Worker {
	if subject == "" {
		subject = "scoreline.grading.jobs"
	}

	return &Worker{
		conn:      conn,
		subject:   subject,
		queue:     "scoreline-graders",
		evaluator: evaluator,
		grading:   grading,
		fetcher:   &http.Client{Timeout: 30 * time.Second},
		logger:    logger.With().Str("component", "grading_worker").Logger(),
	}
}

// Start subscribes to the grading subject and processes jobs until the
// context is cancelled. Workers share a queue group so each job is marked
// exactly once across the fleet.
func (w *Worker) Start(ctx context.Context) error {
	sub, err := w.conn.QueueSubscribe(w.subject, w.queue, func(msg *nats.Msg) {
		var job service.GradingJob
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			w.logger.Error().Err(err).Msg("malformed grading job")
			return
		}
		w.process(ctx, job)
	})
	if err != nil {
		return fmt.Errorf("subscribe grading jobs: %w", err)
	}

	w.logger.Info().Str("subject", w.subject).Str("queue", w.queue).Msg("grading worker started")

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		w.logger.Warn().Err(err).Msg("failed to drain grading subscription")
	}

	return nil
}

func (w *Worker) process(ctx context.Context, job service.GradingJob) {
	logger := w.logger.With().Uint("submission_id", job.SubmissionID).Logger()
	logger.Info().Str("type", job.Type).Msg("marking submission")

	input := ai.EvaluationInput{
		AssessmentType: job.Type,
		Group:          job.Group,
		Subject:        job.Subject,
		Level:          job.Level,
		TOKType:        job.TOKType,
		Language:       job.Language,
		DocumentURL:    job.FileURL,
	}
	if text, err := w.fetchDocumentText(ctx, job.FileURL); err == nil {
		input.DocumentText = text
	} else {
		logger.Warn().Err(err).Msg("document fetch failed, marking from URL reference")
	}

	result, err := w.evaluator.Evaluate(ctx, input)
	outcome := dto.GradingCallbackRequest{SubmissionID: job.SubmissionID}
	var raw []byte
	if err != nil {
		logger.Error().Err(err).Msg("marking failed")
		outcome.Outcome = "failed"
		raw, _ = json.Marshal(map[string]string{"error": err.Error()})
	} else {
		envelope, marshalErr := json.Marshal(map[string]string{"value": result.Text})
		if marshalErr != nil {
			logger.Error().Err(marshalErr).Msg("failed to encode feedback envelope")
			return
		}
		outcome.Outcome = "completed"
		outcome.Feedback = string(envelope)
		raw, _ = json.Marshal(map[string]interface{}{"model": result.Model, "value": result.Text})
	}

	if _, err := w.grading.Apply(ctx, outcome, raw); err != nil {
		logger.Error().Err(err).Str("outcome", outcome.Outcome).Msg("failed to apply grading outcome")
		return
	}

	logger.Info().Str("outcome", outcome.Outcome).Msg("submission graded")
}

// fetchDocumentText pulls the stored document back for inline marking. Only
// plain-text payloads are inlined; binary formats go to the model by URL.
func (w *Worker) fetchDocumentText(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("no document url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := w.fetcher.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("document fetch returned %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "text/") {
		return "", fmt.Errorf("document is %s, not inlineable", contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return "", err
	}

	return string(body), nil
}
