package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "scoreline",
		Subsystem: "ai",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of AI marking requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scoreline",
		Subsystem: "ai",
		Name:      "evaluation_failures_total",
		Help:      "Number of AI marking failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI marker.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIEvaluator implements Evaluator against the OpenAI chat completion API.
type OpenAIEvaluator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIEvaluator builds a new marker using the provided configuration.
func NewOpenAIEvaluator(cfg OpenAIConfig) (*OpenAIEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}

	tracer := otel.Tracer("github.com/scoreline/scoreline-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIEvaluator{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Evaluate asks the model to mark the essay and returns the raw report text.
func (e *OpenAIEvaluator) Evaluate(parent context.Context, input EvaluationInput) (EvaluationResult, error) {
	ctx, span := e.tracer.Start(parent, "openai.evaluate", trace.WithAttributes(
		attribute.String("model", e.cfg.Model),
		attribute.String("assessment.type", input.AssessmentType),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: markerSystemPrompt(input),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildMarkingPrompt(input),
			},
		},
	}

	resp, err := e.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	aiDuration.WithLabelValues(e.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		aiFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EvaluationResult{}, fmt.Errorf("openai evaluate: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EvaluationResult{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		err := fmt.Errorf("empty marking response")
		aiFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EvaluationResult{}, err
	}

	return EvaluationResult{Text: content, Model: e.cfg.Model}, nil
}

// markerSystemPrompt pins the exact report line format. The score lines are
// machine-read downstream so their shape is not negotiable.
func markerSystemPrompt(input EvaluationInput) string {
	builder := strings.Builder{}
	builder.WriteString("You are an experienced IB examiner marking a student submission. ")
	builder.WriteString("Write your report in ")
	if input.Language != "" {
		builder.WriteString(input.Language)
	} else {
		builder.WriteString("English")
	}
	builder.WriteString(". Start the report with these exact lines before any commentary:\n")
	builder.WriteString("Final Grade: <n>/7\n")
	builder.WriteString("Composite Score: <total>/<max>\n")
	builder.WriteString("Criterion A: <score>/<max>\n")
	builder.WriteString("Criterion B: <score>/<max>\n")
	builder.WriteString("(one line per criterion of the official rubric, in order)\n")
	builder.WriteString("Then write detailed narrative feedback per criterion with concrete suggestions.")
	return builder.String()
}

func buildMarkingPrompt(input EvaluationInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Submission\n")
	builder.WriteString("Assessment: ")
	builder.WriteString(input.AssessmentType)
	if input.Group != "" {
		builder.WriteString("\nGroup: ")
		builder.WriteString(input.Group)
	}
	if input.Subject != "" {
		builder.WriteString("\nSubject: ")
		builder.WriteString(input.Subject)
	}
	if input.Level != "" {
		builder.WriteString("\nLevel: ")
		builder.WriteString(input.Level)
	}
	if input.TOKType != "" {
		builder.WriteString("\nTOK format: ")
		builder.WriteString(input.TOKType)
	}
	builder.WriteString("\n\n## Document\n")
	if input.DocumentText != "" {
		builder.WriteString(input.DocumentText)
	} else {
		builder.WriteString("Document URL: ")
		builder.WriteString(input.DocumentURL)
	}
	return builder.String()
}
