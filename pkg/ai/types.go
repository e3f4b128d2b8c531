package ai

import "context"

// EvaluationInput contains the artefacts needed to mark a submitted essay.
type EvaluationInput struct {
	AssessmentType string
	Group          string
	Subject        string
	Level          string
	TOKType        string
	Language       string
	DocumentURL    string
	DocumentText   string
}

// EvaluationResult carries the marker's free-text report. The text follows
// the fixed line format consumed downstream:
//
//	Final Grade: 6/7
//	Composite Score: 24/30
//	Criterion A: 6/7
//	...
//
// followed by the narrative commentary.
type EvaluationResult struct {
	Text  string
	Model string
}

// Evaluator describes an AI model capable of marking essay submissions.
type Evaluator interface {
	Evaluate(ctx context.Context, input EvaluationInput) (EvaluationResult, error)
}
