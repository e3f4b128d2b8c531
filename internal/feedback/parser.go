package feedback

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrUnparseable indicates the outer feedback payload could not be decoded.
// Callers render a neutral "could not load results" state instead of failing.
var ErrUnparseable = errors.New("feedback payload is not parseable")

// Criterion is one scored rubric dimension extracted from the feedback text.
type Criterion struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
}

// Parsed is the structured view derived from one feedback string. Fields
// whose pattern did not match are nil so callers can distinguish "not
// graded" from "graded zero".
type Parsed struct {
	FinalGrade     *int        `json:"final_grade"`
	CompositeScore *int        `json:"composite_score"`
	CompositeMax   *int        `json:"composite_max"`
	Criteria       []Criterion `json:"criteria"`
	FullText       string      `json:"full_text"`
}

// envelope is the backend-authored wrapper around the free-text feedback.
type envelope struct {
	Value string `json:"value"`
}

var (
	finalGradeRe = regexp.MustCompile(`Final Grade:\s*(\d)/7`)
	compositeRe  = regexp.MustCompile(`Composite Score:\s*(\d+)/(\d+)`)
	criterionRe  = regexp.MustCompile(`Criterion\s+([A-Z]):\s*(\d+)/(\d+)`)
)

// Parse decodes a JSON-wrapped feedback string into its structured form.
// Extraction rules are independent and each optional: the earliest match
// wins for the grade and composite score, and every criterion occurrence is
// kept in order of appearance, duplicates included. Parse is deterministic
// and never panics; a malformed outer envelope yields ErrUnparseable with
// no partial result.
func Parse(raw string) (Parsed, error) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return Parsed{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	text := env.Value
	parsed := Parsed{FullText: text}

	if m := finalGradeRe.FindStringSubmatch(text); m != nil {
		if grade, err := strconv.Atoi(m[1]); err == nil && grade <= 7 {
			parsed.FinalGrade = &grade
		}
	}

	if m := compositeRe.FindStringSubmatch(text); m != nil {
		score, errScore := strconv.Atoi(m[1])
		max, errMax := strconv.Atoi(m[2])
		if errScore == nil && errMax == nil {
			parsed.CompositeScore = &score
			parsed.CompositeMax = &max
		}
	}

	for _, m := range criterionRe.FindAllStringSubmatch(text, -1) {
		score, errScore := strconv.Atoi(m[2])
		max, errMax := strconv.Atoi(m[3])
		if errScore != nil || errMax != nil {
			continue
		}
		parsed.Criteria = append(parsed.Criteria, Criterion{
			Name:     "Criterion " + m[1],
			Score:    score,
			MaxScore: max,
		})
	}

	return parsed, nil
}
