package wizard

import (
	"errors"
	"fmt"
)

// AssessmentType identifies the kind of work being submitted for feedback.
type AssessmentType string

// Supported assessment types.
const (
	TypeIA  AssessmentType = "IA"
	TypeEE  AssessmentType = "EE"
	TypeTOK AssessmentType = "TOK"
)

// Valid reports whether the assessment type is one of the supported values.
func (t AssessmentType) Valid() bool {
	switch t {
	case TypeIA, TypeEE, TypeTOK:
		return true
	}
	return false
}

// Step identifies one screen of the submission wizard.
type Step string

// Wizard steps in forward order.
const (
	StepAssessmentType  Step = "assessment_type"
	StepIADetails       Step = "ia_details"
	StepEEDetails       Step = "ee_details"
	StepTOKDetails      Step = "tok_details"
	StepUpload          Step = "upload"
	StepFeedbackOptions Step = "feedback_options"
)

// TOKFormat distinguishes the two TOK assessment components.
type TOKFormat string

// TOK formats.
const (
	TOKExhibition TOKFormat = "Exhibition"
	TOKEssay      TOKFormat = "Essay"
)

// Language is the language the submitted document is written in.
type Language string

// Supported document languages.
const (
	LanguageEnglish Language = "English"
	LanguageSpanish Language = "Spanish"
)

// Tier selects the depth of feedback purchased for a submission.
type Tier string

// Feedback tiers.
const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// Valid reports whether the tier is a known value.
func (t Tier) Valid() bool {
	return t == TierFree || t == TierPremium
}

var (
	// ErrValidationIncomplete indicates the current step is missing required fields.
	ErrValidationIncomplete = errors.New("step is missing required fields")
	// ErrInvalidTransition indicates the requested move is not in the transition table.
	ErrInvalidTransition = errors.New("invalid wizard transition")
)

// FileRef points at an uploaded document without holding its bytes.
type FileRef struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
}

// Draft is the accumulated submission state collected across wizard steps.
// It is owned by a single Session and never shared between submissions.
type Draft struct {
	Type     AssessmentType `json:"type,omitempty"`
	Group    *string        `json:"group,omitempty"`
	Subject  *string        `json:"subject,omitempty"`
	Level    *string        `json:"level,omitempty"`
	TOKType  *TOKFormat     `json:"tok_type,omitempty"`
	File     *FileRef       `json:"file,omitempty"`
	Language *Language      `json:"language,omitempty"`
	Tier     *Tier          `json:"tier,omitempty"`
}

// Patch carries the slice of draft state collected by one step widget.
// Merging is shallow: a non-nil field overwrites the draft's field.
type Patch struct {
	Type     AssessmentType `json:"type,omitempty"`
	Group    *string        `json:"group,omitempty"`
	Subject  *string        `json:"subject,omitempty"`
	Level    *string        `json:"level,omitempty"`
	TOKType  *TOKFormat     `json:"tok_type,omitempty"`
	File     *FileRef       `json:"file,omitempty"`
	Language *Language      `json:"language,omitempty"`
	Tier     *Tier          `json:"tier,omitempty"`
}

// Session pairs the step cursor with its draft.
type Session struct {
	Step  Step  `json:"step"`
	Draft Draft `json:"draft"`
}

// NewSession returns a fresh session positioned at the first step.
func NewSession() Session {
	return Session{Step: StepAssessmentType}
}

// detailsStep maps an assessment type to its details step.
var detailsStep = map[AssessmentType]Step{
	TypeIA:  StepIADetails,
	TypeEE:  StepEEDetails,
	TypeTOK: StepTOKDetails,
}

// forward is the transition table keyed by (current step, assessment type).
// The assessment-type step branches on the freshly chosen type; every later
// step routes by the type already stored in the draft.
var forward = map[Step]map[AssessmentType]Step{
	StepAssessmentType: {
		TypeIA:  StepIADetails,
		TypeEE:  StepEEDetails,
		TypeTOK: StepTOKDetails,
	},
	StepIADetails:  {TypeIA: StepUpload},
	StepEEDetails:  {TypeEE: StepUpload},
	StepTOKDetails: {TypeTOK: StepUpload},
	StepUpload: {
		TypeIA:  StepFeedbackOptions,
		TypeEE:  StepFeedbackOptions,
		TypeTOK: StepFeedbackOptions,
	},
}

// backward is the exact inverse of forward, recomputed from the stored
// assessment type rather than a history stack.
var backward = map[Step]map[AssessmentType]Step{
	StepIADetails:  {TypeIA: StepAssessmentType},
	StepEEDetails:  {TypeEE: StepAssessmentType},
	StepTOKDetails: {TypeTOK: StepAssessmentType},
	StepUpload: {
		TypeIA:  StepIADetails,
		TypeEE:  StepEEDetails,
		TypeTOK: StepTOKDetails,
	},
	StepFeedbackOptions: {
		TypeIA:  StepUpload,
		TypeEE:  StepUpload,
		TypeTOK: StepUpload,
	},
}

// Advance merges the patch into the draft and moves the cursor forward.
// Step widgets reject incomplete input before calling Advance, but the
// session re-validates the merged draft so a malformed patch can never
// move the cursor. On error the session is unchanged.
func (s *Session) Advance(p Patch) error {
	merged := s.Draft
	merged.apply(p)

	if err := merged.completeFor(s.Step); err != nil {
		return err
	}

	next, ok := forward[s.Step][merged.Type]
	if !ok {
		return fmt.Errorf("%w: no forward route from %s for type %q", ErrInvalidTransition, s.Step, merged.Type)
	}

	s.Draft = merged
	s.Step = next
	return nil
}

// Back moves the cursor to the inverse of the last forward transition.
// Backing out of the first step is a no-op.
func (s *Session) Back() {
	if s.Step == StepAssessmentType {
		return
	}

	prev, ok := backward[s.Step][s.Draft.Type]
	if !ok {
		// Draft type missing or inconsistent with the cursor; the only
		// safe landing spot is the start of the wizard.
		s.Step = StepAssessmentType
		return
	}

	s.Step = prev
}

func (d *Draft) apply(p Patch) {
	if p.Type != "" {
		d.Type = p.Type
	}
	if p.Group != nil {
		d.Group = p.Group
	}
	if p.Subject != nil {
		d.Subject = p.Subject
	}
	if p.Level != nil {
		d.Level = p.Level
	}
	if p.TOKType != nil {
		d.TOKType = p.TOKType
	}
	if p.File != nil {
		d.File = p.File
	}
	if p.Language != nil {
		d.Language = p.Language
	}
	if p.Tier != nil {
		d.Tier = p.Tier
	}
}

// completeFor checks that the draft satisfies the requirements of the given
// step, i.e. the fields that step's widget is responsible for collecting.
func (d Draft) completeFor(step Step) error {
	switch step {
	case StepAssessmentType:
		if !d.Type.Valid() {
			return fmt.Errorf("%w: assessment type", ErrValidationIncomplete)
		}
	case StepIADetails:
		if !set(d.Group) || !set(d.Subject) || !set(d.Level) {
			return fmt.Errorf("%w: group, subject and level are required", ErrValidationIncomplete)
		}
	case StepEEDetails:
		if !set(d.Group) || !set(d.Subject) {
			return fmt.Errorf("%w: group and subject are required", ErrValidationIncomplete)
		}
	case StepTOKDetails:
		if d.TOKType == nil || (*d.TOKType != TOKExhibition && *d.TOKType != TOKEssay) {
			return fmt.Errorf("%w: tok type", ErrValidationIncomplete)
		}
	case StepUpload:
		if d.File == nil || d.File.Name == "" {
			return fmt.Errorf("%w: file", ErrValidationIncomplete)
		}
		if d.Language == nil || (*d.Language != LanguageEnglish && *d.Language != LanguageSpanish) {
			return fmt.Errorf("%w: language", ErrValidationIncomplete)
		}
	default:
		return fmt.Errorf("%w: %s is a terminal step", ErrInvalidTransition, step)
	}
	return nil
}

// Submittable reports whether every field required by the draft's assessment
// type is present, including the uploaded file, language and chosen tier.
func (d Draft) Submittable() bool {
	if !d.Type.Valid() {
		return false
	}
	if err := d.completeFor(detailsStep[d.Type]); err != nil {
		return false
	}
	if err := d.completeFor(StepUpload); err != nil {
		return false
	}
	return d.Tier != nil && d.Tier.Valid()
}

func set(s *string) bool {
	return s != nil && *s != ""
}
