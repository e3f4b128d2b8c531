package dto

import "github.com/scoreline/scoreline-api/internal/wizard"

// WizardAdvanceRequest carries the partial-draft patch from one step widget.
type WizardAdvanceRequest struct {
	Patch wizard.Patch `json:"patch"`
}

// WizardSessionResponse reports the current cursor and accumulated draft.
type WizardSessionResponse struct {
	Step        wizard.Step  `json:"step"`
	Draft       wizard.Draft `json:"draft"`
	Submittable bool         `json:"submittable"`
}

// NewWizardSessionResponse converts a wizard session into a DTO.
func NewWizardSessionResponse(session wizard.Session) WizardSessionResponse {
	return WizardSessionResponse{
		Step:        session.Step,
		Draft:       session.Draft,
		Submittable: session.Draft.Submittable(),
	}
}

// CatalogResponse serves the subject catalog consumed by the details steps.
type CatalogResponse struct {
	IAGroups []wizard.SubjectGroup `json:"ia_groups"`
	EEGroups []wizard.SubjectGroup `json:"ee_groups"`
	Levels   []string              `json:"levels"`
}
