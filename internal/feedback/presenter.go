package feedback

import (
	"fmt"

	"github.com/microcosm-cc/bluemonday"

	"github.com/scoreline/scoreline-api/internal/wizard"
)

// MaskedScore is the placeholder shown in place of a locked criterion score.
const MaskedScore = "?/?"

// upgradeCallToAction replaces the narrative body for free-tier results.
const upgradeCallToAction = "Upgrade to premium feedback to unlock your detailed criterion-by-criterion analysis."

// CriterionView is one rubric row as rendered for a given tier.
type CriterionView struct {
	Name   string `json:"name"`
	Score  string `json:"score"`
	Locked bool   `json:"locked"`
}

// View is the tier-gated rendering of a parsed feedback result.
type View struct {
	FinalGrade     *int            `json:"final_grade"`
	CompositeScore *int            `json:"composite_score"`
	CompositeMax   *int            `json:"composite_max"`
	Criteria       []CriterionView `json:"criteria"`
	Narrative      string          `json:"narrative"`
	Premium        bool            `json:"premium"`
}

var narrativePolicy = bluemonday.StrictPolicy()

// Present decides, per criterion and for the narrative text, what the given
// tier is allowed to see. Free results keep the headline grade but mask
// every criterion score and swap the narrative for an upgrade prompt;
// premium results render the parsed data verbatim. Present is a pure
// function of its inputs.
func Present(parsed Parsed, tier wizard.Tier) View {
	premium := tier == wizard.TierPremium

	view := View{
		FinalGrade:     parsed.FinalGrade,
		CompositeScore: parsed.CompositeScore,
		CompositeMax:   parsed.CompositeMax,
		Premium:        premium,
	}

	for _, criterion := range parsed.Criteria {
		row := CriterionView{Name: criterion.Name, Score: MaskedScore, Locked: true}
		if premium {
			row.Score = fmt.Sprintf("%d/%d", criterion.Score, criterion.MaxScore)
			row.Locked = false
		}
		view.Criteria = append(view.Criteria, row)
	}

	if premium {
		view.Narrative = narrativePolicy.Sanitize(parsed.FullText)
	} else {
		view.Narrative = upgradeCallToAction
		view.CompositeScore = nil
		view.CompositeMax = nil
	}

	return view
}
