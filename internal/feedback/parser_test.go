package feedback

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func wrap(t *testing.T, text string) string {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"value": text})
	require.NoError(t, err)
	return string(payload)
}

func TestParseCanonicalReport(t *testing.T) {
	text := "Final Grade: 6/7\nComposite Score: 24/30\nCriterion A: 6/7\nCriterion B: 5/7\n\nStrong analysis throughout."

	parsed, err := Parse(wrap(t, text))
	require.NoError(t, err)

	require.NotNil(t, parsed.FinalGrade)
	require.Equal(t, 6, *parsed.FinalGrade)
	require.NotNil(t, parsed.CompositeScore)
	require.Equal(t, 24, *parsed.CompositeScore)
	require.Equal(t, 30, *parsed.CompositeMax)

	require.Len(t, parsed.Criteria, 2)
	require.Equal(t, Criterion{Name: "Criterion A", Score: 6, MaxScore: 7}, parsed.Criteria[0])
	require.Equal(t, Criterion{Name: "Criterion B", Score: 5, MaxScore: 7}, parsed.Criteria[1])
	require.Equal(t, text, parsed.FullText)
}

func TestParseMalformedEnvelope(t *testing.T) {
	_, err := Parse("not json at all")
	require.ErrorIs(t, err, ErrUnparseable)

	_, err = Parse(`{"value": 42}`)
	require.ErrorIs(t, err, ErrUnparseable)
}

func TestParseNoMatchesKeepsFullText(t *testing.T) {
	text := "The document shows promise but no scores were assigned."

	parsed, err := Parse(wrap(t, text))
	require.NoError(t, err)

	require.Nil(t, parsed.FinalGrade)
	require.Nil(t, parsed.CompositeScore)
	require.Nil(t, parsed.CompositeMax)
	require.Empty(t, parsed.Criteria)
	require.Equal(t, text, parsed.FullText)
}

func TestParseKeepsDuplicateCriteria(t *testing.T) {
	text := "Criterion A: 3/8\nRevisited later:\nCriterion A: 4/8"

	parsed, err := Parse(wrap(t, text))
	require.NoError(t, err)

	require.Len(t, parsed.Criteria, 2)
	require.Equal(t, 3, parsed.Criteria[0].Score)
	require.Equal(t, 4, parsed.Criteria[1].Score)
}

func TestParseEarliestMatchWinsForGrade(t *testing.T) {
	text := "Final Grade: 5/7\nReconsidered: Final Grade: 7/7"

	parsed, err := Parse(wrap(t, text))
	require.NoError(t, err)

	require.NotNil(t, parsed.FinalGrade)
	require.Equal(t, 5, *parsed.FinalGrade)
}

func TestParseIgnoresMalformedScoreLines(t *testing.T) {
	text := "Final Grade: 9/7\nComposite Score: twenty/30\nCriterion a: 3/7"

	parsed, err := Parse(wrap(t, text))
	require.NoError(t, err)

	// Grades above the scale and non-numeric or lowercase lines do not match.
	require.Nil(t, parsed.FinalGrade)
	require.Nil(t, parsed.CompositeScore)
	require.Empty(t, parsed.Criteria)
}
