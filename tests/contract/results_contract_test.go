package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/scoreline/scoreline-api/internal/dto"
	"github.com/scoreline/scoreline-api/internal/feedback"
	"github.com/scoreline/scoreline-api/internal/handler"
)

type stubResultsService struct {
	response dto.ResultsResponse
}

func (s stubResultsService) List(context.Context, uint) ([]dto.SubmissionResponse, error) {
	return nil, nil
}

func (s stubResultsService) Results(context.Context, uint, uint) (dto.ResultsResponse, error) {
	return s.response, nil
}

func (s stubResultsService) Download(context.Context, uint, uint) (string, []byte, error) {
	return "feedback_report_1.txt", []byte("Final Grade: 6/7"), nil
}

func TestSubmissionResultsContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "submission_results.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	grade := 6
	svc := stubResultsService{response: dto.ResultsResponse{
		SubmissionID: 12,
		Status:       "completed",
		Available:    true,
		Result: &feedback.View{
			FinalGrade: &grade,
			Criteria: []feedback.CriterionView{
				{Name: "A", Score: feedback.MaskedScore, Locked: true},
				{Name: "B", Score: feedback.MaskedScore, Locked: true},
			},
			Narrative: "Upgrade to premium feedback to unlock your detailed criterion-by-criterion analysis.",
			Premium:   false,
		},
	}}

	resultsHandler := handler.NewResultsHandler(svc, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/submissions", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		return c.Next()
	})
	resultsHandler.Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions/12/results", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
