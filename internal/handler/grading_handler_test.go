package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/scoreline/scoreline-api/internal/config"
	"github.com/scoreline/scoreline-api/internal/handler"
	"github.com/scoreline/scoreline-api/internal/middleware"
	"github.com/scoreline/scoreline-api/internal/models"
	"github.com/scoreline/scoreline-api/internal/repository"
	"github.com/scoreline/scoreline-api/internal/router"
	"github.com/scoreline/scoreline-api/internal/service"
)

const testInternalSecret = "grading-secret"

func setupGradingApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Submission{}))

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	submissionRepo := repository.NewSubmissionRepository(db)
	gradingService := service.NewGradingService(submissionRepo, nil, validate, logger)

	gradingHandler, err := handler.NewGradingHandler(gradingService, logger)
	require.NoError(t, err)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", InternalSecret: testInternalSecret}, router.Dependencies{
		GradingHandler: gradingHandler,
	})

	return app, db
}

func postCallback(t *testing.T, app *fiber.App, payload interface{}, secret string) int {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/internal/grading/callback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set(middleware.InternalSecretHeader, secret)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestGradingCallbackRequiresSecret(t *testing.T) {
	app, _ := setupGradingApp(t)

	status := postCallback(t, app, map[string]interface{}{
		"submission_id": 1,
		"outcome":       "failed",
	}, "")
	require.Equal(t, fiber.StatusForbidden, status)

	status = postCallback(t, app, map[string]interface{}{
		"submission_id": 1,
		"outcome":       "failed",
	}, "wrong")
	require.Equal(t, fiber.StatusForbidden, status)
}

func TestGradingCallbackSchemaRejectsBadPayloads(t *testing.T) {
	app, _ := setupGradingApp(t)

	// Unknown outcome value.
	status := postCallback(t, app, map[string]interface{}{
		"submission_id": 1,
		"outcome":       "done",
	}, testInternalSecret)
	require.Equal(t, fiber.StatusBadRequest, status)

	// Extra fields are not part of the contract.
	status = postCallback(t, app, map[string]interface{}{
		"submission_id": 1,
		"outcome":       "failed",
		"operator":      "admin",
	}, testInternalSecret)
	require.Equal(t, fiber.StatusBadRequest, status)

	// String submission id.
	status = postCallback(t, app, map[string]interface{}{
		"submission_id": "1",
		"outcome":       "failed",
	}, testInternalSecret)
	require.Equal(t, fiber.StatusBadRequest, status)
}

func TestGradingCallbackCompletesSubmission(t *testing.T) {
	app, db := setupGradingApp(t)

	require.NoError(t, db.Create(&models.Submission{
		OwnerID:  7,
		Type:     "EE",
		Status:   models.SubmissionStatusPending,
		Tier:     "premium",
		Language: "English",
	}).Error)

	status := postCallback(t, app, map[string]interface{}{
		"submission_id": 1,
		"outcome":       "completed",
		"feedback":      `{"value": "Final Grade: 6/7\nCriterion A: 6/7"}`,
	}, testInternalSecret)
	require.Equal(t, fiber.StatusOK, status)

	var stored models.Submission
	require.NoError(t, db.First(&stored).Error)
	require.Equal(t, models.SubmissionStatusCompleted, stored.Status)
	require.NotEmpty(t, stored.Feedback)
}

func TestGradingCallbackUnknownSubmission(t *testing.T) {
	app, _ := setupGradingApp(t)

	status := postCallback(t, app, map[string]interface{}{
		"submission_id": 404,
		"outcome":       "failed",
	}, testInternalSecret)
	require.Equal(t, fiber.StatusNotFound, status)
}
