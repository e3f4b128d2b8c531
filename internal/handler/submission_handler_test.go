package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/scoreline/scoreline-api/internal/config"
	"github.com/scoreline/scoreline-api/internal/handler"
	"github.com/scoreline/scoreline-api/internal/models"
	"github.com/scoreline/scoreline-api/internal/repository"
	"github.com/scoreline/scoreline-api/internal/router"
	"github.com/scoreline/scoreline-api/internal/service"
	"github.com/scoreline/scoreline-api/internal/utils"
	"github.com/scoreline/scoreline-api/internal/wizard"
)

type testUploader struct{}

func (t *testUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	return "https://files.test/" + name, nil
}

type submissionFixture struct {
	app      *fiber.App
	db       *gorm.DB
	sessions repository.WizardSessionRepository
}

func setupSubmissionApp(t *testing.T) *submissionFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Submission{}, &models.Account{}))

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	submissionRepo := repository.NewSubmissionRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	sessionRepo := repository.NewWizardSessionRepository(redisClient, "", time.Hour)

	dispatchService := service.NewDispatchService(submissionRepo, accountRepo, sessionRepo, &testUploader{}, nil, nil, 0, logger)
	resultsService := service.NewResultsService(submissionRepo, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		SubmissionHandler: handler.NewSubmissionHandler(dispatchService, resultsService, validate, logger),
		ResultsHandler:    handler.NewResultsHandler(resultsService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			return c.Next()
		},
	})

	return &submissionFixture{app: app, db: db, sessions: sessionRepo}
}

func seedSession(t *testing.T, f *submissionFixture) {
	t.Helper()

	tok := wizard.TOKEssay
	lang := wizard.LanguageEnglish
	require.NoError(t, f.sessions.Save(context.Background(), 1, wizard.Session{
		Step: wizard.StepFeedbackOptions,
		Draft: wizard.Draft{
			Type:     wizard.TypeTOK,
			TOKType:  &tok,
			File:     &wizard.FileRef{Name: "essay.txt", SizeBytes: 64},
			Language: &lang,
		},
	}))
}

func multipartDispatch(t *testing.T, tier string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("tier", tier))
	part, err := writer.CreateFormFile("file", "essay.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("a plain text essay body"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestDispatchFreeSubmission(t *testing.T) {
	f := setupSubmissionApp(t)
	seedSession(t, f)

	body, contentType := multipartDispatch(t, "free")
	req := httptest.NewRequest("POST", "/api/v1/submissions", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stored models.Submission
	require.NoError(t, f.db.First(&stored).Error)
	require.Equal(t, models.SubmissionStatusPending, stored.Status)
	require.Equal(t, uint(1), stored.OwnerID)
	require.Equal(t, "free", stored.Tier)

	// The wizard session is gone; a second dispatch has nothing to submit.
	body, contentType = multipartDispatch(t, "free")
	req = httptest.NewRequest("POST", "/api/v1/submissions", body)
	req.Header.Set("Content-Type", contentType)
	resp, err = f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDispatchPremiumWithoutCredits(t *testing.T) {
	f := setupSubmissionApp(t)
	seedSession(t, f)
	require.NoError(t, f.db.Create(&models.Account{UserID: 1, FeedbackCredits: 0}).Error)

	body, contentType := multipartDispatch(t, "premium")
	req := httptest.NewRequest("POST", "/api/v1/submissions", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload utils.APIResponse
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.Equal(t, utils.ActionPurchaseCredits, payload.Action)

	var count int64
	require.NoError(t, f.db.Model(&models.Submission{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestDispatchRejectsUnknownTier(t *testing.T) {
	f := setupSubmissionApp(t)
	seedSession(t, f)

	body, contentType := multipartDispatch(t, "gold")
	req := httptest.NewRequest("POST", "/api/v1/submissions", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListSubmissionsReturnsOwnRecordsOnly(t *testing.T) {
	f := setupSubmissionApp(t)

	require.NoError(t, f.db.Create(&models.Submission{OwnerID: 1, Type: "EE", Status: models.SubmissionStatusPending, Tier: "free", Language: "English"}).Error)
	require.NoError(t, f.db.Create(&models.Submission{OwnerID: 2, Type: "IA", Status: models.SubmissionStatusPending, Tier: "free", Language: "English"}).Error)

	req := httptest.NewRequest("GET", "/api/v1/submissions", nil)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload struct {
		Data []struct {
			ID   uint   `json:"id"`
			Type string `json:"type"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.Len(t, payload.Data, 1)
	require.Equal(t, "EE", payload.Data[0].Type)
}

func TestResultsEndpointGatesFreeTier(t *testing.T) {
	f := setupSubmissionApp(t)

	require.NoError(t, f.db.Create(&models.Submission{
		OwnerID:  1,
		Type:     "TOK",
		Status:   models.SubmissionStatusCompleted,
		Tier:     "free",
		Language: "English",
		Feedback: `{"value": "Final Grade: 5/7\nCriterion A: 5/7"}`,
	}).Error)

	req := httptest.NewRequest("GET", "/api/v1/submissions/1/results", nil)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload struct {
		Data struct {
			Available bool `json:"available"`
			Result    struct {
				FinalGrade *int `json:"final_grade"`
				Criteria   []struct {
					Score  string `json:"score"`
					Locked bool   `json:"locked"`
				} `json:"criteria"`
			} `json:"result"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.True(t, payload.Data.Available)
	require.Equal(t, 5, *payload.Data.Result.FinalGrade)
	require.Len(t, payload.Data.Result.Criteria, 1)
	require.True(t, payload.Data.Result.Criteria[0].Locked)
	require.Equal(t, "?/?", payload.Data.Result.Criteria[0].Score)
}

func TestDownloadForbiddenOnFreeTier(t *testing.T) {
	f := setupSubmissionApp(t)

	require.NoError(t, f.db.Create(&models.Submission{
		OwnerID:  1,
		Type:     "TOK",
		Status:   models.SubmissionStatusCompleted,
		Tier:     "free",
		Language: "English",
		Feedback: `{"value": "Final Grade: 5/7"}`,
	}).Error)

	req := httptest.NewRequest("GET", "/api/v1/submissions/1/download", nil)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
