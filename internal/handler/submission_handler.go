package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/scoreline/scoreline-api/internal/dto"
	"github.com/scoreline/scoreline-api/internal/service"
	"github.com/scoreline/scoreline-api/internal/utils"
	"github.com/scoreline/scoreline-api/internal/wizard"
)

// SubmissionHandler manages submission dispatch and listing endpoints.
type SubmissionHandler struct {
	dispatch  service.DispatchService
	results   service.ResultsService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(dispatch service.DispatchService, results service.ResultsService, validator *validator.Validate, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		dispatch:  dispatch,
		results:   results,
		validator: validator,
		logger:    logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. Guards are
// applied to the dispatch route only.
func (h *SubmissionHandler) Register(router fiber.Router, dispatchGuards ...fiber.Handler) {
	router.Get("", h.list)
	router.Post("", append(dispatchGuards, h.create)...)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	ownerID := userIDFromContext(c)
	if ownerID == 0 {
		return utils.SendErrorWithAction(c, fiber.StatusUnauthorized, "sign in to view submissions", utils.ActionSignIn)
	}

	submissions, err := h.results.List(c.Context(), ownerID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	ownerID := userIDFromContext(c)

	payload := dto.SubmissionDispatchRequest{Tier: c.FormValue("tier")}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	submission, err := h.dispatch.Dispatch(c.Context(), ownerID, wizard.Tier(payload.Tier), file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission dispatched", submission)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAuthRequired):
		return utils.SendErrorWithAction(c, fiber.StatusUnauthorized, "sign in to submit", utils.ActionSignIn)
	case errors.Is(err, service.ErrInsufficientCredits):
		return utils.SendErrorWithAction(c, fiber.StatusPaymentRequired, "no feedback credits remaining", utils.ActionPurchaseCredits)
	case errors.Is(err, service.ErrDraftNotSubmittable):
		return utils.SendError(c, fiber.StatusBadRequest, "submission draft is incomplete")
	case errors.Is(err, service.ErrFileNotAllowed):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUploadFailed):
		return utils.SendErrorWithAction(c, fiber.StatusBadGateway, "document upload failed", utils.ActionRetry)
	case errors.Is(err, service.ErrPersistFailed):
		return utils.SendErrorWithAction(c, fiber.StatusInternalServerError, "submission could not be saved", utils.ActionRetry)
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
