package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/scoreline/scoreline-api/internal/dto"
	"github.com/scoreline/scoreline-api/internal/service"
	"github.com/scoreline/scoreline-api/internal/utils"
	"github.com/scoreline/scoreline-api/internal/wizard"
)

// WizardHandler manages the submission wizard endpoints.
type WizardHandler struct {
	service service.WizardService
	logger  zerolog.Logger
}

// NewWizardHandler builds a wizard handler instance.
func NewWizardHandler(service service.WizardService, logger zerolog.Logger) *WizardHandler {
	return &WizardHandler{
		service: service,
		logger:  logger.With().Str("component", "wizard_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *WizardHandler) Register(router fiber.Router) {
	router.Get("/catalog", h.catalog)
	router.Get("/session", h.current)
	router.Post("/session", h.start)
	router.Post("/session/advance", h.advance)
	router.Post("/session/back", h.back)
}

func (h *WizardHandler) catalog(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "catalog retrieved", h.service.Catalog())
}

func (h *WizardHandler) start(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendErrorWithAction(c, fiber.StatusUnauthorized, "sign in to start a submission", utils.ActionSignIn)
	}

	session, err := h.service.Start(c.Context(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "wizard session started", session)
}

func (h *WizardHandler) current(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendErrorWithAction(c, fiber.StatusUnauthorized, "sign in to start a submission", utils.ActionSignIn)
	}

	session, err := h.service.Current(c.Context(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "wizard session retrieved", session)
}

func (h *WizardHandler) advance(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendErrorWithAction(c, fiber.StatusUnauthorized, "sign in to start a submission", utils.ActionSignIn)
	}

	var payload dto.WizardAdvanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Advance(c.Context(), userID, payload.Patch)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "wizard step advanced", session)
}

func (h *WizardHandler) back(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendErrorWithAction(c, fiber.StatusUnauthorized, "sign in to start a submission", utils.ActionSignIn)
	}

	session, err := h.service.Back(c.Context(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "wizard step reverted", session)
}

func (h *WizardHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, wizard.ErrValidationIncomplete):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, wizard.ErrInvalidTransition):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAuthRequired):
		return utils.SendErrorWithAction(c, fiber.StatusUnauthorized, "sign in to start a submission", utils.ActionSignIn)
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
