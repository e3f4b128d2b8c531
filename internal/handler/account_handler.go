package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/scoreline/scoreline-api/internal/dto"
	"github.com/scoreline/scoreline-api/internal/service"
	"github.com/scoreline/scoreline-api/internal/utils"
)

// AccountHandler serves credit balances and the payment top-up webhook.
type AccountHandler struct {
	service service.AccountService
	logger  zerolog.Logger
}

// NewAccountHandler builds an account handler instance.
func NewAccountHandler(service service.AccountService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		logger:  logger.With().Str("component", "account_handler").Logger(),
	}
}

// Register attaches the user-facing route to the provided router group.
func (h *AccountHandler) Register(router fiber.Router) {
	router.Get("", h.get)
}

// RegisterInternal attaches the webhook route, which carries its own
// authentication via the shared-secret middleware.
func (h *AccountHandler) RegisterInternal(router fiber.Router) {
	router.Post("/credits", h.topUp)
}

func (h *AccountHandler) get(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendErrorWithAction(c, fiber.StatusUnauthorized, "sign in to view your account", utils.ActionSignIn)
	}

	account, err := h.service.Get(c.Context(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "account retrieved", account)
}

func (h *AccountHandler) topUp(c *fiber.Ctx) error {
	var payload dto.CreditTopUpRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	account, err := h.service.TopUp(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "credits added", account)
}

func (h *AccountHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "account not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
