package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/scoreline/scoreline-api/internal/service"
	"github.com/scoreline/scoreline-api/internal/utils"
)

// ResultsHandler serves the tier-gated feedback views.
type ResultsHandler struct {
	service service.ResultsService
	logger  zerolog.Logger
}

// NewResultsHandler builds a results handler instance.
func NewResultsHandler(service service.ResultsService, logger zerolog.Logger) *ResultsHandler {
	return &ResultsHandler{
		service: service,
		logger:  logger.With().Str("component", "results_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ResultsHandler) Register(router fiber.Router) {
	router.Get("/:id/results", h.results)
	router.Get("/:id/download", h.download)
}

func (h *ResultsHandler) results(c *fiber.Ctx) error {
	ownerID := userIDFromContext(c)
	if ownerID == 0 {
		return utils.SendErrorWithAction(c, fiber.StatusUnauthorized, "sign in to view results", utils.ActionSignIn)
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	results, err := h.service.Results(c.Context(), ownerID, id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "results retrieved", results)
}

func (h *ResultsHandler) download(c *fiber.Ctx) error {
	ownerID := userIDFromContext(c)
	if ownerID == 0 {
		return utils.SendErrorWithAction(c, fiber.StatusUnauthorized, "sign in to download results", utils.ActionSignIn)
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	filename, content, err := h.service.Download(c.Context(), ownerID, id)
	if err != nil {
		return h.handleError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(content)
}

func (h *ResultsHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrPremiumRequired):
		return utils.SendErrorWithAction(c, fiber.StatusForbidden, "full report downloads require premium feedback", utils.ActionPurchaseCredits)
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
