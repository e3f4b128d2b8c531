package handler

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/scoreline/scoreline-api/internal/dto"
	"github.com/scoreline/scoreline-api/internal/service"
	"github.com/scoreline/scoreline-api/internal/utils"
)

// gradingCallbackSchema is the wire contract for grader callbacks. Payloads
// are rejected before they reach the service when they do not match.
const gradingCallbackSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["submission_id", "outcome"],
  "properties": {
    "submission_id": {"type": "integer", "minimum": 1},
    "outcome": {"type": "string", "enum": ["completed", "failed"]},
    "feedback": {"type": "string"}
  },
  "additionalProperties": false
}`

// GradingHandler receives grading outcomes from out-of-process workers.
type GradingHandler struct {
	service service.GradingService
	schema  *jsonschema.Schema
	logger  zerolog.Logger
}

// NewGradingHandler builds a grading handler instance.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) (*GradingHandler, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("grading_callback.json", bytes.NewReader([]byte(gradingCallbackSchema))); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile("grading_callback.json")
	if err != nil {
		return nil, err
	}

	return &GradingHandler{
		service: service,
		schema:  schema,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}, nil
}

// Register attaches the routes to the provided router group.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Post("/callback", h.callback)
}

func (h *GradingHandler) callback(c *fiber.Ctx) error {
	raw := c.Body()

	var document interface{}
	if err := json.Unmarshal(raw, &document); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.schema.Validate(document); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GradingCallbackRequest
	if err := json.Unmarshal(raw, &payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Apply(c.Context(), payload, bytes.Clone(raw))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grading outcome applied", submission)
}

func (h *GradingHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
