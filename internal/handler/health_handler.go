package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/scoreline/scoreline-api/internal/utils"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type HealthHandler struct {
	serviceName string
	version     string
}

func NewHealthHandler(serviceName, version string) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "service healthy", HealthResponse{
		Status:  "ok",
		Service: h.serviceName,
		Version: h.version,
	})
}
