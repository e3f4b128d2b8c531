package handler

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/scoreline/scoreline-api/internal/middleware"
	"github.com/scoreline/scoreline-api/internal/service"
)

// FeedHandler wires the realtime submission feed websocket.
type FeedHandler struct {
	service service.FeedService
	logger  zerolog.Logger
}

// NewFeedHandler creates a feed handler instance.
func NewFeedHandler(service service.FeedService, logger zerolog.Logger) *FeedHandler {
	return &FeedHandler{
		service: service,
		logger:  logger.With().Str("component", "feed_handler").Logger(),
	}
}

// Register binds the feed routes under the provided router group.
func (h *FeedHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
			c.Locals("request_ctx", ctx)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *FeedHandler) handleConnection(conn *websocket.Conn) {
	ownerID := websocketOwnerID(conn)
	if ownerID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusUnauthorized, "user id missing"))
		_ = conn.Close()
		return
	}

	correlation := fmt.Sprint(conn.Locals("correlation_id"))
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)

	opts := service.FeedConnectionOptions{
		OwnerID:       ownerID,
		CorrelationID: correlation,
		Context:       baseCtx,
	}

	h.logger.Info().Uint("owner_id", ownerID).Msg("feed websocket connected")
	h.service.ServeConnection(conn, opts)
	h.logger.Info().Uint("owner_id", ownerID).Msg("feed websocket disconnected")
}

func websocketOwnerID(conn *websocket.Conn) uint {
	if value := conn.Locals("user_id"); value != nil {
		switch v := value.(type) {
		case float64:
			if v > 0 {
				return uint(v)
			}
		case uint:
			return v
		case int:
			if v > 0 {
				return uint(v)
			}
		}
	}
	return 0
}
