package utils

import "github.com/gofiber/fiber/v2"

// APIResponse describes the common structure for API responses. Action, when
// present, names the next step the client should take after a failure, e.g.
// "sign_in" or "purchase_credits".
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
	Action  string      `json:"action,omitempty"`
}

// Client actions attached to failure responses.
const (
	ActionSignIn          = "sign_in"
	ActionPurchaseCredits = "purchase_credits"
	ActionRetry           = "retry"
)

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}

	return c.Status(fiber.StatusOK).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	return SendErrorWithAction(c, status, message, "")
}

// SendErrorWithAction sends an error response carrying an actionable next
// step for the client.
func SendErrorWithAction(c *fiber.Ctx, status int, message, action string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
		Action:  action,
	})
}
