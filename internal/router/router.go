package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/scoreline/scoreline-api/internal/config"
	"github.com/scoreline/scoreline-api/internal/handler"
	"github.com/scoreline/scoreline-api/internal/middleware"
	"github.com/scoreline/scoreline-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	HealthHandler     *handler.HealthHandler
	WizardHandler     *handler.WizardHandler
	SubmissionHandler *handler.SubmissionHandler
	ResultsHandler    *handler.ResultsHandler
	FeedHandler       *handler.FeedHandler
	AccountHandler    *handler.AccountHandler
	GradingHandler    *handler.GradingHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	if deps.HealthHandler != nil {
		api.Get("/health", deps.HealthHandler.Check)
	}
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.WizardHandler != nil {
		wizard := api.Group("/wizard", jwtMiddleware)
		deps.WizardHandler.Register(wizard)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware, middleware.RequireUser())
		// One dispatch per button press; a double-click inside the window
		// hits the limiter instead of creating a second submission.
		deps.SubmissionHandler.Register(submissions, middleware.RateLimit("dispatch", 3, 10*time.Second))

		if deps.ResultsHandler != nil {
			deps.ResultsHandler.Register(submissions)
		}
	}

	if deps.FeedHandler != nil {
		feed := api.Group("/feed", jwtMiddleware, middleware.RequireUser())
		deps.FeedHandler.Register(feed)
	}

	if deps.AccountHandler != nil {
		account := api.Group("/account", jwtMiddleware, middleware.RequireUser())
		deps.AccountHandler.Register(account)
	}

	internal := app.Group("/internal", middleware.InternalOnly(cfg.InternalSecret))
	if deps.GradingHandler != nil {
		grading := internal.Group("/grading")
		deps.GradingHandler.Register(grading)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterInternal(internal.Group("/account"))
	}
}
