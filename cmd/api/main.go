package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/scoreline/scoreline-api/internal/config"
	"github.com/scoreline/scoreline-api/internal/database"
	"github.com/scoreline/scoreline-api/internal/handler"
	"github.com/scoreline/scoreline-api/internal/middleware"
	"github.com/scoreline/scoreline-api/internal/repository"
	"github.com/scoreline/scoreline-api/internal/router"
	"github.com/scoreline/scoreline-api/internal/service"
	cloud "github.com/scoreline/scoreline-api/pkg/cloudinary"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	defer natsConn.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	submissionRepo := repository.NewSubmissionRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	sessionRepo := repository.NewWizardSessionRepository(redisClient, "", cfg.WizardSessionTTL)

	feedService := service.NewFeedService(submissionRepo, redisClient, cfg.FeedChannelBase, natsConn, logger)
	gradingQueue := service.NewNATSGradingQueue(natsConn, cfg.GradingSubject, logger)
	wizardService := service.NewWizardService(sessionRepo, logger)
	dispatchService := service.NewDispatchService(submissionRepo, accountRepo, sessionRepo, uploader, feedService, gradingQueue, cfg.DispatchTimeout, logger)
	resultsService := service.NewResultsService(submissionRepo, logger)
	gradingService := service.NewGradingService(submissionRepo, feedService, validate, logger)
	accountService := service.NewAccountService(accountRepo, validate, logger)

	gradingHandler, err := handler.NewGradingHandler(gradingService, logger)
	if err != nil {
		log.Fatalf("failed to build grading handler: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		HealthHandler:     handler.NewHealthHandler(cfg.AppName, version),
		WizardHandler:     handler.NewWizardHandler(wizardService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(dispatchService, resultsService, validate, logger),
		ResultsHandler:    handler.NewResultsHandler(resultsService, logger),
		FeedHandler:       handler.NewFeedHandler(feedService, logger),
		AccountHandler:    handler.NewAccountHandler(accountService, logger),
		GradingHandler:    gradingHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	feedCtx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()
	feedService.Start(feedCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
