package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/scoreline/scoreline-api/internal/config"
	"github.com/scoreline/scoreline-api/internal/database"
	"github.com/scoreline/scoreline-api/internal/grader"
	"github.com/scoreline/scoreline-api/internal/repository"
	"github.com/scoreline/scoreline-api/internal/service"
	"github.com/scoreline/scoreline-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "grader").Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL, "scoreline-grader")
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	defer natsConn.Close()

	evaluator, err := ai.NewOpenAIEvaluator(ai.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("failed to create evaluator: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	submissionRepo := repository.NewSubmissionRepository(db)

	// Outcomes applied here reach connected API nodes via the feed relay.
	feedService := service.NewFeedService(submissionRepo, redisClient, cfg.FeedChannelBase, natsConn, logger)
	gradingService := service.NewGradingService(submissionRepo, feedService, validate, logger)

	worker := grader.NewWorker(natsConn, cfg.GradingSubject, evaluator, gradingService, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := worker.Start(ctx); err != nil {
		log.Fatalf("grading worker failed: %v", err)
	}

	log.Println("grader stopped")
}
