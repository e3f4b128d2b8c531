package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service and the
// grading worker.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	InternalSecret         string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	WizardSessionTTL       time.Duration
	DispatchTimeout        time.Duration
	FeedChannelBase        string
	GradingSubject         string
	OpenAIAPIKey           string
	OpenAIModel            string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SCORELINE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Scoreline API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "scoreline/submissions")
	v.SetDefault("wizard.session_ttl", "24h")
	v.SetDefault("dispatch.timeout", "30s")
	v.SetDefault("feed.channel_base", "scoreline")
	v.SetDefault("grading.subject", "scoreline.grading.jobs")
	v.SetDefault("openai.model", "gpt-4o")

	sessionTTL, err := time.ParseDuration(v.GetString("wizard.session_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid wizard session ttl: %w", err)
	}

	dispatchTimeout, err := time.ParseDuration(v.GetString("dispatch.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid dispatch timeout: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		InternalSecret:         v.GetString("internal.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		WizardSessionTTL:       sessionTTL,
		DispatchTimeout:        dispatchTimeout,
		FeedChannelBase:        v.GetString("feed.channel_base"),
		GradingSubject:         v.GetString("grading.subject"),
		OpenAIAPIKey:           v.GetString("openai.api_key"),
		OpenAIModel:            v.GetString("openai.model"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
