package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ledgerbot/backend/internal/bot"
	"github.com/ledgerbot/backend/internal/config"
	"github.com/ledgerbot/backend/internal/extract"
	"github.com/ledgerbot/backend/internal/ledger"
	"github.com/ledgerbot/backend/internal/models"
	"github.com/ledgerbot/backend/internal/pending"
	"github.com/ledgerbot/backend/internal/router"
)

func main() {
	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	// A .env file is optional, values already in the environment win
	_ = godotenv.Load()

	cfg := config.Load(os.Getenv)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Create the data directory
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), os.ModePerm); err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Connect to the database and migrate the schema
	if err := models.Connect(cfg.DBPath); err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Receipt extraction needs an API key. Without one the bot still
	// handles text commands.
	var extractor extract.Extractor
	if cfg.GeminiAPIKey != "" {
		var err error
		extractor, err = extract.NewGeminiExtractor(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Msg(err.Error())
		}
	} else {
		log.Warn().Msg("GEMINI_API_KEY is not set, image extraction is disabled")
		extractor = extract.Disabled{}
	}

	registry := pending.NewRegistry(cfg.PendingTimeout)
	ledgerService := ledger.New(models.DB, cfg.DefaultCurrency)

	// The webhook transport has no outbound channel, so expiry
	// notifications are dropped
	handler := bot.New(ledgerService, registry, extractor, nil, cfg.DefaultCurrency)

	r, err := router.Router(handler, cfg.SenderAllowlist)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Msg(err.Error())
	}
}
