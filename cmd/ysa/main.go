package main

import (
	"os"

	"github.com/solyield/ysa/internal/cache"
	"github.com/solyield/ysa/internal/config"
	"github.com/solyield/ysa/internal/datafetcher"
	"github.com/solyield/ysa/internal/logger"
	"github.com/solyield/ysa/internal/pipeline"
	"github.com/solyield/ysa/internal/state"
	"github.com/solyield/ysa/internal/web"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DEFAULT_PIPELINE_CONFIG_NAME    = "default_pipeline"
	DEFAULT_PIPELINE_CONFIG_VERSION = 1
)

// main is the entry point for the yield scout API.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("Yield Scout API starting...")

	// --- 2. Optional Collection History Store ---
	pipelineParams := config.DefaultPipelineParameters
	if config.DBHost != "" {
		dbCfg := state.DBConfig{
			Host: config.DBHost, Port: config.DBPort,
			User: config.DBUser, Password: config.DBPassword,
			DBName: config.DBName, SSLMode: config.DBSSLMode,
		}
		if err := state.InitDB(dbCfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer state.CloseDB()
		if err := state.EnsureSchema(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure database schema")
		}

		// Load Pipeline Parameters
		activeParams, err := state.LoadActivePipelineParameters(DEFAULT_PIPELINE_CONFIG_NAME)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load active pipeline parameters, using defaults and saving.")
			if _, err := state.SavePipelineParameters(pipelineParams, DEFAULT_PIPELINE_CONFIG_NAME, DEFAULT_PIPELINE_CONFIG_VERSION, true); err != nil {
				log.Fatal().Err(err).Msg("Failed to save initial default pipeline parameters.")
			}
		} else {
			pipelineParams = *activeParams
		}
		log.Info().Msg("Pipeline parameters loaded successfully.")
	} else {
		log.Info().Msg("DB_HOST not set, collection history store disabled.")
	}

	// --- 3. Collection Pipeline and Cache ---
	fetchConfig := datafetcher.Config{
		URL:     config.PoolsAPIURL,
		Chain:   config.SourceChain,
		Timeout: config.FetchTimeout,
		Retries: config.FetchRetries,
	}
	collector := pipeline.New(fetchConfig, pipelineParams)

	dataCache := cache.New(collector.Collect, config.CacheTTL)

	// --- 4. Web Server ---
	webServer := web.NewWebServer(config.WebPort, dataCache, pipelineParams)
	log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting yield scout API server")
	if err := webServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("Web server failed")
	}
}
