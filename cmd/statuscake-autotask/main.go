package main

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/config"
	integrationapi "github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/api"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/middleware"
)

func main() {
	// load config first
	log.Info().Msg("Starting statuscake-autotask integration server")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// configure log level from config
	switch strings.ToLower(cfg.Logging.Level) {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.Authentication)

	api, err := integrationapi.NewApiWithConfig(router, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create integration api")
	}
	defer api.Close()

	log.Info().Msgf("Starting server on %s", cfg.Server.BindAddr)
	if err := router.Run(cfg.Server.BindAddr); err != nil {
		log.Fatal().Err(err).Msg("start statuscake-autotask server failed.")
	}
	log.Info().Msg("statuscake-autotask server exit...")
}
