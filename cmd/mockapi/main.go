package main

import (
	"fmt"
	"os"

	"github.com/minimalprod/erpctl/internal/config"
	"github.com/minimalprod/erpctl/internal/logger"
	"github.com/minimalprod/erpctl/internal/server"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	srv, err := server.New(cfg, log, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	log.Info().Str("version", version).Int("port", cfg.MockAPI.Port).Msg("Starting ERP mock API...")

	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
