package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/abrezinsky/scrumdeck/internal/app"
	"github.com/abrezinsky/scrumdeck/internal/config"
	"github.com/abrezinsky/scrumdeck/internal/logger"
)

func main() {
	// Optional .env for local development; a missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags override the environment.
	addr := flag.String("addr", cfg.HTTPAddr, "HTTP listen address")
	dbPath := flag.String("db", cfg.DBPath, "sqlite session store path (empty for in-memory)")
	baseURL := flag.String("base-url", cfg.BaseURL, "public base URL for share links (default: detected LAN IP)")
	logLevel := flag.String("log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	logHTTP := flag.Bool("log-http", cfg.LogHTTP, "log HTTP requests")
	flag.Parse()

	cfg.HTTPAddr = *addr
	cfg.DBPath = *dbPath
	cfg.BaseURL = *baseURL
	cfg.LogLevel = *logLevel
	cfg.LogHTTP = *logHTTP

	log := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))
	if cfg.LogHTTP {
		log.EnableHTTPLogging()
	}

	a, err := app.New(log, cfg)
	if err != nil {
		log.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
