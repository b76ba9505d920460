package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/agenthands/forcematch/internal/cli"
	"github.com/agenthands/forcematch/internal/config"
	"github.com/agenthands/forcematch/internal/logging"
)

func main() {
	logger := logging.New(os.Stderr, "info")
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.LoadWithEnv(cfgPath)
	if err != nil {
		logger.Fatal("failed to load configuration", "err", err)
	}
	logger = logging.New(os.Stderr, cfg.Log.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Serve(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}
