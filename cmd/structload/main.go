package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/viant/structload/internal/cli"
	"github.com/viant/structload/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(cfg.Level()).With().Timestamp().Logger()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err = cli.NewCommand(cfg, logger, os.Stdout).ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("structload failed")
		cancel()
		os.Exit(1)
	}
}
