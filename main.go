package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"llmchat/internal/config"
	"llmchat/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp(cfg, os.Stdin, os.Stdout)
	if err := app.startup(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}
	defer app.shutdown()

	if err := app.Run(ctx); err != nil {
		log.Error().Err(err).Msg("chat loop stopped")
	}
}
