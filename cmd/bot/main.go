package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/ebusmomentum88/fusion/internal/api"
	"github.com/ebusmomentum88/fusion/internal/bot"
	"github.com/ebusmomentum88/fusion/internal/config"
	"github.com/ebusmomentum88/fusion/internal/paystack"
	"github.com/ebusmomentum88/fusion/internal/service"
	"github.com/ebusmomentum88/fusion/internal/session"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.BackendURL == "" {
		logger.Info().Msg("no backend configured, running on the demo dataset")
	}

	client := api.NewClient(cfg.BackendURL, logger)
	sessions := session.NewStore(cfg.StateDir, logger)
	widget := paystack.New(cfg.PaystackPublicKey, logger)
	account := service.NewAccount(client, sessions, widget, cfg.VerifyPath, logger)

	b, err := bot.NewBot(cfg.TelegramToken, account, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start bot")
	}
	sessions.OnChange(b.SessionChanged)

	if err := b.Start(); err != nil {
		logger.Fatal().Err(err).Msg("bot stopped")
	}
}
