package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/ebusmomentum88/fusion/internal/api"
	"github.com/ebusmomentum88/fusion/internal/bot"
	"github.com/ebusmomentum88/fusion/internal/config"
	"github.com/ebusmomentum88/fusion/internal/paystack"
	"github.com/ebusmomentum88/fusion/internal/service"
	"github.com/ebusmomentum88/fusion/internal/session"
)

// Request is the incoming API gateway event.
type Request struct {
	Body string `json:"body"`
}

// Response is the API gateway reply.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// Handler processes one webhook update per invocation.
func Handler(ctx context.Context, request Request) (*Response, error) {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return errorResponse(err)
	}

	client := api.NewClient(cfg.BackendURL, logger)
	sessions := session.NewStore(cfg.StateDir, logger)
	widget := paystack.New(cfg.PaystackPublicKey, logger)
	account := service.NewAccount(client, sessions, widget, cfg.VerifyPath, logger)

	b, err := bot.NewBot(cfg.TelegramToken, account, logger)
	if err != nil {
		return errorResponse(err)
	}
	sessions.OnChange(b.SessionChanged)

	if err := b.HandleWebhook([]byte(request.Body)); err != nil {
		return errorResponse(err)
	}

	return &Response{
		StatusCode: 200,
		Body:       "",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func errorResponse(err error) (*Response, error) {
	return &Response{
		StatusCode: 500,
		Body:       err.Error(),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func main() {
	// Entry point for local testing only; deployments invoke Handler.
}
