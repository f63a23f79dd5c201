package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	// BackendURL is the wallet API base address. Empty means no backend
	// is configured and the client serves the built-in demo dataset.
	BackendURL string
	// PaystackPublicKey enables the card checkout widget when set.
	PaystackPublicKey string
	// VerifyPath is an optional backend endpoint used to confirm a card
	// checkout reference after the widget completes.
	VerifyPath string
	// StateDir is where sessions are persisted across restarts.
	StateDir string
}

func LoadConfig() (*Config, error) {
	// A missing .env is fine in deployed environments, real env vars win.
	_ = godotenv.Load()

	stateDir := os.Getenv("STATE_DIR")
	if stateDir == "" {
		stateDir = ".fusion"
	}

	return &Config{
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
		BackendURL:        os.Getenv("BACKEND_URL"),
		PaystackPublicKey: os.Getenv("PAYSTACK_PUBLIC_KEY"),
		VerifyPath:        os.Getenv("PAYMENT_VERIFY_PATH"),
		StateDir:          stateDir,
	}, nil
}
