// Package paystack wraps the vendor's card checkout. The widget is a
// black box: the client opens a hosted checkout session and waits for
// its completion callback, surfacing only the payment reference. What
// happens inside the checkout page is the vendor's business.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the vendor's hosted checkout API.
const DefaultBaseURL = "https://checkout.paystack.com/api"

// ErrCancelled means the checkout was abandoned before the vendor
// reported completion (modal closed, context cancelled).
var ErrCancelled = errors.New("checkout cancelled")

// ErrDeclined means the vendor reported the charge as failed.
var ErrDeclined = errors.New("card charge declined")

// Widget is the lazily initialized checkout client. It is constructed
// up front from the public key but touches the vendor only on the first
// Checkout call, mirroring the on-demand script load of the web widget.
type Widget struct {
	publicKey string
	baseURL   string
	log       zerolog.Logger

	http *http.Client // nil until first use
}

func New(publicKey string, logger zerolog.Logger) *Widget {
	return &Widget{
		publicKey: publicKey,
		baseURL:   DefaultBaseURL,
		log:       logger,
	}
}

// Available reports whether a public key is configured at all.
func (w *Widget) Available() bool {
	return w != nil && w.publicKey != ""
}

// Checkout opens a hosted checkout for the amount and blocks until the
// vendor reports completion. The open callback receives the checkout URL
// to present to the user (the widget's "openIframe" moment). Cancelling
// ctx abandons the session and returns ErrCancelled; on success the
// vendor's payment reference is returned for backend verification.
func (w *Widget) Checkout(ctx context.Context, amount decimal.Decimal, email string, open func(url string)) (string, error) {
	if !w.Available() {
		return "", errors.New("paystack public key not configured")
	}
	if w.http == nil {
		w.http = &http.Client{Timeout: 30 * time.Second}
	}

	reference := "fus-" + uuid.New().String()
	checkoutURL, err := w.createSession(ctx, reference, amount, email)
	if err != nil {
		return "", err
	}

	if open != nil {
		open(checkoutURL)
	}
	w.log.Info().Str("reference", reference).Msg("checkout opened")

	return reference, w.awaitCompletion(ctx, reference)
}

func (w *Widget) createSession(ctx context.Context, reference string, amount decimal.Decimal, email string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"key":       w.publicKey,
		"reference": reference,
		"email":     email,
		// The vendor expects the amount in minor units (kobo).
		"amount": amount.Shift(2).IntPart(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/session", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read checkout reply: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("checkout rejected with status %d", resp.StatusCode)
	}

	url := gjson.GetBytes(data, "authorization_url").String()
	if url == "" {
		return "", errors.New("checkout reply missing authorization URL")
	}
	return url, nil
}

// awaitCompletion is the completion callback rendered as a blocking
// wait: the vendor's session status is polled until it settles.
func (w *Widget) awaitCompletion(ctx context.Context, reference string) error {
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ErrCancelled
		case <-ticker.C:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/session/"+reference, nil)
		if err != nil {
			return fmt.Errorf("failed to create status request: %w", err)
		}
		resp, err := w.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ErrCancelled
			}
			// Transient: keep polling, the session may still settle.
			w.log.Debug().Err(err).Msg("checkout status poll failed")
			continue
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()

		switch gjson.GetBytes(data, "status").String() {
		case "success", "paid":
			return nil
		case "failed", "abandoned":
			return ErrDeclined
		}
	}
}
