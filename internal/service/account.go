// Package service coordinates the account flows between the backend
// client, the session store and the card checkout widget. The bot layer
// calls in here and renders whatever state comes out.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/ebusmomentum88/fusion/internal/api"
	"github.com/ebusmomentum88/fusion/internal/model"
	"github.com/ebusmomentum88/fusion/internal/paystack"
	"github.com/ebusmomentum88/fusion/internal/session"
)

// MinTopUp is the smallest card or transfer top-up the client accepts.
var MinTopUp = decimal.NewFromInt(100)

// FallbackMessage is shown when no better failure detail is available.
const FallbackMessage = "Something went wrong. Please try again."

// Gateway issues backend requests. Satisfied by api.Client.
type Gateway interface {
	Call(ctx context.Context, method, path, token string, body any) ([]byte, error)
}

// CardWidget is the checkout surface used for card top-ups. Satisfied by
// paystack.Widget.
type CardWidget interface {
	Available() bool
	Checkout(ctx context.Context, amount decimal.Decimal, email string, open func(url string)) (string, error)
}

// ValidationError is a client-side rejection: no request was sent.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Account orchestrates authentication, refreshes and payments for one
// wallet backend.
type Account struct {
	gw         Gateway
	sessions   *session.Store
	widget     CardWidget
	verifyPath string
	notify     func(chatID int64, text string)
	log        zerolog.Logger
}

func NewAccount(gw Gateway, sessions *session.Store, widget CardWidget, verifyPath string, logger zerolog.Logger) *Account {
	return &Account{
		gw:         gw,
		sessions:   sessions,
		widget:     widget,
		verifyPath: verifyPath,
		log:        logger,
	}
}

// SetNotifier installs the mid-flow progress callback ("Verifying…").
func (a *Account) SetNotifier(fn func(chatID int64, text string)) {
	a.notify = fn
}

func (a *Account) Session(chatID int64) model.Session {
	return a.sessions.Get(chatID)
}

// Login authenticates against the backend and installs the session.
func (a *Account) Login(ctx context.Context, chatID int64, identifier, password string) error {
	if strings.TrimSpace(identifier) == "" || password == "" {
		return &ValidationError{Reason: "Email/phone and password are required"}
	}
	raw, err := a.gw.Call(ctx, http.MethodPost, "/auth/login", "", map[string]any{
		"identifier": identifier,
		"password":   password,
	})
	if err != nil {
		return err
	}
	return a.installAuth(chatID, raw)
}

// Register creates an account and installs the session.
func (a *Account) Register(ctx context.Context, chatID int64, name, email, phone, password string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return &ValidationError{Reason: "Name, email and password are required"}
	}
	raw, err := a.gw.Call(ctx, http.MethodPost, "/auth/register", "", map[string]any{
		"name":     name,
		"email":    email,
		"phone":    phone,
		"password": password,
	})
	if err != nil {
		return err
	}
	return a.installAuth(chatID, raw)
}

func (a *Account) installAuth(chatID int64, raw []byte) error {
	token, user, err := api.NormalizeAuth(raw)
	if err != nil {
		return fmt.Errorf("unexpected auth reply: %w", err)
	}
	a.sessions.SetAuth(chatID, token, user)
	a.log.Info().Int64("chat", chatID).Msg("session authenticated")
	return nil
}

// Logout drops the session and its persisted credential.
func (a *Account) Logout(chatID int64) {
	a.sessions.Clear(chatID)
}

// RefreshBalance overwrites the balance from the backend. A failed
// refresh substitutes the fixture balance rather than propagating: stale
// financial views are worse than demo values here.
func (a *Account) RefreshBalance(ctx context.Context, chatID int64) {
	sess := a.sessions.Get(chatID)
	raw, err := a.gw.Call(ctx, http.MethodGet, "/me/balance", sess.Token, nil)
	if err != nil {
		a.log.Warn().Err(err).Int64("chat", chatID).Msg("balance refresh failed, using fixture")
		a.sessions.SetBalance(chatID, api.FixtureBalance)
		return
	}
	a.sessions.SetBalance(chatID, api.NormalizeBalance(raw))
}

// RefreshTransactions overwrites the history from the backend, with the
// same fixture fallback as RefreshBalance. Failures are independent: one
// refresh falling back never aborts the other.
func (a *Account) RefreshTransactions(ctx context.Context, chatID int64) {
	sess := a.sessions.Get(chatID)
	raw, err := a.gw.Call(ctx, http.MethodGet, "/me/transactions", sess.Token, nil)
	if err != nil {
		a.log.Warn().Err(err).Int64("chat", chatID).Msg("transactions refresh failed, using fixture")
		a.sessions.SetTransactions(chatID, api.NormalizeTransactions(api.FixtureTransactions()))
		return
	}
	a.sessions.SetTransactions(chatID, api.NormalizeTransactions(raw))
}

// RefreshAll refreshes balance then transactions, in that order. The two
// are not atomic: a reader may observe one refreshed and the other stale
// in between.
func (a *Account) RefreshAll(ctx context.Context, chatID int64) {
	a.RefreshBalance(ctx, chatID)
	a.RefreshTransactions(ctx, chatID)
}

// TopUp adds funds. Card top-ups go through the checkout widget when one
// is configured; everything else (transfers, or a widget that failed to
// come up) goes to the generic top-up endpoint. On success the financial
// state is refreshed before returning.
func (a *Account) TopUp(ctx context.Context, chatID int64, amount decimal.Decimal, method model.TopUpMethod, open func(url string)) (string, error) {
	if amount.LessThan(MinTopUp) {
		return "", &ValidationError{Reason: "Minimum top-up is ₦" + MinTopUp.String()}
	}

	if method == model.MethodCard && a.widget != nil && a.widget.Available() {
		msg, err := a.cardTopUp(ctx, chatID, amount, open)
		if err == nil || errors.Is(err, paystack.ErrCancelled) || errors.Is(err, paystack.ErrDeclined) {
			return msg, err
		}
		// The widget never came up. Same fallback as a missing key.
		a.log.Warn().Err(err).Msg("card widget unavailable, falling back to direct top-up")
	}

	raw, err := a.gw.Call(ctx, http.MethodPost, "/pay/topup", a.sessions.Get(chatID).Token, map[string]any{
		"amount": amount.InexactFloat64(),
		"method": string(method),
	})
	if err != nil {
		return "", err
	}
	a.RefreshAll(ctx, chatID)
	return successMessage(raw, "Top-up successful"), nil
}

// cardTopUp runs the widget flow. The widget's completion callback is
// the single place where verification and the refresh happen, in order:
// notify "verifying", optionally confirm the reference with the backend,
// then refresh regardless of what verification said.
func (a *Account) cardTopUp(ctx context.Context, chatID int64, amount decimal.Decimal, open func(url string)) (string, error) {
	sess := a.sessions.Get(chatID)

	reference, err := a.widget.Checkout(ctx, amount, sess.User.Email, open)
	if err != nil {
		return "", err
	}

	a.sendNotice(chatID, "Verifying your payment…")
	msg := "Top-up successful"
	if a.verifyPath != "" {
		verifyURL := a.verifyPath + "?reference=" + url.QueryEscape(reference)
		if _, err := a.gw.Call(ctx, http.MethodGet, verifyURL, sess.Token, nil); err != nil {
			a.log.Warn().Err(err).Str("reference", reference).Msg("top-up verification failed")
			msg = "Payment received, confirmation pending"
		} else {
			msg = "Payment verified"
		}
	}

	// Refresh regardless of the verification outcome.
	a.RefreshAll(ctx, chatID)
	return msg, nil
}

// PayService pays a bill (airtime, electricity, ...) from the balance.
func (a *Account) PayService(ctx context.Context, chatID int64, kind model.ServiceKind, customer string, amount decimal.Decimal) (string, error) {
	if strings.TrimSpace(customer) == "" {
		return "", &ValidationError{Reason: "Customer ID is required"}
	}
	if !amount.IsPositive() {
		return "", &ValidationError{Reason: "Enter a valid amount"}
	}

	raw, err := a.gw.Call(ctx, http.MethodPost, "/pay/service", a.sessions.Get(chatID).Token, map[string]any{
		"service":  string(kind),
		"customer": strings.TrimSpace(customer),
		"amount":   amount.InexactFloat64(),
	})
	if err != nil {
		return "", err
	}
	a.RefreshAll(ctx, chatID)
	return successMessage(raw, kind.Label()+" payment successful"), nil
}

// ToggleBalance flips the masked/plain balance display.
func (a *Account) ToggleBalance(chatID int64) {
	a.sessions.ToggleBalanceVisibility(chatID)
}

func (a *Account) sendNotice(chatID int64, text string) {
	if a.notify != nil {
		a.notify(chatID, text)
	}
}

// ErrorMessage picks the first human-readable failure detail: the
// backend's message field, then its error field, then the transport
// error string, then a fixed fallback.
func ErrorMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if m := gjson.GetBytes(apiErr.Body, "message").String(); m != "" {
			return m
		}
		if m := gjson.GetBytes(apiErr.Body, "error").String(); m != "" {
			return m
		}
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return FallbackMessage
}

func successMessage(raw []byte, fallback string) string {
	if m := gjson.GetBytes(raw, "message").String(); m != "" {
		return m
	}
	return fallback
}
