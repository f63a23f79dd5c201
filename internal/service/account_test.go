package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebusmomentum88/fusion/internal/api"
	"github.com/ebusmomentum88/fusion/internal/model"
	"github.com/ebusmomentum88/fusion/internal/session"
)

const chatID int64 = 42

// fakeGateway records calls and answers from a handler func.
type fakeGateway struct {
	calls  []string
	handle func(method, path string, body any) ([]byte, error)
}

func (f *fakeGateway) Call(_ context.Context, method, path, _ string, body any) ([]byte, error) {
	f.calls = append(f.calls, method+" "+path)
	if f.handle == nil {
		return []byte(`{}`), nil
	}
	return f.handle(method, path, body)
}

type stubWidget struct {
	reference string
	err       error
	opened    bool
}

func (w *stubWidget) Available() bool { return true }

func (w *stubWidget) Checkout(_ context.Context, _ decimal.Decimal, _ string, open func(string)) (string, error) {
	if open != nil {
		open("https://checkout.test/session")
	}
	w.opened = true
	return w.reference, w.err
}

func newTestAccount(t *testing.T, gw Gateway, widget CardWidget, verifyPath string) (*Account, *session.Store) {
	t.Helper()
	store := session.NewStore(t.TempDir(), zerolog.Nop())
	return NewAccount(gw, store, widget, verifyPath, zerolog.Nop()), store
}

func TestLoginInstallsSession(t *testing.T) {
	gw := &fakeGateway{handle: func(method, path string, body any) ([]byte, error) {
		require.Equal(t, "POST /auth/login", method+" "+path)
		return []byte(`{"access_token":"t-1"}`), nil
	}}
	account, store := newTestAccount(t, gw, nil, "")

	require.NoError(t, account.Login(context.Background(), chatID, "ada@x.y", "pw"))

	sess := store.Get(chatID)
	assert.True(t, sess.Authenticated())
	assert.Equal(t, "t-1", sess.Token)
	assert.Equal(t, model.PlaceholderUser(), sess.User)
}

func TestLoginRejectedStaysLoggedOut(t *testing.T) {
	gw := &fakeGateway{handle: func(string, string, any) ([]byte, error) {
		return nil, &api.APIError{Status: http.StatusUnauthorized, Body: []byte(`{"message":"invalid credentials"}`)}
	}}
	account, store := newTestAccount(t, gw, nil, "")

	err := account.Login(context.Background(), chatID, "ada@x.y", "wrong")
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", ErrorMessage(err))
	assert.False(t, store.Get(chatID).Authenticated())
}

func TestLoginValidationSkipsNetwork(t *testing.T) {
	gw := &fakeGateway{}
	account, _ := newTestAccount(t, gw, nil, "")

	err := account.Login(context.Background(), chatID, "  ", "pw")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, gw.calls)
}

func TestRefreshBalanceIdempotent(t *testing.T) {
	gw := &fakeGateway{handle: func(method, path string, body any) ([]byte, error) {
		return []byte(`{"balance":5000}`), nil
	}}
	account, store := newTestAccount(t, gw, nil, "")

	account.RefreshBalance(context.Background(), chatID)
	first := store.Get(chatID).Balance
	account.RefreshBalance(context.Background(), chatID)
	second := store.Get(chatID).Balance

	assert.True(t, first.Equal(decimal.NewFromInt(5000)))
	assert.True(t, first.Equal(second))
}

func TestRefreshFailuresFallBackIndependently(t *testing.T) {
	gw := &fakeGateway{handle: func(method, path string, body any) ([]byte, error) {
		if path == "/me/balance" {
			return nil, errors.New("connection reset")
		}
		return []byte(`{"transactions":[{"id":"x","title":"Live one","amount":-10,"date":"2026-08-28"}]}`), nil
	}}
	account, store := newTestAccount(t, gw, nil, "")

	account.RefreshAll(context.Background(), chatID)

	sess := store.Get(chatID)
	assert.True(t, sess.Balance.Equal(api.FixtureBalance), "failed balance falls back to fixture")
	require.Len(t, sess.Transactions, 1, "transactions refresh unaffected by balance failure")
	assert.Equal(t, "Live one", sess.Transactions[0].Title)
}

func TestTopUpBelowMinimumIsRejectedClientSide(t *testing.T) {
	gw := &fakeGateway{}
	account, _ := newTestAccount(t, gw, nil, "")

	_, err := account.TopUp(context.Background(), chatID, decimal.NewFromInt(49), model.MethodCard, nil)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Reason, "Minimum top-up")
	assert.Empty(t, gw.calls, "no network call for a client-side rejection")
}

func TestTopUpTransferHitsGenericEndpointAndRefreshes(t *testing.T) {
	gw := &fakeGateway{handle: func(method, path string, body any) ([]byte, error) {
		if path == "/pay/topup" {
			req := body.(map[string]any)
			assert.Equal(t, "transfer", req["method"])
			return []byte(`{"message":"Top-up received"}`), nil
		}
		return []byte(`{}`), nil
	}}
	account, _ := newTestAccount(t, gw, nil, "")

	msg, err := account.TopUp(context.Background(), chatID, decimal.NewFromInt(500), model.MethodTransfer, nil)
	require.NoError(t, err)
	assert.Equal(t, "Top-up received", msg)
	assert.Equal(t, []string{"POST /pay/topup", "GET /me/balance", "GET /me/transactions"}, gw.calls)
}

func TestCardTopUpVerifiesThenRefreshes(t *testing.T) {
	widget := &stubWidget{reference: "ref-1"}
	gw := &fakeGateway{handle: func(method, path string, body any) ([]byte, error) {
		if strings.HasPrefix(path, "/pay/verify") {
			assert.Equal(t, "/pay/verify?reference=ref-1", path)
		}
		return []byte(`{"balance":1000}`), nil
	}}
	account, _ := newTestAccount(t, gw, widget, "/pay/verify")

	var notices []string
	account.SetNotifier(func(_ int64, text string) { notices = append(notices, text) })

	msg, err := account.TopUp(context.Background(), chatID, decimal.NewFromInt(500), model.MethodCard, nil)
	require.NoError(t, err)
	assert.True(t, widget.opened)
	assert.Equal(t, "Payment verified", msg)
	require.NotEmpty(t, notices)
	assert.Contains(t, notices[0], "Verifying")
	assert.Equal(t, []string{"GET /pay/verify?reference=ref-1", "GET /me/balance", "GET /me/transactions"}, gw.calls)
}

func TestCardTopUpRefreshesEvenWhenVerificationFails(t *testing.T) {
	widget := &stubWidget{reference: "ref-2"}
	gw := &fakeGateway{handle: func(method, path string, body any) ([]byte, error) {
		if strings.HasPrefix(path, "/pay/verify") {
			return nil, &api.APIError{Status: http.StatusBadGateway, Body: []byte(`{"error":"upstream down"}`)}
		}
		return []byte(`{}`), nil
	}}
	account, _ := newTestAccount(t, gw, widget, "/pay/verify")

	msg, err := account.TopUp(context.Background(), chatID, decimal.NewFromInt(500), model.MethodCard, nil)
	require.NoError(t, err)
	assert.Equal(t, "Payment received, confirmation pending", msg)
	assert.Contains(t, gw.calls, "GET /me/balance")
	assert.Contains(t, gw.calls, "GET /me/transactions")
}

func TestPayServiceValidation(t *testing.T) {
	gw := &fakeGateway{}
	account, _ := newTestAccount(t, gw, nil, "")
	ctx := context.Background()

	_, err := account.PayService(ctx, chatID, model.ServiceAirtime, "  ", decimal.NewFromInt(100))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = account.PayService(ctx, chatID, model.ServiceAirtime, "0801", decimal.Zero)
	require.ErrorAs(t, err, &vErr)

	assert.Empty(t, gw.calls)
}

func TestPayServiceOfflineDemoMode(t *testing.T) {
	// No backend configured: the whole flow runs on the fixture dataset.
	client := api.NewClient("", zerolog.Nop())
	client.MockDelay = 0
	store := session.NewStore(t.TempDir(), zerolog.Nop())
	account := NewAccount(client, store, nil, "", zerolog.Nop())

	msg, err := account.PayService(context.Background(), chatID, model.ServiceElectricity, "1234567890", decimal.NewFromInt(2000))
	require.NoError(t, err)
	assert.Equal(t, "Payment successful", msg)

	sess := store.Get(chatID)
	assert.True(t, sess.Balance.Equal(api.FixtureBalance), "balance refresh invoked")
	assert.NotEmpty(t, sess.Transactions, "transaction list refresh invoked")
}

func TestErrorMessagePrecedence(t *testing.T) {
	withMessage := &api.APIError{Status: 400, Body: []byte(`{"message":"insufficient funds","error":"ignored"}`)}
	assert.Equal(t, "insufficient funds", ErrorMessage(withMessage))

	withError := &api.APIError{Status: 400, Body: []byte(`{"error":"limit exceeded"}`)}
	assert.Equal(t, "limit exceeded", ErrorMessage(withError))

	transport := errors.New("request failed: connection refused")
	assert.Equal(t, "request failed: connection refused", ErrorMessage(transport))

	assert.Equal(t, FallbackMessage, ErrorMessage(nil))
}
