package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func testClient(baseURL string) *Client {
	c := NewClient(baseURL, zerolog.Nop())
	c.MockDelay = 0
	return c
}

func TestCallAttachesBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	raw, err := testClient(srv.URL).Call(context.Background(), http.MethodGet, "/me/balance", "tok-1", nil)
	require.NoError(t, err)
	assert.True(t, gjson.GetBytes(raw, "ok").Bool())
}

func TestCallOmitsAuthorizationWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Call(context.Background(), http.MethodPost, "/auth/login", "", map[string]any{"identifier": "x"})
	require.NoError(t, err)
}

func TestCallNon2xxCarriesDecodedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid credentials"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Call(context.Background(), http.MethodPost, "/auth/login", "", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid credentials", gjson.GetBytes(apiErr.Body, "message").String())
}

func TestCallNonJSONBodyPassesThroughVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("  upstream said no  "))
	}))
	defer srv.Close()

	raw, err := testClient(srv.URL).Call(context.Background(), http.MethodGet, "/me/balance", "t", nil)
	require.NoError(t, err)
	assert.Equal(t, "upstream said no", string(raw))
}

func TestCallTransportFailureIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := testClient(srv.URL).Call(context.Background(), http.MethodGet, "/me/balance", "t", nil)
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestMockModeServesRecognizedEndpoints(t *testing.T) {
	c := testClient("")
	ctx := context.Background()

	raw, err := c.Call(ctx, http.MethodPost, "/auth/login", "", map[string]any{"identifier": "a", "password": "b"})
	require.NoError(t, err)
	token, user, err := NormalizeAuth(raw)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, FixtureUser.Name, user.Name)

	raw, err = c.Call(ctx, http.MethodGet, "/me/balance", token, nil)
	require.NoError(t, err)
	assert.True(t, NormalizeBalance(raw).Equal(FixtureBalance))

	raw, err = c.Call(ctx, http.MethodGet, "/me/transactions", token, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, NormalizeTransactions(raw))

	raw, err = c.Call(ctx, http.MethodPost, "/pay/service", token, map[string]any{"service": "electricity"})
	require.NoError(t, err)
	assert.Equal(t, "Payment successful", gjson.GetBytes(raw, "message").String())
}

func TestMockModeRegisterUsesAlternateShape(t *testing.T) {
	raw, err := testClient("").Call(context.Background(), http.MethodPost, "/auth/register", "", map[string]any{
		"name": "Chinedu A.", "email": "c@x.y", "phone": "081", "password": "pw",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, gjson.GetBytes(raw, "access_token").String())
	assert.Empty(t, gjson.GetBytes(raw, "token").String())

	token, user, err := NormalizeAuth(raw)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Chinedu A.", user.Name)
}

func TestMockModeUnknownPath(t *testing.T) {
	_, err := testClient("").Call(context.Background(), http.MethodGet, "/admin/stats", "", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
