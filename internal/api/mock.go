package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ebusmomentum88/fusion/internal/model"
)

// ErrNotConfigured is returned in demo mode for endpoints the fixture
// dataset does not cover.
var ErrNotConfigured = errors.New("backend not configured")

// FixtureUser is the demo-mode account profile.
var FixtureUser = model.User{
	Name:  "Ada Okafor",
	Email: "ada@fusionpay.demo",
	Phone: "+2348012345678",
}

// FixtureBalance is the demo-mode account balance.
var FixtureBalance = decimal.RequireFromString("128450.75")

// FixtureTransactions is the demo-mode history, most recent first. The
// field spellings deliberately vary the way real backend replies do, so
// demo mode exercises the same normalization path as production.
func FixtureTransactions() []byte {
	return []byte(`[
		{"id":"txn-9001","title":"Airtime purchase","meta":"MTN 0801 234 5678","amount":-500,"date":"2026-08-27"},
		{"id":"txn-9002","description":"Card top-up","source":"Visa ****4521","amount":20000,"created_at":"2026-08-25"},
		{"id":"txn-9003","title":"Electricity","meta":"IKEDC prepaid","value":-7200,"date":"2026-08-22"},
		{"id":"txn-9004","type":"transfer_in","note":"From Chinedu A.","amount":15000,"created_at":"2026-08-20"},
		{"id":"txn-9005","title":"Cable TV","meta":"DSTV Compact","amount":-12500,"date":"2026-08-16"}
	]`)
}

// mockCall answers from the fixture dataset after a simulated delay. It
// is the demo-mode face of Call: same endpoint families, same reply
// shapes, no network.
func (c *Client) mockCall(ctx context.Context, method, path string, body any) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.MockDelay):
	}

	endpoint := path
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}

	c.log.Debug().Str("method", method).Str("path", endpoint).Msg("demo mode call")

	switch {
	case endpoint == "/auth/login":
		return json.Marshal(map[string]any{
			"token": "demo-" + uuid.New().String(),
			"user":  FixtureUser,
		})
	case endpoint == "/auth/register":
		user := FixtureUser
		if req, ok := body.(map[string]any); ok {
			if name, ok := req["name"].(string); ok && name != "" {
				user.Name = name
			}
			if email, ok := req["email"].(string); ok {
				user.Email = email
			}
			if phone, ok := req["phone"].(string); ok {
				user.Phone = phone
			}
		}
		// Registration replies historically use the alternate field
		// spellings, which the normalizer accepts as well.
		return json.Marshal(map[string]any{
			"access_token": "demo-" + uuid.New().String(),
			"profile":      user,
		})
	case endpoint == "/me/balance":
		return json.Marshal(map[string]any{"balance": json.RawMessage(FixtureBalance.String())})
	case endpoint == "/me/transactions":
		return json.Marshal(map[string]any{"transactions": json.RawMessage(FixtureTransactions())})
	case endpoint == "/pay/topup":
		return json.Marshal(map[string]any{"status": "success", "message": "Top-up received"})
	case endpoint == "/pay/service":
		return json.Marshal(map[string]any{"status": "success", "message": "Payment successful"})
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, endpoint)
	}
}
