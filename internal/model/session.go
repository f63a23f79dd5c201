package model

import "github.com/shopspring/decimal"

// User is the profile attached to an authenticated session.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// PlaceholderUser substitutes for a profile the backend did not return
// (or one that failed to parse when restoring from disk).
func PlaceholderUser() User {
	return User{Name: "Fusion User", Email: "", Phone: ""}
}

// Session is the per-chat client state. Token is the sole owner of the
// "authenticated" signal: an empty token means logged out, everything
// else follows from that. Balance and Transactions are overwritten
// wholesale on every refresh, never merged.
type Session struct {
	Token          string          `json:"token"`
	User           User            `json:"user"`
	Balance        decimal.Decimal `json:"balance"`
	Transactions   []Transaction   `json:"transactions"`
	BalanceVisible bool            `json:"balance_visible"`
}

// Authenticated reports whether the session holds a token. The value
// receiver keeps it callable on session snapshots.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
