package api

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/ebusmomentum88/fusion/internal/model"
)

// The backend contract is only loosely specified and several reply
// shapes exist in the wild. This file is the single seam that absorbs
// that variability: one normalizer per endpoint family, each with a
// documented field-precedence chain, so everything downstream can assume
// one canonical shape.

// ErrNoToken means an auth reply carried no usable credential.
var ErrNoToken = errors.New("auth reply contains no token")

// NormalizeAuth extracts the session credential and profile from a
// login/registration reply. The token may arrive as `token` or
// `access_token`; the profile as `user` or `profile`. A reply with a
// token but no profile yields the placeholder user.
func NormalizeAuth(raw []byte) (string, model.User, error) {
	root := gjson.ParseBytes(raw)

	token := firstString(root, "token", "access_token")
	if token == "" {
		return "", model.User{}, ErrNoToken
	}

	profile := root.Get("user")
	if !profile.IsObject() {
		profile = root.Get("profile")
	}
	if !profile.IsObject() {
		return token, model.PlaceholderUser(), nil
	}

	user := model.User{
		Name:  profile.Get("name").String(),
		Email: profile.Get("email").String(),
		Phone: profile.Get("phone").String(),
	}
	if user.Name == "" {
		user.Name = model.PlaceholderUser().Name
	}
	return token, user, nil
}

// NormalizeBalance accepts `{"balance": n}` or a bare numeric reply.
// Anything non-numeric coerces to zero.
func NormalizeBalance(raw []byte) decimal.Decimal {
	root := gjson.ParseBytes(raw)
	if root.IsObject() {
		return numeric(root.Get("balance"))
	}
	return numeric(root)
}

// NormalizeTransactions accepts `{"transactions": [...]}` or a bare
// array. Per element the precedence chains are:
//
//	title:  title → description → type → "Transaction"
//	meta:   meta → source → note → ""
//	date:   date → created_at → ""
//	amount: amount → value → 0
func NormalizeTransactions(raw []byte) []model.Transaction {
	root := gjson.ParseBytes(raw)
	list := root.Get("transactions")
	if !list.IsArray() {
		if !root.IsArray() {
			return nil
		}
		list = root
	}

	var out []model.Transaction
	list.ForEach(func(_, el gjson.Result) bool {
		title := firstString(el, "title", "description", "type")
		if title == "" {
			title = "Transaction"
		}
		amount := el.Get("amount")
		if !amount.Exists() {
			amount = el.Get("value")
		}
		out = append(out, model.Transaction{
			ID:     el.Get("id").String(),
			Title:  title,
			Meta:   firstString(el, "meta", "source", "note"),
			Amount: numeric(amount),
			Date:   firstString(el, "date", "created_at"),
		})
		return true
	})
	return out
}

// firstString returns the first non-empty string among the named fields.
func firstString(root gjson.Result, fields ...string) string {
	for _, f := range fields {
		if v := root.Get(f).String(); v != "" {
			return v
		}
	}
	return ""
}

// numeric coerces a reply value to a decimal, tolerating numbers carried
// as strings. Non-numeric values become zero.
func numeric(v gjson.Result) decimal.Decimal {
	switch v.Type {
	case gjson.Number:
		if d, err := decimal.NewFromString(v.Raw); err == nil {
			return d
		}
		return decimal.NewFromFloat(v.Num)
	case gjson.String:
		if d, err := decimal.NewFromString(v.Str); err == nil {
			return d
		}
	}
	return decimal.Zero
}
