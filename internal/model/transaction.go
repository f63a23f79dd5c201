package model

import "github.com/shopspring/decimal"

// Transaction is one entry of the account history as reported by the
// backend. Amount is signed: negative means a debit. Date is kept as the
// backend-formatted string, the client never reinterprets it.
type Transaction struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Meta   string          `json:"meta"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

// IsDebit reports whether the transaction took money out of the account.
func (t *Transaction) IsDebit() bool {
	return t.Amount.IsNegative()
}
