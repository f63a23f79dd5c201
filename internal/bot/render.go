package bot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ebusmomentum88/fusion/internal/model"
)

// maskedBalance is shown while balance visibility is off.
const maskedBalance = "₦ ••••••"

// maxRows caps the history section of the dashboard message.
const maxRows = 8

// renderDashboard projects the session into the dashboard text. It is a
// pure function of the session: no backend calls, no mutation.
func renderDashboard(sess model.Session) string {
	var sb strings.Builder

	sb.WriteString("👛 Fusion Wallet\n")
	if sess.User.Name != "" {
		sb.WriteString("Hi " + sess.User.Name + "\n")
	}
	sb.WriteString("\nBalance: " + renderBalance(sess) + "\n")

	sb.WriteString("\nRecent transactions:\n")
	if len(sess.Transactions) == 0 {
		sb.WriteString("No transactions yet.\n")
		return sb.String()
	}

	rows := sess.Transactions
	if len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	for _, t := range rows {
		sb.WriteString(renderTransaction(t))
	}
	return sb.String()
}

func renderBalance(sess model.Session) string {
	if !sess.BalanceVisible {
		return maskedBalance
	}
	return "₦" + formatAmount(sess.Balance)
}

func renderTransaction(t model.Transaction) string {
	arrow := "🔺"
	if t.IsDebit() {
		arrow = "🔻"
	}
	line := fmt.Sprintf("%s %s", arrow, t.Title)
	if t.Meta != "" {
		line += " — " + t.Meta
	}
	line += fmt.Sprintf("\n      %s", signedAmount(t.Amount))
	if t.Date != "" {
		line += " · " + t.Date
	}
	return line + "\n"
}

func signedAmount(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-₦" + formatAmount(d.Abs())
	}
	return "+₦" + formatAmount(d)
}

// formatAmount renders a decimal with two places and thousands
// separators: 128450.75 -> "128,450.75".
func formatAmount(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	whole := parts[0]

	var sb strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}

	out := sb.String() + "." + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}
