package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ebusmomentum88/fusion/internal/model"
)

// newKeyboardMessage pairs a text with an inline keyboard.
func newKeyboardMessage(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	return msg
}

func authKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔑 Log in", "tab_login"),
			tgbotapi.NewInlineKeyboardButtonData("✨ Register", "tab_register"),
		),
	)
}

func dashboardKeyboard(balanceVisible bool) tgbotapi.InlineKeyboardMarkup {
	eye := "🙈 Hide balance"
	if !balanceVisible {
		eye = "👁 Show balance"
	}

	serviceRow := make([]tgbotapi.InlineKeyboardButton, 0, len(model.Services))
	for _, kind := range model.Services {
		serviceRow = append(serviceRow, tgbotapi.NewInlineKeyboardButtonData(
			kind.Label(), "service_"+string(kind)))
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add money", "open_add_money"),
			tgbotapi.NewInlineKeyboardButtonData(eye, "toggle_balance"),
		),
		serviceRow,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", "refresh"),
			tgbotapi.NewInlineKeyboardButtonData("📊 Chart", "chart"),
			tgbotapi.NewInlineKeyboardButtonData("🚪 Log out", "logout"),
		),
	)
}

func addMoneyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Card", "topup_card"),
			tgbotapi.NewInlineKeyboardButtonData("🏦 Bank transfer", "topup_transfer"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖ Close", "modal_close"),
		),
	)
}

func closeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖ Close", "modal_close"),
		),
	)
}
