package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/ebusmomentum88/fusion/internal/model"
	"github.com/ebusmomentum88/fusion/internal/paystack"
	"github.com/ebusmomentum88/fusion/internal/service"
)

// enterDashboard shows the dashboard and kicks off the refresh: balance
// first, then transactions. The refresh re-renders through the session
// observer as each part lands.
func (b *Bot) enterDashboard(chatID int64) {
	b.showDashboard(chatID)
	b.account.RefreshAll(context.Background(), chatID)
}

// showDashboard renders the dashboard from whatever the session holds,
// without touching the backend.
func (b *Bot) showDashboard(chatID int64) {
	b.update(chatID, func(st *chatState) {
		st.view = model.ViewDashboard
		st.await = awaitNothing
	})

	sess := b.account.Session(chatID)
	msg := newKeyboardMessage(chatID, renderDashboard(sess), dashboardKeyboard(sess.BalanceVisible))
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.Warn().Err(err).Int64("chat", chatID).Msg("failed to send dashboard")
		return
	}
	b.update(chatID, func(st *chatState) {
		st.dashboardMsg = sent.MessageID
	})
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	authed := b.account.Session(chatID).Authenticated()

	switch {
	case callback.Data == "tab_login" && !authed:
		b.startLogin(chatID)
	case callback.Data == "tab_register" && !authed:
		b.startRegister(chatID)

	case callback.Data == "toggle_balance" && authed:
		b.account.ToggleBalance(chatID)
	case callback.Data == "refresh" && authed:
		b.account.RefreshAll(context.Background(), chatID)
	case callback.Data == "chart" && authed:
		b.handleChart(chatID)
	case callback.Data == "logout" && authed:
		b.handleLogout(chatID)

	case callback.Data == "open_add_money" && authed:
		b.update(chatID, func(st *chatState) {
			st.view = model.ViewAddMoney
			st.await = awaitNothing
		})
		msg := newKeyboardMessage(chatID, "How would you like to add money?", addMoneyKeyboard())
		if _, err := b.api.Send(msg); err != nil {
			b.log.Warn().Err(err).Int64("chat", chatID).Msg("failed to send add-money menu")
		}
	case callback.Data == "topup_card" && authed:
		b.promptTopUpAmount(chatID, model.MethodCard)
	case callback.Data == "topup_transfer" && authed:
		b.promptTopUpAmount(chatID, model.MethodTransfer)

	case strings.HasPrefix(callback.Data, "service_") && authed:
		kind := model.ServiceKind(strings.TrimPrefix(callback.Data, "service_"))
		if kind.Valid() {
			b.update(chatID, func(st *chatState) {
				st.view = model.ViewServiceModal
				st.pendingService = kind
				st.await = awaitServiceCustomer
			})
			msg := newKeyboardMessage(chatID, kind.Label()+"\n"+kind.CustomerPrompt(), closeKeyboard())
			if _, err := b.api.Send(msg); err != nil {
				b.log.Warn().Err(err).Int64("chat", chatID).Msg("failed to send service menu")
			}
		}

	case callback.Data == "modal_close":
		b.closeModal(chatID)
	}

	// Clears the loading indicator on the pressed button.
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.log.Debug().Err(err).Msg("callback ack failed")
	}
}

func (b *Bot) promptTopUpAmount(chatID int64, method model.TopUpMethod) {
	b.update(chatID, func(st *chatState) {
		st.topUpMethod = method
		st.await = awaitTopUpAmount
	})
	b.send(chatID, "Enter the amount to add (minimum ₦"+service.MinTopUp.String()+"):")
}

// closeModal returns to the bare dashboard, cancelling a card checkout
// that is still waiting on the widget.
func (b *Bot) closeModal(chatID int64) {
	var cancel context.CancelFunc
	inModal := false
	b.update(chatID, func(st *chatState) {
		if st.view != model.ViewAddMoney && st.view != model.ViewServiceModal {
			return
		}
		inModal = true
		cancel = st.cancelCheckout
		st.cancelCheckout = nil
	})
	if !inModal {
		return
	}
	if cancel != nil {
		cancel()
	}
	b.showDashboard(chatID)
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	if b.handleAuthInput(chatID, text) {
		return
	}

	switch b.snapshot(chatID).await {
	case awaitTopUpAmount:
		amount, err := decimal.NewFromString(text)
		if err != nil {
			b.sendErrorMessage(chatID, "Enter a valid amount, e.g. 1000")
			return
		}
		b.runTopUp(chatID, amount)
	case awaitServiceCustomer:
		b.update(chatID, func(st *chatState) {
			st.serviceCustomer = text
			st.await = awaitServiceAmount
		})
		b.send(chatID, "Enter the amount:")
	case awaitServiceAmount:
		amount, err := decimal.NewFromString(text)
		if err != nil {
			b.sendErrorMessage(chatID, "Enter a valid amount, e.g. 2000")
			return
		}
		b.runServicePayment(chatID, amount)
	default:
		// Free-form text outside a flow: show the relevant screen.
		b.handleStart(chatID)
	}
}

// runTopUp starts the top-up on its own goroutine: a card checkout can
// wait minutes for the widget, and the chat must stay responsive so the
// user can close the modal (which cancels the checkout).
func (b *Bot) runTopUp(chatID int64, amount decimal.Decimal) {
	ctx, cancel := context.WithCancel(context.Background())

	var method model.TopUpMethod
	b.update(chatID, func(st *chatState) {
		method = st.topUpMethod
		st.cancelCheckout = cancel
	})

	go func() {
		defer cancel()
		msg, err := b.account.TopUp(ctx, chatID, amount, method, func(url string) {
			b.send(chatID, "Complete your card payment here:\n"+url)
		})

		b.update(chatID, func(st *chatState) {
			st.cancelCheckout = nil
			if err != nil && !errors.Is(err, paystack.ErrCancelled) {
				// Failure keeps the modal open for another attempt.
				st.await = awaitTopUpAmount
			}
		})

		switch {
		case errors.Is(err, paystack.ErrCancelled):
			b.send(chatID, "Checkout cancelled.")
		case err != nil:
			b.sendErrorMessage(chatID, service.ErrorMessage(err))
		default:
			b.send(chatID, "✅ "+msg)
			b.showDashboard(chatID)
		}
	}()
}

func (b *Bot) runServicePayment(chatID int64, amount decimal.Decimal) {
	st := b.snapshot(chatID)

	msg, err := b.account.PayService(context.Background(), chatID, st.pendingService, st.serviceCustomer, amount)
	if err != nil {
		// Stay in the modal; let the user correct the amount.
		b.sendErrorMessage(chatID, service.ErrorMessage(err))
		b.update(chatID, func(st *chatState) {
			st.await = awaitServiceAmount
		})
		return
	}
	b.send(chatID, "✅ "+msg)
	b.showDashboard(chatID)
}

func (b *Bot) handleChart(chatID int64) {
	sess := b.account.Session(chatID)
	if !sess.Authenticated() {
		b.showAuthMenu(chatID)
		return
	}

	png, err := b.charts.GenerateSpendingChart(sess.Transactions)
	if err != nil {
		b.sendErrorMessage(chatID, "Could not draw the spending chart")
		return
	}
	if png == nil {
		b.send(chatID, "No spending to chart yet.")
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "spending.png", Bytes: png})
	if _, err := b.api.Send(photo); err != nil {
		b.log.Warn().Err(err).Int64("chat", chatID).Msg("failed to send chart")
	}
}
