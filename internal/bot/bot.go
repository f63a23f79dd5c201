// Package bot is the Telegram face of the wallet: a small state machine
// per chat that switches between the logged-out forms, the dashboard and
// the two payment "modals", and renders whatever the session holds.
package bot

import (
	"context"
	"encoding/json"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/ebusmomentum88/fusion/internal/charts"
	"github.com/ebusmomentum88/fusion/internal/model"
	"github.com/ebusmomentum88/fusion/internal/service"
)

// Awaited text inputs. Which one is set decides how the next free-form
// message from the chat is interpreted.
const (
	awaitNothing         = ""
	awaitLoginIdentifier = "login_identifier"
	awaitLoginPassword   = "login_password"
	awaitRegName         = "register_name"
	awaitRegEmail        = "register_email"
	awaitRegPhone        = "register_phone"
	awaitRegPassword     = "register_password"
	awaitTopUpAmount     = "topup_amount"
	awaitServiceCustomer = "service_customer"
	awaitServiceAmount   = "service_amount"
)

// chatState is the view machine for one chat. The modal views overlay
// the dashboard; closing one always lands back on ViewDashboard.
type chatState struct {
	view    model.View
	authTab model.AuthTab
	await   string

	loginIdentifier string
	regName         string
	regEmail        string
	regPhone        string

	topUpMethod     model.TopUpMethod
	pendingService  model.ServiceKind
	serviceCustomer string

	// cancelCheckout aborts a card checkout still waiting on the widget
	// when the user closes the add-money modal.
	cancelCheckout context.CancelFunc

	// dashboardMsg is the message edited in place on session changes.
	dashboardMsg int
}

type Bot struct {
	api     *tgbotapi.BotAPI
	account *service.Account
	charts  *charts.ChartGenerator
	log     zerolog.Logger

	mu     sync.Mutex
	states map[int64]*chatState
}

func NewBot(token string, account *service.Account, logger zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		api:     api,
		account: account,
		charts:  charts.NewChartGenerator(),
		log:     logger,
		states:  make(map[int64]*chatState),
	}
	account.SetNotifier(b.sendNotice)
	return b, nil
}

// Start runs the bot in long-polling mode.
func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info().Msg("bot started")

	for update := range updates {
		b.handleUpdate(update)
	}
	return nil
}

// HandleWebhook is the entry point for webhook deployments.
func (b *Bot) HandleWebhook(body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return err
	}
	b.handleUpdate(update)
	return nil
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message == nil && update.CallbackQuery == nil {
		return
	}

	if update.Message != nil && update.Message.IsCommand() {
		b.handleCommand(update.Message)
		return
	}
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
		return
	}
	if update.Message != nil {
		b.handleMessage(update.Message)
	}
}

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		b.handleStart(chatID)
	case "chart":
		b.handleChart(chatID)
	case "logout":
		b.handleLogout(chatID)
	}
}

// handleStart routes to the dashboard when a restored or live session is
// authenticated, otherwise to the login/register forms.
func (b *Bot) handleStart(chatID int64) {
	if b.account.Session(chatID).Authenticated() {
		b.enterDashboard(chatID)
		return
	}
	b.showAuthMenu(chatID)
}

// stateLocked returns the chat's view state, creating it on first
// contact. Callers hold b.mu.
func (b *Bot) stateLocked(chatID int64) *chatState {
	st, ok := b.states[chatID]
	if !ok {
		st = &chatState{view: model.ViewLoggedOut}
		b.states[chatID] = st
	}
	return st
}

// update runs fn on the chat's view state under the lock. All chatState
// field access goes through here or snapshot: the checkout goroutine
// finishes concurrently with the update loop.
func (b *Bot) update(chatID int64, fn func(st *chatState)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.stateLocked(chatID))
}

// snapshot returns a copy of the chat's view state for lock-free reads.
func (b *Bot) snapshot(chatID int64) chatState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *b.stateLocked(chatID)
}

// SessionChanged is the session-store observer: it re-renders the
// dashboard message in place. Nothing is shown for logged-out chats;
// balance and history must never surface past a logout.
func (b *Bot) SessionChanged(chatID int64) {
	st := b.snapshot(chatID)
	if st.view == model.ViewLoggedOut || st.dashboardMsg == 0 {
		return
	}
	sess := b.account.Session(chatID)
	if !sess.Authenticated() {
		return
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, st.dashboardMsg, renderDashboard(sess), dashboardKeyboard(sess.BalanceVisible))
	if _, err := b.api.Send(edit); err != nil {
		// "message is not modified" and similar; the next render wins.
		b.log.Debug().Err(err).Int64("chat", chatID).Msg("dashboard re-render skipped")
	}
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn().Err(err).Int64("chat", chatID).Msg("failed to send message")
	}
}

func (b *Bot) sendNotice(chatID int64, text string) {
	b.send(chatID, text)
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	b.send(chatID, "❌ "+text)
}
