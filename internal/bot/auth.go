package bot

import (
	"context"

	"github.com/ebusmomentum88/fusion/internal/model"
	"github.com/ebusmomentum88/fusion/internal/service"
)

// showAuthMenu presents the logged-out screen with its two tabs. Exactly
// one form runs at a time; picking a tab starts its field prompts.
func (b *Bot) showAuthMenu(chatID int64) {
	b.update(chatID, func(st *chatState) {
		st.view = model.ViewLoggedOut
		st.await = awaitNothing
		st.dashboardMsg = 0
	})

	msg := newKeyboardMessage(chatID,
		"Welcome to Fusion Wallet 💳\n\nLog in to your account or create a new one:",
		authKeyboard())
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn().Err(err).Int64("chat", chatID).Msg("failed to send auth menu")
	}
}

func (b *Bot) startLogin(chatID int64) {
	b.update(chatID, func(st *chatState) {
		st.view = model.ViewLoggedOut
		st.authTab = model.TabLogin
		st.await = awaitLoginIdentifier
	})
	b.send(chatID, "Enter your email or phone number:")
}

func (b *Bot) startRegister(chatID int64) {
	b.update(chatID, func(st *chatState) {
		st.view = model.ViewLoggedOut
		st.authTab = model.TabRegister
		st.await = awaitRegName
	})
	b.send(chatID, "Enter your full name:")
}

// handleAuthInput consumes one form field and advances the conversation.
// Reports whether the text belonged to an auth form.
func (b *Bot) handleAuthInput(chatID int64, text string) bool {
	handled := true
	prompt := ""
	var finish func()

	b.update(chatID, func(st *chatState) {
		switch st.await {
		case awaitLoginIdentifier:
			st.loginIdentifier = text
			st.await = awaitLoginPassword
			prompt = "Enter your password:"
		case awaitLoginPassword:
			identifier := st.loginIdentifier
			finish = func() { b.finishLogin(chatID, identifier, text) }
		case awaitRegName:
			st.regName = text
			st.await = awaitRegEmail
			prompt = "Enter your email address:"
		case awaitRegEmail:
			st.regEmail = text
			st.await = awaitRegPhone
			prompt = "Enter your phone number:"
		case awaitRegPhone:
			st.regPhone = text
			st.await = awaitRegPassword
			prompt = "Choose a password:"
		case awaitRegPassword:
			name, email, phone := st.regName, st.regEmail, st.regPhone
			finish = func() { b.finishRegister(chatID, name, email, phone, text) }
		default:
			handled = false
		}
	})

	if prompt != "" {
		b.send(chatID, prompt)
	}
	if finish != nil {
		finish()
	}
	return handled
}

func (b *Bot) finishLogin(chatID int64, identifier, password string) {
	err := b.account.Login(context.Background(), chatID, identifier, password)
	if err != nil {
		b.sendErrorMessage(chatID, service.ErrorMessage(err))
		b.showAuthMenu(chatID)
		return
	}
	b.enterDashboard(chatID)
}

func (b *Bot) finishRegister(chatID int64, name, email, phone, password string) {
	err := b.account.Register(context.Background(), chatID, name, email, phone, password)
	if err != nil {
		b.sendErrorMessage(chatID, service.ErrorMessage(err))
		b.showAuthMenu(chatID)
		return
	}
	b.enterDashboard(chatID)
}

func (b *Bot) handleLogout(chatID int64) {
	var cancel context.CancelFunc
	b.update(chatID, func(st *chatState) {
		cancel = st.cancelCheckout
		st.cancelCheckout = nil
		st.dashboardMsg = 0
	})
	if cancel != nil {
		cancel()
	}

	b.account.Logout(chatID)
	b.send(chatID, "You have been logged out.")
	b.showAuthMenu(chatID)
}
