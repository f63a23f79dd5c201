// Package session owns the per-chat client session: the bearer token,
// profile, balance and transaction history. It is the only writer of
// that state; the bot and the account service read through it.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ebusmomentum88/fusion/internal/model"
)

// Durable storage file names, fixed across releases: the token is kept
// as an opaque string, the profile as JSON next to it.
const (
	tokenFile   = "token"
	profileFile = "profile.json"
)

// Store keeps sessions in memory keyed by chat ID and mirrors the
// credential part to the state directory so a restart lands the user
// back on the dashboard without re-authenticating. Updates mostly come
// from the bot loop, but a card checkout completes on its own goroutine,
// hence the lock.
type Store struct {
	dir      string
	log      zerolog.Logger
	mu       sync.Mutex
	sessions map[int64]*model.Session
	onChange func(chatID int64)
}

func NewStore(dir string, logger zerolog.Logger) *Store {
	return &Store{
		dir:      dir,
		log:      logger,
		sessions: make(map[int64]*model.Session),
	}
}

// OnChange registers the re-render hook fired after every mutation. Set
// it once during wiring, before updates flow.
func (s *Store) OnChange(fn func(chatID int64)) {
	s.onChange = fn
}

// Get returns a snapshot of the chat's session, restoring it from the
// state directory on first access.
func (s *Store) Get(chatID int64) model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.get(chatID)
}

// get is Get without the lock or the copy; callers hold s.mu.
func (s *Store) get(chatID int64) *model.Session {
	if sess, ok := s.sessions[chatID]; ok {
		return sess
	}
	sess := s.restore(chatID)
	s.sessions[chatID] = sess
	return sess
}

// SetAuth installs a fresh credential and profile and persists both.
func (s *Store) SetAuth(chatID int64, token string, user model.User) {
	s.mu.Lock()
	sess := s.get(chatID)
	sess.Token = token
	sess.User = user
	s.mu.Unlock()

	if err := s.persist(chatID, token, user); err != nil {
		// The session still works for this run, only the restart
		// restore is lost.
		s.log.Warn().Err(err).Int64("chat", chatID).Msg("failed to persist session")
	}
	s.notify(chatID)
}

// SetBalance overwrites the balance wholesale.
func (s *Store) SetBalance(chatID int64, balance decimal.Decimal) {
	s.mu.Lock()
	s.get(chatID).Balance = balance
	s.mu.Unlock()
	s.notify(chatID)
}

// SetTransactions replaces the history wholesale. No merging, no dedup.
func (s *Store) SetTransactions(chatID int64, txs []model.Transaction) {
	s.mu.Lock()
	s.get(chatID).Transactions = txs
	s.mu.Unlock()
	s.notify(chatID)
}

// ToggleBalanceVisibility flips between the masked and plain balance.
func (s *Store) ToggleBalanceVisibility(chatID int64) {
	s.mu.Lock()
	sess := s.get(chatID)
	sess.BalanceVisible = !sess.BalanceVisible
	s.mu.Unlock()
	s.notify(chatID)
}

// Clear logs the chat out: the in-memory session resets and the durable
// entries are removed.
func (s *Store) Clear(chatID int64) {
	s.mu.Lock()
	s.sessions[chatID] = &model.Session{BalanceVisible: true}
	s.mu.Unlock()

	if err := os.RemoveAll(s.chatDir(chatID)); err != nil {
		s.log.Warn().Err(err).Int64("chat", chatID).Msg("failed to clear persisted session")
	}
	s.notify(chatID)
}

func (s *Store) notify(chatID int64) {
	if s.onChange != nil {
		s.onChange(chatID)
	}
}

func (s *Store) chatDir(chatID int64) string {
	return filepath.Join(s.dir, strconv.FormatInt(chatID, 10))
}

// restore rebuilds a session from the state directory. A stored token is
// trusted as-is, without re-validation against the backend; a profile
// that fails to parse degrades to the placeholder user.
func (s *Store) restore(chatID int64) *model.Session {
	sess := &model.Session{BalanceVisible: true}

	raw, err := os.ReadFile(filepath.Join(s.chatDir(chatID), tokenFile))
	if err != nil || len(raw) == 0 {
		return sess
	}
	sess.Token = string(raw)

	var user model.User
	data, err := os.ReadFile(filepath.Join(s.chatDir(chatID), profileFile))
	if err != nil || json.Unmarshal(data, &user) != nil {
		user = model.PlaceholderUser()
	}
	sess.User = user

	s.log.Info().Int64("chat", chatID).Msg("session restored from disk")
	return sess
}

func (s *Store) persist(chatID int64, token string, user model.User) error {
	dir := s.chatDir(chatID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, tokenFile), []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, profileFile), profile, 0o600); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}
