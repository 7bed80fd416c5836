package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"kishanmitra/client/internal/backend"
	app_errors "kishanmitra/client/internal/errors"
	"kishanmitra/client/internal/model"
)

// FallbackAnswer replaces the assistant reply whenever a query fails.
const FallbackAnswer = "Error fetching AI response."

const (
	titleWords    = 8
	titleMaxRunes = 40
)

var (
	ErrNoActiveChat        = fmt.Errorf("%w: no active chat", app_errors.ErrConflict)
	ErrBusy                = fmt.Errorf("%w: a response is still pending", app_errors.ErrConflict)
	ErrNothingToRegenerate = fmt.Errorf("%w: no user message to regenerate", app_errors.ErrConflict)
	ErrEmptyQuery          = fmt.Errorf("%w: query must not be empty", app_errors.ErrValidation)
)

// SnapshotObserver receives the session state after every change. It is
// called without the session lock held, so snapshots may arrive out of
// order; Version orders them.
type SnapshotObserver func(model.SessionSnapshot)

// ChatSession owns the message list of the active conversation.
//
// Every mutation happens under mu. Network calls run outside it and
// re-acquire it on completion; a completion whose epoch no longer matches
// belongs to an abandoned activation and is dropped.
type ChatSession struct {
	client  backend.Client
	timeout time.Duration
	logger  *slog.Logger

	mu           sync.Mutex
	chatID       string
	messages     []model.Message
	loaded       bool // messages hold the backend's copy of chatID
	busy         bool
	pendingInput string
	epoch        uint64
	version      uint64
	observer     SnapshotObserver

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewChatSession returns an idle session with no active chat. timeout bounds
// each backend call the session makes.
func NewChatSession(client backend.Client, timeout time.Duration, logger *slog.Logger) *ChatSession {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ChatSession{
		client:  client,
		timeout: timeout,
		logger:  logger.With("component", "chat_session"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetObserver replaces the snapshot observer. nil disables notifications.
func (s *ChatSession) SetObserver(fn SnapshotObserver) {
	s.mu.Lock()
	s.observer = fn
	s.mu.Unlock()
}

// LoadHistory makes chatID the active conversation. The history is cleared
// at once and then replaced wholesale by the backend's copy. While the fetch
// runs the session reports busy so nothing is appended that the fetched copy
// would overwrite. A later LoadHistory supersedes an earlier one still in
// flight; the superseded call returns nil without touching state.
func (s *ChatSession) LoadHistory(ctx context.Context, chatID string) error {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return fmt.Errorf("%w: chat id is required", app_errors.ErrValidation)
	}

	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.chatID = chatID
	s.messages = []model.Message{}
	s.loaded = false
	s.busy = true
	s.commitLocked()
	s.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	msgs, err := s.client.ChatHistory(fetchCtx, chatID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.logger.Debug("Discarding superseded history", "chat_id", chatID)
		return nil
	}
	s.busy = false
	if err != nil {
		s.commitLocked()
		s.logger.Warn("Failed to load chat history", "chat_id", chatID, "error", err)
		return fmt.Errorf("could not load history for chat %s: %w", chatID, err)
	}
	s.messages = cloneMessages(msgs)
	s.loaded = true
	s.commitLocked()
	s.logger.Debug("Chat history loaded", "chat_id", chatID, "messages", len(msgs))
	return nil
}

// SetInput stores text in the pending input field shown by the view.
func (s *ChatSession) SetInput(text string) {
	s.mu.Lock()
	s.pendingInput = text
	s.commitLocked()
	s.mu.Unlock()
}

// Submit appends the user message and starts exactly one query for it. The
// assistant reply, or FallbackAnswer, is appended when the query completes.
func (s *ChatSession) Submit(text string, uc model.UserContext) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyQuery
	}

	s.mu.Lock()
	if s.chatID == "" {
		s.mu.Unlock()
		return ErrNoActiveChat
	}
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	// Without the backend's history there is no telling whether this is the
	// chat's first question, so the title is left alone.
	first := s.loaded && lastUserIndex(s.messages) < 0
	s.messages = append(s.messages, model.Message{Role: model.RoleUser, Content: text})
	s.pendingInput = ""
	s.busy = true
	epoch, chatID := s.epoch, s.chatID
	s.commitLocked()
	s.mu.Unlock()

	s.wg.Add(1)
	go s.ask(epoch, chatID, text, uc)

	if first {
		s.wg.Add(1)
		go s.updateTitle(chatID, DeriveTitle(text))
	}
	return nil
}

// RegenerateLast drops everything after the last user message and asks the
// same question again. The user message itself is kept, not re-appended.
func (s *ChatSession) RegenerateLast(uc model.UserContext) error {
	s.mu.Lock()
	if s.chatID == "" {
		s.mu.Unlock()
		return ErrNoActiveChat
	}
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	idx := lastUserIndex(s.messages)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNothingToRegenerate
	}
	s.messages = s.messages[:idx+1:idx+1]
	text := s.messages[idx].Content
	s.busy = true
	epoch, chatID := s.epoch, s.chatID
	s.commitLocked()
	s.mu.Unlock()

	s.wg.Add(1)
	go s.ask(epoch, chatID, text, uc)
	return nil
}

func (s *ChatSession) ask(epoch uint64, chatID, text string, uc model.UserContext) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	req := &backend.AskRequest{
		ChatID:   chatID,
		UserID:   uc.UserID,
		Query:    text,
		Language: uc.Language,
	}
	if uc.Coordinates.Set {
		req.Latitude = uc.Coordinates.Latitude
		req.Longitude = uc.Coordinates.Longitude
	}

	answer, err := s.client.Ask(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) && s.ctx.Err() != nil {
			return
		}
		s.logger.Warn("Query failed", "chat_id", chatID, "error", err)
		answer = FallbackAnswer
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.logger.Debug("Discarding stale response", "chat_id", chatID)
		return
	}
	s.messages = append(s.messages, model.Message{Role: model.RoleAssistant, Content: answer})
	s.busy = false
	s.commitLocked()
}

func (s *ChatSession) updateTitle(chatID, title string) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	if err := s.client.UpdateChatTitle(ctx, chatID, title); err != nil {
		s.logger.Warn("Failed to update chat title", "chat_id", chatID, "error", err)
	}
}

// History returns a copy of the current messages.
func (s *ChatSession) History() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMessages(s.messages)
}

func (s *ChatSession) Snapshot() model.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *ChatSession) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *ChatSession) ChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatID
}

// Reset deactivates the current chat, e.g. after the user identity changes.
// Outstanding responses for the old chat are discarded.
func (s *ChatSession) Reset() {
	s.mu.Lock()
	s.epoch++
	s.chatID = ""
	s.messages = []model.Message{}
	s.loaded = false
	s.busy = false
	s.commitLocked()
	s.mu.Unlock()
}

// Wait blocks until every outstanding query and title update has finished.
func (s *ChatSession) Wait() {
	s.wg.Wait()
}

// Close cancels outstanding work and waits for it to stop.
func (s *ChatSession) Close() {
	s.cancel()
	s.wg.Wait()
}

// commitLocked bumps the version and hands a snapshot to the observer on a
// separate goroutine so observers may call back into the session.
func (s *ChatSession) commitLocked() {
	s.version++
	if s.observer == nil {
		return
	}
	obs, snap := s.observer, s.snapshotLocked()
	go obs(snap)
}

func (s *ChatSession) snapshotLocked() model.SessionSnapshot {
	return model.SessionSnapshot{
		ChatID:       s.chatID,
		Messages:     cloneMessages(s.messages),
		Busy:         s.busy,
		PendingInput: s.pendingInput,
		Version:      s.version,
	}
}

// DeriveTitle shortens the first question of a chat into its title: the first
// eight words, cut to forty characters with an ellipsis when longer.
func DeriveTitle(text string) string {
	words := strings.Fields(text)
	if len(words) > titleWords {
		words = words[:titleWords]
	}
	title := strings.Join(words, " ")
	if utf8.RuneCountInString(title) <= titleMaxRunes {
		return title
	}
	runes := []rune(title)
	return strings.TrimRight(string(runes[:titleMaxRunes]), " ") + "..."
}

func lastUserIndex(msgs []model.Message) int {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleUser {
			return i
		}
	}
	return -1
}

func cloneMessages(msgs []model.Message) []model.Message {
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out
}
