package service

import (
	"context"
	"fmt"
	"log/slog"

	"kishanmitra/client/internal/backend"
	"kishanmitra/client/internal/model"
)

// DefaultChatTitle is the title of a chat until its first question renames it.
const DefaultChatTitle = "New Chat"

// ChatsService manages the list of conversations and decides which one the
// ChatSession shows.
type ChatsService struct {
	client   backend.Client
	session  *ChatSession
	users    *UserContextResolver
	pageSize int
}

func NewChatsService(client backend.Client, session *ChatSession, users *UserContextResolver, pageSize int) *ChatsService {
	return &ChatsService{client: client, session: session, users: users, pageSize: pageSize}
}

// List returns the user's chats, newest first.
func (s *ChatsService) List(ctx context.Context) ([]model.Chat, error) {
	uc, err := s.users.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.ListChats(ctx, uc.UserID)
}

// New creates a chat on the backend and makes it the active one.
func (s *ChatsService) New(ctx context.Context) (*model.Chat, error) {
	uc, err := s.users.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	chat, err := s.client.NewChat(ctx, uc.UserID, DefaultChatTitle)
	if err != nil {
		return nil, fmt.Errorf("could not create chat: %w", err)
	}
	slog.Info("Created chat", "chat_id", chat.ID)
	if err := s.session.LoadHistory(ctx, chat.ID); err != nil {
		return nil, err
	}
	return chat, nil
}

// Select activates an existing chat.
func (s *ChatsService) Select(ctx context.Context, chatID string) error {
	return s.session.LoadHistory(ctx, chatID)
}

// Bootstrap makes sure a chat is active: the most recent one if the user has
// any, a new one otherwise.
func (s *ChatsService) Bootstrap(ctx context.Context) error {
	chats, err := s.List(ctx)
	if err != nil {
		return fmt.Errorf("could not list chats: %w", err)
	}
	if len(chats) > 0 {
		return s.Select(ctx, chats[0].ID)
	}
	_, err = s.New(ctx)
	return err
}

// Recent returns the user's latest messages across every chat in
// conversation order.
func (s *ChatsService) Recent(ctx context.Context) ([]model.Message, error) {
	uc, err := s.users.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.LegacyHistory(ctx, uc.UserID, s.pageSize)
}

// IdentityChanged drops the active chat and bootstraps the new user's chats.
func (s *ChatsService) IdentityChanged(ctx context.Context, identity *model.Identity) {
	userID := "anonymous"
	if identity != nil {
		userID = identity.UserID
	}
	slog.Info("Switching chats to a new identity", "user_id", userID)

	s.session.Reset()
	if err := s.Bootstrap(ctx); err != nil {
		slog.Warn("Failed to bootstrap chats after sign-in change", "user_id", userID, "error", err)
	}
}
