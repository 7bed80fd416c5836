package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kishanmitra/client/internal/backend"
	"kishanmitra/client/internal/model"
)

// MockClient is a testify mock of backend.Client.
type MockClient struct {
	mock.Mock
}

// NewMockClient creates a MockClient whose expectations are asserted when
// the test finishes.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockClient) Ask(ctx context.Context, req *backend.AskRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockClient) ChatHistory(ctx context.Context, chatID string) ([]model.Message, error) {
	args := m.Called(ctx, chatID)
	msgs, _ := args.Get(0).([]model.Message)
	return msgs, args.Error(1)
}

func (m *MockClient) LegacyHistory(ctx context.Context, userID string, limit int) ([]model.Message, error) {
	args := m.Called(ctx, userID, limit)
	msgs, _ := args.Get(0).([]model.Message)
	return msgs, args.Error(1)
}

func (m *MockClient) NewChat(ctx context.Context, userID, title string) (*model.Chat, error) {
	args := m.Called(ctx, userID, title)
	chat, _ := args.Get(0).(*model.Chat)
	return chat, args.Error(1)
}

func (m *MockClient) ListChats(ctx context.Context, userID string) ([]model.Chat, error) {
	args := m.Called(ctx, userID)
	chats, _ := args.Get(0).([]model.Chat)
	return chats, args.Error(1)
}

func (m *MockClient) UpdateChatTitle(ctx context.Context, chatID, title string) error {
	args := m.Called(ctx, chatID, title)
	return args.Error(0)
}

func (m *MockClient) Login(ctx context.Context, req *backend.LoginRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockClient) Signup(ctx context.Context, req *backend.SignupRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockClient) OAuth(ctx context.Context, req *backend.OAuthRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
