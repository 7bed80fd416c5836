package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kishanmitra/client/internal/model"
	"kishanmitra/client/internal/service"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

func register(t testingT, m *mock.Mock) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

// MockSessionService is a testify mock of interfaces.SessionService.
type MockSessionService struct{ mock.Mock }

func NewMockSessionService(t testingT) *MockSessionService {
	m := &MockSessionService{}
	register(t, &m.Mock)
	return m
}

func (m *MockSessionService) Snapshot() model.SessionSnapshot {
	args := m.Called()
	return args.Get(0).(model.SessionSnapshot)
}

func (m *MockSessionService) SetInput(text string) {
	m.Called(text)
}

func (m *MockSessionService) Submit(text string, uc model.UserContext) error {
	return m.Called(text, uc).Error(0)
}

func (m *MockSessionService) RegenerateLast(uc model.UserContext) error {
	return m.Called(uc).Error(0)
}

// MockChatsService is a testify mock of interfaces.ChatsService.
type MockChatsService struct{ mock.Mock }

func NewMockChatsService(t testingT) *MockChatsService {
	m := &MockChatsService{}
	register(t, &m.Mock)
	return m
}

func (m *MockChatsService) List(ctx context.Context) ([]model.Chat, error) {
	args := m.Called(ctx)
	chats, _ := args.Get(0).([]model.Chat)
	return chats, args.Error(1)
}

func (m *MockChatsService) New(ctx context.Context) (*model.Chat, error) {
	args := m.Called(ctx)
	chat, _ := args.Get(0).(*model.Chat)
	return chat, args.Error(1)
}

func (m *MockChatsService) Select(ctx context.Context, chatID string) error {
	return m.Called(ctx, chatID).Error(0)
}

func (m *MockChatsService) Recent(ctx context.Context) ([]model.Message, error) {
	args := m.Called(ctx)
	msgs, _ := args.Get(0).([]model.Message)
	return msgs, args.Error(1)
}

// MockSettingsService is a testify mock of interfaces.SettingsService.
type MockSettingsService struct{ mock.Mock }

func NewMockSettingsService(t testingT) *MockSettingsService {
	m := &MockSettingsService{}
	register(t, &m.Mock)
	return m
}

func (m *MockSettingsService) Get(ctx context.Context) (*service.Settings, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*service.Settings)
	return s, args.Error(1)
}

func (m *MockSettingsService) SetLanguage(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

// MockAuthService is a testify mock of interfaces.AuthService.
type MockAuthService struct{ mock.Mock }

func NewMockAuthService(t testingT) *MockAuthService {
	m := &MockAuthService{}
	register(t, &m.Mock)
	return m
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*model.Identity, error) {
	args := m.Called(ctx, email, password)
	id, _ := args.Get(0).(*model.Identity)
	return id, args.Error(1)
}

func (m *MockAuthService) Signup(ctx context.Context, email, name, password string) error {
	return m.Called(ctx, email, name, password).Error(0)
}

func (m *MockAuthService) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAuthService) Current(ctx context.Context) (*model.Identity, error) {
	args := m.Called(ctx)
	id, _ := args.Get(0).(*model.Identity)
	return id, args.Error(1)
}

func (m *MockAuthService) GoogleAuthURL() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) CompleteGoogle(ctx context.Context, state, code string) (*model.Identity, error) {
	args := m.Called(ctx, state, code)
	id, _ := args.Get(0).(*model.Identity)
	return id, args.Error(1)
}

// MockUserContextResolver is a testify mock of interfaces.UserContextResolver.
type MockUserContextResolver struct{ mock.Mock }

func NewMockUserContextResolver(t testingT) *MockUserContextResolver {
	m := &MockUserContextResolver{}
	register(t, &m.Mock)
	return m
}

func (m *MockUserContextResolver) Resolve(ctx context.Context) (model.UserContext, error) {
	args := m.Called(ctx)
	uc, _ := args.Get(0).(model.UserContext)
	return uc, args.Error(1)
}

// MockLocationService is a testify mock of interfaces.LocationService.
type MockLocationService struct{ mock.Mock }

func NewMockLocationService(t testingT) *MockLocationService {
	m := &MockLocationService{}
	register(t, &m.Mock)
	return m
}

func (m *MockLocationService) Current(ctx context.Context) (model.Location, error) {
	args := m.Called(ctx)
	loc, _ := args.Get(0).(model.Location)
	return loc, args.Error(1)
}

func (m *MockLocationService) StartDetect() error {
	return m.Called().Error(0)
}

func (m *MockLocationService) Pick(ctx context.Context, coords model.Coordinates) (model.Location, error) {
	args := m.Called(ctx, coords)
	loc, _ := args.Get(0).(model.Location)
	return loc, args.Error(1)
}

func (m *MockLocationService) Search(ctx context.Context, query string) (model.Location, error) {
	args := m.Called(ctx, query)
	loc, _ := args.Get(0).(model.Location)
	return loc, args.Error(1)
}

// MockVoiceService is a testify mock of interfaces.VoiceService.
type MockVoiceService struct{ mock.Mock }

func NewMockVoiceService(t testingT) *MockVoiceService {
	m := &MockVoiceService{}
	register(t, &m.Mock)
	return m
}

func (m *MockVoiceService) Start() error {
	return m.Called().Error(0)
}

func (m *MockVoiceService) Listening() bool {
	return m.Called().Bool(0)
}

// MockLocationRelay is a testify mock of interfaces.LocationRelay.
type MockLocationRelay struct{ mock.Mock }

func NewMockLocationRelay(t testingT) *MockLocationRelay {
	m := &MockLocationRelay{}
	register(t, &m.Mock)
	return m
}

func (m *MockLocationRelay) Deliver(c model.Coordinates) error {
	return m.Called(c).Error(0)
}

func (m *MockLocationRelay) Fail(code int) error {
	return m.Called(code).Error(0)
}

// MockSpeechRelay is a testify mock of interfaces.SpeechRelay.
type MockSpeechRelay struct{ mock.Mock }

func NewMockSpeechRelay(t testingT) *MockSpeechRelay {
	m := &MockSpeechRelay{}
	register(t, &m.Mock)
	return m
}

func (m *MockSpeechRelay) Deliver(transcript, errCode string) error {
	return m.Called(transcript, errCode).Error(0)
}
