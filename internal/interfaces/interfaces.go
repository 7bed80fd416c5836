package interfaces

import (
	"context"

	"kishanmitra/client/internal/model"
	"kishanmitra/client/internal/service"
)

// The API layer depends on these contracts rather than the concrete services
// so that handlers can be tested against mocks.

// SessionService is the active chat session.
type SessionService interface {
	Snapshot() model.SessionSnapshot
	SetInput(text string)
	Submit(text string, uc model.UserContext) error
	RegenerateLast(uc model.UserContext) error
}

// ChatsService manages the chat list and which chat is active.
type ChatsService interface {
	List(ctx context.Context) ([]model.Chat, error)
	New(ctx context.Context) (*model.Chat, error)
	Select(ctx context.Context, chatID string) error
	Recent(ctx context.Context) ([]model.Message, error)
}

// SettingsService exposes the locally stored preferences.
type SettingsService interface {
	Get(ctx context.Context) (*service.Settings, error)
	SetLanguage(ctx context.Context, code string) (string, error)
}

// AuthService signs users in and out.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.Identity, error)
	Signup(ctx context.Context, email, name, password string) error
	Logout(ctx context.Context) error
	Current(ctx context.Context) (*model.Identity, error)
	GoogleAuthURL() (string, error)
	CompleteGoogle(ctx context.Context, state, code string) (*model.Identity, error)
}

// UserContextResolver builds the parameters attached to every query.
type UserContextResolver interface {
	Resolve(ctx context.Context) (model.UserContext, error)
}

// LocationService tracks the user's position.
type LocationService interface {
	Current(ctx context.Context) (model.Location, error)
	StartDetect() error
	Pick(ctx context.Context, coords model.Coordinates) (model.Location, error)
	Search(ctx context.Context, query string) (model.Location, error)
}

// VoiceService runs speech recognition.
type VoiceService interface {
	Start() error
	Listening() bool
}

// LocationRelay receives the outcome of a geolocation request made by the view.
type LocationRelay interface {
	Deliver(c model.Coordinates) error
	Fail(code int) error
}

// SpeechRelay receives the outcome of a recognition run by the view.
type SpeechRelay interface {
	Deliver(transcript, errCode string) error
}
