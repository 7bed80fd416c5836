package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	app_errors "kishanmitra/client/internal/errors"
	"kishanmitra/client/internal/lang"
	"kishanmitra/client/internal/model"
	"kishanmitra/client/internal/repository"
)

// Keys in the local settings table.
const (
	KeyToken       = "token"
	KeyLanguage    = "language"
	KeyLocation    = "location"
	KeyAnonymousID = "anonymous_id"
)

// Settings is the view-facing summary of the stored preferences.
type Settings struct {
	Language    string         `json:"language"`
	Location    model.Location `json:"location"`
	AnonymousID string         `json:"anonymous_id"`
	LoggedIn    bool           `json:"logged_in"`
}

// SettingsService keeps the client-side preferences that a browser would
// hold in local storage.
type SettingsService struct {
	repo            repository.Repository
	defaultLanguage string

	// anonMu serialises first-use generation of the anonymous id.
	anonMu sync.Mutex
}

func NewSettingsService(repo repository.Repository, defaultLanguage string) *SettingsService {
	if !lang.IsSupported(defaultLanguage) {
		defaultLanguage = lang.DefaultCode
	}
	return &SettingsService{repo: repo, defaultLanguage: defaultLanguage}
}

// Get reads every preference in one query.
func (s *SettingsService) Get(ctx context.Context) (*Settings, error) {
	values, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not read settings: %w", err)
	}

	settings := &Settings{
		Language:    s.defaultLanguage,
		AnonymousID: values[KeyAnonymousID],
		LoggedIn:    values[KeyToken] != "",
	}
	if l, ok := lang.Lookup(values[KeyLanguage]); ok {
		settings.Language = l.Code
	}
	if raw := values[KeyLocation]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &settings.Location); err != nil {
			slog.Warn("Ignoring unreadable stored location", "error", err)
			settings.Location = model.Location{}
		}
	}
	return settings, nil
}

// Language returns the selected language code, falling back to the
// configured default when nothing valid is stored.
func (s *SettingsService) Language(ctx context.Context) (string, error) {
	val, err := s.repo.Get(ctx, KeyLanguage)
	if errors.Is(err, repository.ErrNotFound) {
		return s.defaultLanguage, nil
	}
	if err != nil {
		return "", err
	}
	if l, ok := lang.Lookup(val); ok {
		return l.Code, nil
	}
	slog.Warn("Stored language is not supported, using default", "language", val, "default", s.defaultLanguage)
	return s.defaultLanguage, nil
}

// SetLanguage stores code after normalising it against the language table.
func (s *SettingsService) SetLanguage(ctx context.Context, code string) (string, error) {
	l, ok := lang.Lookup(code)
	if !ok {
		return "", fmt.Errorf("%w: unsupported language %q", app_errors.ErrValidation, code)
	}
	if err := s.repo.Set(ctx, KeyLanguage, l.Code); err != nil {
		return "", err
	}
	slog.Info("Language changed", "language", l.Code)
	return l.Code, nil
}

// AnonymousID returns the locally generated session id used as the user id
// while nobody is logged in. It is created on first use and then kept.
func (s *SettingsService) AnonymousID(ctx context.Context) (string, error) {
	s.anonMu.Lock()
	defer s.anonMu.Unlock()

	val, err := s.repo.Get(ctx, KeyAnonymousID)
	if err == nil && val != "" {
		return val, nil
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	id := uuid.NewString()
	if err := s.repo.Set(ctx, KeyAnonymousID, id); err != nil {
		return "", fmt.Errorf("could not store anonymous id: %w", err)
	}
	slog.Info("Generated anonymous session id")
	return id, nil
}

// Token returns the stored bearer token, or "" when logged out.
func (s *SettingsService) Token(ctx context.Context) (string, error) {
	val, err := s.repo.Get(ctx, KeyToken)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	return val, err
}

func (s *SettingsService) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: token must not be empty", app_errors.ErrValidation)
	}
	return s.repo.Set(ctx, KeyToken, token)
}

func (s *SettingsService) ClearToken(ctx context.Context) error {
	return s.repo.Delete(ctx, KeyToken)
}

// Location returns the last known location. The zero value means unknown.
func (s *SettingsService) Location(ctx context.Context) (model.Location, error) {
	val, err := s.repo.Get(ctx, KeyLocation)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Location{}, nil
	}
	if err != nil {
		return model.Location{}, err
	}
	var loc model.Location
	if err := json.Unmarshal([]byte(val), &loc); err != nil {
		slog.Warn("Ignoring unreadable stored location", "error", err)
		return model.Location{}, nil
	}
	return loc, nil
}

func (s *SettingsService) SetLocation(ctx context.Context, loc model.Location) error {
	val, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("failed to marshal location: %w", err)
	}
	return s.repo.Set(ctx, KeyLocation, string(val))
}
