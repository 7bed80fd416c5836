package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"kishanmitra/client/internal/backend"
	app_errors "kishanmitra/client/internal/errors"
	"kishanmitra/client/internal/model"
	"kishanmitra/client/internal/oauth"
)

const oauthStateTTL = 10 * time.Minute

var (
	ErrInvalidToken      = fmt.Errorf("%w: token cannot be decoded", app_errors.ErrUnauthorized)
	ErrTokenExpired      = fmt.Errorf("%w: token has expired", app_errors.ErrUnauthorized)
	ErrOAuthDisabled     = fmt.Errorf("%w: google sign-in is not configured", app_errors.ErrUnavailable)
	ErrOAuthStateInvalid = fmt.Errorf("%w: unknown or expired oauth state", app_errors.ErrValidation)
)

// IdentityListener is told whenever the signed-in user changes.
type IdentityListener func(ctx context.Context, identity *model.Identity)

// AuthService signs users in against the backend and keeps the resulting
// token in local settings.
type AuthService struct {
	client   backend.Client
	settings *SettingsService
	provider oauth.Provider
	now      func() time.Time

	mu       sync.Mutex
	states   map[string]time.Time
	listener IdentityListener
}

// NewAuthService creates the service. provider may be nil when Google
// sign-in is not configured.
func NewAuthService(client backend.Client, settings *SettingsService, provider oauth.Provider) *AuthService {
	return &AuthService{
		client:   client,
		settings: settings,
		provider: provider,
		now:      time.Now,
		states:   make(map[string]time.Time),
	}
}

func (s *AuthService) SetIdentityListener(fn IdentityListener) {
	s.mu.Lock()
	s.listener = fn
	s.mu.Unlock()
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Identity, error) {
	token, err := s.client.Login(ctx, &backend.LoginRequest{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return nil, err
	}
	return s.accept(ctx, token)
}

// Signup registers a new account. The backend does not return a token for
// signups, so the user logs in afterwards.
func (s *AuthService) Signup(ctx context.Context, email, name, password string) error {
	return s.client.Signup(ctx, &backend.SignupRequest{
		Email:    strings.TrimSpace(email),
		Name:     strings.TrimSpace(name),
		Password: password,
	})
}

// GoogleAuthURL starts the Google flow and returns the URL to send the
// browser to.
func (s *AuthService) GoogleAuthURL() (string, error) {
	if s.provider == nil {
		return "", ErrOAuthDisabled
	}
	state := uuid.NewString()

	s.mu.Lock()
	now := s.now()
	for k, exp := range s.states {
		if now.After(exp) {
			delete(s.states, k)
		}
	}
	s.states[state] = now.Add(oauthStateTTL)
	s.mu.Unlock()

	return s.provider.AuthCodeURL(state), nil
}

// CompleteGoogle finishes the flow started by GoogleAuthURL and hands the
// profile to the backend, which logs the user in or registers them.
func (s *AuthService) CompleteGoogle(ctx context.Context, state, code string) (*model.Identity, error) {
	if s.provider == nil {
		return nil, ErrOAuthDisabled
	}
	if !s.consumeState(state) {
		return nil, ErrOAuthStateInvalid
	}
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code is missing", app_errors.ErrValidation)
	}

	profile, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", app_errors.ErrUnavailable, err)
	}
	token, err := s.client.OAuth(ctx, &backend.OAuthRequest{
		Email:    profile.Email,
		Name:     profile.Name,
		Provider: s.provider.Name(),
		Subject:  profile.Subject,
	})
	if err != nil {
		return nil, err
	}
	return s.accept(ctx, token)
}

func (s *AuthService) consumeState(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.states[state]
	delete(s.states, state)
	return ok && !s.now().After(exp)
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.settings.ClearToken(ctx); err != nil {
		return err
	}
	slog.Info("User logged out")
	s.notify(ctx, nil)
	return nil
}

// Current returns the signed-in identity, or nil for an anonymous session.
// A token that has expired or cannot be decoded is removed and the listener
// is told the user is now anonymous.
func (s *AuthService) Current(ctx context.Context) (*model.Identity, error) {
	token, err := s.settings.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	identity, err := DecodeIdentity(token, s.now())
	if err != nil {
		slog.Info("Discarding stored token", "reason", err)
		if clearErr := s.settings.ClearToken(ctx); clearErr != nil {
			return nil, clearErr
		}
		s.notify(ctx, nil)
		return nil, nil
	}
	return identity, nil
}

func (s *AuthService) accept(ctx context.Context, token string) (*model.Identity, error) {
	identity, err := DecodeIdentity(token, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.settings.SetToken(ctx, token); err != nil {
		return nil, err
	}
	slog.Info("User logged in", "user_id", identity.UserID)
	s.notify(ctx, identity)
	return identity, nil
}

func (s *AuthService) notify(ctx context.Context, identity *model.Identity) {
	s.mu.Lock()
	fn := s.listener
	s.mu.Unlock()
	if fn != nil {
		fn(ctx, identity)
	}
}

// DecodeIdentity reads the display claims from a bearer token. The signature
// is not verified; the backend remains the authority on the token.
func DecodeIdentity(token string, now time.Time) (*model.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if exp != nil && !now.Before(exp.Time) {
		return nil, ErrTokenExpired
	}

	identity := &model.Identity{UserID: claimString(claims["user_id"])}
	if identity.UserID == "" {
		return nil, fmt.Errorf("%w: user_id claim is missing", ErrInvalidToken)
	}
	identity.Email, _ = claims["gmail"].(string)
	identity.Name, _ = claims["name"].(string)
	return identity, nil
}

// claimString formats a claim that may be a JSON number or string.
func claimString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
