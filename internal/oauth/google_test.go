package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newFakeGoogle(t *testing.T, userinfo string) Provider {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/oauth2/v2/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(userinfo))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return NewGoogleProvider(GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:5173/api/v1/auth/google/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   server.URL + "/auth",
			TokenURL:  server.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		UserinfoURL: server.URL + "/",
	})
}

func TestGoogleProvider_AuthCodeURL(t *testing.T) {
	p := NewGoogleProvider(GoogleConfig{ClientID: "client", RedirectURL: "http://localhost/cb"})

	u, err := url.Parse(p.AuthCodeURL("state-1"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)
	q := u.Query()
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "client", q.Get("client_id"))
	assert.Equal(t, "http://localhost/cb", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "email")
	assert.Equal(t, ProviderGoogle, p.Name())
}

func TestGoogleProvider_Exchange(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		p := newFakeGoogle(t, `{"id":"1234","email":"ravi@gmail.com","name":"Ravi Kumar"}`)

		profile, err := p.Exchange(context.Background(), "auth-code")
		require.NoError(t, err)
		assert.Equal(t, &Profile{Subject: "1234", Email: "ravi@gmail.com", Name: "Ravi Kumar"}, profile)
	})

	t.Run("Name falls back to the email local part", func(t *testing.T) {
		p := newFakeGoogle(t, `{"id":"1234","email":"ravi@gmail.com"}`)

		profile, err := p.Exchange(context.Background(), "auth-code")
		require.NoError(t, err)
		assert.Equal(t, "ravi", profile.Name)
	})

	t.Run("Missing email", func(t *testing.T) {
		p := newFakeGoogle(t, `{"id":"1234"}`)

		_, err := p.Exchange(context.Background(), "auth-code")
		assert.ErrorIs(t, err, ErrMissingEmail)
	})
}
