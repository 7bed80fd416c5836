package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Session    *SessionHandler
	Settings   *SettingsHandler
	Auth       *AuthHandler
	Capability *CapabilityHandler
	WebSocket  http.HandlerFunc
	WebDir     string
}

// NewRouter creates the chi router serving the JSON API, the websocket and
// the static view.
func NewRouter(h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Queries and recognition finish in the background, so every
		// request here is short.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// --- Session ---
			r.Get("/session", h.Session.GetSession)
			r.Post("/session/messages", h.Session.SubmitMessage)
			r.Post("/session/regenerate", h.Session.Regenerate)
			r.Put("/session/input", h.Session.SetInput)
			r.Get("/history", h.Session.RecentHistory)

			// --- Chats ---
			r.Get("/chats", h.Session.ListChats)
			r.Post("/chats", h.Session.NewChat)
			r.Post("/chats/{chatID}/activate", h.Session.ActivateChat)

			// --- Settings ---
			r.Get("/languages", h.Settings.ListLanguages)
			r.Get("/settings", h.Settings.GetSettings)
			r.Put("/settings/language", h.Settings.SetLanguage)

			// --- Auth ---
			r.Post("/auth/login", h.Auth.Login)
			r.Post("/auth/signup", h.Auth.Signup)
			r.Post("/auth/logout", h.Auth.Logout)
			r.Get("/auth/me", h.Auth.Me)
			r.Get("/auth/google", h.Auth.GoogleLogin)
			r.Get("/auth/google/callback", h.Auth.GoogleCallback)

			// --- Location ---
			r.Get("/location", h.Capability.GetLocation)
			r.Put("/location", h.Capability.PickLocation)
			r.Post("/location/search", h.Capability.SearchLocation)
			r.Post("/location/detect", h.Capability.DetectLocation)
			r.Post("/location/result", h.Capability.LocationResult)

			// --- Voice ---
			r.Post("/voice/start", h.Capability.StartVoice)
			r.Post("/voice/result", h.Capability.VoiceResult)
		})
	})

	// The websocket must not run under the timeout middleware.
	if h.WebSocket != nil {
		r.Get("/ws", h.WebSocket)
	}

	if h.WebDir != "" {
		fileServer := http.FileServer(http.Dir(h.WebDir))
		r.Handle("/*", http.StripPrefix("/", fileServer))
	}

	return r
}
