package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"kishanmitra/client/internal/api"
	"kishanmitra/client/internal/backend"
	"kishanmitra/client/internal/config"
	"kishanmitra/client/internal/database"
	"kishanmitra/client/internal/geo"
	"kishanmitra/client/internal/model"
	"kishanmitra/client/internal/oauth"
	"kishanmitra/client/internal/repository"
	"kishanmitra/client/internal/service"
	"kishanmitra/client/internal/speech"
	"kishanmitra/client/internal/websocket"
)

const backendRetryInterval = 3 * time.Second

// App holds the wired client: the local store, the services and the HTTP
// server the view talks to.
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Server   *http.Server
	Hub      *websocket.Hub
	Session  *service.ChatSession
	Chats    *service.ChatsService
	Auth     *service.AuthService
	Settings *service.SettingsService
}

// NewApp opens the local store and wires every component. It does not
// contact the backend.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	repo := repository.NewSQLiteRepository(db)
	settings := service.NewSettingsService(repo, cfg.DefaultLanguage)
	client := backend.NewClient(cfg.BackendURL, cfg.RequestTimeout)
	hub := websocket.NewHub()

	session := service.NewChatSession(client, cfg.RequestTimeout, slog.Default())
	session.SetObserver(hub.PublishSnapshot)

	var provider oauth.Provider
	if cfg.GoogleEnabled() {
		provider = oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		})
		slog.Info("Google sign-in enabled")
	}
	auth := service.NewAuthService(client, settings, provider)
	users := service.NewUserContextResolver(auth, settings)
	chats := service.NewChatsService(client, session, users, cfg.HistoryPageSize)

	// A different user owns different chats.
	auth.SetIdentityListener(func(ctx context.Context, identity *model.Identity) {
		chats.IdentityChanged(context.WithoutCancel(ctx), identity)
	})

	recognizer := speech.NewRelayRecognizer(hub.RequestVoice)
	locator := geo.NewRelayLocator(hub.RequestLocation)
	geocoder := geo.NewNominatim(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.RequestTimeout)
	voice := service.NewVoiceService(recognizer, session, users, hub, cfg.VoiceTimeout)
	location := service.NewLocationService(locator, geocoder, settings, hub, cfg.LocationTimeout)

	router := api.NewRouter(api.Handlers{
		Session:    api.NewSessionHandler(session, chats, users),
		Settings:   api.NewSettingsHandler(settings),
		Auth:       api.NewAuthHandler(auth),
		Capability: api.NewCapabilityHandler(location, locator, voice, recognizer),
		WebSocket:  hub.HandleWebSocket,
		WebDir:     cfg.WebDir,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for the websocket.
		IdleTimeout:       120 * time.Second,
	}

	return &App{
		Config:   cfg,
		DB:       db,
		Server:   server,
		Hub:      hub,
		Session:  session,
		Chats:    chats,
		Auth:     auth,
		Settings: settings,
	}, nil
}

// Bootstrap waits for the backend and then activates a chat. It gives up
// quietly when ctx ends first; the user can still pick or create a chat later.
func (a *App) Bootstrap(ctx context.Context) {
	if !waitForBackend(ctx, a.Config.BackendURL) {
		return
	}
	if err := a.Chats.Bootstrap(ctx); err != nil {
		slog.Error("Failed to activate a chat at startup", "error", err)
		return
	}
	slog.Info("Chat session ready", "chat_id", a.Session.ChatID())
}

// Close stops background work and releases the local store.
func (a *App) Close() {
	a.Session.Close()
	a.Hub.Close()
	if err := a.DB.Close(); err != nil {
		slog.Error("Failed to close database connection", "error", err)
	}
}

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)
	logConfigSource(cfg.ConfigFileUsed)

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}
	defer app.Close()
	slog.Info("Local store ready", "path", cfg.DatabasePath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go app.Bootstrap(ctx)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.AppPort, "backend", cfg.BackendURL)
		serverErr <- app.Server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
		return 1
	}
	return 0
}

func logConfigSource(configFileUsed string) {
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// waitForBackend polls the backend until it answers at all. Any HTTP status
// counts as reachable. It returns false if ctx ends first.
func waitForBackend(ctx context.Context, backendURL string) bool {
	slog.Info("Waiting for the backend to be ready...", "url", backendURL)
	client := &http.Client{Timeout: 2 * time.Second}
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, backendURL+"/", nil)
		if err != nil {
			slog.Error("Invalid backend URL", "url", backendURL, "error", err)
			return false
		}
		resp, err := client.Do(req)
		if err == nil {
			if bErr := resp.Body.Close(); bErr != nil {
				slog.Warn("Failed to close response body in backend health check", "error", bErr)
			}
			slog.Info("Backend is ready.")
			return true
		}
		slog.Debug("Backend not ready yet, retrying...", "url", backendURL, "error", err)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(backendRetryInterval):
		}
	}
}
