package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	app_errors "kishanmitra/client/internal/errors"
	"kishanmitra/client/internal/validation"
)

type Config struct {
	AppPort            int           `mapstructure:"APP_PORT" validate:"min=1,max=65535"`
	BackendURL         string        `mapstructure:"BACKEND_URL" validate:"required,url"`
	DatabasePath       string        `mapstructure:"DATABASE_PATH" validate:"required"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout     time.Duration `mapstructure:"REQUEST_TIMEOUT" validate:"gt=0"`
	VoiceTimeout       time.Duration `mapstructure:"VOICE_TIMEOUT" validate:"gt=0"`
	LocationTimeout    time.Duration `mapstructure:"LOCATION_TIMEOUT" validate:"gt=0"`
	DefaultLanguage    string        `mapstructure:"DEFAULT_LANGUAGE" validate:"required,langcode"`
	HistoryPageSize    int           `mapstructure:"HISTORY_PAGE_SIZE" validate:"min=1,max=500"`
	GeocoderURL        string        `mapstructure:"GEOCODER_URL" validate:"required,url"`
	GeocoderUserAgent  string        `mapstructure:"GEOCODER_USER_AGENT" validate:"required"`
	GoogleClientID     string        `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string        `mapstructure:"GOOGLE_REDIRECT_URL" validate:"omitempty,url"`
	WebDir             string        `mapstructure:"WEB_DIR"`

	// ConfigFileUsed is the .env file the values were read from, if any.
	ConfigFileUsed string `mapstructure:"-"`
}

// GoogleEnabled reports whether the Google OAuth flow has credentials.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetDefault("APP_PORT", 5173)
	v.SetDefault("BACKEND_URL", "http://127.0.0.1:8000")
	v.SetDefault("DATABASE_PATH", "./data/kishanmitra.db")
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("REQUEST_TIMEOUT", "60s")
	v.SetDefault("VOICE_TIMEOUT", "30s")
	v.SetDefault("LOCATION_TIMEOUT", "20s")
	v.SetDefault("DEFAULT_LANGUAGE", "en")
	v.SetDefault("HISTORY_PAGE_SIZE", 50)
	v.SetDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODER_USER_AGENT", "kishanmitra-client/1.0")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URL", "http://localhost:5173/api/v1/auth/google/callback")
	v.SetDefault("WEB_DIR", "./web")

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./client")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	cfg.GeocoderURL = strings.TrimRight(cfg.GeocoderURL, "/")
	cfg.ConfigFileUsed = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded values against the rules in the struct tags.
func (c *Config) Validate() error {
	err := validation.New().Struct(c)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %s", app_errors.ErrValidation, err.Error())
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("%s failed on the '%s' tag", fieldErr.Field(), fieldErr.Tag()))
	}
	return fmt.Errorf("%w: invalid configuration: %s", app_errors.ErrValidation, strings.Join(msgs, "; "))
}
