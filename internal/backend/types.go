package backend

import (
	"encoding/json"
	"strings"
	"time"

	"kishanmitra/client/internal/model"
)

// AskRequest is one query turn. Latitude and Longitude are 0 when the
// location is unknown.
type AskRequest struct {
	ChatID    string  `validate:"required"`
	UserID    string  `validate:"required"`
	Query     string  `validate:"required"`
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
	Language  string  `validate:"required,langcode"`
}

type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type SignupRequest struct {
	Email    string `validate:"required,email"`
	Name     string `validate:"required"`
	Password string `validate:"required,min=6"`
}

// OAuthRequest hands a verified third-party profile to the backend, which
// either logs the user in or registers them.
type OAuthRequest struct {
	Email    string `validate:"required,email"`
	Name     string `validate:"required"`
	Provider string `validate:"required"`
	Subject  string `validate:"required"`
}

type askResponse struct {
	Response *string `json:"response"`
}

type historyEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp timestamp `json:"timestamp"`
}

type historyResponse struct {
	History *[]historyEntry `json:"history"`
}

type chatEntry struct {
	ChatID    string    `json:"chat_id"`
	Title     string    `json:"title"`
	CreatedAt timestamp `json:"created_at"`
}

type chatsResponse struct {
	Chats *[]chatEntry `json:"chats"`
}

type tokenResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type detailResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// timestamp accepts the formats SQLite and FastAPI produce. Unknown
// formats decode to the zero time rather than failing the whole body.
type timestamp time.Time

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*t = timestamp{}
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = timestamp(parsed.UTC())
			return nil
		}
	}
	*t = timestamp{}
	return nil
}

func (e historyEntry) toMessage() (model.Message, bool) {
	role := model.Role(e.Role)
	if !role.Valid() {
		return model.Message{}, false
	}
	return model.Message{Role: role, Content: e.Content}, true
}
