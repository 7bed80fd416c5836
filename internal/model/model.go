package model

import (
	"fmt"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the roles a conversation may contain.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message stores a single turn in a conversation. Content is markdown and is
// passed through to the view verbatim.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Chat stores metadata about a conversation owned by the backend.
type Chat struct {
	ID        string    `json:"chat_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Coordinates is a latitude/longitude pair. The zero value is the unset
// sentinel; it is still sent with every query as 0,0.
type Coordinates struct {
	Latitude  float64 `json:"lat" validate:"latitude"`
	Longitude float64 `json:"lon" validate:"longitude"`
	Set       bool    `json:"set"`
}

// NewCoordinates returns a set coordinate pair.
func NewCoordinates(lat, lon float64) Coordinates {
	return Coordinates{Latitude: lat, Longitude: lon, Set: true}
}

// String formats the pair with four decimal places, which is what the view
// shows when no place name is known.
func (c Coordinates) String() string {
	if !c.Set {
		return "unknown location"
	}
	return fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude)
}

// Location is the last known position of the user together with a
// human-readable place name.
type Location struct {
	Coordinates Coordinates `json:"coordinates"`
	Name        string      `json:"name"`
}

// Identity holds the display fields decoded from a bearer token.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// UserContext holds the ambient parameters attached to every query.
type UserContext struct {
	UserID      string      `json:"user_id"`
	Anonymous   bool        `json:"anonymous"`
	Language    string      `json:"language"`
	Coordinates Coordinates `json:"coordinates"`
}

// NoticeKind groups notices by the capability that raised them.
type NoticeKind string

const (
	NoticeVoice    NoticeKind = "voice"
	NoticeLocation NoticeKind = "location"
	NoticeAuth     NoticeKind = "auth"
	NoticeSession  NoticeKind = "session"
)

// NoticeLevel is the severity the view uses to style a notice.
type NoticeLevel string

const (
	LevelInfo  NoticeLevel = "info"
	LevelWarn  NoticeLevel = "warn"
	LevelError NoticeLevel = "error"
)

// Notice is a transient user-visible message. Notices never touch history.
type Notice struct {
	Kind  NoticeKind  `json:"kind"`
	Level NoticeLevel `json:"level"`
	Text  string      `json:"text"`
}

// SessionSnapshot is the full view state of a chat session at one point in
// time. Version increases with every change so that the view can drop
// snapshots that arrive out of order.
type SessionSnapshot struct {
	ChatID       string    `json:"chat_id"`
	Messages     []Message `json:"messages"`
	Busy         bool      `json:"busy"`
	PendingInput string    `json:"pending_input"`
	Version      uint64    `json:"version"`
}
