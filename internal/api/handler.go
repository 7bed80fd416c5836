package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"kishanmitra/client/internal/interfaces"
)

// SubmitRequest is the body of POST /session/messages.
type SubmitRequest struct {
	Text string `json:"text" validate:"max=4000"`
}

// InputRequest is the body of PUT /session/input.
type InputRequest struct {
	Text string `json:"text" validate:"max=4000"`
}

// SessionHandler serves the active chat session and the chat list.
type SessionHandler struct {
	session interfaces.SessionService
	chats   interfaces.ChatsService
	users   interfaces.UserContextResolver
}

func NewSessionHandler(session interfaces.SessionService, chats interfaces.ChatsService, users interfaces.UserContextResolver) *SessionHandler {
	return &SessionHandler{session: session, chats: chats, users: users}
}

// GetSession returns the current snapshot of the active session.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.session.Snapshot())
}

// SubmitMessage appends the user's message and starts the query. The answer
// arrives later as a snapshot over the websocket.
func (h *SessionHandler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	uc, err := h.users.Resolve(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	if err := h.session.Submit(req.Text, uc); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, h.session.Snapshot())
}

// Regenerate replaces the last answer with a fresh one.
func (h *SessionHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	uc, err := h.users.Resolve(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	if err := h.session.RegenerateLast(uc); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, h.session.Snapshot())
}

// SetInput mirrors the text currently typed in the input box.
func (h *SessionHandler) SetInput(w http.ResponseWriter, r *http.Request) {
	var req InputRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	h.session.SetInput(req.Text)
	respondWithJSON(w, http.StatusOK, statusOK)
}

func (h *SessionHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chats.List(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, chats)
}

// NewChat creates a chat and makes it the active one.
func (h *SessionHandler) NewChat(w http.ResponseWriter, r *http.Request) {
	chat, err := h.chats.New(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, chat)
}

func (h *SessionHandler) ActivateChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	if err := h.chats.Select(r.Context(), chatID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.session.Snapshot())
}

// RecentHistory returns the user's recent messages across all chats, oldest
// first.
func (h *SessionHandler) RecentHistory(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.chats.Recent(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, msgs)
}
