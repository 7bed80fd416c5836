package api

import (
	"log/slog"
	"net/http"
	"net/url"

	"kishanmitra/client/internal/backend"
	"kishanmitra/client/internal/interfaces"
	"kishanmitra/client/internal/model"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=6"`
}

// MeResponse describes who is signed in. Identity is nil for anonymous
// sessions.
type MeResponse struct {
	LoggedIn bool            `json:"logged_in"`
	Identity *model.Identity `json:"identity"`
}

// SignupResponse tells the view to continue with a login.
type SignupResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type AuthHandler struct {
	auth interfaces.AuthService
}

func NewAuthHandler(auth interfaces.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	identity, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, MeResponse{LoggedIn: true, Identity: identity})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := h.auth.Signup(r.Context(), req.Email, req.Name, req.Password); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, SignupResponse{Status: "ok", Message: "Account created. Please log in."})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, statusOK)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := h.auth.Current(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, MeResponse{LoggedIn: identity != nil, Identity: identity})
}

// GoogleLogin redirects the browser to Google's consent screen.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.auth.GoogleAuthURL()
	if err != nil {
		respondWithError(w, err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// GoogleCallback completes the Google flow and sends the browser back to the
// view. Failures are passed along as the auth_error query parameter so the
// view can show them next to the login form.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if denied := q.Get("error"); denied != "" {
		slog.Info("Google sign-in was cancelled", "reason", denied)
		http.Redirect(w, r, "/?auth_error="+url.QueryEscape("Google sign-in was cancelled."), http.StatusFound)
		return
	}

	if _, err := h.auth.CompleteGoogle(r.Context(), q.Get("state"), q.Get("code")); err != nil {
		slog.Warn("Google sign-in failed", "error", err)
		msg := backend.DetailOf(err, "Google sign-in failed. Please try again.")
		http.Redirect(w, r, "/?auth_error="+url.QueryEscape(msg), http.StatusFound)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
