package api

import (
	"net/http"

	"kishanmitra/client/internal/interfaces"
	"kishanmitra/client/internal/lang"
)

// LanguageRequest is the body of PUT /settings/language.
type LanguageRequest struct {
	Language string `json:"language" validate:"required,langcode"`
}

// LanguageResponse reports the stored, normalised language code.
type LanguageResponse struct {
	Language string `json:"language"`
}

type SettingsHandler struct {
	settings interfaces.SettingsService
}

func NewSettingsHandler(settings interfaces.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// ListLanguages returns the language picker entries.
func (h *SettingsHandler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, lang.All())
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	code, err := h.settings.SetLanguage(r.Context(), req.Language)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, LanguageResponse{Language: code})
}
