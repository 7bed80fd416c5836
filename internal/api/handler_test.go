package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kishanmitra/client/internal/api"
	"kishanmitra/client/internal/backend"
	app_errors "kishanmitra/client/internal/errors"
	"kishanmitra/client/internal/interfaces/mocks"
	"kishanmitra/client/internal/model"
	"kishanmitra/client/internal/service"
)

type sessionFixture struct {
	handler *api.SessionHandler
	session *mocks.MockSessionService
	chats   *mocks.MockChatsService
	users   *mocks.MockUserContextResolver
}

func setupSessionHandler(t *testing.T) sessionFixture {
	f := sessionFixture{
		session: mocks.NewMockSessionService(t),
		chats:   mocks.NewMockChatsService(t),
		users:   mocks.NewMockUserContextResolver(t),
	}
	f.handler = api.NewSessionHandler(f.session, f.chats, f.users)
	return f
}

// addChiURLParams injects URL parameters the way the chi router would.
func addChiURLParams(req *http.Request, params map[string]string) *http.Request {
	chiCtx := chi.NewRouteContext()
	for key, value := range params {
		chiCtx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chiCtx))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	var body api.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func TestSessionHandler_SubmitMessage(t *testing.T) {
	uc := model.UserContext{UserID: "anon-1", Anonymous: true, Language: "hi"}

	t.Run("Success", func(t *testing.T) {
		// ARRANGE
		f := setupSessionHandler(t)
		f.users.On("Resolve", mock.Anything).Return(uc, nil).Once()
		f.session.On("Submit", "गेहूं में खाद कब डालें?", uc).Return(nil).Once()
		snap := model.SessionSnapshot{
			ChatID:   "c-1",
			Messages: []model.Message{{Role: model.RoleUser, Content: "गेहूं में खाद कब डालें?"}},
			Busy:     true,
			Version:  2,
		}
		f.session.On("Snapshot").Return(snap).Once()

		// ACT
		body := `{"text":"गेहूं में खाद कब डालें?"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/session/messages", strings.NewReader(body))
		rr := httptest.NewRecorder()
		f.handler.SubmitMessage(rr, req)

		// ASSERT
		assert.Equal(t, http.StatusAccepted, rr.Code)
		var got model.SessionSnapshot
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, snap, got)
	})

	t.Run("Failure - Busy", func(t *testing.T) {
		f := setupSessionHandler(t)
		f.users.On("Resolve", mock.Anything).Return(uc, nil).Once()
		f.session.On("Submit", "again", uc).Return(service.ErrBusy).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/session/messages", strings.NewReader(`{"text":"again"}`))
		rr := httptest.NewRecorder()
		f.handler.SubmitMessage(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("Failure - Empty query", func(t *testing.T) {
		f := setupSessionHandler(t)
		f.users.On("Resolve", mock.Anything).Return(uc, nil).Once()
		f.session.On("Submit", "   ", uc).Return(service.ErrEmptyQuery).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/session/messages", strings.NewReader(`{"text":"   "}`))
		rr := httptest.NewRecorder()
		f.handler.SubmitMessage(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Failure - Invalid JSON", func(t *testing.T) {
		// The session must not be touched when the body cannot be read.
		f := setupSessionHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/session/messages", strings.NewReader(`{"text":`))
		rr := httptest.NewRecorder()
		f.handler.SubmitMessage(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		f.session.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})
}

func TestSessionHandler_Regenerate(t *testing.T) {
	uc := model.UserContext{UserID: "42", Language: "en"}

	t.Run("Success", func(t *testing.T) {
		f := setupSessionHandler(t)
		f.users.On("Resolve", mock.Anything).Return(uc, nil).Once()
		f.session.On("RegenerateLast", uc).Return(nil).Once()
		f.session.On("Snapshot").Return(model.SessionSnapshot{Busy: true}).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/session/regenerate", nil)
		rr := httptest.NewRecorder()
		f.handler.Regenerate(rr, req)

		assert.Equal(t, http.StatusAccepted, rr.Code)
	})

	t.Run("Failure - Nothing to regenerate", func(t *testing.T) {
		f := setupSessionHandler(t)
		f.users.On("Resolve", mock.Anything).Return(uc, nil).Once()
		f.session.On("RegenerateLast", uc).Return(service.ErrNothingToRegenerate).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/session/regenerate", nil)
		rr := httptest.NewRecorder()
		f.handler.Regenerate(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestSessionHandler_SetInput(t *testing.T) {
	f := setupSessionHandler(t)
	f.session.On("SetInput", "partial text").Return().Once()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/session/input", strings.NewReader(`{"text":"partial text"}`))
	rr := httptest.NewRecorder()
	f.handler.SetInput(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSessionHandler_ListChats(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := setupSessionHandler(t)
		expected := []model.Chat{{ID: "c-1", Title: "Paddy pests"}}
		f.chats.On("List", mock.Anything).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/chats", nil)
		rr := httptest.NewRecorder()
		f.handler.ListChats(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var got []model.Chat
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, expected, got)
	})

	t.Run("Failure - Backend down", func(t *testing.T) {
		f := setupSessionHandler(t)
		f.chats.On("List", mock.Anything).Return(nil, backend.ErrUnavailable).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/chats", nil)
		rr := httptest.NewRecorder()
		f.handler.ListChats(rr, req)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}

func TestSessionHandler_NewChat(t *testing.T) {
	f := setupSessionHandler(t)
	f.chats.On("New", mock.Anything).Return(&model.Chat{ID: "c-9", Title: service.DefaultChatTitle}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats", nil)
	rr := httptest.NewRecorder()
	f.handler.NewChat(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"chat_id":"c-9"`)
}

func TestSessionHandler_ActivateChat(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := setupSessionHandler(t)
		f.chats.On("Select", mock.Anything, "c-3").Return(nil).Once()
		f.session.On("Snapshot").Return(model.SessionSnapshot{ChatID: "c-3"}).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/c-3/activate", nil)
		req = addChiURLParams(req, map[string]string{"chatID": "c-3"})
		rr := httptest.NewRecorder()
		f.handler.ActivateChat(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - Unknown chat", func(t *testing.T) {
		f := setupSessionHandler(t)
		f.chats.On("Select", mock.Anything, "missing").
			Return(&backend.StatusError{StatusCode: http.StatusNotFound, Detail: "Chat not found"}).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/missing/activate", nil)
		req = addChiURLParams(req, map[string]string{"chatID": "missing"})
		rr := httptest.NewRecorder()
		f.handler.ActivateChat(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Chat not found", decodeError(t, rr))
	})
}

func TestSessionHandler_RecentHistory(t *testing.T) {
	f := setupSessionHandler(t)
	msgs := []model.Message{{Role: model.RoleUser, Content: "a"}, {Role: model.RoleAssistant, Content: "b"}}
	f.chats.On("Recent", mock.Anything).Return(msgs, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	rr := httptest.NewRecorder()
	f.handler.RecentHistory(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var got []model.Message
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, msgs, got)
}

func TestSettingsHandler(t *testing.T) {
	t.Run("Languages", func(t *testing.T) {
		handler := api.NewSettingsHandler(mocks.NewMockSettingsService(t))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/languages", nil)
		rr := httptest.NewRecorder()
		handler.ListLanguages(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"code":"hi"`)
	})

	t.Run("Get", func(t *testing.T) {
		settings := mocks.NewMockSettingsService(t)
		handler := api.NewSettingsHandler(settings)
		settings.On("Get", mock.Anything).Return(&service.Settings{Language: "ta", AnonymousID: "anon"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
		rr := httptest.NewRecorder()
		handler.GetSettings(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"language":"ta"`)
	})

	t.Run("Get - Store failure", func(t *testing.T) {
		settings := mocks.NewMockSettingsService(t)
		handler := api.NewSettingsHandler(settings)
		settings.On("Get", mock.Anything).Return(nil, app_errors.ErrInternal).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
		rr := httptest.NewRecorder()
		handler.GetSettings(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("Set language", func(t *testing.T) {
		settings := mocks.NewMockSettingsService(t)
		handler := api.NewSettingsHandler(settings)
		settings.On("SetLanguage", mock.Anything, "HI").Return("hi", nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/language", strings.NewReader(`{"language":"HI"}`))
		rr := httptest.NewRecorder()
		handler.SetLanguage(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"language":"hi"}`, rr.Body.String())
	})

	t.Run("Set language - Unsupported code", func(t *testing.T) {
		// Rejected by the langcode tag before the service is reached.
		handler := api.NewSettingsHandler(mocks.NewMockSettingsService(t))

		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/language", strings.NewReader(`{"language":"xx"}`))
		rr := httptest.NewRecorder()
		handler.SetLanguage(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeError(t, rr), "langcode")
	})
}
