// Package backend is the typed HTTP client for the KishanMitra backend. POST
// bodies are form-encoded and GET parameters go in the query string; every
// answer is JSON.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	app_errors "kishanmitra/client/internal/errors"
	"kishanmitra/client/internal/model"
	"kishanmitra/client/internal/validation"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// Client defines every backend call the client makes.
type Client interface {
	Ask(ctx context.Context, req *AskRequest) (string, error)
	ChatHistory(ctx context.Context, chatID string) ([]model.Message, error)
	LegacyHistory(ctx context.Context, userID string, limit int) ([]model.Message, error)
	NewChat(ctx context.Context, userID, title string) (*model.Chat, error)
	ListChats(ctx context.Context, userID string) ([]model.Chat, error)
	UpdateChatTitle(ctx context.Context, chatID, title string) error
	Login(ctx context.Context, req *LoginRequest) (string, error)
	Signup(ctx context.Context, req *SignupRequest) error
	OAuth(ctx context.Context, req *OAuthRequest) (string, error)
}

type httpClient struct {
	client   *http.Client
	url      string
	validate *validator.Validate
}

// NewClient returns a Client for the backend at baseURL. timeout bounds each
// individual request; zero means no limit beyond the caller's context.
func NewClient(baseURL string, timeout time.Duration) Client {
	return &httpClient{
		client:   &http.Client{Timeout: timeout},
		url:      strings.TrimRight(baseURL, "/"),
		validate: validation.New(),
	}
}

func (c *httpClient) Ask(ctx context.Context, req *AskRequest) (string, error) {
	if err := c.check(req); err != nil {
		return "", err
	}
	form := url.Values{}
	form.Set("chat_id", req.ChatID)
	form.Set("user_id", req.UserID)
	form.Set("query", req.Query)
	form.Set("lat", strconv.FormatFloat(req.Latitude, 'f', -1, 64))
	form.Set("lon", strconv.FormatFloat(req.Longitude, 'f', -1, 64))
	form.Set("lang", req.Language)

	var resp askResponse
	if err := c.postForm(ctx, "/ask", form, &resp); err != nil {
		return "", err
	}
	if resp.Response == nil || *resp.Response == "" {
		return "", fmt.Errorf("%w: missing response field", ErrMalformedResponse)
	}
	return *resp.Response, nil
}

func (c *httpClient) ChatHistory(ctx context.Context, chatID string) ([]model.Message, error) {
	if chatID == "" {
		return nil, fmt.Errorf("%w: chat id is required", app_errors.ErrValidation)
	}
	return c.history(ctx, "/user/chat_history", url.Values{"chat_id": {chatID}})
}

// LegacyHistory reads the per-user history, which the backend returns newest
// first. The result is reversed into conversation order.
func (c *httpClient) LegacyHistory(ctx context.Context, userID string, limit int) ([]model.Message, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", app_errors.ErrValidation)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", app_errors.ErrValidation)
	}
	msgs, err := c.history(ctx, "/user/history", url.Values{
		"user_id": {userID},
		"limit":   {strconv.Itoa(limit)},
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (c *httpClient) history(ctx context.Context, path string, params url.Values) ([]model.Message, error) {
	var resp historyResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if resp.History == nil {
		return nil, fmt.Errorf("%w: missing history field", ErrMalformedResponse)
	}
	msgs := make([]model.Message, 0, len(*resp.History))
	for i, entry := range *resp.History {
		msg, ok := entry.toMessage()
		if !ok {
			return nil, fmt.Errorf("%w: entry %d has role %q", ErrMalformedResponse, i, entry.Role)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (c *httpClient) NewChat(ctx context.Context, userID, title string) (*model.Chat, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", app_errors.ErrValidation)
	}
	form := url.Values{"user_id": {userID}}
	if title != "" {
		form.Set("title", title)
	}

	var resp chatEntry
	if err := c.postForm(ctx, "/user/new_chat", form, &resp); err != nil {
		return nil, err
	}
	if resp.ChatID == "" {
		return nil, fmt.Errorf("%w: missing chat_id", ErrMalformedResponse)
	}
	return &model.Chat{ID: resp.ChatID, Title: resp.Title, CreatedAt: time.Time(resp.CreatedAt)}, nil
}

func (c *httpClient) ListChats(ctx context.Context, userID string) ([]model.Chat, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", app_errors.ErrValidation)
	}
	var resp chatsResponse
	if err := c.get(ctx, "/user/chats", url.Values{"user_id": {userID}}, &resp); err != nil {
		return nil, err
	}
	if resp.Chats == nil {
		return nil, fmt.Errorf("%w: missing chats field", ErrMalformedResponse)
	}
	chats := make([]model.Chat, 0, len(*resp.Chats))
	for _, entry := range *resp.Chats {
		if entry.ChatID == "" {
			return nil, fmt.Errorf("%w: chat without chat_id", ErrMalformedResponse)
		}
		chats = append(chats, model.Chat{ID: entry.ChatID, Title: entry.Title, CreatedAt: time.Time(entry.CreatedAt)})
	}
	return chats, nil
}

func (c *httpClient) UpdateChatTitle(ctx context.Context, chatID, title string) error {
	if chatID == "" || strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: chat id and title are required", app_errors.ErrValidation)
	}
	return c.postForm(ctx, "/user/update_chat_title", url.Values{"chat_id": {chatID}, "title": {title}}, nil)
}

func (c *httpClient) Login(ctx context.Context, req *LoginRequest) (string, error) {
	if err := c.check(req); err != nil {
		return "", err
	}
	return c.token(ctx, "/login", url.Values{"gmail": {req.Email}, "password": {req.Password}})
}

func (c *httpClient) Signup(ctx context.Context, req *SignupRequest) error {
	if err := c.check(req); err != nil {
		return err
	}
	return c.postForm(ctx, "/signup", url.Values{
		"gmail":    {req.Email},
		"name":     {req.Name},
		"password": {req.Password},
	}, nil)
}

func (c *httpClient) OAuth(ctx context.Context, req *OAuthRequest) (string, error) {
	if err := c.check(req); err != nil {
		return "", err
	}
	return c.token(ctx, "/oauth", url.Values{
		"gmail":          {req.Email},
		"name":           {req.Name},
		"oauth_provider": {req.Provider},
		"oauth_id":       {req.Subject},
	})
}

func (c *httpClient) token(ctx context.Context, path string, form url.Values) (string, error) {
	var resp tokenResponse
	if err := c.postForm(ctx, path, form, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: missing token", ErrMalformedResponse)
	}
	return resp.Token, nil
}

func (c *httpClient) check(req any) error {
	err := c.validate.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %s", app_errors.ErrValidation, err.Error())
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("Field '%s' failed on the '%s' tag", fieldErr.Field(), fieldErr.Tag()))
	}
	return fmt.Errorf("%w: %s", app_errors.ErrValidation, strings.Join(msgs, "; "))
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.url + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("could not create http request: %w", err)
	}
	return c.do(httpReq, out)
}

func (c *httpClient) postForm(ctx context.Context, path string, form url.Values, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("could not create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(httpReq, out)
}

// do sends the request and decodes a 2xx body into out. out may be nil when
// the caller does not need the body.
func (c *httpClient) do(httpReq *http.Request, out any) error {
	httpReq.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, httpReq.Method, httpReq.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: could not read response body: %w", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Detail: parseDetail(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedResponse, err.Error())
	}
	return nil
}

// parseDetail extracts FastAPI's `detail`. It is a string for HTTPException
// and a list of objects for request validation failures.
func parseDetail(body []byte) string {
	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}
	var s string
	if err := json.Unmarshal(resp.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(resp.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(resp.Detail)
}
