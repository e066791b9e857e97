// Package api provides the typed HTTP client for the plant identification
// service. Every transport failure is normalized into an *Error carrying a
// human-readable message and a status: the remote status code when a response
// arrived, 0 when the request never got a response, -1 when the failure
// happened before a request could be sent.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"plantid/internal/models"
)

const (
	// StatusNetwork marks a network-level failure (no response received).
	StatusNetwork = 0
	// StatusLocal marks a failure before a request could be sent.
	StatusLocal = -1
)

// Error is the normalized failure shape for every client call.
type Error struct {
	Message string
	Status  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func networkError() *Error {
	return &Error{Message: "Network error - please check your connection", Status: StatusNetwork}
}

func localError(cause error) *Error {
	msg := "An unexpected error occurred"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Message: msg, Status: StatusLocal}
}

// Client talks to the service over its /api surface.
//
// The zero value is not usable; construct with New.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// NewWithHTTPClient allows injecting the underlying http.Client, mainly for
// tests with httptest servers.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: hc}
}

// BaseURL returns the configured service base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// do runs a JSON request and decodes a JSON response into out (when out is
// non-nil). Non-2xx responses are mapped to *Error using the server's
// {"error": string} body when present.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return localError(err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return localError(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return networkError()
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := "Server error occurred"
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		return &Error{Message: msg, Status: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return localError(err)
	}
	return nil
}

// ListChats fetches all chats, newest first.
func (c *Client) ListChats(ctx context.Context) ([]models.Chat, error) {
	var chats []models.Chat
	if err := c.do(ctx, http.MethodGet, "/api/chats", nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// CreateChat persists a new chat with the given title.
func (c *Client) CreateChat(ctx context.Context, title string) (models.Chat, error) {
	var chat models.Chat
	body := map[string]string{"title": title}
	if err := c.do(ctx, http.MethodPost, "/api/chats", body, &chat); err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

// ChatDetail is a chat with its embedded message history.
type ChatDetail struct {
	models.Chat
	Messages []models.Message `json:"messages"`
}

// GetChat fetches one chat together with its messages.
func (c *Client) GetChat(ctx context.Context, chatID string) (ChatDetail, error) {
	var detail ChatDetail
	if err := c.do(ctx, http.MethodGet, "/api/chats/"+url.PathEscape(chatID), nil, &detail); err != nil {
		return ChatDetail{}, err
	}
	return detail, nil
}

// UpdateChat renames a chat and returns the updated entry.
func (c *Client) UpdateChat(ctx context.Context, chatID, title string) (models.Chat, error) {
	var chat models.Chat
	body := map[string]string{"title": title}
	if err := c.do(ctx, http.MethodPut, "/api/chats/"+url.PathEscape(chatID), body, &chat); err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

// DeleteChat removes a chat and its messages.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	return c.do(ctx, http.MethodDelete, "/api/chats/"+url.PathEscape(chatID), nil, nil)
}

// ListMessages fetches a chat's ordered message history.
func (c *Client) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	var msgs []models.Message
	if err := c.do(ctx, http.MethodGet, "/api/chats/"+url.PathEscape(chatID)+"/messages", nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// AddMessage persists a drafted message; the server assigns id and timestamp.
func (c *Client) AddMessage(ctx context.Context, chatID string, draft models.Draft) (models.Message, error) {
	var msg models.Message
	if err := c.do(ctx, http.MethodPost, "/api/chats/"+url.PathEscape(chatID)+"/messages", draft, &msg); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// UploadFile sends file contents as a multipart form and returns the stored
// file's URL.
func (c *Client) UploadFile(ctx context.Context, filename string, contents io.Reader) (models.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return models.UploadResult{}, localError(err)
	}
	if _, err := io.Copy(part, contents); err != nil {
		return models.UploadResult{}, localError(err)
	}
	if err := mw.Close(); err != nil {
		return models.UploadResult{}, localError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return models.UploadResult{}, localError(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.UploadResult{}, networkError()
	}
	defer resp.Body.Close()

	var result models.UploadResult
	if err := decodeResponse(resp, &result); err != nil {
		return models.UploadResult{}, err
	}
	return result, nil
}

// UploadBase64 sends a base64-encoded image; same response shape as UploadFile.
func (c *Client) UploadBase64(ctx context.Context, data string) (models.UploadResult, error) {
	var result models.UploadResult
	body := map[string]string{"image": data}
	if err := c.do(ctx, http.MethodPost, "/api/upload/base64", body, &result); err != nil {
		return models.UploadResult{}, err
	}
	return result, nil
}

// IdentifyRequest is the body of an identification call. Latitude and
// Longitude are optional hints; nil means unknown.
type IdentifyRequest struct {
	ImageURL  string   `json:"image_url"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// IdentifyPlant asks the service to identify the plant at imageURL. A result
// whose Error field is set means the service responded but could not identify
// the plant; that is not a transport failure.
func (c *Client) IdentifyPlant(ctx context.Context, imageURL string, lat, lon *float64) (models.PlantResult, error) {
	var result models.PlantResult
	body := IdentifyRequest{ImageURL: imageURL, Latitude: lat, Longitude: lon}
	if err := c.do(ctx, http.MethodPost, "/api/plant/identify", body, &result); err != nil {
		return models.PlantResult{}, err
	}
	return result, nil
}

// IdentifyStatus reports whether the identification backend is available.
func (c *Client) IdentifyStatus(ctx context.Context) (map[string]any, error) {
	var status map[string]any
	if err := c.do(ctx, http.MethodGet, "/api/plant/identify/status", nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// Health probes service liveness.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}
