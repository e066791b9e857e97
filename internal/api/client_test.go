package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantid/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithHTTPClient(srv.URL, srv.Client())
}

func TestCreateChat(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chats", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Ferns", body["title"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Chat{ID: "c1", Title: "Ferns", CreatedAt: time.Now()})
	}))

	chat, err := client.CreateChat(context.Background(), "Ferns")
	require.NoError(t, err)
	assert.Equal(t, "c1", chat.ID)
	assert.Equal(t, "Ferns", chat.Title)
}

func TestGetChatIncludesMessages(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chats/c1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "c1",
			"title": "Ferns",
			"messages": []models.Message{
				{ID: "m1", Sender: models.SenderUser, Kind: models.KindText, Content: json.RawMessage(`"hi"`)},
			},
		})
	}))

	detail, err := client.GetChat(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", detail.ID)
	require.Len(t, detail.Messages, 1)
	assert.Equal(t, "hi", detail.Messages[0].Text())
}

func TestServerErrorBodyBecomesMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "chat not found"})
	}))

	_, err := client.GetChat(context.Background(), "missing")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "chat not found", apiErr.Message)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestServerErrorWithoutBodyGetsGenericMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "not json")
	}))

	err := client.Health(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Server error occurred", apiErr.Message)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestNetworkFailureIsStatusZero(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := NewWithHTTPClient(srv.URL, srv.Client())
	srv.Close()

	_, err := client.ListChats(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, StatusNetwork, apiErr.Status)
	assert.Equal(t, "Network error - please check your connection", apiErr.Message)
}

func TestUploadFileSendsMultipart(t *testing.T) {
	payload := []byte("\xFF\xD8\xFFfake jpeg bytes")

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/upload", r.URL.Path)
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "rose.jpg", header.Filename)

		got, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, payload, got)

		json.NewEncoder(w).Encode(models.UploadResult{Success: true, FileURL: "http://files/rose.jpg"})
	}))

	result, err := client.UploadFile(context.Background(), "rose.jpg", strings.NewReader(string(payload)))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "http://files/rose.jpg", result.FileURL)
}

func TestIdentifyPlantSendsCoordinates(t *testing.T) {
	lat, lon := 48.8566, 2.3522

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req IdentifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "http://files/rose.jpg", req.ImageURL)
		require.NotNil(t, req.Latitude)
		require.InDelta(t, lat, *req.Latitude, 0.0001)

		json.NewEncoder(w).Encode(models.PlantResult{CommonName: "Rose", Confidence: 0.9})
	}))

	result, err := client.IdentifyPlant(context.Background(), "http://files/rose.jpg", &lat, &lon)
	require.NoError(t, err)
	assert.Equal(t, "Rose", result.CommonName)
}

func TestIdentifyErrorPayloadIsNotAFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.PlantResult{Error: "Unable to identify the plant"})
	}))

	result, err := client.IdentifyPlant(context.Background(), "http://files/blurry.jpg", nil, nil)
	require.NoError(t, err)
	assert.True(t, result.IsError())
	assert.Equal(t, "Unable to identify the plant", result.Error)
}

func TestAddMessageRoundTrip(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chats/c1/messages", r.URL.Path)

		var draft models.Draft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		require.Equal(t, models.KindText, draft.Kind)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Message{
			ID: "m1", ChatID: "c1", Sender: draft.Sender, Kind: draft.Kind,
			Content: draft.Content, Timestamp: time.Now(),
		})
	}))

	msg, err := client.AddMessage(context.Background(), "c1", models.TextDraft(models.SenderUser, "what is this?"))
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "what is this?", msg.Text())
}

func TestErrorImplementsError(t *testing.T) {
	err := &Error{Message: "boom", Status: 500}
	assert.True(t, errors.As(error(err), new(*Error)))
	assert.Contains(t, err.Error(), "boom")
}
