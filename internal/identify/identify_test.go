package identify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantid/internal/api"
	"plantid/internal/geo"
	"plantid/internal/models"
	"plantid/internal/store"
)

// jpegBytes returns a payload http.DetectContentType sniffs as image/jpeg.
func jpegBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	return data
}

type pipelineBackend struct {
	chatSeq atomic.Int64
	msgSeq  atomic.Int64

	createdChats []string
	appended     map[string][]models.Draft
	identifyReq  api.IdentifyRequest
	result       models.PlantResult
	requests     atomic.Int64
}

func newPipelineBackend(result models.PlantResult) *pipelineBackend {
	return &pipelineBackend{appended: map[string][]models.Draft{}, result: result}
}

func (b *pipelineBackend) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		switch {
		case r.URL.Path == "/api/upload":
			_, _, err := r.FormFile("file")
			require.NoError(t, err)
			json.NewEncoder(w).Encode(models.UploadResult{Success: true, FileURL: "http://files/u1.jpg"})

		case r.URL.Path == "/api/chats" && r.Method == http.MethodPost:
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			id := fmt.Sprintf("chat-%d", b.chatSeq.Add(1))
			b.createdChats = append(b.createdChats, body["title"])
			json.NewEncoder(w).Encode(models.Chat{ID: id, Title: body["title"], CreatedAt: time.Now()})

		case strings.HasSuffix(r.URL.Path, "/messages") && r.Method == http.MethodPost:
			id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/chats/"), "/messages")
			var draft models.Draft
			json.NewDecoder(r.Body).Decode(&draft)
			b.appended[id] = append(b.appended[id], draft)
			json.NewEncoder(w).Encode(models.Message{
				ID: fmt.Sprintf("m%d", b.msgSeq.Add(1)), ChatID: id,
				Sender: draft.Sender, Kind: draft.Kind, Content: draft.Content,
				Timestamp: time.Now(),
			})

		case r.URL.Path == "/api/plant/identify":
			json.NewDecoder(r.Body).Decode(&b.identifyReq)
			json.NewEncoder(w).Encode(b.result)

		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
		}
	})
}

func newPipeline(t *testing.T, backend *pipelineBackend, locator geo.Locator) (*Orchestrator, *store.Store) {
	t.Helper()
	srv := httptest.NewServer(backend.handler(t))
	t.Cleanup(srv.Close)
	client := api.NewWithHTTPClient(srv.URL, srv.Client())
	st := store.New(client)
	return &Orchestrator{Client: client, Store: st, Locator: locator}, st
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantMIME string
		wantErr  string
	}{
		{name: "jpeg", data: jpegBytes(1024), wantMIME: "image/jpeg"},
		{name: "png", data: append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...), wantMIME: "image/png"},
		{name: "gif", data: append([]byte("GIF89a"), make([]byte, 64)...), wantMIME: "image/gif"},
		{name: "plain text", data: []byte("this is not an image"), wantErr: "valid image file"},
		{name: "pdf", data: []byte("%PDF-1.4 not a plant"), wantErr: "valid image file"},
		{name: "oversized jpeg", data: jpegBytes(MaxFileSize + 1), wantErr: "less than 16MB"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mime, err := ValidateFile(tc.data)
			if tc.wantErr != "" {
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Contains(t, vErr.Reason, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantMIME, mime)
		})
	}
}

func TestIdentifyCreatesChatAndAppendsBothMessages(t *testing.T) {
	backend := newPipelineBackend(models.PlantResult{
		CommonName: "Snake Plant", ScientificName: "Dracaena trifasciata", Confidence: 0.88,
	})
	orch, st := newPipeline(t, backend, geo.Fixed{Latitude: 52.52, Longitude: 13.405})

	result, err := orch.Identify(context.Background(), "plant.jpg", jpegBytes(2*1024*1024))
	require.NoError(t, err)
	assert.Equal(t, "Snake Plant", result.CommonName)

	require.Equal(t, []string{UploadChatTitle}, backend.createdChats)

	chatID := st.CurrentChatID()
	require.NotEmpty(t, chatID)
	drafts := backend.appended[chatID]
	require.Len(t, drafts, 2)
	assert.Equal(t, models.KindImage, drafts[0].Kind)
	assert.Equal(t, models.SenderUser, drafts[0].Sender)
	assert.Equal(t, models.KindPlantResult, drafts[1].Kind)
	assert.Equal(t, models.SenderAssistant, drafts[1].Sender)

	// Both messages are visible in the store.
	snap := st.Snapshot()
	require.Len(t, snap.Messages, 2)
	res, ok := snap.Messages[1].PlantResult()
	require.True(t, ok)
	assert.Equal(t, "Snake Plant", res.CommonName)

	// The geolocation hint travelled with the request.
	require.NotNil(t, backend.identifyReq.Latitude)
	assert.InDelta(t, 52.52, *backend.identifyReq.Latitude, 0.001)
}

func TestIdentifyReusesCurrentChat(t *testing.T) {
	backend := newPipelineBackend(models.PlantResult{CommonName: "Dandelion", Confidence: 0.8})
	orch, st := newPipeline(t, backend, geo.NoLocation{})

	chat, err := st.CreateChat(context.Background(), "My garden")
	require.NoError(t, err)

	_, err = orch.Identify(context.Background(), "weed.jpg", jpegBytes(1024))
	require.NoError(t, err)

	assert.Equal(t, []string{"My garden"}, backend.createdChats, "no implicit chat is created")
	assert.Len(t, backend.appended[chat.ID], 2)
}

func TestIdentifyWithoutLocationSendsNilCoordinates(t *testing.T) {
	backend := newPipelineBackend(models.PlantResult{CommonName: "Fern", Confidence: 0.7})
	orch, _ := newPipeline(t, backend, geo.NoLocation{})

	_, err := orch.Identify(context.Background(), "fern.jpg", jpegBytes(1024))
	require.NoError(t, err)

	assert.Nil(t, backend.identifyReq.Latitude)
	assert.Nil(t, backend.identifyReq.Longitude)
}

func TestIdentifyRejectsInvalidFileBeforeAnyRequest(t *testing.T) {
	backend := newPipelineBackend(models.PlantResult{})
	orch, _ := newPipeline(t, backend, geo.NoLocation{})

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "text file", data: []byte("just some notes"), want: "valid image file"},
		{name: "oversized", data: jpegBytes(MaxFileSize + 512), want: "less than 16MB"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := orch.Identify(context.Background(), "bad.bin", tc.data)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Reason, tc.want)
			assert.Zero(t, backend.requests.Load(), "validation failures stay local")
		})
	}
}

func TestIdentifyErrorResultIsAppendedNotFailed(t *testing.T) {
	backend := newPipelineBackend(models.PlantResult{Error: "The image quality is too low"})
	orch, st := newPipeline(t, backend, geo.NoLocation{})

	result, err := orch.Identify(context.Background(), "blurry.jpg", jpegBytes(1024))
	require.NoError(t, err, "an unidentifiable plant is an answer, not a failure")
	assert.True(t, result.IsError())

	drafts := backend.appended[st.CurrentChatID()]
	require.Len(t, drafts, 2)
	assert.Equal(t, models.KindPlantResult, drafts[1].Kind)

	var appended models.PlantResult
	require.NoError(t, json.Unmarshal(drafts[1].Content, &appended))
	assert.Equal(t, "The image quality is too low", appended.Error)
}

func TestIdentifyFileReadsFromDisk(t *testing.T) {
	backend := newPipelineBackend(models.PlantResult{CommonName: "Rose", Confidence: 0.9})
	orch, _ := newPipeline(t, backend, geo.NoLocation{})

	path := filepath.Join(t.TempDir(), "rose.jpg")
	require.NoError(t, os.WriteFile(path, jpegBytes(4096), 0o644))

	result, err := orch.IdentifyFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Rose", result.CommonName)
}

func TestIdentifyFileMissingPath(t *testing.T) {
	backend := newPipelineBackend(models.PlantResult{})
	orch, _ := newPipeline(t, backend, geo.NoLocation{})

	_, err := orch.IdentifyFile(context.Background(), "/nonexistent/plant.jpg")
	require.Error(t, err)
	assert.Zero(t, backend.requests.Load())
}
