// Package server implements the plant identification HTTP service: chat and
// message persistence over sqlite, image uploads, and the identification
// endpoint backed by a pluggable Identifier.
package server

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"plantid/internal/geo"
	"plantid/internal/identify"
	"plantid/internal/models"
)

// Server wires storage, uploads and the identifier behind a chi router.
type Server struct {
	storage    *Storage
	identifier Identifier
	uploadDir  string
	publicBase string
	log        zerolog.Logger
}

// New assembles a server. publicBase is the externally reachable base URL
// used to build file URLs for uploads.
func New(storage *Storage, identifier Identifier, uploadDir, publicBase string, log zerolog.Logger) *Server {
	return &Server{
		storage:    storage,
		identifier: identifier,
		uploadDir:  uploadDir,
		publicBase: strings.TrimSuffix(publicBase, "/"),
		log:        log,
	}
}

// Router builds the full /api route tree plus the /uploads static mount.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", s.handleListChats)
			r.Post("/", s.handleCreateChat)
			r.Route("/{chatID}", func(r chi.Router) {
				r.Get("/", s.handleGetChat)
				r.Put("/", s.handleUpdateChat)
				r.Delete("/", s.handleDeleteChat)
				r.Get("/messages", s.handleListMessages)
				r.Post("/messages", s.handleAddMessage)
			})
		})

		r.Post("/upload", s.handleUpload)
		r.Post("/upload/base64", s.handleUploadBase64)

		r.Post("/plant/identify", s.handleIdentify)
		r.Get("/plant/identify/status", s.handleIdentifyStatus)
	})

	fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadDir)))
	r.Get("/uploads/*", fs.ServeHTTP)

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListChats(w http.ResponseWriter, _ *http.Request) {
	chats, err := s.storage.ListChats()
	if err != nil {
		s.log.Error().Err(err).Msg("list chats")
		writeError(w, http.StatusInternalServerError, "failed to list chats")
		return
	}
	if chats == nil {
		chats = []models.Chat{}
	}
	writeJSON(w, http.StatusOK, chats)
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		writeError(w, http.StatusBadRequest, "chat title cannot be empty")
		return
	}
	chat, err := s.storage.CreateChat(title)
	if err != nil {
		s.log.Error().Err(err).Msg("create chat")
		writeError(w, http.StatusInternalServerError, "failed to create chat")
		return
	}
	writeJSON(w, http.StatusCreated, chat)
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "chatID")
	chat, err := s.storage.GetChat(id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("chat_id", id).Msg("get chat")
		writeError(w, http.StatusInternalServerError, "failed to load chat")
		return
	}
	msgs, err := s.storage.ListMessages(id)
	if err != nil {
		s.log.Error().Err(err).Str("chat_id", id).Msg("list messages")
		writeError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	writeJSON(w, http.StatusOK, struct {
		models.Chat
		Messages []models.Message `json:"messages"`
	}{Chat: chat, Messages: msgs})
}

func (s *Server) handleUpdateChat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "chatID")
	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		writeError(w, http.StatusBadRequest, "chat title cannot be empty")
		return
	}
	chat, err := s.storage.UpdateChatTitle(id, title)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("chat_id", id).Msg("update chat")
		writeError(w, http.StatusInternalServerError, "failed to update chat")
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "chatID")
	err := s.storage.DeleteChat(id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("chat_id", id).Msg("delete chat")
		writeError(w, http.StatusInternalServerError, "failed to delete chat")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "chatID")
	if _, err := s.storage.GetChat(id); errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	} else if err != nil {
		s.log.Error().Err(err).Str("chat_id", id).Msg("get chat")
		writeError(w, http.StatusInternalServerError, "failed to load chat")
		return
	}
	msgs, err := s.storage.ListMessages(id)
	if err != nil {
		s.log.Error().Err(err).Str("chat_id", id).Msg("list messages")
		writeError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleAddMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "chatID")
	var draft models.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if draft.Sender != models.SenderUser && draft.Sender != models.SenderAssistant {
		writeError(w, http.StatusBadRequest, "unknown sender")
		return
	}
	switch draft.Kind {
	case models.KindText, models.KindImage, models.KindPlantResult:
	default:
		writeError(w, http.StatusBadRequest, "unknown message type")
		return
	}
	msg, err := s.storage.InsertMessage(id, draft)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("chat_id", id).Msg("insert message")
		writeError(w, http.StatusInternalServerError, "failed to save message")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(identify.MaxFileSize + 1); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, identify.MaxFileSize+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}
	s.storeUpload(w, data, filepath.Ext(header.Filename))
}

func (s *Server) handleUploadBase64(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	raw := body.Image
	// Accept data URIs like "data:image/png;base64,...." as well as bare
	// base64 payloads.
	if idx := strings.Index(raw, ","); idx != -1 && strings.HasPrefix(raw, "data:") {
		raw = raw[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid base64 image data")
		return
	}
	s.storeUpload(w, data, "")
}

// storeUpload validates image bytes, writes them under the upload dir and
// responds with the public file URL.
func (s *Server) storeUpload(w http.ResponseWriter, data []byte, ext string) {
	mime, err := identify.ValidateFile(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if ext == "" {
		ext = extensionFor(mime)
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		s.log.Error().Err(err).Msg("create upload dir")
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.uploadDir, name), data, 0o644); err != nil {
		s.log.Error().Err(err).Msg("write upload")
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	writeJSON(w, http.StatusOK, models.UploadResult{
		Success: true,
		FileURL: fmt.Sprintf("%s/uploads/%s", s.publicBase, name),
	})
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ".bin"
}

func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ImageURL  string   `json:"image_url"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.ImageURL) == "" {
		writeError(w, http.StatusBadRequest, "image_url is required")
		return
	}

	var coords *geo.Coordinates
	if body.Latitude != nil && body.Longitude != nil {
		coords = &geo.Coordinates{Latitude: *body.Latitude, Longitude: *body.Longitude}
	}

	result, err := s.identifier.Identify(r.Context(), body.ImageURL, coords)
	if err != nil {
		s.log.Error().Err(err).Str("identifier", s.identifier.Name()).Msg("identify")
		writeError(w, http.StatusBadGateway, "identification service unavailable")
		return
	}
	if result.Image == "" && !result.IsError() {
		result.Image = body.ImageURL
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleIdentifyStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"available":  true,
		"identifier": s.identifier.Name(),
	})
}
