// Package identify runs the upload-and-identify pipeline: validate the
// selected file, upload it, resolve a target chat, geotag when possible,
// call identification, and append the resulting messages to the
// conversation. One invocation is one linear pass; the caller disables the
// trigger while a pass is in flight.
package identify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"plantid/internal/api"
	"plantid/internal/geo"
	"plantid/internal/models"
	"plantid/internal/store"
)

// MaxFileSize is the upload size cap (16 MiB), matching the service limit.
const MaxFileSize = 16 * 1024 * 1024

// UploadChatTitle names chats created implicitly by the pipeline.
const UploadChatTitle = "Plant Identification"

var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidationError rejects a file before any network call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Orchestrator wires the pipeline's collaborators together.
type Orchestrator struct {
	Client  *api.Client
	Store   *store.Store
	Locator geo.Locator
}

// New builds an orchestrator with the default IP-based locator.
func New(client *api.Client, st *store.Store) *Orchestrator {
	return &Orchestrator{Client: client, Store: st, Locator: geo.NewIPLocator()}
}

// ValidateFile checks type and size without touching the network and returns
// the detected MIME type. The type is sniffed from content, not trusted from
// the extension.
func ValidateFile(data []byte) (string, error) {
	mime := http.DetectContentType(data)
	if !allowedMIMETypes[mime] {
		return "", &ValidationError{Reason: "Please upload a valid image file (JPEG, PNG, GIF, or WebP)"}
	}
	if len(data) > MaxFileSize {
		return "", &ValidationError{Reason: "File size must be less than 16MB"}
	}
	return mime, nil
}

// IdentifyFile runs the full pipeline for a file on disk.
func (o *Orchestrator) IdentifyFile(ctx context.Context, path string) (models.PlantResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.PlantResult{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return o.Identify(ctx, filepath.Base(path), data)
}

// Identify uploads the image bytes and appends both the image message and the
// identification result to the active conversation. Validation failures and
// transport failures abort the pipeline; an error-shaped identification
// payload does not, it is appended like any other result.
func (o *Orchestrator) Identify(ctx context.Context, filename string, data []byte) (models.PlantResult, error) {
	if _, err := ValidateFile(data); err != nil {
		return models.PlantResult{}, err
	}

	upload, err := o.Client.UploadFile(ctx, filename, bytes.NewReader(data))
	if err != nil {
		return models.PlantResult{}, err
	}
	if !upload.Success {
		msg := upload.Error
		if msg == "" {
			msg = "Upload failed"
		}
		return models.PlantResult{}, &api.Error{Message: msg, Status: api.StatusLocal}
	}

	chatID := o.Store.CurrentChatID()
	if chatID == "" {
		chat, err := o.Store.CreateChat(ctx, UploadChatTitle)
		if err != nil {
			return models.PlantResult{}, err
		}
		chatID = chat.ID
	}

	if _, err := o.Store.AddMessage(ctx, chatID, models.ImageDraft(upload.FileURL)); err != nil {
		return models.PlantResult{}, err
	}

	var lat, lon *float64
	if coords, ok := o.Locator.Locate(ctx); ok {
		lat, lon = &coords.Latitude, &coords.Longitude
	}

	result, err := o.Client.IdentifyPlant(ctx, upload.FileURL, lat, lon)
	if err != nil {
		return models.PlantResult{}, err
	}

	if _, err := o.Store.AddMessage(ctx, chatID, models.PlantResultDraft(result)); err != nil {
		return models.PlantResult{}, err
	}
	return result, nil
}
