package models

import (
	"encoding/json"
	"time"
)

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

const (
	KindText        = "text"
	KindImage       = "image"
	KindPlantResult = "plant_result"
)

// Chat is a named conversation container. UpdatedAt and MessageCount are
// owned by the server and mirrored locally.
type Chat struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// Message is one entry in a chat's history. Content is a variant keyed on
// Kind: a JSON string for text and image messages, a PlantResult object for
// plant_result messages. Messages are immutable once created; the server
// assigns ID and Timestamp.
type Message struct {
	ID        string          `json:"id"`
	ChatID    string          `json:"chat_id,omitempty"`
	Sender    string          `json:"sender"`
	Kind      string          `json:"type"`
	Content   json.RawMessage `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
}

// Text returns the string content of a text or image message.
func (m Message) Text() string {
	var s string
	if err := json.Unmarshal(m.Content, &s); err != nil {
		return string(m.Content)
	}
	return s
}

// PlantResult decodes the content of a plant_result message.
func (m Message) PlantResult() (PlantResult, bool) {
	if m.Kind != KindPlantResult {
		return PlantResult{}, false
	}
	var res PlantResult
	if err := json.Unmarshal(m.Content, &res); err != nil {
		return PlantResult{}, false
	}
	return res, true
}

// Draft is a client-composed message before the server has assigned an id
// and timestamp.
type Draft struct {
	Sender  string          `json:"sender"`
	Kind    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

func TextDraft(sender, text string) Draft {
	content, _ := json.Marshal(text)
	return Draft{Sender: sender, Kind: KindText, Content: content}
}

func ImageDraft(fileURL string) Draft {
	content, _ := json.Marshal(fileURL)
	return Draft{Sender: SenderUser, Kind: KindImage, Content: content}
}

func PlantResultDraft(res PlantResult) Draft {
	content, _ := json.Marshal(res)
	return Draft{Sender: SenderAssistant, Kind: KindPlantResult, Content: content}
}

// PlantResult is the structured output of an identification call. The store
// routes it without interpreting it; only the Error field is inspected, to
// pick the error layout over the result layout.
type PlantResult struct {
	CommonName       string   `json:"commonName,omitempty"`
	ScientificName   string   `json:"scientificName,omitempty"`
	Confidence       float64  `json:"confidence,omitempty"`
	Kingdom          string   `json:"kingdom,omitempty"`
	Division         string   `json:"division,omitempty"`
	Class            string   `json:"class,omitempty"`
	Order            string   `json:"order,omitempty"`
	Family           string   `json:"family,omitempty"`
	Genus            string   `json:"genus,omitempty"`
	Species          string   `json:"species,omitempty"`
	GoodSides        []string `json:"goodSides,omitempty"`
	BadSides         []string `json:"badSides,omitempty"`
	CareInstructions string   `json:"careInstructions,omitempty"`
	Description      string   `json:"description,omitempty"`
	URL              string   `json:"url,omitempty"`
	Image            string   `json:"image,omitempty"`
	Note             string   `json:"note,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// IsError reports whether the result carries an identification failure
// instead of taxonomy data.
func (r PlantResult) IsError() bool { return r.Error != "" }

// UploadResult is the response shape of both upload endpoints.
type UploadResult struct {
	Success bool   `json:"success"`
	FileURL string `json:"file_url"`
	Error   string `json:"error,omitempty"`
}
