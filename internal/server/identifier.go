package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"plantid/internal/geo"
	"plantid/internal/models"
)

// Identifier answers identification requests. Implementations return an
// error-shaped PlantResult (not a Go error) when the image simply could not
// be identified; Go errors are reserved for backend failures.
type Identifier interface {
	Identify(ctx context.Context, imageURL string, coords *geo.Coordinates) (models.PlantResult, error)
	Name() string
}

const identifyPrompt = `You are a botanist. Identify the plant in the image and answer with a single JSON object, no prose, using exactly these keys:
commonName, scientificName, confidence (0..1), kingdom, division, class, order, family, genus, species, goodSides (array of strings), badSides (array of strings), careInstructions, description.
If no plant is recognizable, answer {"error": "<short reason>"}.%s`

// VisionIdentifier asks a multimodal model over the OpenRouter API.
type VisionIdentifier struct {
	client openai.Client
	model  string
}

// NewVisionIdentifier builds an identifier for the given OpenRouter key and
// model id.
func NewVisionIdentifier(apiKey, model string) *VisionIdentifier {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL("https://openrouter.ai/api/v1"),
	)
	return &VisionIdentifier{client: client, model: model}
}

func (v *VisionIdentifier) Name() string { return "vision:" + v.model }

func (v *VisionIdentifier) Identify(ctx context.Context, imageURL string, coords *geo.Coordinates) (models.PlantResult, error) {
	locationHint := ""
	if coords != nil {
		locationHint = fmt.Sprintf(" The photo was taken near latitude %.4f, longitude %.4f; prefer species plausible for that region.",
			coords.Latitude, coords.Longitude)
	}

	resp, err := v.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: v.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(fmt.Sprintf(identifyPrompt, locationHint)),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: imageURL}),
			}),
		},
	})
	if err != nil {
		return models.PlantResult{}, err
	}
	if len(resp.Choices) == 0 {
		return models.PlantResult{}, fmt.Errorf("empty response from model")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var result models.PlantResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &result); err != nil {
		return models.PlantResult{}, fmt.Errorf("parse model answer: %w", err)
	}
	return result, nil
}

// CatalogIdentifier answers from a small built-in catalog. It keeps the
// server usable for development and demos without any API key.
type CatalogIdentifier struct{}

func (CatalogIdentifier) Name() string { return "catalog" }

func (CatalogIdentifier) Identify(_ context.Context, imageURL string, _ *geo.Coordinates) (models.PlantResult, error) {
	entry := catalog[hashString(imageURL)%uint32(len(catalog))]
	entry.Note = "Sample result - configure OPENROUTER_API_KEY for live identification"
	return entry, nil
}

func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

var catalog = []models.PlantResult{
	{
		CommonName:     "Weeping Fig",
		ScientificName: "Ficus benjamina",
		Confidence:     0.92,
		Kingdom:        "Plantae",
		Division:       "Tracheophyta",
		Class:          "Magnoliopsida",
		Order:          "Rosales",
		Family:         "Moraceae",
		Genus:          "Ficus",
		Species:        "F. benjamina",
		GoodSides: []string{
			"Excellent air-purifying houseplant",
			"Tolerates a wide range of indoor conditions",
		},
		BadSides: []string{
			"Sap is mildly toxic to cats and dogs",
			"Drops leaves when moved or draughted",
		},
		CareInstructions: "Bright indirect light. Water when the top 2-3cm of soil is dry. Avoid relocating the plant once it has settled.",
		Description:      "A popular evergreen houseplant with slender arching branches and glossy leaves, native to Asia and Australia.",
	},
	{
		CommonName:     "Snake Plant",
		ScientificName: "Dracaena trifasciata",
		Confidence:     0.88,
		Kingdom:        "Plantae",
		Division:       "Tracheophyta",
		Class:          "Liliopsida",
		Order:          "Asparagales",
		Family:         "Asparagaceae",
		Genus:          "Dracaena",
		Species:        "D. trifasciata",
		GoodSides: []string{
			"Releases oxygen at night",
			"Survives weeks without watering",
		},
		BadSides: []string{
			"Mildly toxic if ingested",
		},
		CareInstructions: "Tolerates low light. Water sparingly; let soil dry out completely between waterings.",
		Description:      "A hardy succulent with stiff, upright sword-shaped leaves banded in green and yellow.",
	},
	{
		CommonName:     "Common Dandelion",
		ScientificName: "Taraxacum officinale",
		Confidence:     0.83,
		Kingdom:        "Plantae",
		Division:       "Tracheophyta",
		Class:          "Magnoliopsida",
		Order:          "Asterales",
		Family:         "Asteraceae",
		Genus:          "Taraxacum",
		Species:        "T. officinale",
		GoodSides: []string{
			"Leaves and flowers are edible",
			"Important early-season food for pollinators",
		},
		BadSides: []string{
			"Spreads aggressively in lawns",
		},
		CareInstructions: "Thrives without care in full sun on most soils.",
		Description:      "A familiar wildflower with a yellow composite bloom that matures into a spherical seed head.",
	},
}
