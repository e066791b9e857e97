package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantid/internal/models"
)

func sampleResult() models.PlantResult {
	return models.PlantResult{
		CommonName:       "Weeping Fig",
		ScientificName:   "Ficus benjamina",
		Confidence:       0.92,
		Kingdom:          "Plantae",
		Family:           "Moraceae",
		Genus:            "Ficus",
		Species:          "F. benjamina",
		GoodSides:        []string{"Air purifying"},
		BadSides:         []string{"Toxic to pets"},
		CareInstructions: "Bright indirect light.",
		Description:      "A popular evergreen houseplant.",
	}
}

func TestReplyKeywordRouting(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"greeting", "Hello there", "Hello! I'm here to help"},
		{"hi inside word counts", "hi, what can you do", "Hello! I'm here to help"},
		{"hi inside this counts too", "can you identify this?", "Hello! I'm here to help"},
		{"help", "I need some help", "Here's what I can do"},
		{"identify", "please identify my fern", "please upload a clear photo"},
		{"plant routes to identify rule", "what plant do I have", "please upload a clear photo"},
		{"care", "how much water does it need", "Plant care varies greatly"},
		{"light", "does it like light?", "Plant care varies greatly"},
		{"fallback", "tell me a joke", "plant identification assistant"},
		{"case insensitive", "HELLO", "Hello! I'm here to help"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, Reply(tc.input), tc.want)
		})
	}
}

func TestReplyFirstMatchWins(t *testing.T) {
	// "hello" and "help" both appear; the greeting rule is evaluated first.
	assert.Contains(t, Reply("hello, I need help"), "Hello! I'm here to help")
	// "plant care" hits the identify rule before the care rule.
	assert.Contains(t, Reply("plant care tips"), "please upload a clear photo")
}

func TestPlantResultErrorLayout(t *testing.T) {
	out := PlantResult(models.PlantResult{Error: "No plant detected"}, 80, Sections{})
	assert.Contains(t, out, "Identification Failed")
	assert.Contains(t, out, "No plant detected")
	assert.NotContains(t, out, "Taxonomy")
}

func TestPlantResultCollapsedByDefault(t *testing.T) {
	out := PlantResult(sampleResult(), 80, Sections{})

	assert.Contains(t, out, "Weeping Fig")
	assert.Contains(t, out, "Ficus benjamina")
	assert.Contains(t, out, "92.0% confidence")
	assert.Contains(t, out, "A popular evergreen houseplant.")

	// Headers visible, bodies hidden.
	assert.Contains(t, out, "[1] Taxonomy")
	assert.Contains(t, out, "[2] Benefits & Uses")
	assert.Contains(t, out, "[3] Warnings & Precautions")
	assert.Contains(t, out, "[4] Care Instructions")
	assert.NotContains(t, out, "Kingdom")
	assert.NotContains(t, out, "Air purifying")
	assert.NotContains(t, out, "Bright indirect light.")
}

func TestPlantResultExpandedSections(t *testing.T) {
	var sections Sections
	sections.Toggle(SectionTaxonomy)
	sections.Toggle(SectionWarnings)

	out := PlantResult(sampleResult(), 80, sections)

	assert.Contains(t, out, "Plantae")
	assert.Contains(t, out, "Moraceae")
	assert.Contains(t, out, "Toxic to pets")
	assert.NotContains(t, out, "Air purifying", "benefits stay collapsed")
}

func TestSectionsToggle(t *testing.T) {
	var s Sections
	require.False(t, s[SectionCare])
	s.Toggle(SectionCare)
	assert.True(t, s[SectionCare])
	s.Toggle(SectionCare)
	assert.False(t, s[SectionCare])
}

func TestPlantResultOmitsEmptySections(t *testing.T) {
	res := sampleResult()
	res.GoodSides = nil
	res.BadSides = nil
	res.CareInstructions = ""

	out := PlantResult(res, 80, Sections{})
	assert.Contains(t, out, "[1] Taxonomy")
	assert.NotContains(t, out, "Benefits & Uses")
	assert.NotContains(t, out, "Warnings & Precautions")
	assert.NotContains(t, out, "Care Instructions")
}

func TestConfidenceBadgeThresholds(t *testing.T) {
	assert.Contains(t, confidenceBadge(0.95), "95.0% confidence")
	assert.Contains(t, confidenceBadge(0.7), "70.0% confidence")
	assert.Contains(t, confidenceBadge(0.3), "30.0% confidence")
}

func TestMessageDispatch(t *testing.T) {
	user := models.Message{Sender: models.SenderUser, Kind: models.KindText, Content: json.RawMessage(`"what is this"`)}
	assert.Contains(t, Message(user, 80, Sections{}), "what is this")
	assert.Contains(t, Message(user, 80, Sections{}), "YOU")

	assistant := models.Message{Sender: models.SenderAssistant, Kind: models.KindText, Content: json.RawMessage(`"an answer"`)}
	assert.Contains(t, Message(assistant, 80, Sections{}), "PLANTID")

	image := models.Message{Sender: models.SenderUser, Kind: models.KindImage, Content: json.RawMessage(`"http://files/u1.jpg"`)}
	out := Message(image, 80, Sections{})
	assert.Contains(t, out, "http://files/u1.jpg")
	assert.Contains(t, out, "uploaded for identification")

	content, err := json.Marshal(sampleResult())
	require.NoError(t, err)
	card := models.Message{Sender: models.SenderAssistant, Kind: models.KindPlantResult, Content: content}
	assert.Contains(t, Message(card, 80, Sections{}), "Weeping Fig")
}

func TestClipboardText(t *testing.T) {
	out := ClipboardText(sampleResult())

	assert.True(t, strings.HasPrefix(out, "Plant Identification Result:"))
	assert.Contains(t, out, "Common Name: Weeping Fig")
	assert.Contains(t, out, "Scientific Name: Ficus benjamina")
	assert.Contains(t, out, "Confidence: 92.0%")
	assert.Contains(t, out, "- Genus: Ficus")
	assert.Contains(t, out, "- Air purifying")
	assert.Contains(t, out, "- Toxic to pets")
	assert.Contains(t, out, "Bright indirect light.")
}

func TestClipboardTextEmptyFields(t *testing.T) {
	out := ClipboardText(models.PlantResult{CommonName: "Mystery Plant"})

	assert.Contains(t, out, "Benefits:\nNone listed")
	assert.Contains(t, out, "Warnings:\nNone listed")
	assert.Contains(t, out, "Care Instructions:\nNot available")
}
