// Package render projects messages into their terminal presentation. It is
// pure: message in, styled text out. Section expansion state is owned by the
// caller and passed in per render.
package render

import (
	"fmt"
	"strings"

	"plantid/internal/models"
	"plantid/internal/styles"
)

// Section identifies one collapsible block of a plant result.
type Section int

const (
	SectionTaxonomy Section = iota
	SectionBenefits
	SectionWarnings
	SectionCare
	sectionCount
)

var sectionTitles = [sectionCount]string{
	"Taxonomy",
	"Benefits & Uses",
	"Warnings & Precautions",
	"Care Instructions",
}

// Sections tracks which blocks of a plant result are expanded. The zero
// value is all collapsed, the default.
type Sections [sectionCount]bool

// Toggle flips one section.
func (s *Sections) Toggle(sec Section) {
	if sec >= 0 && sec < sectionCount {
		s[sec] = !s[sec]
	}
}

// Message renders one message for the conversation view.
func Message(msg models.Message, width int, sections Sections) string {
	switch msg.Kind {
	case models.KindImage:
		return imageMessage(msg, width)
	case models.KindPlantResult:
		res, ok := msg.PlantResult()
		if !ok {
			return userBubble("(unreadable identification result)", width)
		}
		return PlantResult(res, width, sections)
	default:
		return textMessage(msg, width)
	}
}

func textMessage(msg models.Message, width int) string {
	if msg.Sender == models.SenderUser {
		return userBubble(msg.Text(), width)
	}
	label := styles.AssistantLabelStyle.Render("PLANTID")
	body := styles.AssistantMsgStyle.Width(width - 4).Render(msg.Text())
	return fmt.Sprintf("%s\n%s", label, body)
}

// Assistant wraps already-rendered assistant content in the standard label
// and border treatment. Callers use it when they have passed the content
// through a markdown renderer first.
func Assistant(body string, width int) string {
	label := styles.AssistantLabelStyle.Render("PLANTID")
	msg := styles.AssistantMsgStyle.Width(width - 4).Render(body)
	return fmt.Sprintf("%s\n%s", label, msg)
}

func userBubble(content string, width int) string {
	label := styles.UserLabelStyle.Render("YOU")
	body := styles.UserMsgStyle.Width(width - 4).Render(content)
	return fmt.Sprintf("%s\n%s", label, body)
}

func imageMessage(msg models.Message, width int) string {
	ref := msg.Text()
	if ref == "" {
		ref = "(image unavailable)"
	}
	label := styles.UserLabelStyle.Render("YOU")
	body := styles.UserMsgStyle.Width(width - 4).Render(
		fmt.Sprintf("🖼  %s\nPlant image uploaded for identification", ref))
	return fmt.Sprintf("%s\n%s", label, body)
}

// PlantResult renders the identification card: the error layout when the
// payload carries an error, otherwise the result layout with collapsible
// sections.
func PlantResult(res models.PlantResult, width int, sections Sections) string {
	label := styles.AssistantLabelStyle.Render("PLANTID")
	if res.IsError() {
		body := styles.ResultErrorStyle.Width(width - 4).Render(
			fmt.Sprintf("⚠ Identification Failed\n%s", res.Error))
		return fmt.Sprintf("%s\n%s", label, body)
	}

	var sb strings.Builder
	sb.WriteString(styles.PlantNameStyle.Render(res.CommonName))
	sb.WriteString("\n")
	sb.WriteString(styles.ScientificNameStyle.Render(res.ScientificName))
	sb.WriteString("\n")
	sb.WriteString(confidenceBadge(res.Confidence))
	if res.Note != "" {
		sb.WriteString(" " + styles.NoteStyle.Render(res.Note))
	}
	sb.WriteString("\n")

	if res.Description != "" {
		sb.WriteString("\n" + styles.DescriptionStyle.Width(width-8).Render(res.Description) + "\n")
		if res.URL != "" {
			sb.WriteString(styles.LinkStyle.Render("Learn more: "+res.URL) + "\n")
		}
	}

	sb.WriteString(renderSection(SectionTaxonomy, sections, taxonomyBody(res), width))
	if len(res.GoodSides) > 0 {
		sb.WriteString(renderSection(SectionBenefits, sections, bulletList(res.GoodSides), width))
	}
	if len(res.BadSides) > 0 {
		sb.WriteString(renderSection(SectionWarnings, sections, bulletList(res.BadSides), width))
	}
	if res.CareInstructions != "" {
		sb.WriteString(renderSection(SectionCare, sections, res.CareInstructions, width))
	}

	body := styles.ResultCardStyle.Width(width - 4).Render(strings.TrimRight(sb.String(), "\n"))
	return fmt.Sprintf("%s\n%s", label, body)
}

func renderSection(sec Section, sections Sections, body string, width int) string {
	arrow := "▸"
	if sections[sec] {
		arrow = "▾"
	}
	out := "\n" + styles.SectionHeaderStyle.Render(fmt.Sprintf("%s [%d] %s", arrow, int(sec)+1, sectionTitles[sec])) + "\n"
	if sections[sec] {
		out += styles.SectionBodyStyle.Width(width - 10).Render(body) + "\n"
	}
	return out
}

func taxonomyBody(res models.PlantResult) string {
	rows := []struct{ name, value string }{
		{"Kingdom", res.Kingdom},
		{"Division", res.Division},
		{"Class", res.Class},
		{"Order", res.Order},
		{"Family", res.Family},
		{"Genus", res.Genus},
		{"Species", res.Species},
	}
	var lines []string
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%-9s %s", row.name+":", row.value))
	}
	return strings.Join(lines, "\n")
}

func bulletList(items []string) string {
	var lines []string
	for _, it := range items {
		lines = append(lines, "• "+it)
	}
	return strings.Join(lines, "\n")
}

func confidenceBadge(confidence float64) string {
	text := fmt.Sprintf("%.1f%% confidence", confidence*100)
	switch {
	case confidence >= 0.8:
		return styles.ConfidenceHighStyle.Render(text)
	case confidence >= 0.6:
		return styles.ConfidenceMidStyle.Render(text)
	default:
		return styles.ConfidenceLowStyle.Render(text)
	}
}

// ClipboardText flattens a result into the plain-text form used for
// copy-to-clipboard.
func ClipboardText(res models.PlantResult) string {
	orNone := func(items []string) string {
		if len(items) == 0 {
			return "None listed"
		}
		var lines []string
		for _, it := range items {
			lines = append(lines, "- "+it)
		}
		return strings.Join(lines, "\n")
	}
	care := res.CareInstructions
	if care == "" {
		care = "Not available"
	}
	return fmt.Sprintf(`Plant Identification Result:
Common Name: %s
Scientific Name: %s
Confidence: %.1f%%

Taxonomy:
- Species: %s
- Genus: %s
- Family: %s
- Order: %s
- Class: %s
- Division: %s
- Kingdom: %s

Benefits:
%s

Warnings:
%s

Care Instructions:
%s`,
		res.CommonName, res.ScientificName, res.Confidence*100,
		res.Species, res.Genus, res.Family, res.Order, res.Class, res.Division, res.Kingdom,
		orNone(res.GoodSides), orNone(res.BadSides), care)
}

type responseRule struct {
	match func(string) bool
	reply string
}

func keywordRule(reply string, words ...string) responseRule {
	return responseRule{
		match: func(input string) bool {
			for _, w := range words {
				if strings.Contains(input, w) {
					return true
				}
			}
			return false
		},
		reply: reply,
	}
}

// responseRules are evaluated top to bottom; first match wins and the final
// fallback always matches.
var responseRules = []responseRule{
	keywordRule("Hello! I'm here to help you identify plants. You can upload a photo of any plant, and I'll provide detailed information about it including its name, characteristics, benefits, and care instructions.",
		"hello", "hi"),
	keywordRule("I can help you identify plants from photos! Here's what I can do:\n\n• Identify plant species from images\n• Provide scientific and common names\n• Share information about plant benefits and potential risks\n• Give care instructions\n• Answer questions about plants\n\nJust upload an image to get started!",
		"help"),
	keywordRule("To identify a plant, please upload a clear photo. Make sure the plant is well-lit and the key features (leaves, flowers, stems) are visible for the best identification results.",
		"identify", "plant"),
	keywordRule("Plant care varies greatly between species. Once you upload a photo and I identify your plant, I can provide specific care instructions including watering, lighting, soil, and temperature requirements.",
		"care", "water", "light"),
	{match: func(string) bool { return true },
		reply: "I'm a plant identification assistant! Upload a photo of any plant, and I'll help you identify it and provide detailed information. You can also ask me questions about plant care, benefits, or general plant-related topics."},
}

// Reply picks the canned assistant answer for a free-form question asked
// before any image has been analyzed.
func Reply(userInput string) string {
	lowered := strings.ToLower(userInput)
	for _, rule := range responseRules {
		if rule.match(lowered) {
			return rule.reply
		}
	}
	return responseRules[len(responseRules)-1].reply
}
