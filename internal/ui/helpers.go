package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"plantid/internal/models"
	"plantid/internal/render"
)

// RefreshFromStore re-renders the conversation from the store snapshot. The
// expansion state in m.Sections applies only to the newest identification
// card; older cards always render collapsed.
func (m *Model) RefreshFromStore() {
	snap := m.Store.Snapshot()
	m.Err = snap.Err

	latest := latestPlantResultIndex(snap.Messages)

	rendered := make([]string, 0, len(snap.Messages))
	for i, msg := range snap.Messages {
		sections := render.Sections{}
		if i == latest {
			sections = m.Sections
		}

		if msg.Kind == models.KindText && msg.Sender == models.SenderAssistant && m.Renderer != nil {
			if md, err := m.Renderer.Render(msg.Text()); err == nil {
				rendered = append(rendered, render.Assistant(strings.TrimSpace(md), m.Viewport.Width))
				continue
			}
		}
		rendered = append(rendered, render.Message(msg, m.Viewport.Width, sections))
	}

	m.Messages = rendered
	m.UpdateViewport()
}

func latestPlantResultIndex(msgs []models.Message) int {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Kind == models.KindPlantResult {
			return i
		}
	}
	return -1
}

// HasPlantResult reports whether the visible history holds at least one
// identification card.
func (m *Model) HasPlantResult() bool {
	return latestPlantResultIndex(m.Store.Snapshot().Messages) != -1
}

// LatestPlantResult returns the newest identification payload in the visible
// history.
func (m *Model) LatestPlantResult() (models.PlantResult, bool) {
	msgs := m.Store.Snapshot().Messages
	idx := latestPlantResultIndex(msgs)
	if idx == -1 {
		return models.PlantResult{}, false
	}
	return msgs[idx].PlantResult()
}

func WrappedLineCount(value string, width int) int {
	if width <= 0 {
		return 1
	}
	lines := strings.Split(value, "\n")
	if len(lines) == 0 {
		return 1
	}
	count := 0
	for _, line := range lines {
		w := runewidth.StringWidth(line)
		if w == 0 {
			count++
			continue
		}
		count += (w-1)/width + 1
	}
	return count
}

func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

func RelativeTime(t time.Time) string {
	d := time.Since(t)
	if d < 0 {
		d = -d
	}
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	}
	if d < 24*time.Hour {
		hrs := int(d.Hours())
		if hrs == 1 {
			return "1 hr ago"
		}
		return fmt.Sprintf("%d hrs ago", hrs)
	}
	days := int(d.Hours() / 24)
	if days < 14 {
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
	weeks := days / 7
	if weeks == 1 {
		return "1 week ago"
	}
	return fmt.Sprintf("%d weeks ago", weeks)
}
