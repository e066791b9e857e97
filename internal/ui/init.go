package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"plantid/internal/api"
	"plantid/internal/identify"
	"plantid/internal/store"
)

func InitialModel(client *api.Client) Model {
	st := store.New(client)

	ti := textarea.New()
	ti.Placeholder = "Ask about plants or upload a photo..."
	ti.Prompt = "❯ "
	ti.ShowLineNumbers = false
	ti.CharLimit = 0
	ti.MaxHeight = 6
	ti.SetHeight(2)
	ti.SetWidth(80)
	ti.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("#81C784")).Bold(true)
	ti.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("#81C784")).Bold(true)
	ti.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color("#545454"))
	ti.BlurredStyle.Placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color("#545454"))
	ti.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ti.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ti.Focus()

	rename := textinput.New()
	rename.Placeholder = "New title"
	rename.CharLimit = 120

	upload := textinput.New()
	upload.Placeholder = "Path to a plant photo (jpeg/png/gif/webp)"
	upload.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#81C784"))

	vp := viewport.New(60, 15)

	return Model{
		TextInput:    ti,
		RenameInput:  rename,
		UploadInput:  upload,
		Viewport:     vp,
		Spinner:      sp,
		Store:        st,
		Orchestrator: identify.New(client, st),
		Messages:     []string{},
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.TextInput.Cursor.BlinkCmd(),
		m.Spinner.Tick,
		m.LoadChats(),
	)
}

func NewProgram(client *api.Client) *tea.Program {
	m := InitialModel(client)
	return tea.NewProgram(&m, tea.WithAltScreen())
}
