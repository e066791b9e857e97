package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"plantid/internal/identify"
	"plantid/internal/models"
	"plantid/internal/render"
	"plantid/internal/store"
)

var ModalWidth = 60

type ErrMsg error

type (
	ChatsLoadedMsg struct{}
	ChatOpenedMsg  struct{}
	ChatCreatedMsg struct{ Chat models.Chat }
	ChatRenamedMsg struct{}
	ChatDeletedMsg struct{}
)

// ReplySentMsg arrives after a typed message and its assistant reply have
// both been persisted.
type ReplySentMsg struct{}

// SendFailedMsg restores the drafted input so the user can retry.
type SendFailedMsg struct{ Input string }

type IdentifyDoneMsg struct{ Result models.PlantResult }

// IdentifyFailedMsg keeps the upload modal open with an inline reason.
type IdentifyFailedMsg struct{ Reason string }

type CopiedMsg struct{ Err error }

type Model struct {
	Viewport  viewport.Model
	TextInput textarea.Model
	Spinner   spinner.Model
	Renderer  *glamour.TermRenderer

	Store        *store.Store
	Orchestrator *identify.Orchestrator

	Messages []string
	Loading  bool
	Err      string
	Status   string

	WindowWidth  int
	WindowHeight int

	SidebarOpen  bool
	SidebarIdx   int
	SidebarChats []models.Chat
	RenameActive bool
	RenameInput  textinput.Model

	UploadOpen  bool
	UploadInput textinput.Model
	UploadErr   string

	ShortcutsOpen bool

	// Sections applies to the most recent identification card only; older
	// cards render collapsed.
	Sections render.Sections
}
