package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"plantid/internal/api"
	"plantid/internal/identify"
	"plantid/internal/models"
	"plantid/internal/render"
	"plantid/internal/store"
	"plantid/internal/styles"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case spinner.TickMsg:
		m.Spinner, spCmd = m.Spinner.Update(msg)
		if m.Loading {
			m.UpdateViewport()
		}
		return m, spCmd

	case tea.KeyMsg:
		if m.SidebarOpen {
			return m.updateSidebar(msg)
		}
		if m.UploadOpen {
			return m.updateUploadModal(msg)
		}
		if m.ShortcutsOpen {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc", "enter", "ctrl+s":
				m.ShortcutsOpen = false
				return m, nil
			}
			return m, nil
		}

		if isNewlineShortcut(msg) {
			m.TextInput.InsertString("\n")
			m.updateInputLayout()
			return m, nil
		}

		// Section toggles act on the latest identification card, but only
		// while nothing is being typed so digits still reach the input.
		if m.TextInput.Value() == "" {
			if sec, ok := sectionKey(msg.String()); ok && m.HasPlantResult() {
				m.Sections.Toggle(sec)
				m.RefreshFromStore()
				return m, nil
			}
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyCtrlN:
			if m.Loading {
				return m, nil
			}
			m.Loading = true
			m.UpdateViewport()
			return m, tea.Batch(m.CreateChat(store.DefaultChatTitle), m.Spinner.Tick)

		case tea.KeyCtrlH:
			m.SidebarOpen = true
			m.SidebarIdx = 0
			m.RenameActive = false
			m.ShortcutsOpen = false
			return m, m.LoadChats()

		case tea.KeyCtrlU:
			m.UploadOpen = true
			m.UploadErr = ""
			m.UploadInput.Reset()
			m.UploadInput.Focus()
			m.TextInput.Blur()
			return m, m.UploadInput.Cursor.BlinkCmd()

		case tea.KeyCtrlY:
			if res, ok := m.LatestPlantResult(); ok && !res.IsError() {
				return m, copyResultCmd(res)
			}
			return m, nil

		case tea.KeyCtrlS:
			m.ShortcutsOpen = true
			return m, nil

		case tea.KeyCtrlL:
			m.Store.ClearError()
			m.Status = ""
			m.RefreshFromStore()
			return m, nil

		case tea.KeyEnter:
			if m.Loading {
				return m, nil
			}
			input := strings.TrimSpace(m.TextInput.Value())
			if input == "" {
				return m, nil
			}
			m.TextInput.Reset()
			m.updateInputLayout()
			m.Loading = true
			m.Status = ""
			m.UpdateViewport()
			return m, tea.Batch(m.SendChatMessage(input), m.Spinner.Tick)
		}

	case ChatsLoadedMsg:
		m.SidebarChats = m.Store.Snapshot().Chats
		if m.SidebarIdx >= len(m.SidebarChats) {
			m.SidebarIdx = 0
		}
		m.RefreshFromStore()
		return m, nil

	case ChatOpenedMsg:
		m.Loading = false
		m.Sections = render.Sections{}
		m.RefreshFromStore()
		return m, nil

	case ChatCreatedMsg:
		m.Loading = false
		m.Sections = render.Sections{}
		m.SidebarChats = m.Store.Snapshot().Chats
		m.RefreshFromStore()
		return m, nil

	case ChatRenamedMsg, ChatDeletedMsg:
		m.Loading = false
		m.RenameActive = false
		m.SidebarChats = m.Store.Snapshot().Chats
		if m.SidebarIdx >= len(m.SidebarChats) {
			m.SidebarIdx = 0
		}
		m.RefreshFromStore()
		return m, nil

	case ReplySentMsg:
		m.Loading = false
		m.RefreshFromStore()
		return m, nil

	case SendFailedMsg:
		m.Loading = false
		m.TextInput.SetValue(msg.Input)
		m.updateInputLayout()
		m.RefreshFromStore()
		return m, nil

	case IdentifyDoneMsg:
		m.Loading = false
		m.UploadOpen = false
		m.TextInput.Focus()
		m.Sections = render.Sections{}
		m.RefreshFromStore()
		return m, nil

	case IdentifyFailedMsg:
		m.Loading = false
		m.UploadOpen = true
		m.UploadErr = msg.Reason
		m.RefreshFromStore()
		return m, nil

	case CopiedMsg:
		if msg.Err != nil {
			m.Status = styles.ErrorStyle.Render("Copy failed: " + msg.Err.Error())
		} else {
			m.Status = "Result copied to clipboard"
		}
		return m, nil

	case ErrMsg:
		m.Loading = false
		m.RefreshFromStore()
		return m, nil

	case tea.WindowSizeMsg:
		m.WindowWidth = msg.Width
		m.WindowHeight = msg.Height

		ModalWidth = msg.Width - 10
		if ModalWidth > 60 {
			ModalWidth = 60
		}
		if ModalWidth < 30 {
			ModalWidth = 30
		}
		styles.ContentWidth = ModalWidth - 6

		chatWidth := msg.Width - 2
		m.Viewport.Width = chatWidth - 2

		m.updateInputLayout()
		glamourStyle := "dark"
		if !lipgloss.HasDarkBackground() {
			glamourStyle = "light"
		}
		m.Renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath(glamourStyle),
			glamour.WithWordWrap(chatWidth-8),
		)
		m.RefreshFromStore()
		return m, tea.Batch(tiCmd, vpCmd)
	}

	m.TextInput, tiCmd = m.TextInput.Update(msg)
	m.updateInputLayout()

	// Filter terminal background color queries that leak into the input.
	val := m.TextInput.Value()
	if strings.Contains(val, "]11;rgb:") || strings.Contains(val, "1;rgb:") || strings.Contains(val, "[1;1R") {
		m.TextInput.Reset()
	}

	m.Viewport, vpCmd = m.Viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

func (m *Model) updateSidebar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.RenameActive {
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.RenameActive = false
			return m, nil
		case "enter":
			if len(m.SidebarChats) == 0 {
				m.RenameActive = false
				return m, nil
			}
			chat := m.SidebarChats[m.SidebarIdx]
			title := m.RenameInput.Value()
			m.Loading = true
			return m, tea.Batch(m.RenameChat(chat.ID, title), m.Spinner.Tick)
		}
		var cmd tea.Cmd
		m.RenameInput, cmd = m.RenameInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "ctrl+h":
		m.SidebarOpen = false
		m.TextInput.Focus()
		return m, nil
	case "up", "k":
		if len(m.SidebarChats) == 0 {
			return m, nil
		}
		m.SidebarIdx--
		if m.SidebarIdx < 0 {
			m.SidebarIdx = len(m.SidebarChats) - 1
		}
		return m, nil
	case "down", "j":
		if len(m.SidebarChats) == 0 {
			return m, nil
		}
		m.SidebarIdx++
		if m.SidebarIdx >= len(m.SidebarChats) {
			m.SidebarIdx = 0
		}
		return m, nil
	case "enter":
		if len(m.SidebarChats) == 0 {
			return m, nil
		}
		chat := m.SidebarChats[m.SidebarIdx]
		m.SidebarOpen = false
		m.TextInput.Focus()
		m.Loading = true
		return m, tea.Batch(m.OpenChat(chat.ID), m.Spinner.Tick)
	case "n":
		m.SidebarOpen = false
		m.TextInput.Focus()
		m.Loading = true
		return m, tea.Batch(m.CreateChat(store.DefaultChatTitle), m.Spinner.Tick)
	case "r":
		if len(m.SidebarChats) == 0 {
			return m, nil
		}
		m.RenameActive = true
		m.RenameInput.SetValue(m.SidebarChats[m.SidebarIdx].Title)
		m.RenameInput.CursorEnd()
		m.RenameInput.Focus()
		return m, m.RenameInput.Cursor.BlinkCmd()
	case "d":
		if len(m.SidebarChats) == 0 {
			return m, nil
		}
		chat := m.SidebarChats[m.SidebarIdx]
		m.Loading = true
		return m, tea.Batch(m.DeleteChat(chat.ID), m.Spinner.Tick)
	}
	return m, nil
}

func (m *Model) updateUploadModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "ctrl+u":
		m.UploadOpen = false
		m.UploadErr = ""
		m.TextInput.Focus()
		return m, nil
	case "enter":
		if m.Loading {
			return m, nil
		}
		path := strings.TrimSpace(m.UploadInput.Value())
		if path == "" {
			m.UploadErr = "Enter the path to an image file"
			return m, nil
		}
		m.UploadErr = ""
		m.Loading = true
		return m, tea.Batch(m.IdentifyImage(path), m.Spinner.Tick)
	}
	var cmd tea.Cmd
	m.UploadInput, cmd = m.UploadInput.Update(msg)
	return m, cmd
}

func isNewlineShortcut(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "shift+enter", "shift+return", "ctrl+j", "ctrl+enter", "alt+enter":
		return true
	default:
		return false
	}
}

func sectionKey(key string) (render.Section, bool) {
	switch key {
	case "1":
		return render.SectionTaxonomy, true
	case "2":
		return render.SectionBenefits, true
	case "3":
		return render.SectionWarnings, true
	case "4":
		return render.SectionCare, true
	}
	return 0, false
}

func (m *Model) updateInputLayout() {
	if m.WindowWidth == 0 || m.WindowHeight == 0 {
		return
	}

	inputWidth := m.WindowWidth - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	contentWidth := inputWidth - 2
	if contentWidth < 1 {
		contentWidth = 1
	}

	maxInputHeight := 6
	lineCount := WrappedLineCount(m.TextInput.Value(), contentWidth)
	if lineCount < 1 {
		lineCount = 1
	}
	if lineCount > maxInputHeight {
		lineCount = maxInputHeight
	}

	m.TextInput.MaxHeight = maxInputHeight
	m.TextInput.SetWidth(inputWidth)
	m.TextInput.SetHeight(lineCount)

	inputBoxHeight := m.TextInput.Height() + 2
	reserved := inputBoxHeight + 5
	viewportHeight := m.WindowHeight - reserved
	if viewportHeight < 5 {
		viewportHeight = 5
	}
	m.Viewport.Height = viewportHeight
}

func (m *Model) LoadChats() tea.Cmd {
	return func() tea.Msg {
		if err := m.Store.LoadChats(context.Background()); err != nil {
			return ErrMsg(err)
		}
		return ChatsLoadedMsg{}
	}
}

func (m *Model) OpenChat(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.Store.SelectChat(context.Background(), id); err != nil {
			return ErrMsg(err)
		}
		return ChatOpenedMsg{}
	}
}

func (m *Model) CreateChat(title string) tea.Cmd {
	return func() tea.Msg {
		chat, err := m.Store.CreateChat(context.Background(), title)
		if err != nil {
			return ErrMsg(err)
		}
		return ChatCreatedMsg{Chat: chat}
	}
}

func (m *Model) RenameChat(id, title string) tea.Cmd {
	return func() tea.Msg {
		if err := m.Store.UpdateChatTitle(context.Background(), id, title); err != nil {
			return ErrMsg(err)
		}
		return ChatRenamedMsg{}
	}
}

func (m *Model) DeleteChat(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.Store.DeleteChat(context.Background(), id); err != nil {
			return ErrMsg(err)
		}
		return ChatDeletedMsg{}
	}
}

// SendChatMessage persists the typed message and its assistant reply. Both
// writes target the same chat; a failure at any step hands the input back.
func (m *Model) SendChatMessage(input string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		chatID := m.Store.CurrentChatID()
		if chatID == "" {
			chat, err := m.Store.CreateChat(ctx, store.DefaultChatTitle)
			if err != nil {
				return SendFailedMsg{Input: input}
			}
			chatID = chat.ID
		}

		if _, err := m.Store.AddMessage(ctx, chatID, models.TextDraft(models.SenderUser, input)); err != nil {
			return SendFailedMsg{Input: input}
		}
		if _, err := m.Store.AddMessage(ctx, chatID, models.TextDraft(models.SenderAssistant, render.Reply(input))); err != nil {
			return SendFailedMsg{Input: input}
		}
		return ReplySentMsg{}
	}
}

func (m *Model) IdentifyImage(path string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.Orchestrator.IdentifyFile(context.Background(), path)
		if err != nil {
			return IdentifyFailedMsg{Reason: failureReason(err)}
		}
		return IdentifyDoneMsg{Result: result}
	}
}

func failureReason(err error) string {
	var vErr *identify.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Reason
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func copyResultCmd(res models.PlantResult) tea.Cmd {
	return func() tea.Msg {
		return CopiedMsg{Err: clipboard.WriteAll(render.ClipboardText(res))}
	}
}
