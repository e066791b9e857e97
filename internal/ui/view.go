package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"plantid/internal/styles"
)

func (m *Model) RenderSidebar() string {
	title := styles.ModalTitleStyle.Render(fmt.Sprintf("Your Chats (%d)", len(m.SidebarChats)))

	var body string
	if len(m.SidebarChats) == 0 {
		body = styles.ModalItemStyle.Render(lipgloss.NewStyle().Foreground(styles.HintColor).Render("No chats yet"))
	} else {
		items := make([]string, 0, len(m.SidebarChats))
		current := m.Store.CurrentChatID()
		for i, chat := range m.SidebarChats {
			isSelected := i == m.SidebarIdx
			cursor := "  "
			if isSelected {
				cursor = "> "
			}
			marker := " "
			if chat.ID == current {
				marker = "●"
			}
			timeStr := RelativeTime(chat.UpdatedAt)
			availableWidth := styles.ContentWidth - 2 - len(cursor) - 2 - 1 - len(timeStr)
			name := TruncateRunes(chat.Title, availableWidth)

			itemContent := fmt.Sprintf("%s%s %s %s", cursor, marker, name,
				lipgloss.NewStyle().Foreground(styles.HintColor).Render(timeStr))
			if isSelected {
				items = append(items, styles.ModalSelectedStyle.Render(itemContent))
			} else {
				items = append(items, styles.ModalItemStyle.Render(itemContent))
			}
		}
		body = lipgloss.JoinVertical(lipgloss.Left, items...)
	}

	parts := []string{title, body}

	if m.RenameActive {
		renameBox := lipgloss.NewStyle().
			Width(styles.ContentWidth).
			PaddingTop(1).
			Render("Rename: " + m.RenameInput.View())
		parts = append(parts, renameBox)
	}

	if m.Err != "" {
		parts = append(parts, lipgloss.NewStyle().
			Width(styles.ContentWidth).
			PaddingTop(1).
			Render(styles.ErrorStyle.Render(m.Err)))
	}

	hintText := "↑/↓: navigate • Enter: open • n: new • r: rename • d: delete • Esc: close"
	if m.RenameActive {
		hintText = "Enter: save • Esc: cancel"
	}
	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render(hintText)

	parts = append(parts, hint)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) RenderUploadModal() string {
	title := styles.ModalTitleStyle.Render("Identify a Plant")

	prompt := lipgloss.NewStyle().
		Width(styles.ContentWidth).
		Render(m.UploadInput.View())

	parts := []string{title, prompt}

	if m.Loading {
		parts = append(parts, lipgloss.NewStyle().
			Width(styles.ContentWidth).
			PaddingTop(1).
			Render(m.Spinner.View()+" Identifying..."))
	}

	if m.UploadErr != "" {
		parts = append(parts, lipgloss.NewStyle().
			Width(styles.ContentWidth).
			PaddingTop(1).
			Render(styles.ErrorStyle.Render(m.UploadErr)))
	}

	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render("Enter: upload & identify • Esc: close")

	parts = append(parts, hint)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) RenderShortcutsModal() string {
	title := styles.ModalTitleStyle.Render("Keyboard Shortcuts")

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Ctrl+C", "Quit"},
		{"Ctrl+N", "New Chat"},
		{"Ctrl+H", "Chat List"},
		{"Ctrl+U", "Upload & Identify Photo"},
		{"Ctrl+Y", "Copy Latest Result"},
		{"Ctrl+L", "Dismiss Error"},
		{"1-4", "Toggle Result Sections (empty input)"},
		{"Ctrl+S", "View Shortcuts (this menu)"},
	}

	var items []string
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFCC80")).
		Bold(true).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E0E0E0"))

	for _, s := range shortcuts {
		line := fmt.Sprintf("%s %s", keyStyle.Render(s.key), descStyle.Render(s.desc))
		items = append(items, styles.ModalItemStyle.Render(line))
	}

	listContent := lipgloss.JoinVertical(lipgloss.Left, items...)
	content := lipgloss.JoinVertical(lipgloss.Left, title, listContent)

	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render("Esc/Enter: close")

	return lipgloss.JoinVertical(lipgloss.Left, content, hint)
}

func (m *Model) RenderBottomBar() string {
	badge := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#33691E")).
		Padding(0, 1).
		Render("PLANTID")

	chatName := "no chat selected"
	snap := m.Store.Snapshot()
	for _, c := range snap.Chats {
		if c.ID == snap.CurrentChatID {
			chatName = fmt.Sprintf("%s (%d messages)", c.Title, len(snap.Messages))
			break
		}
	}
	chat := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render(TruncateRunes(chatName, 40))

	var status string
	switch {
	case snap.Err != "":
		status = styles.ErrorStyle.Render(TruncateRunes(snap.Err, 50)) +
			lipgloss.NewStyle().Foreground(styles.HintColor).Render(" (^L to dismiss)")
	case m.Status != "":
		status = lipgloss.NewStyle().Foreground(lipgloss.Color("#A5D6A7")).Render(m.Status)
	case m.Loading:
		status = m.Spinner.View() + " working..."
	}

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#555555")).
		Render("Help: ^S")

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, badge, "  ", chat)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Center, status, "  ", help)

	availableWidth := m.WindowWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide) - 2
	if availableWidth < 0 {
		availableWidth = 0
	}
	spacer := strings.Repeat(" ", availableWidth)

	bar := lipgloss.JoinHorizontal(lipgloss.Center, leftSide, spacer, rightSide)

	return styles.StatusBarStyle.Width(m.WindowWidth).Render(bar)
}

func GetWelcomeScreen(width, height int) string {
	art := `
██████╗ ██╗      █████╗ ███╗   ██╗████████╗██╗██████╗
██╔══██╗██║     ██╔══██╗████╗  ██║╚══██╔══╝██║██╔══██╗
██████╔╝██║     ███████║██╔██╗ ██║   ██║   ██║██║  ██║
██╔═══╝ ██║     ██╔══██║██║╚██╗██║   ██║   ██║██║  ██║
██║     ███████╗██║  ██║██║ ╚████║   ██║   ██║██████╔╝
╚═╝     ╚══════╝╚═╝  ╚═╝╚═╝  ╚═══╝   ╚═╝   ╚═╝╚═════╝
`
	subtitle := "Upload a photo of any plant and I'll tell you what it is."
	hint := "Ctrl+U to upload • Ctrl+H for your chats • Ctrl+S for shortcuts"

	styledArt := styles.WelcomeArtStyle.Render(art)
	styledSubtitle := styles.WelcomeSubtitleStyle.Render(subtitle)
	styledHint := lipgloss.NewStyle().Foreground(styles.HintColor).Render(hint)

	content := lipgloss.JoinVertical(lipgloss.Center, styledArt, "", styledSubtitle, "", styledHint)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) UpdateViewport() {
	if len(m.Messages) == 0 && !m.Loading {
		m.Viewport.SetContent(GetWelcomeScreen(m.Viewport.Width, m.Viewport.Height))
		return
	}

	content := strings.Join(m.Messages, "\n\n")
	if m.Loading && !m.UploadOpen {
		loadingMsg := fmt.Sprintf("%s%s", m.Spinner.View(), " Thinking...")
		if len(m.Messages) > 0 {
			content = content + "\n\n" + loadingMsg
		} else {
			content = loadingMsg
		}
	}
	m.Viewport.SetContent(content)
	m.Viewport.GotoBottom()
}

func (m *Model) View() string {
	inputWidth := m.WindowWidth - 4
	inputBox := styles.InputBoxStyle.Width(inputWidth).Render(m.TextInput.View())

	chatContent := lipgloss.JoinVertical(lipgloss.Center,
		styles.TitleStyle.Render("PLANTID"),
		"",
		m.Viewport.View(),
		"",
		inputBox,
	)
	chatArea := lipgloss.PlaceHorizontal(m.WindowWidth, lipgloss.Center, chatContent)
	bottomBar := m.RenderBottomBar()

	content := lipgloss.JoinVertical(lipgloss.Left, chatArea, bottomBar)

	if m.SidebarOpen {
		modal := styles.ModalStyle.Width(ModalWidth).Render(m.RenderSidebar())
		return lipgloss.Place(m.WindowWidth, m.WindowHeight, lipgloss.Center, lipgloss.Center, modal)
	}

	if m.UploadOpen {
		modal := styles.ModalStyle.Width(ModalWidth).Render(m.RenderUploadModal())
		return lipgloss.Place(m.WindowWidth, m.WindowHeight, lipgloss.Center, lipgloss.Center, modal)
	}

	if m.ShortcutsOpen {
		modal := styles.ModalStyle.Width(ModalWidth).Render(m.RenderShortcutsModal())
		return lipgloss.Place(m.WindowWidth, m.WindowHeight, lipgloss.Center, lipgloss.Center, modal)
	}

	return content
}
