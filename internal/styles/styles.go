package styles

import "github.com/charmbracelet/lipgloss"

var (
	ContentWidth = 54
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#81C784")).
			Padding(0, 1)

	UserLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#90CAF9")).
			Bold(true).
			Padding(0, 1).
			MarginRight(1)

	UserMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#E0E0E0"}).
			PaddingLeft(2).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("#90CAF9"))

	AssistantLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#81C784")).
				Bold(true).
				Padding(0, 1).
				MarginRight(1)

	AssistantMsgStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#E0E0E0"}).
				PaddingLeft(2).
				BorderLeft(true).
				BorderStyle(lipgloss.ThickBorder()).
				BorderForeground(lipgloss.Color("#81C784"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF9A9A")).
			Bold(true)

	InputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#81C784")).
			Padding(0, 1)

	WelcomeArtStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#1B5E20", Dark: "#A5D6A7"}).
			Bold(true)

	WelcomeSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#545454")).
				Italic(true)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#81C784")).
			Padding(1, 2)

	ModalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#81C784")).
			Width(ContentWidth).
			MarginBottom(1)

	ModalItemStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Width(ContentWidth)

	ModalSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Width(ContentWidth).
				Background(lipgloss.Color("#33691E")).
				Foreground(lipgloss.Color("#FFFFFF"))

	HintColor = lipgloss.Color("#545454")

	// Plant result card
	ResultCardStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("#81C784"))

	ResultErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#EF9A9A")).
				PaddingLeft(2).
				BorderLeft(true).
				BorderStyle(lipgloss.ThickBorder()).
				BorderForeground(lipgloss.Color("#EF9A9A"))

	PlantNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#1B5E20", Dark: "#C8E6C9"})

	ScientificNameStyle = lipgloss.NewStyle().
				Italic(true).
				Foreground(lipgloss.Color("#888888"))

	ConfidenceHighStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#A5D6A7")).
				Bold(true)

	ConfidenceMidStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFF59D")).
				Bold(true)

	ConfidenceLowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#EF9A9A")).
				Bold(true)

	NoteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90CAF9"))

	DescriptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#BDBDBD"})

	LinkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90CAF9")).
			Underline(true)

	SectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#1a1a2e", Dark: "#E0E0E0"})

	SectionBodyStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#BDBDBD"})

	StatusBarStyle = lipgloss.NewStyle().
			BorderTop(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#333333")).
			Padding(0, 1)
)
