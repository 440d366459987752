package repl

import "github.com/charmbracelet/lipgloss"

// Theme holds the prompt colors.
type Theme struct {
	Primary   lipgloss.Color // title
	Prompt    lipgloss.Color
	Success   lipgloss.Color // sent commands
	Error     lipgloss.Color
	Text      lipgloss.Color
	TextMuted lipgloss.Color // counters, key hints
}

// DarkTheme is the default.
func DarkTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#fab283"),
		Prompt:    lipgloss.Color("#5c9cf5"),
		Success:   lipgloss.Color("#7fd88f"),
		Error:     lipgloss.Color("#e06c75"),
		Text:      lipgloss.Color("#eeeeee"),
		TextMuted: lipgloss.Color("#808080"),
	}
}

// LightTheme suits bright terminal backgrounds.
func LightTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#b35c00"),
		Prompt:    lipgloss.Color("#0550ae"),
		Success:   lipgloss.Color("#116329"),
		Error:     lipgloss.Color("#cf222e"),
		Text:      lipgloss.Color("#1f2328"),
		TextMuted: lipgloss.Color("#656d76"),
	}
}

// ThemeByName returns "light" or, for anything else, the dark theme.
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}

type styles struct {
	title  lipgloss.Style
	prompt lipgloss.Style
	sent   lipgloss.Style
	err    lipgloss.Style
	text   lipgloss.Style
	dim    lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		prompt: lipgloss.NewStyle().Bold(true).Foreground(t.Prompt),
		sent:   lipgloss.NewStyle().Foreground(t.Success),
		err:    lipgloss.NewStyle().Foreground(t.Error),
		text:   lipgloss.NewStyle().Foreground(t.Text),
		dim:    lipgloss.NewStyle().Foreground(t.TextMuted),
	}
}
