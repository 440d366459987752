// Package repl is an interactive prompt that forwards each entered line to
// gnuplot and forces a redraw.
package repl

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Sender is the part of a session the prompt needs.
type Sender interface {
	Command(text string) error
	Flush() error
}

// REPL configures the prompt.
type REPL struct {
	Sender  Sender
	Title   string
	NoFlush bool // skip the Flush after each command
	History int  // lines of history to show, default 10
	Theme   string
}

type entry struct {
	text string
	err  error
}

// model implements tea.Model
type model struct {
	sender  Sender
	title   string
	flush   bool
	keep    int
	st      styles
	input   textinput.Model
	history []entry
	sent    int
	width   int
	err     error // fatal write error, ends the program
}

func (r *REPL) newModel() *model {
	st := newStyles(ThemeByName(r.Theme))
	ti := textinput.New()
	ti.Placeholder = "gnuplot command, e.g. plot sin(x)"
	ti.Prompt = st.prompt.Render("gnuplot> ")
	ti.CharLimit = 4096
	ti.Width = 80
	ti.Focus()

	keep := r.History
	if keep <= 0 {
		keep = 10
	}
	title := r.Title
	if title == "" {
		title = "plotpipe"
	}
	return &model{
		sender: r.Sender,
		title:  title,
		flush:  !r.NoFlush,
		keep:   keep,
		st:     st,
		input:  ti,
	}
}

// Run blocks until the user quits or ctx is cancelled. It returns the
// write error that ended the session, if any.
func (r *REPL) Run(ctx context.Context) error {
	m := r.newModel()
	p := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return m.err
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 12 {
			m.input.Width = msg.Width - 12
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d", "esc":
			return m, tea.Quit
		case "enter":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	switch text {
	case "":
		return m, nil
	case "quit", "exit", "q":
		return m, tea.Quit
	}

	err := m.sender.Command(text)
	if err == nil && m.flush {
		err = m.sender.Flush()
	}
	m.history = append(m.history, entry{text: text, err: err})
	if len(m.history) > m.keep {
		m.history = m.history[len(m.history)-m.keep:]
	}
	if err != nil {
		// The pipe is gone; nothing else can be sent.
		m.err = err
		return m, tea.Quit
	}
	m.sent++
	return m, nil
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(m.st.title.Render(m.title))
	b.WriteString(m.st.dim.Render(fmt.Sprintf("  %d sent", m.sent)))
	b.WriteString("\n\n")
	for _, e := range m.history {
		if e.err != nil {
			b.WriteString(m.st.err.Render("✗ " + e.text + ": " + e.err.Error()))
		} else {
			b.WriteString(m.st.sent.Render("✓ ") + m.st.text.Render(e.text))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.st.dim.Render("enter: send  esc/ctrl+c: quit"))
	b.WriteString("\n")
	return b.String()
}
