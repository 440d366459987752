package repl

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeSender struct {
	commands []string
	flushes  int
	err      error
}

func (f *fakeSender) Command(text string) error {
	if f.err != nil {
		return f.err
	}
	f.commands = append(f.commands, text)
	return nil
}

func (f *fakeSender) Flush() error {
	f.flushes++
	return nil
}

func enter(m *model, text string) tea.Cmd {
	m.input.SetValue(text)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestSubmit_SendsAndFlushes(t *testing.T) {
	f := &fakeSender{}
	m := (&REPL{Sender: f}).newModel()

	if cmd := enter(m, "  plot sin(x)  "); cmd != nil {
		t.Errorf("expected no command after a successful send")
	}
	if len(f.commands) != 1 || f.commands[0] != "plot sin(x)" {
		t.Fatalf("commands = %q", f.commands)
	}
	if f.flushes != 1 {
		t.Errorf("flushes = %d, want 1", f.flushes)
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}
	if !strings.Contains(m.View(), "plot sin(x)") {
		t.Errorf("history missing from view:\n%s", m.View())
	}
}

func TestSubmit_NoFlush(t *testing.T) {
	f := &fakeSender{}
	m := (&REPL{Sender: f, NoFlush: true}).newModel()
	enter(m, "set grid")
	if f.flushes != 0 {
		t.Errorf("flushes = %d, want 0", f.flushes)
	}
}

func TestSubmit_EmptyLineIgnored(t *testing.T) {
	f := &fakeSender{}
	m := (&REPL{Sender: f}).newModel()
	enter(m, "   ")
	if len(f.commands) != 0 {
		t.Errorf("empty line sent: %q", f.commands)
	}
}

func TestSubmit_QuitWords(t *testing.T) {
	for _, word := range []string{"quit", "exit", "q"} {
		f := &fakeSender{}
		m := (&REPL{Sender: f}).newModel()
		cmd := enter(m, word)
		if cmd == nil {
			t.Fatalf("%q: expected quit command", word)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%q: expected tea.QuitMsg", word)
		}
		if len(f.commands) != 0 {
			t.Errorf("%q forwarded to gnuplot", word)
		}
	}
}

func TestSubmit_WriteErrorEndsSession(t *testing.T) {
	f := &fakeSender{err: errors.New("broken pipe")}
	m := (&REPL{Sender: f}).newModel()

	cmd := enter(m, "replot")
	if cmd == nil {
		t.Fatal("expected quit after write error")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if m.err == nil {
		t.Error("write error not recorded")
	}
	if !strings.Contains(m.View(), "broken pipe") {
		t.Errorf("error missing from view:\n%s", m.View())
	}
}

func TestHistory_IsBounded(t *testing.T) {
	f := &fakeSender{}
	m := (&REPL{Sender: f, History: 2}).newModel()
	for _, c := range []string{"a", "b", "c"} {
		enter(m, c)
	}
	if len(m.history) != 2 || m.history[0].text != "b" || m.history[1].text != "c" {
		t.Errorf("history = %+v", m.history)
	}
	if m.sent != 3 {
		t.Errorf("sent = %d, want 3", m.sent)
	}
}

func TestKeys_Quit(t *testing.T) {
	m := (&REPL{Sender: &fakeSender{}}).newModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestThemeByName(t *testing.T) {
	if got := ThemeByName("light"); got != LightTheme() {
		t.Errorf("light = %+v", got)
	}
	for _, name := range []string{"", "dark", "solarized"} {
		if got := ThemeByName(name); got != DarkTheme() {
			t.Errorf("%q = %+v, want dark", name, got)
		}
	}
}
