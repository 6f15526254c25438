package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func assertQuit(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg, got %T", cmd())
	}
}

func TestConfirmModelKeys(t *testing.T) {
	tests := []struct {
		key           tea.KeyMsg
		wantConfirmed bool
		wantCancelled bool
	}{
		{keyRunes("y"), true, false},
		{keyRunes("Y"), true, false},
		{keyRunes("n"), false, false},
		{keyRunes("N"), false, false},
		{tea.KeyMsg{Type: tea.KeyEnter}, false, false},
		{tea.KeyMsg{Type: tea.KeyEsc}, false, true},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			m := &confirmModel{question: "remove satellite?"}
			_, cmd := m.Update(tt.key)
			assertQuit(t, cmd)
			if m.confirmed != tt.wantConfirmed {
				t.Errorf("confirmed = %v, want %v", m.confirmed, tt.wantConfirmed)
			}
			if m.cancelled != tt.wantCancelled {
				t.Errorf("cancelled = %v, want %v", m.cancelled, tt.wantCancelled)
			}
		})
	}
}

func TestConfirmModelIgnoresOtherKeys(t *testing.T) {
	m := &confirmModel{question: "proceed?"}
	_, cmd := m.Update(keyRunes("x"))
	if cmd != nil {
		t.Error("unrelated keys must not quit")
	}
	if m.answered || m.cancelled {
		t.Error("unrelated keys must not answer")
	}
}

func TestConfirmModelViewClearsAfterAnswer(t *testing.T) {
	ConfigureInteraction(true) // ascii profile
	m := &confirmModel{question: "proceed?"}
	if view := m.View(); !strings.Contains(view, "proceed?") || !strings.Contains(view, "[y/N]") {
		t.Errorf("view = %q", view)
	}
	m.Update(keyRunes("y"))
	if view := m.View(); view != "" {
		t.Errorf("answered view should be empty, got %q", view)
	}
}

func TestPromptModelSubmit(t *testing.T) {
	ti := textinput.New()
	ti.Focus()
	m := &promptModel{label: "Overseer URL", textInput: ti}

	m.Update(keyRunes("http://overseer:8000"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assertQuit(t, cmd)

	if !m.submitted {
		t.Error("enter must submit")
	}
	if got := m.textInput.Value(); got != "http://overseer:8000" {
		t.Errorf("value = %q", got)
	}
	if view := m.View(); view != "" {
		t.Errorf("submitted view should be empty, got %q", view)
	}
}

func TestPromptModelCancel(t *testing.T) {
	ti := textinput.New()
	ti.Focus()
	m := &promptModel{label: "Overseer URL", textInput: ti}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assertQuit(t, cmd)
	if !m.cancelled {
		t.Error("esc must cancel")
	}
}

func TestPromptModelViewShowsLabel(t *testing.T) {
	ConfigureInteraction(true)
	ti := textinput.New()
	ti.Placeholder = "http://localhost:8000"
	ti.Focus()
	m := &promptModel{label: "Overseer URL", textInput: ti}
	if view := m.View(); !strings.Contains(view, "Overseer URL") {
		t.Errorf("view = %q", view)
	}
}
