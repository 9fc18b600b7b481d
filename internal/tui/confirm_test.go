package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmModelKeys(t *testing.T) {
	tests := []struct {
		name     string
		key      tea.KeyMsg
		accepted bool
	}{
		{name: "enter", key: tea.KeyMsg{Type: tea.KeyEnter}, accepted: true},
		{name: "y", key: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}, accepted: true},
		{name: "Y", key: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Y")}, accepted: true},
		{name: "n", key: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}, accepted: false},
		{name: "escape", key: tea.KeyMsg{Type: tea.KeyEsc}, accepted: false},
		{name: "ctrl+c", key: tea.KeyMsg{Type: tea.KeyCtrlC}, accepted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := teatest.NewTestModel(t, NewConfirmModel("Install 2 mods?"), teatest.WithInitialTermSize(60, 10))
			teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
				return bytes.Contains(bts, []byte("Install 2 mods?"))
			}, teatest.WithDuration(2*time.Second))

			tm.Send(tt.key)
			tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

			final, ok := tm.FinalModel(t).(ConfirmModel)
			require.True(t, ok)
			assert.Equal(t, tt.accepted, final.Accepted())
		})
	}
}

func TestConfirmModelIgnoresOtherMessages(t *testing.T) {
	updated, cmd := NewConfirmModel("?").Update(tea.WindowSizeMsg{Width: 10})

	assert.Nil(t, cmd)
	assert.False(t, updated.(ConfirmModel).Accepted())
	assert.Contains(t, updated.View(), "[Y/n]")
}

func TestConfirmWithoutTerminal(t *testing.T) {
	tests := []struct {
		input    string
		accepted bool
	}{
		{input: "\n", accepted: true},
		{input: "y\n", accepted: true},
		{input: "Y\r\n", accepted: true},
		{input: "yes\n", accepted: false},
		{input: "n\n", accepted: false},
		{input: "", accepted: false},
		{input: "y", accepted: true},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			accepted, err := Confirm(strings.NewReader(tt.input), &out, "Proceed?")

			require.NoError(t, err)
			assert.Equal(t, tt.accepted, accepted)
			assert.Equal(t, "Proceed? [Y/n] ", out.String())
		})
	}
}
