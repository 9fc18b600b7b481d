package tui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel asks a yes/no question. Enter, y and Y accept; any other key
// declines.
type ConfirmModel struct {
	question string
	answered bool
	accepted bool
}

func NewConfirmModel(question string) ConfirmModel {
	return ConfirmModel{question: question}
}

func (model ConfirmModel) Init() tea.Cmd { return nil }

func (model ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return model, nil
	}
	model.answered = true
	model.accepted = keyMsg.Type == tea.KeyEnter || keyMsg.String() == "y" || keyMsg.String() == "Y"
	return model, tea.Quit
}

func (model ConfirmModel) View() string {
	if model.answered {
		return ""
	}
	return QuestionStyle.Render(model.question) + " [Y/n] "
}

func (model ConfirmModel) Accepted() bool {
	return model.answered && model.accepted
}

// Confirm asks question on out and reads the answer from in. Without a
// terminal it reads one line, where an empty line, y or Y accept.
func Confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	if IsTerminalReader(in) && IsTerminalWriter(out) {
		final, err := tea.NewProgram(NewConfirmModel(question), ProgramOptions(in, out)...).Run()
		if err != nil {
			return false, err
		}
		model, ok := final.(ConfirmModel)
		return ok && model.Accepted(), nil
	}

	if _, err := fmt.Fprint(out, question+" [Y/n] "); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	if errors.Is(err, io.EOF) && line == "" {
		return false, nil
	}
	answer := strings.TrimRight(line, "\r\n")
	return answer == "" || answer == "y" || answer == "Y", nil
}
