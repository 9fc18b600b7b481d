package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrInterrupted = errors.New("interrupted")

const maxBarWidth = 60

// ProgressUpdateMsg moves the bar. Detail replaces the line under it when set.
type ProgressUpdateMsg struct {
	Ratio  float64
	Detail string
}

// ProgressTitleMsg replaces the title above the bar.
type ProgressTitleMsg string

// ProgressDoneMsg ends the program.
type ProgressDoneMsg struct {
	Err error
}

type ProgressModel struct {
	title  string
	detail string
	ratio  float64
	bar    progress.Model
	done   bool
	err    error
}

func NewProgressModel(title string) ProgressModel {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = maxBarWidth
	return ProgressModel{title: title, bar: bar}
}

func (model ProgressModel) Init() tea.Cmd { return nil }

func (model ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		model.bar.Width = min(max(msg.Width-10, 10), maxBarWidth)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			model.done = true
			model.err = ErrInterrupted
			return model, tea.Quit
		}
	case ProgressTitleMsg:
		model.title = string(msg)
		model.ratio = 0
		model.detail = ""
	case ProgressUpdateMsg:
		model.ratio = min(max(msg.Ratio, 0), 1)
		if msg.Detail != "" {
			model.detail = msg.Detail
		}
	case ProgressDoneMsg:
		model.done = true
		model.err = msg.Err
		if msg.Err == nil {
			model.ratio = 1
		}
		return model, tea.Quit
	}
	return model, nil
}

func (model ProgressModel) View() string {
	if model.done {
		return ""
	}
	var view strings.Builder
	view.WriteString(TitleStyle.Render(model.title))
	view.WriteString("\n")
	view.WriteString(model.bar.ViewAs(model.ratio))
	view.WriteString(" ")
	view.WriteString(percent(model.ratio))
	if model.detail != "" {
		view.WriteString("\n")
		view.WriteString(MutedStyle.Render(model.detail))
	}
	view.WriteString("\n")
	return view.String()
}

func (model ProgressModel) Ratio() float64 { return model.ratio }

func (model ProgressModel) Err() error { return model.err }

// ProgressRun drives a ProgressModel on its own goroutine.
type ProgressRun struct {
	program *tea.Program
	done    chan struct{}
	final   tea.Model
	runErr  error
}

func StartProgress(title string, in io.Reader, out io.Writer) *ProgressRun {
	run := &ProgressRun{done: make(chan struct{})}
	run.program = tea.NewProgram(NewProgressModel(title), ProgramOptions(in, out)...)
	go func() {
		defer close(run.done)
		run.final, run.runErr = run.program.Run()
	}()
	return run
}

func (run *ProgressRun) Send(msg tea.Msg) {
	run.program.Send(msg)
}

// Finish stops the program and waits for it to exit. It returns the error of
// the program itself, or ErrInterrupted when the user pressed ctrl+c.
func (run *ProgressRun) Finish(err error) error {
	run.program.Send(ProgressDoneMsg{Err: err})
	<-run.done
	if run.runErr != nil {
		return run.runErr
	}
	if model, ok := run.final.(ProgressModel); ok && errors.Is(model.err, ErrInterrupted) {
		return ErrInterrupted
	}
	return nil
}

func percent(ratio float64) string {
	return fmt.Sprintf("%3.0f%%", ratio*100)
}
