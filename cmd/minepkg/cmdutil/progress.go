package cmdutil

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/meza/minepkg/internal/catalog"
	"github.com/meza/minepkg/internal/httpclient"
	"github.com/meza/minepkg/internal/i18n"
	"github.com/meza/minepkg/internal/logger"
	"github.com/meza/minepkg/internal/modinstall"
	"github.com/meza/minepkg/internal/tui"
)

// Progress receives view updates and is finished exactly once.
type Progress interface {
	httpclient.Sender
	Finish(err error) error
}

type silentProgress struct{}

func (silentProgress) Send(tea.Msg) {}

func (silentProgress) Finish(error) error { return nil }

// Progress starts a progress bar when the session is interactive and a silent
// stand-in otherwise.
func (session *Session) Progress(title string) Progress {
	if !session.Interactive() {
		return silentProgress{}
	}
	return tui.StartProgress(title, session.In, session.Out)
}

// Bridge turns catalog and installer messages into progress view updates and
// log lines.
type Bridge struct {
	mu       sync.Mutex
	progress Progress
	log      *logger.Logger
}

func NewBridge(progress Progress, log *logger.Logger) *Bridge {
	return &Bridge{progress: progress, log: log}
}

// Send is called from concurrent downloads.
func (bridge *Bridge) Send(msg tea.Msg) {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()

	switch msg := msg.(type) {
	case catalog.RefreshStartedMsg:
		if msg.Missing {
			bridge.log.Log(i18n.T("catalog.missing"), false)
		}
		bridge.progress.Send(tui.ProgressTitleMsg(i18n.T("catalog.refreshing")))
	case catalog.RefreshProgressMsg:
		ratio := 0.0
		if msg.Total > 0 {
			ratio = float64(msg.Downloaded) / float64(msg.Total)
		}
		bridge.progress.Send(tui.ProgressUpdateMsg{Ratio: ratio, Detail: FormatBytes(msg.Downloaded)})
	case catalog.RefreshDoneMsg:
		bridge.log.Debug("catalog snapshot written to " + msg.Path)
		bridge.progress.Send(tui.ProgressUpdateMsg{Ratio: 1})
	case modinstall.FileProgressMsg:
		bridge.progress.Send(tui.ProgressUpdateMsg{Ratio: msg.Aggregate.Ratio(), Detail: msg.Name})
	case modinstall.FileDoneMsg:
		bridge.log.DebugFields("installed", map[string]any{
			"file":  msg.Outcome.Path,
			"bytes": msg.Outcome.Bytes,
		})
		bridge.progress.Send(tui.ProgressUpdateMsg{
			Ratio:  msg.Aggregate.Ratio(),
			Detail: fmt.Sprintf("%d / %d", msg.Aggregate.Done, msg.Aggregate.Files),
		})
	case modinstall.FileErrMsg:
		bridge.log.Debug(fmt.Sprintf("%s failed: %v", msg.Name, msg.Err))
	}
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	value := float64(bytes)
	suffixes := []string{"KiB", "MiB", "GiB", "TiB"}
	index := -1
	for value >= unit && index < len(suffixes)-1 {
		value /= unit
		index++
	}
	return fmt.Sprintf("%.1f %s", value, suffixes[index])
}
