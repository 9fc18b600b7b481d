package telemetry

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/meza/minepkg/internal/constants"
	"github.com/meza/minepkg/internal/environment"
	"github.com/meza/minepkg/internal/i18n"
	"github.com/posthog/posthog-go"
)

const endpoint = "https://eu.i.posthog.com"

type Client interface {
	io.Closer
	Enqueue(posthog.Message) error
}

// CommandEvent describes one finished command invocation.
type CommandEvent struct {
	Command  string
	Success  bool
	Duration time.Duration
	Err      error
	Extra    map[string]any
}

// Recorder sends usage events. A nil client makes every call a no-op.
type Recorder struct {
	client     Client
	distinctID string
	closeOnce  sync.Once
}

func New(client Client, distinctID string) *Recorder {
	return &Recorder{client: client, distinctID: distinctID}
}

// Disabled returns a recorder that drops everything.
func Disabled() *Recorder {
	return &Recorder{}
}

// NewDefault builds the posthog backed recorder unless telemetry was opted out,
// the binary carries no key, or the process runs under tests.
func NewDefault() *Recorder {
	if !Enabled() {
		return Disabled()
	}
	client, err := posthog.NewWithConfig(environment.PosthogAPIKey(), posthog.Config{Endpoint: endpoint})
	if err != nil {
		return Disabled()
	}
	return New(client, MachineID())
}

func Enabled() bool {
	if environment.TelemetryDisabled() {
		return false
	}
	if os.Getenv(i18n.TestModeEnv) != "" {
		return false
	}
	key := environment.PosthogAPIKey()
	return key != "" && !strings.HasPrefix(key, "REPL_")
}

func MachineID() string {
	if id, ok := os.LookupEnv("MACHINE_ID"); ok {
		return id
	}
	id, err := machineid.ProtectedID(constants.AppName)
	if err != nil {
		return "unknown"
	}
	return id
}

func (r *Recorder) Enabled() bool {
	return r != nil && r.client != nil
}

func (r *Recorder) Capture(event string, properties map[string]any) {
	if !r.Enabled() {
		return
	}
	_ = r.client.Enqueue(posthog.Capture{
		Event:      event,
		DistinctId: r.distinctID,
		Properties: properties,
	})
}

func (r *Recorder) CaptureCommand(event CommandEvent) {
	properties := map[string]any{
		"type":        "command",
		"success":     event.Success,
		"duration_ms": event.Duration.Milliseconds(),
		"version":     environment.AppVersion(),
	}
	if event.Err != nil {
		properties["error"] = event.Err.Error()
	}
	for key, value := range event.Extra {
		properties[key] = value
	}
	r.Capture(event.Command, properties)
}

// Close flushes queued events. It is safe to call more than once.
func (r *Recorder) Close() error {
	if !r.Enabled() {
		return nil
	}
	var err error
	r.closeOnce.Do(func() {
		err = r.client.Close()
	})
	return err
}
