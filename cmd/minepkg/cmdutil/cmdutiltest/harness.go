// Package cmdutiltest runs minepkg commands against an in-memory filesystem
// and a local catalog server.
package cmdutiltest

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/meza/minepkg/cmd/minepkg/cmdutil"
	"github.com/meza/minepkg/internal/i18n"
	"github.com/meza/minepkg/internal/telemetry"
	"github.com/meza/minepkg/testutil"
)

const (
	DataDir     = "/data"
	Fingerprint = uint32(1234567)
)

type Harness struct {
	Server *testutil.CatalogServer
	FS     afero.Fs
	Doer   *testutil.HostRewriteDoer

	mu     sync.Mutex
	events []telemetry.CommandEvent
}

// New points the configuration at a fresh catalog server. Every request,
// downloads included, is rewritten to that server.
func New(t *testing.T) *Harness {
	t.Helper()
	server := testutil.NewCatalogServer(t)
	t.Setenv(i18n.TestModeEnv, "true")
	t.Setenv("MINEPKG_DATA_DIR", DataDir)
	t.Setenv("MINEPKG_FEED_URL", server.FeedURL())
	t.Setenv("MINEPKG_METADATA_URL", server.URL)

	return &Harness{
		Server: server,
		FS:     afero.NewMemMapFs(),
		Doer:   testutil.MustNewHostRewriteDoer(server.URL, server.Client()),
	}
}

func (h *Harness) Deps() cmdutil.Deps {
	return cmdutil.Deps{
		FS:   h.FS,
		Doer: h.Doer,
		Record: func(event telemetry.CommandEvent) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.events = append(h.events, event)
		},
		UseTUI:      func(bool, io.Reader, io.Writer) bool { return false },
		Fingerprint: func(string) uint32 { return Fingerprint },
	}
}

// Run executes cmd below a root carrying the global flags and returns
// everything written to stdout and stderr.
func (h *Harness) Run(cmd *cobra.Command, input string, args ...string) (string, error) {
	root := &cobra.Command{Use: "minepkg", SilenceUsage: true, SilenceErrors: true}
	cmdutil.RegisterGlobalFlags(root)
	root.AddCommand(cmd)

	var out bytes.Buffer
	root.SetIn(strings.NewReader(input))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{cmd.Name()}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *Harness) Events() []telemetry.CommandEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]telemetry.CommandEvent(nil), h.events...)
}
