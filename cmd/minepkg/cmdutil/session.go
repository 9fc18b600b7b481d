package cmdutil

import (
	"context"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/meza/minepkg/internal/catalog"
	"github.com/meza/minepkg/internal/config"
	"github.com/meza/minepkg/internal/cursemeta"
	"github.com/meza/minepkg/internal/environment"
	"github.com/meza/minepkg/internal/httpclient"
	"github.com/meza/minepkg/internal/logger"
	"github.com/meza/minepkg/internal/modinstall"
	"github.com/meza/minepkg/internal/resolver"
	"github.com/meza/minepkg/internal/telemetry"
	"github.com/meza/minepkg/internal/tui"
)

// Deps are the collaborators a command cannot build for itself. Zero values
// fall back to the real implementations.
type Deps struct {
	FS       afero.Fs
	Doer     httpclient.Doer
	Record   func(telemetry.CommandEvent)
	UseTUI   func(quiet bool, in io.Reader, out io.Writer) bool
	Download modinstall.Downloader
	// Fingerprint hashes an installed file. Nil skips fingerprinting.
	Fingerprint func(path string) uint32
}

func (deps Deps) withDefaults() Deps {
	if deps.FS == nil {
		deps.FS = afero.NewOsFs()
	}
	if deps.Record == nil {
		deps.Record = func(telemetry.CommandEvent) {}
	}
	if deps.UseTUI == nil {
		deps.UseTUI = tui.ShouldUseTUI
	}
	if deps.Download == nil {
		deps.Download = httpclient.DownloadFile
	}
	return deps
}

// Session is everything a single command invocation works with.
type Session struct {
	Options Options
	Config  config.Config
	Logger  *logger.Logger
	FS      afero.Fs
	Doer    httpclient.Doer
	In      io.Reader
	Out     io.Writer
	Deps    Deps

	started time.Time
}

func NewSession(cmd *cobra.Command, deps Deps) (*Session, error) {
	deps = deps.withDefaults()

	opts, err := OptionsFrom(cmd)
	if err != nil {
		return nil, err
	}

	log := logger.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.Quiet, opts.Debug)

	cfg, err := config.Load(deps.FS, opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	log.DebugFields("configuration loaded", map[string]any{
		"file":        cfg.File,
		"data_dir":    cfg.DataDir,
		"concurrency": cfg.Concurrency,
		"rate_limit":  cfg.RateLimit,
	})

	doer := deps.Doer
	if doer == nil {
		client := httpclient.NewRLClient(httpclient.NewLimiter(cfg.RateLimit))
		client.UserAgent = environment.UserAgent()
		doer = client
	}

	return &Session{
		Options: opts,
		Config:  cfg,
		Logger:  log,
		FS:      deps.FS,
		Doer:    doer,
		In:      cmd.InOrStdin(),
		Out:     cmd.OutOrStdout(),
		Deps:    deps,
		started: time.Now(),
	}, nil
}

func (session *Session) Interactive() bool {
	return session.Deps.UseTUI(session.Options.Quiet, session.In, session.Out)
}

func (session *Session) Store(sender httpclient.Sender) *catalog.Store {
	return catalog.NewStore(session.FS, session.Doer, catalog.Config{
		DataDir: session.Config.DataDir,
		FeedURL: session.Config.FeedURL,
	}, catalog.WithSender(sender))
}

func (session *Session) Metadata() *cursemeta.Client {
	return cursemeta.NewClient(session.Doer, session.Config.MetadataURL)
}

// LoadIndex reads the catalog snapshot, fetching it first when there is none.
func (session *Session) LoadIndex(ctx context.Context) (*catalog.Index, error) {
	progress := session.Progress("")
	db, err := session.Store(NewBridge(progress, session.Logger)).Load(ctx)
	if finishErr := progress.Finish(err); err == nil && finishErr != nil {
		return nil, finishErr
	}
	if err != nil {
		return nil, err
	}
	return catalog.NewIndex(db), nil
}

// Source is where the resolver reads mods and files from: the metadata API,
// or the catalog snapshot when running offline.
func (session *Session) Source(index *catalog.Index) resolver.Source {
	if session.Options.Offline {
		return index
	}
	return session.Metadata()
}

// Confirm asks the user and returns ErrAborted when they decline. --yes skips
// the question.
func (session *Session) Confirm(question string) error {
	if session.Options.Yes {
		return nil
	}
	accepted, err := tui.Confirm(session.In, session.Out, question)
	if err != nil {
		return err
	}
	if !accepted {
		return ErrAborted
	}
	return nil
}

// Record reports the finished command to telemetry.
func (session *Session) Record(command string, err error, extra map[string]any) {
	session.Deps.Record(telemetry.CommandEvent{
		Command:  command,
		Success:  err == nil,
		Duration: time.Since(session.started),
		Err:      err,
		Extra:    extra,
	})
}
