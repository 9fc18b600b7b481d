package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/joho/godotenv/autoload"
	curseforgeFingerprint "github.com/meza/curseforge-fingerprint-go"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/minepkg/cmd/minepkg"
	"github.com/meza/minepkg/cmd/minepkg/cmdutil"
	"github.com/meza/minepkg/internal/lifecycle"
	"github.com/meza/minepkg/internal/perf"
	"github.com/meza/minepkg/internal/telemetry"
)

const (
	perfLifecycleStartup  = "app.lifecycle.startup"
	perfLifecycleExecute  = "app.lifecycle.execute"
	perfLifecycleShutdown = "app.lifecycle.shutdown"
)

type shutdownTrigger string

const (
	shutdownTriggerExit   shutdownTrigger = "exit"
	shutdownTriggerSignal shutdownTrigger = "signal"
)

type runDeps struct {
	execute           func(ctx context.Context) error
	telemetryInit     func()
	telemetryShutdown func(ctx context.Context)
	watch             func(parent context.Context) (context.Context, func())
	register          func(handler lifecycle.Handler) lifecycle.HandlerID
	unregister        func(id lifecycle.HandlerID)
	received          func() os.Signal
	fs                afero.Fs
	args              []string
	cwd               string
	stderr            io.Writer
}

func main() {
	var recorder *telemetry.Recorder
	watcher := lifecycle.New()
	cwd, _ := os.Getwd()
	args := os.Args[1:]

	os.Exit(runWithDeps(runDeps{
		execute: func(ctx context.Context) error {
			root := minepkg.Command(cmdutil.Deps{
				Record:      recorder.CaptureCommand,
				Fingerprint: curseforgeFingerprint.GetFingerprintFor,
			})
			root.SetArgs(args)
			return root.ExecuteContext(ctx)
		},
		telemetryInit: func() {
			recorder = telemetry.NewDefault()
		},
		telemetryShutdown: func(context.Context) {
			_ = recorder.Close()
		},
		watch:      watcher.Watch,
		register:   watcher.Register,
		unregister: watcher.Unregister,
		received:   watcher.Received,
		fs:         afero.NewOsFs(),
		args:       args,
		cwd:        cwd,
		stderr:     os.Stderr,
	}))
}

func runWithDeps(deps runDeps) int {
	deps = deps.withDefaults()
	perfConfig := perfExportConfigFromArgs(deps.args, deps.cwd)

	_, startup := perf.StartSpan(context.Background(), perfLifecycleStartup)
	deps.telemetryInit()
	ctx, stopWatching := deps.watch(context.Background())
	defer stopWatching()

	var once sync.Once
	shutdown := func(trigger shutdownTrigger, sig os.Signal) {
		once.Do(func() {
			attributes := []attribute.KeyValue{attribute.String("trigger", string(trigger))}
			if sig != nil {
				attributes = append(attributes, attribute.String("signal", sig.String()))
			}
			shutdownCtx, span := perf.StartSpan(context.Background(), perfLifecycleShutdown, perf.WithAttributes(attributes...))
			deps.telemetryShutdown(shutdownCtx)
			span.End()
			exportPerf(deps, perfConfig)
		})
	}

	handlerID := deps.register(func(sig os.Signal) {
		shutdown(shutdownTriggerSignal, sig)
	})
	startup.End()

	executeCtx, execute := perf.StartSpan(ctx, perfLifecycleExecute)
	err := deps.execute(executeCtx)
	execute.EndWithError(err)

	shutdown(shutdownTriggerExit, nil)
	deps.unregister(handlerID)

	if sig := deps.received(); sig != nil {
		return lifecycle.ExitCode(sig)
	}
	if err != nil {
		_, _ = fmt.Fprintf(deps.stderr, "error: %s\n", err)
		return 1
	}
	return 0
}

func (deps runDeps) withDefaults() runDeps {
	if deps.telemetryInit == nil {
		deps.telemetryInit = func() {}
	}
	if deps.telemetryShutdown == nil {
		deps.telemetryShutdown = func(context.Context) {}
	}
	if deps.watch == nil {
		deps.watch = func(parent context.Context) (context.Context, func()) {
			ctx, cancel := context.WithCancel(parent)
			return ctx, cancel
		}
	}
	if deps.register == nil {
		deps.register = func(lifecycle.Handler) lifecycle.HandlerID { return 0 }
	}
	if deps.unregister == nil {
		deps.unregister = func(lifecycle.HandlerID) {}
	}
	if deps.received == nil {
		deps.received = func() os.Signal { return nil }
	}
	if deps.fs == nil {
		deps.fs = afero.NewOsFs()
	}
	if deps.stderr == nil {
		deps.stderr = os.Stderr
	}
	return deps
}

func exportPerf(deps runDeps, config perfExportConfig) {
	if !config.enabled {
		return
	}
	path, err := perf.ExportToFile(deps.fs, config.outDir)
	if err != nil {
		_, _ = fmt.Fprintf(deps.stderr, "perf export failed: %s\n", err)
		return
	}
	if config.debug {
		_, _ = fmt.Fprintf(deps.stderr, "perf data written to %s\n", path)
	}
}

type perfExportConfig struct {
	enabled bool
	debug   bool
	baseDir string
	outDir  string
}

// perfExportConfigFromArgs reads the perf flags ahead of cobra so the export
// still happens when a command fails to parse.
func perfExportConfigFromArgs(args []string, cwd string) perfExportConfig {
	config := perfExportConfig{}
	dir := "."
	outDir := ""

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		name, value, hasValue := strings.Cut(arg, "=")
		next := func() string {
			if hasValue {
				return value
			}
			if i+1 < len(args) {
				i++
				return args[i]
			}
			return ""
		}

		switch name {
		case "--" + cmdutil.FlagPerf:
			config.enabled = !hasValue || value == "true"
		case "--" + cmdutil.FlagDebug:
			config.debug = !hasValue || value == "true"
		case "--" + cmdutil.FlagPerfOutDir:
			outDir = next()
		case "--" + cmdutil.FlagDir, "-" + cmdutil.FlagDirShort:
			dir = next()
		}
	}

	base := dir
	if !filepath.IsAbs(base) {
		base = filepath.Join(cwd, base)
	}
	if absolute, err := filepath.Abs(base); err == nil {
		base = absolute
	}
	config.baseDir = base
	config.outDir = base
	if outDir != "" {
		if filepath.IsAbs(outDir) {
			config.outDir = outDir
		} else {
			config.outDir = filepath.Join(base, outDir)
		}
	}
	return config
}
