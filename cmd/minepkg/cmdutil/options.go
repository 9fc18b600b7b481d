// Package cmdutil holds the flags, wiring and output helpers every minepkg
// command shares.
package cmdutil

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meza/minepkg/internal/i18n"
)

const (
	FlagQuiet            = "quiet"
	FlagDebug            = "debug"
	FlagYes              = "yes"
	FlagMinecraftVersion = "mc-version"
	FlagDir              = "dir"
	FlagDirShort         = "d"
	FlagOffline          = "offline"
	FlagConfig           = "config"
	FlagPerf             = "perf"
	FlagPerfOutDir       = "perf-out-dir"
)

// ErrAborted is returned when the user declines a confirmation prompt.
var ErrAborted = errors.New("aborted")

type Options struct {
	Quiet            bool
	Debug            bool
	Yes              bool
	Offline          bool
	MinecraftVersion string
	Dir              string
	ConfigFile       string
}

func RegisterGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.BoolP(FlagQuiet, "q", false, i18n.T("flag.quiet"))
	flags.Bool(FlagDebug, false, i18n.T("flag.debug"))
	flags.BoolP(FlagYes, "y", false, i18n.T("flag.yes"))
	flags.Bool(FlagOffline, false, i18n.T("flag.offline"))
	flags.String(FlagMinecraftVersion, "", i18n.T("flag.mc_version"))
	flags.StringP(FlagDir, FlagDirShort, ".", i18n.T("flag.dir"))
	flags.String(FlagConfig, "", i18n.T("flag.config"))
	flags.Bool(FlagPerf, false, i18n.T("flag.perf"))
	flags.String(FlagPerfOutDir, "", i18n.T("flag.perf_out_dir"))
}

func OptionsFrom(cmd *cobra.Command) (Options, error) {
	var opts Options
	var err error
	flags := cmd.Flags()

	if opts.Quiet, err = flags.GetBool(FlagQuiet); err != nil {
		return Options{}, err
	}
	if opts.Debug, err = flags.GetBool(FlagDebug); err != nil {
		return Options{}, err
	}
	if opts.Yes, err = flags.GetBool(FlagYes); err != nil {
		return Options{}, err
	}
	if opts.Offline, err = flags.GetBool(FlagOffline); err != nil {
		return Options{}, err
	}
	if opts.MinecraftVersion, err = flags.GetString(FlagMinecraftVersion); err != nil {
		return Options{}, err
	}
	if opts.Dir, err = flags.GetString(FlagDir); err != nil {
		return Options{}, err
	}
	if opts.ConfigFile, err = flags.GetString(FlagConfig); err != nil {
		return Options{}, err
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	return opts, nil
}

// JoinArgs turns the positional arguments into one reference, so that
// `install ender io` looks up "ender io".
func JoinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
