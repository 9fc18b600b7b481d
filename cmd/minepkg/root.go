package minepkg

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meza/minepkg/cmd/minepkg/cmdutil"
	"github.com/meza/minepkg/cmd/minepkg/install"
	"github.com/meza/minepkg/cmd/minepkg/refresh"
	"github.com/meza/minepkg/cmd/minepkg/search"
	"github.com/meza/minepkg/cmd/minepkg/show"
	"github.com/meza/minepkg/cmd/minepkg/version"
	"github.com/meza/minepkg/internal/constants"
	"github.com/meza/minepkg/internal/environment"
	"github.com/meza/minepkg/internal/i18n"
	"github.com/meza/minepkg/internal/tui"
)

func Command(deps cmdutil.Deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           constants.CommandName,
		Short:         i18n.T("app.description"),
		Example:       "  minepkg install ender io\n  minepkg install https://minecraft.curseforge.com/projects/journeymap",
		Version:       environment.AppVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cobra.MousetrapHelpText = "" // allow the app to run in windows by clicking the exe

	rootCmd.SetVersionTemplate("{{.Version}}\n")
	cmdutil.RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(install.Command(deps))
	rootCmd.AddCommand(search.Command(deps))
	rootCmd.AddCommand(show.Command(deps))
	rootCmd.AddCommand(refresh.Command(deps))
	rootCmd.AddCommand(version.Command())

	translateDefaultHelpFacilities(rootCmd)
	fixFlagUsageAlignment(rootCmd)

	return rootCmd
}

func translateDefaultHelpFacilities(rootCmd *cobra.Command) {
	subcommands := rootCmd.Commands()
	allCommands := make([]*cobra.Command, 0, len(subcommands)+1)
	allCommands = append(allCommands, rootCmd)
	allCommands = append(allCommands, subcommands...)

	for _, cmd := range allCommands {
		cmd.InitDefaultHelpFlag()
		cmd.Flags().Lookup("help").Usage = i18n.T("cmd.help.template", i18n.Tvars{
			Data: &i18n.TData{"command": cmd.Name()},
		})
	}

	rootCmd.InitDefaultHelpCmd()
	helpCmd, _, err := rootCmd.Find([]string{"help"})
	if err != nil {
		return
	}
	helpCmd.Short = i18n.T("cmd.help.usage.short")
	helpCmd.Long = i18n.T("cmd.help.usage.long", i18n.Tvars{
		Data: &i18n.TData{"appName": rootCmd.Name()},
	})
}

func fixFlagUsageAlignment(rootCmd *cobra.Command) {
	width := tui.TerminalWidth(rootCmd.OutOrStdout(), 0)
	if width <= 0 {
		return
	}
	usageTemplate := rootCmd.UsageTemplate()
	usageTemplate = strings.ReplaceAll(usageTemplate, ".FlagUsages", fmt.Sprintf(".FlagUsagesWrapped %d", width))
	rootCmd.SetUsageTemplate(usageTemplate)
}
