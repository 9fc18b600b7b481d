package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meza/minepkg/internal/constants"
	"github.com/meza/minepkg/internal/environment"
	"github.com/meza/minepkg/internal/i18n"
)

func Command() *cobra.Command {
	return &cobra.Command{
		Use: "version",
		Short: i18n.T("cmd.version.short", i18n.Tvars{
			Data: &i18n.TData{"appName": constants.AppName},
		}),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), environment.AppVersion())
			return err
		},
	}
}
