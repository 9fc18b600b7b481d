package show

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/minepkg/cmd/minepkg/cmdutil"
	"github.com/meza/minepkg/internal/i18n"
	"github.com/meza/minepkg/internal/models"
	"github.com/meza/minepkg/internal/perf"
	"github.com/meza/minepkg/internal/tui"
)

func Command(deps cmdutil.Deps) *cobra.Command {
	return &cobra.Command{
		Use:     "show <mod...>",
		Aliases: []string{"info"},
		Short:   i18n.T("cmd.show.short"),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reference := cmdutil.JoinArgs(args)
			ctx, span := perf.StartSpan(cmd.Context(), "app.command.show", perf.WithAttributes(attribute.String("reference", reference)))

			session, err := cmdutil.NewSession(cmd, deps)
			if err != nil {
				span.EndWithError(err)
				return err
			}

			err = run(ctx, session, reference)
			span.EndWithError(err)
			session.Record("show", err, nil)
			return err
		},
	}
}

func run(ctx context.Context, session *cmdutil.Session, reference string) error {
	index, err := session.LoadIndex(ctx)
	if err != nil {
		return err
	}
	mod, err := index.ResolveReference(reference)
	if err != nil {
		return err
	}
	session.Logger.Log(Render(mod, session.Interactive()), true)
	return nil
}

// Render describes a catalog entry: its identity, the latest release per game
// version and the dependencies of its first latest file.
func Render(mod models.Mod, colorize bool) string {
	var out strings.Builder
	title := mod.Name
	if colorize {
		title = tui.TitleStyle.Render(title)
	}
	fmt.Fprintln(&out, title)
	fmt.Fprintln(&out, strings.Repeat("=", 31))
	fmt.Fprintf(&out, "id: %d\n", mod.ID)
	fmt.Fprintf(&out, "Downloads: %s\n", tui.FormatCount(mod.DownloadCount))
	fmt.Fprintf(&out, "URL: %s\n", mod.WebSiteURL)
	fmt.Fprintln(&out, "Latest Releases:")
	for _, release := range mod.GameVersionLatestFiles {
		fmt.Fprintf(&out, "· %s (%s)\n", release.GameVersion, release.FileType)
	}

	if len(mod.LatestFiles) > 0 {
		file := mod.LatestFiles[0]
		fmt.Fprintln(&out)
		fmt.Fprintf(&out, "Latest File: %s\n", file.FileName)
		fmt.Fprintf(&out, "Game Version: %s\n", strings.Join(file.GameVersions, ", "))
		fmt.Fprintln(&out, "Dependencies:")
		for _, kind := range []models.ReqType{models.Required, models.Optional, models.Embedded} {
			ids := make([]string, 0)
			for _, dependency := range file.Dependencies {
				if dependency.Type == kind {
					ids = append(ids, fmt.Sprintf("%d", dependency.AddOnID))
				}
			}
			fmt.Fprintf(&out, "  %s: %d", kind, len(ids))
			if len(ids) > 0 {
				fmt.Fprintf(&out, " (%s)", strings.Join(ids, ", "))
			}
			fmt.Fprintln(&out)
		}
	}
	return strings.TrimRight(out.String(), "\n")
}
