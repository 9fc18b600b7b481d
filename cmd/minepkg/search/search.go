package search

import (
	"context"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/minepkg/cmd/minepkg/cmdutil"
	"github.com/meza/minepkg/internal/i18n"
	"github.com/meza/minepkg/internal/perf"
)

const DefaultLimit = 25

func Command(deps cmdutil.Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: i18n.T("cmd.search.short"),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := cmdutil.JoinArgs(args)
			ctx, span := perf.StartSpan(cmd.Context(), "app.command.search", perf.WithAttributes(attribute.String("query", query)))

			limit, err := cmd.Flags().GetInt("limit")
			if err != nil {
				span.EndWithError(err)
				return err
			}

			session, err := cmdutil.NewSession(cmd, deps)
			if err != nil {
				span.EndWithError(err)
				return err
			}

			results, err := run(ctx, session, query, limit)
			span.EndWithError(err)
			session.Record("search", err, map[string]any{"results": results})
			return err
		},
	}
	cmd.Flags().IntP("limit", "n", DefaultLimit, i18n.T("cmd.search.limit"))
	return cmd
}

func run(ctx context.Context, session *cmdutil.Session, query string, limit int) (int, error) {
	index, err := session.LoadIndex(ctx)
	if err != nil {
		return 0, err
	}
	session.Logger.Log(i18n.T("cmd.search.count", i18n.Tvars{
		Count: index.Len(),
		Data:  &i18n.TData{"count": index.Len()},
	}), false)

	matches := index.Search(query)
	if len(matches) == 0 {
		session.Logger.Log(i18n.T("cmd.search.none", i18n.Tvars{
			Data: &i18n.TData{"query": query},
		}), true)
		return 0, nil
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	session.Logger.Log(cmdutil.ModTable(matches, session.Interactive()), true)
	return len(matches), nil
}
