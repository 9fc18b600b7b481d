package refresh

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/meza/minepkg/cmd/minepkg/cmdutil"
	"github.com/meza/minepkg/internal/i18n"
	"github.com/meza/minepkg/internal/perf"
)

func Command(deps cmdutil.Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: i18n.T("cmd.refresh.short"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, span := perf.StartSpan(cmd.Context(), "app.command.refresh")

			session, err := cmdutil.NewSession(cmd, deps)
			if err != nil {
				span.EndWithError(err)
				return err
			}

			err = run(ctx, session)
			span.EndWithError(err)
			session.Record("refresh", err, nil)
			return err
		},
	}
}

func run(ctx context.Context, session *cmdutil.Session) error {
	progress := session.Progress(i18n.T("catalog.refreshing"))
	store := session.Store(cmdutil.NewBridge(progress, session.Logger))

	err := store.Refresh(ctx)
	if finishErr := progress.Finish(err); err == nil {
		err = finishErr
	}
	if err != nil {
		return err
	}

	session.Logger.Log(i18n.T("cmd.refresh.done", i18n.Tvars{
		Data: &i18n.TData{"path": store.Path()},
	}), false)
	return nil
}
