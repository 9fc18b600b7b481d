package install

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/minepkg/cmd/minepkg/cmdutil"
	"github.com/meza/minepkg/internal/catalog"
	"github.com/meza/minepkg/internal/globalerrors"
	"github.com/meza/minepkg/internal/i18n"
	"github.com/meza/minepkg/internal/manifest"
	"github.com/meza/minepkg/internal/minecraft"
	"github.com/meza/minepkg/internal/models"
	"github.com/meza/minepkg/internal/modinstall"
	"github.com/meza/minepkg/internal/perf"
	"github.com/meza/minepkg/internal/resolver"
)

var ErrNoGameVersion = errors.New("your instance does not have minecraft installed yet, pass --mc-version")

type Result struct {
	Roots     []models.Mod
	Installed []modinstall.Outcome
}

func Command(deps cmdutil.Deps) *cobra.Command {
	return &cobra.Command{
		Use:     "install [mod...]",
		Aliases: []string{"add"},
		Short:   i18n.T("cmd.install.short"),
		Long:    i18n.T("cmd.install.long"),
		RunE: func(cmd *cobra.Command, args []string) error {
			reference := cmdutil.JoinArgs(args)
			ctx, span := perf.StartSpan(cmd.Context(), "app.command.install", perf.WithAttributes(attribute.String("reference", reference)))

			session, err := cmdutil.NewSession(cmd, deps)
			if err != nil {
				span.EndWithError(err)
				return err
			}

			result, err := run(ctx, session, reference)
			span.SetAttributes(attribute.Int("installed", len(result.Installed)))
			span.EndWithError(err)
			session.Record("install", err, map[string]any{
				"numberOfMods": len(result.Installed),
				"modpack":      reference == "",
				"offline":      session.Options.Offline,
			})
			return err
		},
	}
}

// run installs one mod (reference set) or every dependency of the manifest
// (reference empty) together with their required dependencies.
func run(ctx context.Context, session *cmdutil.Session, reference string) (Result, error) {
	log := session.Logger

	instance, err := minecraft.Detect(session.FS, session.Options.Dir)
	if err != nil {
		return Result{}, err
	}
	gameVersion := session.Options.MinecraftVersion
	if gameVersion == "" {
		gameVersion = instance.Version
		if instance.Assumed {
			log.Log(i18n.T("cmd.install.assumed_version", i18n.Tvars{
				Data: &i18n.TData{"version": gameVersion},
			}), false)
		}
	}
	if gameVersion == "" {
		return Result{}, ErrNoGameVersion
	}
	log.DebugFields("instance detected", map[string]any{
		"flavour": string(instance.Flavour),
		"version": gameVersion,
		"mods":    instance.ModsDir,
	})

	manifestPath := manifest.Path(session.Options.Dir)
	project, _, err := manifest.ReadOrCreate(session.FS, session.Options.Dir, gameVersion)
	if err != nil {
		return Result{}, err
	}

	log.Log(i18n.T("cmd.install.step.catalog"), false)
	index, err := session.LoadIndex(ctx)
	if err != nil {
		return Result{}, err
	}

	var roots []models.Mod
	if reference == "" {
		roots, err = manifestRoots(index, project)
		if err != nil {
			return Result{}, err
		}
		for _, mod := range roots {
			log.Log(i18n.T("cmd.install.requires_root", i18n.Tvars{Data: &i18n.TData{"name": mod.Name}}), false)
		}
		if len(roots) == 0 {
			log.Log(i18n.T("cmd.install.nothing"), true)
			return Result{}, nil
		}
		err = session.Confirm(i18n.T("cmd.install.confirm_pack", i18n.Tvars{
			Count: len(roots),
			Data:  &i18n.TData{"count": len(roots)},
		}))
	} else {
		var mod models.Mod
		mod, err = index.ResolveReference(reference)
		if err != nil {
			return Result{}, err
		}
		roots = []models.Mod{mod}
		err = session.Confirm(i18n.T("cmd.install.confirm_single", i18n.Tvars{
			Data: &i18n.TData{"name": mod.Name},
		}))
	}
	if err != nil {
		return Result{Roots: roots}, err
	}

	log.Log(i18n.T("cmd.install.step.resolve"), false)
	files, err := resolveAll(ctx, session, index, gameVersion, roots)
	if err != nil {
		return Result{Roots: roots}, err
	}
	for _, file := range files {
		log.Log(i18n.T("cmd.install.requires_file", i18n.Tvars{Data: &i18n.TData{"file": file.FileName}}), false)
	}

	log.Log(i18n.T("cmd.install.step.download", i18n.Tvars{
		Count: len(files),
		Data:  &i18n.TData{"count": len(files)},
	}), false)
	progress := session.Progress(i18n.T("cmd.install.progress"))
	installer := modinstall.NewInstaller(session.FS, session.Deps.Download,
		modinstall.WithConcurrency(session.Config.Concurrency),
		modinstall.WithFingerprint(session.Deps.Fingerprint),
	)
	outcomes, err := installer.Install(ctx, files, instance.ModsDir, session.Doer, cmdutil.NewBridge(progress, log))
	if finishErr := progress.Finish(err); err == nil {
		err = finishErr
	}
	if err != nil {
		return Result{Roots: roots}, err
	}
	for _, outcome := range outcomes {
		log.DebugFields("installed file", map[string]any{
			"path":        outcome.Path,
			"bytes":       outcome.Bytes,
			"fingerprint": outcome.Fingerprint,
		})
	}

	if reference != "" {
		project.AddDependency(roots[0])
	}
	if err := project.Save(session.FS, manifestPath); err != nil {
		return Result{Roots: roots, Installed: outcomes}, err
	}

	if reference == "" {
		log.Log(i18n.T("cmd.install.success_pack", i18n.Tvars{Data: &i18n.TData{"name": project.Package.Name}}), true)
	} else {
		log.Log(i18n.T("cmd.install.success_single", i18n.Tvars{Data: &i18n.TData{"name": roots[0].Name}}), true)
	}
	return Result{Roots: roots, Installed: outcomes}, nil
}

func manifestRoots(index *catalog.Index, project *manifest.Manifest) ([]models.Mod, error) {
	dependencies, err := project.Dependencies()
	if err != nil {
		return nil, err
	}
	roots := make([]models.Mod, 0, len(dependencies))
	for _, dependency := range dependencies {
		mod, ok := index.FindBySlug(dependency.Name)
		if !ok {
			return nil, &globalerrors.ModNotFoundError{Reference: dependency.Name, Provider: dependency.Provider}
		}
		roots = append(roots, mod)
	}
	return roots, nil
}

// resolveAll resolves every root and merges the results. A file reached from
// more than one root is installed once.
func resolveAll(ctx context.Context, session *cmdutil.Session, index *catalog.Index, gameVersion string, roots []models.Mod) ([]models.ModFile, error) {
	engine := resolver.New(session.Source(index), gameVersion,
		resolver.WithConcurrencyLimit(session.Config.Concurrency),
		resolver.WithObserver(func(mod models.Mod, file models.ModFile) {
			session.Logger.Debug(fmt.Sprintf("resolved %s (%d) to %s", mod.Name, mod.ID, file.FileName))
		}),
	)

	merged := make(map[uint32]models.ModFile)
	for _, root := range roots {
		set, err := engine.Resolve(ctx, root.ID)
		if err != nil {
			return nil, err
		}
		for _, file := range set.Files() {
			merged[file.ID] = file
		}
	}

	files := make([]models.ModFile, 0, len(merged))
	for _, file := range merged {
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return files, nil
}
