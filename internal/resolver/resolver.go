// Package resolver expands a root mod into the full set of files needed to
// install it, following required dependencies concurrently.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/meza/minepkg/internal/models"
	"github.com/meza/minepkg/internal/perf"
)

// Source provides per-id metadata. The remote metadata client and the local
// catalog index both satisfy it.
type Source interface {
	FetchMod(ctx context.Context, id uint32) (*models.Mod, error)
	FetchFile(ctx context.Context, modID uint32, fileID uint32) (*models.ModFile, error)
}

var ErrMissingGameVersion = errors.New("no minecraft version to resolve against")

type UnsupportedVersionError struct {
	Mod     string
	ModID   uint32
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("the mod %s is not available for minecraft %s", e.Mod, e.Version)
}

func (e *UnsupportedVersionError) Is(target error) bool {
	t, ok := target.(*UnsupportedVersionError)
	if !ok {
		return false
	}
	return e.ModID == t.ModID && e.Version == t.Version
}

type Resolver struct {
	source      Source
	gameVersion string
	limit       *semaphore.Weighted
	observer    func(mod models.Mod, file models.ModFile)
}

type Option func(*Resolver)

// WithConcurrencyLimit bounds the number of metadata calls in flight. Zero or
// less leaves fan-out unbounded.
func WithConcurrencyLimit(limit int) Option {
	return func(resolver *Resolver) {
		if limit > 0 {
			resolver.limit = semaphore.NewWeighted(int64(limit))
		}
	}
}

// WithObserver is called once for every newly resolved file, from the
// goroutine that resolved it.
func WithObserver(observer func(mod models.Mod, file models.ModFile)) Option {
	return func(resolver *Resolver) {
		resolver.observer = observer
	}
}

func New(source Source, gameVersion string, options ...Option) *Resolver {
	resolver := &Resolver{source: source, gameVersion: gameVersion}
	for _, option := range options {
		option(resolver)
	}
	return resolver
}

// Resolve returns the root file plus every file reachable through Required
// dependencies. The first failing branch cancels the rest and its error is
// returned without a partial set.
func (r *Resolver) Resolve(ctx context.Context, rootID uint32) (set *ResolvedSet, returnErr error) {
	if r.gameVersion == "" {
		return nil, ErrMissingGameVersion
	}

	ctx, span := perf.StartSpan(ctx, "resolver.resolve", perf.WithAttributes(
		attribute.Int64("root_id", int64(rootID)),
		attribute.String("game_version", r.gameVersion),
	))
	defer func() { span.EndWithError(returnErr) }()

	set = NewResolvedSet()
	if err := r.branch(ctx, rootID, set); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("files", set.Len()))
	return set, nil
}

func (r *Resolver) branch(ctx context.Context, modID uint32, set *ResolvedSet) error {
	if !set.claim(modID) {
		return nil
	}

	mod, err := r.fetchMod(ctx, modID)
	if err != nil {
		return err
	}

	release, ok := mod.ReleaseForGameVersion(r.gameVersion)
	if !ok {
		return &UnsupportedVersionError{Mod: mod.Name, ModID: mod.ID, Version: r.gameVersion}
	}

	file, err := r.fetchFile(ctx, mod.ID, release.FileID)
	if err != nil {
		return err
	}

	if !set.Insert(*file) {
		return nil
	}
	if r.observer != nil {
		r.observer(*mod, *file)
	}

	dependencies := file.DependenciesOf(models.Required)
	if len(dependencies) == 0 {
		return nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, dependency := range dependencies {
		group.Go(func() error {
			return r.branch(groupCtx, dependency.AddOnID, set)
		})
	}
	return group.Wait()
}

func (r *Resolver) fetchMod(ctx context.Context, id uint32) (*models.Mod, error) {
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	defer r.release()
	return r.source.FetchMod(ctx, id)
}

func (r *Resolver) fetchFile(ctx context.Context, modID uint32, fileID uint32) (*models.ModFile, error) {
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	defer r.release()
	return r.source.FetchFile(ctx, modID, fileID)
}

func (r *Resolver) acquire(ctx context.Context) error {
	if r.limit == nil {
		return ctx.Err()
	}
	return r.limit.Acquire(ctx, 1)
}

func (r *Resolver) release() {
	if r.limit != nil {
		r.limit.Release(1)
	}
}
