package resolver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meza/minepkg/internal/catalog"
	"github.com/meza/minepkg/internal/globalerrors"
	"github.com/meza/minepkg/internal/models"
)

const version = "1.12.2"

// fakeSource serves a synthetic graph where mod N publishes file N*10 for
// version 1.12.2.
type fakeSource struct {
	mu        sync.Mutex
	mods      map[uint32]models.Mod
	files     map[uint32]models.ModFile
	modCalls  map[uint32]int
	fileCalls map[uint32]int
	failMod   map[uint32]error
	delay     time.Duration
	inFlight  atomic.Int32
	maxFlight atomic.Int32
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		mods:      map[uint32]models.Mod{},
		files:     map[uint32]models.ModFile{},
		modCalls:  map[uint32]int{},
		fileCalls: map[uint32]int{},
		failMod:   map[uint32]error{},
	}
}

func (s *fakeSource) add(id uint32, requires ...uint32) *fakeSource {
	dependencies := make([]models.ModDependency, 0, len(requires))
	for _, dep := range requires {
		dependencies = append(dependencies, models.ModDependency{AddOnID: dep, Type: models.Required})
	}
	fileID := id * 10
	s.mods[id] = models.Mod{
		ID:   id,
		Name: "mod",
		GameVersionLatestFiles: []models.GameVersionRelease{
			{GameVersion: version, FileID: fileID, FileType: models.Release},
		},
	}
	s.files[fileID] = models.ModFile{ID: fileID, FileName: "file", GameVersions: []string{version}, Dependencies: dependencies}
	return s
}

func (s *fakeSource) enter() func() {
	current := s.inFlight.Add(1)
	for {
		seen := s.maxFlight.Load()
		if current <= seen || s.maxFlight.CompareAndSwap(seen, current) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return func() { s.inFlight.Add(-1) }
}

func (s *fakeSource) FetchMod(ctx context.Context, id uint32) (*models.Mod, error) {
	defer s.enter()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modCalls[id]++
	if err := s.failMod[id]; err != nil {
		return nil, err
	}
	mod, ok := s.mods[id]
	if !ok {
		return nil, &globalerrors.ModNotFoundError{Reference: "x", Provider: models.CURSE}
	}
	return &mod, nil
}

func (s *fakeSource) FetchFile(ctx context.Context, modID uint32, fileID uint32) (*models.ModFile, error) {
	defer s.enter()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fileCalls[fileID]++
	file, ok := s.files[fileID]
	if !ok {
		return nil, &globalerrors.FileNotFoundError{ModID: modID, FileID: fileID}
	}
	return &file, nil
}

func fileIDs(set *ResolvedSet) []uint32 {
	ids := make([]uint32, 0, set.Len())
	for _, file := range set.Files() {
		ids = append(ids, file.ID)
	}
	return ids
}

func TestInsertIsIdempotent(t *testing.T) {
	set := NewResolvedSet()
	file := models.ModFile{ID: 7, FileName: "a.jar"}

	assert.True(t, set.Insert(file))
	assert.False(t, set.Insert(models.ModFile{ID: 7, FileName: "different.jar"}))
	assert.Equal(t, 1, set.Len())
	assert.True(t, set.Contains(7))
	assert.Equal(t, "a.jar", set.Files()[0].FileName)
}

func TestConcurrentInsertHasExactlyOneWinner(t *testing.T) {
	set := NewResolvedSet()
	var winners atomic.Int32
	var wg sync.WaitGroup
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if set.Insert(models.ModFile{ID: 1}) {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
	assert.Equal(t, 1, set.Len())
}

func TestResolveSingleModWithoutDependencies(t *testing.T) {
	source := newFakeSource().add(1)

	set, err := New(source, version).Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{10}, fileIDs(set))
}

func TestResolveTerminatesOnCycles(t *testing.T) {
	source := newFakeSource().add(1, 2).add(2, 1)

	set, err := New(source, version).Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{10, 20}, fileIDs(set))
	assert.Equal(t, 1, source.modCalls[1])
}

func TestResolveDeduplicatesDiamonds(t *testing.T) {
	source := newFakeSource().add(1, 2, 3).add(2, 4).add(3, 4).add(4)
	source.delay = 5 * time.Millisecond

	set, err := New(source, version).Resolve(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []uint32{10, 20, 30, 40}, fileIDs(set))
	assert.Equal(t, 1, source.modCalls[4])
	assert.Equal(t, 1, source.fileCalls[40])
}

func TestResolveIgnoresOptionalAndEmbeddedDependencies(t *testing.T) {
	source := newFakeSource().add(1).add(2)
	file := source.files[10]
	file.Dependencies = []models.ModDependency{
		{AddOnID: 2, Type: models.Optional},
		{AddOnID: 3, Type: models.Embedded},
	}
	source.files[10] = file

	set, err := New(source, version).Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{10}, fileIDs(set))
}

func TestResolveSelectsTheReleaseForTheTargetVersion(t *testing.T) {
	source := newFakeSource()
	source.mods[5] = models.Mod{ID: 5, Name: "JourneyMap", GameVersionLatestFiles: []models.GameVersionRelease{
		{GameVersion: "1.12.2", FileID: 1122},
		{GameVersion: "1.16.5", FileID: 1165},
	}}
	source.files[1122] = models.ModFile{ID: 1122}
	source.files[1165] = models.ModFile{ID: 1165}

	set, err := New(source, "1.16.5").Resolve(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1165}, fileIDs(set))

	_, err = New(source, "1.8").Resolve(context.Background(), 5)
	var unsupported *UnsupportedVersionError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "JourneyMap", unsupported.Mod)
	assert.Equal(t, "1.8", unsupported.Version)
	assert.Equal(t, "the mod JourneyMap is not available for minecraft 1.8", err.Error())
}

func TestResolveFailsWholeResolutionOnUnsupportedDependency(t *testing.T) {
	source := newFakeSource().add(1, 2)
	source.mods[2] = models.Mod{ID: 2, Name: "Old Mod"}

	set, err := New(source, version).Resolve(context.Background(), 1)
	assert.Nil(t, set)
	assert.ErrorIs(t, err, &UnsupportedVersionError{ModID: 2, Version: version})
}

func TestResolveIsFailFast(t *testing.T) {
	boom := errors.New("metadata service down")
	source := newFakeSource().add(1, 2, 3).add(2).add(3)
	source.failMod[2] = boom

	set, err := New(source, version).Resolve(context.Background(), 1)
	assert.Nil(t, set)
	assert.ErrorIs(t, err, boom)
}

func TestResolveRequiresAGameVersion(t *testing.T) {
	_, err := New(newFakeSource(), "").Resolve(context.Background(), 1)
	assert.ErrorIs(t, err, ErrMissingGameVersion)
}

func TestConcurrencyLimitBoundsInFlightCalls(t *testing.T) {
	source := newFakeSource().add(1, 2, 3, 4, 5, 6).add(2).add(3).add(4).add(5).add(6)
	source.delay = 5 * time.Millisecond

	set, err := New(source, version, WithConcurrencyLimit(2)).Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 6, set.Len())
	assert.LessOrEqual(t, source.maxFlight.Load(), int32(2))
}

func TestObserverSeesEachNewFileOnce(t *testing.T) {
	source := newFakeSource().add(1, 2, 3).add(2, 3).add(3)

	var mu sync.Mutex
	seen := map[uint32]int{}
	observer := WithObserver(func(_ models.Mod, file models.ModFile) {
		mu.Lock()
		defer mu.Unlock()
		seen[file.ID]++
	})

	_, err := New(source, version, observer).Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, map[uint32]int{10: 1, 20: 1, 30: 1}, seen)
}

func TestResolveOfflineAgainstTheCatalogIndex(t *testing.T) {
	index := catalog.NewIndex(&models.ModDB{Mods: []models.Mod{
		{
			ID:   1,
			Name: "Ender IO",
			LatestFiles: []models.ModFile{{
				ID: 100, FileName: "EnderIO-1.12.2", GameVersions: []string{version},
				Dependencies: []models.ModDependency{{AddOnID: 2, Type: models.Required}},
			}},
			GameVersionLatestFiles: []models.GameVersionRelease{{GameVersion: version, FileID: 100}},
		},
		{
			ID:                     2,
			Name:                   "Ender Core",
			LatestFiles:            []models.ModFile{{ID: 200, FileName: "EnderCore-1.12.2.jar", GameVersions: []string{version}}},
			GameVersionLatestFiles: []models.GameVersionRelease{{GameVersion: version, FileID: 200}},
		},
	}})

	set, err := New(index, version).Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{100, 200}, fileIDs(set))
}
