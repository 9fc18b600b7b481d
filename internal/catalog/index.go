package catalog

import (
	"cmp"
	"context"
	"math"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/meza/minepkg/internal/globalerrors"
	"github.com/meza/minepkg/internal/models"
)

// ProjectURLPrefixes are the project page prefixes accepted as references.
var ProjectURLPrefixes = []string{
	"https://minecraft.curseforge.com/projects/",
	"https://www.curseforge.com/minecraft/mc-mods/",
}

// NameMatchLimit caps how many name matches are ranked by FindByName. A popular
// mod matching late in the catalog can lose to an earlier, less popular one.
const NameMatchLimit = 100

// minParallelScan is the catalog size below which scans stay on one goroutine.
const minParallelScan = 2048

// Index answers read-only queries against a loaded catalog. It is safe for
// concurrent use.
type Index struct {
	mods    []models.Mod
	workers int
}

func NewIndex(db *models.ModDB) *Index {
	var mods []models.Mod
	if db != nil {
		mods = db.Mods
	}
	return &Index{mods: mods, workers: runtime.GOMAXPROCS(0)}
}

func (index *Index) Len() int {
	return len(index.mods)
}

func (index *Index) FindByID(id uint32) (models.Mod, bool) {
	return index.scan(func(mod *models.Mod) bool {
		return mod.ID == id
	})
}

// FindBySlug returns the first mod whose project URL ends with slug, ignoring
// case and a trailing slash on the URL.
func (index *Index) FindBySlug(slug string) (models.Mod, bool) {
	suffix := strings.ToLower(strings.Trim(slug, "/"))
	if suffix == "" {
		return models.Mod{}, false
	}
	return index.scan(func(mod *models.Mod) bool {
		return strings.HasSuffix(strings.ToLower(strings.TrimRight(mod.WebSiteURL, "/")), suffix)
	})
}

// FindByName returns the most downloaded mod among the first NameMatchLimit
// case-insensitive name matches. Equal counts resolve to the later match.
func (index *Index) FindByName(query string) (models.Mod, bool) {
	needle := strings.ToLower(query)
	matches := make([]models.Mod, 0, NameMatchLimit)
	for _, mod := range index.mods {
		if strings.Contains(strings.ToLower(mod.Name), needle) {
			matches = append(matches, mod)
			if len(matches) == NameMatchLimit {
				break
			}
		}
	}
	if len(matches) == 0 {
		return models.Mod{}, false
	}

	slices.SortStableFunc(matches, func(a, b models.Mod) int {
		return cmp.Compare(a.DownloadCount, b.DownloadCount)
	})
	return matches[len(matches)-1], true
}

// Search returns every mod whose name contains query, most downloaded first.
func (index *Index) Search(query string) []models.Mod {
	needle := strings.ToLower(query)
	results := make([]models.Mod, 0)
	for _, mod := range index.mods {
		if strings.Contains(strings.ToLower(mod.Name), needle) {
			results = append(results, mod)
		}
	}
	slices.SortStableFunc(results, func(a, b models.Mod) int {
		return cmp.Compare(b.DownloadCount, a.DownloadCount)
	})
	return results
}

// ResolveReference turns a user supplied token into a catalog entry. Project
// URLs resolve by slug, decimal tokens by id and everything else by name.
func (index *Index) ResolveReference(reference string) (models.Mod, error) {
	token := strings.TrimSpace(reference)
	if token == "" {
		return models.Mod{}, &InvalidReferenceError{Reference: reference, Reason: ReasonEmptyReference}
	}

	for _, prefix := range ProjectURLPrefixes {
		if !strings.HasPrefix(token, prefix) {
			continue
		}
		slug, _, _ := strings.Cut(strings.Trim(strings.TrimPrefix(token, prefix), "/"), "/")
		if slug == "" {
			return models.Mod{}, &InvalidReferenceError{Reference: reference, Reason: ReasonMissingSlug}
		}
		return orNotFound(index.FindBySlug(slug))(token)
	}

	if isDecimal(token) {
		id, err := strconv.ParseUint(token, 10, 32)
		if err != nil {
			return models.Mod{}, &InvalidReferenceError{Reference: reference, Reason: ReasonIDOutOfRange}
		}
		return orNotFound(index.FindByID(uint32(id)))(token)
	}

	return orNotFound(index.FindByName(token))(token)
}

func orNotFound(mod models.Mod, ok bool) func(reference string) (models.Mod, error) {
	return func(reference string) (models.Mod, error) {
		if !ok {
			return models.Mod{}, &globalerrors.ModNotFoundError{Reference: reference, Provider: models.CURSE}
		}
		return mod, nil
	}
}

// FetchMod lets the index stand in for the metadata API when resolving offline.
func (index *Index) FetchMod(_ context.Context, id uint32) (*models.Mod, error) {
	mod, ok := index.FindByID(id)
	if !ok {
		return nil, &globalerrors.ModNotFoundError{Reference: strconv.FormatUint(uint64(id), 10), Provider: models.CURSE}
	}
	return &mod, nil
}

// FetchFile only knows the files listed in the entry's LatestFiles.
func (index *Index) FetchFile(_ context.Context, modID uint32, fileID uint32) (*models.ModFile, error) {
	mod, ok := index.FindByID(modID)
	if !ok {
		return nil, &globalerrors.ModNotFoundError{Reference: strconv.FormatUint(uint64(modID), 10), Provider: models.CURSE}
	}
	file, ok := mod.LatestFile(fileID)
	if !ok {
		return nil, &globalerrors.FileNotFoundError{ModID: modID, FileID: fileID}
	}
	return &file, nil
}

// scan returns the first mod in catalog order that satisfies match. Large
// catalogs are split into chunks scanned in parallel; a chunk gives up once an
// earlier chunk has already matched.
func (index *Index) scan(match func(*models.Mod) bool) (models.Mod, bool) {
	total := len(index.mods)
	workers := index.workers
	if total < minParallelScan || workers < 2 {
		for i := range index.mods {
			if match(&index.mods[i]) {
				return index.mods[i], true
			}
		}
		return models.Mod{}, false
	}

	var best atomic.Int64
	best.Store(math.MaxInt64)
	chunk := (total + workers - 1) / workers

	var group errgroup.Group
	for start := 0; start < total; start += chunk {
		end := min(start+chunk, total)
		group.Go(func() error {
			for i := start; i < end; i++ {
				if best.Load() < int64(start) {
					return nil
				}
				if match(&index.mods[i]) {
					lowerBest(&best, int64(i))
					return nil
				}
			}
			return nil
		})
	}
	_ = group.Wait()

	found := best.Load()
	if found == math.MaxInt64 {
		return models.Mod{}, false
	}
	return index.mods[found], true
}

func lowerBest(best *atomic.Int64, candidate int64) {
	for {
		current := best.Load()
		if candidate >= current || best.CompareAndSwap(current, candidate) {
			return
		}
	}
}

func isDecimal(token string) bool {
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
