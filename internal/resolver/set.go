package resolver

import (
	"cmp"
	"slices"
	"sync"

	"github.com/meza/minepkg/internal/models"
)

// ResolvedSet holds files keyed by file id. All methods are safe for
// concurrent use.
type ResolvedSet struct {
	mu      sync.Mutex
	files   map[uint32]models.ModFile
	claimed map[uint32]struct{}
}

func NewResolvedSet() *ResolvedSet {
	return &ResolvedSet{
		files:   map[uint32]models.ModFile{},
		claimed: map[uint32]struct{}{},
	}
}

// Insert adds file unless a file with the same id is present. It returns true
// only for the call that actually added it.
func (set *ResolvedSet) Insert(file models.ModFile) bool {
	set.mu.Lock()
	defer set.mu.Unlock()
	if _, ok := set.files[file.ID]; ok {
		return false
	}
	set.files[file.ID] = file
	return true
}

func (set *ResolvedSet) Contains(fileID uint32) bool {
	set.mu.Lock()
	defer set.mu.Unlock()
	_, ok := set.files[fileID]
	return ok
}

func (set *ResolvedSet) Len() int {
	set.mu.Lock()
	defer set.mu.Unlock()
	return len(set.files)
}

// Files returns a copy of the set ordered by file id.
func (set *ResolvedSet) Files() []models.ModFile {
	set.mu.Lock()
	files := make([]models.ModFile, 0, len(set.files))
	for _, file := range set.files {
		files = append(files, file)
	}
	set.mu.Unlock()

	slices.SortFunc(files, func(a, b models.ModFile) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return files
}

// claim marks a mod id as being resolved so concurrent branches reaching the
// same mod do not fetch it twice.
func (set *ResolvedSet) claim(modID uint32) bool {
	set.mu.Lock()
	defer set.mu.Unlock()
	if _, ok := set.claimed[modID]; ok {
		return false
	}
	set.claimed[modID] = struct{}{}
	return true
}
