package testutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"testing"
)

// FeedPath is the route CatalogServer serves the compressed feed on.
const FeedPath = "/feed/complete.json.bz2"

// CatalogServer serves the catalog feed fixture and answers every other path
// with a small fake archive, so both the refresh and the downloads of an
// install can run against it.
type CatalogServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests map[string]int
	missing  map[string]bool
}

// FeedFixture returns the bzip2 compressed feed shared by the catalog tests.
func FeedFixture(t testing.TB) []byte {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot locate testutil sources")
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(file), "..", "internal", "catalog", "testdata", "feed.json.bz2"))
	if err != nil {
		t.Fatalf("read feed fixture: %v", err)
	}
	return data
}

func NewCatalogServer(t testing.TB) *CatalogServer {
	t.Helper()
	feed := FeedFixture(t)
	server := &CatalogServer{requests: map[string]int{}, missing: map[string]bool{}}
	server.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server.mu.Lock()
		server.requests[r.URL.Path]++
		missing := server.missing[r.URL.Path]
		server.mu.Unlock()

		if missing {
			http.NotFound(w, r)
			return
		}
		body := feed
		if r.URL.Path != FeedPath {
			body = ArchiveBody(r.URL.Path)
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

// FeedURL is the feed address to configure.
func (s *CatalogServer) FeedURL() string {
	return s.URL + FeedPath
}

// Fail makes path answer 404 from now on.
func (s *CatalogServer) Fail(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missing[path] = true
}

// Requests counts the requests received for path.
func (s *CatalogServer) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

// ArchiveBody is the content served for a download path.
func ArchiveBody(path string) []byte {
	return []byte("archive:" + path)
}
