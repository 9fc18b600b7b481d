// Package testutil holds shared test helpers.
package testutil

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/meza/minepkg/internal/httpclient"
)

// HostRewriteDoer sends every request to a local test server while keeping
// the original path, and counts requests per original host+path.
type HostRewriteDoer struct {
	base *url.URL
	next httpclient.Doer

	mu   sync.Mutex
	hits map[string]int
}

func NewHostRewriteDoer(serverURL string, next httpclient.Doer) (*HostRewriteDoer, error) {
	if next == nil {
		return nil, fmt.Errorf("next doer is nil")
	}

	base, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("server url must include scheme and host")
	}

	return &HostRewriteDoer{
		base: base,
		next: next,
		hits: map[string]int{},
	}, nil
}

func MustNewHostRewriteDoer(serverURL string, next httpclient.Doer) *HostRewriteDoer {
	doer, err := NewHostRewriteDoer(serverURL, next)
	if err != nil {
		panic(err)
	}
	return doer
}

func (d *HostRewriteDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	d.hits[req.URL.Host+req.URL.Path]++
	d.mu.Unlock()

	cloned := req.Clone(req.Context())
	cloned.URL.Scheme = d.base.Scheme
	cloned.URL.Host = d.base.Host
	cloned.Host = d.base.Host
	return d.next.Do(cloned)
}

// Hits reports how many requests were made for rawURL before rewriting.
func (d *HostRewriteDoer) Hits(rawURL string) int {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hits[parsed.Host+parsed.Path]
}
