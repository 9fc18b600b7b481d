// Package catalog keeps the local snapshot of the add-on catalog and answers
// lookups against it.
package catalog

import (
	"compress/bzip2"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/snappy"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/meza/minepkg/internal/constants"
	"github.com/meza/minepkg/internal/fileutils"
	"github.com/meza/minepkg/internal/httpclient"
	"github.com/meza/minepkg/internal/models"
	"github.com/meza/minepkg/internal/perf"
)

var errDecodeAborted = errors.New("feed decoding aborted")

type Config struct {
	DataDir  string
	FeedURL  string
	FileName string
}

// RefreshStartedMsg is sent before the feed is requested. Missing is true when
// the refresh was triggered by Load finding no snapshot.
type RefreshStartedMsg struct {
	Missing bool
}

// RefreshProgressMsg reports compressed feed bytes received. Total is zero when
// the server did not announce a length.
type RefreshProgressMsg struct {
	Downloaded int64
	Total      int64
}

type RefreshDoneMsg struct {
	Path string
}

type Store struct {
	fs        afero.Fs
	doer      httpclient.Doer
	config    Config
	sender    httpclient.Sender
	onRefresh func()
}

type StoreOption func(*Store)

func WithSender(sender httpclient.Sender) StoreOption {
	return func(store *Store) {
		if sender != nil {
			store.sender = sender
		}
	}
}

// WithRefreshHook runs hook at the start of every refresh.
func WithRefreshHook(hook func()) StoreOption {
	return func(store *Store) {
		store.onRefresh = hook
	}
}

func NewStore(fs afero.Fs, doer httpclient.Doer, config Config, options ...StoreOption) *Store {
	if config.FileName == "" {
		config.FileName = constants.CacheFileName
	}
	if config.FeedURL == "" {
		config.FeedURL = constants.DefaultFeedURL
	}
	store := &Store{
		fs:     fs,
		doer:   doer,
		config: config,
		sender: httpclient.NoopSender{},
	}
	for _, option := range options {
		option(store)
	}
	return store
}

func (store *Store) Path() string {
	return filepath.Join(store.config.DataDir, store.config.FileName)
}

// Load decodes the snapshot, fetching it first when it does not exist yet. Only
// a missing snapshot triggers the fetch, and only once per call.
func (store *Store) Load(ctx context.Context) (db *models.ModDB, returnErr error) {
	ctx, span := perf.StartSpan(ctx, "catalog.load", perf.WithAttributes(attribute.String("path", store.Path())))
	defer func() { span.EndWithError(returnErr) }()

	file, err := store.fs.Open(store.Path())
	if errors.Is(err, os.ErrNotExist) {
		span.AddEvent("snapshot_missing")
		store.send(RefreshStartedMsg{Missing: true})
		if refreshErr := store.refresh(ctx); refreshErr != nil {
			return nil, refreshErr
		}
		file, err = store.fs.Open(store.Path())
	}
	if err != nil {
		return nil, &CacheReadError{Path: store.Path(), Err: err}
	}
	defer file.Close()

	db = &models.ModDB{}
	if err := json.NewDecoder(snappy.NewReader(file)).Decode(db); err != nil {
		return nil, &CacheCorruptError{Path: store.Path(), Err: err}
	}
	span.SetAttributes(attribute.Int("mods", len(db.Mods)))
	return db, nil
}

// Refresh replaces the snapshot with a fresh copy of the remote feed. The old
// snapshot stays in place until the new one is fully written.
func (store *Store) Refresh(ctx context.Context) error {
	store.send(RefreshStartedMsg{})
	return store.refresh(ctx)
}

func (store *Store) refresh(ctx context.Context) (returnErr error) {
	if store.onRefresh != nil {
		store.onRefresh()
	}
	ctx, span := perf.StartSpan(ctx, "catalog.refresh", perf.WithAttributes(attribute.String("url", store.config.FeedURL)))
	defer func() { span.EndWithError(returnErr) }()

	ctx, cancel := httpclient.WithFeedTimeout(ctx)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, store.config.FeedURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build feed request: %w", err)
	}
	response, err := store.doer.Do(request)
	if err != nil {
		return &NetworkError{URL: store.config.FeedURL, Err: httpclient.WrapTimeoutError(err)}
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return &NetworkError{URL: store.config.FeedURL, StatusCode: response.StatusCode}
	}

	tempPath, err := fileutils.TempSibling(store.fs, store.Path())
	if err != nil {
		return fmt.Errorf("failed to create temporary snapshot: %w", err)
	}

	written, err := store.recompress(ctx, tempPath, response)
	if err != nil {
		if removeErr := fileutils.RemoveIfExists(store.fs, tempPath); removeErr != nil {
			err = errors.Join(err, removeErr)
		}
		return err
	}

	if err := fileutils.Commit(store.fs, tempPath, store.Path()); err != nil {
		return fmt.Errorf("failed to replace catalog snapshot: %w", err)
	}

	span.SetAttributes(attribute.Int64("feed_bytes", written))
	store.send(RefreshDoneMsg{Path: store.Path()})
	return nil
}

// recompress streams the response body through the bzip2 decoder into a
// snappy framed file at tempPath and returns the compressed byte count read.
func (store *Store) recompress(ctx context.Context, tempPath string, response *http.Response) (int64, error) {
	file, err := store.fs.OpenFile(tempPath, os.O_WRONLY|os.O_TRUNC, fileutils.DefaultFileMode)
	if err != nil {
		return 0, fmt.Errorf("failed to open temporary snapshot: %w", err)
	}

	total := response.ContentLength
	if total < 0 {
		total = 0
	}

	pipeReader, pipeWriter := io.Pipe()
	var group errgroup.Group

	var received int64
	var fetchErr error
	group.Go(func() error {
		var copyErr error
		received, copyErr = httpclient.CopyChunks(ctx, pipeWriter, response.Body, func(written int64) {
			store.send(RefreshProgressMsg{Downloaded: written, Total: total})
		})
		pipeWriter.CloseWithError(copyErr)
		if copyErr != nil && !errors.Is(copyErr, errDecodeAborted) {
			fetchErr = &NetworkError{URL: store.config.FeedURL, Err: httpclient.WrapTimeoutError(copyErr)}
		}
		return nil
	})

	group.Go(func() error {
		encoder := snappy.NewBufferedWriter(file)
		if _, copyErr := io.Copy(encoder, bzip2.NewReader(pipeReader)); copyErr != nil {
			pipeReader.CloseWithError(errDecodeAborted)
			return fmt.Errorf("failed to decompress catalog feed: %w", copyErr)
		}
		// trailing bytes after the end of the bzip2 stream are ignored
		if _, drainErr := io.Copy(io.Discard, pipeReader); drainErr != nil {
			return drainErr
		}
		return encoder.Close()
	})

	groupErr := group.Wait()
	closeErr := file.Close()
	if fetchErr != nil {
		return received, fetchErr
	}
	if groupErr != nil {
		return received, groupErr
	}
	if closeErr != nil {
		return received, fmt.Errorf("failed to write catalog snapshot: %w", closeErr)
	}
	return received, nil
}

func (store *Store) send(msg tea.Msg) {
	store.sender.Send(msg)
}
