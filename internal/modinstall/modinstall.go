// Package modinstall downloads a resolved set of files into a mods directory,
// several at a time, committing each one atomically.
package modinstall

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/meza/minepkg/internal/fileutils"
	"github.com/meza/minepkg/internal/httpclient"
	"github.com/meza/minepkg/internal/models"
	"github.com/meza/minepkg/internal/modfilename"
	"github.com/meza/minepkg/internal/modpath"
	"github.com/meza/minepkg/internal/perf"
)

// DefaultConcurrency is the number of downloads run at once unless overridden.
const DefaultConcurrency = 4

type Downloader func(context.Context, string, string, httpclient.Doer, httpclient.Sender, ...afero.Fs) error

type Outcome struct {
	File        models.ModFile
	Path        string
	Bytes       int64
	Fingerprint uint32
}

// FileProgressMsg is a per-file download progress update.
type FileProgressMsg struct {
	FileID     uint32
	Name       string
	Downloaded int64
	Total      int64
	Estimated  bool
	Aggregate  AggregateSnapshot
}

type FileDoneMsg struct {
	Outcome   Outcome
	Aggregate AggregateSnapshot
}

type FileErrMsg struct {
	FileID uint32
	Name   string
	Err    error
}

type DuplicateFileNameError struct {
	Name string
}

func (e *DuplicateFileNameError) Error() string {
	return fmt.Sprintf("more than one file would be installed as %s", e.Name)
}

type MissingDownloadURLError struct {
	FileID uint32
	Name   string
}

func (e *MissingDownloadURLError) Error() string {
	return fmt.Sprintf("file %d (%s) has no download url", e.FileID, e.Name)
}

type Installer struct {
	fs          afero.Fs
	downloader  Downloader
	concurrency int
	fingerprint func(path string) uint32
}

type Option func(*Installer)

// WithConcurrency sets how many files download at once; zero removes the limit.
func WithConcurrency(concurrency int) Option {
	return func(installer *Installer) {
		if concurrency >= 0 {
			installer.concurrency = concurrency
		}
	}
}

// WithFingerprint records a fingerprint of every installed file. The function
// receives the final path on disk.
func WithFingerprint(fingerprint func(path string) uint32) Option {
	return func(installer *Installer) {
		installer.fingerprint = fingerprint
	}
}

func NewInstaller(fs afero.Fs, downloader Downloader, options ...Option) *Installer {
	installer := &Installer{
		fs:          fs,
		downloader:  downloader,
		concurrency: DefaultConcurrency,
	}
	for _, option := range options {
		option(installer)
	}
	return installer
}

type plannedFile struct {
	file        models.ModFile
	name        string
	destination string
}

// Install downloads every file into targetDir and returns one outcome per file
// in input order. The first failure cancels the remaining downloads and is
// returned on its own.
func (installer *Installer) Install(ctx context.Context, files []models.ModFile, targetDir string, doer httpclient.Doer, sender httpclient.Sender) (outcomes []Outcome, returnErr error) {
	ctx, span := perf.StartSpan(ctx, "modinstall.install", perf.WithAttributes(
		attribute.Int("files", len(files)),
		attribute.String("target", targetDir),
	))
	defer func() { span.EndWithError(returnErr) }()

	if installer.downloader == nil {
		return nil, errors.New("missing modinstall dependencies: downloader")
	}
	if sender == nil {
		sender = httpclient.NoopSender{}
	}

	plan, err := installer.planFiles(files, targetDir)
	if err != nil {
		return nil, err
	}
	if err := installer.fs.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create mods directory: %w", err)
	}

	progress := NewAggregateProgress(len(plan))
	outcomes = make([]Outcome, len(plan))

	group, groupCtx := errgroup.WithContext(ctx)
	if installer.concurrency > 0 {
		group.SetLimit(installer.concurrency)
	}
	for i, planned := range plan {
		group.Go(func() error {
			outcome, err := installer.installOne(groupCtx, planned, doer, sender, progress)
			if err != nil {
				sender.Send(FileErrMsg{FileID: planned.file.ID, Name: planned.name, Err: err})
				return err
			}
			outcomes[i] = outcome
			sender.Send(FileDoneMsg{Outcome: outcome, Aggregate: progress.fileDone()})
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("bytes", progress.Snapshot().Downloaded))
	return outcomes, nil
}

func (installer *Installer) planFiles(files []models.ModFile, targetDir string) ([]plannedFile, error) {
	plan := make([]plannedFile, 0, len(files))
	seen := make(map[string]struct{}, len(files))
	for _, file := range files {
		name, err := modfilename.EnsureArchiveExtension(file.FileName)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(file.DownloadURL) == "" {
			return nil, &MissingDownloadURLError{FileID: file.ID, Name: name}
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return nil, &DuplicateFileNameError{Name: name}
		}
		seen[key] = struct{}{}
		destination, err := modpath.Destination(installer.fs, targetDir, name)
		if err != nil {
			return nil, err
		}
		plan = append(plan, plannedFile{file: file, name: name, destination: destination})
	}
	return plan, nil
}

func (installer *Installer) installOne(ctx context.Context, planned plannedFile, doer httpclient.Doer, sender httpclient.Sender, progress *AggregateProgress) (Outcome, error) {
	tempPath, err := fileutils.TempSibling(installer.fs, planned.destination)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to prepare %s: %w", planned.name, err)
	}

	fileSender := &progressSender{parent: sender, planned: planned, progress: progress}
	if err := installer.downloader(ctx, planned.file.DownloadURL, tempPath, doer, fileSender, installer.fs); err != nil {
		_ = fileutils.RemoveIfExists(installer.fs, tempPath)
		return Outcome{}, fmt.Errorf("failed to download %s: %w", planned.name, err)
	}

	info, err := installer.fs.Stat(tempPath)
	if err != nil {
		_ = fileutils.RemoveIfExists(installer.fs, tempPath)
		return Outcome{}, fmt.Errorf("failed to inspect %s: %w", planned.name, err)
	}

	if err := fileutils.Commit(installer.fs, tempPath, planned.destination); err != nil {
		return Outcome{}, fmt.Errorf("failed to install %s: %w", planned.name, err)
	}

	outcome := Outcome{File: planned.file, Path: planned.destination, Bytes: info.Size()}
	if installer.fingerprint != nil {
		outcome.Fingerprint = installer.fingerprint(planned.destination)
	}
	return outcome, nil
}

// progressSender turns a single download's byte updates into FileProgressMsg
// and keeps the aggregate counters current.
type progressSender struct {
	parent   httpclient.Sender
	planned  plannedFile
	progress *AggregateProgress

	mu         sync.Mutex
	downloaded int64
	total      int64
}

func (s *progressSender) Send(msg tea.Msg) {
	update, ok := msg.(httpclient.ProgressMsg)
	if !ok {
		return
	}

	s.mu.Lock()
	deltaBytes := update.Downloaded - s.downloaded
	deltaTotal := update.Total - s.total
	s.downloaded, s.total = update.Downloaded, update.Total
	s.mu.Unlock()

	snapshot := s.progress.add(deltaBytes, deltaTotal)
	s.parent.Send(FileProgressMsg{
		FileID:     s.planned.file.ID,
		Name:       s.planned.name,
		Downloaded: update.Downloaded,
		Total:      update.Total,
		Estimated:  update.Estimated,
		Aggregate:  snapshot,
	})
}

// AggregateProgress sums progress across concurrent downloads.
type AggregateProgress struct {
	files      int
	done       atomic.Int64
	downloaded atomic.Int64
	total      atomic.Int64
}

type AggregateSnapshot struct {
	Files      int
	Done       int
	Downloaded int64
	Total      int64
}

func (s AggregateSnapshot) Ratio() float64 {
	if s.Total <= 0 {
		return 0
	}
	return min(float64(s.Downloaded)/float64(s.Total), 1)
}

func NewAggregateProgress(files int) *AggregateProgress {
	return &AggregateProgress{files: files}
}

func (p *AggregateProgress) add(deltaBytes int64, deltaTotal int64) AggregateSnapshot {
	p.downloaded.Add(deltaBytes)
	p.total.Add(deltaTotal)
	return p.Snapshot()
}

func (p *AggregateProgress) fileDone() AggregateSnapshot {
	p.done.Add(1)
	return p.Snapshot()
}

func (p *AggregateProgress) Snapshot() AggregateSnapshot {
	return AggregateSnapshot{
		Files:      p.files,
		Done:       int(p.done.Load()),
		Downloaded: p.downloaded.Load(),
		Total:      p.total.Load(),
	}
}
