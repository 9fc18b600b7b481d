package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/minepkg/internal/fileutils"
	"github.com/meza/minepkg/internal/perf"
)

// ChunkSize bounds how much of a response body is held in memory at once.
const ChunkSize = 32 * 1024

// EstimatedDownloadSize stands in for the total when a server omits
// Content-Length. It is a guess that keeps progress bars moving, not a measurement.
const EstimatedDownloadSize int64 = 2_500_000

type Sender interface {
	Send(msg tea.Msg)
}

// ProgressMsg is sent after every chunk written by DownloadFile.
type ProgressMsg struct {
	URL        string
	Downloaded int64
	Total      int64
	Estimated  bool
}

func (msg ProgressMsg) Ratio() float64 {
	if msg.Total <= 0 {
		return 0
	}
	ratio := float64(msg.Downloaded) / float64(msg.Total)
	if ratio > 1 {
		return 1
	}
	return ratio
}

type ProgressErrMsg struct {
	URL string
	Err error
}

type NoopSender struct{}

func (NoopSender) Send(tea.Msg) {}

// CopyChunks streams src into dst in ChunkSize pieces, calling onChunk with
// the running byte count after each successful write.
func CopyChunks(ctx context.Context, dst io.Writer, src io.Reader, onChunk func(written int64)) (int64, error) {
	buffer := make([]byte, ChunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, readErr := src.Read(buffer)
		if n > 0 {
			if _, err := dst.Write(buffer[:n]); err != nil {
				return written, err
			}
			written += int64(n)
			if onChunk != nil {
				onChunk(written)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return written, nil
			}
			return written, readErr
		}
	}
}

func DownloadFile(ctx context.Context, url string, filepath string, client Doer, program Sender, filesystem ...afero.Fs) (returnErr error) {
	ctx, span := perf.StartSpan(ctx, "net.http.download", perf.WithAttributes(attribute.String("url", url)))
	defer func() { span.EndWithError(returnErr) }()

	if program == nil {
		program = NoopSender{}
	}
	fs := fileutils.InitFilesystem(filesystem...)

	timeoutCtx, cancel := WithDownloadTimeout(ctx)
	defer cancel()

	request, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}

	response, err := client.Do(request)
	if err != nil {
		if IsTimeoutError(err) {
			return WrapTimeoutError(err)
		}
		return fmt.Errorf("failed to download file: %w", err)
	}
	defer func() {
		if closeErr := response.Body.Close(); closeErr != nil && returnErr == nil {
			returnErr = closeErr
		}
	}()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("download request failed with status %d", response.StatusCode)
	}

	file, err := fs.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	total, estimated := response.ContentLength, false
	if total <= 0 {
		total, estimated = EstimatedDownloadSize, true
	}

	written, copyErr := CopyChunks(timeoutCtx, file, response.Body, func(written int64) {
		program.Send(ProgressMsg{URL: url, Downloaded: written, Total: total, Estimated: estimated})
	})
	closeErr := file.Close()
	if copyErr == nil && !estimated && written < total {
		copyErr = io.ErrUnexpectedEOF
	}

	if copyErr != nil || closeErr != nil {
		writeErr := errors.Join(copyErr, closeErr)
		if copyErr != nil {
			writeErr = fmt.Errorf("failed to write file: %w", WrapTimeoutError(writeErr))
		}
		if removeErr := fs.Remove(filepath); removeErr != nil {
			writeErr = errors.Join(writeErr, fmt.Errorf("failed to remove partial file: %w", removeErr))
		}
		program.Send(ProgressErrMsg{URL: url, Err: writeErr})
		return writeErr
	}

	span.SetAttributes(attribute.Int64("bytes", written))
	return nil
}
