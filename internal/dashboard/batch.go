package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/threatdesk/internal/config"
	"github.com/nao1215/threatdesk/internal/model"
)

// fileContent is one file read result awaiting registration.
type fileContent struct {
	path string
	data []byte
	err  error
}

// IngestFiles reads the named files concurrently and registers each one as
// a file-backed source.
//
// Design decision: Reads run in parallel but registration happens
// sequentially in input order:
//  1. Registry insertion order determines AllData ordering, so it must not
//     depend on which read finishes first
//  2. A file that fails to read or parse never aborts the batch; the
//     remaining files still ingest
//  3. Per-file failures are joined into the returned error after every
//     file has been attempted, so callers can report them together
//
// The returned slice holds the successfully parsed sources in input order.
// A file that reads but fails to parse is still registered by the registry
// in the error state; it contributes to the returned error, not the slice.
func (d *Dashboard) IngestFiles(ctx context.Context, paths []string) ([]*model.DataSource, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	concurrency := d.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = config.DefaultConcurrency
	}

	d.logger.Debug("ingesting files",
		slog.Int("count", len(paths)),
		slog.Int("concurrency", concurrency))

	// Each goroutine writes only its own index, so the slice needs no lock.
	contents := make([]fileContent, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			data, err := d.readFile(path)
			contents[i] = fileContent{path: path, data: data, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var errs []error
	sources := make([]*model.DataSource, 0, len(paths))
	for _, content := range contents {
		if content.err != nil {
			d.logger.Warn("file skipped",
				slog.String("path", content.path),
				slog.String("error", content.err.Error()))
			errs = append(errs, content.err)
			continue
		}

		source, err := d.registry.AddFileSource(filepath.Base(content.path), bytes.NewReader(content.data))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", content.path, err))
			continue
		}
		sources = append(sources, source)
	}

	return sources, errors.Join(errs...)
}

// readFile reads one file, enforcing the configured upload size limit.
// It reads one byte past the limit so an over-limit file is distinguishable
// from one that is exactly at it.
func (d *Dashboard) readFile(path string) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided file path is intentional
	if err != nil {
		return nil, err
	}
	defer f.Close()

	limit := d.cfg.MaxUploadSize
	if limit <= 0 {
		limit = config.DefaultMaxUploadSize
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, path, limit)
	}
	return data, nil
}
