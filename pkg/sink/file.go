package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/energydata/aep/internal/logger"
	"github.com/energydata/aep/internal/output"
	"github.com/energydata/aep/pkg/pipeline"
)

// Stdout is the path that makes FileSink write to standard output.
const Stdout = "-"

// FileSink writes each batch to a file, replacing its previous contents.
type FileSink struct {
	path   string
	format output.Format
	opts   []output.WriterOption
	stdout io.Writer
}

// NewFile creates a file sink. An empty format is inferred from the path.
// opts are applied after the sink's own writer options.
func NewFile(path string, format output.Format, opts ...output.WriterOption) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("file sink: path is required")
	}
	if format == "" {
		if path == Stdout {
			format = output.FormatJSON
		} else {
			f, err := output.FormatFromPath(path)
			if err != nil {
				return nil, fmt.Errorf("file sink: %w", err)
			}
			format = f
		}
	}
	if path == Stdout && format.Binary() {
		return nil, fmt.Errorf("file sink: refusing to write %s to stdout", format)
	}
	return &FileSink{path: path, format: format, opts: opts, stdout: os.Stdout}, nil
}

// BulkInsert writes all documents in the configured format.
func (s *FileSink) BulkInsert(ctx context.Context, docs []pipeline.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	if s.path == Stdout {
		if err := s.write(s.stdout, docs); err != nil {
			return 0, err
		}
		return len(docs), nil
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return 0, fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(s.path) //#nosec G304 -- output path comes from the CLI
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}
	if err := s.write(f, docs); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close output file: %w", err)
	}

	if info, err := os.Stat(s.path); err == nil {
		logger.InfoContext(ctx, "documents written",
			"path", s.path,
			"format", s.format,
			"documents", len(docs),
			"size", humanize.Bytes(uint64(info.Size()))) //#nosec G115 -- file sizes are non-negative
	}
	return len(docs), nil
}

func (s *FileSink) write(w io.Writer, docs []pipeline.Document) error {
	opts := append([]output.WriterOption{output.WithArray(true), output.WithSheet("indicators")}, s.opts...)
	ow, err := output.NewWriter(w, s.format, opts...)
	if err != nil {
		return err
	}
	if err := ow.WriteAll(pipeline.Documents(docs).Items()); err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}
	if err := ow.Close(); err != nil {
		return fmt.Errorf("write %s: %w", s.format, err)
	}
	return nil
}

// Close is a no-op; files are closed after every batch.
func (s *FileSink) Close(context.Context) error {
	return nil
}

// Name returns "file:<path>".
func (s *FileSink) Name() string {
	return "file:" + s.path
}
