package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	apperrors "salespulse/internal/errors"
)

// FileSource reads an export from the local filesystem
type FileSource struct {
	path   string
	sheet  string
	format Format
	logger *slog.Logger
}

// NewFileSource validates the extension of path; the file itself is only
// opened on Fingerprint or Load.
func NewFileSource(path, sheet string, logger *slog.Logger) (*FileSource, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FileSource{
		path:   path,
		sheet:  sheet,
		format: format,
		logger: logger.With(slog.String("component", "file_source")),
	}, nil
}

func (s *FileSource) ID() string { return "file:" + s.path }

// Fingerprint combines size and modification time
func (s *FileSource) Fingerprint(_ context.Context) (string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return "", s.statError(err)
	}
	return strconv.FormatInt(info.Size(), 10) + "-" + strconv.FormatInt(info.ModTime().UnixNano(), 10), nil
}

func (s *FileSource) Load(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, s.statError(err)
	}
	defer f.Close()

	table, err := ReadTable(f, s.format, s.sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	s.logger.InfoContext(ctx, "export read",
		slog.String("path", s.path),
		slog.String("format", string(s.format)),
		slog.Int("records", len(table.Records)))
	return table, nil
}

func (s *FileSource) statError(err error) error {
	if os.IsNotExist(err) {
		return apperrors.NewNotFoundError("export " + s.path).WithContext("path", s.path)
	}
	return apperrors.NewLoadError("failed to access export", err).WithContext("path", s.path)
}
