package report

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileSink writes reports into a fixed subdirectory of a storage root
type FileSink struct {
	dir string
}

// NewFileSink creates a sink writing to root/subdir
func NewFileSink(root, subdir string) *FileSink {
	return &FileSink{dir: filepath.Join(root, subdir)}
}

// Dir returns the directory reports are written to
func (s *FileSink) Dir() string {
	return s.dir
}

// Persist writes data to a new file. An existing report is never
// overwritten; a name already taken gets a numeric suffix instead.
func (s *FileSink) Persist(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: invalid report name %q", ErrIO, name)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: failed to create %s: %w", ErrIO, s.dir, err)
	}

	path, f, err := s.create(name)
	if err != nil {
		return "", err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("%w: failed to write %s: %w", ErrIO, path, err)
	}

	if err := f.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		f.Close()
		return "", fmt.Errorf("%w: failed to sync %s: %w", ErrIO, path, err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: failed to close %s: %w", ErrIO, path, err)
	}

	return path, nil
}

const maxNameAttempts = 100

func (s *FileSink) create(name string) (string, *os.File, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = base + "_" + strconv.Itoa(i) + ext
		}

		path := filepath.Join(s.dir, candidate)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			return path, f, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", nil, fmt.Errorf("%w: failed to create %s: %w", ErrIO, path, err)
		}
	}

	return "", nil, fmt.Errorf("%w: no free report name for %s", ErrIO, name)
}
