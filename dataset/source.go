package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dynastyglobe/logging"
	"dynastyglobe/metrics"
	"dynastyglobe/territory"
)

// Source loads the dataset for a registry key.
type Source interface {
	Fetch(ctx context.Context, key string) (*territory.Dataset, error)
}

// FileSource reads <dir>/<key>.geojson from the local filesystem.
type FileSource struct {
	Dir string
}

// NewFileSource returns a source rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

// Fetch reads and parses the resource for key.
func (s *FileSource) Fetch(ctx context.Context, key string) (*territory.Dataset, error) {
	entry, ok := Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, key, err)
	}

	start := time.Now()
	path := filepath.Join(s.Dir, entry.File)
	data, err := os.ReadFile(path)
	metrics.RecordFetch("file", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, path, err)
	}

	ds, err := Parse(entry.Name, data)
	if err != nil {
		return nil, err
	}

	logging.Debug().
		Str("dynasty", key).
		Str("path", path).
		Int("features", len(ds.Features)).
		Msg("dataset read")
	return ds, nil
}

// IsTransient reports whether err came from the transport rather than the data.
func IsTransient(err error) bool {
	return errors.Is(err, ErrFetch)
}
