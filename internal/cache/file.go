package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when nothing usable is cached for a season.
	ErrNotFound = errors.New("no cached data for season")
)

// Kind names the data kinds kept per season.
type Kind string

const (
	KindStandings Kind = "riders"
	KindWeather   Kind = "weather"
)

// FileCache keeps one JSON file per season and kind under a directory.
// Entries are never invalidated; a season is fetched once.
type FileCache struct {
	dir    string
	logger *zap.Logger
}

func NewFileCache(dir string, logger *zap.Logger) *FileCache {
	return &FileCache{dir: dir, logger: logger}
}

// Path returns the file backing the given entry.
func (c *FileCache) Path(kind Kind, season int) string {
	return filepath.Join(c.dir, fmt.Sprintf("%d-MotoGP-%s.json", season, kind))
}

// Load decodes the cached entry into v. Absent and unreadable entries both
// report ErrNotFound so callers fall back to fetching.
func (c *FileCache) Load(kind Kind, season int, v any) error {
	path := c.Path(kind, season)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		c.logger.Warn("cache entry unreadable, treating as miss", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Warn("cache entry corrupt, treating as miss", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if e, ok := v.(emptier); ok && e.Empty() {
		c.logger.Warn("cache entry empty, treating as miss", zap.String("path", path))
		return fmt.Errorf("%w: empty entry %s", ErrNotFound, path)
	}
	return nil
}

// emptier is implemented by cached values that can decode to nothing, e.g.
// from "{}" or "null".
type emptier interface {
	Empty() bool
}

// Save writes v as the entry for season. The file is replaced atomically.
func (c *FileCache) Save(kind Kind, season int, v any) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, fmt.Sprintf(".%d-%s-*.tmp", season, kind))
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.Path(kind, season)); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}
