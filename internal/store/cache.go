package store

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const cacheVersion = "v1"

// snapshot is the on-disk form of a parsed Dataset. Only ingestion output
// is cached; analytics are always recomputed.
type snapshot struct {
	Dataset      Dataset
	LastModified time.Time
}

// cacheFilename keys snapshots by source path and worksheet.
func (l *Loader) cacheFilename(path string) string {
	key := path
	if l.opts.Sheet != "" {
		key += "#" + l.opts.Sheet
	}
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "#", "_").Replace(key)
	return filepath.Join(l.opts.CacheDir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func (l *Loader) saveToCache(path string, ds *Dataset) error {
	if l.opts.CacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(l.opts.CacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(l.cacheFilename(path))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(snapshot{Dataset: *ds, LastModified: time.Now()})
}

func (l *Loader) loadFromCache(path string) (*snapshot, error) {
	if l.opts.CacheDir == "" {
		return nil, os.ErrNotExist
	}

	file, err := os.Open(l.cacheFilename(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
