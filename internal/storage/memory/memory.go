// internal/storage/memory/memory.go
package memory

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/trackedit/trackedit/internal/config"
	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/internal/model/convert"
	"github.com/trackedit/trackedit/internal/storage"
)

const (
	extJSON = ".json"
	extGzip = ".json.gz"
)

// Backend keeps session snapshots in memory and exports each save to a
// JSON file in the output directory.
type Backend struct {
	cfg      config.MemoryConfig
	sessions map[string]model.SessionRecord

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		sessions: make(map[string]model.SessionRecord),
	}
}

// Init ensures the output directory exists.
func (b *Backend) Init() error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// Save snapshots the session and exports it to disk.
func (b *Backend) Save(_ context.Context, name string, s *model.Session) error {
	rec := convert.SessionToRecord(name, s)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.sessions[name] = rec
	if b.cfg.OutputDir == "" {
		return nil
	}
	return b.exportJSON(name, rec)
}

// Load returns the named session, reading the exported file when it is
// not held in memory.
func (b *Backend) Load(_ context.Context, name string) (*model.Session, error) {
	b.mu.RLock()
	rec, ok := b.sessions[name]
	b.mu.RUnlock()

	if !ok {
		var err error
		rec, err = b.importJSON(name)
		if err != nil {
			return nil, err
		}
		b.mu.Lock()
		b.sessions[name] = rec
		b.mu.Unlock()
	}
	return convert.RecordToSession(rec)
}

// List returns the names of all sessions held in memory or exported.
func (b *Backend) List(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := make(map[string]bool, len(b.sessions))
	for name := range b.sessions {
		seen[name] = true
	}

	if b.cfg.OutputDir != "" {
		entries, err := os.ReadDir(b.cfg.OutputDir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to list output directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			n := e.Name()
			switch {
			case strings.HasSuffix(n, extGzip):
				seen[strings.TrimSuffix(n, extGzip)] = true
			case strings.HasSuffix(n, extJSON):
				seen[strings.TrimSuffix(n, extJSON)] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GetExportedFilePath returns the path of the most recent export.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// fileName maps a session name to a file name without path separators.
func fileName(name string) string {
	r := strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_")
	return r.Replace(name)
}

func (b *Backend) exportPath(name string, compressed bool) string {
	ext := extJSON
	if compressed {
		ext = extGzip
	}
	return filepath.Join(b.cfg.OutputDir, fileName(name)+ext)
}

// exportJSON writes the session record to a (gzipped) JSON file
func (b *Backend) exportJSON(name string, rec model.SessionRecord) error {
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := b.exportPath(name, b.cfg.CompressOutput)
	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, rec)
	} else {
		err = writeJSON(outputPath, rec)
	}
	if err != nil {
		return err
	}

	// drop the other format so a later load does not pick up a stale copy
	_ = os.Remove(b.exportPath(name, !b.cfg.CompressOutput))
	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) importJSON(name string) (model.SessionRecord, error) {
	var rec model.SessionRecord
	if b.cfg.OutputDir == "" {
		return rec, fmt.Errorf("%w: %s", storage.ErrSessionNotFound, name)
	}

	for _, compressed := range []bool{true, false} {
		path := b.exportPath(name, compressed)
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return rec, fmt.Errorf("failed to open %s: %w", path, err)
		}
		err = readJSON(f, compressed, &rec)
		f.Close()
		if err != nil {
			return rec, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		return rec, nil
	}
	return rec, fmt.Errorf("%w: %s", storage.ErrSessionNotFound, name)
}

func writeJSON(path string, data model.SessionRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data model.SessionRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}

func readJSON(r io.Reader, compressed bool, dst *model.SessionRecord) error {
	if compressed {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return err
		}
		defer gz.Close()
		r = gz
	}
	return json.NewDecoder(r).Decode(dst)
}
