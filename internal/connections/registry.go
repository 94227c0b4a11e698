// Package connections maps connection ids to workbook paths.
//
// The registry file holds one "id;path" entry per line. When an id appears
// more than once the last line wins. Every mutation rewrites the whole file
// and invalidates the cached entry for that id before returning.
package connections

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/logging"
)

// Registry resolves connection ids to workbook paths.
type Registry interface {
	Resolve(ctx context.Context, id uuid.UUID) (string, error)
	Save(ctx context.Context, id uuid.UUID, path string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Invalidate(id uuid.UUID)
	List(ctx context.Context) ([]Entry, error)
}

// Entry is one line of the registry file.
type Entry struct {
	ID   uuid.UUID `json:"id"`
	Path string    `json:"path"`
}

// ParseID parses a connection id. The error wraps core.ErrValidation.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid connection id '%s': %v: %w", s, err, core.ErrValidation)
	}
	return id, nil
}

// FileRegistry is a Registry stored in a text file with an in-memory cache
// of resolved ids.
type FileRegistry struct {
	path string

	// file guards reads and rewrites of the registry file.
	file sync.Mutex

	mu    sync.RWMutex
	cache map[uuid.UUID]string
}

// NewFileRegistry returns a registry stored at path. The file is created on
// the first Save.
func NewFileRegistry(path string) *FileRegistry {
	return &FileRegistry{
		path:  path,
		cache: make(map[uuid.UUID]string),
	}
}

// Path returns the registry file path.
func (r *FileRegistry) Path() string {
	return r.path
}

// Resolve returns the path registered for id. An unregistered id yields a
// *core.UserError with code UNKNOWN_CONNECTION_ID.
func (r *FileRegistry) Resolve(ctx context.Context, id uuid.UUID) (string, error) {
	r.mu.RLock()
	path, ok := r.cache[id]
	r.mu.RUnlock()
	if ok {
		return path, nil
	}

	// Hold the file lock while filling the cache so a concurrent Save cannot
	// be overtaken by a stale entry.
	r.file.Lock()
	defer r.file.Unlock()

	entries, err := r.readLocked(ctx)
	if err != nil {
		return "", err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].ID == id {
			r.mu.Lock()
			r.cache[id] = entries[i].Path
			r.mu.Unlock()
			return entries[i].Path, nil
		}
	}
	return "", core.UnknownConnectionError(id.String())
}

// Save registers path for id, replacing earlier entries for id.
func (r *FileRegistry) Save(ctx context.Context, id uuid.UUID, path string) error {
	return r.rewrite(ctx, id, func(entries []Entry) []Entry {
		return append(without(entries, id), Entry{ID: id, Path: path})
	})
}

// Delete removes every entry for id.
func (r *FileRegistry) Delete(ctx context.Context, id uuid.UUID) error {
	return r.rewrite(ctx, id, func(entries []Entry) []Entry {
		return without(entries, id)
	})
}

// Invalidate drops the cached path for id.
func (r *FileRegistry) Invalidate(id uuid.UUID) {
	r.mu.Lock()
	delete(r.cache, id)
	r.mu.Unlock()
}

// List returns the effective entries: one per id, last line wins, in file
// order of first appearance.
func (r *FileRegistry) List(ctx context.Context) ([]Entry, error) {
	entries, err := r.read(ctx)
	if err != nil {
		return nil, err
	}

	latest := make(map[uuid.UUID]string, len(entries))
	var order []uuid.UUID
	for _, e := range entries {
		if _, ok := latest[e.ID]; !ok {
			order = append(order, e.ID)
		}
		latest[e.ID] = e.Path
	}

	out := make([]Entry, 0, len(order))
	for _, id := range order {
		out = append(out, Entry{ID: id, Path: latest[id]})
	}
	return out, nil
}

func (r *FileRegistry) read(ctx context.Context) ([]Entry, error) {
	r.file.Lock()
	defer r.file.Unlock()
	return r.readLocked(ctx)
}

// readLocked parses the registry file. A missing file is an empty registry.
// Malformed lines are logged and skipped.
func (r *FileRegistry) readLocked(ctx context.Context) ([]Entry, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read connection registry '%s': %v: %w", r.path, err, core.ErrIO)
	}

	var entries []Entry
	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		idText, path, ok := strings.Cut(line, ";")
		id, err := uuid.Parse(strings.TrimSpace(idText))
		if !ok || err != nil || strings.TrimSpace(path) == "" {
			logging.FromContext(ctx).Warn("skipping malformed connection registry line",
				"file", r.path, "line", n)
			continue
		}
		entries = append(entries, Entry{ID: id, Path: strings.TrimSpace(path)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read connection registry '%s': %v: %w", r.path, err, core.ErrIO)
	}
	return entries, nil
}

// rewrite applies edit to the entries and writes the file back. The cache
// entry for id is dropped before the file lock is released, even on failure.
func (r *FileRegistry) rewrite(ctx context.Context, id uuid.UUID, edit func([]Entry) []Entry) error {
	r.file.Lock()
	defer r.file.Unlock()
	defer r.Invalidate(id)

	entries, err := r.readLocked(ctx)
	if err != nil {
		return err
	}
	entries = edit(entries)

	var buf bytes.Buffer
	for _, e := range entries {
		fmt.Fprintf(&buf, "%s;%s\n", e.ID, e.Path)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("write connection registry '%s': %v: %w", r.path, err, core.ErrIO)
	}
	if err := os.WriteFile(r.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write connection registry '%s': %v: %w", r.path, err, core.ErrIO)
	}
	return nil
}

func without(entries []Entry, id uuid.UUID) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
