// Package attach manages the temporary image files added to a feedback
// session. Every file lives in a session-scoped temp directory and is
// removed when the session ends, on every exit path.
package attach

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// Source tags how an attachment entered the session.
type Source string

const (
	SourcePaste  Source = "paste"
	SourceDrag   Source = "drag"
	SourcePicker Source = "picker"
)

// Record describes one added image.
type Record struct {
	Path      string
	Source    Source
	CreatedAt time.Time
}

// imageExts mirrors the file types the picker accepts.
var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".bmp": true, ".webp": true,
}

// IsImagePath reports whether path has a recognised image extension.
func IsImagePath(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// Store owns the attachments of one session. Records keep arrival order.
// A record whose backing file disappears externally is pruned eagerly by a
// watcher on the session directory.
type Store struct {
	mu      sync.Mutex
	dir     string
	records []Record
	watcher *fsnotify.Watcher
	closed  bool
}

// NewStore creates the session temp directory and starts the stale-record
// watcher. Callers must Close the store on every exit path.
func NewStore(sessionID string) (*Store, error) {
	dir, err := os.MkdirTemp("", "parley-"+sessionID+"-*")
	if err != nil {
		return nil, fmt.Errorf("creating attachment directory: %w", err)
	}

	s := &Store{dir: dir}

	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		if err := watcher.Add(dir); err == nil {
			s.watcher = watcher
			go s.watch()
		} else {
			watcher.Close()
		}
	}
	// Watcher failure is non-fatal: Paths still prunes by stat.

	return s, nil
}

// watch prunes records whose backing file is removed or renamed away while
// the session is open.
func (s *Store) watch() {
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				s.prune(ev.Name)
			}
		case _, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// prune drops every record backed by path.
func (s *Store) prune(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	for _, r := range s.records {
		if r.Path != path {
			kept = append(kept, r)
		}
	}
	s.records = kept
}

// AddBytes writes image content to a freshly named file and appends a
// record. ext should carry a leading dot; empty defaults to ".png".
func (s *Store) AddBytes(data []byte, ext string, src Source) (Record, error) {
	if ext == "" {
		ext = ".png"
	}
	path := filepath.Join(s.dir, uuid.New().String()+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Record{}, fmt.Errorf("writing attachment: %w", err)
	}
	rec := Record{Path: path, Source: src, CreatedAt: time.Now()}
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return rec, nil
}

// AddFile copies an existing image into the session directory and appends a
// record. Adding the same file twice yields two records; the store does not
// deduplicate.
func (s *Store) AddFile(path string, src Source) (Record, error) {
	if !IsImagePath(path) {
		return Record{}, fmt.Errorf("not an image file: %s", path)
	}
	in, err := os.Open(path)
	if err != nil {
		return Record{}, fmt.Errorf("opening attachment source: %w", err)
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return Record{}, fmt.Errorf("reading attachment source: %w", err)
	}
	return s.AddBytes(data, strings.ToLower(filepath.Ext(path)), src)
}

// Paths returns backing file paths in arrival order, pruning any record
// whose file no longer exists.
func (s *Store) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	paths := make([]string, 0, len(s.records))
	for _, r := range s.records {
		if _, err := os.Stat(r.Path); err != nil {
			continue
		}
		kept = append(kept, r)
		paths = append(paths, r.Path)
	}
	s.records = kept
	return paths
}

// Len returns the current record count after pruning.
func (s *Store) Len() int { return len(s.Paths()) }

// Clear deletes every backing file and empties the record list. Idempotent:
// files already removed externally are not errors.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, r := range s.records {
		if err := os.Remove(r.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			if firstErr == nil {
				firstErr = fmt.Errorf("removing attachment %s: %w", r.Path, err)
			}
		}
	}
	s.records = nil
	return firstErr
}

// Close tears the store down: clears all records, stops the watcher and
// removes the session directory. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.Clear()
	if s.watcher != nil {
		s.watcher.Close()
	}
	if rmErr := os.RemoveAll(s.dir); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}
