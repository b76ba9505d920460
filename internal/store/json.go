package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/agenthands/forcematch/internal/core/model"
)

// JSONStore keeps the enriched character file in memory. Readers get a
// snapshot copy, so a reload never changes a dataset already handed out.
type JSONStore struct {
	mu     sync.RWMutex
	path   string
	data   model.Dataset
	loaded bool
	logger *log.Logger
}

func NewJSONStore(path string, logger *log.Logger) *JSONStore {
	return &JSONStore{
		path:   path,
		data:   model.Dataset{},
		logger: logger,
	}
}

func (s *JSONStore) Path() string { return s.path }

// Load reads the file into memory. A missing file is logged and yields an
// empty dataset.
func (s *JSONStore) Load() (model.Dataset, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("data file not found", "path", s.path)
		return model.Dataset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data file '%s': %w", s.path, err)
	}

	var data model.Dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode data file '%s': %w", s.path, err)
	}
	if data == nil {
		data = model.Dataset{}
	}
	data.Normalize()

	s.mu.Lock()
	s.data = data
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("loaded characters", "count", len(data), "path", s.path)
	return maps.Clone(data), nil
}

// Save writes data to the store's file and makes it the current snapshot.
func (s *JSONStore) Save(data model.Dataset) error {
	data = maps.Clone(data)
	data.Normalize()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode characters: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write data file '%s': %w", s.path, err)
	}

	s.mu.Lock()
	s.data = data
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("saved characters", "count", len(data), "path", s.path)
	return nil
}

func (s *JSONStore) Reload(_ context.Context) error {
	_, err := s.Load()
	return err
}

func (s *JSONStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *JSONStore) GetCharacter(id string) (model.Character, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.data[id]
	return c, ok
}

func (s *JSONStore) GetAllCharacters() model.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.data)
}

// Relationships returns the outgoing relationships of one character.
func (s *JSONStore) Relationships(id string) []model.Relationship {
	c, ok := s.GetCharacter(id)
	if !ok {
		return nil
	}
	return c.Relationships
}

// Watch reloads the store whenever its file is written or replaced, until
// ctx is cancelled. The parent directory is watched so editors that swap
// files atomically are picked up too.
func (s *JSONStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(s.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if _, err := s.Load(); err != nil {
				s.logger.Error("reloading data file", "err", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", "err", err)
		}
	}
}
