// Package memory manages the per-character store of collected chat snippets
// (memories). The store is one JSON file keyed by character.
package memory

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrDuplicate is returned when the same text is already stored for a
	// character.
	ErrDuplicate = errors.New("memory already exists")
	// ErrNotFound is returned when no memory has the requested ID.
	ErrNotFound = errors.New("memory not found")
	// ErrEmpty is returned when adding a memory without text.
	ErrEmpty = errors.New("memory text is empty")
)

// DateLayout is the default Date format for new memories.
const DateLayout = "1/2/2006, 3:04:05 PM"

// Memory is one collected snippet.
type Memory struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Title string `json:"title"`
	// Text is kept as collected and may contain markup.
	Text string `json:"text"`
	// Path points at an attached audio file, relative to the host app root.
	Path string `json:"path,omitempty"`
}

// Store holds memories per character key in insertion order.
type Store struct {
	Memories map[string][]Memory `json:"memories"`

	now func() time.Time
}

// ReadFile reads a store from disk. Returns an empty Store if the file does
// not exist.
func ReadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Store{}, nil
	}
	if err != nil {
		return nil, err
	}

	var s Store
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Add stores text under key. An empty date defaults to the current time in
// DateLayout. The same text cannot be stored twice under one key.
func (s *Store) Add(key, text, date string) (Memory, error) {
	if strings.TrimSpace(text) == "" {
		return Memory{}, ErrEmpty
	}
	for _, m := range s.Memories[key] {
		if m.Text == text {
			return Memory{}, ErrDuplicate
		}
	}
	if date == "" {
		date = s.clock().Format(DateLayout)
	}
	m := Memory{
		ID:   uuid.NewString(),
		Date: date,
		Text: text,
	}
	if s.Memories == nil {
		s.Memories = make(map[string][]Memory)
	}
	s.Memories[key] = append(s.Memories[key], m)
	return m, nil
}

// List returns the memories of key, or of fallback when key has none,
// newest first. The result is a copy.
func (s *Store) List(key, fallback string) []Memory {
	list := s.Memories[key]
	if len(list) == 0 && fallback != "" {
		list = s.Memories[fallback]
	}
	out := slices.Clone(list)
	slices.Reverse(out)
	return out
}

// FallbackKey returns the character name for an avatar key such as
// "Seraphina.png", which older stores used as the key. It returns "" for keys
// that are not avatar file names.
func FallbackKey(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".png", ".webp", ".jpg", ".jpeg", ".gif":
		return strings.TrimSuffix(key, filepath.Ext(key))
	}
	return ""
}

// Get returns the memory with the given ID.
func (s *Store) Get(key, id string) (Memory, error) {
	for _, m := range s.Memories[key] {
		if m.ID == id {
			return m, nil
		}
	}
	return Memory{}, ErrNotFound
}

// SetTitle renames a memory.
func (s *Store) SetTitle(key, id, title string) error {
	list := s.Memories[key]
	for i := range list {
		if list[i].ID == id {
			list[i].Title = title
			return nil
		}
	}
	return ErrNotFound
}

// Remove deletes a memory. A key left without memories is dropped.
func (s *Store) Remove(key, id string) error {
	list := s.Memories[key]
	for i := range list {
		if list[i].ID != id {
			continue
		}
		list = slices.Delete(list, i, i+1)
		if len(list) == 0 {
			delete(s.Memories, key)
		} else {
			s.Memories[key] = list
		}
		return nil
	}
	return ErrNotFound
}

// Keys returns the character keys that have memories, sorted.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.Memories))
	for k, list := range s.Memories {
		if len(list) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// WriteFile writes the store to disk atomically using a temporary file and
// rename, which is safe against concurrent writers.
func (s *Store) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".memories-*.json")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}
