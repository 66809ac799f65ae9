package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/saeedalam/stubgen/pkg/types"
)

// JSONStore keeps the stub manifest as a JSON file
type JSONStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewJSONStore creates a new JSON store rooted at basePath
func NewJSONStore(basePath string) *JSONStore {
	return &JSONStore{
		basePath: basePath,
	}
}

// BasePath returns the base path of the store
func (s *JSONStore) BasePath() string {
	return s.basePath
}

func (s *JSONStore) manifestPath() string {
	return filepath.Join(s.basePath, "manifest.json")
}

// --- Manifest ---

// GetManifest returns every entry keyed by source path
func (s *JSONStore) GetManifest() (map[string]types.ManifestEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.readManifest()
}

func (s *JSONStore) readManifest() (map[string]types.ManifestEntry, error) {
	result, err := readJSON[map[string]types.ManifestEntry](s.manifestPath())
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]types.ManifestEntry), nil
		}
		return nil, err
	}
	if *result == nil {
		return make(map[string]types.ManifestEntry), nil
	}
	return *result, nil
}

// GetEntry returns the manifest entry for source
func (s *JSONStore) GetEntry(source string) (*types.ManifestEntry, error) {
	entries, err := s.GetManifest()
	if err != nil {
		return nil, err
	}

	if entry, ok := entries[source]; ok {
		return &entry, nil
	}
	return nil, fmt.Errorf("no stub recorded for %s", source)
}

// SaveEntry records entry, assigning a run ID and timestamp when missing
func (s *JSONStore) SaveEntry(entry *types.ManifestEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readManifest()
	if err != nil {
		return err
	}

	if entry.RunID == "" {
		entry.RunID = generateID("run")
	}
	if entry.GeneratedAt.IsZero() {
		entry.GeneratedAt = time.Now()
	}
	entries[entry.Source] = *entry

	return writeJSON(s.manifestPath(), entries)
}

// RemoveEntry drops source from the manifest. Missing entries are not an error.
func (s *JSONStore) RemoveEntry(source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readManifest()
	if err != nil {
		return err
	}
	if _, ok := entries[source]; !ok {
		return nil
	}
	delete(entries, source)

	return writeJSON(s.manifestPath(), entries)
}

// --- Stats ---

// GetStats summarises the manifest
func (s *JSONStore) GetStats() (*types.Stats, error) {
	entries, err := s.GetManifest()
	if err != nil {
		return nil, err
	}

	stats := &types.Stats{Sources: len(entries)}
	for _, e := range entries {
		stats.Declarations += e.Declarations
		if e.GeneratedAt.After(stats.LastGenerated) {
			stats.LastGenerated = e.GeneratedAt
		}
	}
	return stats, nil
}

// --- Helpers ---

func readJSON[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func writeJSON(path string, v any) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	// Trailing newline for clean git diffs
	data = append(data, '\n')

	// Atomic write: write to temp file then rename to prevent corruption
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func generateID(prefix string) string {
	now := time.Now()
	short := uuid.New().String()[:8]
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), short)
}
