package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/saeedalam/stubgen/pkg/types"
)

func setupTestStore(t *testing.T) *JSONStore {
	t.Helper()
	return NewJSONStore(t.TempDir())
}

func TestManifestEmpty(t *testing.T) {
	store := setupTestStore(t)

	entries, err := store.GetManifest()
	if err != nil {
		t.Fatalf("GetManifest failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty manifest, got %d entries", len(entries))
	}
}

func TestSaveAndGetEntry(t *testing.T) {
	store := setupTestStore(t)

	entry := &types.ManifestEntry{
		Source:       "src/human.cpp",
		StubPath:     "src/human.pyi",
		ContentHash:  "abc123",
		Declarations: 4,
		Classes:      []string{"Human"},
	}
	if err := store.SaveEntry(entry); err != nil {
		t.Fatalf("SaveEntry failed: %v", err)
	}

	if !strings.HasPrefix(entry.RunID, "run-") {
		t.Errorf("Expected generated run ID, got %q", entry.RunID)
	}
	if entry.GeneratedAt.IsZero() {
		t.Error("Expected GeneratedAt to be set")
	}

	loaded, err := store.GetEntry("src/human.cpp")
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if loaded.ContentHash != "abc123" || loaded.Declarations != 4 {
		t.Errorf("Unexpected entry: %+v", loaded)
	}
	if len(loaded.Classes) != 1 || loaded.Classes[0] != "Human" {
		t.Errorf("Expected classes [Human], got %v", loaded.Classes)
	}

	if _, err := store.GetEntry("missing.c"); err == nil {
		t.Error("Expected error for unknown source")
	}
}

func TestSaveEntryOverwrites(t *testing.T) {
	store := setupTestStore(t)

	for _, hash := range []string{"first", "second"} {
		if err := store.SaveEntry(&types.ManifestEntry{Source: "a.c", ContentHash: hash}); err != nil {
			t.Fatalf("SaveEntry failed: %v", err)
		}
	}

	entries, _ := store.GetManifest()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries["a.c"].ContentHash != "second" {
		t.Errorf("Expected latest hash, got %q", entries["a.c"].ContentHash)
	}
}

func TestRemoveEntry(t *testing.T) {
	store := setupTestStore(t)

	store.SaveEntry(&types.ManifestEntry{Source: "a.c"})
	store.SaveEntry(&types.ManifestEntry{Source: "b.cpp"})

	if err := store.RemoveEntry("a.c"); err != nil {
		t.Fatalf("RemoveEntry failed: %v", err)
	}
	if err := store.RemoveEntry("never.c"); err != nil {
		t.Errorf("Removing an unknown entry should not fail: %v", err)
	}

	entries, err := store.GetManifest()
	if err != nil {
		t.Fatalf("GetManifest failed: %v", err)
	}
	if _, ok := entries["b.cpp"]; len(entries) != 1 || !ok {
		t.Errorf("Expected only b.cpp, got %v", entries)
	}
}

func TestManifestAtomicWrite(t *testing.T) {
	store := setupTestStore(t)
	store.SaveEntry(&types.ManifestEntry{Source: "a.c"})

	if _, err := os.Stat(filepath.Join(store.BasePath(), "manifest.json.tmp")); !os.IsNotExist(err) {
		t.Error("Temp file should be renamed away")
	}

	data, err := os.ReadFile(filepath.Join(store.BasePath(), "manifest.json"))
	if err != nil {
		t.Fatalf("Manifest not written: %v", err)
	}
	if !strings.HasSuffix(string(data), "}\n") {
		t.Error("Manifest should end with a newline")
	}
}

func TestManifestStats(t *testing.T) {
	store := setupTestStore(t)

	later := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	store.SaveEntry(&types.ManifestEntry{Source: "a.c", Declarations: 3, GeneratedAt: later.Add(-time.Hour)})
	store.SaveEntry(&types.ManifestEntry{Source: "b.c", Declarations: 5, GeneratedAt: later})

	stats, err := store.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Sources != 2 || stats.Declarations != 8 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if !stats.LastGenerated.Equal(later) {
		t.Errorf("Expected last generated %s, got %s", later, stats.LastGenerated)
	}
}
