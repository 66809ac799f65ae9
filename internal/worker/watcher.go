package worker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saeedalam/stubgen/internal/config"
	"github.com/saeedalam/stubgen/internal/storage"
	"github.com/saeedalam/stubgen/internal/stubs"
	"github.com/saeedalam/stubgen/pkg/types"
)

// Manager generates stubs, records them, and keeps them fresh in the background
type Manager struct {
	config      *config.Config
	emitter     *stubs.Emitter
	jsonStore   *storage.JSONStore
	sqliteIndex *storage.SQLiteIndex
	projectRoot string
	basePath    string

	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	running  bool

	// Emitted stubs keyed by source content hash
	cache *lru.Cache[string, *stubs.Result]

	// Serialises generation so two scans never write the same stub at once
	genMu sync.Mutex

	stats WorkerStats
}

// WorkerStats tracks worker activity
type WorkerStats struct {
	Scans          int       `json:"scans"`
	StubsGenerated int       `json:"stubs_generated"`
	CacheHits      int       `json:"cache_hits"`
	SourcesRemoved int       `json:"sources_removed"`
	LastScan       time.Time `json:"last_scan"`
	ErrorCount     int       `json:"error_count"`
	LastError      string    `json:"last_error,omitempty"`
}

// NewManager creates a new worker manager. basePath is the .stubgen directory;
// its parent is the project root.
func NewManager(basePath string, cfg *config.Config, jsonStore *storage.JSONStore, sqliteIndex *storage.SQLiteIndex) (*Manager, error) {
	cache, err := lru.New[string, *stubs.Result](cfg.Cache.Size)
	if err != nil {
		return nil, fmt.Errorf("stub cache: %w", err)
	}

	return &Manager{
		config:      cfg,
		emitter:     stubs.NewEmitter(stubs.Options{LegacyParams: cfg.Generate.LegacyParams}),
		jsonStore:   jsonStore,
		sqliteIndex: sqliteIndex,
		projectRoot: filepath.Dir(basePath),
		basePath:    basePath,
		stopChan:    make(chan struct{}),
		cache:       cache,
	}, nil
}

// Start begins the background watcher
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("workers already running")
	}
	m.running = true
	m.stopChan = make(chan struct{})
	m.mu.Unlock()

	m.wg.Add(1)
	go m.watcher()

	m.logEvent("Workers started", map[string]any{"root": m.projectRoot, "interval": m.config.Watch.Interval.String()})

	return nil
}

// Stop halts the background watcher and waits for the current scan
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopChan)
	m.mu.Unlock()

	m.wg.Wait()
	m.logEvent("Workers stopped", nil)
}

// IsRunning returns whether workers are active
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// GetStats returns worker statistics
func (m *Manager) GetStats() WorkerStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// toRelativePath converts an absolute path to a relative path from projectRoot
func (m *Manager) toRelativePath(absPath string) string {
	rel, err := filepath.Rel(m.projectRoot, absPath)
	if err != nil {
		return absPath
	}
	return rel
}

// watcher scans immediately, then on every tick
func (m *Manager) watcher() {
	defer m.wg.Done()

	m.scanAndLog()

	ticker := time.NewTicker(m.config.Watch.Interval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.scanAndLog()
		}
	}
}

func (m *Manager) scanAndLog() {
	generated, err := m.Scan()
	if err != nil {
		m.recordError("scan", err)
		log.Error().Err(err).Msg("Scan failed")
		return
	}
	if generated > 0 {
		log.Info().Int("stubs", generated).Msg("Stubs regenerated")
	}
}

// Generate emits, writes and records the stub for one source file
func (m *Manager) Generate(path string) (*stubs.Result, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	stubPath := stubs.StubPath(absPath)
	if stubPath == absPath {
		return nil, fmt.Errorf("%w: %s", stubs.ErrNoStubSuffix, path)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}
	return m.generate(absPath, data)
}

func (m *Manager) generate(absPath string, data []byte) (*stubs.Result, error) {
	m.genMu.Lock()
	defer m.genMu.Unlock()

	hash := stubs.ContentHash(data)

	var res stubs.Result
	if cached, ok := m.cache.Get(hash); ok {
		res = *cached
		m.mu.Lock()
		m.stats.CacheHits++
		m.mu.Unlock()
	} else {
		emitted, err := m.emitter.Emit(string(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.toRelativePath(absPath), err)
		}
		m.cache.Add(hash, emitted)
		res = *emitted
	}
	res.Source = absPath
	res.StubPath = stubs.StubPath(absPath)
	res.ContentHash = hash

	if err := stubs.WriteStub(&res); err != nil {
		return nil, err
	}
	if err := m.record(&res); err != nil {
		return nil, fmt.Errorf("record %s: %w", m.toRelativePath(absPath), err)
	}

	m.mu.Lock()
	m.stats.StubsGenerated++
	m.mu.Unlock()

	log.Debug().
		Str("source", m.toRelativePath(absPath)).
		Int("declarations", len(res.Declarations)).
		Msg("Stub written")

	return &res, nil
}

// record updates the manifest and the searchable history
func (m *Manager) record(res *stubs.Result) error {
	source := m.toRelativePath(res.Source)

	entry := &types.ManifestEntry{
		Source:       source,
		StubPath:     m.toRelativePath(res.StubPath),
		ContentHash:  res.ContentHash,
		Declarations: len(res.Declarations),
		Classes:      res.Classes,
	}
	if err := m.jsonStore.SaveEntry(entry); err != nil {
		return err
	}

	decls := make([]types.Declaration, len(res.Declarations))
	for i, d := range res.Declarations {
		d.Source = source
		decls[i] = d
	}

	return m.sqliteIndex.RecordRun(&types.Run{
		ID:           entry.RunID,
		Source:       source,
		StubPath:     entry.StubPath,
		ContentHash:  entry.ContentHash,
		Declarations: entry.Declarations,
		GeneratedAt:  entry.GeneratedAt,
	}, decls)
}

// Scan walks the project, regenerates stubs whose source changed and forgets
// sources that disappeared. It returns the number of stubs written.
func (m *Manager) Scan() (int, error) {
	entries, err := m.jsonStore.GetManifest()
	if err != nil {
		return 0, err
	}

	exts := make(map[string]bool)
	for _, ext := range m.config.Watch.Extensions {
		exts[ext] = true
	}
	skipDirs := make(map[string]bool)
	for _, name := range m.config.Watch.SkipDirs {
		skipDirs[name] = true
	}

	generated := 0
	seen := make(map[string]bool)

	err = filepath.WalkDir(m.projectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if path != m.projectRoot && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		// Suffix match is case-sensitive, like the stub path rewrite
		if !exts[filepath.Ext(path)] {
			return nil
		}

		rel := m.toRelativePath(path)
		seen[rel] = true

		data, err := os.ReadFile(path)
		if err != nil {
			m.recordError("read "+rel, err)
			return nil
		}

		if entry, ok := entries[rel]; ok && entry.ContentHash == stubs.ContentHash(data) && m.stubExists(entry) {
			return nil
		}

		if _, err := m.generate(path, data); err != nil {
			m.recordError("generate "+rel, err)
			log.Warn().Err(err).Str("source", rel).Msg("Stub generation failed")
			return nil
		}
		generated++

		return nil
	})
	if err != nil {
		return generated, err
	}

	for rel := range entries {
		if seen[rel] {
			continue
		}
		if _, err := os.Stat(filepath.Join(m.projectRoot, rel)); errors.Is(err, fs.ErrNotExist) {
			m.handleDeletedFile(rel)
		}
	}

	m.mu.Lock()
	m.stats.Scans++
	m.stats.LastScan = time.Now()
	m.mu.Unlock()

	if generated > 0 {
		m.logEvent(fmt.Sprintf("Regenerated %d stubs", generated), nil)
	}

	return generated, nil
}

// stubExists reports whether the recorded stub for entry is still on disk
func (m *Manager) stubExists(entry types.ManifestEntry) bool {
	_, err := os.Stat(filepath.Join(m.projectRoot, entry.StubPath))
	return !errors.Is(err, fs.ErrNotExist)
}

// handleDeletedFile removes a vanished source from the manifest and search index.
// The stub file itself is left on disk.
func (m *Manager) handleDeletedFile(rel string) {
	if err := m.jsonStore.RemoveEntry(rel); err != nil {
		m.recordError("remove "+rel, err)
		return
	}
	if err := m.sqliteIndex.DeleteSource(rel); err != nil {
		m.recordError("remove "+rel, err)
		return
	}

	m.mu.Lock()
	m.stats.SourcesRemoved++
	m.mu.Unlock()

	m.logEvent("Source removed", map[string]any{"source": rel})
}

// recordError records an error in stats
func (m *Manager) recordError(context string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.ErrorCount++
	m.stats.LastError = fmt.Sprintf("%s: %v", context, err)
}

// logEvent appends an event to the worker log
func (m *Manager) logEvent(message string, data map[string]any) {
	if m.config.Log.File == "" {
		return
	}
	logPath := filepath.Join(m.basePath, m.config.Log.File)
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	logger := zerolog.New(f).With().Timestamp().Logger()
	logger.Info().Fields(data).Msg(message)
}
