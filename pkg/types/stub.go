package types

import "time"

// =============================================================================
// STUB GENERATION TYPES
// =============================================================================

// Declaration is one entry emitted into a stub file
type Declaration struct {
	Kind   string `json:"kind"` // function, class, variable, array
	Name   string `json:"name"`
	Type   string `json:"type,omitempty"` // resolved Python type; return type for functions
	Line   int    `json:"line"`
	Source string `json:"source,omitempty"`
}

// ManifestEntry tracks the last stub generated for a source file
type ManifestEntry struct {
	Source       string    `json:"source"`
	StubPath     string    `json:"stub_path"`
	ContentHash  string    `json:"content_hash"`
	RunID        string    `json:"run_id"`
	Declarations int       `json:"declarations"`
	Classes      []string  `json:"classes,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Run is a single recorded generation
type Run struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	StubPath     string    `json:"stub_path"`
	ContentHash  string    `json:"content_hash"`
	Declarations int       `json:"declarations"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Stats summarises the manifest and history
type Stats struct {
	Sources       int            `json:"sources"`
	Runs          int            `json:"runs"`
	Declarations  int            `json:"declarations"`
	ByKind        map[string]int `json:"by_kind,omitempty"`
	LastGenerated time.Time      `json:"last_generated,omitempty"`
}
