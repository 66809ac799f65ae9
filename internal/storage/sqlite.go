package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/saeedalam/stubgen/pkg/types"
)

// SQLiteIndex records generation runs and makes their declarations searchable
type SQLiteIndex struct {
	db       *sql.DB
	basePath string
}

// NewSQLiteIndex creates a new SQLite index
func NewSQLiteIndex(basePath string) (*SQLiteIndex, error) {
	dbPath := filepath.Join(basePath, "cache", "history.db")

	// Ensure cache directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Single writer avoids SQLITE_BUSY between the watcher and the CLI
	db.SetMaxOpenConns(1)

	idx := &SQLiteIndex{
		db:       db,
		basePath: basePath,
	}

	if err := idx.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return idx, nil
}

func (idx *SQLiteIndex) createTables() error {
	schema := `
	-- Runs table
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		stub_path TEXT,
		content_hash TEXT,
		declarations INTEGER,
		generated_at INTEGER
	);

	CREATE INDEX IF NOT EXISTS runs_source ON runs(source);

	-- Declarations from the latest run of each source
	CREATE TABLE IF NOT EXISTS declarations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		source TEXT NOT NULL,
		kind TEXT,
		name TEXT,
		type TEXT,
		line INTEGER
	);

	CREATE INDEX IF NOT EXISTS declarations_source ON declarations(source);

	-- Declarations FTS
	CREATE VIRTUAL TABLE IF NOT EXISTS declarations_fts USING fts5(
		name,
		type,
		source,
		content='declarations',
		content_rowid='id'
	);

	-- Triggers for FTS sync
	CREATE TRIGGER IF NOT EXISTS declarations_ai AFTER INSERT ON declarations BEGIN
		INSERT INTO declarations_fts(rowid, name, type, source)
		VALUES (new.id, new.name, new.type, new.source);
	END;

	CREATE TRIGGER IF NOT EXISTS declarations_ad AFTER DELETE ON declarations BEGIN
		INSERT INTO declarations_fts(declarations_fts, rowid, name, type, source)
		VALUES('delete', old.id, old.name, old.type, old.source);
	END;
	`

	_, err := idx.db.Exec(schema)
	return err
}

// Close closes the database connection
func (idx *SQLiteIndex) Close() error {
	return idx.db.Close()
}

type queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// WithTransaction runs a function within a SQLite transaction
func (idx *SQLiteIndex) WithTransaction(fn func(tx *sql.Tx) error) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// --- Recording ---

// RecordRun stores run and replaces the declarations held for its source
func (idx *SQLiteIndex) RecordRun(run *types.Run, decls []types.Declaration) error {
	return idx.WithTransaction(func(tx *sql.Tx) error {
		return idx.recordRun(tx, run, decls)
	})
}

func (idx *SQLiteIndex) recordRun(q queryer, run *types.Run, decls []types.Declaration) error {
	if run.GeneratedAt.IsZero() {
		run.GeneratedAt = time.Now()
	}

	_, err := q.Exec(`
		INSERT OR REPLACE INTO runs (id, source, stub_path, content_hash, declarations, generated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Source, run.StubPath, run.ContentHash, run.Declarations, run.GeneratedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if _, err := q.Exec(`DELETE FROM declarations WHERE source = ?`, run.Source); err != nil {
		return fmt.Errorf("clear declarations: %w", err)
	}

	for _, d := range decls {
		_, err := q.Exec(`
			INSERT INTO declarations (run_id, source, kind, name, type, line)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, run.Source, d.Kind, d.Name, d.Type, d.Line)
		if err != nil {
			return fmt.Errorf("insert declaration %s: %w", d.Name, err)
		}
	}
	return nil
}

// DeleteSource drops the declarations held for source. Runs are kept as history.
func (idx *SQLiteIndex) DeleteSource(source string) error {
	_, err := idx.db.Exec(`DELETE FROM declarations WHERE source = ?`, source)
	return err
}

// --- Search ---

// SearchDeclarations finds declarations whose name, type or source matches query
func (idx *SQLiteIndex) SearchDeclarations(query string, kind string, limit int) ([]types.Declaration, error) {
	if limit <= 0 {
		limit = 20
	}

	var args []any
	var where []string

	if query != "" {
		where = append(where, `declarations.id IN (
			SELECT rowid FROM declarations_fts WHERE declarations_fts MATCH ?
		)`)
		args = append(args, ftsQuery(query))
	}
	if kind != "" {
		where = append(where, "kind = ?")
		args = append(args, kind)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	query = fmt.Sprintf(`
		SELECT source, kind, name, type, line
		FROM declarations
		%s
		ORDER BY source, line
		LIMIT ?
	`, whereClause)
	args = append(args, limit)

	rows, err := idx.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decls []types.Declaration
	for rows.Next() {
		var d types.Declaration
		if err := rows.Scan(&d.Source, &d.Kind, &d.Name, &d.Type, &d.Line); err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}

	return decls, rows.Err()
}

// ftsQuery turns free text into a quoted FTS5 prefix phrase
func ftsQuery(text string) string {
	return `"` + strings.ReplaceAll(text, `"`, `""`) + `"*`
}

// RecentRuns lists the latest runs, optionally for one source
func (idx *SQLiteIndex) RecentRuns(source string, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = 10
	}

	sqlQuery := `
		SELECT id, source, stub_path, content_hash, declarations, generated_at
		FROM runs`
	var args []any
	if source != "" {
		sqlQuery += ` WHERE source = ?`
		args = append(args, source)
	}
	sqlQuery += ` ORDER BY generated_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := idx.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		var r types.Run
		var generatedAt int64
		if err := rows.Scan(&r.ID, &r.Source, &r.StubPath, &r.ContentHash, &r.Declarations, &generatedAt); err != nil {
			return nil, err
		}
		r.GeneratedAt = time.Unix(generatedAt, 0)
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// --- Stats ---

// GetStats returns run and declaration counts
func (idx *SQLiteIndex) GetStats() (*types.Stats, error) {
	stats := &types.Stats{ByKind: make(map[string]int)}

	if err := idx.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&stats.Runs); err != nil {
		return nil, err
	}
	if err := idx.db.QueryRow("SELECT COUNT(DISTINCT source) FROM declarations").Scan(&stats.Sources); err != nil {
		return nil, err
	}

	rows, err := idx.db.Query("SELECT kind, COUNT(*) FROM declarations GROUP BY kind")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		stats.ByKind[kind] = count
		stats.Declarations += count
	}

	return stats, rows.Err()
}
