package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/matsen/scholarnet/internal/network"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Meta keys recorded at rebuild time.
const (
	MetaNameKey   = "name_key"
	MetaRebuiltAt = "rebuilt_at"
	MetaDigest    = "pairs_digest"
)

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- One row per collaboration per paper; keys are normalized names
		-- with key_lo <= key_hi.
		CREATE TABLE IF NOT EXISTS pairs (
			key_lo TEXT NOT NULL,
			key_hi TEXT NOT NULL,
			author_a TEXT NOT NULL,
			author_b TEXT NOT NULL,
			paper_id TEXT NOT NULL DEFAULT '',
			title TEXT,
			year INTEGER,
			source TEXT,
			UNIQUE (key_lo, key_hi, paper_id)
		);

		CREATE INDEX IF NOT EXISTS idx_pairs_lo ON pairs(key_lo);
		CREATE INDEX IF NOT EXISTS idx_pairs_hi ON pairs(key_hi);

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildResult reports what a rebuild loaded.
type RebuildResult struct {
	Records   int    `json:"records"`
	Pairs     int    `json:"pairs"`
	Collapsed int    `json:"collapsed"` // records whose authors share a key
	Digest    string `json:"digest"`
}

// RebuildPairsFromJSONL clears the pairs table and rebuilds it from a
// JSONL file, storing endpoints under the keys produced by normalize.
// keyName is recorded so callers can detect a changed name key. The
// recorded rebuild time is taken before the file is read, so any later
// write to the file is newer than it.
func (d *DB) RebuildPairsFromJSONL(jsonlPath string, normalize func(string) string, keyName string) (RebuildResult, error) {
	started := time.Now().UTC()
	records, err := ReadAllRecords(jsonlPath)
	if err != nil {
		return RebuildResult{}, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return RebuildResult{}, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM pairs"); err != nil {
		return RebuildResult{}, fmt.Errorf("clearing pairs table: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO pairs (key_lo, key_hi, author_a, author_b, paper_id, title, year, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return RebuildResult{}, fmt.Errorf("preparing pairs insert: %w", err)
	}
	defer stmt.Close()

	result := RebuildResult{Records: len(records)}
	var keyed []network.Pair
	for _, r := range records {
		p := network.Pair{A: normalize(r.AuthorA), B: normalize(r.AuthorB)}
		if p.A == "" || p.B == "" || p.IsSelf() {
			result.Collapsed++
			continue
		}
		keyed = append(keyed, p)
		c := p.Canonical()
		_, err := stmt.Exec(c.A, c.B, r.AuthorA, r.AuthorB, r.PaperID, r.Title, r.Year, r.Source)
		if err != nil {
			return RebuildResult{}, fmt.Errorf("inserting pair %s / %s: %w", r.AuthorA, r.AuthorB, err)
		}
	}
	result.Digest = PairsDigest(keyed)

	meta := map[string]string{
		MetaNameKey:   keyName,
		MetaRebuiltAt: started.Format(time.RFC3339Nano),
		MetaDigest:    result.Digest,
	}
	for k, v := range meta {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return RebuildResult{}, fmt.Errorf("writing meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return RebuildResult{}, fmt.Errorf("committing rebuild: %w", err)
	}

	var distinct int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM (SELECT DISTINCT key_lo, key_hi FROM pairs)`).Scan(&distinct); err != nil {
		return RebuildResult{}, fmt.Errorf("counting pairs: %w", err)
	}
	result.Pairs = distinct

	return result, nil
}

// Meta returns a value recorded at rebuild time, or "" if unset.
func (d *DB) Meta(key string) (string, error) {
	var v string
	err := d.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading meta %s: %w", key, err)
	}
	return v, nil
}

// CoauthorPairs returns distinct collaborations as key pairs. With no
// keys it returns the whole network; otherwise it returns every pair
// touching any of the keys (the union of their ego networks).
// Pairs come back in first-inserted order.
func (d *DB) CoauthorPairs(ctx context.Context, keys ...string) ([]network.Pair, error) {
	query := `SELECT key_lo, key_hi FROM pairs`
	var args []interface{}
	if len(keys) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
		query += ` WHERE key_lo IN (` + placeholders + `) OR key_hi IN (` + placeholders + `)`
		for i := 0; i < 2; i++ {
			for _, k := range keys {
				args = append(args, k)
			}
		}
	}
	query += ` GROUP BY key_lo, key_hi ORDER BY MIN(rowid)`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying pairs: %w", err)
	}
	defer rows.Close()

	pairs := []network.Pair{}
	for rows.Next() {
		var p network.Pair
		if err := rows.Scan(&p.A, &p.B); err != nil {
			return nil, fmt.Errorf("scanning pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pairs: %w", err)
	}
	return pairs, nil
}

// CountPairs returns the number of distinct collaborations.
func (d *DB) CountPairs(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM (SELECT DISTINCT key_lo, key_hi FROM pairs)`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting pairs: %w", err)
	}
	return n, nil
}

// Authors returns every distinct author key, sorted.
func (d *DB) Authors(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT key_lo FROM pairs UNION SELECT key_hi FROM pairs ORDER BY 1
	`)
	if err != nil {
		return nil, fmt.Errorf("querying authors: %w", err)
	}
	defer rows.Close()

	var authors []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scanning author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// PaperCount returns how many papers a collaboration was observed on.
func (d *DB) PaperCount(ctx context.Context, a, b string) (int, error) {
	c := network.Pair{A: a, B: b}.Canonical()
	var n int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pairs WHERE key_lo = ? AND key_hi = ?`, c.A, c.B).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}
