// Package catalog is the SQLite-backed catalog store. The search core only
// reads it; writes happen through the import tool, which stands in for the
// scraping pipeline that owns the catalog in production.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/charmbracelet/log"
	"github.com/roastmatch/coffee-search/internal/types"
	"golang.org/x/exp/maps"
)

// ErrNotFound is returned when a coffee id does not exist.
var ErrNotFound = errors.New("coffee not found")

// Store reads catalog items and vocabulary. Implemented by DB; consumers
// depend on this interface so tests can swap in fakes.
type Store interface {
	ListActive(ctx context.Context) ([]types.Coffee, error)
	GetByID(ctx context.Context, id string) (*types.Coffee, error)
	ListVocabulary(ctx context.Context) (types.Vocabulary, error)
}

// DB is a SQLite catalog database.
type DB struct {
	db     *sql.DB
	logger *log.Logger
}

// New opens (or creates) the catalog database under dataDir.
func New(dataDir string, logger *log.Logger) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	d := &DB{db: db, logger: logger}
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}
	return d, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS coffees (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			roaster_id TEXT NOT NULL,
			roast_level TEXT,
			available INTEGER NOT NULL DEFAULT 1,
			skip INTEGER NOT NULL DEFAULT 0,
			-- JSON-encoded array columns
			notes TEXT NOT NULL DEFAULT '[]',
			process TEXT NOT NULL DEFAULT '[]',
			protocol TEXT NOT NULL DEFAULT '[]',
			country TEXT NOT NULL DEFAULT '[]',
			region TEXT NOT NULL DEFAULT '[]',
			variety TEXT NOT NULL DEFAULT '[]',
			variants TEXT NOT NULL DEFAULT '[]',
			embedding TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create coffees table: %v", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_coffees_roaster ON coffees(roaster_id)",
		"CREATE INDEX IF NOT EXISTS idx_coffees_available ON coffees(available, skip)",
	}
	for _, index := range indexes {
		if _, err := db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %v", err)
		}
	}
	return nil
}

// Upsert inserts or replaces a coffee.
func (d *DB) Upsert(ctx context.Context, c types.Coffee) error {
	d.logger.Debug("Storing coffee", "id", c.ID, "name", c.Name, "roaster", c.RoasterID)

	var embedding any
	if len(c.Embedding) > 0 {
		b, err := json.Marshal(c.Embedding)
		if err != nil {
			return fmt.Errorf("failed to encode embedding: %v", err)
		}
		embedding = string(b)
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO coffees (
			id, name, roaster_id, roast_level, available, skip,
			notes, process, protocol, country, region, variety, variants, embedding
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID, c.Name, c.RoasterID, c.RoastLevel, boolToInt(c.Available), boolToInt(c.Skip),
		mustJSON(c.Notes), mustJSON(c.Process), mustJSON(c.Protocol),
		mustJSON(c.Country), mustJSON(c.Region), mustJSON(c.Variety),
		mustJSON(c.Variants), embedding,
	)
	if err != nil {
		return fmt.Errorf("failed to store coffee: %v", err)
	}
	return nil
}

const coffeeColumns = `id, name, roaster_id, roast_level, available, skip,
	notes, process, protocol, country, region, variety, variants, embedding`

// GetByID fetches one coffee, embedding included. Returns ErrNotFound when
// the id is unknown.
func (d *DB) GetByID(ctx context.Context, id string) (*types.Coffee, error) {
	row := d.db.QueryRowContext(ctx, "SELECT "+coffeeColumns+" FROM coffees WHERE id = ?", id)
	c, err := scanCoffee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coffee %s: %v", id, err)
	}
	return c, nil
}

// ListActive returns all available, non-skipped coffees ordered by id for
// deterministic iteration.
func (d *DB) ListActive(ctx context.Context) ([]types.Coffee, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+coffeeColumns+" FROM coffees WHERE available = 1 AND skip = 0 ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list coffees: %v", err)
	}
	defer rows.Close()

	var coffees []types.Coffee
	for rows.Next() {
		c, err := scanCoffee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coffee: %v", err)
		}
		coffees = append(coffees, *c)
	}
	return coffees, rows.Err()
}

// ListVocabulary returns the distinct, lower-cased, sorted note and process
// terms across all active coffees.
func (d *DB) ListVocabulary(ctx context.Context) (types.Vocabulary, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT notes, process FROM coffees WHERE available = 1 AND skip = 0")
	if err != nil {
		return types.Vocabulary{}, fmt.Errorf("failed to query vocabulary: %v", err)
	}
	defer rows.Close()

	noteSet := make(map[string]bool)
	processSet := make(map[string]bool)
	for rows.Next() {
		var notesJSON, processJSON string
		if err := rows.Scan(&notesJSON, &processJSON); err != nil {
			return types.Vocabulary{}, fmt.Errorf("failed to scan vocabulary row: %v", err)
		}
		for _, n := range decodeStrings(notesJSON) {
			noteSet[strings.ToLower(n)] = true
		}
		for _, p := range decodeStrings(processJSON) {
			processSet[strings.ToLower(p)] = true
		}
	}
	if err := rows.Err(); err != nil {
		return types.Vocabulary{}, err
	}

	return types.Vocabulary{
		Notes:     sortedKeys(noteSet),
		Processes: sortedKeys(processSet),
	}, nil
}

// Count returns the total number of coffees in the catalog.
func (d *DB) Count(ctx context.Context) (int, error) {
	var count int
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM coffees").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count coffees: %v", err)
	}
	return count, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCoffee(row rowScanner) (*types.Coffee, error) {
	var c types.Coffee
	var available, skip int
	var notes, process, protocol, country, region, variety, variants string
	var embedding sql.NullString

	err := row.Scan(&c.ID, &c.Name, &c.RoasterID, &c.RoastLevel, &available, &skip,
		&notes, &process, &protocol, &country, &region, &variety, &variants, &embedding)
	if err != nil {
		return nil, err
	}

	c.Available = available != 0
	c.Skip = skip != 0
	c.Notes = decodeStrings(notes)
	c.Process = decodeStrings(process)
	c.Protocol = decodeStrings(protocol)
	c.Country = decodeStrings(country)
	c.Region = decodeStrings(region)
	c.Variety = decodeStrings(variety)
	if err := json.Unmarshal([]byte(variants), &c.Variants); err != nil {
		return nil, fmt.Errorf("failed to decode variants: %v", err)
	}
	if embedding.Valid && embedding.String != "" {
		if err := json.Unmarshal([]byte(embedding.String), &c.Embedding); err != nil {
			return nil, fmt.Errorf("failed to decode embedding: %v", err)
		}
	}
	return &c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func mustJSON(v any) string {
	if v == nil {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	if string(b) == "null" {
		return "[]"
	}
	return string(b)
}

func decodeStrings(jsonStr string) []string {
	var out []string
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		return nil
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	out := maps.Keys(set)
	sort.Strings(out)
	return out
}
