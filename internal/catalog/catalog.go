// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

// =============================================================================
// TYPES
// =============================================================================

// Listing is one accommodation the user can reference in chat.
type Listing struct {
	ID     int64
	Name   string
	Region string
	Kind   string // "hotel", "hostal", "cabana", "estancia"
}

// Token returns the composer token identity for this listing.
func (l Listing) Token() (label, id string) {
	return l.Name, strconv.FormatInt(l.ID, 10)
}

// ErrNotFound is returned when a listing id does not exist.
var ErrNotFound = errors.New("listing not found")

// =============================================================================
// SCHEMA AND SEED
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS listings (
	id     INTEGER PRIMARY KEY,
	name   TEXT NOT NULL,
	region TEXT NOT NULL,
	kind   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_listings_region ON listings(region);
`

// seed is the starter set shown before any catalog sync.
var seed = []Listing{
	{ID: 1, Name: "Hotel Aymara", Region: "Salta", Kind: "hotel"},
	{ID: 2, Name: "Hostal de las Sierras", Region: "Córdoba", Kind: "hostal"},
	{ID: 3, Name: "Hotel Plaza", Region: "Mendoza", Kind: "hotel"},
	{ID: 4, Name: "Cabañas del Valle Calchaquí", Region: "Salta", Kind: "cabana"},
	{ID: 5, Name: "Estancia La Quebrada", Region: "Jujuy", Kind: "estancia"},
	{ID: 6, Name: "Hostal Camino del Inca", Region: "Jujuy", Kind: "hostal"},
	{ID: 7, Name: "Hotel Mirador de los Andes", Region: "Mendoza", Kind: "hotel"},
	{ID: 8, Name: "Posada del Cerro Uritorco", Region: "Córdoba", Kind: "hostal"},
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog wraps the listings database.
type Catalog struct {
	db *sql.DB
}

// Open opens the catalog under the user's state directory.
func Open() (*Catalog, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return OpenPath(filepath.Join(homeDir, ".wayra", "catalog.db"))
}

// OpenPath opens or creates the catalog database at path, seeding it when
// empty.
func OpenPath(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	// SQLite allows one writer; keep a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	c := &Catalog{db: db}
	if err := c.init(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Catalog) init() error {
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	var count int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM listings").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	for _, l := range seed {
		if _, err := tx.Exec(
			"INSERT INTO listings (id, name, region, kind) VALUES (?, ?, ?, ?)",
			l.ID, l.Name, l.Region, l.Kind,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to seed listings: %w", err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// =============================================================================
// QUERIES
// =============================================================================

// All returns every listing ordered by region then name.
func (c *Catalog) All() ([]Listing, error) {
	return c.query("SELECT id, name, region, kind FROM listings ORDER BY region, name")
}

// Search returns listings whose name or region contains the query,
// case-insensitively.
func (c *Catalog) Search(q string) ([]Listing, error) {
	pattern := "%" + q + "%"
	return c.query(
		"SELECT id, name, region, kind FROM listings WHERE name LIKE ? OR region LIKE ? ORDER BY region, name",
		pattern, pattern,
	)
}

// Get returns one listing by id.
func (c *Catalog) Get(id int64) (Listing, error) {
	var l Listing
	err := c.db.QueryRow("SELECT id, name, region, kind FROM listings WHERE id = ?", id).
		Scan(&l.ID, &l.Name, &l.Region, &l.Kind)
	if errors.Is(err, sql.ErrNoRows) {
		return Listing{}, ErrNotFound
	}
	if err != nil {
		return Listing{}, err
	}
	return l, nil
}

// Upsert inserts or replaces a listing, used by catalog sync.
func (c *Catalog) Upsert(l Listing) error {
	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO listings (id, name, region, kind) VALUES (?, ?, ?, ?)",
		l.ID, l.Name, l.Region, l.Kind,
	)
	return err
}

func (c *Catalog) query(q string, args ...any) ([]Listing, error) {
	rows, err := c.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		var l Listing
		if err := rows.Scan(&l.ID, &l.Name, &l.Region, &l.Kind); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
