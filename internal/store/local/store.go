// Package local is the device replica of the clinic snapshot.
//
// The snapshot is stored in a single SQLite table, one JSON payload per
// collection, rewritten in one transaction on every Save. Device preferences
// that must never be replicated live in a separate key/value table.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/harentsoaR/dentist-sync/internal/models"
)

// ErrInvalidBackup is returned by ImportBackup for unreadable backups and for
// backups of a clinic that was never set up.
var ErrInvalidBackup = errors.New("invalid backup file")

// Store persists the local snapshot and the device preferences.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	path   string
	logger *log.Logger
}

type meta struct {
	ClinicName  string `json:"clinicName"`
	LastUpdated int64  `json:"lastUpdated"`
}

// bucket maps one stored payload to the snapshot fields it holds.
type bucket struct {
	name string
	get  func(s *models.Snapshot) any
	ref  func(s *models.Snapshot) any
}

var buckets = []bucket{
	{"meta",
		func(s *models.Snapshot) any { return meta{ClinicName: s.ClinicName, LastUpdated: s.LastUpdated} },
		nil},
	{"settings", func(s *models.Snapshot) any { return s.Settings }, func(s *models.Snapshot) any { return &s.Settings }},
	{"doctors", func(s *models.Snapshot) any { return s.Doctors }, func(s *models.Snapshot) any { return &s.Doctors }},
	{"secretaries", func(s *models.Snapshot) any { return s.Secretaries }, func(s *models.Snapshot) any { return &s.Secretaries }},
	{"patients", func(s *models.Snapshot) any { return s.Patients }, func(s *models.Snapshot) any { return &s.Patients }},
	{"memos", func(s *models.Snapshot) any { return s.Memos }, func(s *models.Snapshot) any { return &s.Memos }},
	{"inventory", func(s *models.Snapshot) any { return s.Inventory }, func(s *models.Snapshot) any { return &s.Inventory }},
	{"expenses", func(s *models.Snapshot) any { return s.Expenses }, func(s *models.Snapshot) any { return &s.Expenses }},
	{"labOrders", func(s *models.Snapshot) any { return s.LabOrders }, func(s *models.Snapshot) any { return &s.LabOrders }},
	{"supplies", func(s *models.Snapshot) any { return s.Supplies }, func(s *models.Snapshot) any { return &s.Supplies }},
	{"guestAppointments", func(s *models.Snapshot) any { return s.GuestAppointments }, func(s *models.Snapshot) any { return &s.GuestAppointments }},
	{"medications", func(s *models.Snapshot) any { return s.Medications }, func(s *models.Snapshot) any { return &s.Medications }},
	{"medicationCategories", func(s *models.Snapshot) any { return s.MedicationCategories }, func(s *models.Snapshot) any { return &s.MedicationCategories }},
	{"deletedIds", func(s *models.Snapshot) any { return s.DeletedIDs }, func(s *models.Snapshot) any { return &s.DeletedIDs }},
}

// Open opens (creating if needed) the SQLite database at path.
// If logger is nil, a default logger writing to stderr is used.
func Open(path string, logger *log.Logger) (*Store, error) {
	if path == "" {
		path = "clinic.db"
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[local] ", log.LstdFlags)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA busy_timeout=5000`,
		`CREATE TABLE IF NOT EXISTS snapshot (
			bucket TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS prefs (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}
	return &Store{db: db, path: path, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path.
func (s *Store) Path() string { return s.path }

// Save replaces the stored snapshot with snap in one transaction.
func (s *Store) Save(ctx context.Context, snap *models.Snapshot) (retErr error) {
	if snap == nil {
		return errors.New("save: nil snapshot")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, b := range buckets {
		data, err := json.Marshal(b.get(snap))
		if err != nil {
			return fmt.Errorf("encode %s: %w", b.name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snapshot(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
			b.name, data); err != nil {
			return fmt.Errorf("upsert %s: %w", b.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or nil if nothing was ever saved.
// A payload that cannot be decoded is replaced by its empty default and
// logged; it never fails the load.
func (s *Store) Load(ctx context.Context) (*models.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM snapshot`)
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	payloads := make(map[string][]byte)
	for rows.Next() {
		var name string
		var payload []byte
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		payloads[name] = payload
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}
	if len(payloads) == 0 {
		return nil, nil
	}

	snap := &models.Snapshot{Settings: models.DefaultSettings()}
	for _, b := range buckets {
		payload, ok := payloads[b.name]
		if !ok {
			continue
		}
		if b.name == "meta" {
			var m meta
			if err := json.Unmarshal(payload, &m); err != nil {
				s.logger.Printf("WARNING: unreadable meta payload, using defaults: %v", err)
				continue
			}
			snap.ClinicName, snap.LastUpdated = m.ClinicName, m.LastUpdated
			continue
		}
		if err := json.Unmarshal(payload, b.ref(snap)); err != nil {
			s.logger.Printf("WARNING: unreadable %s payload, using defaults: %v", b.name, err)
			resetBucket(snap, b.name)
		}
	}
	return snap, nil
}

func resetBucket(snap *models.Snapshot, name string) {
	var empty models.Snapshot
	if name == "settings" {
		snap.Settings = models.DefaultSettings()
		return
	}
	for _, b := range buckets {
		if b.name != name || b.ref == nil {
			continue
		}
		// Copy the zero value of this bucket's fields over the partial decode.
		data, _ := json.Marshal(b.get(&empty))
		_ = json.Unmarshal(data, b.ref(snap))
	}
}

// ImportBackup decodes a JSON backup of a whole snapshot. It does not store
// it: restoring goes through the mutation funnel like every other edit.
func (s *Store) ImportBackup(ctx context.Context, r io.Reader) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if !snap.Initialized() {
		return nil, fmt.Errorf("%w: no clinic name", ErrInvalidBackup)
	}
	if snap.Settings == (models.Settings{}) {
		snap.Settings = models.DefaultSettings()
	}
	s.logger.Printf("Imported backup of %q (lastUpdated=%d, patients=%d)", snap.ClinicName, snap.LastUpdated, len(snap.Patients))
	return &snap, nil
}
