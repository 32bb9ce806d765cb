package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type settleRecord struct {
	Preset     string
	DestX      float64
	DestY      float64
	SettleMS   int64
	Overlapped bool
	RecordedAt time.Time
}

// runStore keeps one row per settled animation so repeated tuning sessions
// can be compared afterwards.
type runStore struct {
	db   *sql.DB
	path string
}

func openRunStore() (*runStore, error) {
	return openRunStoreAt(resolveConfigDir())
}

func openRunStoreAt(dir string) (*runStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	sqlitePath := filepath.Join(dir, "settles.sqlite")
	db, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		return nil, err
	}
	if err := migrateRunStore(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &runStore{db: db, path: sqlitePath}, nil
}

func migrateRunStore(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS settles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			preset TEXT NOT NULL DEFAULT '',
			dest_x REAL NOT NULL DEFAULT 0,
			dest_y REAL NOT NULL DEFAULT 0,
			settle_ms INTEGER NOT NULL DEFAULT 0,
			overlapped INTEGER NOT NULL DEFAULT 0,
			recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("run store migration failed: %w", err)
		}
	}
	return nil
}

func (s *runStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *runStore) Record(rec settleRecord) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.Exec(
		`INSERT INTO settles (preset, dest_x, dest_y, settle_ms, overlapped) VALUES (?, ?, ?, ?, ?)`,
		rec.Preset, rec.DestX, rec.DestY, rec.SettleMS, boolToInt(rec.Overlapped),
	)
	return err
}

func (s *runStore) Recent(limit int) ([]settleRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT preset, dest_x, dest_y, settle_ms, overlapped, recorded_at
		 FROM settles ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []settleRecord
	for rows.Next() {
		var (
			rec        settleRecord
			overlapped int
			recordedAt string
		)
		if err := rows.Scan(&rec.Preset, &rec.DestX, &rec.DestY, &rec.SettleMS, &overlapped, &recordedAt); err != nil {
			return nil, err
		}
		rec.Overlapped = overlapped != 0
		if t, err := time.Parse("2006-01-02 15:04:05", recordedAt); err == nil {
			rec.RecordedAt = t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *runStore) Count() (int, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM settles`).Scan(&count)
	return count, err
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
