// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package archive

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const timeFormat = "2006-01-02 15:04:05"

// Record is one logged sample.
type Record struct {
	At             time.Time
	Temperature    float64
	HasTemperature bool
	Distance       float64
}

// DailyTotal aggregates the records of one UTC day.
type DailyTotal struct {
	Date     time.Time
	Distance float64
	// TempMin, TempMax and TempAvg are only set when HasTemp is.
	TempMin float64
	TempMax float64
	TempAvg float64
	HasTemp bool
	Count   int
}

// SQLiteStore archives samples in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string, logger zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	// Single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db, logger: logger, now: time.Now}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info().Str("path", path).Msg("archive opened")
	return s, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate creates the schema if it doesn't exist.
func (s *SQLiteStore) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recorded_at DATETIME NOT NULL,
		temperature REAL,
		distance REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_samples_time ON samples(recorded_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Insert archives one record.
func (s *SQLiteStore) Insert(r Record) error {
	_, err := s.db.Exec(
		"INSERT INTO samples (recorded_at, temperature, distance) VALUES (?, ?, ?)",
		r.At.UTC().Format(timeFormat),
		sql.NullFloat64{Float64: r.Temperature, Valid: r.HasTemperature},
		r.Distance,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sample: %w", err)
	}
	return nil
}

// InsertBatch archives records in a single transaction.
func (s *SQLiteStore) InsertBatch(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO samples (recorded_at, temperature, distance) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			r.At.UTC().Format(timeFormat),
			sql.NullFloat64{Float64: r.Temperature, Valid: r.HasTemperature},
			r.Distance,
		)
		if err != nil {
			return fmt.Errorf("failed to insert sample in batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.logger.Debug().Int("count", len(records)).Msg("batch archived")
	return nil
}

// Range returns the records in [start, end], oldest first.
func (s *SQLiteStore) Range(start, end time.Time) ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT recorded_at, temperature, distance
		FROM samples
		WHERE recorded_at BETWEEN ? AND ?
		ORDER BY recorded_at ASC, id ASC
	`, start.UTC().Format(timeFormat), end.UTC().Format(timeFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var at string
		var temp sql.NullFloat64
		var r Record
		if err := rows.Scan(&at, &temp, &r.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		if r.At, err = parseTimestamp(at); err != nil {
			return nil, err
		}
		r.Temperature, r.HasTemperature = temp.Float64, temp.Valid
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// DailyTotals aggregates the records in [start, end] per UTC day, oldest
// day first.
func (s *SQLiteStore) DailyTotals(start, end time.Time) ([]DailyTotal, error) {
	rows, err := s.db.Query(`
		SELECT
			date(recorded_at) AS day,
			SUM(distance),
			MIN(temperature),
			MAX(temperature),
			AVG(temperature),
			COUNT(*)
		FROM samples
		WHERE recorded_at BETWEEN ? AND ?
		GROUP BY day
		ORDER BY day ASC
	`, start.UTC().Format(timeFormat), end.UTC().Format(timeFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily totals: %w", err)
	}
	defer rows.Close()

	var out []DailyTotal
	for rows.Next() {
		var day string
		var lo, hi, avg sql.NullFloat64
		var d DailyTotal
		if err := rows.Scan(&day, &d.Distance, &lo, &hi, &avg, &d.Count); err != nil {
			return nil, fmt.Errorf("failed to scan daily total: %w", err)
		}
		if d.Date, err = time.Parse("2006-01-02", day); err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		if lo.Valid {
			d.TempMin, d.TempMax, d.TempAvg, d.HasTemp = lo.Float64, hi.Float64, avg.Float64, true
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// Count returns the number of archived records.
func (s *SQLiteStore) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM samples").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count samples: %w", err)
	}
	return n, nil
}

// DeleteOlderThan removes records older than days.
func (s *SQLiteStore) DeleteOlderThan(days int) (int64, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -days)

	result, err := s.db.Exec("DELETE FROM samples WHERE recorded_at < ?", cutoff.Format(timeFormat))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old samples: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	s.logger.Info().
		Int("days", days).
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("deleted old samples")
	return deleted, nil
}

// parseTimestamp accepts the formats the sqlite3 driver hands back for a
// DATETIME column.
func parseTimestamp(ts string) (time.Time, error) {
	for _, format := range []string{timeFormat, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(format, ts); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", ts)
}
