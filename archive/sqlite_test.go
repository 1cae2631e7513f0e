// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

var t0 = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "archive.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSQLiteStoreInvalidPath(t *testing.T) {
	if _, err := NewSQLiteStore("/nonexistent/dir/archive.db", zerolog.Nop()); err == nil {
		t.Fatal("NewSQLiteStore() succeeded on an invalid path")
	}
}

func TestMigrateIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Migrate(); err != nil {
		t.Fatalf("second Migrate() failed: %v", err)
	}
}

func TestInsertRange(t *testing.T) {
	s := newTestStore(t)

	want := []Record{
		{At: t0, Temperature: 21.5, HasTemperature: true, Distance: 12.5},
		{At: t0.Add(5 * time.Minute), Distance: 0},
		{At: t0.Add(10 * time.Minute), Temperature: -2, HasTemperature: true, Distance: 3},
	}
	for _, r := range want {
		if err := s.Insert(r); err != nil {
			t.Fatalf("Insert() failed: %v", err)
		}
	}

	got, err := s.Range(t0, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("Range() failed: %v", err)
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Range() difference (-got +want):\n%s", diff)
	}

	got, err = s.Range(t0.Add(time.Minute), t0.Add(6*time.Minute))
	if err != nil {
		t.Fatalf("Range() failed: %v", err)
	}
	if diff := cmp.Diff(got, want[1:2]); diff != "" {
		t.Errorf("narrow Range() difference (-got +want):\n%s", diff)
	}
}

func TestInsertBatch(t *testing.T) {
	s := newTestStore(t)

	if err := s.InsertBatch(nil); err != nil {
		t.Fatalf("InsertBatch(nil) failed: %v", err)
	}

	var batch []Record
	for i := 0; i < 10; i++ {
		batch = append(batch, Record{At: t0.Add(time.Duration(i) * 5 * time.Minute), Distance: float64(i)})
	}
	if err := s.InsertBatch(batch); err != nil {
		t.Fatalf("InsertBatch() failed: %v", err)
	}
	n, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 10 {
		t.Errorf("Count() = %d, want 10", n)
	}
}

func TestDailyTotals(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	records := []Record{
		{At: day.Add(time.Hour), Temperature: 20, HasTemperature: true, Distance: 100},
		{At: day.Add(2 * time.Hour), Temperature: 24, HasTemperature: true, Distance: 50},
		{At: day.Add(3 * time.Hour), Distance: 10},
		{At: day.Add(25 * time.Hour), Distance: 7},
	}
	if err := s.InsertBatch(records); err != nil {
		t.Fatal(err)
	}

	got, err := s.DailyTotals(day, day.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("DailyTotals() failed: %v", err)
	}
	want := []DailyTotal{
		{Date: day, Distance: 160, TempMin: 20, TempMax: 24, TempAvg: 22, HasTemp: true, Count: 3},
		{Date: day.AddDate(0, 0, 1), Distance: 7, Count: 1},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("DailyTotals() difference (-got +want):\n%s", diff)
	}
}

func TestDeleteOlderThan(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return t0 }

	records := []Record{
		{At: t0.AddDate(0, 0, -40), Distance: 1},
		{At: t0.AddDate(0, 0, -31), Distance: 2},
		{At: t0.AddDate(0, 0, -29), Distance: 3},
		{At: t0, Distance: 4},
	}
	if err := s.InsertBatch(records); err != nil {
		t.Fatal(err)
	}

	deleted, err := s.DeleteOlderThan(30)
	if err != nil {
		t.Fatalf("DeleteOlderThan() failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted %d, want 2", deleted)
	}
	got, err := s.Range(t0.AddDate(-1, 0, 0), t0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(got, records[2:]); diff != "" {
		t.Errorf("remaining difference (-got +want):\n%s", diff)
	}
}
