// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ringlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrCorrupt wraps every parse failure reported by Store.Load.
var ErrCorrupt = errors.New("ringlog: corrupt history file")

const (
	magic      = "# wheeldash ring v1"
	fieldNames = "temperature,distance"
	missing    = "nan"
)

// Store persists a Ring to a single text file.
type Store struct {
	Path string
	// Interval is the logging period. It converts the time elapsed since the
	// file was written into a number of missed samples on Load. Zero
	// disables the gap fill.
	Interval time.Duration
}

// Save writes the whole ring, oldest first. The file is replaced atomically
// so a power loss leaves either the previous or the new content.
func (s *Store) Save(r *Ring, updated time.Time) (err error) {
	f, err := os.CreateTemp(filepath.Dir(s.Path), filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("ringlog: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	w := bufio.NewWriter(f)
	if err := encode(w, r.Samples(), updated); err != nil {
		return fmt.Errorf("ringlog: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("ringlog: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("ringlog: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("ringlog: %w", err)
	}
	if err := os.Rename(f.Name(), s.Path); err != nil {
		return fmt.Errorf("ringlog: %w", err)
	}
	return nil
}

// Load replaces the ring contents with the file and returns the time stored
// in its header, if any.
//
// A missing file leaves an empty ring and no error. A file that cannot be
// read or parsed also leaves an empty ring; the error is returned so the
// caller can log it and keep logging.
//
// When both the header time and now are known, the samples missed while
// the process was down are skipped so the newest stored sample keeps its
// place in time.
func (s *Store) Load(r *Ring, now time.Time) (time.Time, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		r.Reset()
		return time.Time{}, nil
	}
	if err != nil {
		r.Reset()
		return time.Time{}, fmt.Errorf("ringlog: %w", err)
	}
	defer f.Close()

	samples, updated, err := decode(f)
	if err != nil {
		r.Reset()
		return time.Time{}, err
	}

	r.Restore(samples)

	if n := s.missed(updated, now); n > 0 {
		r.Skip(min(n, r.Capacity()))
	}

	return updated, nil
}

func (s *Store) missed(updated, now time.Time) int {
	if s.Interval <= 0 || updated.IsZero() || now.IsZero() {
		return 0
	}
	gap := now.Sub(updated)
	if gap <= 0 {
		return 0
	}
	return int(math.Round(float64(gap) / float64(s.Interval)))
}

func encode(w io.Writer, samples []Sample, updated time.Time) error {
	header := fmt.Sprintf("%s capacity=%d fields=%s", magic, len(samples), fieldNames)
	if !updated.IsZero() {
		header += " updated=" + updated.Format(time.RFC3339)
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	for _, smp := range samples {
		temp := missing
		if smp.HasTemperature {
			temp = formatFloat(smp.Temperature)
		}
		if _, err := fmt.Fprintf(w, "%s,%s\n", temp, formatFloat(smp.Distance)); err != nil {
			return err
		}
	}
	return nil
}

func decode(rd io.Reader) ([]Sample, time.Time, error) {
	var (
		samples []Sample
		updated time.Time
		legacy  bool
	)

	sc := bufio.NewScanner(rd)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())

		switch {
		case line == "":
			continue
		case n == 1 && strings.HasPrefix(line, magic):
			t, err := parseHeader(strings.TrimPrefix(line, magic))
			if err != nil {
				return nil, time.Time{}, fmt.Errorf("%w: line %d: %v", ErrCorrupt, n, err)
			}
			updated = t
			continue
		case n == 1 && strings.Count(line, ",") > 1:
			t, err := parseRTC(line)
			if err != nil {
				return nil, time.Time{}, fmt.Errorf("%w: line %d: %v", ErrCorrupt, n, err)
			}
			updated, legacy = t, true
			continue
		case n == 1:
			legacy = true
		case strings.HasPrefix(line, "#"):
			if legacy {
				return nil, time.Time{}, fmt.Errorf("%w: line %d: unexpected header", ErrCorrupt, n)
			}
			t, err := parseHeader(line)
			if err != nil {
				return nil, time.Time{}, fmt.Errorf("%w: line %d: %v", ErrCorrupt, n, err)
			}
			updated = t
			continue
		}

		smp, err := parseSample(line, legacy)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("%w: line %d: %v", ErrCorrupt, n, err)
		}
		samples = append(samples, smp)
	}
	if err := sc.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("ringlog: %w", err)
	}

	return samples, updated, nil
}

func parseHeader(line string) (time.Time, error) {
	var updated time.Time
	for _, kv := range strings.Fields(strings.TrimPrefix(line, "#")) {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return time.Time{}, fmt.Errorf("malformed header field %q", kv)
		}
		switch k {
		case "fields":
			if v != fieldNames {
				return time.Time{}, fmt.Errorf("unsupported fields %q", v)
			}
		case "updated":
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return time.Time{}, err
			}
			updated = t
		}
	}
	return updated, nil
}

// parseRTC reads the legacy header: year,month,day,weekday,hour,minute,
// second[,subsecond] in local time.
func parseRTC(line string) (time.Time, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 7 {
		return time.Time{}, fmt.Errorf("RTC tuple has %d fields, want at least 7", len(parts))
	}
	v := make([]int, 7)
	for i := range v {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return time.Time{}, err
		}
		v[i] = n
	}
	return time.Date(v[0], time.Month(v[1]), v[2], v[4], v[5], v[6], 0, time.Local), nil
}

func parseSample(line string, legacy bool) (Sample, error) {
	temp, dist, ok := strings.Cut(line, ",")
	if !ok {
		return Sample{}, fmt.Errorf("want %s, got %q", fieldNames, line)
	}

	var smp Sample
	d, err := strconv.ParseFloat(strings.TrimSpace(dist), 64)
	if err != nil {
		return Sample{}, err
	}
	smp.Distance = d

	temp = strings.TrimSpace(temp)
	if strings.EqualFold(temp, missing) {
		return smp, nil
	}
	t, err := strconv.ParseFloat(temp, 64)
	if err != nil {
		return Sample{}, err
	}
	if legacy && t <= 0 {
		return smp, nil
	}
	smp.Temperature, smp.HasTemperature = t, true
	return smp, nil
}

// formatFloat always keeps a fractional part so integers read back as the
// same decimal text.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsNaN(v) || math.IsInf(v, 0) || strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}
