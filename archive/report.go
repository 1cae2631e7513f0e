// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package archive

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/GermanBionicSystems/wheeldash/ringlog"
)

// Seed fills an empty archive from the restored history. The last sample is
// stamped newest and each earlier one interval before it; slots that never
// held data are skipped. An archive that already has records is left alone.
//
// It returns the number of records written.
func (s *SQLiteStore) Seed(samples []ringlog.Sample, newest time.Time, interval time.Duration) (int, error) {
	n, err := s.Count()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	var records []Record
	for i, smp := range samples {
		if smp.Distance == 0 && !smp.HasTemperature {
			continue
		}
		records = append(records, Record{
			At:             newest.Add(-time.Duration(len(samples)-1-i) * interval),
			Temperature:    smp.Temperature,
			HasTemperature: smp.HasTemperature,
			Distance:       smp.Distance,
		})
	}
	if err := s.InsertBatch(records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// WriteReport prints one line per archived day among the days days ending
// with now's UTC day.
func (s *SQLiteStore) WriteReport(w io.Writer, now time.Time, days int) error {
	if days < 1 {
		return fmt.Errorf("report needs at least one day, got %d", days)
	}
	end := now.UTC()
	start := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1-days)

	totals, err := s.DailyTotals(start, end)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "day\tdistance\tmin\tmax\tavg\tsamples\t")
	var sum float64
	for _, d := range totals {
		sum += d.Distance
		lo, hi, avg := "-", "-", "-"
		if d.HasTemp {
			lo = strconv.FormatFloat(d.TempMin, 'f', 1, 64) + "C"
			hi = strconv.FormatFloat(d.TempMax, 'f', 1, 64) + "C"
			avg = strconv.FormatFloat(d.TempAvg, 'f', 1, 64) + "C"
		}
		fmt.Fprintf(tw, "%s\t%.0fm\t%s\t%s\t%s\t%d\t\n", d.Date.Format("2006-01-02 Mon"), d.Distance, lo, hi, avg, d.Count)
	}
	fmt.Fprintf(tw, "total\t%.1fkm\t\t\t\t\t\n", sum/1000)
	return tw.Flush()
}

// WriteCSV dumps the records in [start, end] as recorded_at,temperature,
// distance rows. A missing temperature is an empty field.
func (s *SQLiteStore) WriteCSV(w io.Writer, start, end time.Time) error {
	records, err := s.Range(start, end)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"recorded_at", "temperature", "distance"}); err != nil {
		return err
	}
	for _, r := range records {
		temp := ""
		if r.HasTemperature {
			temp = strconv.FormatFloat(r.Temperature, 'f', -1, 64)
		}
		row := []string{r.At.UTC().Format(time.RFC3339), temp, strconv.FormatFloat(r.Distance, 'f', -1, 64)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
