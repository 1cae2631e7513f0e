// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sampler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// LoadMaxSpeed reads the max speed written by SaveMaxSpeed. A missing file
// yields 0.
func LoadMaxSpeed(path string) (float64, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("sampler: %w", err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil {
		return 0, fmt.Errorf("sampler: %s: %w", path, err)
	}
	return v, nil
}

// SaveMaxSpeed stores v with two decimals.
func SaveMaxSpeed(path string, v float64) error {
	if err := os.WriteFile(path, []byte(strconv.FormatFloat(v, 'f', 2, 64)+"\n"), 0o644); err != nil {
		return fmt.Errorf("sampler: %w", err)
	}
	return nil
}
