// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sampler

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMaxSpeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speed.log")

	got, err := LoadMaxSpeed(path)
	if err != nil || got != 0 {
		t.Fatalf("LoadMaxSpeed() of a missing file = (%v, %v), want (0, nil)", got, err)
	}

	if err := SaveMaxSpeed(path, 1.005309649); err != nil {
		t.Fatalf("SaveMaxSpeed() failed: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "1.01\n" {
		t.Errorf("file content = %q, want %q", b, "1.01\n")
	}

	got, err = LoadMaxSpeed(path)
	if err != nil {
		t.Fatalf("LoadMaxSpeed() failed: %v", err)
	}
	if got != 1.01 {
		t.Errorf("LoadMaxSpeed() = %v, want 1.01", got)
	}
}

func TestMaxSpeedFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speed.log")
	if err := os.WriteFile(path, []byte("fast\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMaxSpeed(path); err == nil {
		t.Error("LoadMaxSpeed() succeeded on a corrupt file")
	}
}
