// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sampler

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var base = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func newCounter(t *testing.T, opts CounterOpts) *Counter {
	t.Helper()
	c, err := NewCounter(opts)
	if err != nil {
		t.Fatalf("NewCounter() failed: %v", err)
	}
	return c
}

func TestNewCounter(t *testing.T) {
	for _, tc := range []struct {
		name    string
		mutate  func(*CounterOpts)
		wantErr bool
	}{
		{name: "default", mutate: func(*CounterOpts) {}},
		{name: "no diameter", mutate: func(o *CounterOpts) { o.WheelDiameter = 0 }, wantErr: true},
		{name: "no pulses", mutate: func(o *CounterOpts) { o.PulsesPerRevolution = 0 }, wantErr: true},
		{name: "no speed ring", mutate: func(o *CounterOpts) { o.SpeedSlots = 0 }, wantErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultCounterOpts
			tc.mutate(&opts)
			if _, err := NewCounter(opts); (err != nil) != tc.wantErr {
				t.Errorf("NewCounter() error = %v, wantErr %t", err, tc.wantErr)
			}
		})
	}
}

func TestUnit(t *testing.T) {
	c := newCounter(t, DefaultCounterOpts)
	if got, want := c.Unit(), math.Pi*0.16; got != want {
		t.Errorf("Unit() = %v, want %v", got, want)
	}

	opts := DefaultCounterOpts
	opts.PulsesPerRevolution = 4
	c = newCounter(t, opts)
	if got, want := c.Unit(), math.Pi*0.16/4; got != want {
		t.Errorf("Unit() = %v, want %v", got, want)
	}
}

func TestDebounce(t *testing.T) {
	for _, tc := range []struct {
		name     string
		edges    []time.Duration
		accepted int
	}{
		{name: "bounce", edges: []time.Duration{0, 100 * time.Millisecond}, accepted: 1},
		{name: "exactly the interval", edges: []time.Duration{0, 250 * time.Millisecond}, accepted: 2},
		{name: "slow", edges: []time.Duration{0, time.Second}, accepted: 2},
		// Only accepted edges start a new interval.
		{name: "chatter", edges: []time.Duration{0, 200 * time.Millisecond, 400 * time.Millisecond, 600 * time.Millisecond}, accepted: 2},
		{name: "steady chatter", edges: []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond, 400 * time.Millisecond, 500 * time.Millisecond}, accepted: 2},
		{name: "mixed", edges: []time.Duration{0, 300 * time.Millisecond, 400 * time.Millisecond, 700 * time.Millisecond}, accepted: 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := newCounter(t, DefaultCounterOpts)

			var got int
			for _, d := range tc.edges {
				if c.Pulse(base.Add(d)) {
					got++
				}
			}

			if got != tc.accepted {
				t.Errorf("accepted %d edges, want %d", got, tc.accepted)
			}
			if diff := cmp.Diff(c.Distance(), float64(tc.accepted)*c.Unit(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Errorf("Distance() difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestDebounceFloor(t *testing.T) {
	opts := DefaultCounterOpts
	opts.Debounce = 10 * time.Millisecond
	c := newCounter(t, opts)

	c.Pulse(base)
	if c.Pulse(base.Add(100 * time.Millisecond)) {
		t.Error("Pulse() accepted an edge 100ms after the previous one")
	}
}

func TestSwap(t *testing.T) {
	c := newCounter(t, DefaultCounterOpts)
	c.Pulse(base)
	c.Pulse(base.Add(time.Second))

	if diff := cmp.Diff(c.Swap(), 2*c.Unit(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Swap() difference (-got +want):\n%s", diff)
	}
	if got := c.Swap(); got != 0 {
		t.Errorf("second Swap() = %v, want 0", got)
	}
}

// Pulses racing with Swap are credited exactly once.
func TestSwapConcurrent(t *testing.T) {
	const pulses = 2000
	c := newCounter(t, DefaultCounterOpts)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < pulses; i++ {
			c.Pulse(base.Add(time.Duration(i) * time.Second))
		}
	}()

	var total float64
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for loop := true; loop; {
		select {
		case <-done:
			loop = false
		default:
			total += c.Swap()
		}
	}
	total += c.Swap()

	if diff := cmp.Diff(total, pulses*c.Unit(), cmpopts.EquateApprox(1e-9, 0)); diff != "" {
		t.Errorf("total distance difference (-got +want):\n%s", diff)
	}
}

func TestMaxSpeed(t *testing.T) {
	opts := DefaultCounterOpts
	opts.SpeedEvery = 2
	c := newCounter(t, opts)

	// Two pulses per 500ms: a speed sample every second group.
	for i := 0; i < 7; i++ {
		c.Pulse(base.Add(time.Duration(i) * 500 * time.Millisecond))
	}
	// One slower group.
	c.Pulse(base.Add(10 * time.Second))

	want := math.Round(2*c.Unit()/1.0*100) / 100
	if got := c.MaxSpeed(base.Add(time.Minute), 18*time.Hour); got != want {
		t.Errorf("MaxSpeed() = %v, want %v", got, want)
	}
	if got := c.MaxSpeed(base.Add(19*time.Hour), 18*time.Hour); got != 0 {
		t.Errorf("MaxSpeed() after the window = %v, want 0", got)
	}
}

func TestMaxSpeedSeed(t *testing.T) {
	c := newCounter(t, DefaultCounterOpts)
	if got := c.MaxSpeed(base, 18*time.Hour); got != 0 {
		t.Errorf("MaxSpeed() of a new counter = %v, want 0", got)
	}

	c.Seed(3.2, base)
	c.Seed(-1, base)

	if got := c.MaxSpeed(base.Add(time.Hour), 18*time.Hour); got != 3.2 {
		t.Errorf("MaxSpeed() = %v, want 3.2", got)
	}
}
