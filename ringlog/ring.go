// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ringlog

import (
	"fmt"
	"math"
)

// Sample is one logging tick. The zero Sample means "no data".
type Sample struct {
	Temperature float64
	// HasTemperature marks Temperature as a real reading; sub-zero values
	// are valid.
	HasTemperature bool
	Distance       float64
}

// Aggregates are derived from the ring after every Update.
type Aggregates struct {
	// Sums of the distance over the last Capacity, Day, HalfDay and Window
	// samples.
	Week    float64
	Day     float64
	HalfDay float64
	Window  float64

	// TempMin and TempMax cover the valid temperatures of the display
	// window. They are only meaningful when HasTemp is set.
	TempMin float64
	TempMax float64
	HasTemp bool
}

// Opts sizes the ring and its aggregate windows, all in samples.
type Opts struct {
	Capacity int
	Day      int
	HalfDay  int
	Window   int
}

// FiveMinutes is one week of history at one sample every five minutes, with
// an 18 hour display window.
var FiveMinutes = Opts{
	Capacity: 7 * 24 * 60 / 5,
	Day:      24 * 60 / 5,
	HalfDay:  12 * 60 / 5,
	Window:   18 * 60 / 5,
}

// Ring is the circular history. It is not safe for concurrent use.
type Ring struct {
	opts    Opts
	samples []Sample
	index   int
}

// New returns an empty ring. The index is -1 until the first Update.
func New(opts Opts) (*Ring, error) {
	if opts.Capacity <= 0 {
		return nil, fmt.Errorf("ringlog: capacity must be positive, got %d", opts.Capacity)
	}
	for _, w := range []struct {
		name string
		n    int
	}{
		{"day", opts.Day},
		{"half day", opts.HalfDay},
		{"window", opts.Window},
	} {
		if w.n <= 0 || w.n > opts.Capacity {
			return nil, fmt.Errorf("ringlog: %s length %d outside 1..%d", w.name, w.n, opts.Capacity)
		}
	}

	return &Ring{
		opts:    opts,
		samples: make([]Sample, opts.Capacity),
		index:   -1,
	}, nil
}

// Opts returns the sizes the ring was created with.
func (r *Ring) Opts() Opts {
	return r.opts
}

// Capacity returns the number of slots.
func (r *Ring) Capacity() int {
	return r.opts.Capacity
}

// Index returns the slot written by the last Update, or -1.
func (r *Ring) Index() int {
	return r.index
}

// Update stores s in the next slot and returns the fresh aggregates.
func (r *Ring) Update(s Sample) Aggregates {
	r.index = mod(r.index+1, r.opts.Capacity)
	r.samples[r.index] = s
	return r.Aggregates()
}

// Skip advances the index over n empty samples, as if n ticks had been
// logged with no data.
func (r *Ring) Skip(n int) {
	for i := 0; i < n; i++ {
		r.index = mod(r.index+1, r.opts.Capacity)
		r.samples[r.index] = Sample{}
	}
}

// Reset empties the ring and sets the index back to -1.
func (r *Ring) Reset() {
	clear(r.samples)
	r.index = -1
}

// Restore replaces the contents with samples given oldest first and sets the
// index to -1 so the next Update appends after the newest one. Short input
// is padded in front with empty samples; long input keeps its newest
// Capacity entries.
func (r *Ring) Restore(samples []Sample) {
	r.Reset()
	if len(samples) > r.opts.Capacity {
		samples = samples[len(samples)-r.opts.Capacity:]
	}
	copy(r.samples[r.opts.Capacity-len(samples):], samples)
}

// Samples returns a copy of the whole ring, oldest first.
func (r *Ring) Samples() []Sample {
	return r.last(r.opts.Capacity)
}

// Window returns a copy of the display window, oldest first.
func (r *Ring) Window() []Sample {
	return r.last(r.opts.Window)
}

// Aggregates recomputes every aggregate from the ring contents.
func (r *Ring) Aggregates() Aggregates {
	a := Aggregates{
		Week:    r.sum(r.opts.Capacity),
		Day:     r.sum(r.opts.Day),
		HalfDay: r.sum(r.opts.HalfDay),
		Window:  r.sum(r.opts.Window),
	}

	for i := 0; i < r.opts.Window; i++ {
		s := r.at(i)
		if !s.HasTemperature {
			continue
		}
		if !a.HasTemp {
			a.TempMin, a.TempMax, a.HasTemp = s.Temperature, s.Temperature, true
			continue
		}
		a.TempMin = math.Min(a.TempMin, s.Temperature)
		a.TempMax = math.Max(a.TempMax, s.Temperature)
	}

	return a
}

// at returns the sample written back ticks before the current index.
func (r *Ring) at(back int) Sample {
	return r.samples[mod(r.index-back, r.opts.Capacity)]
}

func (r *Ring) sum(n int) float64 {
	var total float64
	for i := 0; i < n; i++ {
		total += r.at(i).Distance
	}
	return total
}

func (r *Ring) last(n int) []Sample {
	out := make([]Sample, n)
	for i := range out {
		out[i] = r.at(n - 1 - i)
	}
	return out
}

// mod returns a modulo n in [0, n).
func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
