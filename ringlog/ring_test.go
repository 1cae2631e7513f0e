// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ringlog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var small = Opts{Capacity: 5, Day: 3, HalfDay: 2, Window: 4}

func newRing(t *testing.T, opts Opts) *Ring {
	t.Helper()
	r, err := New(opts)
	if err != nil {
		t.Fatalf("New(%+v) failed: %v", opts, err)
	}
	return r
}

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		name    string
		opts    Opts
		wantErr bool
	}{
		{name: "five minutes", opts: FiveMinutes},
		{name: "small", opts: small},
		{name: "zero capacity", opts: Opts{Day: 1, HalfDay: 1, Window: 1}, wantErr: true},
		{name: "day too long", opts: Opts{Capacity: 4, Day: 5, HalfDay: 1, Window: 1}, wantErr: true},
		{name: "empty window", opts: Opts{Capacity: 4, Day: 2, HalfDay: 1}, wantErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r, err := New(tc.opts)
			if (err != nil) != tc.wantErr {
				t.Fatalf("New() error = %v, wantErr %t", err, tc.wantErr)
			}
			if err != nil {
				return
			}
			if r.Index() != -1 {
				t.Errorf("Index() = %d, want -1", r.Index())
			}
			if r.Capacity() != tc.opts.Capacity {
				t.Errorf("Capacity() = %d, want %d", r.Capacity(), tc.opts.Capacity)
			}
		})
	}
}

func TestFiveMinutes(t *testing.T) {
	want := Opts{Capacity: 2016, Day: 288, HalfDay: 144, Window: 216}
	if diff := cmp.Diff(FiveMinutes, want); diff != "" {
		t.Errorf("FiveMinutes difference (-got +want):\n%s", diff)
	}
}

func TestUpdateIndex(t *testing.T) {
	r := newRing(t, small)
	for n := 1; n <= 3*small.Capacity+2; n++ {
		r.Update(Sample{Distance: float64(n)})
		if want := (n - 1) % small.Capacity; r.Index() != want {
			t.Fatalf("after %d updates Index() = %d, want %d", n, r.Index(), want)
		}
	}
}

func TestRollingSums(t *testing.T) {
	r := newRing(t, small)

	var history []float64
	for n := 1; n <= 12; n++ {
		d := float64(n * n)
		history = append(history, d)
		got := r.Update(Sample{Distance: d})

		lastN := func(k int) float64 {
			var s float64
			for i := max(0, len(history)-k); i < len(history); i++ {
				s += history[i]
			}
			return s
		}

		want := Aggregates{
			Week:    lastN(small.Capacity),
			Day:     lastN(small.Day),
			HalfDay: lastN(small.HalfDay),
			Window:  lastN(small.Window),
		}
		if diff := cmp.Diff(got, want); diff != "" {
			t.Fatalf("update %d: Update() difference (-got +want):\n%s", n, diff)
		}
	}
}

// Missed ticks leave empty slots; the sums only ever see what is stored.
func TestRollingSumsAfterSkip(t *testing.T) {
	r := newRing(t, small)
	r.Update(Sample{Distance: 10})
	r.Update(Sample{Distance: 20})
	r.Skip(2)
	got := r.Update(Sample{Distance: 5})

	want := Aggregates{Week: 35, Day: 5, HalfDay: 5, Window: 25}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Update() difference (-got +want):\n%s", diff)
	}
	if r.Index() != 4 {
		t.Errorf("Index() = %d, want 4", r.Index())
	}
}

func TestTemperatureRange(t *testing.T) {
	for _, tc := range []struct {
		name    string
		samples []Sample
		want    Aggregates
	}{
		{
			name:    "none valid",
			samples: []Sample{{Distance: 1}, {}, {Temperature: 30}},
			want:    Aggregates{Week: 1, Day: 1, HalfDay: 0, Window: 1},
		},
		{
			name: "sub-zero is valid",
			samples: []Sample{
				{Temperature: -3.5, HasTemperature: true},
				{},
				{Temperature: 2, HasTemperature: true},
			},
			want: Aggregates{TempMin: -3.5, TempMax: 2, HasTemp: true},
		},
		{
			name: "outside the window is ignored",
			samples: []Sample{
				{Temperature: 40, HasTemperature: true},
				{Temperature: 20, HasTemperature: true},
				{Temperature: 21, HasTemperature: true},
				{Temperature: 19.5, HasTemperature: true},
				{Temperature: 22, HasTemperature: true},
			},
			want: Aggregates{TempMin: 19.5, TempMax: 22, HasTemp: true},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := newRing(t, small)
			var got Aggregates
			for _, s := range tc.samples {
				got = r.Update(s)
			}
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("Update() difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestWindowOrder(t *testing.T) {
	r := newRing(t, small)
	for n := 1; n <= 7; n++ {
		r.Update(Sample{Distance: float64(n)})
	}

	want := []Sample{{Distance: 4}, {Distance: 5}, {Distance: 6}, {Distance: 7}}
	if diff := cmp.Diff(r.Window(), want); diff != "" {
		t.Errorf("Window() difference (-got +want):\n%s", diff)
	}

	wantAll := append([]Sample{{Distance: 3}}, want...)
	if diff := cmp.Diff(r.Samples(), wantAll); diff != "" {
		t.Errorf("Samples() difference (-got +want):\n%s", diff)
	}
}

func TestRestore(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   []Sample
		want []Sample
	}{
		{
			name: "short is padded in front",
			in:   []Sample{{Distance: 1}, {Distance: 2}},
			want: []Sample{{}, {}, {}, {Distance: 1}, {Distance: 2}},
		},
		{
			name: "long keeps the newest",
			in:   []Sample{{Distance: 1}, {Distance: 2}, {Distance: 3}, {Distance: 4}, {Distance: 5}, {Distance: 6}, {Distance: 7}},
			want: []Sample{{Distance: 3}, {Distance: 4}, {Distance: 5}, {Distance: 6}, {Distance: 7}},
		},
		{
			name: "empty",
			want: []Sample{{}, {}, {}, {}, {}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := newRing(t, small)
			r.Update(Sample{Distance: 99})

			r.Restore(tc.in)

			if r.Index() != -1 {
				t.Errorf("Index() = %d, want -1", r.Index())
			}
			if diff := cmp.Diff(r.Samples(), tc.want); diff != "" {
				t.Errorf("Samples() difference (-got +want):\n%s", diff)
			}

			// The next update lands after the newest restored sample.
			r.Update(Sample{Distance: 100})
			if got := r.Samples()[small.Capacity-1]; got.Distance != 100 {
				t.Errorf("newest sample = %+v, want distance 100", got)
			}
		})
	}
}

func TestMod(t *testing.T) {
	for _, tc := range []struct {
		a, n, want int
	}{
		{0, 5, 0},
		{4, 5, 4},
		{5, 5, 0},
		{-1, 5, 4},
		{-6, 5, 4},
		{-2016, 2016, 0},
	} {
		if got := mod(tc.a, tc.n); got != tc.want {
			t.Errorf("mod(%d, %d) = %d, want %d", tc.a, tc.n, got, tc.want)
		}
	}
}
