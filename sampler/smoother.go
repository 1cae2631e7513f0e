// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sampler

import "math"

// SmootherSlots is the number of readings averaged into one sample.
const SmootherSlots = 5

type reading struct {
	value float64
	valid bool
}

// Smoother averages the last few temperature readings. It is not safe for
// concurrent use.
type Smoother struct {
	slots [SmootherSlots]reading
	next  int
}

// Add stores a reading in the next slot, overwriting the oldest one. A
// failed read is stored with ok set to false.
func (s *Smoother) Add(value float64, ok bool) {
	s.slots[s.next] = reading{value: value, valid: ok}
	s.next = (s.next + 1) % len(s.slots)
}

// Finalize returns the mean of the valid slots rounded to 0.1, and false when
// none is valid.
func (s *Smoother) Finalize() (float64, bool) {
	var sum float64
	var n int
	for _, r := range s.slots {
		if r.valid {
			sum += r.value
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return math.Round(sum/float64(n)*10) / 10, true
}
