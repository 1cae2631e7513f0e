// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sampler

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// MinDebounce is the shortest accepted debounce interval.
const MinDebounce = 250 * time.Millisecond

// CounterOpts describes the wheel and the pulse bookkeeping.
type CounterOpts struct {
	// WheelDiameter in meters.
	WheelDiameter float64
	// PulsesPerRevolution is the number of falling edges per turn.
	PulsesPerRevolution int
	// Debounce is the minimum time between two accepted edges.
	Debounce time.Duration
	// SpeedEvery is the number of accepted pulses averaged into one speed
	// sample.
	SpeedEvery int
	// SpeedSlots is the size of the speed ring.
	SpeedSlots int
}

// DefaultCounterOpts matches a 16cm wheel with a single reed contact.
var DefaultCounterOpts = CounterOpts{
	WheelDiameter:       0.16,
	PulsesPerRevolution: 1,
	Debounce:            MinDebounce,
	SpeedEvery:          8,
	SpeedSlots:          512,
}

type speedSample struct {
	at    time.Time
	speed float64
}

// Counter accumulates distance from rotation pulses.
//
// Pulse may be called from the edge goroutine while Swap and MaxSpeed run on
// the tick goroutine.
type Counter struct {
	opts CounterOpts
	unit float64

	// distance holds the float64 bits of the accumulated meters.
	distance atomic.Uint64

	mu       sync.Mutex
	lastEdge time.Time
	pulses   int
	start    time.Time
	speeds   []speedSample
	next     int
}

// NewCounter returns a Counter with no distance accumulated.
func NewCounter(opts CounterOpts) (*Counter, error) {
	if opts.WheelDiameter <= 0 {
		return nil, errors.New("sampler: wheel diameter must be positive")
	}
	if opts.PulsesPerRevolution <= 0 {
		return nil, errors.New("sampler: pulses per revolution must be positive")
	}
	if opts.Debounce < MinDebounce {
		opts.Debounce = MinDebounce
	}
	if opts.SpeedEvery <= 0 || opts.SpeedSlots <= 0 {
		return nil, errors.New("sampler: speed bookkeeping sizes must be positive")
	}

	return &Counter{
		opts:   opts,
		unit:   math.Pi * opts.WheelDiameter / float64(opts.PulsesPerRevolution),
		speeds: make([]speedSample, opts.SpeedSlots),
	}, nil
}

// Unit returns the distance in meters credited per accepted pulse.
func (c *Counter) Unit() float64 {
	return c.unit
}

// Pulse registers a falling edge seen at the given time and reports whether
// it was accepted. Edges closer than Debounce to the previous accepted edge
// are bounce and leave the counter untouched.
func (c *Counter) Pulse(at time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastEdge.IsZero() && at.Sub(c.lastEdge) < c.opts.Debounce {
		return false
	}
	c.lastEdge = at

	if c.pulses == 0 {
		if !c.start.IsZero() {
			if dt := at.Sub(c.start).Seconds(); dt > 0 {
				speed := float64(c.opts.SpeedEvery) * c.unit / dt
				c.speeds[c.next] = speedSample{at: at, speed: math.Round(speed*100) / 100}
				c.next = (c.next + 1) % len(c.speeds)
			}
		}
		c.start = at
	}
	c.pulses = (c.pulses + 1) % c.opts.SpeedEvery

	c.add(c.unit)
	return true
}

func (c *Counter) add(d float64) {
	for {
		old := c.distance.Load()
		if c.distance.CompareAndSwap(old, math.Float64bits(math.Float64frombits(old)+d)) {
			return
		}
	}
}

// Distance returns the meters accumulated since the last Swap.
func (c *Counter) Distance() float64 {
	return math.Float64frombits(c.distance.Load())
}

// Swap returns the meters accumulated since the last Swap and resets the
// accumulator in the same atomic step, so no pulse is lost or counted twice.
func (c *Counter) Swap() float64 {
	return math.Float64frombits(c.distance.Swap(0))
}

// Seed records a speed observed before a restart so it keeps counting toward
// MaxSpeed.
func (c *Counter) Seed(speed float64, at time.Time) {
	if speed <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speeds[c.next] = speedSample{at: at, speed: speed}
	c.next = (c.next + 1) % len(c.speeds)
}

// MaxSpeed returns the highest speed in m/s recorded within window before
// now, or 0.
func (c *Counter) MaxSpeed(now time.Time, window time.Duration) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var best float64
	for _, s := range c.speeds {
		if s.at.IsZero() || now.Sub(s.at) >= window {
			continue
		}
		best = math.Max(best, s.speed)
	}
	return best
}
