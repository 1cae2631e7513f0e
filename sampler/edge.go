// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sampler

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// edgePoll bounds each WaitForEdge so cancellation is noticed.
const edgePoll = 200 * time.Millisecond

// EdgeWatcher forwards falling edges of a reed contact to a Counter.
type EdgeWatcher struct {
	pin     gpio.PinIn
	counter *Counter
	now     func() time.Time
}

// NewEdgeWatcher configures pin as a pulled-up input interrupting on falling
// edges. now defaults to time.Now.
func NewEdgeWatcher(pin gpio.PinIn, counter *Counter, now func() time.Time) (*EdgeWatcher, error) {
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("sampler: %s: %w", pin, err)
	}
	if now == nil {
		now = time.Now
	}
	return &EdgeWatcher{pin: pin, counter: counter, now: now}, nil
}

// Run blocks until ctx is done.
func (w *EdgeWatcher) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		if w.pin.WaitForEdge(edgePoll) {
			w.counter.Pulse(w.now())
		}
	}
	return nil
}
