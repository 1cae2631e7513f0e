// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveshare2in13v3

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// errorHandler is a wrapper for error management. The first error aborts all
// following bus operations of the sequence.
type errorHandler struct {
	d   Dev
	err error
}

func (eh *errorHandler) rstOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.rst.Out(l)
}

func (eh *errorHandler) cTx(w []byte, r []byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.c.Tx(w, r)
}

func (eh *errorHandler) dcOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.dc.Out(l)
}

func (eh *errorHandler) csOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.cs.Out(l)
}

// readBusy blocks while the controller drives BUSY high. Without a
// BusyTimeout it never gives up.
func (eh *errorHandler) readBusy() {
	if eh.err != nil {
		return
	}

	time.Sleep(busyPollInterval)

	var deadline time.Time
	if eh.d.opts.BusyTimeout > 0 {
		deadline = time.Now().Add(eh.d.opts.BusyTimeout)
	}

	for eh.d.busy.Read() == gpio.High {
		if !deadline.IsZero() && time.Now().After(deadline) {
			eh.err = ErrBusyTimeout
			return
		}
		time.Sleep(busyPollInterval)
	}
}

func (eh *errorHandler) sendCommand(cmd byte) {
	if eh.err != nil {
		return
	}

	eh.dcOut(gpio.Low)
	eh.csOut(gpio.Low)
	eh.cTx([]byte{cmd}, nil)
	eh.csOut(gpio.High)
}

func (eh *errorHandler) sendData(data []byte) {
	if eh.err != nil {
		return
	}

	eh.dcOut(gpio.High)
	eh.csOut(gpio.Low)
	eh.cTx(data, nil)
	eh.csOut(gpio.High)
}

// pulse drives the reset line through the given levels, sleeping the
// matching delay after each one.
func (eh *errorHandler) pulse(levels []gpio.Level, delays []time.Duration) {
	for i, l := range levels {
		eh.rstOut(l)
		if eh.err != nil {
			return
		}
		time.Sleep(delays[i])
	}
}
