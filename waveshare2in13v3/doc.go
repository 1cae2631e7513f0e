// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package waveshare2in13v3 controls the Waveshare 2.13 inch V3 e-paper
// display (SSD1680 class controller) in landscape orientation.
//
// The driver keeps the panel in the "LUT by host" mode: both waveforms are
// uploaded by the driver instead of being read from the controller OTP. The
// full waveform is loaded by Init and used by DisplayFull and Clear. The
// partial waveform is loaded by DisplayPartial, which resets the controller
// first. Partial refreshes accumulate ghosting; callers should interleave a
// full refresh every few updates.
//
// After Sleep the controller ignores everything but a hardware reset, so Init
// must be called again before the next refresh.
//
// The BUSY line is polled without timeout by default, matching the vendor
// protocol. A panel that never releases BUSY hangs the caller. Setting
// Opts.BusyTimeout turns the wait into a bounded one that fails with
// ErrBusyTimeout.
//
// Datasheet:
// https://files.waveshare.com/upload/5/59/2.13inch_e-Paper_V3_Specificition.pdf
//
// Product page:
// https://www.waveshare.com/wiki/2.13inch_e-Paper_HAT_Manual
package waveshare2in13v3
