// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ringlog keeps a fixed-capacity circular history of (temperature,
// distance) samples and derives rolling aggregates from it.
//
// Every Update advances the write index modulo the capacity and recomputes
// all sums from the ring itself, so a skipped tick never makes the
// aggregates drift from the stored samples.
//
// # File format
//
// Store persists the ring as plain text, oldest sample first:
//
//	# wheeldash ring v1 capacity=2016 fields=temperature,distance updated=2026-10-18T09:30:00Z
//	nan,0.0
//	22.5,100.0
//
// The file is capacity+1 lines long: one header line, then exactly capacity
// sample lines. The first sample line is the oldest slot, "nan,0.0" while
// the ring has not wrapped yet. Earlier v1 files split the header over two
// "#" lines and are still read.
// Numbers always carry a fractional part and a missing temperature is
// written as "nan". The updated key is omitted when no clock is available.
//
// A file without the "#" header is read as the legacy format: an optional
// first line holding the controller's RTC tuple
// (year,month,day,weekday,hour,minute,second,subsecond) followed by
// "temperature,distance" lines in which a non-positive temperature means
// "no reading".
package ringlog
