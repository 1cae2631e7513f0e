// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sampler turns raw sensor events into one logical sample per
// logging tick.
//
// Counter accumulates the distance of a wheel from debounced rotation
// pulses and keeps a ring of speed samples for a rolling maximum. Its
// accumulator is read and reset with a single atomic swap, so pulses that
// arrive during a tick are credited to exactly one sample.
//
// Smoother averages the last five temperature readings, taken once a minute
// from a TemperatureSource: a periph environmental sensor (EnvSource), a
// linear analog sensor (ADCSource) or a DHT11 (DHTSource).
package sampler
