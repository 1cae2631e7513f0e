// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dashboard ties the sampler, the history ring and the graph to the
// e-paper panel.
//
// Two clocks drive it: Measure adds one temperature reading to the smoother
// and Tick, once per log interval, turns the smoothed temperature and the
// accumulated distance into a history sample, persists it and redraws the
// panel. Run owns both tickers and the rotation edge watcher.
package dashboard
