// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package graph lays the history window out as a dual axis plot.
//
// Cumulative distance is a polyline scaled against the right axis, whose
// upper bound is the next multiple of 100 m above the window total.
// Temperature is one pixel per valid sample against the left axis, spanning
// the floor of the minimum to the ceiling of the maximum. A time ruler under
// the plot marks hours.
//
// Layout is pure: it returns coordinates, and Draw pushes them to any Canvas.
package graph
