// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package graph

import (
	"strconv"
	"time"
)

const (
	// labelEvery is the number of ticks per labeled tick.
	labelEvery = 3
	// longTick and shortTick are the heights of labeled and plain ticks.
	longTick  = 6
	shortTick = 4
	// minLabelX keeps hour labels clear of the axis caption.
	minLabelX = 8
)

// Axis is the time ruler under the plot.
type Axis struct {
	Texts  []Text
	VRules []Rule
}

// TimeAxis returns the ruler for a plot whose rightmost sample is the most
// recent one and samples are interval apart.
//
// With a valid clock, ticks sit at full hours and every third is labeled with
// the hour of day. Without one, now is the zero time and ticks count hours
// back from the right edge.
func TimeAxis(o Opts, now time.Time, interval time.Duration) Axis {
	perHour := int(time.Hour / interval)
	if perHour <= 0 {
		perHour = 1
	}
	if now.IsZero() {
		return relativeAxis(o, perHour)
	}
	return clockAxis(o, now, interval, perHour)
}

func relativeAxis(o Opts, perHour int) Axis {
	a := Axis{Texts: []Text{{"-t", 0, o.Ruler}}}
	for t := 0; t < o.Width/perHour-1; t++ {
		x := o.Width - perHour*t
		if t%labelEvery != 0 {
			a.VRules = append(a.VRules, Rule{x, o.Base - 3, shortTick})
			continue
		}
		a.Texts = append(a.Texts, Text{strconv.Itoa(t), x - labelShift(t), o.Ruler})
		a.VRules = append(a.VRules, Rule{x, o.Base - 5, longTick})
	}
	return a
}

func clockAxis(o Opts, now time.Time, interval time.Duration, perHour int) Axis {
	a := Axis{Texts: []Text{{"t", 0, o.Ruler}}}
	slot := int(time.Duration(now.Minute())*time.Minute/interval)
	hour := now.Hour()
	n := 0
	for i := 0; i < o.Width; i++ {
		if mod(slot-i, perHour) != 0 {
			continue
		}
		x := o.Width - i
		if n == 0 {
			if lx := x - labelShift(hour); lx > minLabelX {
				a.Texts = append(a.Texts, Text{strconv.Itoa(hour), lx, o.Ruler})
			}
			a.VRules = append(a.VRules, Rule{x, o.Base - 5, longTick})
		} else {
			a.VRules = append(a.VRules, Rule{x, o.Base - 3, shortTick})
		}
		n = (n + 1) % labelEvery
		hour = mod(hour-1, 24)
	}
	return a
}

// labelShift centers a one or two digit label on its tick.
func labelShift(v int) int {
	if v > 9 {
		return 8
	}
	return 4
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
