// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package graph

import (
	"image"
	"math"
	"strconv"

	"github.com/GermanBionicSystems/wheeldash/ringlog"
)

// Opts is the geometry of the plot area, in canvas pixels.
type Opts struct {
	// Width is the number of samples, and pixels, of the plot.
	Width int
	// Base is the y of the zero line, Scale the height above it that maps
	// to the upper bound of an axis.
	Base  int
	Scale int
	// Top and Mid are the y of the upper and the middle gridline.
	Top int
	Mid int
	// Left and Right are the x of the temperature and distance labels.
	Left  int
	Right int
	// Ruler is the y of the time axis labels.
	Ruler int
	// Header1 and Header2 are the y of the two header lines; HeaderRight
	// the x of the right-aligned header field.
	Header1     int
	Header2     int
	HeaderRight int
	// RuleLength is the length of the gridline marks next to the labels.
	RuleLength int
}

// Landscape213 lays a 216 sample plot out on a 250×128 canvas whose rows
// above 6 are not visible.
var Landscape213 = Opts{
	Width:       216,
	Base:        119,
	Scale:       89,
	Top:         30,
	Mid:         74,
	Left:        2,
	Right:       250 - 8*4 - 1,
	Ruler:       121,
	Header1:     7,
	Header2:     17,
	HeaderRight: 200,
	RuleLength:  5,
}

// Text is a label with its top-left corner at X, Y.
type Text struct {
	S    string
	X, Y int
}

// Rule is a horizontal or vertical run of Len pixels starting at X, Y.
type Rule struct {
	X, Y, Len int
}

// Plot is everything to draw for one frame, in canvas coordinates.
type Plot struct {
	// DistUpper is the distance mapped to the top of the plot. Distance
	// points are only present when it is positive.
	DistUpper int
	Distance  []image.Point

	// TempLower and TempUpper are only set when HasTemp is.
	TempLower int
	TempUpper int
	HasTemp   bool
	// Temperature is one point per valid sample.
	Temperature []image.Point

	Texts  []Text
	HRules []Rule
	VRules []Rule
}

// Layout maps the display window, oldest sample first, onto the plot. Only
// the newest o.Width samples fit.
func Layout(window []ringlog.Sample, o Opts) Plot {
	var p Plot

	if len(window) > o.Width {
		window = window[len(window)-o.Width:]
	}

	// Frame: zero line and both y axes.
	p.HRules = append(p.HRules, Rule{0, o.Base, o.Width})
	p.VRules = append(p.VRules,
		Rule{0, o.Top, o.Base - o.Top + 1},
		Rule{o.Width, o.Top, o.Base - o.Top + 1},
	)

	layoutDistance(&p, window, o)
	layoutTemperature(&p, window, o)

	return p
}

// DistanceUpper is the smallest multiple of 100 strictly above total.
func DistanceUpper(total float64) int {
	return int(math.Round(100 * math.Ceil((1+total)/100)))
}

func layoutDistance(p *Plot, window []ringlog.Sample, o Opts) {
	var total float64
	for _, s := range window {
		total += s.Distance
	}
	upper := DistanceUpper(total)
	p.DistUpper = upper

	labelX := o.Right
	ruleX := o.Right - o.RuleLength
	p.Texts = append(p.Texts,
		Text{strconv.Itoa(upper), labelX, o.Top + 1},
		Text{"m", labelX, o.Top + 1 + 8},
		Text{strconv.Itoa(int(math.Round(float64(upper) / 2))), labelX, o.Mid + 1},
		Text{"m", labelX, o.Mid + 1 + 8},
		Text{"0m", labelX, o.Ruler - 9},
	)
	p.HRules = append(p.HRules, Rule{ruleX, o.Top, o.RuleLength}, Rule{ruleX, o.Mid, o.RuleLength})

	if upper <= 0 || len(window) == 0 {
		return
	}

	var cum float64
	for i, s := range window {
		cum += s.Distance
		p.Distance = append(p.Distance, image.Pt(i, o.Base-round(float64(o.Scale)*cum/float64(upper))))
	}
}

func layoutTemperature(p *Plot, window []ringlog.Sample, o Opts) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range window {
		if !s.HasTemperature {
			continue
		}
		lo = math.Min(lo, s.Temperature)
		hi = math.Max(hi, s.Temperature)
	}
	if lo > hi {
		return
	}

	lower, upper := int(math.Floor(lo)), int(math.Ceil(hi))
	p.TempLower, p.TempUpper, p.HasTemp = lower, upper, true

	p.Texts = append(p.Texts,
		Text{strconv.Itoa(upper) + "C", o.Left, o.Top + 2},
		Text{midLabel(lower, upper), o.Left, o.Mid + 2},
		Text{strconv.Itoa(lower) + "C", o.Left, o.Ruler - 11},
	)
	p.HRules = append(p.HRules, Rule{o.Left - 1, o.Top, o.RuleLength}, Rule{o.Left - 1, o.Mid, o.RuleLength})

	span := float64(upper - lower)
	for i, s := range window {
		if !s.HasTemperature {
			continue
		}
		y := o.Base - round(float64(o.Scale)/2)
		if span > 0 {
			y = o.Base - round(float64(o.Scale)*(s.Temperature-float64(lower))/span)
		}
		p.Temperature = append(p.Temperature, image.Pt(i, y))
	}
}

func midLabel(lower, upper int) string {
	if (lower+upper)%2 == 0 {
		return strconv.Itoa((lower+upper)/2) + "C"
	}
	return strconv.FormatFloat(float64(lower+upper)/2, 'f', 1, 64) + "C"
}

// HeaderTexts places the two header lines and the right-hand field.
func HeaderTexts(line1, right, line2 string, o Opts) []Text {
	return []Text{
		{line1, 0, o.Header1},
		{right, o.HeaderRight, o.Header1},
		{line2, 0, o.Header2},
	}
}

// round is half away from zero.
func round(v float64) int {
	return int(math.Round(v))
}
