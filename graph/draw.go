// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package graph

// Canvas is the drawing surface a Plot renders to.
type Canvas interface {
	Text(s string, x, y int)
	HLine(x, y, w int)
	VLine(x, y, h int)
	Line(x0, y0, x1, y1 int)
	Pixel(x, y int)
}

// Draw renders the plot.
func Draw(c Canvas, p Plot) {
	for _, r := range p.HRules {
		c.HLine(r.X, r.Y, r.Len)
	}
	for _, r := range p.VRules {
		c.VLine(r.X, r.Y, r.Len)
	}
	DrawTexts(c, p.Texts)
	for i := 1; i < len(p.Distance); i++ {
		a, b := p.Distance[i-1], p.Distance[i]
		c.Line(a.X, a.Y, b.X, b.Y)
	}
	if len(p.Distance) == 1 {
		c.Pixel(p.Distance[0].X, p.Distance[0].Y)
	}
	for _, pt := range p.Temperature {
		c.Pixel(pt.X, pt.Y)
	}
}

// DrawTimeAxis renders the time ruler.
func DrawTimeAxis(c Canvas, a Axis) {
	DrawTexts(c, a.Texts)
	for _, r := range a.VRules {
		c.VLine(r.X, r.Y, r.Len)
	}
}

// DrawTexts writes each label.
func DrawTexts(c Canvas, texts []Text) {
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		c.Text(t.S, t.X, t.Y)
	}
}
