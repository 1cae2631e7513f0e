// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package canvas

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// inked lists the black pixels in scan order.
func inked(b *Bitmap) []image.Point {
	var pts []image.Point
	r := b.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if b.Image().BitAt(x, y) == image1bit.Off {
				pts = append(pts, image.Pt(x, y))
			}
		}
	}
	return pts
}

func TestNew(t *testing.T) {
	b := New(image.Rect(0, 0, 250, 128))

	if diff := cmp.Diff(b.Bounds(), image.Rect(0, 0, 250, 128)); diff != "" {
		t.Errorf("Bounds() difference (-got +want):\n%s", diff)
	}
	if pts := inked(b); len(pts) != 0 {
		t.Errorf("new bitmap has %d black pixels", len(pts))
	}

	x, y := b.Size()
	if x != 250 || y != 128 {
		t.Errorf("Size() = (%d, %d), want (250, 128)", x, y)
	}
}

func TestPrimitives(t *testing.T) {
	for _, tc := range []struct {
		name string
		draw func(b *Bitmap)
		want []image.Point
	}{
		{
			name: "pixel",
			draw: func(b *Bitmap) { b.Pixel(3, 4) },
			want: []image.Point{{3, 4}},
		},
		{
			name: "clipped pixel",
			draw: func(b *Bitmap) { b.Pixel(-1, 4); b.Pixel(3, 8) },
		},
		{
			name: "hline",
			draw: func(b *Bitmap) { b.HLine(1, 2, 3) },
			want: []image.Point{{1, 2}, {2, 2}, {3, 2}},
		},
		{
			name: "vline",
			draw: func(b *Bitmap) { b.VLine(5, 5, 4) },
			want: []image.Point{{5, 5}, {5, 6}, {5, 7}},
		},
		{
			name: "diagonal",
			draw: func(b *Bitmap) { b.Line(0, 0, 3, 3) },
			want: []image.Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}},
		},
		{
			name: "shallow, right to left",
			draw: func(b *Bitmap) { b.Line(4, 1, 0, 0) },
			want: []image.Point{{0, 0}, {1, 0}, {2, 0}, {3, 1}, {4, 1}},
		},
		{
			name: "steep",
			draw: func(b *Bitmap) { b.Line(1, 0, 1, 2) },
			want: []image.Point{{1, 0}, {1, 1}, {1, 2}},
		},
		{
			name: "single point",
			draw: func(b *Bitmap) { b.Line(6, 6, 6, 6) },
			want: []image.Point{{6, 6}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := New(image.Rect(0, 0, 8, 8))
			tc.draw(b)
			if diff := cmp.Diff(inked(b), tc.want); diff != "" {
				t.Errorf("black pixels difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestSetPixel(t *testing.T) {
	b := New(image.Rect(0, 0, 8, 8))

	b.SetPixel(1, 1, color.RGBA{A: 0xff})
	b.SetPixel(2, 2, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	b.SetPixel(20, 2, color.RGBA{A: 0xff})

	if diff := cmp.Diff(inked(b), []image.Point{{1, 1}}); diff != "" {
		t.Errorf("black pixels difference (-got +want):\n%s", diff)
	}

	b.SetPixel(1, 1, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	if pts := inked(b); len(pts) != 0 {
		t.Errorf("a white SetPixel left %v black", pts)
	}
}

func TestText(t *testing.T) {
	b := New(image.Rect(0, 0, 64, 32))
	b.Text("42", 10, 12)

	pts := inked(b)
	if len(pts) == 0 {
		t.Fatal("Text() drew nothing")
	}

	// Glyphs stay around their text cell.
	cell := image.Rect(9, 10, 10+b.TextWidth("42")+1, 12+FontHeight)
	for _, p := range pts {
		if !p.In(cell) {
			t.Errorf("pixel %v outside the text cell %v", p, cell)
		}
	}

	if b.TextWidth("42") <= b.TextWidth("4") {
		t.Errorf("TextWidth(%q) = %d, not wider than one glyph", "42", b.TextWidth("42"))
	}
}

func TestFill(t *testing.T) {
	b := New(image.Rect(0, 0, 8, 8))
	b.Fill(image1bit.Off)
	if pts := inked(b); len(pts) != 64 {
		t.Errorf("Fill(Off) left %d black pixels, want 64", len(pts))
	}
	if err := b.Display(); err != nil {
		t.Errorf("Display() failed: %v", err)
	}
}
