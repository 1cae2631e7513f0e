// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package canvas

import (
	"image"
	"image/color"
	"image/draw"

	"periph.io/x/devices/v3/ssd1306/image1bit"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

const (
	// FontHeight is the line pitch of the text font.
	FontHeight = 10
	// fontOffset is the distance from the top of a text cell to its
	// baseline.
	fontOffset = 6
)

// Ink is the color every primitive draws with.
var Ink = color.RGBA{A: 0xff}

// Bitmap is a monochrome frame in the panel's memory layout. Primitives draw
// black (image1bit.Off) on white (image1bit.On) and silently clip.
type Bitmap struct {
	img  *image1bit.VerticalLSB
	font tinyfont.Fonter
}

// New returns a white bitmap.
func New(r image.Rectangle) *Bitmap {
	b := &Bitmap{
		img:  image1bit.NewVerticalLSB(r),
		font: &proggy.TinySZ8pt7b,
	}
	b.Fill(image1bit.On)
	return b
}

// Image returns the backing image, suitable for the panel driver.
func (b *Bitmap) Image() *image1bit.VerticalLSB {
	return b.img
}

// Bounds returns the bitmap size.
func (b *Bitmap) Bounds() image.Rectangle {
	return b.img.Bounds()
}

// Fill sets every pixel to c.
func (b *Bitmap) Fill(c image1bit.Bit) {
	draw.Src.Draw(b.img, b.img.Bounds(), &image.Uniform{c}, image.Point{})
}

// Pixel inks one pixel.
func (b *Bitmap) Pixel(x, y int) {
	if !(image.Point{x, y}).In(b.img.Bounds()) {
		return
	}
	b.img.SetBit(x, y, image1bit.Off)
}

// HLine inks w pixels to the right of (x, y), inclusive.
func (b *Bitmap) HLine(x, y, w int) {
	for i := 0; i < w; i++ {
		b.Pixel(x+i, y)
	}
}

// VLine inks h pixels below (x, y), inclusive.
func (b *Bitmap) VLine(x, y, h int) {
	for i := 0; i < h; i++ {
		b.Pixel(x, y+i)
	}
}

// Line inks a straight segment including both end points.
func (b *Bitmap) Line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	e := dx + dy
	for {
		b.Pixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Text writes s with its top-left corner at (x, y).
func (b *Bitmap) Text(s string, x, y int) {
	tinyfont.WriteLine(b, b.font, int16(x), int16(y+fontOffset), s, Ink)
}

// TextWidth returns the advance of s in pixels.
func (b *Bitmap) TextWidth(s string) int {
	_, w := tinyfont.LineWidth(b.font, s)
	return int(w)
}

// Size implements drivers.Displayer.
func (b *Bitmap) Size() (x, y int16) {
	r := b.img.Bounds()
	return int16(r.Dx()), int16(r.Dy())
}

// SetPixel implements drivers.Displayer. Dark colors ink the pixel, light
// ones clear it.
func (b *Bitmap) SetPixel(x, y int16, c color.RGBA) {
	if !(image.Point{int(x), int(y)}).In(b.img.Bounds()) {
		return
	}
	b.img.SetBit(int(x), int(y), image1bit.BitModel.Convert(c).(image1bit.Bit))
}

// Display implements drivers.Displayer. Pushing the frame is up to the
// caller.
func (b *Bitmap) Display() error {
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
