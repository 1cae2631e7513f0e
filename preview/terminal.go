// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// TerminalOpts represents the options available for the console view.
type TerminalOpts struct {
	// Width and Height is the frame size.
	Width  int
	Height int
	// Step samples every Step-th pixel in both directions. Defaults to 2.
	Step    int
	Palette *ansi256.Palette
	// Out defaults to a colorable stdout.
	Out io.Writer

	_ struct{}
}

// Terminal is a panel emulator that prints frames to the console.
type Terminal struct {
	w       io.Writer
	rect    image.Rectangle
	step    int
	palette ansi256.Palette

	frame *image.Gray
	buf   bytes.Buffer
}

// NewTerminal returns a Terminal that displays at the console.
func NewTerminal(opts *TerminalOpts) *Terminal {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Out
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	step := opts.Step
	if step < 1 {
		step = 2
	}
	r := image.Rect(0, 0, opts.Width, opts.Height)
	return &Terminal{
		w:       w,
		rect:    r,
		step:    step,
		palette: *p,
		frame:   image.NewGray(r),
	}
}

func (t *Terminal) String() string {
	return "Terminal"
}

// Halt implements conn.Resource.
//
// It resets the colors so the console is not left corrupted.
func (t *Terminal) Halt() error {
	_, err := t.w.Write([]byte("\n\033[0m"))
	return err
}

// ColorModel implements display.Drawer.
func (t *Terminal) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds implements display.Drawer.
func (t *Terminal) Bounds() image.Rectangle {
	return t.rect
}

// Draw implements display.Drawer.
func (t *Terminal) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(t.rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			t.frame.Set(x, y, src.At(sp.X+x-r.Min.X, sp.Y+y-r.Min.Y))
		}
	}
	return t.refresh()
}

func (t *Terminal) refresh() error {
	t.buf.Reset()
	for y := t.rect.Min.Y; y < t.rect.Max.Y; y += t.step {
		_, _ = t.buf.WriteString("\033[0m")
		for x := t.rect.Min.X; x < t.rect.Max.X; x += t.step {
			g := t.frame.GrayAt(x, y).Y
			_, _ = io.WriteString(&t.buf, t.palette.Block(color.NRGBA{g, g, g, 255}))
		}
		_, _ = t.buf.WriteString("\033[0m\n")
	}
	_, err := t.buf.WriteTo(t.w)
	return err
}

var _ display.Drawer = &Terminal{}
var _ fmt.Stringer = &Terminal{}
