// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"
)

// CaptionHeight is the strip added under the frame when a caption is set.
const CaptionHeight = 20

// Opts controls PNG rendering.
type Opts struct {
	// Scale magnifies each frame pixel to a Scale×Scale square.
	Scale int
	// Border is the white margin around the frame.
	Border int
	// Caption is written under the frame when not empty.
	Caption string
}

// DefaultOpts magnifies 3 times with a thin margin.
var DefaultOpts = Opts{Scale: 3, Border: 4}

// Render returns the magnified, captioned frame.
func Render(src image.Image, opts *Opts) (image.Image, error) {
	if opts.Scale < 1 {
		return nil, fmt.Errorf("preview: invalid scale %d", opts.Scale)
	}
	sr := src.Bounds()
	w, h := sr.Dx()*opts.Scale, sr.Dy()*opts.Scale

	ch := 0
	if opts.Caption != "" {
		ch = CaptionHeight
	}
	dst := image.NewRGBA(image.Rect(0, 0, w+2*opts.Border, h+2*opts.Border+ch))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	// Nearest neighbor keeps the panel's hard pixel edges.
	fr := image.Rect(opts.Border, opts.Border, opts.Border+w, opts.Border+h)
	draw.NearestNeighbor.Scale(dst, fr, src, sr, draw.Src, nil)

	dc := gg.NewContextForRGBA(dst)
	if opts.Caption != "" {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("preview: %w", err)
		}
		dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: 12}))
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(opts.Caption, float64(opts.Border), float64(h+2*opts.Border+ch/2), 0, 0.5)
	}
	return dc.Image(), nil
}

// WritePNG encodes the rendered frame to w.
func WritePNG(w io.Writer, src image.Image, opts *Opts) error {
	img, err := Render(src, opts)
	if err != nil {
		return err
	}
	return gg.NewContextForImage(img).EncodePNG(w)
}

// SavePNG writes the rendered frame to path.
func SavePNG(path string, src image.Image, opts *Opts) error {
	img, err := Render(src, opts)
	if err != nil {
		return err
	}
	return gg.SavePNG(path, img)
}
