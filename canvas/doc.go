// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package canvas is a 1 bit drawing surface with the primitives the
// dashboard needs: pixels, horizontal and vertical rules, lines and a small
// bitmap font.
//
// The backing image is an image1bit.VerticalLSB, the format the e-paper
// driver streams to the panel. Text is rendered with tinyfont, for which the
// Bitmap is a drivers.Displayer.
package canvas
