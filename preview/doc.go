// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package preview shows dashboard frames without a panel attached.
//
// WritePNG renders a frame, magnified and captioned, to a PNG. Terminal is a
// display.Drawer that prints frames to the console with ANSI colors.
package preview
