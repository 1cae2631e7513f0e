// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveshare2in13v3

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3/rpi"
)

// Commands
const (
	driverOutputControl            byte = 0x01
	gateDrivingVoltageControl      byte = 0x03
	sourceDrivingVoltageControl    byte = 0x04
	deepSleepMode                  byte = 0x10
	dataEntryModeSetting           byte = 0x11
	swReset                        byte = 0x12
	tempSensorSelect               byte = 0x18
	masterActivation               byte = 0x20
	displayUpdateControl1          byte = 0x21
	displayUpdateControl2          byte = 0x22
	writeRAMBW                     byte = 0x24
	writeRAMRed                    byte = 0x26
	writeVcomRegister              byte = 0x2C
	writeLutRegister               byte = 0x32
	writeRegisterForDisplayOption  byte = 0x37
	borderWaveformControl          byte = 0x3C
	endOptionEOPT                  byte = 0x3F
	setRAMXAddressStartEndPosition byte = 0x44
	setRAMYAddressStartEndPosition byte = 0x45
	setRAMXAddressCounter          byte = 0x4E
	setRAMYAddressCounter          byte = 0x4F
)

// Flags for the displayUpdateControl2 command
const (
	displayUpdateDisableClock byte = 1 << iota
	displayUpdateDisableAnalog
	displayUpdateDisplay
	displayUpdateMode2
	displayUpdateLoadLUTFromOTP
	displayUpdateLoadTemperature
	displayUpdateEnableClock
	displayUpdateEnableAnalog
)

const (
	// Enable clock and analog, display with mode 1, disable analog and clock.
	fullUpdateSequence = displayUpdateEnableAnalog |
		displayUpdateEnableClock |
		displayUpdateDisplay |
		displayUpdateDisableAnalog |
		displayUpdateDisableClock
	// Display with mode 2 while keeping clock and analog running.
	partialUpdateSequence = displayUpdateMode2 |
		displayUpdateDisplay |
		displayUpdateDisableAnalog |
		displayUpdateDisableClock

	lutWaveformSize = 153
	lutSize         = lutWaveformSize + 6

	busyPollInterval = 10 * time.Millisecond
	sleepSettle      = 100 * time.Millisecond
	resetSettle      = 100 * time.Millisecond
)

// ErrBusyTimeout is returned when Opts.BusyTimeout is set and the controller
// keeps BUSY asserted for longer.
var ErrBusyTimeout = errors.New("waveshare2in13v3: timed out waiting for BUSY to clear")

// Dev defines the handler which is used to access the display.
type Dev struct {
	c conn.Conn

	dc   gpio.PinOut
	cs   gpio.PinOut
	rst  gpio.PinOut
	busy gpio.PinIn

	bounds image.Rectangle
	buffer *image1bit.VerticalLSB

	opts *Opts
}

// LUT contains the waveform that is used to program the display: 153 bytes
// of waveform followed by EOPT, gate voltage, three source voltages and VCOM.
type LUT []byte

// Opts definies the structure of the display configuration.
type Opts struct {
	// Width and Height are the controller's native (portrait) dimensions.
	Width  int
	Height int

	FullUpdate    LUT
	PartialUpdate LUT

	// BusyTimeout bounds every wait on the BUSY line. Zero waits forever.
	BusyTimeout time.Duration
}

// PartialUpdate defines if the display should do a full update or just a partial update.
type PartialUpdate bool

const (
	// Full should update the complete display.
	Full PartialUpdate = false
	// Partial should update only partial parts of the display.
	Partial PartialUpdate = true
)

// EPD2in13v3 contains the display configuration for the Waveshare 2in13 V3.
var EPD2in13v3 = Opts{
	Width:  122,
	Height: 250,
	FullUpdate: LUT{
		0x80, 0x4A, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x40, 0x4A, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x80, 0x4A, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x40, 0x4A, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,

		0x0F, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x0F, 0x00, 0x00, 0x0F, 0x00, 0x00, 0x02,
		0x0F, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,

		0x22, 0x22, 0x22, 0x22, 0x22, 0x22, 0x00, 0x00, 0x00,

		0x22, 0x17, 0x41, 0x00, 0x32, 0x36,
	},
	PartialUpdate: LUT{
		0x00, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x80, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x40, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,

		0x14, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,

		0x22, 0x22, 0x22, 0x22, 0x22, 0x22, 0x00, 0x00, 0x00,

		0x22, 0x17, 0x41, 0x00, 0x32, 0x36,
	},
}

// New creates new handler which is used to access the display.
func New(p spi.Port, dc, cs, rst gpio.PinOut, busy gpio.PinIn, opts *Opts) (*Dev, error) {
	for _, lut := range []LUT{opts.FullUpdate, opts.PartialUpdate} {
		if len(lut) < lutSize {
			return nil, fmt.Errorf("waveshare2in13v3: LUT has %d bytes, want %d", len(lut), lutSize)
		}
	}

	c, err := p.Connect(4*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}

	if err := busy.In(gpio.Float, gpio.NoEdge); err != nil {
		return nil, err
	}

	// Landscape: the controller's Y axis becomes X, the byte-aligned source
	// axis becomes Y.
	bounds := image.Rect(0, 0, opts.Height, memWidth(opts))

	d := &Dev{
		c:      c,
		dc:     dc,
		cs:     cs,
		rst:    rst,
		busy:   busy,
		bounds: bounds,
		buffer: image1bit.NewVerticalLSB(bounds),
		opts:   opts,
	}

	// Default color
	draw.Src.Draw(d.buffer, d.buffer.Bounds(), &image.Uniform{image1bit.On}, image.Point{})

	return d, nil
}

// NewHat creates new handler which is used to access the display. Default Waveshare Hat configuration is used.
func NewHat(p spi.Port, opts *Opts) (*Dev, error) {
	dc := rpi.P1_22
	cs := rpi.P1_24
	rst := rpi.P1_11
	busy := rpi.P1_18
	return New(p, dc, cs, rst, busy, opts)
}

// Init resets the controller and loads the full-update waveform. It must be
// called after New and after every Sleep.
func (d *Dev) Init() error {
	if err := d.Reset(); err != nil {
		return err
	}
	time.Sleep(resetSettle)

	eh := errorHandler{d: *d}

	initDisplay(&eh, d.opts)

	return eh.err
}

// Reset the hardware.
func (d *Dev) Reset() error {
	eh := errorHandler{d: *d}

	eh.pulse(
		[]gpio.Level{gpio.High, gpio.Low, gpio.High},
		[]time.Duration{20 * time.Millisecond, 2 * time.Millisecond, 20 * time.Millisecond},
	)

	return eh.err
}

// Clear fills the panel with white using a full refresh.
func (d *Dev) Clear() error {
	draw.Src.Draw(d.buffer, d.buffer.Bounds(), &image.Uniform{image1bit.On}, image.Point{})

	eh := errorHandler{d: *d}

	clear(&eh, 0xFF, d.opts)

	return eh.err
}

// DisplayFull uploads img and performs a full, flashing refresh.
func (d *Dev) DisplayFull(img image.Image) error {
	d.load(img)

	eh := errorHandler{d: *d}

	writeFrame(&eh, writeRAMBW, d.buffer)
	turnOnDisplay(&eh, Full)

	return eh.err
}

// DisplayBase uploads img into both RAM banks and performs a full refresh. It
// sets the reference image later partial refreshes are compared against.
func (d *Dev) DisplayBase(img image.Image) error {
	d.load(img)

	eh := errorHandler{d: *d}

	writeFrame(&eh, writeRAMBW, d.buffer)
	writeFrame(&eh, writeRAMRed, d.buffer)
	turnOnDisplay(&eh, Full)

	return eh.err
}

// DisplayPartial resets the controller, loads the partial waveform, uploads
// img and performs a fast refresh without flashing.
func (d *Dev) DisplayPartial(img image.Image) error {
	d.load(img)

	eh := errorHandler{d: *d}

	eh.pulse(
		[]gpio.Level{gpio.Low, gpio.High},
		[]time.Duration{time.Millisecond, 0},
	)
	configPartial(&eh, d.opts)
	writeFrame(&eh, writeRAMBW, d.buffer)
	turnOnDisplay(&eh, Partial)

	return eh.err
}

// Sleep makes the controller enter deep sleep mode. It can be woken up by
// calling Init again.
func (d *Dev) Sleep() error {
	eh := errorHandler{d: *d}

	enterDeepSleep(&eh)
	if eh.err == nil {
		time.Sleep(sleepSettle)
	}

	return eh.err
}

// ColorModel returns a 1Bit color model.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds returns the landscape bounds of the controller RAM.
func (d *Dev) Bounds() image.Rectangle {
	return d.bounds
}

// Visible returns the part of Bounds that maps onto the panel. The rows above
// it exist in RAM only.
func (d *Dev) Visible() image.Rectangle {
	v := d.bounds
	v.Min.Y = v.Max.Y - d.opts.Width
	return v
}

// Draw draws the given image to the display using a full refresh.
func (d *Dev) Draw(dstRect image.Rectangle, src image.Image, srcPts image.Point) error {
	draw.Src.Draw(d.buffer, dstRect.Intersect(d.bounds), src, srcPts)

	eh := errorHandler{d: *d}

	writeFrame(&eh, writeRAMBW, d.buffer)
	turnOnDisplay(&eh, Full)

	return eh.err
}

// Halt clears the display.
func (d *Dev) Halt() error {
	return d.Clear()
}

// String returns a string containing configuration information.
func (d *Dev) String() string {
	return fmt.Sprintf("epd.Dev{%s, %s, Width: %d, Height: %d}", d.c, d.dc, d.bounds.Dx(), d.bounds.Dy())
}

// load copies img into the frame buffer, converting it to 1 bit if needed.
func (d *Dev) load(img image.Image) {
	draw.Src.Draw(d.buffer, d.bounds, img, img.Bounds().Min)
}

var _ display.Drawer = &Dev{}
