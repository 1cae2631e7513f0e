// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveshare2in13v3

import (
	"bytes"
	"image"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

type controller interface {
	sendCommand(byte)
	sendData([]byte)
	readBusy()
}

// displayOption is the payload of writeRegisterForDisplayOption used before a
// partial refresh. Byte 5 enables the "ping-pong" mode for display mode 2.
var displayOption = []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00}

func initDisplay(ctrl controller, opts *Opts) {
	ctrl.readBusy()
	ctrl.sendCommand(swReset)
	ctrl.readBusy()

	ctrl.sendCommand(driverOutputControl)
	ctrl.sendData([]byte{
		byte((opts.Height - 1) & 0xFF),
		byte((opts.Height - 1) >> 8),
		0x00,
	})

	// X increment, Y increment; address counter follows the Y direction so
	// each landscape byte row is written as one controller column.
	ctrl.sendCommand(dataEntryModeSetting)
	ctrl.sendData([]byte{0x07})

	setWindow(ctrl, 0, 0, memWidth(opts)-1, opts.Height-1)
	setCursor(ctrl, 0, 0)

	ctrl.sendCommand(borderWaveformControl)
	ctrl.sendData([]byte{0x05})

	ctrl.sendCommand(displayUpdateControl1)
	ctrl.sendData([]byte{0x00, 0x80})

	// Use the built-in temperature sensor.
	ctrl.sendCommand(tempSensorSelect)
	ctrl.sendData([]byte{0x80})

	ctrl.readBusy()

	setLut(ctrl, opts.FullUpdate)
}

// configPartial prepares the controller for a partial refresh. The reset
// pulse preceding it is issued by the caller.
func configPartial(ctrl controller, opts *Opts) {
	setLut(ctrl, opts.PartialUpdate)

	ctrl.sendCommand(writeRegisterForDisplayOption)
	ctrl.sendData(displayOption)

	ctrl.sendCommand(borderWaveformControl)
	ctrl.sendData([]byte{0x80})

	// Enable clock and analog so the waveform is latched.
	ctrl.sendCommand(displayUpdateControl2)
	ctrl.sendData([]byte{displayUpdateEnableClock | displayUpdateEnableAnalog})
	ctrl.sendCommand(masterActivation)
	ctrl.readBusy()

	setWindow(ctrl, 0, 0, memWidth(opts)-1, opts.Height-1)
	setCursor(ctrl, 0, 0)
}

// turnOnDisplay triggers the update sequence and waits for it to complete.
func turnOnDisplay(ctrl controller, mode PartialUpdate) {
	upMode := fullUpdateSequence
	if mode == Partial {
		upMode = partialUpdateSequence
	}

	ctrl.sendCommand(displayUpdateControl2)
	ctrl.sendData([]byte{upMode})
	ctrl.sendCommand(masterActivation)
	ctrl.readBusy()
}

func lookUpTable(ctrl controller, lut LUT) {
	ctrl.sendCommand(writeLutRegister)
	ctrl.sendData(lut[:lutWaveformSize])
	ctrl.readBusy()
}

// setLut uploads the waveform and the voltages stored behind it.
func setLut(ctrl controller, lut LUT) {
	lookUpTable(ctrl, lut)

	ctrl.sendCommand(endOptionEOPT)
	ctrl.sendData([]byte{lut[153]})

	ctrl.sendCommand(gateDrivingVoltageControl)
	ctrl.sendData([]byte{lut[154]})

	// VSH1, VSH2, VSL
	ctrl.sendCommand(sourceDrivingVoltageControl)
	ctrl.sendData(lut[155:158])

	ctrl.sendCommand(writeVcomRegister)
	ctrl.sendData([]byte{lut[158]})
}

func setWindow(ctrl controller, xStart, yStart, xEnd, yEnd int) {
	ctrl.sendCommand(setRAMXAddressStartEndPosition)
	ctrl.sendData([]byte{byte((xStart >> 3) & 0xFF), byte((xEnd >> 3) & 0xFF)})

	ctrl.sendCommand(setRAMYAddressStartEndPosition)
	ctrl.sendData([]byte{
		byte(yStart & 0xFF), byte((yStart >> 8) & 0xFF),
		byte(yEnd & 0xFF), byte((yEnd >> 8) & 0xFF),
	})
}

func setCursor(ctrl controller, x, y int) {
	ctrl.sendCommand(setRAMXAddressCounter)
	// x point must be the multiple of 8 or the last 3 bits will be ignored
	ctrl.sendData([]byte{byte(x & 0xFF)})

	ctrl.sendCommand(setRAMYAddressCounter)
	ctrl.sendData([]byte{byte(y & 0xFF), byte((y >> 8) & 0xFF)})
}

// writeFrame streams a landscape frame into controller RAM. The controller
// is addressed column by column, starting with the last landscape byte row.
func writeFrame(ctrl controller, cmd byte, frame *image1bit.VerticalLSB) {
	ctrl.sendCommand(cmd)

	r := frame.Bounds()

	for row := r.Dy()/8 - 1; row >= 0; row-- {
		column := make([]byte, r.Dx())
		for x := range column {
			column[x] = packColumn(frame, r.Min.Add(image.Pt(x, row*8)))
		}
		ctrl.sendData(column)
	}
}

// packColumn returns the eight vertical pixels starting at pt, LSB on top.
func packColumn(frame *image1bit.VerticalLSB, pt image.Point) byte {
	var b byte
	for bit := 0; bit < 8; bit++ {
		if frame.BitAt(pt.X, pt.Y+bit) {
			b |= 1 << bit
		}
	}
	return b
}

func clear(ctrl controller, color byte, opts *Opts) {
	ctrl.sendCommand(writeRAMBW)
	ctrl.sendData(bytes.Repeat([]byte{color}, memWidth(opts)/8*opts.Height))

	turnOnDisplay(ctrl, Full)
}

func enterDeepSleep(ctrl controller) {
	// Turn off DC/DC converter, clock, output load and MCU. RAM content is
	// retained.
	ctrl.sendCommand(deepSleepMode)
	ctrl.sendData([]byte{0x01})
}

// memWidth returns the controller source width rounded up to whole bytes.
func memWidth(opts *Opts) int {
	return (opts.Width + 7) / 8 * 8
}
