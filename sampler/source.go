// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sampler

import (
	"errors"
	"fmt"

	"github.com/afroash/dht"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
)

// TemperatureSource returns one temperature reading in °C.
type TemperatureSource interface {
	Temperature() (float64, error)
}

// EnvSource reads any periph environmental sensor, e.g. a tmp102 or bmxx80.
type EnvSource struct {
	Sensor physic.SenseEnv
}

// Temperature implements TemperatureSource.
func (s *EnvSource) Temperature() (float64, error) {
	var e physic.Env
	if err := s.Sensor.Sense(&e); err != nil {
		return 0, fmt.Errorf("sampler: %s: %w", s.Sensor, err)
	}
	return e.Temperature.Celsius(), nil
}

// LinearTransfer converts a raw ADC count of a sensor whose output voltage
// changes linearly with temperature.
type LinearTransfer struct {
	// VRef is the ADC reference voltage and FullScale the count it maps to.
	VRef      float64
	FullScale float64
	// V0 is the sensor voltage at T0 °C, Slope its change in V/°C.
	V0    float64
	T0    float64
	Slope float64
}

// RP2040Sensor is the on-die sensor of the RP2040 read through its 16 bit
// scaled ADC: 0.706 V at 27 °C, -1.721 mV/°C.
var RP2040Sensor = LinearTransfer{
	VRef:      3.3,
	FullScale: 65535,
	V0:        0.706,
	T0:        27,
	Slope:     -0.001721,
}

// Celsius returns the temperature for a raw count.
func (l LinearTransfer) Celsius(raw int32) float64 {
	v := float64(raw) * l.VRef / l.FullScale
	return l.T0 + (v-l.V0)/l.Slope
}

// ADCSource reads a linear analog sensor.
type ADCSource struct {
	Pin      analog.PinADC
	Transfer LinearTransfer
}

// Temperature implements TemperatureSource.
func (s *ADCSource) Temperature() (float64, error) {
	smp, err := s.Pin.Read()
	if err != nil {
		return 0, fmt.Errorf("sampler: %s: %w", s.Pin, err)
	}
	return s.Transfer.Celsius(smp.Raw), nil
}

// DHTSource reads a DHT11 on a GPIO line.
type DHTSource struct {
	sensor     *dht.Sensor
	maxRetries int
}

// NewDHTSource opens the DHT11 connected to the given GPIO number.
func NewDHTSource(pin, maxRetries int) (*DHTSource, error) {
	sensor, err := dht.NewDHT11(pin)
	if err != nil {
		return nil, fmt.Errorf("sampler: DHT11 on GPIO%d: %w", pin, err)
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &DHTSource{sensor: sensor, maxRetries: maxRetries}, nil
}

// Temperature implements TemperatureSource.
func (s *DHTSource) Temperature() (float64, error) {
	reading, err := s.sensor.ReadRetry(s.maxRetries)
	if err != nil {
		return 0, fmt.Errorf("sampler: DHT11 after %d retries: %w", s.maxRetries, err)
	}
	if err := checkRange(reading.Temperature); err != nil {
		return 0, err
	}
	return reading.Temperature, nil
}

// Close releases the GPIO line.
func (s *DHTSource) Close() error {
	return s.sensor.Close()
}

// ErrOutOfRange is returned for readings no indoor sensor can produce.
var ErrOutOfRange = errors.New("sampler: temperature out of range")

func checkRange(t float64) error {
	const minTemp, maxTemp = -40.0, 85.0
	if t < minTemp || t > maxTemp {
		return fmt.Errorf("%w: %.1f°C", ErrOutOfRange, t)
	}
	return nil
}
