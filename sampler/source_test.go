// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sampler

import (
	"errors"
	"math"
	"testing"
	"time"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

type fakeEnv struct {
	temp physic.Temperature
	err  error
}

func (f *fakeEnv) String() string { return "fakeEnv" }
func (f *fakeEnv) Halt() error    { return nil }

func (f *fakeEnv) Sense(e *physic.Env) error {
	if f.err != nil {
		return f.err
	}
	e.Temperature = f.temp
	return nil
}

func (f *fakeEnv) SenseContinuous(time.Duration) (<-chan physic.Env, error) {
	return nil, errors.New("not supported")
}

func (f *fakeEnv) Precision(e *physic.Env) {}

var _ physic.SenseEnv = &fakeEnv{}

type fakeADC struct {
	raw int32
	err error
}

func (f *fakeADC) String() string   { return "ADC4" }
func (f *fakeADC) Halt() error      { return nil }
func (f *fakeADC) Name() string     { return "ADC4" }
func (f *fakeADC) Number() int      { return 4 }
func (f *fakeADC) Function() string { return "ADC" }
func (f *fakeADC) Range() (analog.Sample, analog.Sample) {
	return analog.Sample{}, analog.Sample{Raw: 65535}
}

func (f *fakeADC) Read() (analog.Sample, error) {
	return analog.Sample{Raw: f.raw}, f.err
}

var _ analog.PinADC = &fakeADC{}
var _ pin.Pin = &fakeADC{}

func TestEnvSource(t *testing.T) {
	s := &EnvSource{Sensor: &fakeEnv{temp: 2315*10*physic.MilliKelvin + physic.ZeroCelsius}}
	got, err := s.Temperature()
	if err != nil {
		t.Fatalf("Temperature() failed: %v", err)
	}
	if math.Abs(got-23.15) > 1e-9 {
		t.Errorf("Temperature() = %v, want 23.15", got)
	}

	boom := errors.New("i2c: nack")
	s = &EnvSource{Sensor: &fakeEnv{err: boom}}
	if _, err := s.Temperature(); !errors.Is(err, boom) {
		t.Errorf("Temperature() error = %v, want %v", err, boom)
	}
}

func TestLinearTransfer(t *testing.T) {
	// 0.706V is the 27°C reference point.
	raw := int32(math.Round(0.706 / 3.3 * 65535))
	if got := RP2040Sensor.Celsius(raw); math.Abs(got-27) > 0.1 {
		t.Errorf("Celsius(%d) = %v, want about 27", raw, got)
	}

	// Lower voltage means warmer.
	if RP2040Sensor.Celsius(raw-100) <= RP2040Sensor.Celsius(raw) {
		t.Error("Celsius() does not fall with rising voltage")
	}

	// 27 - (raw·3.3/65535 - 0.706)/0.001721
	want := 27 - (14000*3.3/65535-0.706)/0.001721
	if got := RP2040Sensor.Celsius(14000); math.Abs(got-want) > 1e-9 {
		t.Errorf("Celsius(14000) = %v, want %v", got, want)
	}
}

func TestADCSource(t *testing.T) {
	s := &ADCSource{Pin: &fakeADC{raw: 14000}, Transfer: RP2040Sensor}
	got, err := s.Temperature()
	if err != nil {
		t.Fatalf("Temperature() failed: %v", err)
	}
	if want := RP2040Sensor.Celsius(14000); got != want {
		t.Errorf("Temperature() = %v, want %v", got, want)
	}

	boom := errors.New("adc: busy")
	s = &ADCSource{Pin: &fakeADC{err: boom}, Transfer: RP2040Sensor}
	if _, err := s.Temperature(); !errors.Is(err, boom) {
		t.Errorf("Temperature() error = %v, want %v", err, boom)
	}
}

func TestCheckRange(t *testing.T) {
	for _, tc := range []struct {
		temp    float64
		wantErr bool
	}{
		{22, false},
		{-10, false},
		{-41, true},
		{120, true},
	} {
		if err := checkRange(tc.temp); (err != nil) != tc.wantErr {
			t.Errorf("checkRange(%v) error = %v, wantErr %t", tc.temp, err, tc.wantErr)
		}
		if err := checkRange(tc.temp); err != nil && !errors.Is(err, ErrOutOfRange) {
			t.Errorf("checkRange(%v) error = %v, want %v", tc.temp, err, ErrOutOfRange)
		}
	}
}
