// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// wheeldash draws the distance and temperature history of an exercise wheel
// on a Waveshare 2.13" e-paper HAT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/hdc302x"
	"periph.io/x/devices/v3/tmp102"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/wheeldash/archive"
	"github.com/GermanBionicSystems/wheeldash/config"
	"github.com/GermanBionicSystems/wheeldash/dashboard"
	"github.com/GermanBionicSystems/wheeldash/preview"
	"github.com/GermanBionicSystems/wheeldash/ringlog"
	"github.com/GermanBionicSystems/wheeldash/sampler"
	"github.com/GermanBionicSystems/wheeldash/waveshare2in13v3"
)

const version = "v0.1.0"

func main() {
	configPath := flag.String("config", "", "path to config file, defaults only when empty")
	previewPath := flag.String("preview", "", "render the restored history to this PNG and exit")
	term := flag.Bool("term", false, "draw to the terminal instead of the panel")
	reportDays := flag.Int("report", 0, "print the archived daily totals of this many days and exit")
	exportPath := flag.String("export", "", "write the archive of the retention period to this CSV file and exit")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath == "" {
		cfg, err = config.Default()
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "wheeldash: %v\n", err)
		os.Exit(2)
	}

	logger := newLogger(cfg.Logging)
	logger.Info().Str("version", version).Str("config", cfg.String()).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *reportDays > 0 || *exportPath != "" {
		if err := query(cfg, logger, *reportDays, *exportPath); err != nil {
			logger.Fatal().Err(err).Msg("archive query failed")
		}
		return
	}

	if err := run(ctx, cfg, logger, *previewPath, *term); err != nil {
		logger.Fatal().Err(err).Msg("wheeldash failed")
	}
}

func newLogger(c config.LoggingConfig) zerolog.Logger {
	var logger zerolog.Logger
	if c.Format == "json" {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return logger.With().Timestamp().Logger().Level(level)
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger, previewPath string, term bool) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	ring, err := ringlog.New(cfg.RingOpts())
	if err != nil {
		return err
	}
	counter, err := sampler.NewCounter(cfg.CounterOpts())
	if err != nil {
		return err
	}
	deps := dashboard.Deps{
		Counter:  counter,
		Smoother: &sampler.Smoother{},
		Ring:     ring,
		Store:    &ringlog.Store{Path: cfg.HistoryPath(), Interval: cfg.Logger.Interval},
		Logger:   logger,
	}
	opts := dashboard.DefaultOpts
	opts.Name = cfg.Name
	opts.ShowClock = cfg.Display.ShowClock
	opts.FullEvery = cfg.Display.FullEvery
	opts.MeasureInterval = cfg.Temperature.Interval
	opts.LogInterval = cfg.Logger.Interval
	opts.SpeedWindow = cfg.Wheel.SpeedWindow
	opts.SpeedPath = cfg.SpeedPath()

	if previewPath != "" {
		d, err := dashboard.New(deps, opts)
		if err != nil {
			return err
		}
		d.Restore()
		img := d.Render(time.Now())
		if err := preview.SavePNG(previewPath, img, &preview.Opts{Scale: 3, Border: 4, Caption: cfg.Name}); err != nil {
			return err
		}
		logger.Info().Str("path", previewPath).Msg("preview written")
		return nil
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize host: %w", err)
	}

	if term {
		t := preview.NewTerminal(&preview.TerminalOpts{Width: opts.Bounds.Dx(), Height: opts.Bounds.Dy()})
		defer t.Halt()
		deps.Panel = terminalPanel{t}
	} else {
		port, err := spireg.Open(cfg.Display.SPIPort)
		if err != nil {
			return fmt.Errorf("failed to open SPI port: %w", err)
		}
		defer port.Close()
		popts := waveshare2in13v3.EPD2in13v3
		popts.BusyTimeout = cfg.Display.BusyTimeout
		dev, err := waveshare2in13v3.NewHat(port, &popts)
		if err != nil {
			return fmt.Errorf("failed to open panel: %w", err)
		}
		deps.Panel = dev
	}

	pin := gpioreg.ByName(cfg.Wheel.Pin)
	if pin == nil {
		return fmt.Errorf("unknown wheel pin %q", cfg.Wheel.Pin)
	}
	if deps.Edges, err = sampler.NewEdgeWatcher(pin, counter, nil); err != nil {
		return err
	}

	source, closeSource, err := openSource(cfg.Temperature)
	if err != nil {
		// The dashboard still shows distance without a temperature sensor.
		logger.Error().Err(err).Str("source", cfg.Temperature.Source).Msg("temperature sensor unavailable")
	} else if source != nil {
		defer closeSource()
		deps.Source = source
	}

	var store *archive.SQLiteStore
	if cfg.Archive.Enabled {
		store, err = archive.NewSQLiteStore(cfg.ArchivePath(), logger)
		if err != nil {
			return err
		}
		defer store.Close()
		cleaner := archive.NewRetentionCleaner(store, archive.RetentionOpts{
			Days:   cfg.Archive.RetentionDays,
			Period: cfg.Archive.CleanupPeriod,
		}, logger)
		defer cleaner.Stop()
		deps.Archive = store
	}

	d, err := dashboard.New(deps, opts)
	if err != nil {
		return err
	}
	d.Restore()
	if store != nil {
		if n, err := store.Seed(ring.Samples(), time.Now(), cfg.Logger.Interval); err != nil {
			logger.Error().Err(err).Msg("failed to seed archive")
		} else if n > 0 {
			logger.Info().Int("records", n).Msg("archive seeded from history")
		}
	}
	return d.Run(ctx)
}

// query answers -report and -export from the archive.
func query(cfg *config.Config, logger zerolog.Logger, days int, exportPath string) (err error) {
	store, err := archive.NewSQLiteStore(cfg.ArchivePath(), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	now := time.Now()
	if days > 0 {
		if err := store.WriteReport(os.Stdout, now, days); err != nil {
			return err
		}
	}
	if exportPath == "" {
		return nil
	}
	f, err := os.Create(exportPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return store.WriteCSV(f, now.AddDate(0, 0, -cfg.Archive.RetentionDays), now)
}

// openSource returns the configured temperature sensor and its release
// function.
func openSource(c config.TemperatureConfig) (sampler.TemperatureSource, func() error, error) {
	switch c.Source {
	case config.SourceNone:
		return nil, nil, nil
	case config.SourceTMP102, config.SourceHDC302x:
		bus, err := i2creg.Open(c.I2CBus)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open I²C bus: %w", err)
		}
		var dev physic.SenseEnv
		if c.Source == config.SourceTMP102 {
			dev, err = tmp102.NewI2C(bus, c.I2CAddr, nil)
		} else {
			dev, err = hdc302x.NewI2C(bus, c.I2CAddr, hdc302x.RateHalfHertz)
		}
		if err != nil {
			bus.Close()
			return nil, nil, fmt.Errorf("failed to open %s: %w", c.Source, err)
		}
		return &sampler.EnvSource{Sensor: dev}, func() error {
			return errors.Join(dev.Halt(), bus.Close())
		}, nil
	case config.SourceDHT11:
		s, err := sampler.NewDHTSource(c.DHTPin, 3)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown temperature source %q", c.Source)
}

// terminalPanel shows frames on the console in place of the panel.
type terminalPanel struct {
	t *preview.Terminal
}

func (p terminalPanel) Init() error  { return nil }
func (p terminalPanel) Sleep() error { return nil }

func (p terminalPanel) DisplayFull(img image.Image) error {
	return p.t.Draw(p.t.Bounds(), img, image.Point{})
}

func (p terminalPanel) DisplayBase(img image.Image) error {
	return p.DisplayFull(img)
}

func (p terminalPanel) DisplayPartial(img image.Image) error {
	return p.DisplayFull(img)
}
