// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/GermanBionicSystems/wheeldash/archive"
	"github.com/GermanBionicSystems/wheeldash/canvas"
	"github.com/GermanBionicSystems/wheeldash/graph"
	"github.com/GermanBionicSystems/wheeldash/ringlog"
	"github.com/GermanBionicSystems/wheeldash/sampler"
)

// Panel is the e-paper display.
type Panel interface {
	Init() error
	DisplayFull(img image.Image) error
	DisplayBase(img image.Image) error
	DisplayPartial(img image.Image) error
	Sleep() error
}

// Archiver keeps samples beyond the history ring.
type Archiver interface {
	Insert(r archive.Record) error
}

// Deps are the collaborators of a Dashboard. Panel, Source, Archive and
// Edges are optional.
type Deps struct {
	Panel    Panel
	Counter  *sampler.Counter
	Smoother *sampler.Smoother
	Source   sampler.TemperatureSource
	Ring     *ringlog.Ring
	Store    *ringlog.Store
	Archive  Archiver
	Edges    *sampler.EdgeWatcher
	Logger   zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Opts configures a Dashboard.
type Opts struct {
	// Name is shown in the header when ShowClock is false.
	Name string
	// ShowClock puts date and time in the header and aligns the time axis to
	// the hour.
	ShowClock bool
	// FullEvery forces a full refresh after that many partial ones. 0 means
	// every refresh is full.
	FullEvery int

	MeasureInterval time.Duration
	LogInterval     time.Duration
	// SpeedWindow is how far back the maximum speed looks.
	SpeedWindow time.Duration
	// SpeedPath persists the maximum speed. Empty disables it.
	SpeedPath string

	// Bounds is the canvas size.
	Bounds image.Rectangle
	Graph  graph.Opts
}

// DefaultOpts is the 5 minute log on the 2.13" panel.
var DefaultOpts = Opts{
	Name:            "wheeldash",
	MeasureInterval: time.Minute,
	LogInterval:     5 * time.Minute,
	SpeedWindow:     18 * time.Hour,
	Bounds:          image.Rect(0, 0, 250, 128),
	Graph:           graph.Landscape213,
}

// Dashboard renders the history to the panel. Measure, Tick and Refresh must
// not be called concurrently; Run serializes them.
type Dashboard struct {
	deps Deps
	opts Opts
	log  zerolog.Logger

	canvas   *canvas.Bitmap
	based    bool
	partials int

	mu          sync.Mutex
	temperature float64
	hasTemp     bool
	maxSpeed    float64
}

// New returns a Dashboard. Counter, Smoother, Ring and Store are required.
func New(deps Deps, opts Opts) (*Dashboard, error) {
	if deps.Counter == nil || deps.Smoother == nil || deps.Ring == nil || deps.Store == nil {
		return nil, errors.New("dashboard: counter, smoother, ring and store are required")
	}
	if opts.MeasureInterval <= 0 || opts.LogInterval <= 0 {
		return nil, errors.New("dashboard: intervals must be positive")
	}
	if opts.FullEvery < 0 {
		return nil, errors.New("dashboard: FullEvery must not be negative")
	}
	if opts.Bounds.Empty() {
		opts.Bounds = DefaultOpts.Bounds
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Dashboard{
		deps:   deps,
		opts:   opts,
		log:    deps.Logger.With().Str("component", "dashboard").Logger(),
		canvas: canvas.New(opts.Bounds),
	}, nil
}

// Restore loads the history file and the persisted maximum speed. A corrupt
// history starts empty; the error is logged, not returned.
func (d *Dashboard) Restore() {
	now := d.deps.Now()
	updated, err := d.deps.Store.Load(d.deps.Ring, now)
	if err != nil {
		d.log.Warn().Err(err).Str("path", d.deps.Store.Path).Msg("history reset")
	} else {
		d.log.Info().
			Int("index", d.deps.Ring.Index()).
			Time("updated", updated).
			Msg("history restored")
	}

	if d.opts.SpeedPath == "" {
		return
	}
	v, err := sampler.LoadMaxSpeed(d.opts.SpeedPath)
	if err != nil {
		d.log.Warn().Err(err).Msg("max speed reset")
		return
	}
	d.deps.Counter.Seed(v, now)
	d.mu.Lock()
	d.maxSpeed = d.deps.Counter.MaxSpeed(now, d.opts.SpeedWindow)
	d.mu.Unlock()
}

// Measure takes one temperature reading. A failed read counts as missing.
func (d *Dashboard) Measure() {
	if d.deps.Source == nil {
		d.deps.Smoother.Add(0, false)
		return
	}
	t, err := d.deps.Source.Temperature()
	if err != nil {
		d.log.Warn().Err(err).Msg("temperature read failed")
		d.deps.Smoother.Add(0, false)
		return
	}
	d.deps.Smoother.Add(t, true)
}

// Tick logs one sample and redraws the panel.
func (d *Dashboard) Tick(ctx context.Context) error {
	now := d.deps.Now()

	temp, ok := d.deps.Smoother.Finalize()
	s := ringlog.Sample{Temperature: temp, HasTemperature: ok, Distance: d.deps.Counter.Swap()}
	agg := d.deps.Ring.Update(s)

	if err := d.deps.Store.Save(d.deps.Ring, now); err != nil {
		d.log.Error().Err(err).Msg("history save failed")
	}
	if d.deps.Archive != nil {
		r := archive.Record{At: now, Temperature: s.Temperature, HasTemperature: s.HasTemperature, Distance: s.Distance}
		if err := d.deps.Archive.Insert(r); err != nil {
			d.log.Error().Err(err).Msg("archive insert failed")
		}
	}

	speed := d.deps.Counter.MaxSpeed(now, d.opts.SpeedWindow)
	d.mu.Lock()
	d.temperature, d.hasTemp, d.maxSpeed = temp, ok, speed
	d.mu.Unlock()
	if d.opts.SpeedPath != "" {
		if err := sampler.SaveMaxSpeed(d.opts.SpeedPath, speed); err != nil {
			d.log.Error().Err(err).Msg("max speed save failed")
		}
	}

	d.log.Debug().
		Int("index", d.deps.Ring.Index()).
		Float64("distance", s.Distance).
		Bool("has_temperature", ok).
		Float64("temperature", temp).
		Float64("day", agg.Day).
		Msg("sample logged")

	return d.Refresh(ctx)
}

// Refresh redraws the panel from the current history without logging.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.Render(d.deps.Now())
	if d.deps.Panel == nil || ctx.Err() != nil {
		return ctx.Err()
	}
	return d.push()
}

// Render draws the header, the graph and the time axis into the canvas.
func (d *Dashboard) Render(now time.Time) image.Image {
	agg := d.deps.Ring.Aggregates()
	d.canvas.Fill(image1bit.On)

	line1, right, line2 := d.Header(agg, now)
	graph.DrawTexts(d.canvas, graph.HeaderTexts(line1, right, line2, d.opts.Graph))
	graph.Draw(d.canvas, graph.Layout(d.deps.Ring.Window(), d.opts.Graph))

	var clock time.Time
	if d.opts.ShowClock {
		clock = now
	}
	graph.DrawTimeAxis(d.canvas, graph.TimeAxis(d.opts.Graph, clock, d.opts.LogInterval))
	return d.canvas.Image()
}

// Frame returns the last rendered frame.
func (d *Dashboard) Frame() image.Image {
	return d.canvas.Image()
}

// Header returns the first header line, the temperature field and the
// distance line.
func (d *Dashboard) Header(agg ringlog.Aggregates, now time.Time) (line1, right, line2 string) {
	d.mu.Lock()
	temp, ok, speed := d.temperature, d.hasTemp, d.maxSpeed
	d.mu.Unlock()

	if d.opts.ShowClock {
		line1 = now.Format("2006-01-02 Mon 15:04:05")
	} else {
		line1 = fmt.Sprintf("%s max%.2fm/s", d.opts.Name, speed)
	}
	right = "--.-C"
	if ok {
		right = fmt.Sprintf("%.1fC", temp)
	}
	line2 = fmt.Sprintf("%.1fkm/week %dm/day %dm/12h",
		math.Round(agg.Week/100)/10, int(math.Round(agg.Day)), int(math.Round(agg.HalfDay)))
	return line1, right, line2
}

// push wakes the panel, refreshes it and puts it back to sleep. A failed
// refresh makes the next one full.
func (d *Dashboard) push() error {
	p := d.deps.Panel
	img := d.canvas.Image()

	err := p.Init()
	if err == nil {
		switch {
		case d.opts.FullEvery == 0:
			err = p.DisplayFull(img)
		case !d.based || d.partials >= d.opts.FullEvery:
			if err = p.DisplayBase(img); err == nil {
				d.based, d.partials = true, 0
			}
		default:
			if err = p.DisplayPartial(img); err == nil {
				d.partials++
			}
		}
	}
	if err != nil {
		d.based = false
		err = fmt.Errorf("dashboard: refresh: %w", err)
	}
	if serr := p.Sleep(); serr != nil {
		err = errors.Join(err, fmt.Errorf("dashboard: sleep: %w", serr))
	}
	return err
}

// Run draws the restored history, then measures and logs on their intervals
// until ctx is done.
func (d *Dashboard) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	if d.deps.Edges != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = d.deps.Edges.Run(ctx)
		}()
	}

	d.Measure()
	if err := d.Refresh(ctx); err != nil {
		d.log.Error().Err(err).Msg("initial refresh failed")
	}

	measure := time.NewTicker(d.opts.MeasureInterval)
	defer measure.Stop()
	logTick := time.NewTicker(d.opts.LogInterval)
	defer logTick.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("dashboard stopped")
			return nil
		case <-measure.C:
			d.Measure()
		case <-logTick.C:
			if err := d.Tick(ctx); err != nil && ctx.Err() == nil {
				d.log.Error().Err(err).Msg("panel refresh failed")
			}
		}
	}
}
