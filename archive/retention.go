// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package archive

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RetentionOpts configures a RetentionCleaner.
type RetentionOpts struct {
	// Days of samples to keep.
	Days int
	// Period between two cleanups.
	Period time.Duration
}

// DefaultRetentionOpts keeps one year, checked daily.
var DefaultRetentionOpts = RetentionOpts{
	Days:   365,
	Period: 24 * time.Hour,
}

// RetentionStats reports what a RetentionCleaner did so far.
type RetentionStats struct {
	TotalDeleted    int64
	Cleanups        int64
	LastCleanup     time.Time
	LastDeleteCount int64
}

// RetentionCleaner periodically deletes old samples.
type RetentionCleaner struct {
	store    *SQLiteStore
	logger   zerolog.Logger
	opts     RetentionOpts
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu    sync.Mutex
	stats RetentionStats
}

// NewRetentionCleaner starts a cleaner. It runs once right away.
func NewRetentionCleaner(store *SQLiteStore, opts RetentionOpts, logger zerolog.Logger) *RetentionCleaner {
	if opts.Period <= 0 {
		logger.Warn().
			Dur("period", opts.Period).
			Dur("default", DefaultRetentionOpts.Period).
			Msg("invalid retention period, using default")
		opts.Period = DefaultRetentionOpts.Period
	}
	c := &RetentionCleaner{
		store:  store,
		logger: logger,
		opts:   opts,
		stop:   make(chan struct{}),
	}

	c.wg.Add(1)
	go c.loop()

	logger.Info().
		Int("days", opts.Days).
		Dur("period", opts.Period).
		Msg("retention cleaner started")
	return c
}

func (c *RetentionCleaner) loop() {
	defer c.wg.Done()

	c.RunNow()

	ticker := time.NewTicker(c.opts.Period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.RunNow()
		case <-c.stop:
			return
		}
	}
}

// RunNow performs one cleanup.
func (c *RetentionCleaner) RunNow() {
	deleted, err := c.store.DeleteOlderThan(c.opts.Days)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Cleanups++
	c.stats.LastCleanup = time.Now()
	if err != nil {
		c.logger.Error().Err(err).Msg("retention cleanup failed")
		return
	}
	c.stats.TotalDeleted += deleted
	c.stats.LastDeleteCount = deleted
}

// Stop ends the cleaner and waits for a running cleanup.
func (c *RetentionCleaner) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
		c.wg.Wait()
	})
}

// Stats returns a snapshot of the cleaner's counters.
func (c *RetentionCleaner) Stats() RetentionStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
