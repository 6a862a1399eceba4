// Package engine drives the battlefield simulation: a fixed-interval
// tick loop and the per-tick wiring of grid streaming, agent movement,
// and path computation.
package engine

import (
	"log/slog"
	"time"
)

// Engine advances the simulation at a fixed tick rate.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval
	Running  bool

	// Callbacks, populated during setup.
	OnTick   func(tick uint64) // Every tick
	OnReport func(tick uint64) // Every ReportEvery ticks

	// ReportEvery is the tick period of OnReport. Zero disables it.
	ReportEvery uint64
}

// NewEngine creates an engine with default settings.
func NewEngine(interval time.Duration) *Engine {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &Engine{
		Speed:    1.0,
		Interval: interval,
	}
}

// Run starts the tick loop. Blocks until Stop is called.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("engine started", "tick", e.Tick, "interval", e.Interval, "speed", e.Speed)

	for e.Running {
		if e.Speed <= 0 {
			// Paused. Sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.Step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("engine stopped", "tick", e.Tick)
}

// Stop halts the tick loop after the current tick completes.
func (e *Engine) Stop() {
	e.Running = false
}

// Step advances the simulation by one tick. Exposed so tests and
// headless drivers can tick without the timing loop.
func (e *Engine) Step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
	if e.ReportEvery > 0 && e.Tick%e.ReportEvery == 0 && e.OnReport != nil {
		e.OnReport(e.Tick)
	}
}
