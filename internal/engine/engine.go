package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dzautner/megacity/internal/weather"
)

// Engine drives the world forward in real time.
type Engine struct {
	World    *World
	Registry *Registry
	Running  bool

	// OnAutosave is invoked at each month boundary when set.
	OnAutosave func(w *World)
}

// New assembles an engine around a world with the full system set.
func New(w *World) *Engine {
	r := NewRegistry()
	registerSystems(r)
	r.Sort()
	r.logOrder()
	return &Engine{World: w, Registry: r}
}

// Step advances exactly one tick. Commands still drain while paused, so the
// player can build with the clock stopped, but simulation state does not
// advance.
func (e *Engine) Step() {
	w := e.World
	if !w.Clock.Advance() {
		w.drainCommands()
		return
	}

	e.Registry.RunAll(w)

	if w.Clock.IsMonthBoundary() && w.Clock.Ticks > 0 && e.OnAutosave != nil {
		e.OnAutosave(w)
	}
}

// Run starts the real-time loop. Blocks until Stop is called.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("simulation started", "tick", e.World.Clock.Ticks, "hz", e.World.Params.TickHz)

	for e.Running {
		start := time.Now()
		e.Step()

		target := time.Duration(float64(time.Second) / e.World.Params.TickHz)
		if elapsed := time.Since(start); elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation stopped", "tick", e.World.Clock.Ticks)
}

// Stop halts the loop after the current tick.
func (e *Engine) Stop() {
	e.Running = false
}

// StepN advances n ticks back to back, for tests and fast-forward.
func (e *Engine) StepN(n int) {
	for i := 0; i < n; i++ {
		e.Step()
	}
}

// SimTime renders the clock as a human-readable string.
func SimTime(c *weather.GameClock) string {
	return fmt.Sprintf("%s day %d, %02d:00 year %d",
		c.Season().Name(), c.DayOfMonth(), c.Hour(), c.Year()+1)
}
