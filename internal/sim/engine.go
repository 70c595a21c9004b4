// Simulation engine: three independent periodic loops mutating entity state
// through the catalog and fanning every change into the update log.
package sim

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"fusionops-sim/internal/catalog"
	"fusionops-sim/internal/logging"
	"fusionops-sim/internal/metrics"
	"fusionops-sim/internal/store"
)

// Rates are per-loop intervals in seconds. They act as fallbacks; the live
// values are re-read from the store before every sleep so admin scenario
// changes take effect within one pending interval.
type Rates struct {
	EventSec int
	AssetSec int
	AlertSec int
}

// DefaultRates match the "normal" scenario preset.
var DefaultRates = Rates{EventSec: 6, AssetSec: 2, AlertSec: 3}

// Engine runs the asset motion, event generation, and alert correlation
// loops against a shared catalog.
type Engine struct {
	cat       *catalog.Catalog
	fleetSize int
	defaults  Rates

	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// NewEngine creates an engine over the catalog. fleetSize is the bootstrap
// fleet size; seed feeds the engine's random source.
func NewEngine(cat *catalog.Catalog, fleetSize int, defaults Rates, seed int64) *Engine {
	if fleetSize <= 0 {
		fleetSize = 60
	}
	if defaults.EventSec <= 0 {
		defaults.EventSec = DefaultRates.EventSec
	}
	if defaults.AssetSec <= 0 {
		defaults.AssetSec = DefaultRates.AssetSec
	}
	if defaults.AlertSec <= 0 {
		defaults.AlertSec = DefaultRates.AlertSec
	}
	return &Engine{
		cat:       cat,
		fleetSize: fleetSize,
		defaults:  defaults,
		rnd:       rand.New(rand.NewSource(seed)),
		now:       time.Now,
	}
}

// Run starts the three loops and blocks until ctx is done. Each loop is
// isolated: a tick failure or panic is logged and counted, and the loop
// keeps its schedule.
func (e *Engine) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting simulation loops",
		"event_sec", e.defaults.EventSec,
		"asset_sec", e.defaults.AssetSec,
		"alert_sec", e.defaults.AlertSec)

	var wg sync.WaitGroup
	loops := []struct {
		name    string
		rateKey string
		def     int
		tick    func(context.Context) error
	}{
		{"assets", store.KeyRateAsset, e.defaults.AssetSec, e.MotionTick},
		{"events", store.KeyRateEvent, e.defaults.EventSec, e.EventTick},
		{"alerts", store.KeyRateAlert, e.defaults.AlertSec, e.AlertTick},
	}
	for _, l := range loops {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.runLoop(ctx, l.name, l.rateKey, l.def, l.tick)
		}()
	}
	wg.Wait()
	log.Info("simulation loops stopped")
}

func (e *Engine) runLoop(ctx context.Context, name, rateKey string, def int, tick func(context.Context) error) {
	for {
		e.safeTick(ctx, name, tick)
		select {
		case <-ctx.Done():
			return
		case <-time.After(e.interval(ctx, rateKey, def)):
		}
	}
}

// safeTick runs one tick, absorbing both errors and panics so sibling loops
// never stop.
func (e *Engine) safeTick(ctx context.Context, name string, tick func(context.Context) error) {
	log := logging.FromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			metrics.TickErrors.WithLabelValues(name).Inc()
			log.Error("tick panicked", "loop", name, "panic", r)
		}
	}()
	if err := tick(ctx); err != nil {
		metrics.TickErrors.WithLabelValues(name).Inc()
		log.Error("tick failed", "loop", name, "err", err)
	}
}

// interval reads the live rate for a loop from the store, falling back to
// the configured default when missing or invalid.
func (e *Engine) interval(ctx context.Context, rateKey string, def int) time.Duration {
	sec := def
	if raw, ok, err := e.cat.Store().Get(ctx, rateKey); err == nil && ok {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 {
			sec = v
		}
	}
	return time.Duration(sec) * time.Second
}
