// Admin controller: cooldown and lock guarded scenario switching and state
// reset. The lock and cooldown live in the shared store so any number of
// stateless server instances share the same discipline.
package admin

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"strconv"
	"time"

	"fusionops-sim/internal/catalog"
	"fusionops-sim/internal/model"
	"fusionops-sim/internal/sim"
	"fusionops-sim/internal/store"
)

// Scenario presets: per-loop interval seconds selectable by name.
var Presets = map[string]sim.Rates{
	"normal":   {EventSec: 6, AssetSec: 2, AlertSec: 3},
	"stress":   {EventSec: 2, AssetSec: 1, AlertSec: 1},
	"incident": {EventSec: 3, AssetSec: 1, AlertSec: 1},
}

// Default guard durations.
const (
	DefaultCooldown = 5 * time.Minute
	DefaultLockTTL  = 10 * time.Second
)

// ErrBusy means another admin operation holds the lock right now.
var ErrBusy = errors.New("admin operation busy, try again")

// ErrUnknownScenario rejects names outside the preset set, before any state
// is touched.
var ErrUnknownScenario = errors.New("unknown scenario")

// CooldownError reports how long the caller has to wait.
type CooldownError struct {
	Remaining int // seconds
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active, try again in %ds", e.Remaining)
}

// Bootstrapper re-populates the fleet after a reset.
type Bootstrapper interface {
	Bootstrap(ctx context.Context) error
}

// Controller guards the privileged operations.
type Controller struct {
	cat      *catalog.Catalog
	boot     Bootstrapper
	cooldown time.Duration
	lockTTL  time.Duration
	now      func() time.Time
}

// NewController wires a controller over the catalog. Zero durations fall
// back to the defaults.
func NewController(cat *catalog.Catalog, boot Bootstrapper, cooldown, lockTTL time.Duration) *Controller {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &Controller{cat: cat, boot: boot, cooldown: cooldown, lockTTL: lockTTL, now: time.Now}
}

// State is the side-effect-free admin status view.
type State struct {
	Scenario          string    `json:"scenario"`
	Rates             RatesView `json:"rates"`
	CooldownRemaining int       `json:"cooldown_remaining"`
}

// RatesView reports the effective per-loop intervals in seconds.
type RatesView struct {
	Event int `json:"event"`
	Asset int `json:"asset"`
	Alert int `json:"alert"`
}

// State reports the current scenario, the effective rates (override if
// present, else the scenario's preset), and remaining cooldown seconds.
func (c *Controller) State(ctx context.Context) (State, error) {
	scenario := "normal"
	if v, ok, err := c.cat.Store().Get(ctx, store.KeyScenario); err != nil {
		return State{}, err
	} else if ok {
		if _, known := Presets[v]; known {
			scenario = v
		}
	}
	preset := Presets[scenario]
	rem, err := c.cooldownRemaining(ctx)
	if err != nil {
		return State{}, err
	}
	return State{
		Scenario: scenario,
		Rates: RatesView{
			Event: c.rate(ctx, store.KeyRateEvent, preset.EventSec),
			Asset: c.rate(ctx, store.KeyRateAsset, preset.AssetSec),
			Alert: c.rate(ctx, store.KeyRateAlert, preset.AlertSec),
		},
		CooldownRemaining: rem,
	}, nil
}

func (c *Controller) rate(ctx context.Context, key string, fallback int) int {
	if raw, ok, err := c.cat.Store().Get(ctx, key); err == nil && ok {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 {
			return v
		}
	}
	return fallback
}

func (c *Controller) cooldownRemaining(ctx context.Context) (int, error) {
	raw, ok, err := c.cat.Store().Get(ctx, store.KeyCooldownUntil)
	if err != nil || !ok {
		return 0, err
	}
	until, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	rem := until - c.now().Unix()
	if rem < 0 {
		rem = 0
	}
	return int(rem), nil
}

// guard runs the lock and cooldown phases. On a cooldown rejection the lock
// is left to expire on its own TTL; no explicit unlock exists.
func (c *Controller) guard(ctx context.Context) error {
	acquired, err := c.cat.Store().SetNX(ctx, store.KeyAdminLock, "1", c.lockTTL)
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		return ErrBusy
	}
	rem, err := c.cooldownRemaining(ctx)
	if err != nil {
		return err
	}
	if rem > 0 {
		return &CooldownError{Remaining: rem}
	}
	return nil
}

func (c *Controller) setCooldown(ctx context.Context) error {
	until := c.now().Add(c.cooldown).Unix()
	return c.cat.Store().Set(ctx, store.KeyCooldownUntil, strconv.FormatInt(until, 10), 0)
}

// announce broadcasts an admin_notice update so all stream clients see what
// happened and who triggered it.
func (c *Controller) announce(ctx context.Context, kind, actor string, data any) error {
	return c.cat.PushUpdate(ctx, model.Update{
		Type: model.UpdateAdminNotice,
		Data: map[string]any{
			"kind":         kind,
			"actor":        actor,
			"ts":           c.now().Unix(),
			"cooldown_sec": int(c.cooldown.Seconds()),
			"data":         data,
		},
	})
}

// ActorFingerprint derives a short best-effort caller id from address and
// user agent. Not a security control.
func ActorFingerprint(addr, userAgent string) string {
	sum := sha1.Sum([]byte(addr + "|" + userAgent))
	return fmt.Sprintf("%x", sum)[:6]
}
