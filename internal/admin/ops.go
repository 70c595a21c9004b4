package admin

import (
	"context"
	"fmt"
	"strconv"

	"fusionops-sim/internal/store"
)

// ScenarioResult reports a successful scenario change.
type ScenarioResult struct {
	OK          bool      `json:"ok"`
	Scenario    string    `json:"scenario"`
	Rates       RatesView `json:"rates"`
	CooldownSec int       `json:"cooldown_sec"`
}

// SetScenario applies a named preset's rates as overrides, persists the
// scenario name, arms the cooldown, and broadcasts an admin notice. The
// name is validated before the lock phase so bad input never consumes the
// lock.
func (c *Controller) SetScenario(ctx context.Context, name, actor string) (ScenarioResult, error) {
	preset, known := Presets[name]
	if !known {
		return ScenarioResult{}, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	if err := c.guard(ctx); err != nil {
		return ScenarioResult{}, err
	}

	st := c.cat.Store()
	if err := st.Set(ctx, store.KeyScenario, name, 0); err != nil {
		return ScenarioResult{}, fmt.Errorf("persist scenario: %w", err)
	}
	for key, sec := range map[string]int{
		store.KeyRateEvent: preset.EventSec,
		store.KeyRateAsset: preset.AssetSec,
		store.KeyRateAlert: preset.AlertSec,
	} {
		if err := st.Set(ctx, key, strconv.Itoa(sec), 0); err != nil {
			return ScenarioResult{}, fmt.Errorf("persist rate %s: %w", key, err)
		}
	}
	if err := c.setCooldown(ctx); err != nil {
		return ScenarioResult{}, fmt.Errorf("arm cooldown: %w", err)
	}

	rates := RatesView{Event: preset.EventSec, Asset: preset.AssetSec, Alert: preset.AlertSec}
	if err := c.announce(ctx, "scenario_changed", actor, map[string]any{
		"scenario": name,
		"rates":    rates,
	}); err != nil {
		return ScenarioResult{}, err
	}
	return ScenarioResult{
		OK:          true,
		Scenario:    name,
		Rates:       rates,
		CooldownSec: int(c.cooldown.Seconds()),
	}, nil
}

// ResetResult reports a completed reset.
type ResetResult struct {
	OK          bool           `json:"ok"`
	Deleted     map[string]int `json:"deleted"`
	CooldownSec int            `json:"cooldown_sec"`
}

// Reset deletes every entity payload plus all indices and the update log,
// then re-runs bootstrap. Readers may observe the narrow empty window in
// between; that transient is accepted. The cooldown is armed and a reset
// notice broadcast afterwards.
func (c *Controller) Reset(ctx context.Context, actor string) (ResetResult, error) {
	if err := c.guard(ctx); err != nil {
		return ResetResult{}, err
	}

	st := c.cat.Store()
	eventIDs, err := st.LRange(ctx, store.KeyEvents, 0, -1)
	if err != nil {
		return ResetResult{}, fmt.Errorf("list events: %w", err)
	}
	assetIDs, err := st.LRange(ctx, store.KeyAssets, 0, -1)
	if err != nil {
		return ResetResult{}, fmt.Errorf("list assets: %w", err)
	}
	alertIDs, err := st.LRange(ctx, store.KeyAlerts, 0, -1)
	if err != nil {
		return ResetResult{}, fmt.Errorf("list alerts: %w", err)
	}

	var keys []string
	for _, id := range eventIDs {
		keys = append(keys, store.KeyEvent(id))
	}
	for _, id := range assetIDs {
		keys = append(keys, store.KeyAsset(id))
	}
	for _, id := range alertIDs {
		keys = append(keys, store.KeyAlert(id))
	}
	keys = append(keys, store.KeyEvents, store.KeyAssets, store.KeyAlerts, store.KeyUpdates)
	if err := st.Delete(ctx, keys...); err != nil {
		return ResetResult{}, fmt.Errorf("delete state: %w", err)
	}

	if err := c.boot.Bootstrap(ctx); err != nil {
		return ResetResult{}, fmt.Errorf("re-bootstrap: %w", err)
	}
	if err := c.setCooldown(ctx); err != nil {
		return ResetResult{}, fmt.Errorf("arm cooldown: %w", err)
	}
	if err := c.announce(ctx, "simulation_reset", actor, map[string]any{
		"rebootstrapped_assets": true,
	}); err != nil {
		return ResetResult{}, err
	}
	return ResetResult{
		OK: true,
		Deleted: map[string]int{
			"events": len(eventIDs),
			"assets": len(assetIDs),
			"alerts": len(alertIDs),
		},
		CooldownSec: int(c.cooldown.Seconds()),
	}, nil
}
