package sim

import (
	"context"
	"fmt"

	"fusionops-sim/internal/geo"
	"fusionops-sim/internal/model"
)

// Per-tick motion tuning.
const (
	stepFast    = 0.03 // vehicles and drones
	stepSlow    = 0.02
	gpsJitter   = 0.004
	degradeProb = 0.015
	offlineProb = 0.020
	recoverProb = 0.03
)

// MotionTick advances a random subset of the fleet: route following with
// regeneration at route end, GPS jitter, rare status transitions. Each
// updated asset is persisted and broadcast as an asset_updated envelope.
// No assets is a no-op, not an error.
func (e *Engine) MotionTick(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids, err := e.cat.AssetIDs(ctx)
	if err != nil {
		return fmt.Errorf("fleet index: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	k := min(len(ids), 2+e.rnd.Intn(4)) // 2-5 assets per tick
	for _, i := range e.rnd.Perm(len(ids))[:k] {
		a, ok, err := e.cat.Asset(ctx, ids[i])
		if err != nil {
			return fmt.Errorf("load asset %s: %w", ids[i], err)
		}
		if !ok {
			continue
		}
		e.moveAsset(&a)
		if err := e.cat.SaveAsset(ctx, &a); err != nil {
			return fmt.Errorf("save asset %s: %w", a.AssetID, err)
		}
		if err := e.cat.PushUpdate(ctx, model.Update{Type: model.UpdateAssetUpdated, Data: a}); err != nil {
			return err
		}
	}
	return nil
}

// moveAsset applies one motion step to a single asset. Caller holds e.mu.
func (e *Engine) moveAsset(a *model.Asset) {
	// Route exhausted or missing: start over from the current position.
	if a.RouteIdx >= len(a.Route) {
		a.Route = geo.BuildRoute(e.rnd, a.Lat, a.Lon, 3+e.rnd.Intn(4))
		a.RouteIdx = 0
	}
	target := a.Route[a.RouteIdx]

	step := stepSlow
	if a.AssetType == "drone" || a.AssetType == "vehicle" {
		step = stepFast
	}
	lat, lon, arrived := geo.StepToward(a.Lat, a.Lon, target[0], target[1], step)

	// GPS drift jitter, then clamp back into the operating region.
	lat += (e.rnd.Float64()*2 - 1) * gpsJitter
	lon += (e.rnd.Float64()*2 - 1) * gpsJitter
	a.Lat = geo.ClampLat(lat)
	a.Lon = geo.ClampLon(lon)

	if arrived {
		a.RouteIdx++
	}

	// One status branch per tick: rare degradation, rarer dropout, slow
	// recovery otherwise.
	roll := e.rnd.Float64()
	switch {
	case roll < degradeProb:
		a.Status = model.StatusDegraded
	case roll < offlineProb:
		a.Status = model.StatusOffline
	default:
		if (a.Status == model.StatusDegraded || a.Status == model.StatusOffline) && e.rnd.Float64() < recoverProb {
			a.Status = model.StatusActive
		}
	}

	a.LastUpdate = e.now().UTC()
}
