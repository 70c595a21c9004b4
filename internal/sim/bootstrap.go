package sim

import (
	"context"
	"fmt"
	"math"

	"fusionops-sim/internal/geo"
	"fusionops-sim/internal/model"
)

// Bootstrap populates the fleet with routed assets. Safe to call repeatedly;
// it only runs when the fleet index is empty, so events and alerts always
// have assets to reference.
func (e *Engine) Bootstrap(ctx context.Context) error {
	count, err := e.cat.AssetCount(ctx)
	if err != nil {
		return fmt.Errorf("fleet count: %w", err)
	}
	if count > 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for i := 0; i < e.fleetSize; i++ {
		lat := geo.LatMin + e.rnd.Float64()*(geo.LatMax-geo.LatMin)
		lon := geo.LonMin + e.rnd.Float64()*(geo.LonMax-geo.LonMin)
		a := model.Asset{
			AssetID:    model.NewID("ast"),
			Name:       fmt.Sprintf("Asset-%03d", i),
			AssetType:  model.AssetTypes[e.rnd.Intn(len(model.AssetTypes))],
			Lat:        lat,
			Lon:        lon,
			Status:     model.StatusActive,
			LastUpdate: e.now().UTC(),
			OwnerTeam:  model.OwnerTeams[e.rnd.Intn(len(model.OwnerTeams))],
			Route:      geo.BuildRoute(e.rnd, lat, lon, 3+e.rnd.Intn(4)),
			RouteIdx:   0,
			SpeedKmh:   math.Round((40+e.rnd.Float64()*50)*10) / 10,
		}
		if err := e.cat.SaveAsset(ctx, &a); err != nil {
			return fmt.Errorf("save asset %s: %w", a.AssetID, err)
		}
		if err := e.cat.RegisterAsset(ctx, a.AssetID); err != nil {
			return fmt.Errorf("register asset %s: %w", a.AssetID, err)
		}
	}
	return e.cat.PushUpdate(ctx, model.Update{
		Type: model.UpdateBootstrap,
		Data: map[string]any{"assets": e.fleetSize},
	})
}
