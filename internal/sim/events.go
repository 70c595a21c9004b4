package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"fusionops-sim/internal/geo"
	"fusionops-sim/internal/metrics"
	"fusionops-sim/internal/model"
	"fusionops-sim/internal/store"
)

const eventJitter = 0.25 // degrees around the source asset

// weighted is one entry of a discrete probability table.
type weighted struct {
	value  string
	weight float64
}

// Event type distributions keyed by asset type. Kept as data so the tables
// are testable and tunable without touching the selection logic.
var eventTypeTables = map[string][]weighted{
	"relay":   {{"comms", 0.5}, {"anomaly", 0.3}, {"movement", 0.2}},
	"vehicle": {{"movement", 0.55}, {"incident", 0.25}, {"anomaly", 0.20}},
	"drone":   {{"movement", 0.45}, {"anomaly", 0.35}, {"weather", 0.20}},
}

// defaultEventTypes covers sensors and unknown asset types, uniform.
var defaultEventTypes = []weighted{
	{"incident", 1}, {"movement", 1}, {"anomaly", 1}, {"weather", 1},
}

// offlineEventTypes overrides the per-type table when the source asset is
// offline; comms anomalies dominate.
var offlineEventTypes = []weighted{
	{"comms", 0.55}, {"anomaly", 0.30}, {"incident", 0.15},
}

func pickWeighted(r *rand.Rand, table []weighted) string {
	var total float64
	for _, w := range table {
		total += w.weight
	}
	x := r.Float64() * total
	for _, w := range table {
		x -= w.weight
		if x < 0 {
			return w.value
		}
	}
	return table[len(table)-1].value
}

// EventTick generates one event near a randomly chosen asset. Severity is a
// deterministic function of the asset's risk at generation time. An empty
// fleet is a no-op.
func (e *Engine) EventTick(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	count, err := e.cat.AssetCount(ctx)
	if err != nil {
		return fmt.Errorf("fleet count: %w", err)
	}
	if count == 0 {
		return nil
	}
	id, ok, err := e.cat.Store().LIndex(ctx, store.KeyAssets, e.rnd.Int63n(count))
	if err != nil {
		return fmt.Errorf("pick asset: %w", err)
	}
	if !ok {
		return nil
	}
	a, ok, err := e.cat.Asset(ctx, id)
	if err != nil {
		return fmt.Errorf("load asset %s: %w", id, err)
	}
	if !ok {
		return nil
	}

	risk := geo.RiskOf(a.Status)
	table, found := eventTypeTables[a.AssetType]
	if !found {
		table = defaultEventTypes
	}
	if a.Status == model.StatusOffline {
		table = offlineEventTypes
		risk = geo.Clamp(risk+0.10, 0, 1)
	}

	evt := model.Event{
		EventID:    model.NewID("evt"),
		CreatedAt:  e.now().UTC(),
		Lat:        a.Lat + (e.rnd.Float64()*2-1)*eventJitter,
		Lon:        a.Lon + (e.rnd.Float64()*2-1)*eventJitter,
		Type:       pickWeighted(e.rnd, table),
		Severity:   geo.SeverityOf(risk),
		Source:     "synthetic",
		Confidence: math.Round((0.60+e.rnd.Float64()*0.35)*100) / 100,
		Meta: map[string]any{
			"asset_id":   a.AssetID,
			"owner_team": a.OwnerTeam,
		},
	}
	if err := e.cat.SaveEvent(ctx, &evt); err != nil {
		return fmt.Errorf("save event: %w", err)
	}
	metrics.EventsTotal.WithLabelValues(evt.Severity).Inc()
	return e.cat.PushUpdate(ctx, model.Update{Type: model.UpdateEventCreated, Data: evt})
}
