package catalog

import (
	"context"

	"fusionops-sim/internal/model"
	"fusionops-sim/internal/store"
)

// ListEvents returns up to limit recent events, newest first. Ids whose
// payload is gone resolve to nothing and are skipped.
func (c *Catalog) ListEvents(ctx context.Context, limit int) ([]model.Event, error) {
	ids, err := c.store.LRange(ctx, store.KeyEvents, -int64(limit), -1)
	if err != nil {
		return nil, err
	}
	out := make([]model.Event, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		e, ok, err := c.Event(ctx, ids[i])
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListAssets returns up to limit assets in fleet insertion order.
func (c *Catalog) ListAssets(ctx context.Context, limit int) ([]model.Asset, error) {
	ids, err := c.store.LRange(ctx, store.KeyAssets, 0, int64(limit)-1)
	if err != nil {
		return nil, err
	}
	out := make([]model.Asset, 0, len(ids))
	for _, id := range ids {
		a, ok, err := c.Asset(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// ListAlerts returns up to limit recent alerts, newest first. Alerts whose
// store TTL elapsed are skipped, not reported as gaps.
func (c *Catalog) ListAlerts(ctx context.Context, limit int) ([]model.Alert, error) {
	ids, err := c.store.LRange(ctx, store.KeyAlerts, -int64(limit), -1)
	if err != nil {
		return nil, err
	}
	out := make([]model.Alert, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		a, ok, err := c.Alert(ctx, ids[i])
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// TailAsset returns the most recently registered asset, for freshness
// reporting.
func (c *Catalog) TailAsset(ctx context.Context) (model.Asset, bool, error) {
	id, ok, err := c.store.LIndex(ctx, store.KeyAssets, -1)
	if err != nil || !ok {
		return model.Asset{}, false, err
	}
	return c.Asset(ctx, id)
}

// TailEvent returns the newest event, for freshness reporting.
func (c *Catalog) TailEvent(ctx context.Context) (model.Event, bool, error) {
	id, ok, err := c.store.LIndex(ctx, store.KeyEvents, -1)
	if err != nil || !ok {
		return model.Event{}, false, err
	}
	return c.Event(ctx, id)
}

// TailAlert returns the newest alert, for freshness reporting.
func (c *Catalog) TailAlert(ctx context.Context) (model.Alert, bool, error) {
	id, ok, err := c.store.LIndex(ctx, store.KeyAlerts, -1)
	if err != nil || !ok {
		return model.Alert{}, false, err
	}
	return c.Alert(ctx, id)
}
