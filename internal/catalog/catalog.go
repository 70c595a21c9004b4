// Entity store adapter: owns key naming, JSON marshalling, index lists, and
// the bounded update log on top of the abstract store.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"fusionops-sim/internal/metrics"
	"fusionops-sim/internal/model"
	"fusionops-sim/internal/store"
)

// Retention limits, trim-on-write.
const (
	KeepEvents  = 300
	KeepAlerts  = 300
	KeepUpdates = 500
)

// UpdateRow is the archive form of one update-log envelope.
type UpdateRow struct {
	Type      string    `json:"type"`
	Payload   string    `json:"payload"`
	Timestamp time.Time `json:"ts"`
}

// UpdateWriter receives every appended update envelope, e.g. for archival to
// a time-series store. Write failures must not affect the mutating path.
type UpdateWriter interface {
	WriteUpdate(row UpdateRow) error
}

// Catalog reads and writes entities and the update log.
type Catalog struct {
	store   store.Store
	archive UpdateWriter
	log     *slog.Logger
}

// New creates a catalog over the given store. archive may be nil.
func New(s store.Store, archive UpdateWriter, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{store: s, archive: archive, log: log}
}

// Store exposes the underlying store for components that need raw access
// (admin lock, rate knobs).
func (c *Catalog) Store() store.Store { return c.store }

// PushUpdate appends one envelope to the update log and trims it to the most
// recent KeepUpdates entries.
func (c *Catalog) PushUpdate(ctx context.Context, u model.Update) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}
	if err := c.store.RPush(ctx, store.KeyUpdates, string(raw)); err != nil {
		return fmt.Errorf("append update: %w", err)
	}
	if err := c.store.LTrim(ctx, store.KeyUpdates, -KeepUpdates, -1); err != nil {
		return fmt.Errorf("trim update log: %w", err)
	}
	metrics.UpdatesTotal.WithLabelValues(u.Type).Inc()
	if c.archive != nil {
		data, _ := json.Marshal(u.Data)
		row := UpdateRow{Type: u.Type, Payload: string(data), Timestamp: time.Now().UTC()}
		if err := c.archive.WriteUpdate(row); err != nil {
			c.log.Error("update archive write failed", "type", u.Type, "err", err)
		}
	}
	return nil
}

// UpdatesLen returns the current update-log length, used as the stream
// cursor origin.
func (c *Catalog) UpdatesLen(ctx context.Context) (int64, error) {
	return c.store.LLen(ctx, store.KeyUpdates)
}

// UpdatesRange decodes log entries in [start, stop]. Entries that fail to
// decode are skipped.
func (c *Catalog) UpdatesRange(ctx context.Context, start, stop int64) ([]model.Update, error) {
	raws, err := c.store.LRange(ctx, store.KeyUpdates, start, stop)
	if err != nil {
		return nil, err
	}
	out := make([]model.Update, 0, len(raws))
	for _, raw := range raws {
		var u model.Update
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			c.log.Error("skipping undecodable update entry", "err", err)
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (c *Catalog) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return c.store.Set(ctx, key, string(raw), ttl)
}

func (c *Catalog) getJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		// A corrupt payload reads as absence, same as an expired one.
		c.log.Error("undecodable payload treated as missing", "key", key, "err", err)
		return false, nil
	}
	return true, nil
}

// SaveAsset persists an asset payload. Newly created assets must also be
// registered with RegisterAsset.
func (c *Catalog) SaveAsset(ctx context.Context, a *model.Asset) error {
	return c.setJSON(ctx, store.KeyAsset(a.AssetID), a, 0)
}

// RegisterAsset appends an asset id to the fleet index.
func (c *Catalog) RegisterAsset(ctx context.Context, id string) error {
	return c.store.RPush(ctx, store.KeyAssets, id)
}

// Asset fetches an asset by id; ok is false when missing.
func (c *Catalog) Asset(ctx context.Context, id string) (model.Asset, bool, error) {
	var a model.Asset
	ok, err := c.getJSON(ctx, store.KeyAsset(id), &a)
	return a, ok, err
}

// AssetIDs returns the full fleet index in insertion order.
func (c *Catalog) AssetIDs(ctx context.Context) ([]string, error) {
	return c.store.LRange(ctx, store.KeyAssets, 0, -1)
}

// AssetCount returns the fleet index length.
func (c *Catalog) AssetCount(ctx context.Context) (int64, error) {
	return c.store.LLen(ctx, store.KeyAssets)
}

// SaveEvent persists an event and appends it to the bounded recent index.
func (c *Catalog) SaveEvent(ctx context.Context, e *model.Event) error {
	if err := c.setJSON(ctx, store.KeyEvent(e.EventID), e, 0); err != nil {
		return err
	}
	if err := c.store.RPush(ctx, store.KeyEvents, e.EventID); err != nil {
		return err
	}
	return c.store.LTrim(ctx, store.KeyEvents, -KeepEvents, -1)
}

// Event fetches an event by id; ok is false when missing.
func (c *Catalog) Event(ctx context.Context, id string) (model.Event, bool, error) {
	var e model.Event
	ok, err := c.getJSON(ctx, store.KeyEvent(id), &e)
	return e, ok, err
}

// LatestEventID returns the newest entry of the event index.
func (c *Catalog) LatestEventID(ctx context.Context) (string, bool, error) {
	return c.store.LIndex(ctx, store.KeyEvents, -1)
}

// EventCount returns the recent-event index length.
func (c *Catalog) EventCount(ctx context.Context) (int64, error) {
	return c.store.LLen(ctx, store.KeyEvents)
}

// SaveAlert persists an alert with a store-level TTL and appends it to the
// bounded recent index. The TTL outlives the alert's logical expires_at so
// readers can observe the expired window before the payload vanishes.
func (c *Catalog) SaveAlert(ctx context.Context, a *model.Alert, ttl time.Duration) error {
	if err := c.setJSON(ctx, store.KeyAlert(a.AlertID), a, ttl); err != nil {
		return err
	}
	if err := c.store.RPush(ctx, store.KeyAlerts, a.AlertID); err != nil {
		return err
	}
	return c.store.LTrim(ctx, store.KeyAlerts, -KeepAlerts, -1)
}

// Alert fetches an alert by id; ok is false when missing or TTL-expired.
func (c *Catalog) Alert(ctx context.Context, id string) (model.Alert, bool, error) {
	var a model.Alert
	ok, err := c.getJSON(ctx, store.KeyAlert(id), &a)
	return a, ok, err
}

// AlertCount returns the recent-alert index length.
func (c *Catalog) AlertCount(ctx context.Context) (int64, error) {
	return c.store.LLen(ctx, store.KeyAlerts)
}
