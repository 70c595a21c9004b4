package sim

import (
	"context"
	"fmt"
	"time"

	"fusionops-sim/internal/geo"
	"fusionops-sim/internal/metrics"
	"fusionops-sim/internal/model"
	"fusionops-sim/internal/store"
)

// Alert lifetime tuning. The store TTL deliberately outlives the logical
// expiry so clients observe the expired window before the payload vanishes.
const (
	dedupWindow = 60 * time.Second
	alertExpiry = 5 * time.Minute
	alertTTL    = 600 * time.Second
)

// alertMessages maps event types to alert message templates.
var alertMessages = map[string]string{
	"comms":    "Communications anomaly detected",
	"movement": "Unusual movement pattern near asset",
	"incident": "Incident reported near monitored corridor",
	"weather":  "Weather risk impacting operational area",
}

const alertMessageDefault = "Correlation rule triggered"

// AlertTick correlates an alert from the most recent event. Only critical
// and high severities produce alerts; identical fingerprints within the
// dedup window are suppressed. No events, an expired event payload, or a
// non-alerting severity are all no-ops.
func (e *Engine) AlertTick(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	eventID, ok, err := e.cat.LatestEventID(ctx)
	if err != nil {
		return fmt.Errorf("latest event id: %w", err)
	}
	if !ok {
		return nil
	}
	evt, ok, err := e.cat.Event(ctx, eventID)
	if err != nil {
		return fmt.Errorf("load event %s: %w", eventID, err)
	}
	if !ok {
		return nil
	}
	priority, ok := geo.PriorityOf(evt.Severity)
	if !ok {
		return nil
	}

	assetID, _ := evt.Meta["asset_id"].(string)
	msg, found := alertMessages[evt.Type]
	if !found {
		msg = alertMessageDefault
	}

	fingerprint := fmt.Sprintf("%s:%s:%s:%s", priority, evt.EventID, assetID, msg)
	fresh, err := e.cat.Store().SetNX(ctx, store.KeyAlertDedup(fingerprint), "1", dedupWindow)
	if err != nil {
		return fmt.Errorf("dedup marker: %w", err)
	}
	if !fresh {
		metrics.AlertsDeduped.Inc()
		return nil
	}

	alr := model.Alert{
		AlertID:        model.NewID("alr"),
		CreatedAt:      e.now().UTC(),
		Priority:       priority,
		Message:        fmt.Sprintf("%s (sev=%s)", msg, evt.Severity),
		RelatedEventID: evt.EventID,
		RelatedAssetID: assetID,
		Fingerprint:    fingerprint,
		ExpiresAt:      e.now().UTC().Add(alertExpiry),
	}
	if err := e.cat.SaveAlert(ctx, &alr, alertTTL); err != nil {
		return fmt.Errorf("save alert: %w", err)
	}
	return e.cat.PushUpdate(ctx, model.Update{Type: model.UpdateAlertRaised, Data: alr})
}
