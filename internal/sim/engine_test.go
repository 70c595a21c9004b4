package sim

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"fusionops-sim/internal/catalog"
	"fusionops-sim/internal/geo"
	"fusionops-sim/internal/model"
	"fusionops-sim/internal/store"
)

func newTestEngine(t *testing.T, fleetSize int) (*Engine, *catalog.Catalog) {
	t.Helper()
	cat := catalog.New(store.NewMemory(), nil, slog.New(slog.DiscardHandler))
	return NewEngine(cat, fleetSize, DefaultRates, 42), cat
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	e, cat := newTestEngine(t, 60)

	if err := e.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	assets, err := cat.ListAssets(ctx, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 60 {
		t.Fatalf("bootstrapped %d assets, want 60", len(assets))
	}
	for _, a := range assets {
		if a.Status != model.StatusActive {
			t.Errorf("asset %s bootstrapped %s, want active", a.AssetID, a.Status)
		}
		if len(a.Route) < 4 {
			t.Errorf("asset %s route has %d waypoints", a.AssetID, len(a.Route))
		}
		if a.SpeedKmh < 40 || a.SpeedKmh > 90 {
			t.Errorf("asset %s speed %f out of range", a.AssetID, a.SpeedKmh)
		}
	}

	// The log should carry exactly one bootstrap envelope.
	updates, err := cat.UpdatesRange(ctx, 0, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(updates) != 1 || updates[0].Type != model.UpdateBootstrap {
		t.Errorf("updates after bootstrap: %+v", updates)
	}

	// Idempotent on a populated fleet.
	if err := e.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	if n, _ := cat.AssetCount(ctx); n != 60 {
		t.Errorf("second Bootstrap grew the fleet to %d", n)
	}
}

func TestMotionTick_KeepsFleetInRegion(t *testing.T) {
	ctx := context.Background()
	e, cat := newTestEngine(t, 10)
	if err := e.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 200; i++ {
		if err := e.MotionTick(ctx); err != nil {
			t.Fatal(err)
		}
	}
	assets, _ := cat.ListAssets(ctx, 100)
	for _, a := range assets {
		if a.Lat < geo.LatMin || a.Lat > geo.LatMax || a.Lon < geo.LonMin || a.Lon > geo.LonMax {
			t.Errorf("asset %s drifted out of region: %f, %f", a.AssetID, a.Lat, a.Lon)
		}
	}
}

func TestMotionTick_EmptyFleet(t *testing.T) {
	ctx := context.Background()
	e, cat := newTestEngine(t, 10)
	if err := e.MotionTick(ctx); err != nil {
		t.Fatalf("empty fleet should be a no-op: %v", err)
	}
	if n, _ := cat.UpdatesLen(ctx); n != 0 {
		t.Errorf("updates pushed on empty fleet: %d", n)
	}
}

func TestMotionTick_BroadcastsAssetUpdates(t *testing.T) {
	ctx := context.Background()
	e, cat := newTestEngine(t, 5)
	if err := e.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	before, _ := cat.UpdatesLen(ctx)
	if err := e.MotionTick(ctx); err != nil {
		t.Fatal(err)
	}
	after, _ := cat.UpdatesLen(ctx)
	moved := after - before
	if moved < 2 || moved > 5 {
		t.Fatalf("one tick moved %d assets, want 2-5", moved)
	}
	updates, _ := cat.UpdatesRange(ctx, before, -1)
	for _, u := range updates {
		if u.Type != model.UpdateAssetUpdated {
			t.Errorf("unexpected update type %s", u.Type)
		}
	}
}

func seedAsset(t *testing.T, cat *catalog.Catalog, status string) model.Asset {
	t.Helper()
	ctx := context.Background()
	a := model.Asset{
		AssetID:    model.NewID("ast"),
		Name:       "Asset-000",
		AssetType:  "relay",
		Lat:        48.0, Lon: 16.0,
		Status:     status,
		LastUpdate: time.Now().UTC(),
		OwnerTeam:  "blue",
	}
	if err := cat.SaveAsset(ctx, &a); err != nil {
		t.Fatal(err)
	}
	if err := cat.RegisterAsset(ctx, a.AssetID); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestEventTick_SeverityFollowsAssetRisk(t *testing.T) {
	cases := []struct {
		status string
		want   string
	}{
		{model.StatusActive, model.SeverityLow},
		{model.StatusDegraded, model.SeverityMedium},
		{model.StatusOffline, model.SeverityCritical},
	}
	for _, c := range cases {
		ctx := context.Background()
		e, cat := newTestEngine(t, 1)
		a := seedAsset(t, cat, c.status)

		if err := e.EventTick(ctx); err != nil {
			t.Fatal(err)
		}
		evt, ok, err := cat.TailEvent(ctx)
		if err != nil || !ok {
			t.Fatalf("%s: no event generated: ok=%v err=%v", c.status, ok, err)
		}
		if evt.Severity != c.want {
			t.Errorf("%s asset produced %s event, want %s", c.status, evt.Severity, c.want)
		}
		if evt.Meta["asset_id"] != a.AssetID {
			t.Errorf("event meta asset_id = %v", evt.Meta["asset_id"])
		}
		if evt.Confidence < 0.60 || evt.Confidence > 0.95 {
			t.Errorf("confidence %f out of range", evt.Confidence)
		}
	}
}

func TestEventTick_OfflineUsesCommsTable(t *testing.T) {
	ctx := context.Background()
	e, cat := newTestEngine(t, 1)
	seedAsset(t, cat, model.StatusOffline)

	seen := map[string]bool{}
	for i := 0; i < 40; i++ {
		if err := e.EventTick(ctx); err != nil {
			t.Fatal(err)
		}
		evt, _, _ := cat.TailEvent(ctx)
		seen[evt.Type] = true
	}
	for typ := range seen {
		if typ != "comms" && typ != "anomaly" && typ != "incident" {
			t.Errorf("offline asset generated %q event", typ)
		}
	}
	if !seen["comms"] {
		t.Error("40 offline events without a single comms event")
	}
}

func TestEventTick_EmptyFleet(t *testing.T) {
	ctx := context.Background()
	e, cat := newTestEngine(t, 1)
	if err := e.EventTick(ctx); err != nil {
		t.Fatalf("empty fleet should be a no-op: %v", err)
	}
	if n, _ := cat.EventCount(ctx); n != 0 {
		t.Error("event generated without assets")
	}
}

func saveEvent(t *testing.T, cat *catalog.Catalog, severity, typ string) model.Event {
	t.Helper()
	evt := model.Event{
		EventID:   model.NewID("evt"),
		CreatedAt: time.Now().UTC(),
		Type:      typ,
		Severity:  severity,
		Source:    "synthetic",
		Meta:      map[string]any{"asset_id": "ast_feed000001"},
	}
	if err := cat.SaveEvent(context.Background(), &evt); err != nil {
		t.Fatal(err)
	}
	return evt
}

func TestAlertTick_RaisesForCritical(t *testing.T) {
	ctx := context.Background()
	e, cat := newTestEngine(t, 1)
	evt := saveEvent(t, cat, model.SeverityCritical, "comms")

	if err := e.AlertTick(ctx); err != nil {
		t.Fatal(err)
	}
	alr, ok, err := cat.TailAlert(ctx)
	if err != nil || !ok {
		t.Fatalf("no alert raised: ok=%v err=%v", ok, err)
	}
	if alr.Priority != model.PriorityP1 {
		t.Errorf("priority = %s, want p1", alr.Priority)
	}
	if alr.Message != "Communications anomaly detected (sev=critical)" {
		t.Errorf("message = %q", alr.Message)
	}
	if alr.RelatedEventID != evt.EventID || alr.RelatedAssetID != "ast_feed000001" {
		t.Errorf("related ids: %s / %s", alr.RelatedEventID, alr.RelatedAssetID)
	}
	if !alr.ExpiresAt.After(alr.CreatedAt) {
		t.Error("expires_at not after created_at")
	}
}

func TestAlertTick_HighMapsToP2(t *testing.T) {
	ctx := context.Background()
	e, cat := newTestEngine(t, 1)
	saveEvent(t, cat, model.SeverityHigh, "movement")

	if err := e.AlertTick(ctx); err != nil {
		t.Fatal(err)
	}
	alr, ok, _ := cat.TailAlert(ctx)
	if !ok || alr.Priority != model.PriorityP2 {
		t.Errorf("high severity alert: ok=%v priority=%s", ok, alr.Priority)
	}
}

func TestAlertTick_IgnoresLowSeverities(t *testing.T) {
	ctx := context.Background()
	e, cat := newTestEngine(t, 1)
	for _, sev := range []string{model.SeverityLow, model.SeverityMedium} {
		saveEvent(t, cat, sev, "anomaly")
		if err := e.AlertTick(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := cat.AlertCount(ctx); n != 0 {
		t.Errorf("%d alerts raised for non-alerting severities", n)
	}
}

func TestAlertTick_Dedup(t *testing.T) {
	ctx := context.Background()
	e, cat := newTestEngine(t, 1)
	saveEvent(t, cat, model.SeverityCritical, "incident")

	for i := 0; i < 3; i++ {
		if err := e.AlertTick(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := cat.AlertCount(ctx); n != 1 {
		t.Errorf("same event raised %d alerts inside the dedup window, want 1", n)
	}
}

func TestAlertTick_NoEvents(t *testing.T) {
	ctx := context.Background()
	e, cat := newTestEngine(t, 1)
	if err := e.AlertTick(ctx); err != nil {
		t.Fatalf("empty event index should be a no-op: %v", err)
	}
	if n, _ := cat.AlertCount(ctx); n != 0 {
		t.Error("alert raised without events")
	}
}

func TestSafeTick_AbsorbsPanicsAndErrors(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, 1)

	e.safeTick(ctx, "panicky", func(context.Context) error {
		panic("boom")
	})
	e.safeTick(ctx, "failing", func(context.Context) error {
		return context.DeadlineExceeded
	})
	// Reaching here means neither tick escaped.
}

func TestInterval_ReadsLiveRate(t *testing.T) {
	ctx := context.Background()
	e, cat := newTestEngine(t, 1)

	if got := e.interval(ctx, store.KeyRateEvent, 6); got != 6*time.Second {
		t.Errorf("default interval = %v", got)
	}
	if err := cat.Store().Set(ctx, store.KeyRateEvent, "2", 0); err != nil {
		t.Fatal(err)
	}
	if got := e.interval(ctx, store.KeyRateEvent, 6); got != 2*time.Second {
		t.Errorf("live interval = %v", got)
	}
	// Invalid and sub-second values fall back to the default.
	for _, bad := range []string{"zero", "0", "-3"} {
		cat.Store().Set(ctx, store.KeyRateEvent, bad, 0)
		if got := e.interval(ctx, store.KeyRateEvent, 6); got != 6*time.Second {
			t.Errorf("interval with rate %q = %v, want default", bad, got)
		}
	}
}
