package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"fusionops-sim/internal/model"
	"fusionops-sim/internal/store"
)

func newTestCatalog() (*Catalog, *store.Memory) {
	st := store.NewMemory()
	return New(st, nil, slog.New(slog.DiscardHandler)), st
}

func TestAssetRoundTrip(t *testing.T) {
	ctx := context.Background()
	cat, _ := newTestCatalog()

	a := &model.Asset{
		AssetID:   "ast_0000000001",
		Name:      "Asset-001",
		AssetType: "drone",
		Lat:       48.2, Lon: 16.4,
		Status:     model.StatusActive,
		LastUpdate: time.Now().UTC(),
		OwnerTeam:  "blue",
		Route:      []model.Waypoint{{48.2, 16.4}, {49.0, 17.0}},
		SpeedKmh:   62,
	}
	if err := cat.SaveAsset(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := cat.RegisterAsset(ctx, a.AssetID); err != nil {
		t.Fatal(err)
	}

	got, ok, err := cat.Asset(ctx, a.AssetID)
	if err != nil || !ok {
		t.Fatalf("Asset = ok=%v err=%v", ok, err)
	}
	if got.Name != a.Name || got.AssetType != a.AssetType || len(got.Route) != 2 {
		t.Errorf("asset did not round-trip: %+v", got)
	}
	if n, _ := cat.AssetCount(ctx); n != 1 {
		t.Errorf("AssetCount = %d, want 1", n)
	}

	if _, ok, err := cat.Asset(ctx, "ast_nope"); err != nil || ok {
		t.Errorf("missing asset: ok=%v err=%v, want absent without error", ok, err)
	}
}

func TestEventIndexTrims(t *testing.T) {
	ctx := context.Background()
	cat, _ := newTestCatalog()

	for i := 0; i < KeepEvents+10; i++ {
		e := &model.Event{
			EventID:   fmt.Sprintf("evt_%010d", i),
			CreatedAt: time.Now().UTC(),
			Type:      "detection",
			Severity:  model.SeverityLow,
			Source:    "simulation",
		}
		if err := cat.SaveEvent(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	n, _ := cat.EventCount(ctx)
	if n != KeepEvents {
		t.Errorf("EventCount = %d, want %d", n, KeepEvents)
	}
	id, ok, _ := cat.LatestEventID(ctx)
	if !ok || id != fmt.Sprintf("evt_%010d", KeepEvents+9) {
		t.Errorf("LatestEventID = %q, %v", id, ok)
	}
}

func TestListEventsNewestFirst(t *testing.T) {
	ctx := context.Background()
	cat, _ := newTestCatalog()

	for i := 0; i < 5; i++ {
		e := &model.Event{EventID: fmt.Sprintf("evt_%d", i), Severity: model.SeverityLow}
		if err := cat.SaveEvent(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	got, err := cat.ListEvents(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].EventID != "evt_4" || got[2].EventID != "evt_2" {
		t.Errorf("ListEvents(3) order wrong: %+v", got)
	}
}

func TestListAlertsSkipsExpired(t *testing.T) {
	ctx := context.Background()
	cat, _ := newTestCatalog()

	a1 := &model.Alert{AlertID: "alr_1", Priority: model.PriorityP1}
	a2 := &model.Alert{AlertID: "alr_2", Priority: model.PriorityP2}
	if err := cat.SaveAlert(ctx, a1, 0); err != nil {
		t.Fatal(err)
	}
	// Short TTL so the payload vanishes while the index entry stays.
	if err := cat.SaveAlert(ctx, a2, time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)

	got, err := cat.ListAlerts(ctx, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].AlertID != "alr_1" {
		t.Errorf("ListAlerts = %+v, want only alr_1", got)
	}
}

func TestPushUpdateTrimsAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	cat, _ := newTestCatalog()

	for i := 0; i < KeepUpdates+20; i++ {
		u := model.Update{Type: model.UpdateEventCreated, Data: map[string]any{"i": i}}
		if err := cat.PushUpdate(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	n, _ := cat.UpdatesLen(ctx)
	if n != KeepUpdates {
		t.Fatalf("UpdatesLen = %d, want %d", n, KeepUpdates)
	}

	got, err := cat.UpdatesRange(ctx, n-2, n-1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("UpdatesRange returned %d entries", len(got))
	}
	last := got[1].Data.(map[string]any)
	if int(last["i"].(float64)) != KeepUpdates+19 {
		t.Errorf("newest entry is %v, want i=%d", last, KeepUpdates+19)
	}
}

func TestUpdatesRangeSkipsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	cat, st := newTestCatalog()

	if err := cat.PushUpdate(ctx, model.Update{Type: model.UpdateBootstrap}); err != nil {
		t.Fatal(err)
	}
	if err := st.RPush(ctx, store.KeyUpdates, "{not json"); err != nil {
		t.Fatal(err)
	}
	if err := cat.PushUpdate(ctx, model.Update{Type: model.UpdateAlertRaised}); err != nil {
		t.Fatal(err)
	}

	got, err := cat.UpdatesRange(ctx, 0, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Type != model.UpdateBootstrap || got[1].Type != model.UpdateAlertRaised {
		t.Errorf("corrupt entry not skipped: %+v", got)
	}
}

type captureWriter struct {
	rows []UpdateRow
	err  error
}

func (w *captureWriter) WriteUpdate(row UpdateRow) error {
	w.rows = append(w.rows, row)
	return w.err
}

func TestPushUpdateArchives(t *testing.T) {
	ctx := context.Background()
	w := &captureWriter{}
	cat := New(store.NewMemory(), w, slog.New(slog.DiscardHandler))

	u := model.Update{Type: model.UpdateAssetUpdated, Data: map[string]any{"asset_id": "ast_1"}}
	if err := cat.PushUpdate(ctx, u); err != nil {
		t.Fatal(err)
	}
	if len(w.rows) != 1 || w.rows[0].Type != model.UpdateAssetUpdated {
		t.Fatalf("archive rows: %+v", w.rows)
	}
	if w.rows[0].Payload == "" {
		t.Error("archive payload empty")
	}
}

func TestPushUpdateSurvivesArchiveFailure(t *testing.T) {
	ctx := context.Background()
	w := &captureWriter{err: fmt.Errorf("ingest down")}
	cat := New(store.NewMemory(), w, slog.New(slog.DiscardHandler))

	if err := cat.PushUpdate(ctx, model.Update{Type: model.UpdateBootstrap}); err != nil {
		t.Fatalf("archive failure leaked into PushUpdate: %v", err)
	}
	if n, _ := cat.UpdatesLen(ctx); n != 1 {
		t.Errorf("update not appended despite archive failure")
	}
}

func TestTailHelpers(t *testing.T) {
	ctx := context.Background()
	cat, _ := newTestCatalog()

	if _, ok, err := cat.TailEvent(ctx); err != nil || ok {
		t.Errorf("TailEvent on empty catalog: ok=%v err=%v", ok, err)
	}

	e := &model.Event{EventID: "evt_tail", Severity: model.SeverityMedium}
	if err := cat.SaveEvent(ctx, e); err != nil {
		t.Fatal(err)
	}
	got, ok, err := cat.TailEvent(ctx)
	if err != nil || !ok || got.EventID != "evt_tail" {
		t.Errorf("TailEvent = %+v ok=%v err=%v", got, ok, err)
	}
}
