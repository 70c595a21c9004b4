package store

import (
	"fmt"
	"hash/fnv"
)

// Index lists and the update log.
const (
	KeyAssets  = "assets:list"  // asset ids, insertion order
	KeyEvents  = "events:list"  // recent event ids, tail is newest
	KeyAlerts  = "alerts:list"  // recent alert ids, tail is newest
	KeyUpdates = "updates:stream"
)

// Simulation rate knobs and admin state.
const (
	KeyScenario      = "sim:scenario"
	KeyRateEvent     = "sim:rate:event_sec"
	KeyRateAsset     = "sim:rate:asset_sec"
	KeyRateAlert     = "sim:rate:alert_sec"
	KeyAdminLock     = "admin:lock"
	KeyCooldownUntil = "admin:cooldown_until"
)

// KeyAsset returns the payload key for an asset id.
func KeyAsset(id string) string { return "asset:" + id }

// KeyEvent returns the payload key for an event id.
func KeyEvent(id string) string { return "event:" + id }

// KeyAlert returns the payload key for an alert id.
func KeyAlert(id string) string { return "alert:" + id }

// KeyAlertDedup derives the dedup marker key for an alert fingerprint.
// FNV-1a keeps the key stable across processes and restarts.
func KeyAlertDedup(fingerprint string) string {
	h := fnv.New32a()
	h.Write([]byte(fingerprint))
	return fmt.Sprintf("dedup:alert:%d", h.Sum32())
}
