// Core entity types shared across the simulation engine and API.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Asset status values.
const (
	StatusActive   = "active"
	StatusDegraded = "degraded"
	StatusOffline  = "offline"
)

// Event severities, ordered low to critical.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Alert priorities. P3 is reserved; the default correlation policy never
// emits it.
const (
	PriorityP1 = "p1"
	PriorityP2 = "p2"
	PriorityP3 = "p3"
)

// Asset types.
var AssetTypes = []string{"sensor", "vehicle", "relay", "drone"}

// OwnerTeams an asset can be assigned to at bootstrap.
var OwnerTeams = []string{"blue", "green", "white"}

// Waypoint is a [lat, lon] pair. Kept as a two-element array so the JSON
// shape matches what the dashboard map expects ([[lat,lon],...]).
type Waypoint [2]float64

// Asset is a monitored entity (sensor, vehicle, relay, drone).
type Asset struct {
	AssetID    string    `json:"asset_id"`
	Name       string    `json:"name"`
	AssetType  string    `json:"asset_type"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Status     string    `json:"status"`
	LastUpdate time.Time `json:"last_update"`
	OwnerTeam  string    `json:"owner_team"`

	// Simulation extensions; clients may ignore them.
	Route    []Waypoint `json:"route,omitempty"`
	RouteIdx int        `json:"route_idx"`
	SpeedKmh float64    `json:"speed_kmh,omitempty"`
}

// Event is a detected or inferred situation in space and time.
type Event struct {
	EventID    string         `json:"event_id"`
	CreatedAt  time.Time      `json:"created_at"`
	Lat        float64        `json:"lat"`
	Lon        float64        `json:"lon"`
	Type       string         `json:"type"`
	Severity   string         `json:"severity"`
	Source     string         `json:"source"`
	Confidence float64        `json:"confidence"`
	Meta       map[string]any `json:"meta"`
}

// Alert is a correlated warning requiring attention.
type Alert struct {
	AlertID        string    `json:"alert_id"`
	CreatedAt      time.Time `json:"created_at"`
	Priority       string    `json:"priority"`
	Message        string    `json:"message"`
	RelatedEventID string    `json:"related_event_id,omitempty"`
	RelatedAssetID string    `json:"related_asset_id,omitempty"`
	Fingerprint    string    `json:"fingerprint"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Update types pushed through the update log and out over SSE.
const (
	UpdateBootstrap    = "bootstrap"
	UpdateAssetUpdated = "asset_updated"
	UpdateEventCreated = "event_created"
	UpdateAlertRaised  = "alert_raised"
	UpdateAdminNotice  = "admin_notice"
)

// Update is one envelope in the append-only update log.
type Update struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NewID returns a short readable id like "evt_a3f91c2b1e".
func NewID(prefix string) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "_" + hex[:10]
}
