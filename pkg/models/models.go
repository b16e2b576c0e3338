package models

import "time"

// RawMessage is the protocol-tagged key/value mapping every adapter hands to
// the pipeline. Field access is permissive: missing numerics default to 0,
// missing strings to documented sentinels.
type RawMessage map[string]any

// UnknownDeviceID is the fallback identity when a message carries neither
// a device_id nor a legacy id field.
const UnknownDeviceID = "unknown"

type GeofenceContainment string

const (
	ContainmentInside  GeofenceContainment = "inside"
	ContainmentOutside GeofenceContainment = "outside"
	ContainmentUnknown GeofenceContainment = "unknown"
)

type AlertType string

const (
	AlertTypeGeofenceBreach        AlertType = "GEOFENCE_BREACH"
	AlertTypeGeofenceReturn        AlertType = "GEOFENCE_RETURN"
	AlertTypePredictiveMaintenance AlertType = "PREDICTIVE_MAINTENANCE"
	AlertTypeUnknown               AlertType = "UNKNOWN_ALERT"

	// Anomaly alerts are tagged EDGE_ANOMALY_<cause>.
	EdgeAnomalyPrefix = "EDGE_ANOMALY_"
)

type AnomalyCause string

const (
	CauseCriticalBattery   AnomalyCause = "CRITICAL_BATTERY"
	CauseOverheating       AnomalyCause = "OVERHEATING"
	CauseSignalDegradation AnomalyCause = "SIGNAL_DEGRADATION"
	CauseBehavioral        AnomalyCause = "BEHAVIORAL_ANOMALY"
)

// EdgeAnomalyAlertType builds the alert type tag for a classified anomaly.
func EdgeAnomalyAlertType(cause AnomalyCause) AlertType {
	return AlertType(EdgeAnomalyPrefix + string(cause))
}

type CommandStatus string

const (
	CommandStatusPending      CommandStatus = "pending"
	CommandStatusSent         CommandStatus = "sent"
	CommandStatusAcknowledged CommandStatus = "acknowledged"
	CommandStatusFailed       CommandStatus = "failed"
)

// TelemetrySample is the canonical, protocol-independent representation of
// one device reading. Immutable once appended to a device's history.
type TelemetrySample struct {
	DeviceID       string              `json:"device_id"`
	Timestamp      time.Time           `json:"timestamp"`
	Lat            float64             `json:"lat"`
	Lon            float64             `json:"lon"`
	Battery        float64             `json:"battery"`
	Temperature    float64             `json:"temperature"`
	Status         string              `json:"status"`
	DeviceType     string              `json:"device_type"`
	Protocol       string              `json:"protocol"`
	SignalStrength int                 `json:"signal_strength"`
	SensorData     map[string]any      `json:"sensor_data,omitempty"`
	ReceivedAt     time.Time           `json:"received_at,omitempty"`
	GeofenceState  GeofenceContainment `json:"geofence_state"`
}

type DeviceRecord struct {
	DeviceID        string    `json:"device_id"`
	DeviceType      string    `json:"device_type"`
	Protocol        string    `json:"protocol"`
	FirmwareVersion string    `json:"firmware_version"`
	Capabilities    []string  `json:"capabilities"`
	RegisteredAt    time.Time `json:"registered_at"`
	Status          string    `json:"status"`
}

type DeviceConfig struct {
	TelemetryInterval int                `json:"telemetry_interval"`
	HeartbeatInterval int                `json:"heartbeat_interval"`
	AlertThresholds   map[string]float64 `json:"alert_thresholds"`
}

type Command struct {
	CommandID    string         `json:"command_id"`
	Type         string         `json:"type"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
	Status       CommandStatus  `json:"status"`
	AckTimestamp *time.Time     `json:"ack_timestamp,omitempty"`
}

type GeofenceConfig struct {
	CenterLat     float64   `json:"center_lat"`
	CenterLon     float64   `json:"center_lon"`
	RadiusKm      float64   `json:"radius_km"`
	AlertOnBreach bool      `json:"alert_on_breach"`
	AlertOnReturn bool      `json:"alert_on_return"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
}

// GeofenceEvent is the edge-triggered transition produced when a device
// crosses its geofence boundary. No event is produced on same-state repeats.
type GeofenceEvent struct {
	Type                 AlertType           `json:"type"`
	DeviceID             string              `json:"device_id"`
	PreviousState        GeofenceContainment `json:"previous_state"`
	CurrentState         GeofenceContainment `json:"current_state"`
	DistanceFromCenterKm float64             `json:"distance_from_center_km"`
	GeofenceName         string              `json:"geofence_name"`
	Timestamp            time.Time           `json:"timestamp"`
}

type Alert struct {
	Timestamp  time.Time `json:"timestamp"`
	DeviceID   string    `json:"device_id"`
	DeviceType string    `json:"device_type,omitempty"`
	Type       AlertType `json:"type"`
	Detail     string    `json:"detail"`
	DistanceKm float64   `json:"distance_km,omitempty"`
	Protocol   string    `json:"protocol"`
	Severity   string    `json:"severity"`
}

type HealthPrediction struct {
	DeviceID                 string    `json:"device_id"`
	HealthScore              float64   `json:"health_score"`
	PredictedMaintenanceDate time.Time `json:"predicted_maintenance_date"`
	Confidence               float64   `json:"confidence"`
	RecommendedActions       []string  `json:"recommended_actions"`
	BatteryDegradationRate   float64   `json:"battery_degradation_rate"`
}

// EdgeInsight is lightweight per-device bookkeeping updated on every accepted
// message, including ones skipped by the compression pre-filter.
type EdgeInsight struct {
	LastProcessed   time.Time `json:"last_processed"`
	AnomalyDetected bool      `json:"anomaly_detected"`
	DataCompressed  bool      `json:"data_compressed"`
}
