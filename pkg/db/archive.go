package db

import (
	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
)

// Archive flattens canonical records into the sqlite archive tables. It backs
// the pipeline's optional archive sink; the in-memory store stays
// authoritative and archive errors never reach ingestion.
type Archive struct {
	db *DB
}

func NewArchive(db *DB) *Archive {
	return &Archive{db: db}
}

func (a *Archive) SaveSample(sample models.TelemetrySample) error {
	row := models.ArchivedSample{
		DeviceID:       sample.DeviceID,
		Timestamp:      sample.Timestamp,
		Lat:            sample.Lat,
		Lon:            sample.Lon,
		Battery:        sample.Battery,
		Temperature:    sample.Temperature,
		Status:         sample.Status,
		DeviceType:     sample.DeviceType,
		Protocol:       sample.Protocol,
		SignalStrength: sample.SignalStrength,
		GeofenceState:  string(sample.GeofenceState),
	}
	return a.db.Conn.Create(&row).Error
}

func (a *Archive) SaveAlert(alert models.Alert) error {
	row := models.ArchivedAlert{
		DeviceID:  alert.DeviceID,
		Timestamp: alert.Timestamp,
		Type:      string(alert.Type),
		Detail:    alert.Detail,
		Severity:  alert.Severity,
		Protocol:  alert.Protocol,
	}
	return a.db.Conn.Create(&row).Error
}
