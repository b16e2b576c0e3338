package models

import "time"

// Archive rows are flattened copies of the canonical records, written
// best-effort to sqlite by the archive sink. The in-memory state store stays
// authoritative; these tables exist for offline inspection only.

type ArchivedSample struct {
	ID             uint   `gorm:"primaryKey"`
	DeviceID       string `gorm:"index"`
	Timestamp      time.Time
	Lat            float64
	Lon            float64
	Battery        float64
	Temperature    float64
	Status         string
	DeviceType     string
	Protocol       string
	SignalStrength int
	GeofenceState  string
}

type ArchivedAlert struct {
	ID        uint   `gorm:"primaryKey"`
	DeviceID  string `gorm:"index"`
	Timestamp time.Time
	Type      string `gorm:"type:varchar(64)"`
	Detail    string
	Severity  string
	Protocol  string
}
