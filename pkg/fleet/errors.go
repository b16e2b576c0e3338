package fleet

import "errors"

var (
	// ErrDeviceNotFound is returned by management operations addressed at an
	// unregistered device. Telemetry ingestion never returns it; unseen
	// devices are auto-registered instead.
	ErrDeviceNotFound = errors.New("device not found")

	ErrCommandNotFound = errors.New("command not found")

	ErrGeofenceNotFound = errors.New("no geofence configured for device")

	// ErrNoRoute is returned by a CommandSender when no active adapter serves
	// the device's protocol. The command stays pending; delivery was never
	// attempted.
	ErrNoRoute = errors.New("no active adapter for protocol")
)
