package fleet

import (
	"math"
	"time"

	"go.uber.org/zap"

	"fleettrack.xyz/fleet-telemetry-service/pkg/common"
	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
)

const earthRadiusKm = 6371.0

// HaversineKm computes the great-circle distance between two coordinates in
// kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// EvaluateGeofence is the pure containment state machine. Given the stored
// containment (unset counts as inside), the geofence config and a new
// position, it returns the new containment plus an event on a state change.
// Breach events require AlertOnBreach, return events AlertOnReturn; the state
// still flips when the matching flag is off.
func EvaluateGeofence(cfg models.GeofenceConfig, previous models.GeofenceContainment, lat, lon float64, now time.Time) (models.GeofenceContainment, *models.GeofenceEvent) {
	distance := HaversineKm(cfg.CenterLat, cfg.CenterLon, lat, lon)

	current := models.ContainmentOutside
	if distance <= cfg.RadiusKm {
		current = models.ContainmentInside
	}

	if previous == "" || previous == models.ContainmentUnknown {
		previous = models.ContainmentInside
	}
	if current == previous {
		return current, nil
	}

	event := &models.GeofenceEvent{
		PreviousState:        previous,
		CurrentState:         current,
		DistanceFromCenterKm: math.Round(distance*100) / 100,
		GeofenceName:         cfg.Name,
		Timestamp:            now,
	}
	switch current {
	case models.ContainmentOutside:
		if !cfg.AlertOnBreach {
			return current, nil
		}
		event.Type = models.AlertTypeGeofenceBreach
	case models.ContainmentInside:
		if !cfg.AlertOnReturn {
			return current, nil
		}
		event.Type = models.AlertTypeGeofenceReturn
	}
	return current, event
}

// SetGeofence configures (or replaces) the geofence for a registered device.
// Containment resets to inside: the true position is unknown until the next
// sample is evaluated.
func (f *Fleet) SetGeofence(deviceID string, cfg models.GeofenceConfig) error {
	logger := common.GetLoggerWith(
		common.LoggerNameFleetCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryGeofence),
	)

	ds, ok := f.Store.lookup(deviceID)
	if !ok {
		return ErrDeviceNotFound
	}

	if cfg.Name == "" {
		cfg.Name = "Geofence for " + deviceID
	}
	cfg.CreatedAt = f.now().UTC()

	ds.mu.Lock()
	ds.geofence = &cfg
	ds.containment = models.ContainmentInside
	ds.mu.Unlock()

	logger.Info("Geofence configured", zap.String("device_id", deviceID), zap.Reflect("geofence", cfg))
	return nil
}

func (f *Fleet) RemoveGeofence(deviceID string) error {
	ds, ok := f.Store.lookup(deviceID)
	if !ok {
		return ErrDeviceNotFound
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.geofence == nil {
		return ErrGeofenceNotFound
	}
	ds.geofence = nil
	ds.containment = ""
	return nil
}

// GeofenceFor returns the configured geofence, or ErrGeofenceNotFound.
func (f *Fleet) GeofenceFor(deviceID string) (models.GeofenceConfig, error) {
	ds, ok := f.Store.lookup(deviceID)
	if !ok {
		return models.GeofenceConfig{}, ErrDeviceNotFound
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.geofence == nil {
		return models.GeofenceConfig{}, ErrGeofenceNotFound
	}
	return *ds.geofence, nil
}

// Geofences returns all configured geofences keyed by device id.
func (f *Fleet) Geofences() map[string]models.GeofenceConfig {
	out := make(map[string]models.GeofenceConfig)
	for _, id := range f.Store.deviceIDs() {
		ds, ok := f.Store.lookup(id)
		if !ok {
			continue
		}
		ds.mu.Lock()
		if ds.geofence != nil {
			out[id] = *ds.geofence
		}
		ds.mu.Unlock()
	}
	return out
}

// GeofenceState reports the current containment, unknown when no geofence has
// ever been evaluated.
func (f *Fleet) GeofenceState(deviceID string) models.GeofenceContainment {
	ds, ok := f.Store.lookup(deviceID)
	if !ok {
		return models.ContainmentUnknown
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.containment == "" {
		return models.ContainmentUnknown
	}
	return ds.containment
}
