package fleet

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleettrack.xyz/fleet-telemetry-service/pkg/common"
	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
	_ "fleettrack.xyz/fleet-telemetry-service/pkg/testing"
)

func TestHaversineKm(t *testing.T) {
	// identical points
	assert.InDelta(t, 0.0, HaversineKm(34.89, -1.32, 34.89, -1.32), 1e-9)

	// 0.06 degrees of latitude is roughly 6.7km
	assert.InDelta(t, 6.67, HaversineKm(34.89, -1.32, 34.95, -1.32), 0.05)

	// one degree of latitude at the equator
	assert.InDelta(t, 111.19, HaversineKm(0, 0, 1, 0), 0.1)
}

func TestEvaluateGeofence_BreachAndReturn(t *testing.T) {
	cfg := models.GeofenceConfig{
		Name:          "depot",
		CenterLat:     34.89,
		CenterLon:     -1.32,
		RadiusKm:      1.0,
		AlertOnBreach: true,
		AlertOnReturn: true,
	}
	now := time.Now().UTC()

	// first sight outside: unset previous counts as inside, so this is a breach
	state, event := EvaluateGeofence(cfg, "", 34.95, -1.32, now)
	assert.Equal(t, models.ContainmentOutside, state)
	require.NotNil(t, event)
	assert.Equal(t, models.AlertTypeGeofenceBreach, event.Type)
	assert.Equal(t, models.ContainmentInside, event.PreviousState)
	assert.Equal(t, models.ContainmentOutside, event.CurrentState)
	assert.Equal(t, "depot", event.GeofenceName)
	assert.InDelta(t, 6.67, event.DistanceFromCenterKm, 0.05)

	// still outside: no second event
	state, event = EvaluateGeofence(cfg, state, 34.96, -1.32, now)
	assert.Equal(t, models.ContainmentOutside, state)
	assert.Nil(t, event)

	// back inside: return event
	state, event = EvaluateGeofence(cfg, state, 34.8905, -1.3201, now)
	assert.Equal(t, models.ContainmentInside, state)
	require.NotNil(t, event)
	assert.Equal(t, models.AlertTypeGeofenceReturn, event.Type)

	// staying inside: quiet
	state, event = EvaluateGeofence(cfg, state, 34.89, -1.32, now)
	assert.Equal(t, models.ContainmentInside, state)
	assert.Nil(t, event)
}

func TestEvaluateGeofence_SuppressedEventsStillFlipState(t *testing.T) {
	cfg := models.GeofenceConfig{
		CenterLat: 34.89,
		CenterLon: -1.32,
		RadiusKm:  1.0,
		// both alert flags off
	}
	now := time.Now().UTC()

	state, event := EvaluateGeofence(cfg, models.ContainmentInside, 34.95, -1.32, now)
	assert.Equal(t, models.ContainmentOutside, state)
	assert.Nil(t, event)

	state, event = EvaluateGeofence(cfg, state, 34.89, -1.32, now)
	assert.Equal(t, models.ContainmentInside, state)
	assert.Nil(t, event)
}

func TestEvaluateGeofence_BoundaryIsInside(t *testing.T) {
	cfg := models.GeofenceConfig{CenterLat: 0, CenterLon: 0, RadiusKm: 111.2, AlertOnBreach: true}

	// one degree of latitude sits just under the radius
	state, event := EvaluateGeofence(cfg, models.ContainmentInside, 1, 0, time.Now())
	assert.Equal(t, models.ContainmentInside, state)
	assert.Nil(t, event)
}

func TestSetGeofence(t *testing.T) {
	common.SetTestLoggerNop()

	f := NewFleet(NewStateStore())
	deviceID := uuid.NewString()

	err := f.SetGeofence(deviceID, models.GeofenceConfig{CenterLat: 1, CenterLon: 2, RadiusKm: 3})
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	_, err = f.Registry.RegisterDevice(deviceID, &models.DeviceRecord{DeviceType: "tracker"})
	require.NoError(t, err)

	err = f.SetGeofence(deviceID, models.GeofenceConfig{CenterLat: 1, CenterLon: 2, RadiusKm: 3})
	require.NoError(t, err)

	cfg, err := f.GeofenceFor(deviceID)
	require.NoError(t, err)
	assert.Equal(t, "Geofence for "+deviceID, cfg.Name)
	assert.False(t, cfg.CreatedAt.IsZero())

	// configuring resets containment to inside
	assert.Equal(t, models.ContainmentInside, f.GeofenceState(deviceID))

	assert.Len(t, f.Geofences(), 1)
}

func TestRemoveGeofence(t *testing.T) {
	common.SetTestLoggerNop()

	f := NewFleet(NewStateStore())
	deviceID := uuid.NewString()

	_, err := f.Registry.RegisterDevice(deviceID, &models.DeviceRecord{})
	require.NoError(t, err)

	assert.ErrorIs(t, f.RemoveGeofence(deviceID), ErrGeofenceNotFound)

	require.NoError(t, f.SetGeofence(deviceID, models.GeofenceConfig{CenterLat: 1, CenterLon: 2, RadiusKm: 3}))
	assert.NoError(t, f.RemoveGeofence(deviceID))

	_, err = f.GeofenceFor(deviceID)
	assert.ErrorIs(t, err, ErrGeofenceNotFound)
	assert.Equal(t, models.ContainmentUnknown, f.GeofenceState(deviceID))
}
