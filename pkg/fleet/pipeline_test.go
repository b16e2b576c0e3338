package fleet_test

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zapcore"

	"fleettrack.xyz/fleet-telemetry-service/pkg/common"
	"fleettrack.xyz/fleet-telemetry-service/pkg/fleet"
	"fleettrack.xyz/fleet-telemetry-service/pkg/fleet/mocks"
	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
	_ "fleettrack.xyz/fleet-telemetry-service/pkg/testing"
)

func TestSubmitTelemetry_AutoRegister(t *testing.T) {
	common.SetTestLoggerNop()

	f := newTestFleet()
	deviceID := uuid.NewString()

	err := f.Pipeline.SubmitTelemetry(models.RawMessage{
		"device_id":   deviceID,
		"battery":     87.5,
		"device_type": "tracker",
	})
	require.NoError(t, err)

	record, err := f.Registry.GetDevice(deviceID)
	require.NoError(t, err)
	assert.Equal(t, "tracker", record.DeviceType)
	assert.Equal(t, "unknown", record.FirmwareVersion)
	assert.Equal(t, "active", record.Status)

	history := f.History(deviceID)
	require.Len(t, history, 1)
	sample := history[0]
	assert.Equal(t, 87.5, sample.Battery)
	assert.Equal(t, "OK", sample.Status)
	assert.Equal(t, "unknown", sample.Protocol)
	assert.Equal(t, models.ContainmentUnknown, sample.GeofenceState)
	assert.False(t, sample.Timestamp.IsZero())

	// the auto-registered config carries the fleet defaults
	config, err := f.Registry.GetConfig(deviceID)
	require.NoError(t, err)
	assert.Equal(t, 30, config.TelemetryInterval)
	assert.Equal(t, 60, config.HeartbeatInterval)
	assert.Equal(t, 20.0, config.AlertThresholds["battery"])
}

func TestSubmitTelemetry_MissingDeviceID(t *testing.T) {
	common.SetTestLoggerNop()

	f := newTestFleet()

	err := f.Pipeline.SubmitTelemetry(models.RawMessage{"battery": 50.0})
	require.NoError(t, err)

	assert.Equal(t, 1, f.HistoryLen(models.UnknownDeviceID))

	// the legacy id field is honored when device_id is absent
	err = f.Pipeline.SubmitTelemetry(models.RawMessage{"id": "legacy-7", "battery": 40.0})
	require.NoError(t, err)
	assert.Equal(t, 1, f.HistoryLen("legacy-7"))
}

func TestSubmitTelemetry_NumericCoercion(t *testing.T) {
	common.SetTestLoggerNop()

	f := newTestFleet()
	deviceID := uuid.NewString()

	err := f.Pipeline.SubmitTelemetry(models.RawMessage{
		"device_id":       deviceID,
		"battery":         "88.5", // string-encoded numeric
		"temperature":     21,     // int
		"signal_strength": -72.0,
		"sensor_data":     map[string]any{"co2": 410},
	})
	require.NoError(t, err)

	history := f.History(deviceID)
	require.Len(t, history, 1)
	assert.Equal(t, 88.5, history[0].Battery)
	assert.Equal(t, 21.0, history[0].Temperature)
	assert.Equal(t, -72, history[0].SignalStrength)
	assert.Equal(t, map[string]any{"co2": 410}, history[0].SensorData)
}

func TestSubmitTelemetry_RecordsIdenticalSamples(t *testing.T) {
	common.SetTestLoggerNop()

	f := newTestFleet()
	deviceID := uuid.NewString()

	raw := models.RawMessage{"device_id": deviceID, "battery": 80.0, "lat": 34.89, "lon": -1.32}
	require.NoError(t, f.Pipeline.SubmitTelemetry(raw))
	require.NoError(t, f.Pipeline.SubmitTelemetry(raw))

	// no deduplication without the compression pre-filter
	assert.Equal(t, 2, f.HistoryLen(deviceID))
}

func TestSubmitTelemetry_CompressionSkip(t *testing.T) {
	common.SetTestLoggerNop()

	f := newTestFleet()
	f.Compression = fleet.DefaultCompressionThresholds()
	deviceID := uuid.NewString()

	raw := models.RawMessage{"device_id": deviceID, "battery": 80.0, "lat": 34.89, "lon": -1.32}
	require.NoError(t, f.Pipeline.SubmitTelemetry(raw))
	require.NoError(t, f.Pipeline.SubmitTelemetry(raw))

	assert.Equal(t, 1, f.HistoryLen(deviceID))

	insight, ok := f.Insight(deviceID)
	require.True(t, ok)
	assert.True(t, insight.DataCompressed)
}

func TestSubmitTelemetry_GeofenceTransitions(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newTestFleet()
	sink := mocks.NewMockAlertSink(ctrl)
	f.AddAlertSink(sink)

	deviceID := uuid.NewString()
	registerTestDevice(t, f, deviceID, "http")
	require.NoError(t, f.SetGeofence(deviceID, models.GeofenceConfig{
		Name:          "depot",
		CenterLat:     34.89,
		CenterLon:     -1.32,
		RadiusKm:      1.0,
		AlertOnBreach: true,
		AlertOnReturn: true,
	}))

	// one breach, one return; the repeated outside sample stays quiet
	sink.EXPECT().PublishAlert(gomock.Any()).Times(2)

	submit := func(lat, lon float64) {
		require.NoError(t, f.Pipeline.SubmitTelemetry(models.RawMessage{
			"device_id": deviceID, "lat": lat, "lon": lon, "battery": 80.0,
		}))
	}
	submit(34.95, -1.32)
	submit(34.96, -1.32)
	submit(34.8905, -1.3201)

	alerts := f.DeviceAlerts(deviceID)
	require.Len(t, alerts, 2)

	assert.Equal(t, models.AlertTypeGeofenceBreach, alerts[0].Type)
	assert.Equal(t, "Device moved outside geofence 'depot'", alerts[0].Detail)
	assert.InDelta(t, 6.67, alerts[0].DistanceKm, 0.05)
	assert.Equal(t, "medium", alerts[0].Severity)

	assert.Equal(t, models.AlertTypeGeofenceReturn, alerts[1].Type)
	assert.Equal(t, "Device moved inside geofence 'depot'", alerts[1].Detail)

	// recorded samples carry the post-transition containment
	history := f.History(deviceID)
	require.Len(t, history, 3)
	assert.Equal(t, models.ContainmentOutside, history[0].GeofenceState)
	assert.Equal(t, models.ContainmentOutside, history[1].GeofenceState)
	assert.Equal(t, models.ContainmentInside, history[2].GeofenceState)
}

func TestSubmitTelemetry_AnalyticsCadence(t *testing.T) {
	common.SetTestLoggerNop()

	f := newTestFleet()
	f.Cadence = 5
	deviceID := uuid.NewString()

	// steep battery decline plus volatile movement and temperature
	for i := 0; i < 5; i++ {
		require.NoError(t, f.Pipeline.SubmitTelemetry(models.RawMessage{
			"device_id":   deviceID,
			"battery":     100 - float64(i)*25,
			"temperature": float64(i%2) * 40,
			"lat":         float64(i % 2),
			"lon":         0.0,
		}))
	}

	prediction, ok := f.Prediction(deviceID)
	require.True(t, ok)
	assert.InDelta(t, 0.3, prediction.HealthScore, 1e-9)

	var maintenance []models.Alert
	for _, alert := range f.DeviceAlerts(deviceID) {
		if alert.Type == models.AlertTypePredictiveMaintenance {
			maintenance = append(maintenance, alert)
		}
	}
	require.Len(t, maintenance, 1)
	assert.Equal(t, "Device health score: 0.30", maintenance[0].Detail)
	assert.Equal(t, "high", maintenance[0].Severity)
}

func TestSubmitTelemetry_HistoryEviction(t *testing.T) {
	common.SetTestLoggerNop()

	f := newTestFleet()
	f.Cadence = 1 << 20 // analytics out of the way
	deviceID := uuid.NewString()

	for i := 0; i < 510; i++ {
		require.NoError(t, f.Pipeline.SubmitTelemetry(models.RawMessage{
			"device_id": deviceID,
			"battery":   float64(i),
			"lat":       34.89,
			"lon":       -1.32,
		}))
	}

	history := f.History(deviceID)
	require.Len(t, history, fleet.DefaultHistoryCapacity)
	// the ten oldest samples were evicted in arrival order
	assert.Equal(t, 10.0, history[0].Battery)
	assert.Equal(t, 509.0, history[len(history)-1].Battery)
}

func TestSubmitTelemetry_AnalyticsDecimationPastCapacity(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newTestFleet()
	f.Cadence = 10

	health := mocks.NewMockIHealth(ctrl)
	health.
		EXPECT().
		DetectAnomaly(gomock.Any(), gomock.Any()).
		Return(false, models.AnomalyCause("")).
		AnyTimes()
	// 505 recorded samples analyze on every 10th, even while the history
	// ring stays pinned at 500 retained entries
	health.
		EXPECT().
		AnalyzeHealthTrends(gomock.Any(), gomock.Any()).
		Return(nil).
		Times(50)
	f.WithServices(fleet.ServiceOpts{Health: health})

	deviceID := uuid.NewString()
	for i := 0; i < 505; i++ {
		require.NoError(t, f.Pipeline.SubmitTelemetry(models.RawMessage{
			"device_id": deviceID,
			"battery":   float64(i % 100),
		}))
	}

	assert.Equal(t, 500, f.HistoryLen(deviceID))
}

func TestSubmitTelemetry_ArchiveOutsideCriticalSection(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newTestFleet()
	deviceID := uuid.NewString()

	// reading device state back from the archive sink only completes when
	// the write happens after the ingestion critical section has released
	// the device lock
	archive := mocks.NewMockArchive(ctrl)
	archive.
		EXPECT().
		SaveSample(gomock.Any()).
		DoAndReturn(func(sample models.TelemetrySample) error {
			assert.Equal(t, 1, f.HistoryLen(sample.DeviceID))
			return nil
		}).
		Times(1)
	f.Archive = archive

	require.NoError(t, f.Pipeline.SubmitTelemetry(models.RawMessage{
		"device_id": deviceID,
		"battery":   50.0,
	}))
}

func TestSubmitTelemetry_Concurrent(t *testing.T) {
	common.SetTestLoggerNop()

	f := newTestFleet()
	f.Cadence = 1 << 20
	deviceID := uuid.NewString()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				_ = f.Pipeline.SubmitTelemetry(models.RawMessage{
					"device_id": deviceID,
					"battery":   float64(g*20 + i),
				})
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 200, f.HistoryLen(deviceID))
}

func TestSubmitAlert(t *testing.T) {
	common.SetTestLoggerNop()

	f := newTestFleet()
	deviceID := uuid.NewString()

	err := f.Pipeline.SubmitAlert(models.RawMessage{
		"device_id": deviceID,
		"type":      "TAMPER",
		"severity":  "high",
		"detail":    "case opened",
		"protocol":  "mqtt",
	})
	require.NoError(t, err)

	alerts := f.DeviceAlerts(deviceID)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertType("TAMPER"), alerts[0].Type)
	assert.Equal(t, "high", alerts[0].Severity)
	assert.Equal(t, "case opened", alerts[0].Detail)
	assert.Equal(t, "mqtt", alerts[0].Protocol)
}

func TestSubmitAlert_Defaults(t *testing.T) {
	common.SetTestLoggerNop()

	f := newTestFleet()

	require.NoError(t, f.Pipeline.SubmitAlert(models.RawMessage{}))

	alerts := f.DeviceAlerts(models.UnknownDeviceID)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertTypeUnknown, alerts[0].Type)
	assert.Equal(t, "medium", alerts[0].Severity)
	assert.Equal(t, "unknown", alerts[0].Protocol)
}

func TestSubmitTelemetry_WithLog(t *testing.T) {
	var buf = &bytes.Buffer{}
	common.SetTestCaptureLogger(buf, zapcore.InfoLevel)

	f := newTestFleet()
	deviceID := uuid.NewString()

	require.NoError(t, f.Pipeline.SubmitTelemetry(models.RawMessage{
		"device_id": deviceID,
		"battery":   66.0,
		"protocol":  "http",
	}))

	logs := ParseLogs(buf)

	{
		found := false
		for _, log := range logs {
			lobj := log.(map[string]any)
			if lobj["category"] == "pipeline" &&
				lobj["logger"] == "fleet_core" &&
				lobj["msg"] == "Auto-registered device" &&
				lobj["device_id"] == deviceID {
				found = true
			}
		}
		assert.True(t, found, fmt.Sprintf("missing auto-register log for %s", deviceID))
	}

	{
		found := false
		for _, log := range logs {
			lobj := log.(map[string]any)
			if lobj["category"] == "pipeline" &&
				lobj["logger"] == "fleet_core" &&
				lobj["msg"] == "Recorded telemetry" &&
				lobj["device_id"] == deviceID &&
				lobj["battery"] == 66.0 {
				found = true
			}
		}
		assert.True(t, found, fmt.Sprintf("missing recorded-telemetry log for %s", deviceID))
	}
}
