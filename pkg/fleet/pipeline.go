package fleet

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"fleettrack.xyz/fleet-telemetry-service/pkg/common"
	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
)

// submitTelemetry is the single entry point every protocol adapter calls.
// Steps run in fixed order under the device lock: resolve identity,
// auto-register, anomaly check, compression pre-filter, geofence evaluation,
// record the sample, decimated health analytics, industrial forwarding.
// Geofence evaluation happens before the sample is recorded, so the sample's
// geofence_state reflects the post-transition containment. Alert fan-out and
// the archive write run after the lock is released so a slow sink never
// stalls the device's ingestion.
func (f *Fleet) submitTelemetry(raw models.RawMessage) error {
	logger := common.GetLoggerWith(
		common.LoggerNameFleetCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryPipeline),
	)

	deviceID := resolveDeviceID(raw)
	sample := f.canonicalize(deviceID, raw)
	now := f.now().UTC()

	ds := f.Store.device(deviceID)

	var alerts []models.Alert

	ds.mu.Lock()

	if ds.record == nil {
		f.autoRegisterLocked(ds, deviceID, sample.DeviceType, sample.Protocol)
		logger.Info("Auto-registered device", zap.String("device_id", deviceID),
			zap.String("protocol", sample.Protocol))
	}

	// Analytics failures degrade to "no result", never drop the sample.
	anomaly, cause := f.safeDetect(deviceID, sample)
	if anomaly {
		alerts = append(alerts, models.Alert{
			Timestamp:  now,
			DeviceID:   deviceID,
			DeviceType: sample.DeviceType,
			Type:       models.EdgeAnomalyAlertType(cause),
			Detail:     fmt.Sprintf("Anomalous reading: battery=%.1f temperature=%.1f signal=%d", sample.Battery, sample.Temperature, sample.SignalStrength),
			Protocol:   sample.Protocol,
			Severity:   "high",
		})
	}

	if f.Compression != nil && ds.current != nil && !f.Compression.significant(sample, *ds.current) {
		ds.insight = &models.EdgeInsight{LastProcessed: now, AnomalyDetected: anomaly, DataCompressed: true}
		ds.mu.Unlock()
		for _, alert := range alerts {
			f.emitAlert(alert)
		}
		logger.Debug("Skipping insignificant sample", zap.String("device_id", deviceID))
		return nil
	}
	ds.insight = &models.EdgeInsight{LastProcessed: now, AnomalyDetected: anomaly}

	if ds.geofence != nil {
		state, event := EvaluateGeofence(*ds.geofence, ds.containment, sample.Lat, sample.Lon, now)
		ds.containment = state
		if event != nil {
			event.DeviceID = deviceID
			logger.Info("Geofence transition", zap.String("device_id", deviceID), zap.Reflect("event", event))
			alerts = append(alerts, models.Alert{
				Timestamp:  now,
				DeviceID:   deviceID,
				DeviceType: sample.DeviceType,
				Type:       event.Type,
				Detail:     fmt.Sprintf("Device moved %s geofence '%s'", event.CurrentState, event.GeofenceName),
				DistanceKm: event.DistanceFromCenterKm,
				Protocol:   sample.Protocol,
				Severity:   "medium",
			})
		}
	}

	sample.GeofenceState = ds.containment
	if sample.GeofenceState == "" {
		sample.GeofenceState = models.ContainmentUnknown
	}

	ds.history.Append(sample)
	ds.current = &sample
	ds.samples++

	if ds.samples%f.cadence() == 0 {
		if prediction := f.safeAnalyze(deviceID, ds.history.Items()); prediction != nil {
			ds.prediction = prediction
			if prediction.HealthScore < 0.4 {
				alerts = append(alerts, models.Alert{
					Timestamp:  now,
					DeviceID:   deviceID,
					DeviceType: sample.DeviceType,
					Type:       models.AlertTypePredictiveMaintenance,
					Detail:     fmt.Sprintf("Device health score: %.2f", prediction.HealthScore),
					Protocol:   sample.Protocol,
					Severity:   "high",
				})
			}
		}
	}

	if handler, ok := f.telemetryHandler(sample.Protocol); ok {
		if err := handler(sample); err != nil {
			logger.Warn("Industrial handler failed",
				zap.String("device_id", deviceID),
				zap.String("protocol", sample.Protocol),
				zap.Error(err))
		}
	}

	ds.mu.Unlock()

	for _, alert := range alerts {
		f.emitAlert(alert)
	}

	if f.Archive != nil {
		if err := f.Archive.SaveSample(sample); err != nil {
			logger.Warn("Archive write failed", zap.String("device_id", deviceID), zap.Error(err))
		}
	}

	logger.Info("Recorded telemetry",
		zap.String("device_id", deviceID),
		zap.String("protocol", sample.Protocol),
		zap.Float64("battery", sample.Battery))
	return nil
}

// submitAlert records an adapter-supplied alert with documented defaults for
// the missing fields.
func (f *Fleet) submitAlert(raw models.RawMessage) error {
	alert := models.Alert{
		Timestamp:  f.now().UTC(),
		DeviceID:   resolveDeviceID(raw),
		DeviceType: stringField(raw, "device_type", "unknown"),
		Type:       models.AlertType(stringField(raw, "type", string(models.AlertTypeUnknown))),
		Detail:     stringField(raw, "detail", ""),
		Protocol:   stringField(raw, "protocol", "unknown"),
		Severity:   stringField(raw, "severity", "medium"),
	}
	f.emitAlert(alert)
	return nil
}

// emitAlert appends to the global bounded alert sequence and fans out to the
// live sinks and the archive, best-effort.
func (f *Fleet) emitAlert(alert models.Alert) {
	f.Store.AppendAlert(alert)

	for _, sink := range f.alertSinks() {
		sink.PublishAlert(alert)
	}

	if f.Archive != nil {
		if err := f.Archive.SaveAlert(alert); err != nil {
			common.GetLoggerWith(
				common.LoggerNameFleetCore,
				zap.String(common.LoggerFieldCategory, common.LoggerCategoryArchive),
			).Warn("Alert archive write failed", zap.Error(err))
		}
	}
}

func (f *Fleet) safeDetect(deviceID string, sample models.TelemetrySample) (anomaly bool, cause models.AnomalyCause) {
	defer func() {
		if r := recover(); r != nil {
			common.GetLoggerWith(
				common.LoggerNameFleetCore,
				zap.String(common.LoggerFieldCategory, common.LoggerCategoryHealth),
			).Warn("Anomaly detection failed", zap.String("device_id", deviceID), zap.Any("panic", r))
			anomaly, cause = false, ""
		}
	}()
	return f.Health.DetectAnomaly(deviceID, sample)
}

func (f *Fleet) safeAnalyze(deviceID string, history []models.TelemetrySample) (prediction *models.HealthPrediction) {
	defer func() {
		if r := recover(); r != nil {
			common.GetLoggerWith(
				common.LoggerNameFleetCore,
				zap.String(common.LoggerFieldCategory, common.LoggerCategoryHealth),
			).Warn("Health analysis failed", zap.String("device_id", deviceID), zap.Any("panic", r))
			prediction = nil
		}
	}()
	return f.Health.AnalyzeHealthTrends(deviceID, history)
}

func resolveDeviceID(raw models.RawMessage) string {
	if id := stringField(raw, "device_id", ""); id != "" {
		return id
	}
	if id := stringField(raw, "id", ""); id != "" {
		return id
	}
	return models.UnknownDeviceID
}

// canonicalize builds the strongly-typed sample from the permissive raw
// mapping. Missing or type-incompatible fields take their documented
// defaults; nothing here can fail.
func (f *Fleet) canonicalize(deviceID string, raw models.RawMessage) models.TelemetrySample {
	return models.TelemetrySample{
		DeviceID:       deviceID,
		Timestamp:      timeField(raw, "timestamp", f.now().UTC()),
		Lat:            floatField(raw, "lat"),
		Lon:            floatField(raw, "lon"),
		Battery:        floatField(raw, "battery"),
		Temperature:    floatField(raw, "temperature"),
		Status:         stringField(raw, "status", "OK"),
		DeviceType:     stringField(raw, "device_type", "unknown"),
		Protocol:       stringField(raw, "protocol", "unknown"),
		SignalStrength: int(floatField(raw, "signal_strength")),
		SensorData:     mapField(raw, "sensor_data"),
		ReceivedAt:     timeField(raw, "received_at", time.Time{}),
	}
}

func stringField(raw models.RawMessage, key, fallback string) string {
	if v, ok := raw[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

func floatField(raw models.RawMessage, key string) float64 {
	v, ok := raw[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		if parsed, err := n.Float64(); err == nil {
			return parsed
		}
	case string:
		if parsed, err := strconv.ParseFloat(n, 64); err == nil {
			return parsed
		}
	}
	return 0
}

// timestampLayouts covers the formats devices actually send, including bare
// ISO timestamps without a zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05",
}

func timeField(raw models.RawMessage, key string, fallback time.Time) time.Time {
	v, ok := raw[key]
	if !ok {
		return fallback
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return fallback
}

func mapField(raw models.RawMessage, key string) map[string]any {
	if v, ok := raw[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}

type IPipelineImpl struct {
	fleet *Fleet
}

func (ip *IPipelineImpl) SubmitTelemetry(raw models.RawMessage) error {
	return ip.fleet.submitTelemetry(raw)
}

func (ip *IPipelineImpl) SubmitAlert(raw models.RawMessage) error {
	return ip.fleet.submitAlert(raw)
}

func (f *Fleet) GetIPipeline() IPipeline {
	return &IPipelineImpl{fleet: f}
}
