package fleet

import (
	"strings"
	"time"

	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
)

// Read-side helpers for the operator query surface.

// CurrentSnapshots returns the latest sample of every device that has
// reported at least once.
func (f *Fleet) CurrentSnapshots() []models.TelemetrySample {
	ids := f.Store.deviceIDs()
	out := make([]models.TelemetrySample, 0, len(ids))
	for _, id := range ids {
		ds, ok := f.Store.lookup(id)
		if !ok {
			continue
		}
		ds.mu.Lock()
		if ds.current != nil {
			out = append(out, *ds.current)
		}
		ds.mu.Unlock()
	}
	return out
}

// History returns a copy of the retained telemetry for one device, oldest
// first.
func (f *Fleet) History(deviceID string) []models.TelemetrySample {
	ds, ok := f.Store.lookup(deviceID)
	if !ok {
		return nil
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.history.Items()
}

func (f *Fleet) HistoryLen(deviceID string) int {
	ds, ok := f.Store.lookup(deviceID)
	if !ok {
		return 0
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.history.Len()
}

// DeviceAlerts filters the global alert sequence for one device.
func (f *Fleet) DeviceAlerts(deviceID string) []models.Alert {
	var out []models.Alert
	for _, alert := range f.Store.Alerts() {
		if alert.DeviceID == deviceID {
			out = append(out, alert)
		}
	}
	return out
}

// AnomalyAlerts returns the device's retained EDGE_ANOMALY_* alerts.
func (f *Fleet) AnomalyAlerts(deviceID string) []models.Alert {
	var out []models.Alert
	for _, alert := range f.DeviceAlerts(deviceID) {
		if strings.HasPrefix(string(alert.Type), models.EdgeAnomalyPrefix) {
			out = append(out, alert)
		}
	}
	return out
}

func (f *Fleet) Insight(deviceID string) (models.EdgeInsight, bool) {
	ds, ok := f.Store.lookup(deviceID)
	if !ok {
		return models.EdgeInsight{}, false
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.insight == nil {
		return models.EdgeInsight{}, false
	}
	return *ds.insight, true
}

// EdgeInsights returns the per-device processing bookkeeping for all devices
// that have one.
func (f *Fleet) EdgeInsights() map[string]models.EdgeInsight {
	out := make(map[string]models.EdgeInsight)
	for _, id := range f.Store.deviceIDs() {
		if insight, ok := f.Insight(id); ok {
			out[id] = insight
		}
	}
	return out
}

func (f *Fleet) Prediction(deviceID string) (*models.HealthPrediction, bool) {
	ds, ok := f.Store.lookup(deviceID)
	if !ok {
		return nil, false
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.prediction == nil {
		return nil, false
	}
	p := *ds.prediction
	return &p, true
}

// RefreshPrediction runs the maintenance analysis on demand over the current
// history and caches the result. Returns nil when history is too short.
func (f *Fleet) RefreshPrediction(deviceID string) *models.HealthPrediction {
	ds, ok := f.Store.lookup(deviceID)
	if !ok {
		return nil
	}
	ds.mu.Lock()
	history := ds.history.Items()
	ds.mu.Unlock()

	prediction := f.safeAnalyze(deviceID, history)
	if prediction == nil {
		return nil
	}

	ds.mu.Lock()
	ds.prediction = prediction
	p := *prediction
	ds.mu.Unlock()
	return &p
}

// BatteryDegradation recomputes the battery slope over the device's recent
// history, for the maintenance query surface.
func (f *Fleet) BatteryDegradation(deviceID string) float64 {
	history := f.History(deviceID)
	if len(history) == 0 {
		return 0
	}
	return batteryDegradationRate(history)
}

// HealthScoreView is one row of the fleet-wide health overview. Devices never
// analyzed report perfect health and no maintenance date.
type HealthScoreView struct {
	HealthScore     float64    `json:"health_score"`
	MaintenanceDate *time.Time `json:"maintenance_date"`
	Online          bool       `json:"online"`
}

func (f *Fleet) HealthScores() map[string]HealthScoreView {
	out := make(map[string]HealthScoreView)
	for _, id := range f.Store.deviceIDs() {
		ds, ok := f.Store.lookup(id)
		if !ok {
			continue
		}
		ds.mu.Lock()
		if ds.record == nil {
			ds.mu.Unlock()
			continue
		}
		view := HealthScoreView{HealthScore: 1.0}
		if ds.prediction != nil {
			view.HealthScore = ds.prediction.HealthScore
			date := ds.prediction.PredictedMaintenanceDate
			view.MaintenanceDate = &date
		}
		if ds.current != nil {
			view.Online = f.now().Sub(ds.current.Timestamp) < OnlineWindow
		}
		ds.mu.Unlock()
		out[id] = view
	}
	return out
}
