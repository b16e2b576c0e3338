package fleet

import (
	"math"
	"sync"
	"time"

	"fleettrack.xyz/fleet-telemetry-service/pkg/common"
	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
)

const (
	// AnomalyWarmup is the cold-start floor: fewer cached points than this
	// and the scorer never flags, so a fresh device cannot false-positive.
	AnomalyWarmup = 10
	// AnomalyWindow caps the rolling feature cache per device.
	AnomalyWindow = 50
)

// OutlierModel is the pluggable scoring function behind the anomaly scorer.
// It is retrained on the rolling window on every evaluation; the specific
// algorithm is not load-bearing.
type OutlierModel interface {
	Fit(window [][]float64)
	Outlier(point []float64) bool
}

// zScoreModel flags a point when any feature sits more than three standard
// deviations from the window mean. A zero-variance feature counts as an
// outlier on any deviation at all.
type zScoreModel struct {
	mean []float64
	std  []float64
}

func (m *zScoreModel) Fit(window [][]float64) {
	if len(window) == 0 {
		return
	}
	dims := len(window[0])
	m.mean = make([]float64, dims)
	m.std = make([]float64, dims)
	for d := 0; d < dims; d++ {
		var sum float64
		for _, p := range window {
			sum += p[d]
		}
		mean := sum / float64(len(window))
		var variance float64
		for _, p := range window {
			variance += (p[d] - mean) * (p[d] - mean)
		}
		m.mean[d] = mean
		m.std[d] = math.Sqrt(variance / float64(len(window)))
	}
}

func (m *zScoreModel) Outlier(point []float64) bool {
	if len(m.mean) == 0 || len(point) != len(m.mean) {
		return false
	}
	for d := range point {
		delta := math.Abs(point[d] - m.mean[d])
		if m.std[d] < 1e-9 {
			if delta > 1e-6 {
				return true
			}
			continue
		}
		if delta/m.std[d] > 3.0 {
			return true
		}
	}
	return false
}

// AnomalyScorer keeps a rolling feature cache per device and classifies each
// newly evaluated point against a model refit on that window.
type AnomalyScorer struct {
	mu       sync.Mutex
	cache    map[string]*Ring[[]float64]
	newModel func() OutlierModel
	warmup   int
	window   int
}

func NewAnomalyScorer() *AnomalyScorer {
	return &AnomalyScorer{
		cache:    make(map[string]*Ring[[]float64]),
		newModel: func() OutlierModel { return &zScoreModel{} },
		warmup:   AnomalyWarmup,
		window:   AnomalyWindow,
	}
}

func featureVector(s models.TelemetrySample) []float64 {
	return []float64{s.Battery, s.Temperature, float64(s.SignalStrength), s.Lat, s.Lon}
}

// Detect classifies the sample. During warmup it only grows the cache and
// always reports no anomaly.
func (a *AnomalyScorer) Detect(deviceID string, sample models.TelemetrySample) (bool, models.AnomalyCause) {
	features := featureVector(sample)

	a.mu.Lock()
	defer a.mu.Unlock()

	ring, ok := a.cache[deviceID]
	if !ok {
		ring = NewRing[[]float64](a.window)
		a.cache[deviceID] = ring
	}

	if ring.Len() < a.warmup {
		ring.Append(features)
		return false, ""
	}

	model := a.newModel()
	model.Fit(ring.Items())
	outlier := model.Outlier(features)
	ring.Append(features)

	if !outlier {
		return false, ""
	}
	return true, classifyCause(features)
}

// classifyCause maps an anomalous feature vector to a coarse cause.
func classifyCause(features []float64) models.AnomalyCause {
	battery, temp, signal := features[0], features[1], features[2]
	switch {
	case battery < 10:
		return models.CauseCriticalBattery
	case temp > 45:
		return models.CauseOverheating
	case signal < -120:
		return models.CauseSignalDegradation
	default:
		return models.CauseBehavioral
	}
}

// CompressionThresholds are the tunable deltas under which a sample is judged
// insignificant relative to its predecessor and full processing may be
// skipped. This is a volume-reduction policy, not correctness-critical.
type CompressionThresholds struct {
	Battery     float64
	Temperature float64
	PositionKm  float64
}

func DefaultCompressionThresholds() *CompressionThresholds {
	return &CompressionThresholds{Battery: 2.0, Temperature: 1.0, PositionKm: 0.01}
}

func (t *CompressionThresholds) significant(cur, prev models.TelemetrySample) bool {
	if math.Abs(cur.Battery-prev.Battery) > t.Battery {
		return true
	}
	if math.Abs(cur.Temperature-prev.Temperature) > t.Temperature {
		return true
	}
	return HaversineKm(cur.Lat, cur.Lon, prev.Lat, prev.Lon) > t.PositionKm
}

const (
	maintenanceMinHistory = 5
	degradationWindow     = 10
	usageWindow           = 20
	maintenanceConfidence = 0.85 // fixed stub, not statistically derived
)

// MaintenancePredictor derives a trend-based health score and maintenance
// horizon from recent history.
type MaintenancePredictor struct {
	now func() time.Time
}

func NewMaintenancePredictor() *MaintenancePredictor {
	return &MaintenancePredictor{now: time.Now}
}

// AnalyzeHealthTrends returns nil (no prediction, not an error) when fewer
// than maintenanceMinHistory points exist.
func (p *MaintenancePredictor) AnalyzeHealthTrends(deviceID string, history []models.TelemetrySample) *models.HealthPrediction {
	if len(history) < maintenanceMinHistory {
		return nil
	}

	slope := batteryDegradationRate(history)
	movement, tempVariation := usagePatterns(history)
	score := healthScore(slope, movement, tempVariation)

	var horizon time.Duration
	switch {
	case score < 0.3:
		horizon = 7 * 24 * time.Hour
	case score < 0.6:
		horizon = 30 * 24 * time.Hour
	default:
		horizon = 90 * 24 * time.Hour
	}

	return &models.HealthPrediction{
		DeviceID:                 deviceID,
		HealthScore:              math.Round(score*100) / 100,
		PredictedMaintenanceDate: p.now().UTC().Add(horizon),
		Confidence:               maintenanceConfidence,
		RecommendedActions:       maintenanceActions(score, slope),
		BatteryDegradationRate:   math.Round(slope*10000) / 10000,
	}
}

// batteryDegradationRate is the ordinary least-squares slope of the last
// degradationWindow battery readings against their index.
func batteryDegradationRate(history []models.TelemetrySample) float64 {
	start := len(history) - degradationWindow
	if start < 0 {
		start = 0
	}
	batteries := common.Mapper(history[start:], func(s models.TelemetrySample) float64 { return s.Battery })
	n := float64(len(batteries))
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range batteries {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// usagePatterns returns movement intensity (mean consecutive great-circle
// distance) and temperature standard deviation over the last usageWindow
// points.
func usagePatterns(history []models.TelemetrySample) (float64, float64) {
	start := len(history) - usageWindow
	if start < 0 {
		start = 0
	}
	window := history[start:]

	var movement float64
	if len(window) >= 2 {
		var sum float64
		for i := 1; i < len(window); i++ {
			sum += HaversineKm(window[i-1].Lat, window[i-1].Lon, window[i].Lat, window[i].Lon)
		}
		movement = sum / float64(len(window)-1)
	}

	temps := common.Mapper(window, func(s models.TelemetrySample) float64 { return s.Temperature })
	var tempStd float64
	if len(temps) > 0 {
		mean := common.Reducer(temps, func(acc, t float64) float64 { return acc + t }, 0.0) / float64(len(temps))
		variance := common.Reducer(temps, func(acc, t float64) float64 {
			return acc + (t-mean)*(t-mean)
		}, 0.0) / float64(len(temps))
		tempStd = math.Sqrt(variance)
	}

	return movement, tempStd
}

// healthScore combines the battery trend and usage terms with fixed weights
// (0.4 battery, 0.3 usage, 0.3 base). Every term is clamped to [0,1] before
// weighting and the result is clamped again, so extreme inputs cannot push
// the score out of range.
func healthScore(slope, movement, tempVariation float64) float64 {
	batteryScore := common.Clamp(1+slope*10, 0, 1)
	movementScore := 1 - math.Min(1, movement/100)
	tempScore := 1 - math.Min(1, tempVariation/20)
	usageScore := common.Clamp((movementScore+tempScore)/2, 0, 1)
	return common.Clamp(batteryScore*0.4+usageScore*0.3+0.3, 0, 1)
}

func maintenanceActions(score, slope float64) []string {
	var actions []string
	switch {
	case score < 0.3:
		actions = append(actions, "Immediate battery check", "Full diagnostic", "Consider replacement")
	case score < 0.6:
		actions = append(actions, "Scheduled maintenance", "Battery calibration", "Firmware update")
	default:
		actions = append(actions, "Routine check")
	}
	if slope < -0.5 {
		actions = append(actions, "Battery replacement recommended")
	}
	return actions
}

type IHealthImpl struct {
	fleet *Fleet
}

func (ih *IHealthImpl) DetectAnomaly(deviceID string, sample models.TelemetrySample) (bool, models.AnomalyCause) {
	if ih.fleet.Scorer == nil {
		return false, ""
	}
	return ih.fleet.Scorer.Detect(deviceID, sample)
}

func (ih *IHealthImpl) AnalyzeHealthTrends(deviceID string, history []models.TelemetrySample) *models.HealthPrediction {
	if ih.fleet.Predictor == nil {
		return nil
	}
	return ih.fleet.Predictor.AnalyzeHealthTrends(deviceID, history)
}

func (f *Fleet) GetIHealth() IHealth {
	return &IHealthImpl{fleet: f}
}
