package fleet

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
)

func steadySample(battery float64) models.TelemetrySample {
	return models.TelemetrySample{
		Battery:        battery,
		Temperature:    25,
		SignalStrength: -70,
		Lat:            34.89,
		Lon:            -1.32,
	}
}

func TestAnomalyScorer_WarmupNeverFlags(t *testing.T) {
	scorer := NewAnomalyScorer()
	deviceID := uuid.NewString()

	// wildly different values, but during warmup nothing is anomalous
	for i := 0; i < AnomalyWarmup; i++ {
		anomaly, cause := scorer.Detect(deviceID, steadySample(float64(i*10)))
		assert.False(t, anomaly)
		assert.Empty(t, cause)
	}
}

func TestAnomalyScorer_DetectsAfterWarmup(t *testing.T) {
	scorer := NewAnomalyScorer()
	deviceID := uuid.NewString()

	for i := 0; i < AnomalyWarmup; i++ {
		anomaly, _ := scorer.Detect(deviceID, steadySample(80))
		assert.False(t, anomaly)
	}

	// identical warmup window, any deviation now stands out
	anomaly, cause := scorer.Detect(deviceID, steadySample(5))
	assert.True(t, anomaly)
	assert.Equal(t, models.CauseCriticalBattery, cause)

	// a repeat of the steady reading is still fine
	anomaly, _ = scorer.Detect(deviceID, steadySample(80))
	assert.False(t, anomaly)
}

func TestAnomalyScorer_CauseClassification(t *testing.T) {
	cases := []struct {
		name   string
		sample models.TelemetrySample
		want   models.AnomalyCause
	}{
		{"critical battery", models.TelemetrySample{Battery: 5, Temperature: 25, SignalStrength: -70, Lat: 34.89, Lon: -1.32}, models.CauseCriticalBattery},
		{"overheating", models.TelemetrySample{Battery: 80, Temperature: 55, SignalStrength: -70, Lat: 34.89, Lon: -1.32}, models.CauseOverheating},
		{"signal degradation", models.TelemetrySample{Battery: 80, Temperature: 25, SignalStrength: -130, Lat: 34.89, Lon: -1.32}, models.CauseSignalDegradation},
		{"behavioral", models.TelemetrySample{Battery: 80, Temperature: 25, SignalStrength: -70, Lat: 44.89, Lon: -1.32}, models.CauseBehavioral},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scorer := NewAnomalyScorer()
			deviceID := uuid.NewString()
			for i := 0; i < AnomalyWarmup; i++ {
				scorer.Detect(deviceID, steadySample(80))
			}

			anomaly, cause := scorer.Detect(deviceID, tc.sample)
			require.True(t, anomaly)
			assert.Equal(t, tc.want, cause)
		})
	}
}

func TestAnomalyScorer_PerDeviceIsolation(t *testing.T) {
	scorer := NewAnomalyScorer()
	warmed := uuid.NewString()
	fresh := uuid.NewString()

	for i := 0; i < AnomalyWarmup; i++ {
		scorer.Detect(warmed, steadySample(80))
	}

	// the fresh device starts its own warmup regardless of the warmed one
	anomaly, _ := scorer.Detect(fresh, steadySample(5))
	assert.False(t, anomaly)
}

func TestCompressionThresholds_Significant(t *testing.T) {
	thresholds := DefaultCompressionThresholds()

	prev := steadySample(80)

	// tiny drift in everything: insignificant
	cur := prev
	cur.Battery = 79.5
	cur.Temperature = 25.3
	assert.False(t, thresholds.significant(cur, prev))

	// battery moved past its delta
	cur = prev
	cur.Battery = 77
	assert.True(t, thresholds.significant(cur, prev))

	// position moved past its delta
	cur = prev
	cur.Lat = prev.Lat + 0.01
	assert.True(t, thresholds.significant(cur, prev))
}

func TestAnalyzeHealthTrends_TooLittleHistory(t *testing.T) {
	predictor := NewMaintenancePredictor()

	history := []models.TelemetrySample{steadySample(80), steadySample(79), steadySample(78), steadySample(77)}
	assert.Nil(t, predictor.AnalyzeHealthTrends(uuid.NewString(), history))
}

func TestAnalyzeHealthTrends_HealthyDevice(t *testing.T) {
	predictor := NewMaintenancePredictor()
	fixed := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	predictor.now = func() time.Time { return fixed }

	history := make([]models.TelemetrySample, 10)
	for i := range history {
		history[i] = steadySample(80)
	}

	prediction := predictor.AnalyzeHealthTrends("dev", history)
	require.NotNil(t, prediction)
	assert.Equal(t, "dev", prediction.DeviceID)
	assert.Equal(t, 1.0, prediction.HealthScore)
	assert.Equal(t, 0.85, prediction.Confidence)
	assert.Equal(t, 0.0, prediction.BatteryDegradationRate)
	assert.Equal(t, fixed.Add(90*24*time.Hour), prediction.PredictedMaintenanceDate)
	assert.Equal(t, []string{"Routine check"}, prediction.RecommendedActions)
}

func TestAnalyzeHealthTrends_DegradedDevice(t *testing.T) {
	predictor := NewMaintenancePredictor()
	fixed := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	predictor.now = func() time.Time { return fixed }

	// steep battery decline, large position swings, volatile temperature
	history := make([]models.TelemetrySample, 5)
	for i := range history {
		history[i] = models.TelemetrySample{
			Battery:     100 - float64(i)*25,
			Temperature: float64(i%2) * 40,
			Lat:         float64(i % 2),
			Lon:         0,
		}
	}

	prediction := predictor.AnalyzeHealthTrends("dev", history)
	require.NotNil(t, prediction)
	assert.InDelta(t, 0.3, prediction.HealthScore, 1e-9)
	assert.Equal(t, fixed.Add(30*24*time.Hour), prediction.PredictedMaintenanceDate)
	assert.InDelta(t, -25.0, prediction.BatteryDegradationRate, 1e-9)
	assert.Contains(t, prediction.RecommendedActions, "Scheduled maintenance")
	assert.Contains(t, prediction.RecommendedActions, "Battery replacement recommended")
}

func TestHealthScore_Clamped(t *testing.T) {
	// absurd positive slope cannot push the score past 1
	assert.Equal(t, 1.0, healthScore(100, 0, 0))
	// absurd decline with maximal usage bottoms out at the base weight
	assert.InDelta(t, 0.3, healthScore(-100, 1e6, 1e6), 1e-9)
}

func TestBatteryDegradationRate(t *testing.T) {
	history := make([]models.TelemetrySample, 10)
	for i := range history {
		history[i] = steadySample(100 - float64(i)*2)
	}
	assert.InDelta(t, -2.0, batteryDegradationRate(history), 1e-9)

	assert.Equal(t, 0.0, batteryDegradationRate(history[:1]))
}
