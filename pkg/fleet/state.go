package fleet

import (
	"sort"
	"sync"

	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
)

const (
	// DefaultHistoryCapacity bounds the per-device telemetry ring.
	DefaultHistoryCapacity = 500
	// DefaultAlertCapacity bounds the single global alert sequence.
	DefaultAlertCapacity = 1000
)

// deviceState is everything the pipeline owns for one device id. All fields
// are guarded by mu; adapters from different protocols contend here when the
// same device reports over more than one transport.
type deviceState struct {
	mu sync.Mutex

	record *models.DeviceRecord
	config models.DeviceConfig
	// samples counts every recorded sample for this device. The history ring
	// length pins at capacity, so analytics decimation keys off this counter.
	samples     int
	history     *Ring[models.TelemetrySample]
	current     *models.TelemetrySample
	geofence    *models.GeofenceConfig
	containment models.GeofenceContainment
	commands    []*models.Command
	prediction  *models.HealthPrediction
	insight     *models.EdgeInsight
}

// StateStore is the process-lifetime, in-memory store behind the Fleet. The
// device map and the alert ring carry their own locks; per-device state is
// serialized by the deviceState mutex.
type StateStore struct {
	mu         sync.RWMutex
	devices    map[string]*deviceState
	historyCap int

	alertMu sync.Mutex
	alerts  *Ring[models.Alert]
}

func NewStateStore() *StateStore {
	return &StateStore{
		devices:    make(map[string]*deviceState),
		historyCap: DefaultHistoryCapacity,
		alerts:     NewRing[models.Alert](DefaultAlertCapacity),
	}
}

// device returns the state for deviceID, creating an empty one on first use.
func (s *StateStore) device(deviceID string) *deviceState {
	s.mu.RLock()
	ds, ok := s.devices[deviceID]
	s.mu.RUnlock()
	if ok {
		return ds
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ds, ok = s.devices[deviceID]; ok {
		return ds
	}
	ds = &deviceState{history: NewRing[models.TelemetrySample](s.historyCap)}
	s.devices[deviceID] = ds
	return ds
}

// lookup returns the state for deviceID without creating it.
func (s *StateStore) lookup(deviceID string) (*deviceState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.devices[deviceID]
	return ds, ok
}

func (s *StateStore) deviceIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.devices))
	for id := range s.devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *StateStore) AppendAlert(alert models.Alert) {
	s.alertMu.Lock()
	defer s.alertMu.Unlock()
	s.alerts.Append(alert)
}

// Alerts returns the retained global alert sequence, oldest first.
func (s *StateStore) Alerts() []models.Alert {
	s.alertMu.Lock()
	defer s.alertMu.Unlock()
	return s.alerts.Items()
}
