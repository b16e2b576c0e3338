package fleet

import (
	"time"

	"go.uber.org/zap"

	"fleettrack.xyz/fleet-telemetry-service/pkg/common"
	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
)

// DeviceView is the composite the operator surface reads: the registry record
// joined with the derived per-device state.
type DeviceView struct {
	models.DeviceRecord
	LastSeen              *time.Time                 `json:"last_seen,omitempty"`
	Online                bool                       `json:"online"`
	Config                models.DeviceConfig        `json:"config"`
	PendingCommands       []models.Command           `json:"pending_commands"`
	Geofence              *models.GeofenceConfig     `json:"geofence,omitempty"`
	GeofenceState         models.GeofenceContainment `json:"geofence_state"`
	EdgeInsights          *models.EdgeInsight        `json:"edge_insights,omitempty"`
	PredictiveMaintenance *models.HealthPrediction   `json:"predictive_maintenance,omitempty"`
	HealthScore           float64                    `json:"health_score"`
	TelemetryHistory      []models.TelemetrySample   `json:"telemetry_history,omitempty"`
}

func DefaultDeviceConfig() models.DeviceConfig {
	return models.DeviceConfig{
		TelemetryInterval: 30,
		HeartbeatInterval: 60,
		AlertThresholds: map[string]float64{
			"battery":         20,
			"temperature":     40,
			"signal_strength": -100,
		},
	}
}

// registerDevice is an idempotent upsert: registering a known device
// overwrites its record and resets its config to defaults.
func (f *Fleet) registerDevice(deviceID string, input *models.DeviceRecord) (models.DeviceConfig, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameFleetCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryRegistry),
	)

	record := models.DeviceRecord{
		DeviceID:        deviceID,
		DeviceType:      input.DeviceType,
		Protocol:        input.Protocol,
		FirmwareVersion: input.FirmwareVersion,
		Capabilities:    input.Capabilities,
		RegisteredAt:    f.now().UTC(),
		Status:          "active",
	}
	if record.DeviceType == "" {
		record.DeviceType = "unknown"
	}
	if record.Protocol == "" {
		record.Protocol = "unknown"
	}
	if record.FirmwareVersion == "" {
		record.FirmwareVersion = "1.0.0"
	}
	if record.Capabilities == nil {
		record.Capabilities = []string{}
	}
	config := DefaultDeviceConfig()

	ds := f.Store.device(deviceID)
	ds.mu.Lock()
	ds.record = &record
	ds.config = config
	ds.mu.Unlock()

	logger.Info("Registered device", zap.String("device_id", deviceID), zap.Reflect("record", record))
	return config, nil
}

// autoRegisterLocked registers a device on its first telemetry. Caller holds
// ds.mu. Firmware stays "unknown" here; only explicit registration claims a
// version.
func (f *Fleet) autoRegisterLocked(ds *deviceState, deviceID, deviceType, protocol string) {
	if ds.record != nil {
		return
	}
	if deviceType == "" {
		deviceType = "unknown"
	}
	if protocol == "" {
		protocol = "unknown"
	}
	ds.record = &models.DeviceRecord{
		DeviceID:        deviceID,
		DeviceType:      deviceType,
		Protocol:        protocol,
		FirmwareVersion: "unknown",
		Capabilities:    []string{},
		RegisteredAt:    f.now().UTC(),
		Status:          "active",
	}
	ds.config = DefaultDeviceConfig()
}

func (f *Fleet) getDevice(deviceID string) (*models.DeviceRecord, error) {
	ds, ok := f.Store.lookup(deviceID)
	if !ok {
		return nil, ErrDeviceNotFound
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.record == nil {
		return nil, ErrDeviceNotFound
	}
	record := *ds.record
	return &record, nil
}

func (f *Fleet) listDevices() []DeviceView {
	ids := f.Store.deviceIDs()
	views := make([]DeviceView, 0, len(ids))
	for _, id := range ids {
		ds, ok := f.Store.lookup(id)
		if !ok {
			continue
		}
		ds.mu.Lock()
		if ds.record != nil {
			views = append(views, f.viewLocked(ds, 0))
		}
		ds.mu.Unlock()
	}
	return views
}

// DeviceDetail returns the full view for one device, with the last
// historyTail telemetry entries attached.
func (f *Fleet) DeviceDetail(deviceID string, historyTail int) (DeviceView, error) {
	ds, ok := f.Store.lookup(deviceID)
	if !ok {
		return DeviceView{}, ErrDeviceNotFound
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.record == nil {
		return DeviceView{}, ErrDeviceNotFound
	}
	return f.viewLocked(ds, historyTail), nil
}

// viewLocked assembles a DeviceView. Caller holds ds.mu and has checked
// ds.record is set.
func (f *Fleet) viewLocked(ds *deviceState, historyTail int) DeviceView {
	view := DeviceView{
		DeviceRecord:  *ds.record,
		Config:        ds.config,
		Geofence:      ds.geofence,
		GeofenceState: ds.containment,
		EdgeInsights:  ds.insight,
		HealthScore:   1.0, // perfect until analytics says otherwise
	}
	if view.GeofenceState == "" {
		view.GeofenceState = models.ContainmentUnknown
	}
	if ds.current != nil {
		ts := ds.current.Timestamp
		view.LastSeen = &ts
		view.Online = f.now().Sub(ts) < OnlineWindow
	}
	view.PendingCommands = common.Mapper(ds.commands, func(c *models.Command) models.Command { return *c })
	if ds.prediction != nil {
		p := *ds.prediction
		view.PredictiveMaintenance = &p
		view.HealthScore = p.HealthScore
	}
	if historyTail > 0 {
		view.TelemetryHistory = ds.history.Tail(historyTail)
	}
	return view
}

func (f *Fleet) getConfig(deviceID string) (models.DeviceConfig, error) {
	ds, ok := f.Store.lookup(deviceID)
	if !ok {
		return models.DeviceConfig{}, ErrDeviceNotFound
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.record == nil {
		return models.DeviceConfig{}, ErrDeviceNotFound
	}
	return ds.config, nil
}

// updateConfig merges the patch into the stored config (zero fields leave the
// stored value alone, threshold entries merge key-wise), then queues a
// config_update command toward the device.
func (f *Fleet) updateConfig(deviceID string, patch models.DeviceConfig) (models.DeviceConfig, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameFleetCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryRegistry),
	)

	ds, ok := f.Store.lookup(deviceID)
	if !ok {
		return models.DeviceConfig{}, ErrDeviceNotFound
	}

	ds.mu.Lock()
	if ds.record == nil {
		ds.mu.Unlock()
		return models.DeviceConfig{}, ErrDeviceNotFound
	}
	if patch.TelemetryInterval > 0 {
		ds.config.TelemetryInterval = patch.TelemetryInterval
	}
	if patch.HeartbeatInterval > 0 {
		ds.config.HeartbeatInterval = patch.HeartbeatInterval
	}
	if patch.AlertThresholds != nil {
		if ds.config.AlertThresholds == nil {
			ds.config.AlertThresholds = map[string]float64{}
		}
		for k, v := range patch.AlertThresholds {
			ds.config.AlertThresholds[k] = v
		}
	}
	merged := ds.config
	ds.mu.Unlock()

	logger.Info("Updated config for device", zap.String("device_id", deviceID), zap.Reflect("config", merged))

	if _, err := f.Command.EnqueueCommand(deviceID, "config_update", map[string]any{"config": merged}); err != nil {
		logger.Warn("Failed to queue config_update command", zap.String("device_id", deviceID), zap.Error(err))
	}

	return merged, nil
}

// IsOnline reports whether the device produced telemetry within OnlineWindow.
func (f *Fleet) IsOnline(deviceID string) bool {
	ds, ok := f.Store.lookup(deviceID)
	if !ok {
		return false
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.current != nil && f.now().Sub(ds.current.Timestamp) < OnlineWindow
}

type IRegistryImpl struct {
	fleet *Fleet
}

func (ir *IRegistryImpl) RegisterDevice(deviceID string, input *models.DeviceRecord) (models.DeviceConfig, error) {
	return ir.fleet.registerDevice(deviceID, input)
}

func (ir *IRegistryImpl) GetDevice(deviceID string) (*models.DeviceRecord, error) {
	return ir.fleet.getDevice(deviceID)
}

func (ir *IRegistryImpl) ListDevices() []DeviceView {
	return ir.fleet.listDevices()
}

func (ir *IRegistryImpl) GetConfig(deviceID string) (models.DeviceConfig, error) {
	return ir.fleet.getConfig(deviceID)
}

func (ir *IRegistryImpl) UpdateConfig(deviceID string, patch models.DeviceConfig) (models.DeviceConfig, error) {
	return ir.fleet.updateConfig(deviceID, patch)
}

func (f *Fleet) GetIRegistry() IRegistry {
	return &IRegistryImpl{fleet: f}
}
