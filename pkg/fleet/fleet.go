package fleet

import (
	"sync"
	"time"

	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
)

//go:generate mockgen -source=fleet.go -destination=mocks/mocks.go -package=mocks

type IPipeline interface {
	SubmitTelemetry(raw models.RawMessage) error
	SubmitAlert(raw models.RawMessage) error
}

type IRegistry interface {
	RegisterDevice(deviceID string, input *models.DeviceRecord) (models.DeviceConfig, error)
	GetDevice(deviceID string) (*models.DeviceRecord, error)
	ListDevices() []DeviceView
	GetConfig(deviceID string) (models.DeviceConfig, error)
	UpdateConfig(deviceID string, patch models.DeviceConfig) (models.DeviceConfig, error)
}

type ICommand interface {
	EnqueueCommand(deviceID string, cmdType string, params map[string]any) (models.Command, error)
	AcknowledgeCommand(deviceID string, commandID string) error
	DeviceCommands(deviceID string) ([]models.Command, error)
}

type IHealth interface {
	DetectAnomaly(deviceID string, sample models.TelemetrySample) (bool, models.AnomalyCause)
	AnalyzeHealthTrends(deviceID string, history []models.TelemetrySample) *models.HealthPrediction
}

// CommandSender delivers an outbound command over the adapter registered for
// the device's protocol. A nil error means the command was handed to the
// adapter (pending -> sent). ErrNoRoute means no delivery was attempted and
// the command stays pending; any other error marks it failed.
type CommandSender interface {
	SendCommand(deviceID string, cmd models.Command, protocol string) error
}

// AlertSink receives every emitted alert, best-effort. Used for the live
// operator feed.
type AlertSink interface {
	PublishAlert(alert models.Alert)
}

// Archive persists canonical records as they flow through the pipeline.
// Failures are logged and never surface to ingestion.
type Archive interface {
	SaveSample(sample models.TelemetrySample) error
	SaveAlert(alert models.Alert) error
}

// TelemetryHandler is an industrial-protocol mirror invoked after a sample is
// recorded, best-effort, keyed by the sample's protocol tag.
type TelemetryHandler func(sample models.TelemetrySample) error

// DefaultAnalyticsCadence is how many retained samples pass between health
// analytics runs for a device.
const DefaultAnalyticsCadence = 10

// OnlineWindow is the recency window after which a silent device is reported
// offline.
const OnlineWindow = 5 * time.Minute

type Fleet struct {
	Store *StateStore

	Pipeline IPipeline
	Registry IRegistry
	Command  ICommand
	Health   IHealth

	// Sender routes outbound commands; nil means commands stay pending.
	Sender CommandSender
	// Archive is the optional sqlite sink; nil disables archiving.
	Archive Archive

	// Cadence is the analytics decimation factor (every Nth retained sample).
	Cadence int
	// Compression enables the insignificant-change pre-filter when non-nil.
	Compression *CompressionThresholds

	Scorer    *AnomalyScorer
	Predictor *MaintenancePredictor

	sinkMu sync.RWMutex
	sinks  []AlertSink

	handlerMu sync.RWMutex
	handlers  map[string]TelemetryHandler

	now func() time.Time
}

func NewFleet(store *StateStore) *Fleet {
	f := &Fleet{
		Store:     store,
		Cadence:   DefaultAnalyticsCadence,
		Scorer:    NewAnomalyScorer(),
		Predictor: NewMaintenancePredictor(),
		handlers:  make(map[string]TelemetryHandler),
		now:       time.Now,
	}
	f.WithServices(ServiceOpts{
		Pipeline: f.GetIPipeline(),
		Registry: f.GetIRegistry(),
		Command:  f.GetICommand(),
		Health:   f.GetIHealth(),
	})
	return f
}

type ServiceOpts struct {
	Pipeline IPipeline
	Registry IRegistry
	Command  ICommand
	Health   IHealth
}

func (f *Fleet) WithServices(opts ServiceOpts) *Fleet {
	if opts.Pipeline != nil {
		f.Pipeline = opts.Pipeline
	}
	if opts.Registry != nil {
		f.Registry = opts.Registry
	}
	if opts.Command != nil {
		f.Command = opts.Command
	}
	if opts.Health != nil {
		f.Health = opts.Health
	}
	return f
}

func (f *Fleet) AddAlertSink(sink AlertSink) {
	f.sinkMu.Lock()
	defer f.sinkMu.Unlock()
	f.sinks = append(f.sinks, sink)
}

// RegisterTelemetryHandler attaches an industrial-protocol mirror for the
// given protocol tag. The pipeline forwards every recorded sample of that
// protocol to it, best-effort.
func (f *Fleet) RegisterTelemetryHandler(protocol string, handler TelemetryHandler) {
	f.handlerMu.Lock()
	defer f.handlerMu.Unlock()
	f.handlers[protocol] = handler
}

func (f *Fleet) telemetryHandler(protocol string) (TelemetryHandler, bool) {
	f.handlerMu.RLock()
	defer f.handlerMu.RUnlock()
	h, ok := f.handlers[protocol]
	return h, ok
}

func (f *Fleet) alertSinks() []AlertSink {
	f.sinkMu.RLock()
	defer f.sinkMu.RUnlock()
	sinks := make([]AlertSink, len(f.sinks))
	copy(sinks, f.sinks)
	return sinks
}

func (f *Fleet) cadence() int {
	if f.Cadence > 0 {
		return f.Cadence
	}
	return DefaultAnalyticsCadence
}
