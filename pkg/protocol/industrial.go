package protocol

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"fleettrack.xyz/fleet-telemetry-service/pkg/common"
	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
)

// Industrial mirrors expose the latest readings of tagged devices in the
// address spaces industrial clients expect. They are read models fed by the
// pipeline, not ingestion paths.

// OPCUAMirror maintains an OPC-UA style node tree: one folder per device,
// one value node per reading.
type OPCUAMirror struct {
	mu     sync.RWMutex
	nodes  map[string]map[string]any
	logger *zap.Logger
}

func NewOPCUAMirror() *OPCUAMirror {
	return &OPCUAMirror{
		nodes: make(map[string]map[string]any),
		logger: common.GetLoggerWith(
			common.LoggerNameProtocolRouter,
			zap.String(common.LoggerFieldCategory, common.LoggerCategoryAdapter),
			zap.String("protocol", "opcua"),
		),
	}
}

// HandleTelemetry updates the device's node values from one sample.
func (o *OPCUAMirror) HandleTelemetry(sample models.TelemetrySample) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nodes[sample.DeviceID] = map[string]any{
		"ns=2;s=" + sample.DeviceID + ".Battery":     sample.Battery,
		"ns=2;s=" + sample.DeviceID + ".Temperature": sample.Temperature,
		"ns=2;s=" + sample.DeviceID + ".Status":      sample.Status,
		"ns=2;s=" + sample.DeviceID + ".Timestamp":   sample.Timestamp,
	}
	o.logger.Debug("Mirrored sample to node tree", zap.String("device_id", sample.DeviceID))
	return nil
}

// Nodes returns a copy of the device's node values.
func (o *OPCUAMirror) Nodes(deviceID string) (map[string]any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	nodes, ok := o.nodes[deviceID]
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(nodes))
	for k, v := range nodes {
		out[k] = v
	}
	return out, true
}

// ModbusMirror maintains a holding-register image per device. Values are
// scaled by 10 and truncated to fit 16-bit registers, matching the common
// fixed-point convention.
type ModbusMirror struct {
	mu        sync.RWMutex
	registers map[string][]uint16
	logger    *zap.Logger
}

func NewModbusMirror() *ModbusMirror {
	return &ModbusMirror{
		registers: make(map[string][]uint16),
		logger: common.GetLoggerWith(
			common.LoggerNameProtocolRouter,
			zap.String(common.LoggerFieldCategory, common.LoggerCategoryAdapter),
			zap.String("protocol", "modbus"),
		),
	}
}

func (m *ModbusMirror) HandleTelemetry(sample models.TelemetrySample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registers[sample.DeviceID] = []uint16{
		scaleRegister(sample.Battery),
		scaleRegister(sample.Temperature),
		scaleRegister(float64(sample.SignalStrength) + 200), // offset keeps dBm non-negative
	}
	m.logger.Debug("Mirrored sample to register image", zap.String("device_id", sample.DeviceID))
	return nil
}

func (m *ModbusMirror) Registers(deviceID string) ([]uint16, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	regs, ok := m.registers[deviceID]
	if !ok {
		return nil, false
	}
	out := make([]uint16, len(regs))
	copy(out, regs)
	return out, true
}

func scaleRegister(v float64) uint16 {
	scaled := v * 10
	if scaled < 0 {
		return 0
	}
	if scaled > 65535 {
		return 65535
	}
	return uint16(scaled)
}

// MirrorHandler adapts a mirror to the pipeline's per-protocol handler hook.
func MirrorHandler(name string, mirror interface {
	HandleTelemetry(models.TelemetrySample) error
}) func(models.TelemetrySample) error {
	return func(sample models.TelemetrySample) error {
		if err := mirror.HandleTelemetry(sample); err != nil {
			return fmt.Errorf("%s mirror: %w", name, err)
		}
		return nil
	}
}
