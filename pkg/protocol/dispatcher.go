package protocol

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"fleettrack.xyz/fleet-telemetry-service/pkg/common"
	"fleettrack.xyz/fleet-telemetry-service/pkg/fleet"
	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
)

// DefaultSendTimeout bounds one outbound command delivery. A hung adapter
// produces a delivery error, never a stalled caller.
const DefaultSendTimeout = 5 * time.Second

// Dispatcher owns the adapter collection, keyed by protocol tag. It
// implements fleet.CommandSender for the outbound direction.
type Dispatcher struct {
	mu          sync.RWMutex
	adapters    map[string]Adapter
	active      map[string]bool
	SendTimeout time.Duration
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		adapters:    make(map[string]Adapter),
		active:      make(map[string]bool),
		SendTimeout: DefaultSendTimeout,
	}
}

func (d *Dispatcher) Register(adapter Adapter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.adapters[adapter.Name()] = adapter
}

// StartAll starts every registered adapter. A startup failure (broker
// unreachable, port taken) degrades that protocol to inactive and is left for
// operator visibility; it never takes the process down.
func (d *Dispatcher) StartAll(ctx context.Context) {
	logger := common.GetLoggerWith(
		common.LoggerNameProtocolRouter,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryAdapter),
	)

	d.mu.Lock()
	defer d.mu.Unlock()
	for name, adapter := range d.adapters {
		if err := adapter.Start(ctx); err != nil {
			d.active[name] = false
			logger.Warn("Adapter failed to start, degraded to inactive",
				zap.String("protocol", name), zap.Error(err))
			continue
		}
		d.active[name] = true
		logger.Info("Adapter started", zap.String("protocol", name))
	}
}

func (d *Dispatcher) StopAll() {
	logger := common.GetLoggerWith(
		common.LoggerNameProtocolRouter,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryAdapter),
	)

	d.mu.Lock()
	defer d.mu.Unlock()
	for name, adapter := range d.adapters {
		if !d.active[name] {
			continue
		}
		if err := adapter.Stop(); err != nil {
			logger.Warn("Adapter stop failed", zap.String("protocol", name), zap.Error(err))
		}
		d.active[name] = false
	}
}

// Status reports per-protocol liveness for the operator surface.
func (d *Dispatcher) Status() map[string]bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	status := make(map[string]bool, len(d.adapters))
	for name := range d.adapters {
		status[name] = d.active[name]
	}
	return status
}

// Adapter returns the registered adapter for a protocol tag.
func (d *Dispatcher) Adapter(protocol string) (Adapter, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.adapters[protocol]
	return a, ok
}

// SendCommand delivers cmd through the adapter registered for protocol,
// bounded by SendTimeout. Unknown or inactive protocols return
// fleet.ErrNoRoute: delivery was never attempted.
func (d *Dispatcher) SendCommand(deviceID string, cmd models.Command, protocol string) error {
	d.mu.RLock()
	adapter, ok := d.adapters[protocol]
	active := d.active[protocol]
	d.mu.RUnlock()

	if !ok || !active {
		return fleet.ErrNoRoute
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- adapter.SendCommand(deviceID, cmd)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("adapter %s: %w", protocol, err)
		}
		return nil
	case <-time.After(d.SendTimeout):
		return fmt.Errorf("adapter %s: command send timed out", protocol)
	}
}
