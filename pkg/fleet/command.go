package fleet

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleettrack.xyz/fleet-telemetry-service/pkg/common"
	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
)

// enqueueCommand appends a new pending command to the device's queue (no
// de-duplication, queue unbounded) and attempts delivery through the Sender.
// Delivery outcome: nil error -> sent, ErrNoRoute -> stays pending, any other
// error -> failed. The device lock is not held during delivery.
func (f *Fleet) enqueueCommand(deviceID string, cmdType string, params map[string]any) (models.Command, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameFleetCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryCommand),
	)

	ds, ok := f.Store.lookup(deviceID)
	if !ok {
		return models.Command{}, ErrDeviceNotFound
	}

	cmd := &models.Command{
		CommandID:  uuid.NewString(),
		Type:       cmdType,
		Parameters: params,
		Timestamp:  f.now().UTC(),
		Status:     models.CommandStatusPending,
	}

	ds.mu.Lock()
	if ds.record == nil {
		ds.mu.Unlock()
		return models.Command{}, ErrDeviceNotFound
	}
	protocol := ds.record.Protocol
	ds.commands = append(ds.commands, cmd)
	ds.mu.Unlock()

	logger.Info("Queued command for device",
		zap.String("device_id", deviceID), zap.Reflect("command", cmd))

	status := models.CommandStatusPending
	if f.Sender != nil {
		err := f.Sender.SendCommand(deviceID, *cmd, protocol)
		switch {
		case err == nil:
			status = models.CommandStatusSent
			logger.Info("Sent command to device",
				zap.String("device_id", deviceID),
				zap.String("command_id", cmd.CommandID),
				zap.String("protocol", protocol))
		case errors.Is(err, ErrNoRoute):
			logger.Warn("No route for command, left pending",
				zap.String("device_id", deviceID),
				zap.String("command_id", cmd.CommandID),
				zap.String("protocol", protocol))
		default:
			status = models.CommandStatusFailed
			logger.Warn("Command delivery failed",
				zap.String("device_id", deviceID),
				zap.String("command_id", cmd.CommandID),
				zap.Error(err))
		}
	}

	// The device may acknowledge while delivery is in flight; acknowledged is
	// terminal, so the delivery outcome only applies to a still-pending command.
	ds.mu.Lock()
	if cmd.Status == models.CommandStatusPending {
		cmd.Status = status
	}
	result := *cmd
	ds.mu.Unlock()

	return result, nil
}

// acknowledgeCommand transitions a command to acknowledged and stamps the ack
// time. Acknowledging an already-acknowledged command is a no-op; an unknown
// id is ErrCommandNotFound.
func (f *Fleet) acknowledgeCommand(deviceID string, commandID string) error {
	logger := common.GetLoggerWith(
		common.LoggerNameFleetCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryCommand),
	)

	ds, ok := f.Store.lookup(deviceID)
	if !ok {
		return ErrDeviceNotFound
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	for _, cmd := range ds.commands {
		if cmd.CommandID != commandID {
			continue
		}
		if cmd.Status == models.CommandStatusAcknowledged {
			return nil
		}
		now := f.now().UTC()
		cmd.Status = models.CommandStatusAcknowledged
		cmd.AckTimestamp = &now
		logger.Info("Command acknowledged",
			zap.String("device_id", deviceID), zap.String("command_id", commandID))
		return nil
	}
	return ErrCommandNotFound
}

// deviceCommands returns a copy of the device's full command queue in enqueue
// order.
func (f *Fleet) deviceCommands(deviceID string) ([]models.Command, error) {
	ds, ok := f.Store.lookup(deviceID)
	if !ok {
		return nil, ErrDeviceNotFound
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.record == nil {
		return nil, ErrDeviceNotFound
	}
	return common.Mapper(ds.commands, func(c *models.Command) models.Command { return *c }), nil
}

type ICommandImpl struct {
	fleet *Fleet
}

func (ic *ICommandImpl) EnqueueCommand(deviceID string, cmdType string, params map[string]any) (models.Command, error) {
	return ic.fleet.enqueueCommand(deviceID, cmdType, params)
}

func (ic *ICommandImpl) AcknowledgeCommand(deviceID string, commandID string) error {
	return ic.fleet.acknowledgeCommand(deviceID, commandID)
}

func (ic *ICommandImpl) DeviceCommands(deviceID string) ([]models.Command, error) {
	return ic.fleet.deviceCommands(deviceID)
}

func (f *Fleet) GetICommand() ICommand {
	return &ICommandImpl{fleet: f}
}
