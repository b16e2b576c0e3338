package protocol

import (
	"context"

	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
)

// Sink is what every adapter calls with its protocol-tagged raw messages.
// The telemetry pipeline implements it; adapters never touch device state
// directly.
type Sink interface {
	SubmitTelemetry(raw models.RawMessage) error
	SubmitAlert(raw models.RawMessage) error
}

// Adapter is one wire-protocol endpoint. Start failures are not fatal to the
// process; the dispatcher degrades the adapter to inactive instead.
type Adapter interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	SendCommand(deviceID string, cmd models.Command) error
}
