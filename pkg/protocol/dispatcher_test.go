package protocol

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleettrack.xyz/fleet-telemetry-service/pkg/common"
	"fleettrack.xyz/fleet-telemetry-service/pkg/fleet"
	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
	_ "fleettrack.xyz/fleet-telemetry-service/pkg/testing"
)

type fakeAdapter struct {
	name     string
	startErr error
	sendErr  error
	sendHang time.Duration

	started bool
	stopped bool
	sent    []models.Command
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) Start(ctx context.Context) error {
	if a.startErr != nil {
		return a.startErr
	}
	a.started = true
	return nil
}

func (a *fakeAdapter) Stop() error {
	a.stopped = true
	return nil
}

func (a *fakeAdapter) SendCommand(deviceID string, cmd models.Command) error {
	if a.sendHang > 0 {
		time.Sleep(a.sendHang)
	}
	if a.sendErr != nil {
		return a.sendErr
	}
	a.sent = append(a.sent, cmd)
	return nil
}

func TestDispatcher_StartAllDegradesFailures(t *testing.T) {
	common.SetTestLoggerNop()

	d := NewDispatcher()
	good := &fakeAdapter{name: "mqtt"}
	bad := &fakeAdapter{name: "coap", startErr: errors.New("port taken")}
	d.Register(good)
	d.Register(bad)

	d.StartAll(context.Background())

	status := d.Status()
	assert.True(t, status["mqtt"])
	assert.False(t, status["coap"])
	assert.True(t, good.started)
}

func TestDispatcher_SendCommand(t *testing.T) {
	common.SetTestLoggerNop()

	d := NewDispatcher()
	adapter := &fakeAdapter{name: "mqtt"}
	d.Register(adapter)
	d.StartAll(context.Background())

	cmd := models.Command{CommandID: "c1", Type: "reboot"}
	require.NoError(t, d.SendCommand("device-1", cmd, "mqtt"))
	require.Len(t, adapter.sent, 1)
	assert.Equal(t, "c1", adapter.sent[0].CommandID)
}

func TestDispatcher_SendCommand_NoRoute(t *testing.T) {
	common.SetTestLoggerNop()

	d := NewDispatcher()

	// unknown protocol
	err := d.SendCommand("device-1", models.Command{}, "zigbee")
	assert.ErrorIs(t, err, fleet.ErrNoRoute)

	// registered but inactive (start failed)
	d.Register(&fakeAdapter{name: "coap", startErr: errors.New("boom")})
	d.StartAll(context.Background())
	err = d.SendCommand("device-1", models.Command{}, "coap")
	assert.ErrorIs(t, err, fleet.ErrNoRoute)
}

func TestDispatcher_SendCommand_AdapterError(t *testing.T) {
	common.SetTestLoggerNop()

	d := NewDispatcher()
	d.Register(&fakeAdapter{name: "mqtt", sendErr: errors.New("broker unreachable")})
	d.StartAll(context.Background())

	err := d.SendCommand("device-1", models.Command{}, "mqtt")
	require.Error(t, err)
	assert.NotErrorIs(t, err, fleet.ErrNoRoute)
	assert.Contains(t, err.Error(), "broker unreachable")
}

func TestDispatcher_SendCommand_Timeout(t *testing.T) {
	common.SetTestLoggerNop()

	d := NewDispatcher()
	d.SendTimeout = 20 * time.Millisecond
	d.Register(&fakeAdapter{name: "mqtt", sendHang: 200 * time.Millisecond})
	d.StartAll(context.Background())

	start := time.Now()
	err := d.SendCommand("device-1", models.Command{}, "mqtt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestDispatcher_StopAll(t *testing.T) {
	common.SetTestLoggerNop()

	d := NewDispatcher()
	adapter := &fakeAdapter{name: "mqtt"}
	d.Register(adapter)
	d.StartAll(context.Background())
	d.StopAll()

	assert.True(t, adapter.stopped)
	assert.False(t, d.Status()["mqtt"])
}
