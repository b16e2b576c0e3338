package fleet_test

import (
	"bufio"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"fleettrack.xyz/fleet-telemetry-service/pkg/fleet"
	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
)

func newTestFleet() *fleet.Fleet {
	return fleet.NewFleet(fleet.NewStateStore())
}

func registerTestDevice(t *testing.T, f *fleet.Fleet, deviceID, protocol string) {
	t.Helper()
	_, err := f.Registry.RegisterDevice(deviceID, &models.DeviceRecord{
		DeviceType: "tracker",
		Protocol:   protocol,
	})
	require.NoError(t, err)
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}
