package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

var maxDevices int = 2000
var httpHostPort string = "127.0.0.1:1080"

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))

func main() {
	deviceIDs := make([]string, maxDevices)
	for i := 0; i < maxDevices; i++ {
		deviceIDs[i] = uuid.NewString()
	}
	fmt.Printf("generated %v device IDs\n", maxDevices)

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	var startTime time.Time
	var usedTime time.Duration

	startTime = time.Now()
	wg := sync.WaitGroup{}
	for i := 0; i < maxDevices; i++ {
		i := i
		wg.Add(1)
		go func() {
			registerDevice(deviceIDs[i])
			fmt.Printf("\rregistered device %v", i)
			wg.Done()
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\rregistered %v devices: used time=%v seconds, throughput=%v action/second\n",
		maxDevices, usedTime.Seconds(), float64(maxDevices)/usedTime.Seconds(),
	)

	startTime = time.Now()
	wg = sync.WaitGroup{}
	for i := 0; i < maxDevices; i++ {
		i := i
		wg.Add(1)
		go func() {
			doAction(deviceIDs[i])
			wg.Done()
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\n\rdid actions for %v devices: used time=%v seconds, throughput=%v action/second\n",
		maxDevices, usedTime.Seconds(), float64(maxDevices*3)/usedTime.Seconds(),
	)
}

func flipCoin() bool {
	return rnd.Int31n(100000)%2 == 0
}

func rndFloat64(min, max float64, decimal int) float64 {
	val := min + rnd.Float64()*(max-min)
	multiplier := float64(math.Pow10(decimal))
	return float64(math.Round(float64(val)*float64(multiplier))) / multiplier
}

func postJSON(path string, payload any) {
	jsonData, _ := json.Marshal(payload)
	resp, err := http.Post(fmt.Sprintf("http://%s%s", httpHostPort, path), "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		fmt.Printf("\nerror: %v\n", err)
		return
	}
	defer resp.Body.Close()
}

func registerDevice(deviceID string) {
	postJSON("/api/devices", map[string]any{
		"device_id":        deviceID,
		"device_type":      "tracker",
		"protocol":         "http",
		"firmware_version": "1.0.0",
		"capabilities":     []string{"gps", "battery"},
	})
}

func doAction(deviceID string) {
	actions := []func(){
		genPostTelemetryAction(deviceID),
		genGetAlertsAction(deviceID),
		genPostCommandAction(deviceID),
	}
	actionNames := []string{
		"PostTelemetry",
		"GetAlerts",
		"PostCommand",
	}
	rnd.Shuffle(len(actions), func(i, j int) {
		actions[i], actions[j] = actions[j], actions[i]
		actionNames[i], actionNames[j] = actionNames[j], actionNames[i]
	})
	for index, action := range actions {
		action()
		fmt.Printf("\rexecuted action %v for device %v", actionNames[index], deviceID)
		time.Sleep(time.Duration(100+rnd.Int31n(1000)) * time.Millisecond)
	}
}

func genPostTelemetryAction(deviceID string) func() {
	return func() {
		// spread load across the two bridged ingestion endpoints
		path := "/http/telemetry"
		if flipCoin() {
			path = "/coap/telemetry"
		}

		postJSON(path, map[string]any{
			"device_id":       deviceID,
			"timestamp":       time.Now().Format(time.RFC3339),
			"lat":             rndFloat64(34.0, 35.0, 6),
			"lon":             rndFloat64(-2.0, -1.0, 6),
			"battery":         rndFloat64(0.0, 100.0, 2),
			"temperature":     rndFloat64(0.0, 100.0, 2),
			"signal_strength": -int(rndFloat64(40.0, 120.0, 0)),
			"status":          "active",
		})
	}
}

func genGetAlertsAction(deviceID string) func() {
	return func() {
		resp, err := http.Get(fmt.Sprintf("http://%s/api/devices/%s/alerts", httpHostPort, deviceID))
		if err != nil {
			fmt.Printf("\nerror: %v\n", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			fmt.Printf("\nresponse status code != 200: %v\n", resp)
		}
	}
}

func genPostCommandAction(deviceID string) func() {
	return func() {
		postJSON(fmt.Sprintf("/api/devices/%s/commands", deviceID), map[string]any{
			"command":    "set_reporting_interval",
			"parameters": map[string]any{"interval_s": 30 + rnd.Int31n(300)},
		})
	}
}
