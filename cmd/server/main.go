package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"fleettrack.xyz/fleet-telemetry-service/pkg/common"
	"fleettrack.xyz/fleet-telemetry-service/pkg/db"
	"fleettrack.xyz/fleet-telemetry-service/pkg/fleet"
	fleetHttp "fleettrack.xyz/fleet-telemetry-service/pkg/http"
	"fleettrack.xyz/fleet-telemetry-service/pkg/protocol"
	"fleettrack.xyz/fleet-telemetry-service/pkg/ws"
)

func main() {
	var err error

	err = godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file, copy .env.example to .env first if in development")
	}

	var dbInstance *db.DB
	fleetDbType := os.Getenv(common.EnvKeyFleetDBType)
	switch fleetDbType {
	case "file":
		dbInstance = db.GetInstance(db.UseSqliteDialector())
	case "memory":
		dbInstance = db.GetInstance(db.UseMemorySqliteDialector())
	case "none":
		dbInstance = nil
	default:
		log.Fatal("Unknown FLEET_DB_TYPE: " + fleetDbType)
	}

	httpHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyFleetHttpHostPort))
	mqttBroker := strings.TrimSpace(os.Getenv(common.EnvKeyFleetMqttBroker))

	var defaultRate float64
	var defaultBurst int64

	if defaultRate, err = strconv.ParseFloat(os.Getenv(common.EnvKeyFleetDefaultRate), 64); err != nil {
		log.Fatal("Invalid FLEET_DEFAULT_RATE, or not set in .env, should be a float64 value")
	}

	if defaultBurst, err = strconv.ParseInt(os.Getenv(common.EnvKeyFleetDefaultBurst), 10, 64); err != nil {
		log.Fatal("Invalid FLEET_DEFAULT_BURST, or not set in .env, should be an int value")
	}

	logger := common.GetLogger()

	fleetCore := fleet.NewFleet(fleet.NewStateStore())

	if cadence := os.Getenv(common.EnvKeyFleetAnalyticsCadence); cadence != "" {
		n, err := strconv.Atoi(cadence)
		if err != nil || n <= 0 {
			log.Fatal("Invalid FLEET_ANALYTICS_CADENCE, should be a positive int value")
		}
		fleetCore.Cadence = n
	}

	if os.Getenv(common.EnvKeyFleetEdgeCompression) == "true" {
		fleetCore.Compression = fleet.DefaultCompressionThresholds()
	}

	if dbInstance != nil {
		fleetCore.Archive = db.NewArchive(dbInstance)
	}

	// industrial mirrors run as post-ingestion hooks keyed by protocol tag
	fleetCore.RegisterTelemetryHandler("opcua", protocol.MirrorHandler("opcua", protocol.NewOPCUAMirror()))
	fleetCore.RegisterTelemetryHandler("modbus", protocol.MirrorHandler("modbus", protocol.NewModbusMirror()))

	dispatcher := protocol.NewDispatcher()
	if mqttBroker != "" {
		dispatcher.Register(protocol.NewMQTTAdapter(mqttBroker, fleetCore.Pipeline))
	}
	dispatcher.Register(protocol.NewLoRaWANAdapter(fleetCore.Pipeline))
	dispatcher.StartAll(context.Background())
	defer dispatcher.StopAll()

	fleetCore.Sender = dispatcher

	hub := ws.NewHub()
	go hub.Run()
	fleetCore.AddAlertSink(hub)

	if httpHostPort == "" {
		// fallback to default http port
		httpHostPort = ":1080"
	}

	logger.Info("Starting HTTP server on port " + httpHostPort)
	rs := &fleetHttp.RestfulServer{
		Server:           gin.Default(),
		Fleet:            fleetCore,
		Hub:              hub,
		Dispatcher:       dispatcher,
		RateLimiterStore: fleet.NewRateLimiterStore(rate.Limit(defaultRate), int(defaultBurst)),
	}
	rs.Setup()

	logger.Info("http server created with:",
		zap.String("default_limiter",
			fmt.Sprintf("{\"default_rate\": %v, \"default_burst\": %v}", defaultRate, defaultBurst)))

	logger.Info("Starting HTTP server on: " + httpHostPort)
	if err := rs.Server.Run(httpHostPort); err != nil {
		log.Fatalf("http server failed to serve: %v", err)
	}
}
