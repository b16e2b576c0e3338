package http

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"fleettrack.xyz/fleet-telemetry-service/pkg/fleet"
	"fleettrack.xyz/fleet-telemetry-service/pkg/protocol"
	"fleettrack.xyz/fleet-telemetry-service/pkg/ws"
)

type RestfulServer struct {
	Server *gin.Engine
	Fleet  *fleet.Fleet

	// Hub serves the live alert feed on /ws; nil disables the route.
	Hub *ws.Hub
	// Dispatcher backs the protocol status view and the LoRaWAN bridge
	// endpoints; nil disables them.
	Dispatcher       *protocol.Dispatcher
	RateLimiterStore *fleet.RateLimiterStore
}

func (rs *RestfulServer) GetLimiter(deviceID string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(deviceID)
	}
}

func (rs *RestfulServer) CheckDeviceLimiter(deviceID string) bool {
	limiter := rs.GetLimiter(deviceID)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) SetLimiter(deviceID string, deviceRate float64, deviceBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(deviceID, rate.Limit(deviceRate), deviceBurst)
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/healthz", rs.HealthCheck)

	// ingestion endpoints, one per bridged transport
	rs.Server.POST("/http/telemetry", rs.PostTelemetry("http"))
	rs.Server.POST("/http/alerts", rs.PostAlert("http"))
	rs.Server.POST("/coap/telemetry", rs.PostTelemetry("coap"))

	api := rs.Server.Group("/api")
	{
		api.GET("/devices", rs.ListDevices)
		api.POST("/devices", rs.RegisterDevice)
		api.GET("/latest", rs.LatestTelemetry)
		api.GET("/alerts", rs.GetFleetAlerts)
		api.GET("/geofences", rs.ListGeofences)
		api.GET("/protocols", rs.ProtocolStatus)
		api.GET("/edge/insights", rs.EdgeInsights)
		api.GET("/analytics/health-scores", rs.HealthScores)

		api.POST("/lorawan/devices", rs.RegisterLoRaWANDevice)
		api.POST("/lorawan/uplink", rs.LoRaWANUplink)

		device := api.Group("/devices/:device_id")
		{
			device.GET("", rs.GetDevice)
			device.GET("/config", rs.GetConfig)
			device.PUT("/config", rs.UpdateConfig)
			device.GET("/alerts", rs.GetDeviceAlerts)
			device.GET("/commands", rs.GetCommands)
			device.POST("/commands", rs.PostCommand)
			device.POST("/commands/:command_id/ack", rs.AcknowledgeCommand)
			device.GET("/geofence", rs.GetGeofence)
			device.POST("/geofence", rs.SetGeofence)
			device.DELETE("/geofence", rs.DeleteGeofence)
			device.GET("/maintenance", rs.GetMaintenance)
			device.GET("/edge", rs.GetEdgeInsight)
			device.POST("/limiter", rs.PostLimiter)
		}
	}

	if rs.Hub != nil {
		rs.Server.GET("/ws", rs.ServeAlertFeed)
	}
}
