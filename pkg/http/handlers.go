package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"

	"fleettrack.xyz/fleet-telemetry-service/pkg/fleet"
	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
	"fleettrack.xyz/fleet-telemetry-service/pkg/protocol"
	"fleettrack.xyz/fleet-telemetry-service/pkg/ws"
)

func statusForError(err error) int {
	switch {
	case errors.Is(err, fleet.ErrDeviceNotFound),
		errors.Is(err, fleet.ErrCommandNotFound),
		errors.Is(err, fleet.ErrGeofenceNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// rawDeviceID mirrors the pipeline's identity resolution for rate limiting
// purposes only; the pipeline resolves again authoritatively.
func rawDeviceID(raw models.RawMessage) string {
	if id, ok := raw["device_id"].(string); ok && id != "" {
		return id
	}
	if id, ok := raw["id"].(string); ok && id != "" {
		return id
	}
	return models.UnknownDeviceID
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// PostTelemetry accepts the permissive raw telemetry mapping and tags it with
// the bridged transport before submission.
func (rs *RestfulServer) PostTelemetry(protocolTag string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw models.RawMessage
		if err := c.ShouldBindJSON(&raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}

		deviceID := rawDeviceID(raw)
		if !rs.CheckDeviceLimiter(deviceID) {
			c.Status(http.StatusTooManyRequests)
			return
		}

		raw["protocol"] = protocolTag
		raw["received_at"] = time.Now().UTC().Format(time.RFC3339Nano)

		if err := rs.Fleet.Pipeline.SubmitTelemetry(raw); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "received", "device_id": deviceID})
	}
}

func (rs *RestfulServer) PostAlert(protocolTag string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw models.RawMessage
		if err := c.ShouldBindJSON(&raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}

		deviceID := rawDeviceID(raw)
		if !rs.CheckDeviceLimiter(deviceID) {
			c.Status(http.StatusTooManyRequests)
			return
		}

		raw["protocol"] = protocolTag

		if err := rs.Fleet.Pipeline.SubmitAlert(raw); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "received", "device_id": deviceID})
	}
}

type RegisterRequest struct {
	DeviceID        string   `json:"device_id"`
	DeviceType      string   `json:"device_type"`
	Protocol        string   `json:"protocol"`
	FirmwareVersion string   `json:"firmware_version"`
	Capabilities    []string `json:"capabilities"`
}

var registerRequestSchema = z.Struct(z.Shape{
	"DeviceID":        z.String().Required(),
	"DeviceType":      z.String(),
	"Protocol":        z.String(),
	"FirmwareVersion": z.String(),
	"Capabilities":    z.Slice(z.String()),
})

func (rs *RestfulServer) RegisterDevice(c *gin.Context) {
	var req RegisterRequest
	if err := registerRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	config, err := rs.Fleet.Registry.RegisterDevice(req.DeviceID, &models.DeviceRecord{
		DeviceType:      req.DeviceType,
		Protocol:        req.Protocol,
		FirmwareVersion: req.FirmwareVersion,
		Capabilities:    req.Capabilities,
	})
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"device_id": req.DeviceID, "config": config})
}

func (rs *RestfulServer) ListDevices(c *gin.Context) {
	c.JSON(http.StatusOK, rs.Fleet.Registry.ListDevices())
}

func (rs *RestfulServer) GetDevice(c *gin.Context) {
	deviceID := c.Param("device_id")

	historyTail, err := strconv.Atoi(c.DefaultQuery("history", "0"))
	if err != nil || historyTail < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "history must be a non-negative integer"})
		return
	}

	view, err := rs.Fleet.DeviceDetail(deviceID, historyTail)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (rs *RestfulServer) GetConfig(c *gin.Context) {
	deviceID := c.Param("device_id")

	config, err := rs.Fleet.Registry.GetConfig(deviceID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, config)
}

func (rs *RestfulServer) UpdateConfig(c *gin.Context) {
	deviceID := c.Param("device_id")

	if !rs.CheckDeviceLimiter(deviceID) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	// all fields optional: zero values leave the stored config untouched
	var patch models.DeviceConfig
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}

	merged, err := rs.Fleet.Registry.UpdateConfig(deviceID, patch)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, merged)
}

type CommandRequest struct {
	Command    string         `json:"command"`
	Parameters map[string]any `json:"parameters"`
}

func (rs *RestfulServer) PostCommand(c *gin.Context) {
	deviceID := c.Param("device_id")

	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Command == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "command is required"})
		return
	}

	cmd, err := rs.Fleet.Command.EnqueueCommand(deviceID, req.Command, req.Parameters)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, cmd)
}

func (rs *RestfulServer) GetCommands(c *gin.Context) {
	deviceID := c.Param("device_id")

	commands, err := rs.Fleet.Command.DeviceCommands(deviceID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, commands)
}

func (rs *RestfulServer) AcknowledgeCommand(c *gin.Context) {
	deviceID := c.Param("device_id")
	commandID := c.Param("command_id")

	if err := rs.Fleet.Command.AcknowledgeCommand(deviceID, commandID); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "acknowledged", "command_id": commandID})
}

type GeofenceRequest struct {
	CenterLat     float64 `json:"center_lat"`
	CenterLon     float64 `json:"center_lon"`
	RadiusKm      float64 `json:"radius_km"`
	AlertOnBreach bool    `json:"alert_on_breach"`
	AlertOnReturn bool    `json:"alert_on_return"`
	Name          string  `json:"name"`
}

var geofenceRequestSchema = z.Struct(z.Shape{
	"CenterLat":     z.Float64().Required(),
	"CenterLon":     z.Float64().Required(),
	"RadiusKm":      z.Float64().Required().GT(0),
	"AlertOnBreach": z.Bool(),
	"AlertOnReturn": z.Bool(),
	"Name":          z.String(),
})

func (rs *RestfulServer) SetGeofence(c *gin.Context) {
	deviceID := c.Param("device_id")

	var req GeofenceRequest
	if err := geofenceRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	cfg := models.GeofenceConfig{
		CenterLat:     req.CenterLat,
		CenterLon:     req.CenterLon,
		RadiusKm:      req.RadiusKm,
		AlertOnBreach: req.AlertOnBreach,
		AlertOnReturn: req.AlertOnReturn,
		Name:          req.Name,
	}
	if err := rs.Fleet.SetGeofence(deviceID, cfg); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	saved, err := rs.Fleet.GeofenceFor(deviceID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (rs *RestfulServer) GetGeofence(c *gin.Context) {
	deviceID := c.Param("device_id")

	cfg, err := rs.Fleet.GeofenceFor(deviceID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"geofence": cfg,
		"state":    rs.Fleet.GeofenceState(deviceID),
	})
}

func (rs *RestfulServer) DeleteGeofence(c *gin.Context) {
	deviceID := c.Param("device_id")

	if err := rs.Fleet.RemoveGeofence(deviceID); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (rs *RestfulServer) ListGeofences(c *gin.Context) {
	c.JSON(http.StatusOK, rs.Fleet.Geofences())
}

func (rs *RestfulServer) GetDeviceAlerts(c *gin.Context) {
	deviceID := c.Param("device_id")

	if !rs.CheckDeviceLimiter(deviceID) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	alerts := rs.Fleet.DeviceAlerts(deviceID)
	if alerts == nil {
		alerts = []models.Alert{}
	}
	c.JSON(http.StatusOK, alerts)
}

func (rs *RestfulServer) GetFleetAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, rs.Fleet.Store.Alerts())
}

func (rs *RestfulServer) LatestTelemetry(c *gin.Context) {
	c.JSON(http.StatusOK, rs.Fleet.CurrentSnapshots())
}

func (rs *RestfulServer) GetMaintenance(c *gin.Context) {
	deviceID := c.Param("device_id")

	if _, err := rs.Fleet.Registry.GetDevice(deviceID); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	prediction := rs.Fleet.RefreshPrediction(deviceID)
	if prediction == nil {
		c.JSON(http.StatusOK, gin.H{
			"device_id": deviceID,
			"message":   "insufficient telemetry history for prediction",
		})
		return
	}

	c.JSON(http.StatusOK, prediction)
}

func (rs *RestfulServer) GetEdgeInsight(c *gin.Context) {
	deviceID := c.Param("device_id")

	if _, err := rs.Fleet.Registry.GetDevice(deviceID); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	response := gin.H{"device_id": deviceID, "anomaly_alerts": rs.Fleet.AnomalyAlerts(deviceID)}
	if insight, ok := rs.Fleet.Insight(deviceID); ok {
		response["insight"] = insight
	}
	c.JSON(http.StatusOK, response)
}

func (rs *RestfulServer) EdgeInsights(c *gin.Context) {
	c.JSON(http.StatusOK, rs.Fleet.EdgeInsights())
}

func (rs *RestfulServer) HealthScores(c *gin.Context) {
	c.JSON(http.StatusOK, rs.Fleet.HealthScores())
}

// ProtocolStatus reports adapter liveness. The HTTP bridge is always active
// when this handler can answer at all.
func (rs *RestfulServer) ProtocolStatus(c *gin.Context) {
	status := map[string]bool{"http": true}
	if rs.Dispatcher != nil {
		for name, active := range rs.Dispatcher.Status() {
			status[name] = active
		}
	}
	c.JSON(http.StatusOK, status)
}

type LimiterRequest struct {
	Rate  float64 `json:"rate"`
	Burst int     `json:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"rate":  z.Float64().Required(),
	"burst": z.Int().Required(),
})

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	deviceID := c.Param("device_id")

	var req LimiterRequest
	if err := limiterRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.SetLimiter(deviceID, req.Rate, req.Burst)

	c.Status(http.StatusOK)
}

type LoRaWANRegisterRequest struct {
	DevEUI string         `json:"dev_eui"`
	Info   map[string]any `json:"info"`
}

func (rs *RestfulServer) lorawanAdapter() (*protocol.LoRaWANAdapter, bool) {
	if rs.Dispatcher == nil {
		return nil, false
	}
	adapter, ok := rs.Dispatcher.Adapter("lorawan")
	if !ok {
		return nil, false
	}
	lorawan, ok := adapter.(*protocol.LoRaWANAdapter)
	return lorawan, ok
}

func (rs *RestfulServer) RegisterLoRaWANDevice(c *gin.Context) {
	lorawan, ok := rs.lorawanAdapter()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "lorawan bridge not configured"})
		return
	}

	var req LoRaWANRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DevEUI == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dev_eui is required"})
		return
	}

	device := lorawan.RegisterDevice(req.DevEUI, req.Info)
	c.JSON(http.StatusCreated, device)
}

type LoRaWANUplinkRequest struct {
	DevEUI  string  `json:"dev_eui"`
	Payload string  `json:"payload"`
	RSSI    int     `json:"rssi"`
	SNR     float64 `json:"snr"`
}

func (rs *RestfulServer) LoRaWANUplink(c *gin.Context) {
	lorawan, ok := rs.lorawanAdapter()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "lorawan bridge not configured"})
		return
	}

	var req LoRaWANUplinkRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DevEUI == "" || req.Payload == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dev_eui and payload are required"})
		return
	}

	if err := lorawan.HandleUplink(req.DevEUI, req.Payload, req.RSSI, req.SNR); err != nil {
		if errors.Is(err, protocol.ErrUnknownLoRaWANDevice) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "received", "device_id": protocol.LoRaWANPrefix + req.DevEUI})
}

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the feed is operator-facing and unauthenticated, same trust model as
	// the rest of the query surface
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (rs *RestfulServer) ServeAlertFeed(c *gin.Context) {
	conn, err := feedUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	ws.NewClient(rs.Hub, conn)
}
