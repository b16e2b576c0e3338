package ws

import (
	"encoding/json"

	"go.uber.org/zap"

	"fleettrack.xyz/fleet-telemetry-service/pkg/common"
	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
)

const broadcastBuffer = 256

// Hub maintains the set of connected feed clients and fans emitted alerts out
// to them. It implements the pipeline's alert sink; PublishAlert never blocks,
// so a saturated feed cannot slow the ingestion path.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	logger     *zap.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     common.GetLoggerWith(common.LoggerNameAlertFeed),
	}
}

// Run owns the client set; it is the only goroutine that touches it.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Info("Feed client connected", zap.String("remote", client.conn.RemoteAddr().String()))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Info("Feed client disconnected", zap.String("remote", client.conn.RemoteAddr().String()))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow consumer, drop it rather than stall the feed
					h.logger.Warn("Feed client send buffer full, removing",
						zap.String("remote", client.conn.RemoteAddr().String()))
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// PublishAlert queues the alert for broadcast. When the broadcast buffer is
// full the alert is dropped from the live feed only; it stays in the retained
// alert sequence.
func (h *Hub) PublishAlert(alert models.Alert) {
	payload, err := json.Marshal(map[string]any{"type": "alert", "payload": alert})
	if err != nil {
		h.logger.Warn("Failed to encode alert for feed", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("Feed broadcast buffer full, dropping alert",
			zap.String("device_id", alert.DeviceID))
	}
}
