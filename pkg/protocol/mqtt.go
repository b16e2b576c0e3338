package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"fleettrack.xyz/fleet-telemetry-service/pkg/common"
	"fleettrack.xyz/fleet-telemetry-service/pkg/models"
)

const (
	mqttTelemetryTopic = "fleet/+/telemetry"
	mqttAlertTopic     = "fleet/+/alerts"
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 5 * time.Second
)

// MQTTAdapter bridges an MQTT broker into the pipeline. Devices publish to
// fleet/<device_id>/telemetry and fleet/<device_id>/alerts; commands go out on
// fleet/<device_id>/commands.
type MQTTAdapter struct {
	broker string
	sink   Sink
	client mqtt.Client
	logger *zap.Logger
}

func NewMQTTAdapter(broker string, sink Sink) *MQTTAdapter {
	return &MQTTAdapter{
		broker: broker,
		sink:   sink,
		logger: common.GetLoggerWith(
			common.LoggerNameProtocolRouter,
			zap.String(common.LoggerFieldCategory, common.LoggerCategoryAdapter),
			zap.String("protocol", "mqtt"),
		),
	}
}

func (m *MQTTAdapter) Name() string { return "mqtt" }

func (m *MQTTAdapter) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(m.broker).
		SetClientID(fmt.Sprintf("fleet-telemetry-%d", time.Now().UnixNano())).
		SetAutoReconnect(true).
		SetConnectRetry(false)

	// Resubscribe on every (re)connect so a broker restart does not leave us
	// silently deaf.
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		client.Subscribe(mqttTelemetryTopic, 0, m.onTelemetry)
		client.Subscribe(mqttAlertTopic, 0, m.onAlert)
		m.logger.Info("Subscribed to broker topics", zap.String("broker", m.broker))
	})

	m.client = mqtt.NewClient(opts)
	token := m.client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return fmt.Errorf("connect to %s timed out", m.broker)
	}
	return token.Error()
}

func (m *MQTTAdapter) Stop() error {
	if m.client != nil && m.client.IsConnected() {
		m.client.Disconnect(250)
	}
	return nil
}

func (m *MQTTAdapter) onTelemetry(_ mqtt.Client, msg mqtt.Message) {
	raw, err := m.decode(msg.Payload())
	if err != nil {
		m.logger.Warn("Dropping unparseable telemetry", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}
	if err := m.sink.SubmitTelemetry(raw); err != nil {
		m.logger.Warn("Telemetry rejected", zap.String("topic", msg.Topic()), zap.Error(err))
	}
}

func (m *MQTTAdapter) onAlert(_ mqtt.Client, msg mqtt.Message) {
	raw, err := m.decode(msg.Payload())
	if err != nil {
		m.logger.Warn("Dropping unparseable alert", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}
	if err := m.sink.SubmitAlert(raw); err != nil {
		m.logger.Warn("Alert rejected", zap.String("topic", msg.Topic()), zap.Error(err))
	}
}

// decode tags the message with its ingestion protocol and arrival time before
// handing it to the pipeline.
func (m *MQTTAdapter) decode(payload []byte) (models.RawMessage, error) {
	var raw models.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	raw["protocol"] = "mqtt"
	raw["received_at"] = time.Now().UTC().Format(time.RFC3339Nano)
	return raw, nil
}

func (m *MQTTAdapter) SendCommand(deviceID string, cmd models.Command) error {
	if m.client == nil || !m.client.IsConnected() {
		return fmt.Errorf("not connected to broker %s", m.broker)
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("fleet/%s/commands", deviceID)
	token := m.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	return token.Error()
}
