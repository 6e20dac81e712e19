package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"conversational-weather/internal/metrics"
	"conversational-weather/internal/report"
)

const publishTimeout = 5 * time.Second

// client is the subset of mqtt.Client the publisher uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

type Publisher struct {
	client      client
	topicPrefix string
	enabled     bool
}

type PublisherConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	Enabled     bool
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return &Publisher{enabled: false}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			log.Printf("MQTT connection lost: %v", err)
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			log.Println("MQTT connected")
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	c := mqtt.NewClient(opts)
	token := c.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return newPublisher(c, cfg.TopicPrefix), nil
}

func newPublisher(c client, topicPrefix string) *Publisher {
	if topicPrefix == "" {
		topicPrefix = "conversational-weather"
	}
	return &Publisher{
		client:      c,
		topicPrefix: topicPrefix,
		enabled:     true,
	}
}

func (p *Publisher) topic(parts ...string) string {
	t := p.topicPrefix
	for _, part := range parts {
		t += "/" + part
	}
	return t
}

func (p *Publisher) send(topic string, retained bool, payload interface{}) error {
	token := p.client.Publish(topic, 0, retained, payload)
	var err error
	if !token.WaitTimeout(publishTimeout) {
		err = fmt.Errorf("publish to %s timed out", topic)
	} else {
		err = token.Error()
	}
	metrics.RecordPublish(topic, err)
	return err
}

// Publish sends the live tile fields as plain values and the whole report
// as a retained JSON document.
func (p *Publisher) Publish(r *report.Report) error {
	if !p.enabled {
		return nil
	}

	values := map[string]string{
		"tile/icon":        r.Tile.Icon,
		"tile/temperature": r.Tile.Temperature,
		"tile/hint":        r.Tile.Hint,
		"tile/forecast":    r.ForecastText,
		"location":         r.Location,
	}
	for i, slot := range r.VisibleSlots() {
		values[fmt.Sprintf("slots/%d", i)] = slot.Icon
	}

	for name, value := range values {
		topic := p.topic(name)
		if err := p.send(topic, false, value); err != nil {
			log.Printf("Failed to publish to %s: %v", topic, err)
		}
	}

	reportJSON, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := p.send(p.topic("report"), true, reportJSON); err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}

	return nil
}

type discoverySensor struct {
	Name  string
	ID    string
	Topic string
	Icon  string
}

var discoverySensors = []discoverySensor{
	{"Temperature", "temperature", "tile/temperature", "mdi:thermometer"},
	{"Condition", "hint", "tile/hint", "mdi:weather-partly-cloudy"},
	{"Forecast", "forecast", "tile/forecast", "mdi:text"},
	{"Icon", "icon", "tile/icon", "mdi:image"},
	{"Location", "location", "location", "mdi:map-marker"},
}

func (p *Publisher) PublishHomeAssistantDiscovery() error {
	if !p.enabled {
		return nil
	}

	for _, sensor := range discoverySensors {
		discoveryTopic := fmt.Sprintf("homeassistant/sensor/conversational_weather/%s/config", sensor.ID)

		config := map[string]interface{}{
			"name":        fmt.Sprintf("Weather %s", sensor.Name),
			"unique_id":   fmt.Sprintf("conversational_weather_%s", sensor.ID),
			"state_topic": p.topic(sensor.Topic),
			"icon":        sensor.Icon,
			"device": map[string]interface{}{
				"identifiers": []string{"conversational_weather"},
				"name":        "Conversational Weather",
				"model":       "narrative tile",
			},
		}

		payload, err := json.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal discovery for %s: %w", sensor.ID, err)
		}
		if err := p.send(discoveryTopic, true, payload); err != nil {
			return fmt.Errorf("failed to publish discovery for %s: %w", sensor.ID, err)
		}
	}

	return nil
}

func (p *Publisher) Enabled() bool {
	return p.enabled
}

func (p *Publisher) IsConnected() bool {
	if !p.enabled {
		return false
	}
	return p.client.IsConnected()
}

func (p *Publisher) Close() {
	if p.enabled && p.client != nil {
		p.client.Disconnect(1000)
	}
}
