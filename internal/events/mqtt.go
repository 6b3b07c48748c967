package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// mqttClient is the subset of common/mqtt.Client used here.
type mqttClient interface {
	Publish(topic string, retained bool, payload []byte) error
	Disconnect()
}

// MQTTPublisher publishes each event to <prefix>/<type with dots as slashes>.
type MQTTPublisher struct {
	client mqttClient
	prefix string
}

func NewMQTTPublisher(client mqttClient, prefix string) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: strings.TrimSuffix(prefix, "/")}
}

// Topic returns the topic an event type is published on.
func (p *MQTTPublisher) Topic(eventType string) string {
	return p.prefix + "/" + strings.ReplaceAll(eventType, ".", "/")
}

func (p *MQTTPublisher) Publish(_ context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return p.client.Publish(p.Topic(e.Type), false, b)
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect()
	return nil
}
