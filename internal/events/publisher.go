package events

import (
	"fmt"

	commonmqtt "github.com/andalize/proptic/common/mqtt"
	commonredis "github.com/andalize/proptic/common/redis"
	"github.com/andalize/proptic/internal/config"

	"go.uber.org/zap"
)

// Sink names accepted by EVENTS_SINK.
const (
	SinkNone    = "none"
	SinkRedis   = "redis"
	SinkMQTT    = "mqtt"
	SinkWebhook = "webhook"
)

// NewPublisher builds the publisher selected by cfg.Sink. Clients for sinks
// that are not selected may be nil.
func NewPublisher(cfg config.EventsConfig, redisClient *commonredis.Client, mqttClient *commonmqtt.Client, logger *zap.Logger) (Publisher, error) {
	switch cfg.Sink {
	case "", SinkNone:
		return NopPublisher{}, nil
	case SinkRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("events sink %q requires a redis client", cfg.Sink)
		}
		logger.Info("Publishing events to redis stream", zap.String("stream", cfg.Stream))
		return NewRedisStreamPublisher(redisClient, cfg.Stream, cfg.StreamMaxLen), nil
	case SinkMQTT:
		if mqttClient == nil {
			return nil, fmt.Errorf("events sink %q requires an mqtt client", cfg.Sink)
		}
		logger.Info("Publishing events to mqtt", zap.String("topic_prefix", cfg.TopicPrefix))
		return NewMQTTPublisher(mqttClient, cfg.TopicPrefix), nil
	case SinkWebhook:
		if cfg.WebhookURL == "" {
			return nil, fmt.Errorf("events sink %q requires WEBHOOK_URL", cfg.Sink)
		}
		logger.Info("Publishing events to webhook", zap.String("url", cfg.WebhookURL))
		return NewWebhookPublisher(cfg.WebhookURL, cfg.WebhookSecret, cfg.WebhookRetry), nil
	default:
		return nil, fmt.Errorf("unknown events sink %q", cfg.Sink)
	}
}
