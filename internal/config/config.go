package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "github.com/andalize/proptic/common/config"

	"github.com/joho/godotenv"
)

// Config is the proptic API configuration.
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  commoncfg.DatabaseConfig
	Redis     commoncfg.RedisConfig
	MQTT      commoncfg.MQTTConfig
	Log       struct {
		Level  string
		Format string
	}
	Auth   AuthConfig
	Events EventsConfig
	// SeedRoles inserts the default roles at startup when missing.
	SeedRoles bool
}

// AuthConfig controls bearer token issuance.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	Issuer    string
}

// EventsConfig selects where domain events are sent.
type EventsConfig struct {
	Sink          string // none | redis | mqtt | webhook
	Stream        string // redis stream name
	StreamMaxLen  int64
	TopicPrefix   string // mqtt topic prefix
	WebhookURL    string
	WebhookSecret string
	WebhookRetry  int
}

// Load reads configuration from the environment. A .env file in the working
// directory, when present, is loaded first without overriding existing vars.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// With DB_ENABLED=false the server runs on in-memory repositories.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database = commoncfg.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "proptic",
		SSLMode:  "disable",
		MaxConns: 20,
		MaxIdle:  5,

		ConnMaxLifetime: 30 * time.Minute,
		ConnectTimeout:  5 * time.Second,
		ApplicationName: "proptic-api",
	}
	cfg.Database.LoadFromEnv("DB")

	cfg.Redis = commoncfg.RedisConfig{Addr: "localhost:6379", PoolSize: 10, DialTimeout: 5 * time.Second}
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.MQTT = commoncfg.MQTTConfig{
		Broker:   "tcp://localhost:1883",
		ClientID: "proptic-api",
		QoS:      1,
	}
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "change-me")
	cfg.Auth.TokenTTL = parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour)
	cfg.Auth.Issuer = getEnv("JWT_ISSUER", "proptic")

	cfg.Events.Sink = getEnv("EVENTS_SINK", "none")
	cfg.Events.Stream = getEnv("EVENTS_STREAM", "proptic:events")
	cfg.Events.StreamMaxLen = int64(parseInt(getEnv("EVENTS_STREAM_MAXLEN", "10000"), 10000))
	cfg.Events.TopicPrefix = getEnv("EVENTS_TOPIC_PREFIX", "proptic/events")
	cfg.Events.WebhookURL = getEnv("WEBHOOK_URL", "")
	cfg.Events.WebhookSecret = getEnv("WEBHOOK_SECRET", "")
	cfg.Events.WebhookRetry = parseInt(getEnv("WEBHOOK_RETRY", "3"), 3)

	cfg.SeedRoles = getEnv("SEED_ROLES", "true") == "true"

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
