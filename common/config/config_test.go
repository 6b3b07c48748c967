package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfig_GetDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "proptic", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=proptic sslmode=disable", c.GetDSN())

	c.ApplicationName = "proptic"
	c.ConnectTimeout = 5 * time.Second
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=proptic sslmode=disable application_name=proptic connect_timeout=5", c.GetDSN())
}

func TestDatabaseConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("TESTDB_HOST", "pg.local")
	t.Setenv("TESTDB_PORT", "not-a-port")
	t.Setenv("TESTDB_NAME", "ledger")
	t.Setenv("TESTDB_MAX_CONNS", "7")
	t.Setenv("TESTDB_CONN_MAX_LIFETIME", "15m")
	t.Setenv("TESTDB_CONNECT_TIMEOUT", "soon")

	c := DatabaseConfig{Port: 5432}
	c.LoadFromEnv("TESTDB")
	assert.Equal(t, "pg.local", c.Host)
	assert.Equal(t, 5432, c.Port)
	assert.Equal(t, "ledger", c.Database)
	assert.Equal(t, 7, c.MaxConns)
	assert.Equal(t, 15*time.Minute, c.ConnMaxLifetime)
	assert.Zero(t, c.ConnectTimeout)
}

func TestRedisConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("TESTRD_ADDR", "cache:6379")
	t.Setenv("TESTRD_POOL_SIZE", "0")
	t.Setenv("TESTRD_DIAL_TIMEOUT", "2s")

	c := RedisConfig{PoolSize: 10}
	c.LoadFromEnv("TESTRD")
	assert.Equal(t, "cache:6379", c.Addr)
	assert.Equal(t, 10, c.PoolSize)
	assert.Equal(t, 2*time.Second, c.DialTimeout)
}

func TestMQTTConfig_LoadFromEnvRejectsBadQoS(t *testing.T) {
	t.Setenv("TESTMQ_BROKER", "tcp://broker:1883")
	t.Setenv("TESTMQ_QOS", "3")

	c := MQTTConfig{QoS: 1}
	c.LoadFromEnv("TESTMQ")
	assert.Equal(t, "tcp://broker:1883", c.Broker)
	assert.Equal(t, byte(1), c.QoS)
}
