package config

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(flag.NewFlagSet("test", flag.ContinueOnError), nil, env(map[string]string{
		"STRIPE_WEBHOOK_SECRET": "whsec_x",
	}))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.RunAddress)
	assert.Empty(t, cfg.DatabaseURI)
	assert.Equal(t, "php", cfg.Currency)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 25*time.Hour, cfg.CheckoutTTL)
	assert.Equal(t, 10*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 10*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 5*time.Second, cfg.BrokerTimeout)
}

func TestLoad_EnvOverridesFlags(t *testing.T) {
	args := []string{"-a", ":9000", "-d", "postgres://flag", "-checkout-ttl", "1h"}
	cfg, err := load(flag.NewFlagSet("test", flag.ContinueOnError), args, env(map[string]string{
		"DATABASE_URI":          "postgres://env",
		"STRIPE_WEBHOOK_SECRET": "whsec_x",
		"EVENTS_BROKER":         "Kafka",
		"KAFKA_BROKERS":         "k1:9092, k2:9092",
		"CURRENCY":              "USD",
		"STORE_TIMEOUT":         "2s",
		"BROKER_TIMEOUT":        "750ms",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.RunAddress)
	assert.Equal(t, "postgres://env", cfg.DatabaseURI)
	assert.Equal(t, "whsec_x", cfg.StripeWebhookSecret)
	assert.Equal(t, "kafka", cfg.EventsBroker)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "usd", cfg.Currency)
	assert.Equal(t, time.Hour, cfg.CheckoutTTL)
	assert.Equal(t, 2*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 750*time.Millisecond, cfg.BrokerTimeout)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{name: "bad duration", vars: map[string]string{"SWEEP_INTERVAL": "soon"}},
		{name: "unknown broker", vars: map[string]string{"EVENTS_BROKER": "nats"}},
		{name: "kafka without brokers", vars: map[string]string{"EVENTS_BROKER": "kafka", "KAFKA_BROKERS": " , "}},
		{name: "empty jwt secret", vars: map[string]string{"JWT_SECRET": ""}},
		{name: "missing webhook secret", vars: map[string]string{"STRIPE_WEBHOOK_SECRET": ""}},
		{name: "zero broker timeout", vars: map[string]string{"BROKER_TIMEOUT": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := map[string]string{"STRIPE_WEBHOOK_SECRET": "whsec_x"}
			for k, v := range tt.vars {
				vars[k] = v
			}
			_, err := load(flag.NewFlagSet("test", flag.ContinueOnError), nil, env(vars))
			assert.Error(t, err)
		})
	}
}
