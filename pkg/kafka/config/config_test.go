package kafka_config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, DefaultProducerMaxAttempts, cfg.ProducerMaxAttempts)
	assert.Equal(t, DefaultProducerRequireAcks, cfg.ProducerRequireAcks)
	assert.Equal(t, "snappy", cfg.ProducerCompression)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv(EnvKafkaProducerBatchTimeout, "50ms")
	t.Setenv(EnvKafkaProducerCompression, "zstd")
	t.Setenv(EnvKafkaProducerAsync, "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
	assert.Equal(t, 50*time.Millisecond, cfg.ProducerBatchTimeout)
	assert.Equal(t, "zstd", cfg.ProducerCompression)
	assert.True(t, cfg.ProducerAsync)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := &Config{
		ProducerMaxAttempts:  0,
		ProducerBatchTimeout: 0,
		ProducerRequireAcks:  2,
		ProducerCompression:  "brotli",
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"broker", "ProducerMaxAttempts", "ProducerBatchTimeout", "ProducerCompression", "ProducerRequireAcks"} {
		assert.Contains(t, err.Error(), want)
	}
}
