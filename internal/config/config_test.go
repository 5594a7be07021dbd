package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EvanJRichard/wallet-balance-tool/internal/config"
)

func TestInitConfigDefaults(t *testing.T) {
	require.NoError(t, config.InitConfig())

	assert.Equal(t, "https://blockstream.info", config.GetString(config.ExplorerEndpointKey))
	assert.Equal(t, uint32(10), config.GetUint32(config.InitialBatchKey))
	assert.Equal(t, uint32(10), config.GetUint32(config.LoadMoreIncrementKey))
	assert.Equal(t, 5, config.GetInt(config.MaxConcurrentRequestsKey))
	assert.Equal(t, 4, config.GetInt(config.RequestsPerSecondKey))
	assert.Equal(t, 15*time.Second, config.GetDuration(config.RequestTimeoutKey))
	assert.Equal(t, 4, config.GetInt(config.LogLevelKey))
}

func TestInitConfigFromEnv(t *testing.T) {
	t.Setenv("WBT_INITIAL_BATCH", "25")
	t.Setenv("WBT_EXPLORER_URL", "http://localhost:3001")
	t.Setenv("WBT_REQUEST_TIMEOUT", "3s")

	require.NoError(t, config.InitConfig())

	assert.Equal(t, uint32(25), config.GetUint32(config.InitialBatchKey))
	assert.Equal(t, "http://localhost:3001", config.GetString(config.ExplorerEndpointKey))
	assert.Equal(t, 3*time.Second, config.GetDuration(config.RequestTimeoutKey))
}

func TestFailingInitConfig(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero batch", "WBT_INITIAL_BATCH", "0"},
		{"negative increment", "WBT_LOAD_MORE_INCREMENT", "-1"},
		{"zero concurrency", "WBT_MAX_CONCURRENT_REQUESTS", "0"},
		{"empty endpoint", "WBT_EXPLORER_URL", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			assert.Error(t, config.InitConfig())
		})
	}
}
