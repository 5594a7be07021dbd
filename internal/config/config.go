package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	// ExplorerEndpointKey is the base URL of the blockstream-style explorer
	// used as balance oracle. The network API path is appended to it
	ExplorerEndpointKey = "EXPLORER_URL"
	// LogLevelKey are the different logging levels. For reference on the
	// values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// InitialBatchKey is the number of addresses derived per branch before
	// any interaction
	InitialBatchKey = "INITIAL_BATCH"
	// LoadMoreIncrementKey is the number of additional addresses derived per
	// branch on each "load more" request
	LoadMoreIncrementKey = "LOAD_MORE_INCREMENT"
	// MaxConcurrentRequestsKey caps the number of simultaneous in-flight
	// balance queries toward the explorer
	MaxConcurrentRequestsKey = "MAX_CONCURRENT_REQUESTS"
	// RequestsPerSecondKey paces the requests toward the explorer to respect
	// its rate limits
	RequestsPerSecondKey = "REQUESTS_PER_SECOND"
	// RequestTimeoutKey is the per-request timeout toward the explorer
	RequestTimeoutKey = "REQUEST_TIMEOUT"
)

var vip *viper.Viper

// InitConfig loads the configuration from the WBT_* environment and applies
// the defaults for everything left unset.
func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("WBT")
	// an explicitly empty var must reach validation instead of silently
	// falling back to the default
	vip.AllowEmptyEnv(true)
	vip.AutomaticEnv()

	vip.SetDefault(ExplorerEndpointKey, "https://blockstream.info")
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(InitialBatchKey, 10)
	vip.SetDefault(LoadMoreIncrementKey, 10)
	vip.SetDefault(MaxConcurrentRequestsKey, 5)
	vip.SetDefault(RequestsPerSecondKey, 4)
	vip.SetDefault(RequestTimeoutKey, 15*time.Second)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetUint32(key string) uint32 {
	return vip.GetUint32(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func validate() error {
	for _, key := range []string{
		InitialBatchKey, LoadMoreIncrementKey,
		MaxConcurrentRequestsKey, RequestsPerSecondKey,
	} {
		if vip.GetInt(key) <= 0 {
			return fmt.Errorf("%s must be a positive number", key)
		}
	}
	if vip.GetDuration(RequestTimeoutKey) <= 0 {
		return fmt.Errorf("%s must be a positive duration", RequestTimeoutKey)
	}
	if len(vip.GetString(ExplorerEndpointKey)) <= 0 {
		return fmt.Errorf("%s must not be empty", ExplorerEndpointKey)
	}
	return nil
}
