package async_resolver

import (
	"time"

	"github.com/code-payments/code-dice/pkg/config"
	"github.com/code-payments/code-dice/pkg/config/env"
	"github.com/code-payments/code-dice/pkg/config/memory"
	"github.com/code-payments/code-dice/pkg/config/wrapper"
)

const (
	envConfigPrefix = "DICE_RESOLVER_SERVICE_"

	BatchSizeConfigEnvName = envConfigPrefix + "BATCH_SIZE"
	defaultBatchSize       = 100

	SubmitMaxAttemptsConfigEnvName = envConfigPrefix + "SUBMIT_MAX_ATTEMPTS"
	defaultSubmitMaxAttempts       = 3

	SubmitBackoffConfigEnvName = envConfigPrefix + "SUBMIT_BACKOFF"
	defaultSubmitBackoff       = 250 * time.Millisecond
)

type conf struct {
	batchSize         config.Uint64
	submitMaxAttempts config.Uint64
	submitBackoff     config.Duration
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			batchSize:         env.NewUint64Config(BatchSizeConfigEnvName, defaultBatchSize),
			submitMaxAttempts: env.NewUint64Config(SubmitMaxAttemptsConfigEnvName, defaultSubmitMaxAttempts),
			submitBackoff:     env.NewDurationConfig(SubmitBackoffConfigEnvName, defaultSubmitBackoff),
		}
	}
}

type testOverrides struct {
	batchSize         uint64
	submitMaxAttempts uint64
	submitBackoff     time.Duration
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			batchSize:         wrapper.NewUint64Config(memory.NewConfig(overrides.batchSize), defaultBatchSize),
			submitMaxAttempts: wrapper.NewUint64Config(memory.NewConfig(overrides.submitMaxAttempts), defaultSubmitMaxAttempts),
			submitBackoff:     wrapper.NewDurationConfig(memory.NewConfig(overrides.submitBackoff), defaultSubmitBackoff),
		}
	}
}
