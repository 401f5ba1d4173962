package program

import (
	"github.com/code-payments/code-dice/pkg/config"
	"github.com/code-payments/code-dice/pkg/config/env"
	"github.com/code-payments/code-dice/pkg/config/memory"
	"github.com/code-payments/code-dice/pkg/config/wrapper"
	"github.com/code-payments/code-dice/pkg/solana/dice"
)

const (
	envConfigPrefix = "DICE_PROGRAM_"

	HouseEdgeBpsConfigEnvName = envConfigPrefix + "HOUSE_EDGE_BPS"
	defaultHouseEdgeBps       = dice.HouseEdgeBps

	RefundCooldownSlotsConfigEnvName = envConfigPrefix + "REFUND_COOLDOWN_SLOTS"
	defaultRefundCooldownSlots       = dice.RefundCooldownSlots

	MinRollConfigEnvName = envConfigPrefix + "MIN_ROLL"
	defaultMinRoll       = dice.MinRoll

	MaxRollConfigEnvName = envConfigPrefix + "MAX_ROLL"
	defaultMaxRoll       = dice.MaxRoll
)

type conf struct {
	houseEdgeBps        config.Uint64
	refundCooldownSlots config.Uint64
	minRoll             config.Uint64
	maxRoll             config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			houseEdgeBps:        env.NewUint64Config(HouseEdgeBpsConfigEnvName, defaultHouseEdgeBps),
			refundCooldownSlots: env.NewUint64Config(RefundCooldownSlotsConfigEnvName, defaultRefundCooldownSlots),
			minRoll:             env.NewUint64Config(MinRollConfigEnvName, defaultMinRoll),
			maxRoll:             env.NewUint64Config(MaxRollConfigEnvName, defaultMaxRoll),
		}
	}
}

type testOverrides struct {
	houseEdgeBps        uint64
	refundCooldownSlots uint64
	minRoll             uint64
	maxRoll             uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			houseEdgeBps:        wrapper.NewUint64Config(memory.NewConfig(overrides.houseEdgeBps), defaultHouseEdgeBps),
			refundCooldownSlots: wrapper.NewUint64Config(memory.NewConfig(overrides.refundCooldownSlots), defaultRefundCooldownSlots),
			minRoll:             wrapper.NewUint64Config(memory.NewConfig(overrides.minRoll), defaultMinRoll),
			maxRoll:             wrapper.NewUint64Config(memory.NewConfig(overrides.maxRoll), defaultMaxRoll),
		}
	}
}
