package app

import (
	"crypto/ed25519"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	base "github.com/code-payments/code-dice/pkg/app"
)

const (
	defaultSlotDuration     = 400 * time.Millisecond
	defaultResolverInterval = time.Second
)

type Config struct {
	// HousePrivateKey is the base58 encoded ed25519 private key of the house
	// whose bets the resolver settles.
	HousePrivateKey string `mapstructure:"house_private_key"`

	Postgres PostgresConfig `mapstructure:"postgres"`

	// InitialSlot is the slot the ledger clock starts at.
	InitialSlot uint64 `mapstructure:"initial_slot"`

	SlotDuration     time.Duration `mapstructure:"slot_duration"`
	ResolverInterval time.Duration `mapstructure:"resolver_interval"`
}

type PostgresConfig struct {
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	DbName             string `mapstructure:"db_name"`
	MaxOpenConnections int    `mapstructure:"max_open_connections"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections"`
}

func decodeConfig(raw base.Config) (*Config, error) {
	config := Config{
		SlotDuration:     defaultSlotDuration,
		ResolverInterval: defaultResolverInterval,
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(map[string]interface{}(raw)); err != nil {
		return nil, errors.Wrap(err, "invalid app config")
	}

	if config.SlotDuration <= 0 {
		return nil, errors.New("slot duration must be positive")
	}
	if config.ResolverInterval <= 0 {
		return nil, errors.New("resolver interval must be positive")
	}

	return &config, nil
}

func (c *Config) housePrivateKey() (ed25519.PrivateKey, error) {
	decoded, err := base58.Decode(c.HousePrivateKey)
	if err != nil {
		return nil, errors.Wrap(err, "invalid house private key")
	}
	if len(decoded) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("house private key must be %d bytes", ed25519.PrivateKeySize)
	}
	return ed25519.PrivateKey(decoded), nil
}
