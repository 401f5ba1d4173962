// Package app runs a dice ledger node: the ledger over the postgres account
// store with the dice program registered, a slot clock, and the house's
// resolver worker.
package app

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"

	base "github.com/code-payments/code-dice/pkg/app"
	pg "github.com/code-payments/code-dice/pkg/database/postgres"
	async_resolver "github.com/code-payments/code-dice/pkg/dice/async/resolver"
	dice_program "github.com/code-payments/code-dice/pkg/dice/program"
	"github.com/code-payments/code-dice/pkg/ledger"
	postgres_ledger "github.com/code-payments/code-dice/pkg/ledger/postgres"
	"github.com/code-payments/code-dice/pkg/metrics"
	"github.com/code-payments/code-dice/pkg/solana/dice"
)

type app struct {
	log *logrus.Entry

	db   *sql.DB
	bank *ledger.Bank

	cancel     context.CancelFunc
	shutdownCh chan struct{}
	stopOnce   sync.Once
}

func New() base.App {
	return &app{
		log:        logrus.StandardLogger().WithField("type", "dice/app"),
		shutdownCh: make(chan struct{}),
	}
}

// Init implements app.App.Init
func (a *app) Init(rawConfig base.Config, metricsProvider *newrelic.Application) error {
	config, err := decodeConfig(rawConfig)
	if err != nil {
		return err
	}

	house, err := config.housePrivateKey()
	if err != nil {
		return err
	}

	a.db, err = pg.NewWithUsernameAndPassword(&pg.Config{
		User:               config.Postgres.User,
		Password:           config.Postgres.Password,
		Host:               config.Postgres.Host,
		Port:               config.Postgres.Port,
		DbName:             config.Postgres.DbName,
		MaxOpenConnections: config.Postgres.MaxOpenConnections,
		MaxIdleConnections: config.Postgres.MaxIdleConnections,
	})
	if err != nil {
		return err
	}

	a.bank = ledger.NewBank(postgres_ledger.New(a.db), ledger.WithSlot(config.InitialSlot))
	if _, err := a.bank.RestoreSlot(context.Background()); err != nil {
		return err
	}
	a.bank.RegisterProgram(dice.PROGRAM_ID, dice_program.New(dice_program.WithEnvConfigs()))

	resolver, err := async_resolver.New(a.bank, house, async_resolver.WithEnvConfigs())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if metricsProvider != nil {
		ctx = metrics.NewContext(ctx, metricsProvider)
	}
	a.cancel = cancel

	go a.clock(ctx, config.SlotDuration)

	go func() {
		err := resolver.Start(ctx, config.ResolverInterval)
		if err != nil && err != context.Canceled {
			a.log.WithError(err).Warn("resolver stopped unexpectedly")
			a.Stop()
		}
	}()

	a.log.WithFields(logrus.Fields{
		"house": base58.Encode(house.Public().(ed25519.PublicKey)),
		"slot":  a.bank.Slot(),
	}).Info("dice ledger started")

	return nil
}

// clock advances the ledger by one slot every slot duration.
func (a *app) clock(ctx context.Context, slotDuration time.Duration) {
	ticker := time.NewTicker(slotDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.bank.AdvanceSlots(1)
		}
	}
}

// ShutdownChan implements app.App.ShutdownChan
func (a *app) ShutdownChan() <-chan struct{} {
	return a.shutdownCh
}

// Stop implements app.App.Stop
func (a *app) Stop() {
	a.stopOnce.Do(func() {
		if a.cancel != nil {
			a.cancel()
		}
		if a.db != nil {
			if err := a.db.Close(); err != nil {
				a.log.WithError(err).Warn("failure closing db")
			}
		}
		close(a.shutdownCh)
	})
}
