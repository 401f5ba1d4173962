package async_resolver

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-dice/pkg/database/query"
	"github.com/code-payments/code-dice/pkg/dice/async"
	"github.com/code-payments/code-dice/pkg/ledger"
	"github.com/code-payments/code-dice/pkg/solana"
	"github.com/code-payments/code-dice/pkg/solana/dice"
	"github.com/code-payments/code-dice/pkg/sync"
)

const (
	betLockStripes = 64
)

// Ledger is the subset of the bank the resolver reads from and submits to.
type Ledger interface {
	GetAccount(ctx context.Context, address ed25519.PublicKey) (*ledger.Account, error)
	GetProgramAccounts(ctx context.Context, program ed25519.PublicKey, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*ledger.Account, error)
	ProcessTransaction(ctx context.Context, txn *solana.Transaction) error
}

// Service resolves the open bets placed against a single house's vault.
type Service interface {
	async.Service

	// ResolveBet signs and submits the resolution of the bet at address.
	ResolveBet(ctx context.Context, address ed25519.PublicKey) error
}

type service struct {
	log    *logrus.Entry
	conf   *conf
	ledger Ledger

	house ed25519.PrivateKey
	vault ed25519.PublicKey

	// betLocks serializes submissions for the same bet between the worker
	// and ResolveBet.
	betLocks *sync.StripedLock
}

func New(ledger Ledger, house ed25519.PrivateKey, configProvider ConfigProvider) (Service, error) {
	vault, _, err := dice.GetVaultAddress(&dice.GetVaultAddressArgs{
		House: house.Public().(ed25519.PublicKey),
	})
	if err != nil {
		return nil, err
	}

	return &service{
		log:    logrus.StandardLogger().WithField("service", "dice_resolver"),
		conf:   configProvider(),
		ledger: ledger,
		house:  house,
		vault:  vault,

		betLocks: sync.NewStripedLock(betLockStripes),
	}, nil
}

func (p *service) Start(ctx context.Context, interval time.Duration) error {
	go func() {
		err := p.worker(ctx, interval)
		if err != nil && err != context.Canceled {
			p.log.WithError(err).Warn("bet resolution loop terminated unexpectedly")
		}
	}()

	<-ctx.Done()
	return ctx.Err()
}
