package async_resolver

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-dice/pkg/database/query"
	"github.com/code-payments/code-dice/pkg/ledger"
	"github.com/code-payments/code-dice/pkg/metrics"
	"github.com/code-payments/code-dice/pkg/retry"
	"github.com/code-payments/code-dice/pkg/retry/backoff"
	"github.com/code-payments/code-dice/pkg/solana"
	"github.com/code-payments/code-dice/pkg/solana/dice"
	ed25519program "github.com/code-payments/code-dice/pkg/solana/ed25519"
)

var (
	ErrBetNotFound = errors.New("bet not found")
	ErrBetNotOwned = errors.New("bet was not placed against this house")
)

func (p *service) worker(serviceCtx context.Context, interval time.Duration) error {
	delay := interval
	var cursor query.Cursor

	err := retry.Loop(
		func() (err error) {
			select {
			case <-serviceCtx.Done():
				return serviceCtx.Err()
			case <-time.After(delay):
			}

			ctx := serviceCtx
			if nr, ok := metrics.ApplicationFromContext(serviceCtx); ok {
				m := nr.StartTransaction("async__dice_resolver_service__handle_open_bets")
				defer m.End()
				ctx = newrelic.NewContext(serviceCtx, m)
			}

			cursor, err = p.processBatch(ctx, cursor)
			return err
		},
		retry.NonRetriableErrors(context.Canceled, context.DeadlineExceeded),
	)

	return err
}

// processBatch resolves every open bet of this house in the page of program
// accounts after cursor, returning the cursor of the next page.
func (p *service) processBatch(ctx context.Context, cursor query.Cursor) (query.Cursor, error) {
	accounts, err := p.ledger.GetProgramAccounts(
		ctx,
		dice.PROGRAM_ID,
		cursor,
		p.conf.batchSize.Get(ctx),
		query.Ascending,
	)
	if err == ledger.ErrAccountNotFound {
		return query.EmptyCursor, nil
	} else if err != nil {
		return query.EmptyCursor, err
	}

	var wg sync.WaitGroup
	for _, account := range accounts {
		bet, ok := p.toOwnedBet(account)
		if !ok {
			continue
		}

		wg.Add(1)
		go func(address ed25519.PublicKey, bet *dice.BetAccount) {
			defer wg.Done()

			err := p.lockAndSubmit(ctx, address, bet)
			if err != nil && !dice.IsError(err, dice.ErrAccountNotInitialized) {
				p.log.WithError(err).WithField("bet", base58.Encode(address)).Warn("failure resolving bet")
			}
		}(account.Address, bet)
	}
	wg.Wait()

	return query.ToCursor(accounts[len(accounts)-1].Id), nil
}

func (p *service) ResolveBet(ctx context.Context, address ed25519.PublicKey) error {
	account, err := p.ledger.GetAccount(ctx, address)
	if err == ledger.ErrAccountNotFound {
		return ErrBetNotFound
	} else if err != nil {
		return err
	}

	bet, ok := p.toOwnedBet(account)
	if !ok {
		return ErrBetNotOwned
	}

	return p.lockAndSubmit(ctx, address, bet)
}

func (p *service) lockAndSubmit(ctx context.Context, address ed25519.PublicKey, bet *dice.BetAccount) error {
	mu := p.betLocks.Get(address)
	mu.Lock()
	defer mu.Unlock()

	return p.submit(ctx, address, bet)
}

// toOwnedBet decodes account as a bet placed against this house's vault.
func (p *service) toOwnedBet(account *ledger.Account) (*dice.BetAccount, bool) {
	if !bytes.Equal(account.Owner, dice.PROGRAM_ID) {
		return nil, false
	}

	var bet dice.BetAccount
	if err := bet.Unmarshal(account.Data); err != nil {
		return nil, false
	}

	if !dice.VerifyBetAddress(account.Address, p.vault, bet.Seed, bet.Bump) {
		return nil, false
	}

	return &bet, true
}

func (p *service) submit(ctx context.Context, address ed25519.PublicKey, bet *dice.BetAccount) error {
	house := p.house.Public().(ed25519.PublicKey)

	log := p.log.WithFields(logrus.Fields{
		"method": "submit",
		"bet":    base58.Encode(address),
		"player": base58.Encode(bet.Player),
		"roll":   bet.Roll,
		"amount": bet.Amount,
	})

	message := bet.Message()
	txn := solana.NewTransaction(
		house,
		ed25519program.Instruction(p.house, message),
		dice.NewResolveBetInstruction(
			&dice.ResolveBetInstructionAccounts{
				House:  house,
				Player: bet.Player,
				Vault:  p.vault,
				Bet:    address,
			},
			&dice.ResolveBetInstructionArgs{
				Signature: ed25519.Sign(p.house, message),
			},
		),
	)
	if err := txn.Sign(p.house); err != nil {
		return errors.Wrap(err, "error signing transaction")
	}

	start := time.Now()
	submitBackoff := p.conf.submitBackoff.Get(ctx)
	attempts, err := retry.Retry(
		func() error {
			return p.ledger.ProcessTransaction(ctx, &txn)
		},
		retry.Limit(uint(p.conf.submitMaxAttempts.Get(ctx))),
		retry.RetriableIf(isRetriableSubmissionError),
		retry.Backoff(backoff.Constant(submitBackoff), submitBackoff),
	)

	recordSubmissionEvent(ctx, address, attempts, time.Since(start), err)

	if err != nil {
		log.WithError(err).WithField("attempts", attempts).Debug("bet resolution rejected")
		return err
	}

	log.WithField("attempts", attempts).Info("bet resolved")
	return nil
}

// isRetriableSubmissionError reports false once the ledger has rejected the
// transaction itself.
func isRetriableSubmissionError(err error) bool {
	var txnErr *solana.TransactionError
	if errors.As(err, &txnErr) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
