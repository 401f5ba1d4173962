package ledger

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// overlay is a copy-on-write view of the store for a single transaction.
// Nothing reaches the store until the changes are committed by the bank.
type overlay struct {
	ctx   context.Context
	store Store

	accounts map[string]*Account
	dirty    map[string]struct{}
	order    []string
}

func newOverlay(ctx context.Context, store Store) *overlay {
	return &overlay{
		ctx:      ctx,
		store:    store,
		accounts: make(map[string]*Account),
		dirty:    make(map[string]struct{}),
	}
}

// load returns the overlay's mutable copy of the account, or nil if the
// account doesn't exist.
func (o *overlay) load(address ed25519.PublicKey) (*Account, error) {
	key := base58.Encode(address)
	if account, ok := o.accounts[key]; ok {
		return account, nil
	}

	stored, err := o.store.Get(o.ctx, address)
	if err == ErrAccountNotFound {
		o.accounts[key] = nil
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	cloned := stored.Clone()
	o.accounts[key] = &cloned
	return &cloned, nil
}

// put records account as modified.
func (o *overlay) put(account *Account) {
	key := base58.Encode(account.Address)
	o.accounts[key] = account

	if _, ok := o.dirty[key]; !ok {
		o.dirty[key] = struct{}{}
		o.order = append(o.order, key)
	}
}

// changes returns the accounts to save and the addresses to remove, in the
// order they were first modified.
func (o *overlay) changes(slot uint64) (updated []*Account, deleted []ed25519.PublicKey) {
	for _, key := range o.order {
		account := o.accounts[key]
		if account.Lamports == 0 {
			deleted = append(deleted, account.Address)
			continue
		}

		account.Slot = slot
		updated = append(updated, account)
	}
	return updated, deleted
}
