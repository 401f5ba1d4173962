package ledger

import (
	"context"
	"crypto/ed25519"

	"github.com/code-payments/code-dice/pkg/database/query"
)

type Store interface {
	// Get returns the account at address.
	//
	// Returns ErrAccountNotFound if the account doesn't exist.
	Get(ctx context.Context, address ed25519.PublicKey) (*Account, error)

	// GetAllByOwner returns a page of accounts owned by owner, ordered by id.
	//
	// Returns ErrAccountNotFound if no accounts are found.
	GetAllByOwner(ctx context.Context, owner ed25519.PublicKey, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*Account, error)

	// GetLatestSlot returns the highest slot any stored account was written
	// in, or zero when the store is empty.
	GetLatestSlot(ctx context.Context) (uint64, error)

	// Commit atomically saves every updated account and removes every deleted
	// address. Ids are assigned to newly created accounts.
	Commit(ctx context.Context, updated []*Account, deleted []ed25519.PublicKey) error
}
