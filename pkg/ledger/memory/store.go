package memory

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"sort"
	"sync"

	"github.com/mr-tron/base58"

	"github.com/code-payments/code-dice/pkg/database/query"
	"github.com/code-payments/code-dice/pkg/ledger"
)

type store struct {
	mu       sync.Mutex
	accounts map[string]*ledger.Account
	last     uint64
}

type ById []*ledger.Account

func (a ById) Len() int           { return len(a) }
func (a ById) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a ById) Less(i, j int) bool { return a[i].Id < a[j].Id }

func New() ledger.Store {
	return &store{
		accounts: make(map[string]*ledger.Account),
	}
}

func (s *store) reset() {
	s.mu.Lock()
	s.accounts = make(map[string]*ledger.Account)
	s.last = 0
	s.mu.Unlock()
}

func (s *store) Get(_ context.Context, address ed25519.PublicKey) (*ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.accounts[base58.Encode(address)]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

func (s *store) GetAllByOwner(_ context.Context, owner ed25519.PublicKey, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var owned []*ledger.Account
	for _, item := range s.accounts {
		if bytes.Equal(item.Owner, owner) {
			owned = append(owned, item)
		}
	}
	sort.Sort(ById(owned))

	res := s.filter(owned, cursor, limit, direction)
	if len(res) == 0 {
		return nil, ledger.ErrAccountNotFound
	}

	cloned := make([]*ledger.Account, len(res))
	for i, item := range res {
		c := item.Clone()
		cloned[i] = &c
	}
	return cloned, nil
}

func (s *store) GetLatestSlot(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest uint64
	for _, item := range s.accounts {
		if item.Slot > latest {
			latest = item.Slot
		}
	}
	return latest, nil
}

func (s *store) Commit(_ context.Context, updated []*ledger.Account, deleted []ed25519.PublicKey) error {
	for _, account := range updated {
		if err := account.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, address := range deleted {
		delete(s.accounts, base58.Encode(address))
	}

	for _, account := range updated {
		key := base58.Encode(account.Address)
		if existing, ok := s.accounts[key]; ok {
			account.Id = existing.Id
		} else {
			s.last++
			account.Id = s.last
		}

		cloned := account.Clone()
		s.accounts[key] = &cloned
	}

	return nil
}

func (s *store) filter(items []*ledger.Account, cursor query.Cursor, limit uint64, direction query.Ordering) []*ledger.Account {
	var start uint64

	start = 0
	if direction == query.Descending {
		start = s.last + 1
	}
	if len(cursor) > 0 {
		start = cursor.ToUint64()
	}

	var res []*ledger.Account
	for _, item := range items {
		if item.Id > start && direction == query.Ascending {
			res = append(res, item)
		}
		if item.Id < start && direction == query.Descending {
			res = append(res, item)
		}
	}

	if direction == query.Descending {
		sort.Sort(sort.Reverse(ById(res)))
	}

	if limit > 0 && len(res) >= int(limit) {
		return res[:limit]
	}

	return res
}
