package tests

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-dice/pkg/database/query"
	"github.com/code-payments/code-dice/pkg/ledger"
)

func RunTests(t *testing.T, s ledger.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s ledger.Store){
		testRoundTrip,
		testUpdate,
		testDelete,
		testGetAllByOwner,
		testGetLatestSlot,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	address := newKey(t)
	owner := newKey(t)

	_, err := s.Get(ctx, address)
	assert.Equal(t, ledger.ErrAccountNotFound, err)

	expected := &ledger.Account{
		Address:    address,
		Lamports:   1_405_920,
		Data:       []byte{1, 2, 3, 4},
		Owner:      owner,
		Executable: false,
		Slot:       42,
	}
	require.NoError(t, s.Commit(ctx, []*ledger.Account{expected}, nil))
	assert.EqualValues(t, 1, expected.Id)

	actual, err := s.Get(ctx, address)
	require.NoError(t, err)
	assertEqualAccounts(t, expected, actual)

	// Empty data round trips as empty, not as missing.
	system := ledger.NewSystemAccount(newKey(t), 5)
	require.NoError(t, s.Commit(ctx, []*ledger.Account{system}, nil))

	actual, err = s.Get(ctx, system.Address)
	require.NoError(t, err)
	assert.Empty(t, actual.Data)
	assert.True(t, actual.IsSystemOwned())
	assert.EqualValues(t, 5, actual.Lamports)
	assert.EqualValues(t, 2, actual.Id)
}

func testUpdate(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	expected := &ledger.Account{
		Address:  newKey(t),
		Lamports: 100,
		Data:     []byte{0, 0, 0},
		Owner:    newKey(t),
	}
	require.NoError(t, s.Commit(ctx, []*ledger.Account{expected}, nil))
	id := expected.Id

	update := expected.Clone()
	update.Id = 0
	update.Lamports = 250
	update.Data = []byte{7, 8, 9}
	update.Slot = 10
	require.NoError(t, s.Commit(ctx, []*ledger.Account{&update}, nil))
	assert.Equal(t, id, update.Id)

	actual, err := s.Get(ctx, expected.Address)
	require.NoError(t, err)
	assertEqualAccounts(t, &update, actual)
}

func testDelete(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	kept := ledger.NewSystemAccount(newKey(t), 10)
	removed := ledger.NewSystemAccount(newKey(t), 20)
	require.NoError(t, s.Commit(ctx, []*ledger.Account{kept, removed}, nil))

	kept.Lamports = 30
	require.NoError(t, s.Commit(ctx, []*ledger.Account{kept}, []ed25519.PublicKey{removed.Address}))

	_, err := s.Get(ctx, removed.Address)
	assert.Equal(t, ledger.ErrAccountNotFound, err)

	actual, err := s.Get(ctx, kept.Address)
	require.NoError(t, err)
	assert.EqualValues(t, 30, actual.Lamports)

	// Deleting something that doesn't exist is a no-op.
	require.NoError(t, s.Commit(ctx, nil, []ed25519.PublicKey{newKey(t)}))

	invalid := &ledger.Account{Address: newKey(t), Lamports: 1}
	assert.Error(t, s.Commit(ctx, []*ledger.Account{invalid}, nil))
}

func testGetAllByOwner(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	owner := newKey(t)

	_, err := s.GetAllByOwner(ctx, owner, query.EmptyCursor, 10, query.Ascending)
	assert.Equal(t, ledger.ErrAccountNotFound, err)

	var expected []*ledger.Account
	for i := 0; i < 5; i++ {
		account := &ledger.Account{
			Address:  newKey(t),
			Lamports: uint64(i + 1),
			Data:     []byte{byte(i)},
			Owner:    owner,
		}
		require.NoError(t, s.Commit(ctx, []*ledger.Account{account}, nil))
		expected = append(expected, account)

		require.NoError(t, s.Commit(ctx, []*ledger.Account{ledger.NewSystemAccount(newKey(t), 1)}, nil))
	}

	actual, err := s.GetAllByOwner(ctx, owner, query.EmptyCursor, 10, query.Ascending)
	require.NoError(t, err)
	require.Len(t, actual, 5)
	for i := range actual {
		assertEqualAccounts(t, expected[i], actual[i])
	}

	actual, err = s.GetAllByOwner(ctx, owner, query.EmptyCursor, 2, query.Ascending)
	require.NoError(t, err)
	require.Len(t, actual, 2)
	assertEqualAccounts(t, expected[0], actual[0])
	assertEqualAccounts(t, expected[1], actual[1])

	actual, err = s.GetAllByOwner(ctx, owner, query.ToCursor(actual[1].Id), 10, query.Ascending)
	require.NoError(t, err)
	require.Len(t, actual, 3)
	assertEqualAccounts(t, expected[2], actual[0])

	actual, err = s.GetAllByOwner(ctx, owner, query.EmptyCursor, 2, query.Descending)
	require.NoError(t, err)
	require.Len(t, actual, 2)
	assertEqualAccounts(t, expected[4], actual[0])
	assertEqualAccounts(t, expected[3], actual[1])

	actual, err = s.GetAllByOwner(ctx, owner, query.ToCursor(expected[1].Id), 10, query.Descending)
	require.NoError(t, err)
	require.Len(t, actual, 1)
	assertEqualAccounts(t, expected[0], actual[0])

	_, err = s.GetAllByOwner(ctx, owner, query.ToCursor(expected[4].Id), 10, query.Ascending)
	assert.Equal(t, ledger.ErrAccountNotFound, err)
}

func testGetLatestSlot(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	slot, err := s.GetLatestSlot(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, slot)

	older := ledger.NewSystemAccount(newKey(t), 1)
	older.Slot = 50_001
	newer := ledger.NewSystemAccount(newKey(t), 1)
	newer.Slot = 7
	require.NoError(t, s.Commit(ctx, []*ledger.Account{older, newer}, nil))

	slot, err = s.GetLatestSlot(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 50_001, slot)

	require.NoError(t, s.Commit(ctx, nil, []ed25519.PublicKey{older.Address}))

	slot, err = s.GetLatestSlot(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 7, slot)
}

func assertEqualAccounts(t *testing.T, expected, actual *ledger.Account) {
	assert.Equal(t, expected.Id, actual.Id)
	assert.EqualValues(t, expected.Address, actual.Address)
	assert.EqualValues(t, expected.Owner, actual.Owner)
	assert.Equal(t, expected.Lamports, actual.Lamports)
	assert.Equal(t, expected.Data, actual.Data)
	assert.Equal(t, expected.Executable, actual.Executable)
	assert.Equal(t, expected.Slot, actual.Slot)
}

func newKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}
