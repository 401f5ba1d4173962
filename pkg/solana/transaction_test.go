package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Taken from: https://github.com/solana-labs/solana/blob/14339dec0a960e8161d1165b6a8e5cfb73e78f23/sdk/src/transaction.rs#L523
//
// The upstream example does not have the correct public key encoded in the
// keypair, so this is the same transaction with the correctly generated keypair.
const rustGeneratedAdjusted = "ATMfBMZ8phHEheLph8K9TJhRKhnE4qNZvWiXdUdJRmlTCRsQjWmW2CkQJeRHBCcsqFm2gynjL40M9mTe0Dxp4QIBAAEDfEya6wnC7f3Cv53qnOEywwIJ928rIdqAlfXYI1adXroBAQEEBQYHCAkJCQkJCQkJCQkJCQkJCQkIBwYFBAEBAQICAgQFBgcICQEBAQEBAQEBAQEBAQEBCQgHBgUEAgICAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAABAgIAAQMBAgM="

func TestTransaction_GenerateValidCrossImpl(t *testing.T) {
	keypair := ed25519.NewKeyFromSeed([]byte{48, 83, 2, 1, 1, 48, 5, 6, 3, 43, 101, 112, 4, 34, 4, 32, 255, 101, 36, 24, 124, 23,
		167, 21, 132, 204, 155, 5, 185, 58, 121, 75})
	programID := ed25519.PublicKey{2, 2, 2, 4, 5, 6, 7, 8, 9, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 9, 8, 7, 6, 5, 4,
		2, 2, 2}
	to := ed25519.PublicKey{1, 1, 1, 4, 5, 6, 7, 8, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 8, 7, 6, 5, 4, 1, 1, 1}

	tx := NewTransaction(
		keypair.Public().(ed25519.PublicKey),
		NewInstruction(
			programID,
			[]byte{1, 2, 3},
			NewAccountMeta(keypair.Public().(ed25519.PublicKey), true),
			NewAccountMeta(to, false),
		),
	)
	require.NoError(t, tx.Sign(keypair))
	assert.Equal(t, rustGeneratedAdjusted, base64.StdEncoding.EncodeToString(tx.Marshal()))

	var decoded Transaction
	require.NoError(t, decoded.Unmarshal(tx.Marshal()))
	assert.Equal(t, tx.Marshal(), decoded.Marshal())

	_, ok := decoded.VerifySignatures()
	assert.True(t, ok)
}

func TestTransaction_VerifySignatures(t *testing.T) {
	payer := generateKey(t)
	other := generateKey(t)
	program := public(generateKey(t))

	tx := NewTransaction(
		public(payer),
		NewInstruction(
			program,
			[]byte{1},
			NewReadonlyAccountMeta(public(other), true),
		),
	)

	require.NoError(t, tx.Sign(payer))
	index, ok := tx.VerifySignatures()
	assert.False(t, ok)
	assert.Equal(t, 1, index)

	require.NoError(t, tx.Sign(other))
	_, ok = tx.VerifySignatures()
	assert.True(t, ok)

	tx.Message.Instructions[0].Data = []byte{2}
	index, ok = tx.VerifySignatures()
	assert.False(t, ok)
	assert.Equal(t, 0, index)
}

func TestTransaction_SignUnknownAccount(t *testing.T) {
	payer := generateKey(t)
	stranger := generateKey(t)

	tx := NewTransaction(public(payer), NewInstruction(public(generateKey(t)), []byte{1}))
	assert.Error(t, tx.Sign(stranger))
}

func TestMessage_AccountPermissions(t *testing.T) {
	payer := generateKey(t)
	readonlySigner := generateKey(t)
	writable := public(generateKey(t))
	readonly := public(generateKey(t))
	program := public(generateKey(t))

	tx := NewTransaction(
		public(payer),
		NewInstruction(
			program,
			nil,
			NewReadonlyAccountMeta(public(readonlySigner), true),
			NewAccountMeta(writable, false),
			NewReadonlyAccountMeta(readonly, false),
		),
	)
	m := tx.Message
	require.NoError(t, m.Sanitize())

	for _, tc := range []struct {
		key      ed25519.PublicKey
		signer   bool
		writable bool
	}{
		{public(payer), true, true},
		{public(readonlySigner), true, false},
		{writable, false, true},
		{readonly, false, false},
		{program, false, false},
	} {
		index := indexOf(m.Accounts, tc.key)
		require.True(t, index >= 0)
		assert.Equal(t, tc.signer, m.IsSigner(index))
		assert.Equal(t, tc.writable, m.IsWritable(index))
	}

	decompiled, err := m.DecompileInstruction(0)
	require.NoError(t, err)
	assert.EqualValues(t, program, decompiled.Program)
	require.Len(t, decompiled.Accounts, 3)
	assert.True(t, decompiled.Accounts[0].IsSigner)
	assert.False(t, decompiled.Accounts[0].IsWritable)
	assert.True(t, bytes.Equal(writable, decompiled.Accounts[1].PublicKey))
	assert.True(t, decompiled.Accounts[1].IsWritable)
	assert.False(t, decompiled.Accounts[2].IsWritable)

	_, err = m.DecompileInstruction(1)
	assert.Error(t, err)
}

func TestMessage_Sanitize(t *testing.T) {
	payer := generateKey(t)
	program := public(generateKey(t))

	tx := NewTransaction(public(payer), NewInstruction(program, nil))
	require.NoError(t, tx.Message.Sanitize())

	bad := tx.Message
	bad.Instructions = []CompiledInstruction{{ProgramIndex: 0}}
	assert.Error(t, bad.Sanitize())

	bad = tx.Message
	bad.Instructions = []CompiledInstruction{{ProgramIndex: 1, Accounts: []byte{9}}}
	assert.Error(t, bad.Sanitize())

	bad = tx.Message
	bad.Header.NumReadonlySigned = 1
	assert.Error(t, bad.Sanitize())
}

func TestMessage_UnmarshalVersioned(t *testing.T) {
	var m Message
	assert.Error(t, m.Unmarshal([]byte{0x80, 1, 0, 0}))
	assert.Error(t, m.Unmarshal(nil))
}

func generateKey(t *testing.T) ed25519.PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return priv
}

func public(priv ed25519.PrivateKey) ed25519.PublicKey {
	return priv.Public().(ed25519.PublicKey)
}
