package sysvar

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-dice/pkg/solana"
)

func TestInstructions_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 4)

	instructions := []solana.Instruction{
		solana.NewInstruction(keys[0], []byte{1, 2, 3}),
		solana.NewInstruction(
			keys[1],
			[]byte{4, 5},
			solana.NewAccountMeta(keys[2], true),
			solana.NewReadonlyAccountMeta(keys[3], false),
			solana.NewReadonlyAccountMeta(InstructionsKey, false),
		),
	}

	data := MarshalInstructions(instructions)

	current, err := LoadCurrentIndex(data)
	require.NoError(t, err)
	assert.EqualValues(t, 0, current)

	SetCurrentIndex(data, 1)
	current, err = LoadCurrentIndex(data)
	require.NoError(t, err)
	assert.EqualValues(t, 1, current)

	for i, expected := range instructions {
		actual, err := LoadInstructionAt(data, i)
		require.NoError(t, err)

		assert.EqualValues(t, expected.Program, actual.Program)
		assert.Equal(t, expected.Data, actual.Data)
		require.Len(t, actual.Accounts, len(expected.Accounts))
		for j := range expected.Accounts {
			assert.EqualValues(t, expected.Accounts[j].PublicKey, actual.Accounts[j].PublicKey)
			assert.Equal(t, expected.Accounts[j].IsSigner, actual.Accounts[j].IsSigner)
			assert.Equal(t, expected.Accounts[j].IsWritable, actual.Accounts[j].IsWritable)
		}
	}

	_, err = LoadInstructionAt(data, 2)
	assert.Equal(t, ErrInstructionNotFound, err)
	_, err = LoadInstructionAt(data, -1)
	assert.Equal(t, ErrInstructionNotFound, err)
}

func TestInstructions_Truncated(t *testing.T) {
	keys := generateKeys(t, 1)
	data := MarshalInstructions([]solana.Instruction{solana.NewInstruction(keys[0], []byte{1, 2, 3})})

	_, err := LoadInstructionAt(data[:10], 0)
	assert.Error(t, err)

	_, err = LoadCurrentIndex(nil)
	assert.Equal(t, ErrInvalidData, err)
}

func TestCheckKey(t *testing.T) {
	assert.NoError(t, CheckKey(InstructionsKey))
	assert.Equal(t, ErrUnsupportedSysvar, CheckKey(ClockKey))
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := 0; i < amount; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)

		keys[i] = pub
	}

	return keys
}
