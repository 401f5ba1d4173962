package dice

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeInstruction(t *testing.T) {
	keys := generateKeys(t, 2)

	instruction := NewInitializeInstruction(
		&InitializeInstructionAccounts{House: keys[0], Vault: keys[1]},
		&InitializeInstructionArgs{Amount: 5_000_000_000},
	)
	assert.EqualValues(t, PROGRAM_ID, instruction.Program)
	require.Len(t, instruction.Accounts, 3)
	assert.True(t, instruction.Accounts[0].IsSigner)
	assert.EqualValues(t, SYSTEM_PROGRAM_ID, instruction.Accounts[2].PublicKey)

	instructionType, err := GetInstructionType(instruction.Data)
	require.NoError(t, err)
	assert.Equal(t, InstructionTypeInitialize, instructionType)

	args, err := UnmarshalInitializeInstructionArgs(instruction.Data)
	require.NoError(t, err)
	assert.EqualValues(t, 5_000_000_000, args.Amount)

	_, err = UnmarshalInitializeInstructionArgs(instruction.Data[:10])
	assert.Equal(t, ErrInvalidInstructionData, err)
}

func TestPlaceBetInstruction(t *testing.T) {
	keys := generateKeys(t, 4)
	seed := SeedFromUint64(7)

	instruction := NewPlaceBetInstruction(
		&PlaceBetInstructionAccounts{Player: keys[0], House: keys[1], Vault: keys[2], Bet: keys[3]},
		&PlaceBetInstructionArgs{Seed: seed, Roll: 50, Amount: 1_000},
	)
	require.Len(t, instruction.Data, 8+25)
	require.Len(t, instruction.Accounts, 5)
	assert.True(t, instruction.Accounts[0].IsSigner)
	assert.False(t, instruction.Accounts[1].IsWritable)

	instructionType, err := GetInstructionType(instruction.Data)
	require.NoError(t, err)
	assert.Equal(t, InstructionTypePlaceBet, instructionType)

	args, err := UnmarshalPlaceBetInstructionArgs(instruction.Data)
	require.NoError(t, err)
	assert.Equal(t, seed, args.Seed)
	assert.EqualValues(t, 50, args.Roll)
	assert.EqualValues(t, 1_000, args.Amount)
}

func TestResolveBetInstruction(t *testing.T) {
	keys := generateKeys(t, 4)
	signature := make([]byte, ed25519.SignatureSize)
	for i := range signature {
		signature[i] = byte(i)
	}

	instruction := NewResolveBetInstruction(
		&ResolveBetInstructionAccounts{House: keys[0], Player: keys[1], Vault: keys[2], Bet: keys[3]},
		&ResolveBetInstructionArgs{Signature: signature},
	)
	require.Len(t, instruction.Data, 8+4+64)
	require.Len(t, instruction.Accounts, 6)
	assert.True(t, instruction.Accounts[0].IsSigner)
	assert.False(t, instruction.Accounts[0].IsWritable)
	assert.EqualValues(t, SYSVAR_INSTRUCTIONS_PUBKEY, instruction.Accounts[4].PublicKey)

	instructionType, err := GetInstructionType(instruction.Data)
	require.NoError(t, err)
	assert.Equal(t, InstructionTypeResolveBet, instructionType)

	args, err := UnmarshalResolveBetInstructionArgs(instruction.Data)
	require.NoError(t, err)
	assert.Equal(t, signature, args.Signature)

	_, err = UnmarshalResolveBetInstructionArgs(instruction.Data[:20])
	assert.Equal(t, ErrInvalidInstructionData, err)
	_, err = UnmarshalResolveBetInstructionArgs(append(instruction.Data, 0))
	assert.Equal(t, ErrInvalidInstructionData, err)
}

func TestRefundBetInstruction(t *testing.T) {
	keys := generateKeys(t, 4)

	instruction := NewRefundBetInstruction(
		&RefundBetInstructionAccounts{Player: keys[0], House: keys[1], Vault: keys[2], Bet: keys[3]},
		&RefundBetInstructionArgs{},
	)
	require.Len(t, instruction.Data, 8)
	assert.True(t, instruction.Accounts[0].IsSigner)

	instructionType, err := GetInstructionType(instruction.Data)
	require.NoError(t, err)
	assert.Equal(t, InstructionTypeRefundBet, instructionType)
	assert.Equal(t, "refund_bet", instructionType.String())

	_, err = UnmarshalRefundBetInstructionArgs(append(instruction.Data, 1))
	assert.Equal(t, ErrInvalidInstructionData, err)
}

func TestGetInstructionType_Unknown(t *testing.T) {
	_, err := GetInstructionType([]byte{1, 2, 3})
	assert.Equal(t, ErrInvalidInstructionData, err)

	instructionType, err := GetInstructionType(make([]byte, 8))
	assert.Equal(t, ErrInvalidInstructionData, err)
	assert.Equal(t, InstructionTypeUnknown, instructionType)
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
