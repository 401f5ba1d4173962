package program

import (
	"crypto/ed25519"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-dice/pkg/solana/dice"
)

func TestOutcome_KnownValues(t *testing.T) {
	counting := make([]byte, 64)
	saturated := make([]byte, 64)
	for i := range counting {
		counting[i] = byte(i)
		saturated[i] = 0xff
	}

	assert.EqualValues(t, 73, Outcome(make([]byte, 64)))
	assert.EqualValues(t, 10, Outcome(counting))
	assert.EqualValues(t, 74, Outcome(saturated))
}

func TestOutcome_Range(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		message := dice.SeedFromUint64(uint64(i))
		signature := ed25519.Sign(priv, message[:])

		outcome := Outcome(signature)
		assert.True(t, outcome >= 1 && outcome <= 100)
		assert.Equal(t, outcome, Outcome(signature))
	}
}

func TestIsWin(t *testing.T) {
	assert.True(t, IsWin(49, 50))
	assert.False(t, IsWin(50, 50))
	assert.False(t, IsWin(51, 50))
	assert.False(t, IsWin(1, 1))
	assert.False(t, IsWin(100, 99))
}

func TestPayout(t *testing.T) {
	for _, tc := range []struct {
		amount   uint64
		roll     uint8
		edge     uint64
		expected uint64
	}{
		{1_000_000_000, 50, 150, 2_010_204_081},
		{100, 2, 150, 9_850},
		{1_000, 51, 0, 2_000},
		{1_000, 99, 150, 1_005},
		{1, 99, 150, 1},
		{math.MaxUint64, 99, 200, math.MaxUint64},
	} {
		actual, err := Payout(tc.amount, tc.roll, tc.edge)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, actual)
	}

	for _, tc := range []struct {
		amount uint64
		roll   uint8
		edge   uint64
	}{
		{math.MaxUint64, 99, 150},
		{math.MaxUint64, 2, 150},
		{100, 1, 150},
		{100, 0, 150},
		{100, 50, 10_001},
	} {
		_, err := Payout(tc.amount, tc.roll, tc.edge)
		assert.Equal(t, dice.ErrArithmeticOverflow, err)
	}
}
