package program

import (
	"crypto/sha256"
	"encoding/binary"
	"math/bits"

	"github.com/code-payments/code-dice/pkg/solana/dice"
)

const (
	bpsDenominator = 10_000
	percent        = 100
)

// Outcome derives the roll result from the house signature. The sha256 of the
// signature is split into two little-endian u128 halves, which are added
// modulo 2^128 and reduced into [1, 100].
func Outcome(signature []byte) uint8 {
	h := sha256.Sum256(signature)

	loLo := binary.LittleEndian.Uint64(h[0:8])
	loHi := binary.LittleEndian.Uint64(h[8:16])
	hiLo := binary.LittleEndian.Uint64(h[16:24])
	hiHi := binary.LittleEndian.Uint64(h[24:32])

	sumLo, carry := bits.Add64(loLo, hiLo, 0)
	sumHi, _ := bits.Add64(loHi, hiHi, carry)

	return uint8(bits.Rem64(sumHi, sumLo, percent)) + 1
}

// IsWin reports whether outcome beats a bet on roll.
func IsWin(outcome, roll uint8) bool {
	return outcome < roll
}

// Payout is the amount won by a bet of amount on roll:
//
//	amount * (10000 - houseEdgeBps) / (roll - 1) / 100
//
// Intermediate values are 128 bits wide. ErrArithmeticOverflow is returned
// when the edge is out of range, the roll leaves no odds, or the result
// doesn't fit in a u64.
func Payout(amount uint64, roll uint8, houseEdgeBps uint64) (uint64, error) {
	if houseEdgeBps > bpsDenominator || roll < 2 {
		return 0, dice.ErrArithmeticOverflow
	}

	hi, lo := bits.Mul64(amount, bpsDenominator-houseEdgeBps)
	hi, lo = div128(hi, lo, uint64(roll-1))
	hi, lo = div128(hi, lo, percent)
	if hi != 0 {
		return 0, dice.ErrArithmeticOverflow
	}
	return lo, nil
}

// div128 divides the 128 bit value hi:lo by d, which must be non-zero.
func div128(hi, lo, d uint64) (uint64, uint64) {
	qHi := hi / d
	qLo, _ := bits.Div64(hi%d, lo, d)
	return qHi, qLo
}
