package dice

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"math/big"
)

// Seed is the 16 byte nonce a player picks to derive a unique bet address. It
// holds a little-endian u128.
type Seed [16]byte

// NewRandomSeed returns a seed read from crypto/rand.
func NewRandomSeed() (Seed, error) {
	var s Seed
	_, err := rand.Read(s[:])
	return s, err
}

// SeedFromUint64 returns the seed encoding v as a u128.
func SeedFromUint64(v uint64) Seed {
	var s Seed
	binary.LittleEndian.PutUint64(s[:], v)
	return s
}

// BigInt returns the u128 value of the seed.
func (s Seed) BigInt() *big.Int {
	be := make([]byte, len(s))
	for i := range s {
		be[len(s)-1-i] = s[i]
	}
	return new(big.Int).SetBytes(be)
}

func (s Seed) String() string {
	return hex.EncodeToString(s[:])
}
