package dice

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/code-dice/pkg/solana/binary"
)

const (
	BetAccountSize = (8 + // discriminator
		1 + // bump
		1 + // roll
		8 + // slot
		8 + // amount
		16 + // seed
		32) // player
)

var BetAccountDiscriminator = []byte{0x93, 0x17, 0x23, 0x3b, 0x0f, 0x4b, 0x9b, 0x20}

type BetAccount struct {
	Bump   uint8
	Roll   uint8
	Slot   uint64
	Amount uint64
	Seed   Seed
	Player ed25519.PublicKey
}

func (obj *BetAccount) Marshal() []byte {
	data := make([]byte, BetAccountSize)

	var offset int
	putDiscriminator(data, BetAccountDiscriminator, &offset)
	binary.PutUint8(data[offset:], obj.Bump, &offset)
	binary.PutUint8(data[offset:], obj.Roll, &offset)
	binary.PutUint64(data[offset:], obj.Slot, &offset)
	binary.PutUint64(data[offset:], obj.Amount, &offset)
	binary.PutBytes(data[offset:], obj.Seed[:], len(obj.Seed), &offset)
	binary.PutKey32(data[offset:], obj.Player, &offset)

	return data
}

// Message returns the bytes the house signs to resolve the bet, which is the
// account data without its discriminator.
func (obj *BetAccount) Message() []byte {
	return obj.Marshal()[len(BetAccountDiscriminator):]
}

func (obj *BetAccount) Unmarshal(data []byte) error {
	if len(data) < BetAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, BetAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	binary.GetUint8(data[offset:], &obj.Bump, &offset)
	binary.GetUint8(data[offset:], &obj.Roll, &offset)
	binary.GetUint64(data[offset:], &obj.Slot, &offset)
	binary.GetUint64(data[offset:], &obj.Amount, &offset)
	binary.GetBytes(data[offset:], obj.Seed[:], &offset)
	binary.GetKey32(data[offset:], &obj.Player, &offset)

	return nil
}

func (obj *BetAccount) String() string {
	return fmt.Sprintf(
		"Bet{bump=%d,roll=%d,slot=%d,amount=%d,seed=%s,player=%s}",
		obj.Bump,
		obj.Roll,
		obj.Slot,
		obj.Amount,
		obj.Seed.String(),
		base58.Encode(obj.Player),
	)
}
