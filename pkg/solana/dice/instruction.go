package dice

import (
	"bytes"
)

type InstructionType uint8

const (
	InstructionTypeUnknown InstructionType = iota
	InstructionTypeInitialize
	InstructionTypePlaceBet
	InstructionTypeResolveBet
	InstructionTypeRefundBet
)

var (
	initializeInstructionDiscriminator = []byte{0xaf, 0xaf, 0x6d, 0x1f, 0x0d, 0x98, 0x9b, 0xed}
	placeBetInstructionDiscriminator   = []byte{0xde, 0x3e, 0x43, 0xdc, 0x3f, 0xa6, 0x7e, 0x21}
	resolveBetInstructionDiscriminator = []byte{0x89, 0x84, 0x21, 0x61, 0x30, 0xd0, 0x1e, 0x9f}
	refundBetInstructionDiscriminator  = []byte{0xd1, 0xb6, 0xe2, 0x60, 0x37, 0x79, 0x53, 0xb7}
)

// GetInstructionType identifies a dice instruction by its discriminator.
func GetInstructionType(data []byte) (InstructionType, error) {
	if len(data) < 8 {
		return InstructionTypeUnknown, ErrInvalidInstructionData
	}

	switch {
	case bytes.Equal(data[:8], initializeInstructionDiscriminator):
		return InstructionTypeInitialize, nil
	case bytes.Equal(data[:8], placeBetInstructionDiscriminator):
		return InstructionTypePlaceBet, nil
	case bytes.Equal(data[:8], resolveBetInstructionDiscriminator):
		return InstructionTypeResolveBet, nil
	case bytes.Equal(data[:8], refundBetInstructionDiscriminator):
		return InstructionTypeRefundBet, nil
	}
	return InstructionTypeUnknown, ErrInvalidInstructionData
}

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeInitialize:
		return "initialize"
	case InstructionTypePlaceBet:
		return "place_bet"
	case InstructionTypeResolveBet:
		return "resolve_bet"
	case InstructionTypeRefundBet:
		return "refund_bet"
	}
	return "unknown"
}
