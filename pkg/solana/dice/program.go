package dice

import (
	"crypto/ed25519"
	"errors"

	"github.com/code-payments/code-dice/pkg/solana"
	"github.com/code-payments/code-dice/pkg/solana/system"
	"github.com/code-payments/code-dice/pkg/solana/sysvar"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
)

var (
	PROGRAM_ADDRESS = solana.MustBase58Decode("3GJV9YpK9BNahmJbuGHVfY2UyiDXDsCFvbvAP34G7LJE")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID = ed25519.PublicKey(system.ProgramKey[:])

	SYSVAR_INSTRUCTIONS_PUBKEY = sysvar.InstructionsKey
)

const (
	// RefundCooldownSlots is the number of slots, roughly an hour, after which
	// an unresolved bet may be refunded by its player.
	RefundCooldownSlots = 9000

	// HouseEdgeBps is the default house edge in basis points.
	HouseEdgeBps = 150

	MinRoll = 2
	MaxRoll = 99
)
