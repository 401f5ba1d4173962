package program

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-dice/pkg/ledger"
	ed25519program "github.com/code-payments/code-dice/pkg/solana/ed25519"
	"github.com/code-payments/code-dice/pkg/solana/dice"
	"github.com/code-payments/code-dice/pkg/solana/sysvar"
)

// ProofVerifier checks that the batch executing a resolution carries a proof
// that signature is house's signature over message.
type ProofVerifier interface {
	Verify(ctx *ledger.InvokeContext, sysvarAccount, house ed25519.PublicKey, signature, message []byte) error
}

type ed25519SysvarVerifier struct{}

// NewEd25519SysvarVerifier returns a ProofVerifier that looks for the proof in
// the ed25519 program instruction immediately preceding the executing
// instruction. The host runs the cryptographic check for that instruction
// before any program executes, so only its contents are compared here.
func NewEd25519SysvarVerifier() ProofVerifier {
	return ed25519SysvarVerifier{}
}

func (ed25519SysvarVerifier) Verify(ctx *ledger.InvokeContext, sysvarAccount, house ed25519.PublicKey, signature, message []byte) error {
	current, err := ctx.LoadCurrentIndex(sysvarAccount)
	if err != nil {
		return err
	}
	if current == 0 {
		return dice.ErrInvalidEd25519ProgramID
	}

	instruction, err := ctx.LoadInstructionAt(sysvarAccount, int(current)-1)
	if errors.Is(err, sysvar.ErrInstructionNotFound) {
		return dice.ErrInvalidEd25519ProgramID
	} else if err != nil {
		return err
	}

	if !bytes.Equal(instruction.Program, ed25519program.ProgramKey) {
		return dice.ErrInvalidEd25519ProgramID
	}
	if len(instruction.Accounts) != 0 {
		return dice.ErrInvalidEd25519Accounts
	}

	signatures, err := ed25519program.Unpack(instruction.Data)
	if err != nil {
		return dice.ErrInvalidEd25519Header
	}
	if len(signatures) != 1 {
		return dice.ErrInvalidEd25519SignatureLen
	}

	proof := signatures[0]
	if !proof.Offsets.IsSelfContained() {
		return dice.ErrInvalidEd25519Header
	}
	if !bytes.Equal(proof.PublicKey, house) {
		return dice.ErrInvalidEd25519Pubkey
	}
	if !bytes.Equal(proof.Signature, signature) {
		return dice.ErrInvalidEd25519Signature
	}
	if !bytes.Equal(proof.Message, message) {
		return dice.ErrInvalidEd25519Message
	}

	return nil
}
