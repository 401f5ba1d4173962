package dice

import (
	"errors"
	"fmt"

	"github.com/code-payments/code-dice/pkg/solana"
)

// ProgramError is a failure reported by the dice program with a stable
// numeric code.
type ProgramError struct {
	Code    uint32
	Name    string
	Message string
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Message)
}

func (e *ProgramError) CustomError() solana.CustomError {
	return solana.CustomError(e.Code)
}

func newProgramError(code uint32, name, message string) *ProgramError {
	err := &ProgramError{Code: code, Name: name, Message: message}
	programErrors[code] = err
	return err
}

var programErrors = make(map[uint32]*ProgramError)

var (
	ErrInstructionFallbackNotFound  = newProgramError(101, "InstructionFallbackNotFound", "Fallback functions are not supported")
	ErrInstructionDidNotDeserialize = newProgramError(102, "InstructionDidNotDeserialize", "The program could not deserialize the given instruction")

	ErrConstraintSigner = newProgramError(2002, "ConstraintSigner", "A signer constraint was violated")
	ErrConstraintSeeds  = newProgramError(2006, "ConstraintSeeds", "A seeds constraint was violated")

	ErrAccountDiscriminatorMismatch = newProgramError(3002, "AccountDiscriminatorMismatch", "Account discriminator did not match what was expected")
	ErrAccountOwnedByWrongProgram   = newProgramError(3007, "AccountOwnedByWrongProgram", "The given account is owned by a different program than expected")
	ErrAccountNotInitialized        = newProgramError(3012, "AccountNotInitialized", "The program expected this account to be already initialized")

	ErrInvalidEd25519ProgramID    = newProgramError(6000, "InvalidEd25519ProgramID", "Invalid Ed25519 program ID")
	ErrInvalidEd25519Accounts     = newProgramError(6001, "InvalidEd25519Accounts", "Instruction should not include any accounts")
	ErrInvalidEd25519SignatureLen = newProgramError(6002, "InvalidEd25519SignatureLen", "Instruction should contain only 1 signature")
	ErrInvalidEd25519Header       = newProgramError(6003, "InvalidEd25519Header", "Signature not verifiable")
	ErrInvalidEd25519Pubkey       = newProgramError(6004, "InvalidEd25519Pubkey", "Signature pubkey does not match house pubkey")
	ErrInvalidEd25519Signature    = newProgramError(6005, "InvalidEd25519Signature", "Signature does not match")
	ErrInvalidEd25519Message      = newProgramError(6006, "InvalidEd25519Message", "Instruction data does not match")

	ErrRefundCooldownNotElapsed = newProgramError(7000, "RefundCooldownNotElapsed", "Bets can only be refunded after the cooldown has elapsed")
	ErrInvalidRoll              = newProgramError(7001, "InvalidRoll", "Roll is outside the accepted range")
	ErrInvalidAmount            = newProgramError(7002, "InvalidAmount", "Amount must be greater than zero")
	ErrArithmeticOverflow       = newProgramError(7003, "ArithmeticOverflow", "Arithmetic overflow")
	ErrPlayerMismatch           = newProgramError(7004, "PlayerMismatch", "Player does not match the bet")
	ErrInvalidSignatureLength   = newProgramError(7005, "InvalidSignatureLength", "Signature must be 64 bytes")
)

// GetProgramError returns the registered error for code.
func GetProgramError(code uint32) (*ProgramError, bool) {
	err, ok := programErrors[code]
	return err, ok
}

// GetErrorCode extracts the dice program error code from err, which may be a
// ProgramError, an InstructionError or a TransactionError.
func GetErrorCode(err error) (uint32, bool) {
	if err == nil {
		return 0, false
	}

	var programErr *ProgramError
	if errors.As(err, &programErr) {
		return programErr.Code, true
	}

	var instructionErr *solana.InstructionError
	if errors.As(err, &instructionErr) {
		return customCode(instructionErr)
	}

	var txnErr *solana.TransactionError
	if errors.As(err, &txnErr) && txnErr.InstructionError() != nil {
		return customCode(txnErr.InstructionError())
	}

	return 0, false
}

// IsError reports whether err carries the code of target.
func IsError(err error, target *ProgramError) bool {
	code, ok := GetErrorCode(err)
	return ok && code == target.Code
}

func customCode(err *solana.InstructionError) (uint32, bool) {
	custom := err.CustomError()
	if custom == nil {
		return 0, false
	}
	return uint32(*custom), true
}
