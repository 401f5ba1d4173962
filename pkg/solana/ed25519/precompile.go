package ed25519

import (
	"crypto/ed25519"
	"fmt"

	"github.com/code-payments/code-dice/pkg/solana"
)

// PrecompileError is the custom error code the runtime reports when a
// verification instruction fails.
//
// Reference: https://github.com/solana-labs/solana/blob/27eff8408b7223bb3c4ab70523f8a8dca3ca6645/sdk/src/precompiles.rs#L15
type PrecompileError uint32

const (
	PrecompileErrorInvalidPublicKey PrecompileError = iota
	PrecompileErrorInvalidRecoveryID
	PrecompileErrorInvalidSignature
	PrecompileErrorInvalidDataOffsets
	PrecompileErrorInvalidInstructionDataSize
)

func (e PrecompileError) Error() string {
	switch e {
	case PrecompileErrorInvalidPublicKey:
		return "invalid public key"
	case PrecompileErrorInvalidRecoveryID:
		return "invalid recovery id"
	case PrecompileErrorInvalidSignature:
		return "invalid signature"
	case PrecompileErrorInvalidDataOffsets:
		return "invalid data offsets"
	case PrecompileErrorInvalidInstructionDataSize:
		return "invalid instruction data size"
	default:
		return fmt.Sprintf("precompile error %d", uint32(e))
	}
}

func (e PrecompileError) CustomError() solana.CustomError {
	return solana.CustomError(e)
}

// Verify runs the native signature check over data, the data of a
// verification instruction. instructionDatas holds the data of every
// instruction in the batch so that offsets may reference them.
//
// Reference: https://github.com/solana-labs/solana/blob/27eff8408b7223bb3c4ab70523f8a8dca3ca6645/sdk/src/ed25519_instruction.rs#L87
func Verify(data []byte, instructionDatas [][]byte) error {
	if len(data) < signatureOffsetsStart {
		return PrecompileErrorInvalidInstructionDataSize
	}

	count := int(data[0])
	if count == 0 && len(data) > signatureOffsetsStart {
		return PrecompileErrorInvalidInstructionDataSize
	}
	if len(data) < signatureOffsetsStart+count*signatureOffsetsSize {
		return PrecompileErrorInvalidInstructionDataSize
	}

	for i := 0; i < count; i++ {
		start := signatureOffsetsStart + i*signatureOffsetsSize
		offsets := getOffsets(data[start : start+signatureOffsetsSize])

		signature, err := dataSlice(data, instructionDatas, offsets.SignatureInstructionIndex, offsets.SignatureOffset, ed25519.SignatureSize)
		if err != nil {
			return err
		}
		publicKey, err := dataSlice(data, instructionDatas, offsets.PublicKeyInstructionIndex, offsets.PublicKeyOffset, ed25519.PublicKeySize)
		if err != nil {
			return err
		}
		message, err := dataSlice(data, instructionDatas, offsets.MessageInstructionIndex, offsets.MessageDataOffset, int(offsets.MessageDataSize))
		if err != nil {
			return err
		}

		if !ed25519.Verify(publicKey, message, signature) {
			return PrecompileErrorInvalidSignature
		}
	}

	return nil
}

func dataSlice(data []byte, instructionDatas [][]byte, index, offset uint16, size int) ([]byte, error) {
	source := data
	if index != SameInstruction {
		if int(index) >= len(instructionDatas) {
			return nil, PrecompileErrorInvalidDataOffsets
		}
		source = instructionDatas[index]
	}

	end := int(offset) + size
	if end > len(source) {
		return nil, PrecompileErrorInvalidDataOffsets
	}
	return source[offset:end], nil
}
