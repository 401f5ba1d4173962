package ed25519

import (
	"crypto/ed25519"
	"encoding/binary"
	"math"

	"github.com/code-payments/code-dice/pkg/solana"
)

// Ed25519SigVerify111111111111111111111111111
var ProgramKey = ed25519.PublicKey{3, 125, 70, 214, 124, 147, 251, 190, 18, 249, 66, 143, 131, 141, 64, 255, 5, 112, 116, 73, 39, 244, 138, 100, 252, 202, 112, 68, 128, 0, 0, 0}

const (
	// SameInstruction is the instruction index that refers to the
	// verification instruction's own data.
	SameInstruction = math.MaxUint16

	signatureOffsetsStart = 2
	signatureOffsetsSize  = 14

	publicKeyOffset = signatureOffsetsStart + signatureOffsetsSize
	signatureOffset = publicKeyOffset + ed25519.PublicKeySize
	messageOffset   = signatureOffset + ed25519.SignatureSize
)

// SignatureOffsets locates the public key, signature and message of a single
// signature check within the instruction data of a batch.
//
// Reference: https://github.com/solana-labs/solana/blob/27eff8408b7223bb3c4ab70523f8a8dca3ca6645/sdk/src/ed25519_instruction.rs#L18
type SignatureOffsets struct {
	SignatureOffset           uint16
	SignatureInstructionIndex uint16
	PublicKeyOffset           uint16
	PublicKeyInstructionIndex uint16
	MessageDataOffset         uint16
	MessageDataSize           uint16
	MessageInstructionIndex   uint16
}

// IsSelfContained reports whether every part of the check lives in the
// verification instruction itself.
func (o SignatureOffsets) IsSelfContained() bool {
	return o.SignatureInstructionIndex == SameInstruction &&
		o.PublicKeyInstructionIndex == SameInstruction &&
		o.MessageInstructionIndex == SameInstruction
}

// Instruction builds a verification instruction carrying a single signature
// over message, using the standard self-contained layout.
//
// Reference: https://github.com/solana-labs/solana/blob/27eff8408b7223bb3c4ab70523f8a8dca3ca6645/sdk/src/ed25519_instruction.rs#L32
func Instruction(privateKey ed25519.PrivateKey, message []byte) solana.Instruction {
	publicKey := privateKey.Public().(ed25519.PublicKey)
	signature := ed25519.Sign(privateKey, message)

	return solana.NewInstruction(
		ProgramKey,
		InstructionData(publicKey, signature, message),
	)
}

// InstructionData lays out an already computed signature in the standard
// format. It's useful for building verification instructions whose contents
// don't match, which the host should reject.
func InstructionData(publicKey ed25519.PublicKey, signature, message []byte) []byte {
	data := make([]byte, messageOffset+len(message))

	data[0] = 1 // num_signatures
	data[1] = 0 // padding

	putOffsets(data[signatureOffsetsStart:], SignatureOffsets{
		SignatureOffset:           signatureOffset,
		SignatureInstructionIndex: SameInstruction,
		PublicKeyOffset:           publicKeyOffset,
		PublicKeyInstructionIndex: SameInstruction,
		MessageDataOffset:         messageOffset,
		MessageDataSize:           uint16(len(message)),
		MessageInstructionIndex:   SameInstruction,
	})

	copy(data[publicKeyOffset:], publicKey)
	copy(data[signatureOffset:], signature)
	copy(data[messageOffset:], message)

	return data
}

func putOffsets(dst []byte, o SignatureOffsets) {
	binary.LittleEndian.PutUint16(dst[0:], o.SignatureOffset)
	binary.LittleEndian.PutUint16(dst[2:], o.SignatureInstructionIndex)
	binary.LittleEndian.PutUint16(dst[4:], o.PublicKeyOffset)
	binary.LittleEndian.PutUint16(dst[6:], o.PublicKeyInstructionIndex)
	binary.LittleEndian.PutUint16(dst[8:], o.MessageDataOffset)
	binary.LittleEndian.PutUint16(dst[10:], o.MessageDataSize)
	binary.LittleEndian.PutUint16(dst[12:], o.MessageInstructionIndex)
}

func getOffsets(src []byte) SignatureOffsets {
	return SignatureOffsets{
		SignatureOffset:           binary.LittleEndian.Uint16(src[0:]),
		SignatureInstructionIndex: binary.LittleEndian.Uint16(src[2:]),
		PublicKeyOffset:           binary.LittleEndian.Uint16(src[4:]),
		PublicKeyInstructionIndex: binary.LittleEndian.Uint16(src[6:]),
		MessageDataOffset:         binary.LittleEndian.Uint16(src[8:]),
		MessageDataSize:           binary.LittleEndian.Uint16(src[10:]),
		MessageInstructionIndex:   binary.LittleEndian.Uint16(src[12:]),
	}
}
