package ed25519

import (
	"crypto/ed25519"

	"github.com/pkg/errors"
)

var (
	ErrInvalidDataSize = errors.New("invalid instruction data size")
	ErrInvalidOffsets  = errors.New("invalid signature data offsets")
)

// Signature is one entry of a verification instruction after its offsets have
// been resolved. Parts referencing other instructions are left nil.
type Signature struct {
	Offsets SignatureOffsets

	PublicKey ed25519.PublicKey
	Signature []byte
	Message   []byte
}

// Unpack parses the signature entries of verification instruction data. Only
// parts stored in data itself are resolved; those referencing another
// instruction are left nil and the entry isn't self-contained.
func Unpack(data []byte) ([]Signature, error) {
	if len(data) < signatureOffsetsStart {
		return nil, ErrInvalidDataSize
	}

	count := int(data[0])
	if len(data) < signatureOffsetsStart+count*signatureOffsetsSize {
		return nil, ErrInvalidDataSize
	}

	signatures := make([]Signature, count)
	for i := range signatures {
		start := signatureOffsetsStart + i*signatureOffsetsSize
		offsets := getOffsets(data[start : start+signatureOffsetsSize])

		s := Signature{Offsets: offsets}
		if offsets.PublicKeyInstructionIndex == SameInstruction {
			pub, err := slice(data, offsets.PublicKeyOffset, ed25519.PublicKeySize)
			if err != nil {
				return nil, errors.Wrapf(err, "signature %d public key", i)
			}
			s.PublicKey = pub
		}
		if offsets.SignatureInstructionIndex == SameInstruction {
			sig, err := slice(data, offsets.SignatureOffset, ed25519.SignatureSize)
			if err != nil {
				return nil, errors.Wrapf(err, "signature %d signature", i)
			}
			s.Signature = sig
		}
		if offsets.MessageInstructionIndex == SameInstruction {
			msg, err := slice(data, offsets.MessageDataOffset, int(offsets.MessageDataSize))
			if err != nil {
				return nil, errors.Wrapf(err, "signature %d message", i)
			}
			s.Message = msg
		}

		signatures[i] = s
	}

	return signatures, nil
}

func slice(data []byte, offset uint16, size int) ([]byte, error) {
	end := int(offset) + size
	if end > len(data) {
		return nil, ErrInvalidOffsets
	}
	return data[offset:end], nil
}
