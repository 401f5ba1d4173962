package sysvar

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/code-dice/pkg/solana"
)

const (
	flagIsSigner   = 1 << 0
	flagIsWritable = 1 << 1
)

var (
	ErrUnsupportedSysvar   = errors.New("account is not the instructions sysvar")
	ErrInstructionNotFound = errors.New("instruction index out of range")
	ErrInvalidData         = errors.New("invalid instructions sysvar data")
)

// MarshalInstructions serializes the decompiled instructions of a batch in
// the instructions sysvar layout:
//
//	u16 count ‖ u16 offset * count ‖ instruction * count ‖ u16 current index
//
// where each instruction is
//
//	u16 num_accounts ‖ (u8 flags ‖ pubkey) * num_accounts ‖ program ‖ u16 data_len ‖ data
//
// The current index is initialized to zero and updated with
// SetCurrentIndex as execution progresses.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/sysvar/instructions.rs#L77
func MarshalInstructions(instructions []solana.Instruction) []byte {
	b := bytes.NewBuffer(nil)

	var u16 [2]byte
	writeUint16 := func(v int) {
		binary.LittleEndian.PutUint16(u16[:], uint16(v))
		_, _ = b.Write(u16[:])
	}

	writeUint16(len(instructions))

	offsetsStart := b.Len()
	for range instructions {
		writeUint16(0)
	}

	offsets := make([]int, len(instructions))
	for i, instruction := range instructions {
		offsets[i] = b.Len()

		writeUint16(len(instruction.Accounts))
		for _, account := range instruction.Accounts {
			var flags byte
			if account.IsSigner {
				flags |= flagIsSigner
			}
			if account.IsWritable {
				flags |= flagIsWritable
			}
			_ = b.WriteByte(flags)
			_, _ = b.Write(account.PublicKey)
		}

		_, _ = b.Write(instruction.Program)
		writeUint16(len(instruction.Data))
		_, _ = b.Write(instruction.Data)
	}

	writeUint16(0)

	data := b.Bytes()
	for i, offset := range offsets {
		binary.LittleEndian.PutUint16(data[offsetsStart+2*i:], uint16(offset))
	}
	return data
}

// SetCurrentIndex stores the index of the executing instruction in the
// trailing two bytes of the sysvar data.
func SetCurrentIndex(data []byte, index uint16) {
	if len(data) < 2 {
		return
	}
	binary.LittleEndian.PutUint16(data[len(data)-2:], index)
}

// LoadCurrentIndex returns the index of the executing instruction.
func LoadCurrentIndex(data []byte) (uint16, error) {
	if len(data) < 2 {
		return 0, ErrInvalidData
	}
	return binary.LittleEndian.Uint16(data[len(data)-2:]), nil
}

// LoadInstructionAt deserializes the instruction at index.
func LoadInstructionAt(data []byte, index int) (solana.Instruction, error) {
	if len(data) < 2 {
		return solana.Instruction{}, ErrInvalidData
	}

	count := int(binary.LittleEndian.Uint16(data))
	if index < 0 || index >= count {
		return solana.Instruction{}, ErrInstructionNotFound
	}

	offsetPosition := 2 + 2*index
	if offsetPosition+2 > len(data) {
		return solana.Instruction{}, ErrInvalidData
	}
	r := &reader{data: data, pos: int(binary.LittleEndian.Uint16(data[offsetPosition:]))}

	var instruction solana.Instruction

	numAccounts := r.uint16()
	for i := 0; i < int(numAccounts) && r.err == nil; i++ {
		flags := r.bytes(1)
		pub := r.bytes(ed25519.PublicKeySize)
		if r.err != nil {
			break
		}

		instruction.Accounts = append(instruction.Accounts, solana.AccountMeta{
			PublicKey:  pub,
			IsSigner:   flags[0]&flagIsSigner != 0,
			IsWritable: flags[0]&flagIsWritable != 0,
		})
	}

	instruction.Program = r.bytes(ed25519.PublicKeySize)
	dataLen := r.uint16()
	instruction.Data = r.bytes(int(dataLen))

	if r.err != nil {
		return solana.Instruction{}, errors.Wrapf(r.err, "instruction %d", index)
	}
	return instruction, nil
}

// CheckKey verifies that an account passed to a program is the instructions
// sysvar.
func CheckKey(key ed25519.PublicKey) error {
	if !bytes.Equal(key, InstructionsKey) {
		return ErrUnsupportedSysvar
	}
	return nil
}

type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.data) {
		r.err = ErrInvalidData
		return nil
	}

	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+n])
	r.pos += n
	return out
}

func (r *reader) uint16() uint16 {
	b := r.bytes(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}
