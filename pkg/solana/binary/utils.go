// Package binary provides little-endian offset helpers for fixed account and
// instruction layouts. Each helper writes or reads at the start of the given
// slice and advances offset by the number of bytes consumed.
package binary

import (
	"crypto/ed25519"
	"encoding/binary"
)

func PutKey32(dst []byte, src []byte, offset *int) {
	copy(dst[:ed25519.PublicKeySize], src)
	*offset += ed25519.PublicKeySize
}

func PutBytes(dst []byte, src []byte, size int, offset *int) {
	copy(dst[:size], src)
	*offset += size
}

func PutUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst, v)
	*offset += 8
}

func PutUint32(dst []byte, v uint32, offset *int) {
	binary.LittleEndian.PutUint32(dst, v)
	*offset += 4
}

func PutUint16(dst []byte, v uint16, offset *int) {
	binary.LittleEndian.PutUint16(dst, v)
	*offset += 2
}

func PutUint8(dst []byte, v uint8, offset *int) {
	dst[0] = v
	*offset += 1
}

// PutVec writes a borsh Vec<u8>: a u32 length followed by the bytes.
func PutVec(dst []byte, src []byte, offset *int) {
	binary.LittleEndian.PutUint32(dst, uint32(len(src)))
	copy(dst[4:], src)
	*offset += 4 + len(src)
}

func GetKey32(src []byte, dst *ed25519.PublicKey, offset *int) {
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src)
	*offset += ed25519.PublicKeySize
}

func GetBytes(src []byte, dst []byte, offset *int) {
	copy(dst, src)
	*offset += len(dst)
}

func GetUint64(src []byte, dst *uint64, offset *int) {
	*dst = binary.LittleEndian.Uint64(src)
	*offset += 8
}

func GetUint32(src []byte, dst *uint32, offset *int) {
	*dst = binary.LittleEndian.Uint32(src)
	*offset += 4
}

func GetUint16(src []byte, dst *uint16, offset *int) {
	*dst = binary.LittleEndian.Uint16(src)
	*offset += 2
}

func GetUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[0]
	*offset += 1
}

// GetVec reads a borsh Vec<u8>. ok is false if src is too short for the
// encoded length.
func GetVec(src []byte, dst *[]byte, offset *int) (ok bool) {
	if len(src) < 4 {
		return false
	}
	size := int(binary.LittleEndian.Uint32(src))
	if size > len(src)-4 {
		return false
	}
	*dst = make([]byte, size)
	copy(*dst, src[4:4+size])
	*offset += 4 + size
	return true
}
