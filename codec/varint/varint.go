// Package varint implements the multiformats unsigned varint: little-endian
// base-128 groups with the continuation bit (0x80) set on every byte but
// the last.
package varint

import (
	"errors"
	"fmt"

	"github.com/multiformats/go-varint"

	"xdao.co/reservecid/errs"
)

const (
	// MaxValue is the largest value Decode accepts (63 bits).
	MaxValue = 1<<63 - 1
	// MaxLen is the longest encoding Decode accepts.
	MaxLen = 9
)

// Encode returns the varint encoding of v.
// Values above MaxValue encode but will not decode.
func Encode(v uint64) []byte {
	return varint.ToUvarint(v)
}

// Size returns len(Encode(v)).
func Size(v uint64) int {
	return varint.UvarintSize(v)
}

// Decode reads one varint from buf starting at offset. It returns the value
// and the number of bytes consumed.
func Decode(buf []byte, offset int) (uint64, int, error) {
	if offset < 0 || offset >= len(buf) {
		return 0, 0, errs.New(errs.KindInvalidCharacter, "RCID-VARINT-001",
			fmt.Sprintf("varint offset %d out of range", offset))
	}
	v, n, err := varint.FromUvarint(buf[offset:])
	if err != nil {
		switch {
		case errors.Is(err, varint.ErrUnderflow):
			return 0, 0, errs.Wrap(errs.KindInvalidCharacter, "RCID-VARINT-002", "truncated varint", err)
		case errors.Is(err, varint.ErrNotMinimal):
			return 0, 0, errs.Wrap(errs.KindInvalidCharacter, "RCID-VARINT-003", "non-minimal varint", err)
		default:
			return 0, 0, errs.Wrap(errs.KindInvalidCharacter, "RCID-VARINT-004", "varint overflow", err)
		}
	}
	return v, n, nil
}
