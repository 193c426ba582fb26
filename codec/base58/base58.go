// Package base58 encodes and decodes byte strings with the bitcoin base58
// alphabet. Leading zero bytes map to leading '1' symbols and back.
package base58

import (
	"github.com/mr-tron/base58"

	"xdao.co/reservecid/errs"
)

// Alphabet is the bitcoin base58 alphabet.
const Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// Encode returns the base58 text of b. Encode(nil) is "".
func Encode(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return base58.EncodeAlphabet(b, base58.BTCAlphabet)
}

// Decode returns the bytes encoded by s. Decode("") returns an empty slice.
func Decode(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}
	out, err := base58.DecodeAlphabet(s, base58.BTCAlphabet)
	if err != nil {
		return nil, errs.Wrap(errs.KindInvalidCharacter, "RCID-B58-001", "invalid base58 symbol", err)
	}
	return out, nil
}
