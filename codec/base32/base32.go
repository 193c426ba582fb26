// Package base32 provides unpadded RFC4648 base32 with two separate
// alphabet bindings: lowercase for content identifiers and uppercase for
// reserve addresses. The two are distinct values and are never merged.
package base32

import (
	"fmt"
	"strings"

	"github.com/multiformats/go-base32"

	"xdao.co/reservecid/errs"
)

const (
	lowerAlphabet = "abcdefghijklmnopqrstuvwxyz234567"
	upperAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"
)

// Encoding is one unpadded base32 alphabet.
type Encoding struct {
	name     string
	alphabet string
	enc      *base32.Encoding
}

var (
	// Identifier is the lowercase binding used by CIDv1 text ("b" prefix).
	Identifier = NewEncoding("identifier", lowerAlphabet)
	// Address is the uppercase binding used by reserve addresses.
	Address = NewEncoding("address", upperAlphabet)
)

// NewEncoding returns an unpadded encoding for a 32-symbol alphabet.
// It panics if alphabet is not 32 distinct ASCII symbols.
func NewEncoding(name, alphabet string) *Encoding {
	if len(alphabet) != 32 {
		panic(fmt.Sprintf("base32: alphabet %q must have 32 symbols", name))
	}
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == '=' || strings.IndexByte(alphabet[i+1:], alphabet[i]) >= 0 {
			panic(fmt.Sprintf("base32: alphabet %q has a repeated or reserved symbol", name))
		}
	}
	return &Encoding{
		name:     name,
		alphabet: alphabet,
		enc:      base32.NewEncoding(alphabet).WithPadding(base32.NoPadding),
	}
}

// Name returns the binding name ("identifier" or "address" for the built-ins).
func (e *Encoding) Name() string { return e.name }

// Encode returns the unpadded base32 text of b.
func (e *Encoding) Encode(b []byte) string {
	return e.enc.EncodeToString(b)
}

// EncodedLen returns the unpadded text length for n input bytes.
func (e *Encoding) EncodedLen(n int) int {
	return (n*8 + 4) / 5
}

// Decode returns the bytes encoded by s. Decoding stops at the first '='.
// Symbols are matched case-sensitively against this encoding's alphabet.
func (e *Encoding) Decode(s string) ([]byte, error) {
	if i := strings.IndexByte(s, '='); i >= 0 {
		s = s[:i]
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(e.alphabet, s[i]) < 0 {
			return nil, errs.New(errs.KindInvalidCharacter, "RCID-B32-001",
				fmt.Sprintf("invalid base32 symbol %q at offset %d", s[i], i))
		}
	}
	// 1, 3 or 6 trailing symbols cannot carry a whole byte.
	switch len(s) % 8 {
	case 1, 3, 6:
		return nil, errs.New(errs.KindInvalidCharacter, "RCID-B32-002",
			fmt.Sprintf("invalid base32 length %d", len(s)))
	}
	out, err := e.enc.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(errs.KindInvalidCharacter, "RCID-B32-003", "invalid base32 text", err)
	}
	return out, nil
}
