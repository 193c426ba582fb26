// Package reserve packs a 32-byte digest into a checksummed 58-character
// ledger reserve address and back, and bridges reserve addresses to
// content identifiers.
//
// Address layout: uppercase unpadded base32 of payload(32) ++ checksum(4),
// where checksum is the last 4 bytes of the first 32 bytes of
// sha2-512(payload).
package reserve

import (
	"fmt"

	"xdao.co/reservecid/cid"
	"xdao.co/reservecid/codec/base32"
	"xdao.co/reservecid/digest"
	"xdao.co/reservecid/errs"
)

const (
	PayloadSize  = 32
	ChecksumSize = 4
	// Size is the decoded address length.
	Size = PayloadSize + ChecksumSize
	// Length is the text length of an address.
	Length = 58
)

// Codec encodes and decodes reserve addresses with a digest provider.
// The zero value uses digest.Default.
type Codec struct {
	Digests digest.Provider
}

var std Codec

func (c Codec) digests() digest.Provider {
	if c.Digests == nil {
		return digest.Default
	}
	return c.Digests
}

// Checksum returns the 4-byte checksum of payload.
func (c Codec) Checksum(payload []byte) [ChecksumSize]byte {
	sum := c.digests().Sum512(payload)
	head := sum[:32]
	var out [ChecksumSize]byte
	copy(out[:], head[len(head)-ChecksumSize:])
	return out
}

// Encode returns the address text for a 32-byte payload.
func (c Codec) Encode(payload []byte) (string, error) {
	if len(payload) != PayloadSize {
		return "", errs.New(errs.KindInvalidReserveAddress, "RCID-ADDR-005",
			fmt.Sprintf("reserve payload must be %d bytes, got %d", PayloadSize, len(payload)))
	}
	sum := c.Checksum(payload)
	raw := make([]byte, 0, Size)
	raw = append(raw, payload...)
	raw = append(raw, sum[:]...)
	return base32.Address.Encode(raw), nil
}

// Decode verifies an address and returns its 32-byte payload.
func (c Codec) Decode(text string) ([]byte, error) {
	if len(text) != Length {
		return nil, errs.New(errs.KindInvalidReserveAddress, "RCID-ADDR-002",
			fmt.Sprintf("reserve address must be %d characters, got %d", Length, len(text)))
	}
	raw, err := base32.Address.Decode(text)
	if err != nil {
		return nil, errs.Wrap(errs.KindInvalidReserveAddress, "RCID-ADDR-001", "invalid reserve address encoding", err)
	}
	if len(raw) != Size {
		return nil, errs.New(errs.KindInvalidReserveAddress, "RCID-ADDR-002",
			fmt.Sprintf("reserve address must decode to %d bytes, got %d", Size, len(raw)))
	}
	// Unused low bits of the last symbol must be zero.
	if base32.Address.Encode(raw) != text {
		return nil, errs.New(errs.KindInvalidReserveAddress, "RCID-ADDR-004", "non-canonical reserve address encoding")
	}
	payload, got := raw[:PayloadSize], raw[PayloadSize:]
	want := c.Checksum(payload)
	if string(got) != string(want[:]) {
		return nil, errs.New(errs.KindInvalidReserveAddress, "RCID-ADDR-003", "reserve address checksum mismatch")
	}
	out := make([]byte, PayloadSize)
	copy(out, payload)
	return out, nil
}

// IdentifierFromAddress returns the V0 (dag-pb) identifier whose digest is
// the address payload.
func (c Codec) IdentifierFromAddress(text string) (cid.CID, error) {
	payload, err := c.Decode(text)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewV0(payload)
}

// AddressFromIdentifier returns the address whose payload is id's digest.
func (c Codec) AddressFromIdentifier(id cid.CID) (string, error) {
	if !id.Defined() {
		return "", errs.New(errs.KindInvalidCID, "RCID-CID-008", "undefined cid")
	}
	return c.Encode(id.Digest())
}

// Checksum returns the checksum of payload using digest.Default.
func Checksum(payload []byte) [ChecksumSize]byte { return std.Checksum(payload) }

// Encode returns the address text for a 32-byte payload.
func Encode(payload []byte) (string, error) { return std.Encode(payload) }

// Decode verifies an address and returns its 32-byte payload.
func Decode(text string) ([]byte, error) { return std.Decode(text) }

// IdentifierFromAddress returns the V0 identifier embedded in an address.
func IdentifierFromAddress(text string) (cid.CID, error) { return std.IdentifierFromAddress(text) }

// AddressFromIdentifier returns the address embedding id's digest.
func AddressFromIdentifier(id cid.CID) (string, error) { return std.AddressFromIdentifier(id) }

// Valid reports whether text is a well-formed address with a matching checksum.
func Valid(text string) bool {
	_, err := std.Decode(text)
	return err == nil
}
