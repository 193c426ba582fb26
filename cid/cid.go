// Package cid parses and serializes content identifiers.
//
// Only sha2-256 identifiers are supported, in two versions:
//
//   - V0: base58btc of the 34-byte multihash, always dag-pb ("Qm...").
//   - V1: version byte, varint codec tag and multihash; text form is
//     lowercase base32 with a "b" prefix, or base58btc with a "z" prefix.
//
// CID values are immutable and comparable with ==.
package cid

import (
	"fmt"

	"xdao.co/reservecid/codec/base32"
	"xdao.co/reservecid/codec/base58"
	"xdao.co/reservecid/codec/varint"
	"xdao.co/reservecid/digest"
	"xdao.co/reservecid/errs"
)

const (
	// HashSHA2_256 is the multihash function tag for sha2-256.
	HashSHA2_256 = 0x12
	// DigestSize is the sha2-256 digest length.
	DigestSize = 32
	// MultihashSize is the length of the multihash envelope.
	MultihashSize = 2 + DigestSize
	// V0Length is the text length of a V0 identifier.
	V0Length = 46
)

// CID is a content identifier. The zero value is undefined.
type CID struct {
	version Version
	codec   Codec
	digest  [DigestSize]byte
}

// Undef is the undefined CID.
var Undef CID

// NewV0 returns a V0 (dag-pb) identifier for a sha2-256 digest.
func NewV0(sum []byte) (CID, error) {
	c := CID{version: V0, codec: DagPB}
	if err := c.setDigest(sum); err != nil {
		return Undef, err
	}
	return c, nil
}

// NewV1 returns a V1 identifier for a sha2-256 digest.
func NewV1(codec Codec, sum []byte) (CID, error) {
	if !codec.Known() {
		return Undef, errs.New(errs.KindInvalidCID, "RCID-CID-007", fmt.Sprintf("unsupported codec %s", codec))
	}
	c := CID{version: V1, codec: codec}
	if err := c.setDigest(sum); err != nil {
		return Undef, err
	}
	return c, nil
}

// Sum hashes data with sha2-256 and returns its V1 identifier.
func Sum(codec Codec, data []byte) (CID, error) {
	d := digest.Default.Sum256(data)
	return NewV1(codec, d[:])
}

// SumV0 hashes data with sha2-256 and returns its V0 identifier.
func SumV0(data []byte) CID {
	return CID{version: V0, codec: DagPB, digest: digest.Default.Sum256(data)}
}

func (c *CID) setDigest(d []byte) error {
	if len(d) != DigestSize {
		return errs.New(errs.KindInvalidCID, "RCID-CID-009",
			fmt.Sprintf("digest must be %d bytes, got %d", DigestSize, len(d)))
	}
	copy(c.digest[:], d)
	return nil
}

// Defined reports whether c is a valid identifier.
func (c CID) Defined() bool {
	switch c.version {
	case V0:
		return c.codec == DagPB
	case V1:
		return c.codec.Known()
	default:
		return false
	}
}

func (c CID) Version() Version { return c.version }

func (c CID) Codec() Codec { return c.codec }

// Digest returns a copy of the 32-byte sha2-256 digest.
func (c CID) Digest() []byte {
	out := make([]byte, DigestSize)
	copy(out, c.digest[:])
	return out
}

// Multihash returns the 34-byte multihash envelope: 0x12, 0x20, digest.
func (c CID) Multihash() []byte {
	out := make([]byte, 0, MultihashSize)
	out = append(out, HashSHA2_256, DigestSize)
	return append(out, c.digest[:]...)
}

// ToV1 returns the V1 form of c. V0 identifiers become V1 dag-pb with the
// same digest.
func (c CID) ToV1() CID {
	if c.version == V0 && c.Defined() {
		c.version = V1
	}
	return c
}

// Bytes returns the binary form: the multihash for V0, or version byte,
// codec varint and multihash for V1.
func (c CID) Bytes() ([]byte, error) {
	if !c.Defined() {
		return nil, errUndefined()
	}
	if c.version == V0 {
		return c.Multihash(), nil
	}
	out := make([]byte, 0, 1+varint.Size(uint64(c.codec))+MultihashSize)
	out = append(out, byte(V1))
	out = append(out, varint.Encode(uint64(c.codec))...)
	return append(out, c.Multihash()...), nil
}

// Encode returns the canonical text form: "Qm..." for V0 and "b..." for V1.
func (c CID) Encode() (string, error) {
	if c.version == V0 {
		return c.EncodeBase(Base58)
	}
	return c.EncodeBase(Base32)
}

// EncodeBase returns the text form in base b. V0 identifiers only have a
// base58 form.
func (c CID) EncodeBase(b Base) (string, error) {
	raw, err := c.Bytes()
	if err != nil {
		return "", err
	}
	if c.version == V0 {
		if b != Base58 {
			return "", errs.New(errs.KindInvalidCID, "RCID-CID-010", fmt.Sprintf("v0 identifiers have no %s form", b))
		}
		return base58.Encode(raw), nil
	}
	switch b {
	case Base32:
		return "b" + base32.Identifier.Encode(raw), nil
	case Base58:
		return "z" + base58.Encode(raw), nil
	default:
		return "", errs.New(errs.KindInvalidCID, "RCID-CID-011", fmt.Sprintf("unsupported base %s", b))
	}
}

// String returns the canonical text form, or "<undefined cid>".
func (c CID) String() string {
	s, err := c.Encode()
	if err != nil {
		return "<undefined cid>"
	}
	return s
}

// MarshalText implements encoding.TextMarshaler.
func (c CID) MarshalText() ([]byte, error) {
	s, err := c.Encode()
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func errUndefined() error {
	return errs.New(errs.KindInvalidCID, "RCID-CID-008", "undefined cid")
}
