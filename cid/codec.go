package cid

import (
	"fmt"

	"xdao.co/reservecid/errs"
)

// Version is the CID version.
type Version uint8

const (
	V0 Version = 0
	V1 Version = 1
)

func (v Version) String() string {
	switch v {
	case V0:
		return "v0"
	case V1:
		return "v1"
	default:
		return fmt.Sprintf("v%d", uint8(v))
	}
}

// Codec is a multicodec tag identifying the payload's data model.
type Codec uint64

const (
	Raw     Codec = 0x55
	DagPB   Codec = 0x70
	DagCBOR Codec = 0x71
	DagJSON Codec = 0x0129
)

var codecNames = map[Codec]string{
	Raw:     "raw",
	DagPB:   "dag-pb",
	DagCBOR: "dag-cbor",
	DagJSON: "dag-json",
}

// Known reports whether c is one of the four supported codecs.
func (c Codec) Known() bool {
	_, ok := codecNames[c]
	return ok
}

func (c Codec) String() string {
	if name, ok := codecNames[c]; ok {
		return name
	}
	return fmt.Sprintf("codec(%#x)", uint64(c))
}

// CodecFromName maps a multicodec name ("raw", "dag-pb", "dag-cbor",
// "dag-json") to its tag.
func CodecFromName(name string) (Codec, error) {
	for c, n := range codecNames {
		if n == name {
			return c, nil
		}
	}
	return 0, errs.New(errs.KindInvalidCID, "RCID-CID-007", fmt.Sprintf("unsupported codec %q", name))
}

// Base selects the text encoding of a V1 identifier.
type Base int

const (
	// Base32 is lowercase unpadded base32 with the "b" prefix.
	Base32 Base = iota
	// Base58 is base58btc with the "z" prefix.
	Base58
)

func (b Base) String() string {
	switch b {
	case Base32:
		return "base32"
	case Base58:
		return "base58"
	default:
		return fmt.Sprintf("base(%d)", int(b))
	}
}

// BaseFromName maps "base32" or "base58" (also "b" and "z") to a Base.
func BaseFromName(name string) (Base, error) {
	switch name {
	case "base32", "b":
		return Base32, nil
	case "base58", "base58btc", "z":
		return Base58, nil
	default:
		return 0, errs.New(errs.KindInvalidCID, "RCID-CID-011", fmt.Sprintf("unsupported base %q", name))
	}
}
