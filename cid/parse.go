package cid

import (
	"fmt"
	"strings"

	"xdao.co/reservecid/codec/base32"
	"xdao.co/reservecid/codec/base58"
	"xdao.co/reservecid/codec/varint"
	"xdao.co/reservecid/errs"
)

// Parse decodes the text form of an identifier.
//
// Accepted forms: "Qm..." (V0), "b..." (V1, base32; the remainder is
// case-folded) and "z..." (V1, base58btc). Any other prefix fails with
// InvalidCID.
func Parse(s string) (CID, error) {
	switch {
	case s == "":
		return Undef, errs.New(errs.KindInvalidCID, "RCID-CID-001", "empty cid")
	case strings.HasPrefix(s, "Qm"):
		raw, err := base58.Decode(s)
		if err != nil {
			return Undef, errs.Wrap(errs.KindInvalidCID, "RCID-CID-002", "invalid v0 cid text", err)
		}
		return castV0(raw)
	case s[0] == 'b':
		raw, err := base32.Identifier.Decode(strings.ToLower(s[1:]))
		if err != nil {
			return Undef, errs.Wrap(errs.KindInvalidCID, "RCID-CID-002", "invalid base32 cid text", err)
		}
		return castV1(raw)
	case s[0] == 'z':
		raw, err := base58.Decode(s[1:])
		if err != nil {
			return Undef, errs.Wrap(errs.KindInvalidCID, "RCID-CID-002", "invalid base58 cid text", err)
		}
		return castV1(raw)
	default:
		return Undef, errs.New(errs.KindInvalidCID, "RCID-CID-001", fmt.Sprintf("unsupported cid prefix %q", s[:1]))
	}
}

// Cast decodes the binary form returned by Bytes. A 34-byte sha2-256
// multihash is a V0 identifier; anything else must be a V1 layout.
func Cast(raw []byte) (CID, error) {
	if len(raw) == MultihashSize && raw[0] == HashSHA2_256 {
		return castV0(raw)
	}
	return castV1(raw)
}

func castV0(raw []byte) (CID, error) {
	if len(raw) != MultihashSize {
		return Undef, errs.New(errs.KindInvalidCID, "RCID-CID-003",
			fmt.Sprintf("v0 cid must decode to %d bytes, got %d", MultihashSize, len(raw)))
	}
	if err := checkMultihash(raw); err != nil {
		return Undef, err
	}
	return NewV0(raw[2:])
}

func castV1(raw []byte) (CID, error) {
	if len(raw) == 0 || raw[0] != byte(V1) {
		return Undef, errs.New(errs.KindInvalidCID, "RCID-CID-005", "missing v1 version marker")
	}
	tag, n, err := varint.Decode(raw, 1)
	if err != nil {
		return Undef, errs.Wrap(errs.KindInvalidCID, "RCID-CID-006", "invalid codec tag", err)
	}
	codec := Codec(tag)
	if !codec.Known() {
		return Undef, errs.New(errs.KindInvalidCID, "RCID-CID-007", fmt.Sprintf("unsupported codec %s", codec))
	}
	mh := raw[1+n:]
	if len(mh) != MultihashSize {
		return Undef, errs.New(errs.KindInvalidCID, "RCID-CID-003",
			fmt.Sprintf("multihash must be %d bytes, got %d", MultihashSize, len(mh)))
	}
	if err := checkMultihash(mh); err != nil {
		return Undef, err
	}
	return NewV1(codec, mh[2:])
}

func checkMultihash(mh []byte) error {
	if mh[0] != HashSHA2_256 || mh[1] != DigestSize {
		return errs.New(errs.KindInvalidCID, "RCID-CID-004",
			fmt.Sprintf("unsupported multihash header %#02x %#02x", mh[0], mh[1]))
	}
	return nil
}
