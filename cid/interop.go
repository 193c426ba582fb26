package cid

import (
	"fmt"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"xdao.co/reservecid/errs"
)

// ToCid converts c to a go-cid value.
func (c CID) ToCid() (gocid.Cid, error) {
	if !c.Defined() {
		return gocid.Undef, errUndefined()
	}
	mh := multihash.Multihash(c.Multihash())
	if c.version == V0 {
		return gocid.NewCidV0(mh), nil
	}
	return gocid.NewCidV1(uint64(c.codec), mh), nil
}

// FromCid converts a go-cid value. Only sha2-256 identifiers with one of
// the supported codecs convert.
func FromCid(id gocid.Cid) (CID, error) {
	if !id.Defined() {
		return Undef, errUndefined()
	}
	dec, err := multihash.Decode(id.Hash())
	if err != nil {
		return Undef, errs.Wrap(errs.KindInvalidCID, "RCID-CID-004", "invalid multihash", err)
	}
	if dec.Code != HashSHA2_256 || dec.Length != DigestSize {
		return Undef, errs.New(errs.KindInvalidCID, "RCID-CID-004",
			fmt.Sprintf("unsupported multihash %s/%d", dec.Name, dec.Length))
	}
	switch id.Version() {
	case 0:
		return NewV0(dec.Digest)
	case 1:
		return NewV1(Codec(id.Type()), dec.Digest)
	default:
		return Undef, errs.New(errs.KindInvalidCID, "RCID-CID-005", fmt.Sprintf("unsupported cid version %d", id.Version()))
	}
}
