package storage

import "xdao.co/reservecid/cid"

// CAS is a minimal content-addressable block store.
//
// Contract:
// - Put MUST be idempotent.
// - Stored blocks MUST be immutable.
// - Identifiers MUST be IdentifierFor(bytes written): CIDv1, raw codec, sha2-256.
// - Get MUST return ErrNotFound when the identifier is absent.
type CAS interface {
	Put(bytes []byte) (cid.CID, error)
	Get(id cid.CID) ([]byte, error)
	Has(id cid.CID) bool
}

// IdentifierFor returns the identifier a CAS assigns to bytes.
func IdentifierFor(bytes []byte) cid.CID {
	id, err := cid.Sum(cid.Raw, bytes)
	if err != nil {
		// cid.Raw is always a known codec.
		panic(err)
	}
	return id
}

// Key returns the storage key for id. V0 and V1 identifiers with the same
// digest name the same raw block, so backends key on the V1 raw form.
func Key(id cid.CID) (cid.CID, error) {
	if !id.Defined() {
		return cid.Undef, ErrInvalidCID
	}
	k, err := cid.NewV1(cid.Raw, id.Digest())
	if err != nil {
		return cid.Undef, ErrInvalidCID
	}
	return k, nil
}
