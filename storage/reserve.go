package storage

import (
	"xdao.co/reservecid/cid"
	"xdao.co/reservecid/reserve"
)

// ReserveOf stores bytes in cas and returns the block identifier together
// with the reserve address carrying its digest.
func ReserveOf(cas CAS, bytes []byte) (cid.CID, string, error) {
	id, err := cas.Put(bytes)
	if err != nil {
		return cid.Undef, "", err
	}
	addr, err := reserve.AddressFromIdentifier(id)
	if err != nil {
		return cid.Undef, "", err
	}
	return id, addr, nil
}

// GetByReserve fetches the block whose digest is carried by a reserve address.
func GetByReserve(cas CAS, address string) ([]byte, error) {
	payload, err := reserve.Decode(address)
	if err != nil {
		return nil, err
	}
	id, err := cid.NewV1(cid.Raw, payload)
	if err != nil {
		return nil, err
	}
	return cas.Get(id)
}
