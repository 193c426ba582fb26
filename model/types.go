package model

import (
	"encoding/hex"

	"xdao.co/reservecid/cid"
	"xdao.co/reservecid/locator"
	"xdao.co/reservecid/reserve"
)

// CIDInfo describes a content identifier in all of its text forms.
type CIDInfo struct {
	CID     string `json:"cid"`
	Version string `json:"version"`
	Codec   string `json:"codec"`
	Digest  string `json:"digest"`
	Base32  string `json:"base32"`
	Base58  string `json:"base58"`
	// V0 is set when the identifier has a dag-pb V0 form.
	V0      string `json:"v0,omitempty"`
	Reserve string `json:"reserve"`
}

type AddressInfo struct {
	Address  string `json:"address"`
	Payload  string `json:"payload"`
	Checksum string `json:"checksum"`
	CID      string `json:"cid"`
}

type URLInfo struct {
	URL     string `json:"url"`
	Scheme  string `json:"scheme"`
	CID     string `json:"cid"`
	Path    string `json:"path,omitempty"`
	Reserve string `json:"reserve"`
}

func DescribeCID(id cid.CID) (CIDInfo, error) {
	text, err := id.Encode()
	if err != nil {
		return CIDInfo{}, err
	}
	v1 := id.ToV1()
	b32, err := v1.EncodeBase(cid.Base32)
	if err != nil {
		return CIDInfo{}, err
	}
	b58, err := v1.EncodeBase(cid.Base58)
	if err != nil {
		return CIDInfo{}, err
	}
	addr, err := reserve.AddressFromIdentifier(id)
	if err != nil {
		return CIDInfo{}, err
	}
	info := CIDInfo{
		CID:     text,
		Version: id.Version().String(),
		Codec:   id.Codec().String(),
		Digest:  hex.EncodeToString(id.Digest()),
		Base32:  b32,
		Base58:  b58,
		Reserve: addr,
	}
	if id.Codec() == cid.DagPB {
		v0, err := cid.NewV0(id.Digest())
		if err != nil {
			return CIDInfo{}, err
		}
		info.V0 = v0.String()
	}
	return info, nil
}

func DescribeAddress(a reserve.Address) AddressInfo {
	return AddressInfo{
		Address:  a.String(),
		Payload:  hex.EncodeToString(a.Payload[:]),
		Checksum: hex.EncodeToString(a.Checksum[:]),
		CID:      a.Identifier().String(),
	}
}

func DescribeURL(u locator.URL) (URLInfo, error) {
	text, err := u.Encode()
	if err != nil {
		return URLInfo{}, err
	}
	addr, err := locator.ReserveFor(u)
	if err != nil {
		return URLInfo{}, err
	}
	return URLInfo{
		URL:     text,
		Scheme:  u.Scheme,
		CID:     u.CID.String(),
		Path:    u.Path,
		Reserve: addr,
	}, nil
}
