package reserve

import (
	"xdao.co/reservecid/cid"
	"xdao.co/reservecid/errs"
)

// Address is a decoded reserve address.
type Address struct {
	Payload  [PayloadSize]byte
	Checksum [ChecksumSize]byte
}

// NewAddress builds the address for a 32-byte payload.
func NewAddress(payload []byte) (Address, error) {
	if len(payload) != PayloadSize {
		_, err := std.Encode(payload)
		return Address{}, err
	}
	var a Address
	copy(a.Payload[:], payload)
	a.Checksum = std.Checksum(payload)
	return a, nil
}

// ParseAddress decodes and verifies address text.
func ParseAddress(text string) (Address, error) {
	payload, err := std.Decode(text)
	if err != nil {
		return Address{}, err
	}
	return NewAddress(payload)
}

// String returns the 58-character text form.
func (a Address) String() string {
	s, err := std.Encode(a.Payload[:])
	if err != nil {
		return ""
	}
	return s
}

// Verify reports an error if the checksum does not match the payload.
func (a Address) Verify() error {
	if std.Checksum(a.Payload[:]) != a.Checksum {
		return errs.New(errs.KindInvalidReserveAddress, "RCID-ADDR-003", "reserve address checksum mismatch")
	}
	return nil
}

// Identifier returns the V0 (dag-pb) identifier for the payload.
func (a Address) Identifier() cid.CID {
	id, _ := cid.NewV0(a.Payload[:])
	return id
}
