package locator

import (
	"strings"

	"xdao.co/reservecid/cid"
	"xdao.co/reservecid/errs"
	"xdao.co/reservecid/reserve"
)

// ReservePlaceholder stands in for the identifier position of a locator whose
// identifier is carried by a ledger reserve address.
const ReservePlaceholder = "{ipfscid:0:dag-pb:reserve:sha2-256}"

const (
	placeholderOpen  = "{ipfscid:"
	placeholderField = "reserve"
	placeholderHash  = "sha2-256"
)

// Placeholder is a parsed {ipfscid:<version>:<codec>:reserve:sha2-256} token.
type Placeholder struct {
	Version cid.Version
	Codec   cid.Codec
}

// ParsePlaceholder parses a single placeholder token, braces included.
func ParsePlaceholder(s string) (Placeholder, error) {
	if !strings.HasPrefix(s, placeholderOpen) || !strings.HasSuffix(s, "}") {
		return Placeholder{}, errPlaceholder("malformed placeholder " + s)
	}
	parts := strings.Split(s[1:len(s)-1], ":")
	if len(parts) != 5 {
		return Placeholder{}, errPlaceholder("placeholder must have 5 fields")
	}
	if parts[3] != placeholderField {
		return Placeholder{}, errPlaceholder("unsupported placeholder field " + parts[3])
	}
	if parts[4] != placeholderHash {
		return Placeholder{}, errPlaceholder("unsupported placeholder hash " + parts[4])
	}
	var p Placeholder
	switch parts[1] {
	case "0":
		p.Version = cid.V0
	case "1":
		p.Version = cid.V1
	default:
		return Placeholder{}, errPlaceholder("unsupported placeholder version " + parts[1])
	}
	codec, err := cid.CodecFromName(parts[2])
	if err != nil {
		return Placeholder{}, errs.Wrap(errs.KindInvalidURL, "RCID-URL-005", "invalid placeholder codec", err)
	}
	if p.Version == cid.V0 && codec != cid.DagPB {
		return Placeholder{}, errPlaceholder("version 0 placeholder requires dag-pb")
	}
	p.Codec = codec
	return p, nil
}

func (p Placeholder) String() string {
	return placeholderOpen + strings.TrimPrefix(p.Version.String(), "v") + ":" + p.Codec.String() + ":" +
		placeholderField + ":" + placeholderHash + "}"
}

// Identifier returns the identifier for a reserve address under p.
func (p Placeholder) Identifier(reserveAddress string) (cid.CID, error) {
	payload, err := reserve.Decode(reserveAddress)
	if err != nil {
		return cid.Undef, err
	}
	if p.Version == cid.V0 {
		return cid.NewV0(payload)
	}
	return cid.NewV1(p.Codec, payload)
}

// ExpandReserve replaces the first placeholder in template with the
// identifier built from reserveAddress.
func ExpandReserve(template, reserveAddress string) (string, error) {
	start := strings.Index(template, placeholderOpen)
	if start < 0 {
		return "", errPlaceholder("template has no {ipfscid:...} placeholder")
	}
	end := strings.IndexByte(template[start:], '}')
	if end < 0 {
		return "", errPlaceholder("unterminated placeholder")
	}
	end += start + 1
	p, err := ParsePlaceholder(template[start:end])
	if err != nil {
		return "", err
	}
	id, err := p.Identifier(reserveAddress)
	if err != nil {
		return "", err
	}
	text, err := id.Encode()
	if err != nil {
		return "", err
	}
	return template[:start] + text + template[end:], nil
}

// ResolveReserve expands template and parses the result.
func ResolveReserve(template, reserveAddress string) (URL, error) {
	s, err := ExpandReserve(template, reserveAddress)
	if err != nil {
		return URL{}, err
	}
	return Parse(s)
}

// ReserveFor returns the reserve address carrying u's identifier digest.
func ReserveFor(u URL) (string, error) {
	return reserve.AddressFromIdentifier(u.CID)
}

func errPlaceholder(msg string) error {
	return errs.New(errs.KindInvalidURL, "RCID-URL-005", msg)
}
