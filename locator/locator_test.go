package locator

import (
	"bytes"
	"testing"

	"xdao.co/reservecid/cid"
	"xdao.co/reservecid/errs"
)

const (
	v0Text      = "QmRBF87nYwcWx9TSvVMkR4sw92m9h3wKQ8YT1R98HUagch"
	rawText     = "bafkreibkfivcukrkfivcukrkfivcukrkfivcukrkfivcukrkfivcukrkfi"
	reserveFill = "FIVCUKRKFIVCUKRKFIVCUKRKFIVCUKRKFIVCUKRKFIVCUKRKFIVLTGDE2I"
)

func TestParse_RoundTrip(t *testing.T) {
	cases := []struct {
		in     string
		scheme string
		path   string
	}{
		{"ipfs://" + v0Text, SchemeIPFS, ""},
		{"ipfs://" + rawText + "/a/b.json", SchemeIPFS, "/a/b.json"},
		{"template-ipfs://" + v0Text + "/metadata/{id}", SchemeTemplateIPFS, "/metadata/{id}"},
	}
	for _, tc := range cases {
		u, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if u.Scheme != tc.scheme || u.Path != tc.path {
			t.Fatalf("Parse(%q) = %+v", tc.in, u)
		}
		out, err := u.Encode()
		if err != nil || out != tc.in {
			t.Fatalf("Encode = %q, %v want %q", out, err, tc.in)
		}
		if u.String() != tc.in {
			t.Fatalf("String = %q", u.String())
		}
	}
}

func TestParse_TrailingSlashHasNoPath(t *testing.T) {
	u, err := Parse("ipfs://" + v0Text + "/")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if u.Path != "" {
		t.Fatalf("Path = %q", u.Path)
	}
}

func TestParse_Rejections(t *testing.T) {
	cases := map[string]string{
		"no-separator":  "ipfs:" + v0Text,
		"bad-scheme":    "https://" + v0Text,
		"empty-scheme":  "://" + v0Text,
		"no-identifier": "ipfs://",
		"empty-segment": "ipfs:///path",
		"bad-cid":       "ipfs://Qmnope/x",
	}
	for name, in := range cases {
		_, err := Parse(in)
		if !errs.IsKind(err, errs.KindInvalidURL) {
			t.Fatalf("%s: expected InvalidURL, got %v", name, err)
		}
	}
	_, err := Parse("ipfs://Qmnope")
	if !errs.IsKind(err, errs.KindInvalidCID) {
		t.Fatalf("bad cid: expected InvalidCID cause, got %v", err)
	}
	if errs.KindOf(err) != errs.KindInvalidURL {
		t.Fatalf("bad cid: outer kind %q", errs.KindOf(err))
	}
}

func TestEncode_UndefinedIdentifierFails(t *testing.T) {
	if _, err := (URL{Scheme: SchemeIPFS}).Encode(); err == nil {
		t.Fatalf("expected error for undefined identifier")
	}
}

func TestResolveAssetTemplate(t *testing.T) {
	u, err := Parse("template-ipfs://" + v0Text + "/metadata/{id}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := ResolveAssetTemplate(u, 123)
	if got.Path != "/metadata/123" {
		t.Fatalf("Path = %q", got.Path)
	}
	if u.Path != "/metadata/{id}" {
		t.Fatalf("input mutated: %q", u.Path)
	}
	if got.CID != u.CID || got.Scheme != u.Scheme {
		t.Fatalf("identity fields changed")
	}
}

func TestResolveTemplate(t *testing.T) {
	u, _ := Parse("template-ipfs://" + v0Text + "/{a}/{b}/{a}/{missing}")
	got := ResolveTemplate(u, map[string]string{"a": "x", "b": "y"})
	if got.Path != "/x/y/x/{missing}" {
		t.Fatalf("Path = %q", got.Path)
	}

	// Sorted application: "a" runs before "b", so a value produced by "b"
	// that mentions {a} is left alone.
	got = ResolveTemplate(u, map[string]string{"a": "{b}", "b": "{a}"})
	if got.Path != "/{a}/{a}/{a}/{missing}" {
		t.Fatalf("Path = %q", got.Path)
	}

	bare, _ := Parse("ipfs://" + v0Text)
	if ResolveTemplate(bare, map[string]string{"id": "1"}) != bare {
		t.Fatalf("empty path should be a no-op")
	}
}

func TestParsePlaceholder(t *testing.T) {
	p, err := ParsePlaceholder(ReservePlaceholder)
	if err != nil {
		t.Fatalf("ParsePlaceholder: %v", err)
	}
	if p.Version != cid.V0 || p.Codec != cid.DagPB {
		t.Fatalf("unexpected %+v", p)
	}
	if p.String() != ReservePlaceholder {
		t.Fatalf("String = %q", p.String())
	}

	p, err = ParsePlaceholder("{ipfscid:1:raw:reserve:sha2-256}")
	if err != nil || p.Version != cid.V1 || p.Codec != cid.Raw {
		t.Fatalf("v1 raw: %+v, %v", p, err)
	}

	for _, bad := range []string{
		"{ipfscid:0:raw:reserve:sha2-256}",
		"{ipfscid:2:raw:reserve:sha2-256}",
		"{ipfscid:1:git-raw:reserve:sha2-256}",
		"{ipfscid:1:raw:reserve:sha2-512}",
		"{ipfscid:1:raw:note:sha2-256}",
		"{ipfscid:1:raw:reserve}",
		"ipfscid:1:raw:reserve:sha2-256",
	} {
		if _, err := ParsePlaceholder(bad); !errs.IsKind(err, errs.KindInvalidURL) {
			t.Fatalf("%q: expected InvalidURL, got %v", bad, err)
		}
	}
}

func TestExpandReserve(t *testing.T) {
	got, err := ExpandReserve("template-ipfs://"+ReservePlaceholder+"/{id}", reserveFill)
	if err != nil {
		t.Fatalf("ExpandReserve: %v", err)
	}
	if got != "template-ipfs://"+v0Text+"/{id}" {
		t.Fatalf("ExpandReserve = %q", got)
	}

	got, err = ExpandReserve("template-ipfs://{ipfscid:1:raw:reserve:sha2-256}", reserveFill)
	if err != nil || got != "template-ipfs://"+rawText {
		t.Fatalf("v1 raw ExpandReserve = %q, %v", got, err)
	}

	u, err := ResolveReserve("template-ipfs://"+ReservePlaceholder+"/meta/{id}.json", reserveFill)
	if err != nil {
		t.Fatalf("ResolveReserve: %v", err)
	}
	if ResolveAssetTemplate(u, 7).Path != "/meta/7.json" {
		t.Fatalf("resolved path %q", ResolveAssetTemplate(u, 7).Path)
	}
	if !bytes.Equal(u.CID.Digest(), bytes.Repeat([]byte{0x2a}, 32)) {
		t.Fatalf("digest mismatch")
	}

	addr, err := ReserveFor(u)
	if err != nil || addr != reserveFill {
		t.Fatalf("ReserveFor = %q, %v", addr, err)
	}
}

func TestExpandReserve_Rejections(t *testing.T) {
	if _, err := ExpandReserve("template-ipfs://"+v0Text, reserveFill); !errs.IsKind(err, errs.KindInvalidURL) {
		t.Fatalf("no placeholder: %v", err)
	}
	if _, err := ExpandReserve("template-ipfs://{ipfscid:0:dag-pb", reserveFill); !errs.IsKind(err, errs.KindInvalidURL) {
		t.Fatalf("unterminated: %v", err)
	}
	if _, err := ExpandReserve("template-ipfs://"+ReservePlaceholder, reserveFill[:57]); !errs.IsKind(err, errs.KindInvalidReserveAddress) {
		t.Fatalf("bad reserve: %v", err)
	}
	if _, err := ResolveReserve("https://"+ReservePlaceholder, reserveFill); !errs.IsKind(err, errs.KindInvalidURL) {
		t.Fatalf("bad scheme after expansion: %v", err)
	}
}
