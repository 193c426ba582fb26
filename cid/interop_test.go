package cid

import (
	"math/rand"
	"testing"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

func TestInterop_TextMatchesGoCid(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 16; i++ {
		d := make([]byte, DigestSize)
		rng.Read(d)
		mh, err := multihash.Encode(d, multihash.SHA2_256)
		if err != nil {
			t.Fatalf("multihash.Encode: %v", err)
		}

		ours, _ := NewV0(d)
		theirs := gocid.NewCidV0(mh)
		if ours.String() != theirs.String() {
			t.Fatalf("v0 text: ours %q go-cid %q", ours.String(), theirs.String())
		}

		for _, codec := range allCodecs {
			ours, _ := NewV1(codec, d)
			theirs := gocid.NewCidV1(uint64(codec), mh)
			if ours.String() != theirs.String() {
				t.Fatalf("%s text: ours %q go-cid %q", codec, ours.String(), theirs.String())
			}
			z, err := theirs.StringOfBase(multibase.Base58BTC)
			if err != nil {
				t.Fatalf("StringOfBase: %v", err)
			}
			oursZ, err := ours.EncodeBase(Base58)
			if err != nil || oursZ != z {
				t.Fatalf("%s base58: ours %q go-cid %q (%v)", codec, oursZ, z, err)
			}
			parsed, err := Parse(z)
			if err != nil || parsed != ours {
				t.Fatalf("Parse(go-cid base58 %q): %v", z, err)
			}
		}
	}
}

func TestInterop_ConvertBothWays(t *testing.T) {
	for _, c := range []CID{SumV0([]byte("a")), mustSum(t, Raw, "b"), mustSum(t, DagJSON, "c")} {
		gc, err := c.ToCid()
		if err != nil {
			t.Fatalf("ToCid: %v", err)
		}
		if gc.String() != c.String() {
			t.Fatalf("ToCid text mismatch: %q vs %q", gc.String(), c.String())
		}
		back, err := FromCid(gc)
		if err != nil {
			t.Fatalf("FromCid: %v", err)
		}
		if back != c {
			t.Fatalf("FromCid(ToCid(c)) != c")
		}
	}
	if _, err := Undef.ToCid(); err == nil {
		t.Fatalf("ToCid(undefined): expected error")
	}
	if _, err := FromCid(gocid.Undef); err == nil {
		t.Fatalf("FromCid(undefined): expected error")
	}
}

func TestInterop_FromCidRejectsOtherHashes(t *testing.T) {
	mh, err := multihash.Sum([]byte("x"), multihash.SHA2_512, -1)
	if err != nil {
		t.Fatalf("multihash.Sum: %v", err)
	}
	if _, err := FromCid(gocid.NewCidV1(gocid.Raw, mh)); err == nil {
		t.Fatalf("expected sha2-512 identifier to be rejected")
	}
	mh, _ = multihash.Sum([]byte("x"), multihash.SHA2_256, -1)
	if _, err := FromCid(gocid.NewCidV1(gocid.GitRaw, mh)); err == nil {
		t.Fatalf("expected git-raw codec to be rejected")
	}
}

func TestInterop_GoCidDecodesOurText(t *testing.T) {
	c := mustSum(t, DagCBOR, "payload")
	gc, err := gocid.Decode(c.String())
	if err != nil {
		t.Fatalf("gocid.Decode: %v", err)
	}
	if gc.Type() != uint64(DagCBOR) || gc.Version() != 1 {
		t.Fatalf("unexpected go-cid decode %d/%#x", gc.Version(), gc.Type())
	}
}

func mustSum(t *testing.T, codec Codec, s string) CID {
	t.Helper()
	c, err := Sum(codec, []byte(s))
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	return c
}
