package testkit

import (
	"bytes"
	"testing"

	"xdao.co/reservecid/cid"
	"xdao.co/reservecid/reserve"
	"xdao.co/reservecid/storage"
)

// NewCAS constructs a fresh, empty store for a test.
// The returned store MUST be isolated from other tests.
type NewCAS func(t *testing.T) storage.CAS

// RunCASConformance checks the storage.CAS contract against newCAS.
func RunCASConformance(t *testing.T, newCAS NewCAS) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		cas := newCAS(t)
		want := []byte("hello, reserve storage")

		id, err := cas.Put(want)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if wantID := storage.IdentifierFor(want); id != wantID {
			t.Fatalf("Put CID mismatch: got %s want %s", id, wantID)
		}
		if id.Version() != cid.V1 || id.Codec() != cid.Raw {
			t.Fatalf("Put returned %s/%s, want v1/raw", id.Version(), id.Codec())
		}

		got, err := cas.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch")
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("same bytes")

		id1, err := cas.Put(b)
		if err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		id2, err := cas.Put(b)
		if err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		if id1 != id2 {
			t.Fatalf("Put not idempotent: %s vs %s", id1, id2)
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("missing")
		id := storage.IdentifierFor(b)

		if cas.Has(id) {
			t.Fatalf("Has returned true for missing CID")
		}
		if _, err := cas.Get(id); !storage.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}

		if _, err := cas.Put(b); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !cas.Has(id) {
			t.Fatalf("Has returned false after Put")
		}
	})

	t.Run("SameDigestOtherForms", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("digest addressed")
		id, err := cas.Put(b)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		v0, err := cid.NewV0(id.Digest())
		if err != nil {
			t.Fatalf("NewV0: %v", err)
		}
		got, err := cas.Get(v0)
		if err != nil || !bytes.Equal(got, b) {
			t.Fatalf("Get(v0 form): %v", err)
		}
		addr, err := reserve.AddressFromIdentifier(id)
		if err != nil {
			t.Fatalf("AddressFromIdentifier: %v", err)
		}
		got, err = storage.GetByReserve(cas, addr)
		if err != nil || !bytes.Equal(got, b) {
			t.Fatalf("GetByReserve: %v", err)
		}
	})

	t.Run("RejectUndefCID", func(t *testing.T) {
		cas := newCAS(t)
		if cas.Has(cid.Undef) {
			t.Fatalf("Has should be false for undefined CID")
		}
		if _, err := cas.Get(cid.Undef); err == nil {
			t.Fatalf("Get should fail for undefined CID")
		}
	})
}
