package storage

import (
	"fmt"

	"xdao.co/reservecid/cid"
)

// NamedCAS pairs a store with the backend name it was opened under.
type NamedCAS struct {
	Name string
	CAS  CAS
}

// ReplicatingCAS writes every block to all backends and reads in order.
//
// Every backend must return IdentifierFor(bytes); a different answer fails
// the write with ErrCIDMismatch.
type ReplicatingCAS struct {
	Backends []NamedCAS
}

var _ CAS = ReplicatingCAS{}

// PutAll writes bytes to all backends and returns the expected identifier
// along with what each backend reported, keyed by backend name.
func (r ReplicatingCAS) PutAll(bytes []byte) (cid.CID, map[string]cid.CID, error) {
	if len(r.Backends) == 0 {
		return cid.Undef, nil, fmt.Errorf("storage: ReplicatingCAS has no backends")
	}
	want := IdentifierFor(bytes)

	got := make(map[string]cid.CID, len(r.Backends))
	for _, b := range r.Backends {
		if b.CAS == nil {
			return cid.Undef, nil, fmt.Errorf("storage: nil CAS for backend %q", b.Name)
		}
		id, err := b.CAS.Put(bytes)
		if err != nil {
			return cid.Undef, got, fmt.Errorf("storage: backend %q: %w", b.Name, err)
		}
		got[b.Name] = id
		if id != want {
			return cid.Undef, got, fmt.Errorf("storage: backend %q returned %s: %w", b.Name, id, ErrCIDMismatch)
		}
	}
	return want, got, nil
}

func (r ReplicatingCAS) Put(bytes []byte) (cid.CID, error) {
	id, _, err := r.PutAll(bytes)
	return id, err
}

func (r ReplicatingCAS) Get(id cid.CID) ([]byte, error) {
	for _, b := range r.Backends {
		if b.CAS == nil {
			continue
		}
		out, err := b.CAS.Get(id)
		if err == nil {
			return out, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func (r ReplicatingCAS) Has(id cid.CID) bool {
	for _, b := range r.Backends {
		if b.CAS != nil && b.CAS.Has(id) {
			return true
		}
	}
	return false
}
