package bundle_test

import (
	"archive/tar"
	"bytes"
	"testing"
	"time"

	"xdao.co/reservecid/cid"
	"xdao.co/reservecid/reserve"
	"xdao.co/reservecid/storage"
	"xdao.co/reservecid/storage/bundle"
	"xdao.co/reservecid/storage/localfs"
)

func newStore(t *testing.T) *localfs.CAS {
	t.Helper()
	cas, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return cas
}

func TestBundle_ExportIsDeterministic(t *testing.T) {
	cas := newStore(t)
	id1, err := cas.Put([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	id2, err := cas.Put([]byte("world"))
	if err != nil {
		t.Fatal(err)
	}

	var outA bytes.Buffer
	if err := bundle.Export(&outA, cas, []cid.CID{id2, id1}, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatal(err)
	}
	var outB bytes.Buffer
	if err := bundle.Export(&outB, cas, []cid.CID{id1, id2, id1}, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(outA.Bytes(), outB.Bytes()) {
		t.Fatalf("expected deterministic bundle bytes")
	}
}

func TestBundle_ImportRoundTrip(t *testing.T) {
	src := newStore(t)
	payload := []byte("payload")
	id, err := src.Put(payload)
	if err != nil {
		t.Fatal(err)
	}

	// A V0 identifier with the same digest exports the same block.
	v0, _ := cid.NewV0(id.Digest())
	var buf bytes.Buffer
	if err := bundle.Export(&buf, src, []cid.CID{v0}, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatal(err)
	}

	dst := newStore(t)
	imported, err := bundle.ImportWithOptions(bytes.NewReader(buf.Bytes()), dst, bundle.ImportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(imported) != 1 || imported[0] != id {
		t.Fatalf("imported %v", imported)
	}
	got, err := dst.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestBundle_IndexCarriesReserveAddresses(t *testing.T) {
	cas := newStore(t)
	id, err := cas.Put([]byte("indexed"))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	opts := bundle.ExportOptions{IncludeIndex: true, Labels: map[string]cid.CID{"doc": id}}
	if err := bundle.Export(&buf, cas, []cid.CID{id}, opts); err != nil {
		t.Fatal(err)
	}

	idx, err := bundle.ReadIndex(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if idx.Version != bundle.FormatVersion || idx.CIDCodec != "raw" || idx.Multihash != "sha2-256" {
		t.Fatalf("unexpected index header %+v", idx)
	}
	if len(idx.Blocks) != 1 || idx.Blocks[0].CID != id.String() || idx.Blocks[0].Size != len("indexed") {
		t.Fatalf("unexpected blocks %+v", idx.Blocks)
	}
	back, err := reserve.IdentifierFromAddress(idx.Blocks[0].Reserve)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back.Digest(), id.Digest()) {
		t.Fatalf("reserve address does not carry the block digest")
	}
	if len(idx.Labels) != 1 || idx.Labels[0].Name != "doc" || idx.Labels[0].CID != id.String() {
		t.Fatalf("unexpected labels %+v", idx.Labels)
	}

	var noIdx bytes.Buffer
	if err := bundle.Export(&noIdx, cas, []cid.CID{id}, bundle.ExportOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := bundle.ReadIndex(bytes.NewReader(noIdx.Bytes())); err == nil {
		t.Fatalf("expected missing index error")
	}
}

func TestBundle_ImportRejectsCIDMismatch(t *testing.T) {
	good := []byte("good")
	other := storage.IdentifierFor([]byte("other"))

	// Name says "other" but bytes are "good".
	bundleBytes := makeDeterministicTar(t, "blocks/"+other.String(), good)
	if err := bundle.Import(bytes.NewReader(bundleBytes), newStore(t)); err != storage.ErrCIDMismatch {
		t.Fatalf("expected ErrCIDMismatch, got %v", err)
	}
}

func TestBundle_ImportUnknownEntries(t *testing.T) {
	bundleBytes := makeDeterministicTar(t, "notes/readme.txt", []byte("hi"))
	if err := bundle.Import(bytes.NewReader(bundleBytes), newStore(t)); err == nil {
		t.Fatalf("expected unknown entry error")
	}
	ids, err := bundle.ImportWithOptions(bytes.NewReader(bundleBytes), newStore(t), bundle.ImportOptions{IgnoreUnknown: true})
	if err != nil || len(ids) != 0 {
		t.Fatalf("IgnoreUnknown: %v %v", ids, err)
	}

	traversal := makeDeterministicTar(t, "blocks/../x", []byte("hi"))
	if err := bundle.Import(bytes.NewReader(traversal), newStore(t)); err == nil {
		t.Fatalf("expected invalid path error")
	}
	badName := makeDeterministicTar(t, "blocks/not-a-cid", []byte("hi"))
	if err := bundle.Import(bytes.NewReader(badName), newStore(t)); err != storage.ErrInvalidCID {
		t.Fatalf("expected ErrInvalidCID, got %v", err)
	}
}

func makeDeterministicTar(t *testing.T, name string, content []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	h := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  time.Unix(0, 0).UTC(),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(h); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
