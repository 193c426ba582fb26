// Package bundle moves blocks between stores as deterministic TAR archives.
//
// Layout: one regular file per block at "blocks/<cid>", plus an optional
// "index.json" listing every block with its size and reserve address.
// The index is informational; import trusts only the block bytes.
package bundle

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"xdao.co/reservecid/cid"
	"xdao.co/reservecid/reserve"
	"xdao.co/reservecid/storage"
)

// FormatVersion is the current index schema version.
const FormatVersion = 1

const indexName = "index.json"

var epoch0 = time.Unix(0, 0).UTC()

// ExportOptions controls bundle export behavior.
type ExportOptions struct {
	// Labels maps names to identifiers and is written to the index only.
	Labels map[string]cid.CID
	// IncludeIndex controls whether index.json is written.
	IncludeIndex bool
}

// Index is the decoded index.json.
type Index struct {
	Version   int     `json:"version"`
	CIDCodec  string  `json:"cidCodec"`
	Multihash string  `json:"multihash"`
	Blocks    []Block `json:"blocks"`
	Labels    []Label `json:"labels,omitempty"`
}

type Block struct {
	CID     string `json:"cid"`
	Size    int    `json:"size"`
	Reserve string `json:"reserve"`
}

type Label struct {
	Name string `json:"name"`
	CID  string `json:"cid"`
}

// Export writes the blocks for ids to w.
//
// Output is byte-for-byte deterministic: entries are sorted by identifier
// text and TAR headers are normalized. Every block is checked against its
// identifier before it is written.
func Export(w io.Writer, cas storage.CAS, ids []cid.CID, opts ExportOptions) error {
	if cas == nil {
		return fmt.Errorf("bundle: nil CAS")
	}

	uniq := make(map[string]cid.CID, len(ids))
	for _, id := range ids {
		key, err := storage.Key(id)
		if err != nil {
			return err
		}
		uniq[key.String()] = key
	}
	names := make([]string, 0, len(uniq))
	for s := range uniq {
		names = append(names, s)
	}
	sort.Strings(names)

	tw := tar.NewWriter(w)
	fail := func(err error) error {
		_ = tw.Close()
		return err
	}

	blocks := make([]Block, 0, len(names))
	for _, s := range names {
		id := uniq[s]
		b, err := cas.Get(id)
		if err != nil {
			return fail(err)
		}
		if storage.IdentifierFor(b) != id {
			return fail(storage.ErrCIDMismatch)
		}
		addr, err := reserve.AddressFromIdentifier(id)
		if err != nil {
			return fail(err)
		}
		if err := writeFile(tw, "blocks/"+s, b); err != nil {
			return fail(err)
		}
		blocks = append(blocks, Block{CID: s, Size: len(b), Reserve: addr})
	}

	if opts.IncludeIndex {
		idx := Index{
			Version:   FormatVersion,
			CIDCodec:  cid.Raw.String(),
			Multihash: "sha2-256",
			Blocks:    blocks,
		}
		labels, err := sortedLabels(opts.Labels)
		if err != nil {
			return fail(err)
		}
		idx.Labels = labels

		b, err := json.Marshal(idx)
		if err != nil {
			return fail(err)
		}
		if err := writeFile(tw, indexName, append(b, '\n')); err != nil {
			return fail(err)
		}
	}

	return tw.Close()
}

func sortedLabels(in map[string]cid.CID) ([]Label, error) {
	if len(in) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(in))
	for k := range in {
		if k == "" {
			return nil, fmt.Errorf("bundle: empty label key")
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Label, 0, len(keys))
	for _, k := range keys {
		v := in[k]
		if !v.Defined() {
			return nil, storage.ErrInvalidCID
		}
		out = append(out, Label{Name: k, CID: v.String()})
	}
	return out, nil
}

// ImportOptions controls bundle import behavior.
type ImportOptions struct {
	// IgnoreUnknown skips unknown TAR entries instead of failing.
	IgnoreUnknown bool
}

// Import reads a bundle from r and stores every block in cas.
// Unknown entries are an error.
func Import(r io.Reader, cas storage.CAS) error {
	_, err := ImportWithOptions(r, cas, ImportOptions{})
	return err
}

// ImportWithOptions reads a bundle from r and stores every block in cas.
//
// Each block must hash to the identifier in its entry name. The imported
// identifiers are returned in archive order.
func ImportWithOptions(r io.Reader, cas storage.CAS, opts ImportOptions) ([]cid.CID, error) {
	if cas == nil {
		return nil, fmt.Errorf("bundle: nil CAS")
	}

	tr := tar.NewReader(r)
	seen := map[cid.CID]struct{}{}
	var imported []cid.CID

	for {
		h, err := tr.Next()
		if err == io.EOF {
			return imported, nil
		}
		if err != nil {
			return imported, err
		}
		name := cleanTarPath(h.Name)
		if name == "" {
			return imported, fmt.Errorf("bundle: invalid entry path: %q", h.Name)
		}

		if h.Typeflag != tar.TypeReg {
			if opts.IgnoreUnknown {
				continue
			}
			return imported, fmt.Errorf("bundle: unexpected tar entry type: %v (%s)", h.Typeflag, name)
		}
		if name == indexName {
			continue
		}
		ident, ok := strings.CutPrefix(name, "blocks/")
		if !ok {
			if opts.IgnoreUnknown {
				continue
			}
			return imported, fmt.Errorf("bundle: unknown entry: %s", name)
		}

		id, err := cid.Parse(ident)
		if err != nil {
			return imported, storage.ErrInvalidCID
		}
		payload, err := io.ReadAll(tr)
		if err != nil {
			return imported, err
		}
		if storage.IdentifierFor(payload) != id {
			return imported, storage.ErrCIDMismatch
		}
		if _, dup := seen[id]; dup {
			return imported, fmt.Errorf("bundle: duplicate block entry: %s", ident)
		}
		seen[id] = struct{}{}

		putID, err := cas.Put(payload)
		if err != nil {
			return imported, err
		}
		if putID != id {
			return imported, storage.ErrCIDMismatch
		}
		imported = append(imported, id)
	}
}

// ReadIndex returns the index.json of a bundle. It reports an error if the
// bundle has no index.
func ReadIndex(r io.Reader) (Index, error) {
	tr := tar.NewReader(r)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			return Index{}, fmt.Errorf("bundle: no %s", indexName)
		}
		if err != nil {
			return Index{}, err
		}
		if cleanTarPath(h.Name) != indexName {
			continue
		}
		var idx Index
		if err := json.NewDecoder(tr).Decode(&idx); err != nil {
			return Index{}, fmt.Errorf("bundle: decode index: %w", err)
		}
		if idx.Version != FormatVersion {
			return Index{}, fmt.Errorf("bundle: unsupported index version %d", idx.Version)
		}
		return idx, nil
	}
}

func writeFile(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  epoch0,
		Typeflag: tar.TypeReg,
		Format:   tar.FormatUSTAR,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.Copy(tw, bytes.NewReader(content))
	return err
}

func cleanTarPath(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return ""
	}
	parts := strings.Split(name, "/")
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return ""
		}
	}
	return name
}
