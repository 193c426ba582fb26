package localfs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"xdao.co/reservecid/cid"
	"xdao.co/reservecid/storage"
)

// CAS is a directory-backed block store.
//
// Blocks are written once and keyed by the V1 raw form of their identifier,
// so a V0 identifier with the same digest finds the same block.
type CAS struct {
	root string
}

// New returns a store rooted at root, creating the directory if needed.
func New(root string) (*CAS, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &CAS{root: root}, nil
}

func (c *CAS) Put(b []byte) (cid.CID, error) {
	id := storage.IdentifierFor(b)
	path := c.pathFor(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cid.Undef, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if !os.IsExist(err) {
			return cid.Undef, err
		}
		existing, rerr := os.ReadFile(path)
		if rerr != nil || !bytes.Equal(existing, b) {
			return cid.Undef, storage.ErrImmutable
		}
		return id, nil
	}

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return cid.Undef, err
	}
	return id, nil
}

func (c *CAS) Get(id cid.CID) ([]byte, error) {
	key, err := storage.Key(id)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if storage.IdentifierFor(b) != key {
		return nil, storage.ErrCIDMismatch
	}
	return b, nil
}

func (c *CAS) Has(id cid.CID) bool {
	key, err := storage.Key(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(c.pathFor(key))
	return err == nil
}

// pathFor shards on the last two characters; every V1 text starts with "ba".
func (c *CAS) pathFor(key cid.CID) string {
	s := key.String()
	return filepath.Join(c.root, s[len(s)-2:], s)
}
