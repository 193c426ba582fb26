// Package digest supplies the fixed-length digests used by the codecs:
// sha2-256 for content identifiers and sha2-512 for reserve checksums.
package digest

import (
	"fmt"

	"github.com/multiformats/go-multihash"
)

// Provider computes the digests the codecs depend on.
// Implementations must be stateless and safe for concurrent use.
type Provider interface {
	Sum256(data []byte) [32]byte
	Sum512(data []byte) [64]byte
}

// Default is backed by the go-multihash hasher registry.
var Default Provider = Multihash{}

// Multihash computes digests through go-multihash.
type Multihash struct{}

func (Multihash) Sum256(data []byte) [32]byte {
	var out [32]byte
	copy(out[:], sum(data, multihash.SHA2_256, len(out)))
	return out
}

func (Multihash) Sum512(data []byte) [64]byte {
	var out [64]byte
	copy(out[:], sum(data, multihash.SHA2_512, len(out)))
	return out
}

func sum(data []byte, code uint64, size int) []byte {
	mh, err := multihash.Sum(data, code, size)
	if err != nil {
		// Only reachable if the hash function is unregistered.
		panic(fmt.Sprintf("digest: multihash %#x: %v", code, err))
	}
	dec, err := multihash.Decode(mh)
	if err != nil {
		panic(fmt.Sprintf("digest: decode multihash %#x: %v", code, err))
	}
	return dec.Digest
}
