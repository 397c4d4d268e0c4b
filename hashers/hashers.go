// Package hashers provides named multihash digest functions for deriving
// content identifiers.
//
// Hashers are handed to consumers as an explicit table keyed by algorithm
// name. There is no process-wide registry: different adapters may carry
// different tables, and a table owns nothing beyond the hashers in it.
package hashers

import (
	"context"

	mh "github.com/multiformats/go-multihash"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// DefaultAlgorithm is the hash algorithm used when a caller does not pick one.
const DefaultAlgorithm = "sha2-256"

// Table maps algorithm names to hashers.
type Table = map[string]Hasher

// Hasher produces a multihash-encoded digest over a byte block.
//
// Digest takes a context because hashing is modeled as a potentially
// suspending operation; implementations must honor cancellation before
// starting work. The returned bytes are a full multihash (algorithm code,
// length, digest).
type Hasher interface {
	Name() string
	Digest(ctx context.Context, data []byte) (mh.Multihash, error)
}

// Default returns a fresh table with the algorithms this codebase ships:
// sha2-256, sha2-512, sha3-256, blake2b-256, and blake3.
func Default() Table {
	return Table{
		"sha2-256":    multihashHasher{name: "sha2-256", code: mh.SHA2_256},
		"sha2-512":    multihashHasher{name: "sha2-512", code: mh.SHA2_512},
		"sha3-256":    sumHasher{name: "sha3-256", code: mh.SHA3_256, sum: sha3Sum},
		"blake2b-256": sumHasher{name: "blake2b-256", code: mh.BLAKE2B_MIN + 31, sum: blake2bSum},
		"blake3":      sumHasher{name: "blake3", code: mh.BLAKE3, sum: blake3Sum},
	}
}

// multihashHasher digests through the go-multihash registry.
type multihashHasher struct {
	name string
	code uint64
}

func (h multihashHasher) Name() string { return h.name }

func (h multihashHasher) Digest(ctx context.Context, data []byte) (mh.Multihash, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return mh.Sum(data, h.code, -1)
}

// sumHasher wraps a plain digest function and multihash-encodes its output.
type sumHasher struct {
	name string
	code uint64
	sum  func([]byte) []byte
}

func (h sumHasher) Name() string { return h.name }

func (h sumHasher) Digest(ctx context.Context, data []byte) (mh.Multihash, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return mh.Encode(h.sum(data), h.code)
}

func sha3Sum(data []byte) []byte {
	d := sha3.Sum256(data)
	return d[:]
}

func blake2bSum(data []byte) []byte {
	d := blake2b.Sum256(data)
	return d[:]
}

func blake3Sum(data []byte) []byte {
	d := blake3.Sum256(data)
	return d[:]
}
