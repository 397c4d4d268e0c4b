// Package cidutil holds small helpers for deriving and checking canonical
// content identifiers.
package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CIDv1RawSHA256 returns a CIDv1 string using the "raw" multicodec and a
// sha2-256 multihash. This is the default write profile for bare blocks.
func CIDv1RawSHA256(data []byte) string {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1 length,
		// this should be unreachable.
		return ""
	}
	return cid.NewCidV1(cid.Raw, sum).String()
}

// CIDv1RawSHA256CID returns a CIDv1 (raw + sha2-256) derived from data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// Derive computes an identifier for data under an arbitrary profile.
func Derive(data []byte, version, codec, mhType uint64) (cid.Cid, error) {
	prefix := cid.Prefix{
		Version:  version,
		Codec:    codec,
		MhType:   mhType,
		MhLength: -1,
	}
	return prefix.Sum(data)
}

// Matches reports whether data hashes to id under id's own prefix. This is
// how stores verify blocks regardless of which codec or hash produced the
// identifier.
func Matches(id cid.Cid, data []byte) bool {
	if !id.Defined() {
		return false
	}
	got, err := id.Prefix().Sum(data)
	if err != nil {
		return false
	}
	return got.Equals(id)
}
