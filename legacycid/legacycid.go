// Package legacycid implements the older content-identifier shape that the
// rest of this codebase is migrating away from.
//
// A legacy identifier is constructed from (version, codec name or code, raw
// multihash bytes) and exposes its multihash as an untyped byte buffer. The
// canonical representation is cid.Cid from github.com/ipfs/go-cid. Both name
// the same block; only the surface differs.
package legacycid

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multicodec"
	mh "github.com/multiformats/go-multihash"
)

// Buffer is the legacy binary-leaf container. Translation from the canonical
// representation copies byte content into a Buffer; byte content is never
// altered, only the container type.
type Buffer []byte

// Cid is an immutable legacy identifier.
//
// It wraps the canonical form so conversions in either direction never
// revalidate the digest. Equality is structural: two Cids naming the same
// (version, codec, multihash) compare equal with ==.
type Cid struct {
	c cid.Cid
}

// New constructs a legacy identifier from a version, a codec name, and raw
// multihash bytes. The multihash is validated; version must be 0 or 1, and
// version 0 identifiers are only defined for dag-pb.
func New(version uint64, codecName string, hash []byte) (Cid, error) {
	digest, err := mh.Cast(hash)
	if err != nil {
		return Cid{}, fmt.Errorf("legacycid: invalid multihash: %w", err)
	}
	code, err := codeForName(codecName)
	if err != nil {
		return Cid{}, err
	}
	return newWithDigest(version, code, digest)
}

// NewWithCode is New for callers holding a multicodec code instead of a name.
func NewWithCode(version, code uint64, hash []byte) (Cid, error) {
	digest, err := mh.Cast(hash)
	if err != nil {
		return Cid{}, fmt.Errorf("legacycid: invalid multihash: %w", err)
	}
	return newWithDigest(version, code, digest)
}

func newWithDigest(version, code uint64, digest mh.Multihash) (Cid, error) {
	switch version {
	case 0:
		if code != cid.DagProtobuf {
			return Cid{}, errors.New("legacycid: version 0 requires the dag-pb codec")
		}
		return Cid{c: cid.NewCidV0(digest)}, nil
	case 1:
		return Cid{c: cid.NewCidV1(code, digest)}, nil
	default:
		return Cid{}, fmt.Errorf("legacycid: unsupported version %d", version)
	}
}

// FromCanonical wraps an already-canonical identifier without revalidating
// its digest.
func FromCanonical(c cid.Cid) Cid {
	return Cid{c: c}
}

// Recognize returns the legacy form of v if v is an identifier in either
// representation. The bool is false for everything else.
func Recognize(v any) (Cid, bool) {
	switch t := v.(type) {
	case Cid:
		return t, true
	case *Cid:
		if t != nil {
			return *t, true
		}
	case cid.Cid:
		if t.Defined() {
			return FromCanonical(t), true
		}
	case *cid.Cid:
		if t != nil && t.Defined() {
			return FromCanonical(*t), true
		}
	}
	return Cid{}, false
}

// IsLegacy reports whether v is a legacy identifier.
func IsLegacy(v any) bool {
	switch t := v.(type) {
	case Cid:
		return true
	case *Cid:
		return t != nil
	}
	return false
}

// Version returns the identifier version (0 or 1).
func (l Cid) Version() uint64 {
	return l.c.Version()
}

// Codec returns the codec name (e.g. "dag-cbor").
func (l Cid) Codec() string {
	return multicodec.Code(l.c.Prefix().Codec).String()
}

// Code returns the multicodec code of the target codec.
func (l Cid) Code() uint64 {
	return l.c.Prefix().Codec
}

// Multihash returns the raw multihash bytes.
func (l Cid) Multihash() mh.Multihash {
	return l.c.Hash()
}

// Canonical returns the canonical form of the identifier.
func (l Cid) Canonical() cid.Cid {
	return l.c
}

// Bytes returns the canonical binary form of the identifier.
func (l Cid) Bytes() []byte {
	return l.c.Bytes()
}

// Defined reports whether the identifier holds a value.
func (l Cid) Defined() bool {
	return l.c.Defined()
}

// Equals reports structural equality.
func (l Cid) Equals(o Cid) bool {
	return l.c.Equals(o.c)
}

// String returns the multibase text form (base58btc for version 0, the
// canonical base32 form for version 1). The encoding is recomputed on every
// call; legacy identifiers keep no string cache.
func (l Cid) String() string {
	return l.c.String()
}

func codeForName(name string) (uint64, error) {
	if name == "" {
		return 0, errors.New("legacycid: empty codec name")
	}
	var code multicodec.Code
	if err := code.Set(name); err != nil {
		return 0, fmt.Errorf("legacycid: unknown codec %q", name)
	}
	return uint64(code), nil
}
