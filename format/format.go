// Package format wraps a block codec in the legacy codec interface.
//
// The adapter translates value graphs between the legacy and canonical
// identifier representations around the codec's raw encode/decode, derives
// legacy identifiers for encoded blocks through a caller-supplied hasher
// table, and exposes path resolution and tree enumeration over decoded
// blocks. It is the seam downstream consumers of the old interface rely on;
// the produced surface (DefaultHashAlg, Codec, Util, Resolver) is a
// compatibility contract.
//
// A Format is constructed once per (codec, hasher table) pair and is
// thereafter stateless and reentrant.
package format

import (
	"context"
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/legacyipld/blockcodec"
	"xdao.co/legacyipld/bytesutil"
	"xdao.co/legacyipld/hashers"
	"xdao.co/legacyipld/legacycid"
	"xdao.co/legacyipld/resolver"
	"xdao.co/legacyipld/translate"
)

// Options configures a Format.
type Options struct {
	// Hashes is the table of hash algorithms available for identifier
	// derivation, keyed by algorithm name. The adapter owns no hashers.
	Hashes hashers.Table
}

// Format is the legacy-shaped interface over a block codec.
type Format struct {
	// DefaultHashAlg is the algorithm used when CID is called without one.
	DefaultHashAlg string
	// Codec is the wrapped codec's multicodec code.
	Codec uint64

	Util     *Util
	Resolver *Resolver
}

// New builds a Format from a codec descriptor and options.
func New(codec blockcodec.Codec, opts Options) *Format {
	return &Format{
		DefaultHashAlg: hashers.DefaultAlgorithm,
		Codec:          codec.Code,
		Util:           &Util{codec: codec, hashes: opts.Hashes},
		Resolver:       &Resolver{codec: codec},
	}
}

// Util carries the serialize/deserialize/cid operations.
type Util struct {
	codec  blockcodec.Codec
	hashes hashers.Table
}

// Serialize canonicalizes value in place and encodes it with the wrapped
// codec. Codec failures propagate unchanged.
func (u *Util) Serialize(value any) ([]byte, error) {
	return u.codec.EncodeBlock(translate.ToCanonical(value))
}

// Deserialize coerces data to a canonical byte view, decodes it with the
// wrapped codec, and rewrites the result into the legacy representation.
// Codec failures propagate unchanged.
func (u *Util) Deserialize(data any) (any, error) {
	b, ok := bytesutil.CanonicalBytes(data)
	if !ok {
		return nil, fmt.Errorf("format: deserialize input is not binary-like (%T)", data)
	}
	value, err := u.codec.DecodeBlock(b)
	if err != nil {
		return nil, err
	}
	return translate.ToLegacy(value), nil
}

// CIDOption adjusts identifier derivation.
type CIDOption func(*cidConfig)

type cidConfig struct {
	version uint64
	hashAlg string
}

// WithCIDVersion selects the identifier version (0 or 1; default 1).
func WithCIDVersion(version uint64) CIDOption {
	return func(c *cidConfig) { c.version = version }
}

// WithHashAlg selects the hash algorithm by table name (default sha2-256).
func WithHashAlg(name string) CIDOption {
	return func(c *cidConfig) { c.hashAlg = name }
}

// CID derives a legacy identifier for an encoded block.
//
// The hasher lookup happens before any digest work: a missing table entry is
// a caller-configuration error and surfaces immediately. The digest itself
// may suspend; ctx is passed through to the hasher, and whatever the hasher
// fails with propagates without retries.
func (u *Util) CID(ctx context.Context, data []byte, opts ...CIDOption) (legacycid.Cid, error) {
	cfg := cidConfig{version: 1, hashAlg: hashers.DefaultAlgorithm}
	for _, opt := range opts {
		opt(&cfg)
	}

	hasher, ok := u.hashes[cfg.hashAlg]
	if !ok {
		return legacycid.Cid{}, newError(ErrConfiguration, fmt.Sprintf("no hasher provided for %q", cfg.hashAlg))
	}

	digest, err := hasher.Digest(ctx, data)
	if err != nil {
		return legacycid.Cid{}, err
	}
	return legacycid.New(cfg.version, u.codec.Name, digest)
}

// Resolver carries path resolution and tree enumeration over encoded blocks.
type Resolver struct {
	codec blockcodec.Codec
}

// Resolve decodes data and walks it by path. Resolution stops at identifier
// boundaries; see resolver.Resolve.
func (r *Resolver) Resolve(data []byte, path string) (resolver.Result, error) {
	value, err := r.codec.DecodeBlock(data)
	if err != nil {
		return resolver.Result{}, err
	}
	return resolver.Resolve(value, path)
}

// Tree decodes data and returns an iterator over its paths. Reinvoking Tree
// on the same bytes reproduces the same sequence.
func (r *Resolver) Tree(data []byte) (*resolver.Iterator, error) {
	value, err := r.codec.DecodeBlock(data)
	if err != nil {
		return nil, err
	}
	return resolver.Tree(value), nil
}

// BlockSource fetches encoded blocks by canonical identifier. storage
// implementations satisfy it.
type BlockSource interface {
	Get(id cid.Cid) ([]byte, error)
}

// ResolveThrough chains Resolve across block boundaries: each time the walk
// stops at an identifier with path left over, the identified block is fetched
// from source and resolution continues there.
func (f *Format) ResolveThrough(source BlockSource, data []byte, path string) (resolver.Result, error) {
	if source == nil {
		return resolver.Result{}, errors.New("format: nil block source")
	}
	for {
		res, err := f.Resolver.Resolve(data, path)
		if err != nil {
			return resolver.Result{}, err
		}
		id, ok := res.Value.(legacycid.Cid)
		if !ok || res.RemainderPath == "" {
			return res, nil
		}
		next, err := source.Get(id.Canonical())
		if err != nil {
			return resolver.Result{}, err
		}
		data = next
		path = res.RemainderPath
	}
}
