package storage

import "github.com/ipfs/go-cid"

// BlockStore is a minimal content-addressed store for encoded blocks.
//
// Contract:
// - Put and PutBlock MUST be idempotent.
// - Stored blocks MUST be immutable.
// - Put derives the CID under the default profile (CIDv1, raw, sha2-256).
// - PutBlock accepts a caller-derived CID (any codec/hash profile) and MUST
//   verify data against it before storing.
// - Get MUST verify returned bytes against the CID's own prefix and MUST
//   return ErrNotFound when the CID is absent.
type BlockStore interface {
	Put(data []byte) (cid.Cid, error)
	PutBlock(id cid.Cid, data []byte) error
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
