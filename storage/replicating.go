package storage

import (
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/legacyipld/cidutil"
)

// NamedStore associates a block store with a stable backend name.
//
// This is used for multi-backend orchestration where callers need to retain
// per-backend metadata (e.g., for reporting or auditing).
type NamedStore struct {
	Name  string
	Store BlockStore
}

// ReplicatingStore writes to all configured backends.
//
// Reads fall back in order. Writes go to all backends; Put additionally
// requires all returned CIDs to match (otherwise ErrCIDMismatch).
//
// Use PutAll when you need the per-backend CID mapping.
type ReplicatingStore struct {
	Backends []NamedStore
}

var _ BlockStore = ReplicatingStore{}

// PutAll writes the same bytes to all backends.
//
// It returns:
// - the canonical CID (computed from data under the default profile)
// - a map of backend name -> returned CID
//
// If any backend returns a different CID, ErrCIDMismatch is returned.
func (r ReplicatingStore) PutAll(data []byte) (cid.Cid, map[string]cid.Cid, error) {
	want, err := cidutil.CIDv1RawSHA256CID(data)
	if err != nil {
		return cid.Undef, nil, err
	}
	if !want.Defined() {
		return cid.Undef, nil, ErrInvalidCID
	}
	if len(r.Backends) == 0 {
		return cid.Undef, nil, fmt.Errorf("storage: ReplicatingStore has no backends")
	}

	got := make(map[string]cid.Cid, len(r.Backends))
	for _, b := range r.Backends {
		id, err := b.Store.Put(data)
		if err != nil {
			return cid.Undef, nil, fmt.Errorf("storage: backend %q: %w", b.Name, err)
		}
		got[b.Name] = id
		if !id.Equals(want) {
			return cid.Undef, got, ErrCIDMismatch
		}
	}
	return want, got, nil
}

func (r ReplicatingStore) Put(data []byte) (cid.Cid, error) {
	id, _, err := r.PutAll(data)
	return id, err
}

func (r ReplicatingStore) PutBlock(id cid.Cid, data []byte) error {
	if len(r.Backends) == 0 {
		return fmt.Errorf("storage: ReplicatingStore has no backends")
	}
	for _, b := range r.Backends {
		if err := b.Store.PutBlock(id, data); err != nil {
			return fmt.Errorf("storage: backend %q: %w", b.Name, err)
		}
	}
	return nil
}

func (r ReplicatingStore) Get(id cid.Cid) ([]byte, error) {
	for _, b := range r.Backends {
		data, err := b.Store.Get(id)
		if err == nil {
			return data, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (r ReplicatingStore) Has(id cid.Cid) bool {
	for _, b := range r.Backends {
		if b.Store.Has(id) {
			return true
		}
	}
	return false
}
