package storage_test

import (
	"testing"

	"github.com/ipfs/go-cid"

	"xdao.co/legacyipld/cidutil"
	"xdao.co/legacyipld/storage"
	"xdao.co/legacyipld/storage/testkit"
)

// memStore is a map-backed BlockStore for exercising the composition types.
type memStore struct {
	blocks map[cid.Cid][]byte
}

func newMemStore() *memStore {
	return &memStore{blocks: map[cid.Cid][]byte{}}
}

func (m *memStore) Put(data []byte) (cid.Cid, error) {
	id, err := cidutil.CIDv1RawSHA256CID(data)
	if err != nil {
		return cid.Undef, err
	}
	if err := m.PutBlock(id, data); err != nil {
		return cid.Undef, err
	}
	return id, nil
}

func (m *memStore) PutBlock(id cid.Cid, data []byte) error {
	if !id.Defined() {
		return storage.ErrInvalidCID
	}
	if !cidutil.Matches(id, data) {
		return storage.ErrCIDMismatch
	}
	m.blocks[id] = append([]byte(nil), data...)
	return nil
}

func (m *memStore) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	b, ok := m.blocks[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return b, nil
}

func (m *memStore) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, ok := m.blocks[id]
	return ok
}

func TestMemStore_Conformance(t *testing.T) {
	testkit.RunBlockStoreConformance(t, func(t *testing.T) storage.BlockStore {
		return newMemStore()
	})
}
