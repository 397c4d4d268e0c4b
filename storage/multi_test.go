package storage_test

import (
	"bytes"
	"testing"

	"xdao.co/legacyipld/storage"
)

func TestMultiStore_WritesToFirstOnly(t *testing.T) {
	first := newMemStore()
	second := newMemStore()
	m := storage.MultiStore{Stores: []storage.BlockStore{first, second}}

	id, err := m.Put([]byte("only in first"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !first.Has(id) {
		t.Fatalf("first store should hold the block")
	}
	if second.Has(id) {
		t.Fatalf("second store must not be written")
	}
}

func TestMultiStore_ReadFallsBack(t *testing.T) {
	first := newMemStore()
	second := newMemStore()
	m := storage.MultiStore{Stores: []storage.BlockStore{first, second}}

	id, err := second.Put([]byte("only in second"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := m.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, []byte("only in second")) {
		t.Fatalf("Get bytes mismatch")
	}
	if !m.Has(id) {
		t.Fatalf("Has should see the second store")
	}
}

func TestMultiStore_NotFound(t *testing.T) {
	m := storage.MultiStore{Stores: []storage.BlockStore{newMemStore(), newMemStore()}}

	id, err := newMemStore().Put([]byte("elsewhere"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := m.Get(id); !storage.IsNotFound(err) {
		t.Fatalf("Get: err = %v, want ErrNotFound", err)
	}
	if m.Has(id) {
		t.Fatalf("Has should be false")
	}
}

func TestMultiStore_Empty(t *testing.T) {
	m := storage.MultiStore{}
	if _, err := m.Put([]byte("x")); err == nil {
		t.Fatalf("Put on empty MultiStore should fail")
	}
}
