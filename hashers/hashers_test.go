package hashers

import (
	"bytes"
	"context"
	"errors"
	"testing"

	mh "github.com/multiformats/go-multihash"
)

func TestDefault_TableContents(t *testing.T) {
	table := Default()

	wantCodes := map[string]uint64{
		"sha2-256":    mh.SHA2_256,
		"sha2-512":    mh.SHA2_512,
		"sha3-256":    mh.SHA3_256,
		"blake2b-256": mh.BLAKE2B_MIN + 31,
		"blake3":      mh.BLAKE3,
	}
	if len(table) != len(wantCodes) {
		t.Fatalf("table has %d entries, want %d", len(table), len(wantCodes))
	}

	data := []byte("digest me")
	for name, code := range wantCodes {
		h, ok := table[name]
		if !ok {
			t.Fatalf("table missing %q", name)
		}
		if h.Name() != name {
			t.Fatalf("Name() = %q, want %q", h.Name(), name)
		}

		d, err := h.Digest(context.Background(), data)
		if err != nil {
			t.Fatalf("%s: Digest: %v", name, err)
		}
		dec, err := mh.Decode(d)
		if err != nil {
			t.Fatalf("%s: output is not a multihash: %v", name, err)
		}
		if dec.Code != code {
			t.Fatalf("%s: code = %#x, want %#x", name, dec.Code, code)
		}
		if dec.Length != len(dec.Digest) {
			t.Fatalf("%s: length %d does not match digest size %d", name, dec.Length, len(dec.Digest))
		}
	}
}

// Every default hasher must agree with the go-multihash registry for its code.
func TestDefault_AgreesWithMultihashRegistry(t *testing.T) {
	table := Default()
	data := []byte("cross check")

	for name, h := range table {
		d, err := h.Digest(context.Background(), data)
		if err != nil {
			t.Fatalf("%s: Digest: %v", name, err)
		}
		dec, err := mh.Decode(d)
		if err != nil {
			t.Fatalf("%s: Decode: %v", name, err)
		}
		want, err := mh.Sum(data, dec.Code, -1)
		if err != nil {
			t.Fatalf("%s: mh.Sum: %v", name, err)
		}
		if !bytes.Equal(d, want) {
			t.Fatalf("%s: digest disagrees with multihash registry", name)
		}
	}
}

func TestDigest_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, h := range Default() {
		if _, err := h.Digest(ctx, []byte("data")); !errors.Is(err, context.Canceled) {
			t.Fatalf("%s: err = %v, want context.Canceled", name, err)
		}
	}
}

func TestDigest_DeterministicAcrossCalls(t *testing.T) {
	h := Default()[DefaultAlgorithm]
	data := []byte("same input")

	d1, err := h.Digest(context.Background(), data)
	if err != nil {
		t.Fatalf("Digest(1): %v", err)
	}
	d2, err := h.Digest(context.Background(), data)
	if err != nil {
		t.Fatalf("Digest(2): %v", err)
	}
	if !bytes.Equal(d1, d2) {
		t.Fatalf("digest not deterministic")
	}
}
