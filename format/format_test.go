package format

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multicodec"
	mh "github.com/multiformats/go-multihash"

	"xdao.co/legacyipld/blockcodec/dagcbor"
	"xdao.co/legacyipld/hashers"
	"xdao.co/legacyipld/legacycid"
	"xdao.co/legacyipld/resolver"
)

func newTestFormat() *Format {
	return New(dagcbor.Codec(), Options{Hashes: hashers.Default()})
}

func testIdentifier(t *testing.T, data []byte) legacycid.Cid {
	t.Helper()
	sum, err := mh.Sum(data, mh.SHA2_256, -1)
	if err != nil {
		t.Fatalf("mh.Sum: %v", err)
	}
	return legacycid.FromCanonical(cid.NewCidV1(cid.Raw, sum))
}

func TestNew_Surface(t *testing.T) {
	f := newTestFormat()
	if f.DefaultHashAlg != "sha2-256" {
		t.Fatalf("DefaultHashAlg = %q", f.DefaultHashAlg)
	}
	if f.Codec != uint64(multicodec.DagCbor) {
		t.Fatalf("Codec = %#x", f.Codec)
	}
	if f.Util == nil || f.Resolver == nil {
		t.Fatalf("missing Util or Resolver")
	}
}

func TestSerializeDeserialize_RoundTrip(t *testing.T) {
	f := newTestFormat()
	id := testIdentifier(t, []byte("child"))

	in := map[string]any{
		"link": id,
		"bin":  legacycid.Buffer{0xbe, 0xef},
		"str":  "leaf",
	}
	data, err := f.Util.Serialize(in)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	out, err := f.Util.Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	m, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("Deserialize = %T, want map[string]any", out)
	}
	got, ok := m["link"].(legacycid.Cid)
	if !ok || !got.Equals(id) {
		t.Fatalf("link did not survive: %T %v", m["link"], m["link"])
	}
	bin, ok := m["bin"].(legacycid.Buffer)
	if !ok || !bytes.Equal(bin, []byte{0xbe, 0xef}) {
		t.Fatalf("bin did not survive: %T", m["bin"])
	}
	if m["str"] != "leaf" {
		t.Fatalf("str did not survive: %v", m["str"])
	}
}

func TestDeserialize_BinaryLikeContainers(t *testing.T) {
	f := newTestFormat()
	data, err := f.Util.Serialize(map[string]any{"a": uint64(1)})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	for _, input := range []any{data, legacycid.Buffer(data)} {
		out, err := f.Util.Deserialize(input)
		if err != nil {
			t.Fatalf("Deserialize(%T): %v", input, err)
		}
		if out.(map[string]any)["a"] != uint64(1) {
			t.Fatalf("Deserialize(%T): wrong value", input)
		}
	}
}

func TestDeserialize_RejectsNonBinary(t *testing.T) {
	f := newTestFormat()
	for _, input := range []any{nil, "string", 7, map[string]any{}} {
		if _, err := f.Util.Deserialize(input); err == nil {
			t.Fatalf("Deserialize(%T): expected error", input)
		}
	}
}

func TestDeserialize_CodecErrorPropagates(t *testing.T) {
	f := newTestFormat()
	if _, err := f.Util.Deserialize([]byte{0xff, 0xff, 0xff}); err == nil {
		t.Fatalf("expected codec decode error")
	}
}

func TestCID_Defaults(t *testing.T) {
	f := newTestFormat()
	data, err := f.Util.Serialize(map[string]any{"a": uint64(1)})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	id, err := f.Util.CID(context.Background(), data)
	if err != nil {
		t.Fatalf("CID: %v", err)
	}
	if id.Version() != 1 {
		t.Fatalf("Version = %d, want 1", id.Version())
	}
	if id.Codec() != "dag-cbor" {
		t.Fatalf("Codec = %q, want dag-cbor", id.Codec())
	}
	dec, err := mh.Decode(id.Multihash())
	if err != nil {
		t.Fatalf("mh.Decode: %v", err)
	}
	if dec.Code != mh.SHA2_256 {
		t.Fatalf("hash code = %#x, want sha2-256", dec.Code)
	}
}

func TestCID_HashAlgOption(t *testing.T) {
	f := newTestFormat()
	data := []byte("block bytes")

	id, err := f.Util.CID(context.Background(), data, WithHashAlg("sha2-512"))
	if err != nil {
		t.Fatalf("CID: %v", err)
	}
	dec, err := mh.Decode(id.Multihash())
	if err != nil {
		t.Fatalf("mh.Decode: %v", err)
	}
	if dec.Code != mh.SHA2_512 {
		t.Fatalf("hash code = %#x, want sha2-512", dec.Code)
	}
}

func TestCID_Version0RejectedForDagCbor(t *testing.T) {
	f := newTestFormat()
	if _, err := f.Util.CID(context.Background(), []byte("b"), WithCIDVersion(0)); err == nil {
		t.Fatalf("version 0 is only defined for dag-pb")
	}
}

func TestCID_MissingHasher(t *testing.T) {
	f := New(dagcbor.Codec(), Options{Hashes: hashers.Table{}})

	_, err := f.Util.CID(context.Background(), []byte("b"))
	var coded *CodedError
	if !errors.As(err, &coded) {
		t.Fatalf("err = %v, want *CodedError", err)
	}
	if coded.Code != ErrConfiguration {
		t.Fatalf("Code = %q, want %q", coded.Code, ErrConfiguration)
	}
	if !strings.Contains(coded.Message, `"sha2-256"`) {
		t.Fatalf("message should name the missing algorithm: %q", coded.Message)
	}
}

// countingHasher records whether Digest ran.
type countingHasher struct {
	calls int
}

func (h *countingHasher) Name() string { return "counting" }

func (h *countingHasher) Digest(ctx context.Context, data []byte) (mh.Multihash, error) {
	h.calls++
	return mh.Sum(data, mh.SHA2_256, -1)
}

func TestCID_MissingHasherSurfacesBeforeDigest(t *testing.T) {
	h := &countingHasher{}
	f := New(dagcbor.Codec(), Options{Hashes: hashers.Table{"counting": h}})

	if _, err := f.Util.CID(context.Background(), []byte("b"), WithHashAlg("absent")); err == nil {
		t.Fatalf("expected configuration error")
	}
	if h.calls != 0 {
		t.Fatalf("no digest work may run when the lookup fails")
	}

	if _, err := f.Util.CID(context.Background(), []byte("b"), WithHashAlg("counting")); err != nil {
		t.Fatalf("CID: %v", err)
	}
	if h.calls != 1 {
		t.Fatalf("digest should run exactly once, ran %d times", h.calls)
	}
}

func TestCID_HasherErrorPropagates(t *testing.T) {
	f := newTestFormat()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Util.CID(ctx, []byte("b")); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestResolver_ResolveAndTree(t *testing.T) {
	f := newTestFormat()
	id := testIdentifier(t, []byte("child"))

	data, err := f.Util.Serialize(map[string]any{
		"a":    map[string]any{"b": uint64(1)},
		"link": id,
	})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	res, err := f.Resolver.Resolve(data, "a/b")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Value != uint64(1) || res.RemainderPath != "" {
		t.Fatalf("Resolve = %+v", res)
	}

	res, err = f.Resolver.Resolve(data, "link/deeper")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	got, ok := res.Value.(legacycid.Cid)
	if !ok || !got.Equals(id) {
		t.Fatalf("Resolve should stop at the identifier: %T", res.Value)
	}
	if res.RemainderPath != "deeper" {
		t.Fatalf("RemainderPath = %q", res.RemainderPath)
	}

	if _, err := f.Resolver.Resolve(data, "a/missing"); !errors.Is(err, resolver.ErrNotFound) {
		t.Fatalf("err = %v, want resolver.ErrNotFound", err)
	}

	it, err := f.Resolver.Tree(data)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	paths := it.Paths()
	want := []string{"/a", "/a/b", "/link"}
	if len(paths) != len(want) {
		t.Fatalf("Paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("Paths = %v, want %v", paths, want)
		}
	}
}

// mapSource serves blocks from memory by canonical identifier.
type mapSource map[cid.Cid][]byte

func (m mapSource) Get(id cid.Cid) ([]byte, error) {
	b, ok := m[id]
	if !ok {
		return nil, errors.New("block not found")
	}
	return b, nil
}

func TestResolveThrough(t *testing.T) {
	f := newTestFormat()

	childData, err := f.Util.Serialize(map[string]any{"c": uint64(42)})
	if err != nil {
		t.Fatalf("Serialize(child): %v", err)
	}
	childID, err := f.Util.CID(context.Background(), childData)
	if err != nil {
		t.Fatalf("CID(child): %v", err)
	}

	parentData, err := f.Util.Serialize(map[string]any{
		"child": childID,
		"local": uint64(7),
	})
	if err != nil {
		t.Fatalf("Serialize(parent): %v", err)
	}

	source := mapSource{childID.Canonical(): childData}

	res, err := f.ResolveThrough(source, parentData, "child/c")
	if err != nil {
		t.Fatalf("ResolveThrough: %v", err)
	}
	if res.Value != uint64(42) || res.RemainderPath != "" {
		t.Fatalf("ResolveThrough = %+v", res)
	}

	// A walk ending exactly on the identifier returns it without fetching.
	res, err = f.ResolveThrough(mapSource{}, parentData, "child")
	if err != nil {
		t.Fatalf("ResolveThrough: %v", err)
	}
	if got, ok := res.Value.(legacycid.Cid); !ok || !got.Equals(childID) {
		t.Fatalf("Value = %T %v", res.Value, res.Value)
	}

	// Local segments never touch the source.
	res, err = f.ResolveThrough(mapSource{}, parentData, "local")
	if err != nil {
		t.Fatalf("ResolveThrough: %v", err)
	}
	if res.Value != uint64(7) {
		t.Fatalf("Value = %v", res.Value)
	}

	if _, err := f.ResolveThrough(source, parentData, "child/missing"); !errors.Is(err, resolver.ErrNotFound) {
		t.Fatalf("err = %v, want resolver.ErrNotFound", err)
	}

	if _, err := f.ResolveThrough(nil, parentData, "child/c"); err == nil {
		t.Fatalf("nil source must be rejected")
	}

	if _, err := f.ResolveThrough(mapSource{}, parentData, "child/c"); err == nil {
		t.Fatalf("missing block should surface the source error")
	}
}
