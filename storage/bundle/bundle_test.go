package bundle

import (
	"archive/tar"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/ipfs/go-cid"

	"xdao.co/legacyipld/cidutil"
	"xdao.co/legacyipld/storage"
	"xdao.co/legacyipld/storage/localfs"
)

func newStore(t *testing.T) storage.BlockStore {
	t.Helper()
	s, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	return s
}

func putBlocks(t *testing.T, s storage.BlockStore, payloads ...[]byte) []cid.Cid {
	t.Helper()
	ids := make([]cid.Cid, 0, len(payloads))
	for _, p := range payloads {
		id, err := s.Put(p)
		if err != nil {
			t.Fatalf("Put: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := newStore(t)
	ids := putBlocks(t, src, []byte("alpha"), []byte("beta"), []byte("gamma"))

	var buf bytes.Buffer
	if err := Export(&buf, src, ids, ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := newStore(t)
	if err := Import(bytes.NewReader(buf.Bytes()), dst); err != nil {
		t.Fatalf("Import: %v", err)
	}
	for i, id := range ids {
		got, err := dst.Get(id)
		if err != nil {
			t.Fatalf("Get(%s): %v", id, err)
		}
		want := [][]byte{[]byte("alpha"), []byte("beta"), []byte("gamma")}[i]
		if !bytes.Equal(got, want) {
			t.Fatalf("block %s content mismatch", id)
		}
	}
}

func TestExport_Deterministic(t *testing.T) {
	src := newStore(t)
	ids := putBlocks(t, src, []byte("alpha"), []byte("beta"))

	var b1, b2 bytes.Buffer
	if err := Export(&b1, src, ids, ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatalf("Export(1): %v", err)
	}
	// Reversed input order and a duplicate must not change the output.
	shuffled := []cid.Cid{ids[1], ids[0], ids[1]}
	if err := Export(&b2, src, shuffled, ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatalf("Export(2): %v", err)
	}
	if !bytes.Equal(b1.Bytes(), b2.Bytes()) {
		t.Fatalf("equal block sets must produce byte-identical bundles")
	}
}

func TestExport_EntriesSortedByCID(t *testing.T) {
	src := newStore(t)
	ids := putBlocks(t, src, []byte("one"), []byte("two"), []byte("three"))

	var buf bytes.Buffer
	if err := Export(&buf, src, ids, ExportOptions{}); err != nil {
		t.Fatalf("Export: %v", err)
	}

	tr := tar.NewReader(bytes.NewReader(buf.Bytes()))
	var names []string
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("tar.Next: %v", err)
		}
		names = append(names, h.Name)
		if h.ModTime.Unix() != 0 {
			t.Fatalf("header mtime not normalized: %v", h.ModTime)
		}
	}
	if len(names) != 3 {
		t.Fatalf("entries = %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("entries not sorted: %v", names)
		}
	}
}

func TestExport_Labels(t *testing.T) {
	src := newStore(t)
	ids := putBlocks(t, src, []byte("root block"))

	var buf bytes.Buffer
	opts := ExportOptions{
		IncludeIndex: true,
		Labels:       map[string]cid.Cid{"root": ids[0]},
	}
	if err := Export(&buf, src, ids, opts); err != nil {
		t.Fatalf("Export: %v", err)
	}

	tr := tar.NewReader(bytes.NewReader(buf.Bytes()))
	var index []byte
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("tar.Next: %v", err)
		}
		if h.Name == "index.json" {
			index, err = io.ReadAll(tr)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
		}
	}
	if index == nil {
		t.Fatalf("index.json missing")
	}
	if !strings.Contains(string(index), `"root"`) || !strings.Contains(string(index), ids[0].String()) {
		t.Fatalf("index.json missing label: %s", index)
	}
}

func TestExport_RejectsUndefinedCID(t *testing.T) {
	src := newStore(t)
	var buf bytes.Buffer
	if err := Export(&buf, src, []cid.Cid{cid.Undef}, ExportOptions{}); err != storage.ErrInvalidCID {
		t.Fatalf("Export: err = %v, want ErrInvalidCID", err)
	}
}

func writeRawEntry(t *testing.T, tw *tar.Writer, name string, content []byte) {
	t.Helper()
	hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg}
	if err := tw.WriteHeader(hdr); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatalf("Write: %v", err)
	}
}

func TestImport_FailClosedOnUnknownEntry(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	writeRawEntry(t, tw, "unexpected/file", []byte("junk"))
	if err := tw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	dst := newStore(t)
	if err := Import(bytes.NewReader(buf.Bytes()), dst); err == nil {
		t.Fatalf("unknown entries must fail a default import")
	}
	if err := ImportWithOptions(bytes.NewReader(buf.Bytes()), dst, ImportOptions{IgnoreUnknown: true}); err != nil {
		t.Fatalf("ImportWithOptions(IgnoreUnknown): %v", err)
	}
}

func TestImport_RejectsCorruptBlock(t *testing.T) {
	id, err := cidutil.CIDv1RawSHA256CID([]byte("real content"))
	if err != nil {
		t.Fatalf("CIDv1RawSHA256CID: %v", err)
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	writeRawEntry(t, tw, "blocks/"+id.String(), []byte("fake content"))
	if err := tw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := Import(bytes.NewReader(buf.Bytes()), newStore(t)); err != storage.ErrCIDMismatch {
		t.Fatalf("Import: err = %v, want ErrCIDMismatch", err)
	}
}

func TestImport_RejectsDuplicateEntry(t *testing.T) {
	content := []byte("dup block")
	id, err := cidutil.CIDv1RawSHA256CID(content)
	if err != nil {
		t.Fatalf("CIDv1RawSHA256CID: %v", err)
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	writeRawEntry(t, tw, "blocks/"+id.String(), content)
	writeRawEntry(t, tw, "blocks/"+id.String(), content)
	if err := tw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := Import(bytes.NewReader(buf.Bytes()), newStore(t)); err == nil {
		t.Fatalf("duplicate entries must fail the import")
	}
}

func TestImport_RejectsPathTraversal(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	writeRawEntry(t, tw, "blocks/../escape", []byte("junk"))
	if err := tw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := Import(bytes.NewReader(buf.Bytes()), newStore(t)); err == nil {
		t.Fatalf("traversal paths must fail the import")
	}
}
