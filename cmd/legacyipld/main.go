// Command legacyipld serializes JSON values as dag-cbor blocks, derives
// their identifiers, and resolves paths through stored block graphs.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ipfs/go-cid"

	"xdao.co/legacyipld/blockcodec/dagcbor"
	"xdao.co/legacyipld/format"
	"xdao.co/legacyipld/hashers"
	"xdao.co/legacyipld/legacycid"
	"xdao.co/legacyipld/storage/registry"

	_ "xdao.co/legacyipld/storage/grpcstore"
	_ "xdao.co/legacyipld/storage/kubo"
	_ "xdao.co/legacyipld/storage/localfs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "cid":
		return cmdCID(args[1:], out, errOut)
	case "put":
		return cmdPut(args[1:], out, errOut)
	case "get":
		return cmdGet(args[1:], out, errOut)
	case "resolve":
		return cmdResolve(args[1:], out, errOut)
	case "tree":
		return cmdTree(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "legacyipld: dag-cbor block tool")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  legacyipld cid [--hash-alg <name>] [--cid-version 0|1] <file.json>")
	fmt.Fprintln(w, "  legacyipld put --backend localfs --localfs-dir <dir> <file.json>")
	fmt.Fprintln(w, "  legacyipld get --backend localfs --localfs-dir <dir> --cid <cid> [--out <file>]")
	fmt.Fprintln(w, "  legacyipld resolve --backend localfs --localfs-dir <dir> --cid <cid> --path a/b/c")
	fmt.Fprintln(w, "  legacyipld tree --backend localfs --localfs-dir <dir> --cid <cid>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - values are read as JSON and encoded as dag-cbor blocks")
	fmt.Fprintln(w, "  - resolve follows identifiers across blocks via the selected backend")
	fmt.Fprintln(w, "  - kubo backend shells out to the local Kubo 'ipfs' CLI")
	fmt.Fprintln(w, "  - grpc backend talks to legacyipld-blockd (or any BlockStore gRPC server)")
}

type commonFlags struct {
	backend      string
	listBackends bool
}

func (c *commonFlags) add(fs *flag.FlagSet) {
	fs.StringVar(&c.backend, "backend", "localfs", "block store backend name")
	fs.BoolVar(&c.listBackends, "list-backends", false, "List supported backends and exit")
}

func (c *commonFlags) handleList(out io.Writer) bool {
	if !c.listBackends {
		return false
	}
	for _, b := range registry.List(registry.UsageCLI) {
		if b.Description == "" {
			fmt.Fprintf(out, "%s\n", b.Name)
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", b.Name, b.Description)
	}
	return true
}

func newFormat() *format.Format {
	return format.New(dagcbor.Codec(), format.Options{Hashes: hashers.Default()})
}

func cmdCID(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	hashAlg := fs.String("hash-alg", hashers.DefaultAlgorithm, "hash algorithm name")
	cidVersion := fs.Uint64("cid-version", 1, "identifier version (0 or 1)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "cid: exactly one input file is required")
		return 2
	}

	f := newFormat()
	data, err := encodeFile(f, fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	id, err := f.Util.CID(context.Background(), data,
		format.WithHashAlg(*hashAlg), format.WithCIDVersion(*cidVersion))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintln(out, id.String())
	return 0
}

func cmdPut(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)
	registry.RegisterFlags(fs, registry.UsageCLI)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.handleList(out) {
		return 0
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "put: exactly one input file is required")
		return 2
	}

	store, closeFn, err := registry.Open(common.backend, registry.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	f := newFormat()
	data, err := encodeFile(f, fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	id, err := f.Util.CID(context.Background(), data)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if err := store.PutBlock(id.Canonical(), data); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintln(out, id.String())
	return 0
}

func cmdGet(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)
	cidStr := fs.String("cid", "", "block CID")
	outPath := fs.String("out", "", "write block bytes to this file instead of stdout")
	registry.RegisterFlags(fs, registry.UsageCLI)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.handleList(out) {
		return 0
	}

	id, err := cid.Decode(*cidStr)
	if err != nil {
		fmt.Fprintln(errOut, "get: invalid --cid")
		return 2
	}

	store, closeFn, err := registry.Open(common.backend, registry.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	data, err := store.Get(id)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if *outPath != "" {
		if err := os.WriteFile(*outPath, data, 0o644); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		return 0
	}
	if _, err := out.Write(data); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

func cmdResolve(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)
	cidStr := fs.String("cid", "", "root block CID")
	path := fs.String("path", "", "slash-delimited path")
	registry.RegisterFlags(fs, registry.UsageCLI)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.handleList(out) {
		return 0
	}

	id, err := cid.Decode(*cidStr)
	if err != nil {
		fmt.Fprintln(errOut, "resolve: invalid --cid")
		return 2
	}

	store, closeFn, err := registry.Open(common.backend, registry.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	data, err := store.Get(id)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	f := newFormat()
	res, err := f.ResolveThrough(store, data, *path)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	enc, err := json.MarshalIndent(printable(res.Value), "", "  ")
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintln(out, string(enc))
	if res.RemainderPath != "" {
		fmt.Fprintf(out, "remainder: %s\n", res.RemainderPath)
	}
	return 0
}

func cmdTree(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)
	cidStr := fs.String("cid", "", "block CID")
	registry.RegisterFlags(fs, registry.UsageCLI)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.handleList(out) {
		return 0
	}

	id, err := cid.Decode(*cidStr)
	if err != nil {
		fmt.Fprintln(errOut, "tree: invalid --cid")
		return 2
	}

	store, closeFn, err := registry.Open(common.backend, registry.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	data, err := store.Get(id)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	f := newFormat()
	it, err := f.Resolver.Tree(data)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	for {
		p, ok := it.Next()
		if !ok {
			return 0
		}
		fmt.Fprintln(out, p)
	}
}

// encodeFile reads a JSON value and serializes it through the adapter.
func encodeFile(f *format.Format, path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var value any
	if err := json.Unmarshal(b, &value); err != nil {
		return nil, fmt.Errorf("input is not valid JSON: %w", err)
	}
	return f.Util.Serialize(value)
}

// printable rewrites a resolved value into a JSON-friendly shape:
// identifiers as their string form, binary leaves as base64.
func printable(v any) any {
	switch t := v.(type) {
	case legacycid.Cid:
		return t.String()
	case legacycid.Buffer:
		return base64.StdEncoding.EncodeToString(t)
	case []byte:
		return base64.StdEncoding.EncodeToString(t)
	case cid.Cid:
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = printable(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = printable(child)
		}
		return out
	default:
		return v
	}
}
