// Command legacyipld-blockd serves a block store backend over gRPC.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"xdao.co/legacyipld/storage"
	"xdao.co/legacyipld/storage/grpcstore"
	"xdao.co/legacyipld/storage/registry"
	"xdao.co/legacyipld/storage/storeconfig"

	_ "xdao.co/legacyipld/storage/kubo"
	_ "xdao.co/legacyipld/storage/localfs"
)

func main() {
	fs := flag.NewFlagSet("legacyipld-blockd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7777", "listen address")
	backend := fs.String("backend", "localfs", "block store backend name")
	configPath := fs.String("config", "", "JSON store config file (overrides --backend flags)")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")

	registry.RegisterFlags(fs, registry.UsageDaemon)

	_ = fs.Parse(os.Args[1:])
	if *listBackends {
		for _, b := range registry.List(registry.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(os.Stdout, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return
	}

	var (
		store   storage.BlockStore
		closeFn func() error
		err     error
	)
	if *configPath != "" {
		var cfg storeconfig.Config
		cfg, err = storeconfig.LoadFile(*configPath)
		if err == nil {
			store, closeFn, err = cfg.Open(registry.UsageDaemon, "")
		}
	} else {
		store, closeFn, err = registry.Open(*backend, registry.UsageDaemon)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if closeFn != nil {
		defer closeFn()
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcstore.RegisterBlockStoreServer(s, &grpcstore.Server{Store: store})

	fmt.Fprintf(os.Stderr, "legacyipld-blockd listening on %s (backend=%s)\n", lis.Addr().String(), *backend)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
