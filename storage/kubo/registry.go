package kubo

import (
	"flag"
	"os"

	"xdao.co/legacyipld/storage"
	"xdao.co/legacyipld/storage/registry"
)

var (
	flagBin  string
	flagPath string
)

func init() {
	registry.MustRegister(registry.Backend{
		Name:        "kubo",
		Description: "Kubo CLI block store (shells out to the local 'ipfs' binary)",
		Usage:       registry.UsageCLI | registry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagBin, "kubo-bin", "", "Path to the ipfs binary (for --backend=kubo; default 'ipfs')")
			fs.StringVar(&flagPath, "kubo-path", "", "IPFS_PATH repo directory (for --backend=kubo)")
		},
		Open: func() (storage.BlockStore, func() error, error) {
			return open(flagBin, flagPath)
		},
		OpenConfig: func(cfg map[string]string) (storage.BlockStore, func() error, error) {
			return open(cfg["kubo-bin"], cfg["kubo-path"])
		},
	})
}

func open(bin, repoPath string) (storage.BlockStore, func() error, error) {
	var env []string
	if repoPath != "" {
		env = append(os.Environ(), "IPFS_PATH="+repoPath)
	}
	return New(Options{Bin: bin, Env: env}), nil, nil
}
