package ipfs

import (
	"os"

	"github.com/spf13/pflag"

	"xdao.co/reservecid/storage"
	"xdao.co/reservecid/storage/casregistry"
)

var (
	flagBin  string
	flagPath string
)

func init() {
	casregistry.MustRegister(casregistry.Backend{
		Name:        "ipfs",
		Description: "Local Kubo repo via the ipfs CLI",
		Usage:       casregistry.UsageCLI | casregistry.UsageDaemon,
		RegisterFlags: func(fs *pflag.FlagSet) {
			fs.StringVar(&flagBin, "ipfs-bin", "", "ipfs binary (for --backend=ipfs; default \"ipfs\")")
			fs.StringVar(&flagPath, "ipfs-path", "", "IPFS_PATH for the ipfs binary (for --backend=ipfs)")
		},
		Open: func() (storage.CAS, func() error, error) {
			return New(options(flagBin, flagPath)), nil, nil
		},
		OpenConfig: func(cfg map[string]string) (storage.CAS, func() error, error) {
			return New(options(cfg["ipfs-bin"], cfg["ipfs-path"])), nil, nil
		},
	})
}

func options(bin, repo string) Options {
	opts := Options{Bin: bin}
	if repo != "" {
		opts.Env = append(os.Environ(), "IPFS_PATH="+repo)
	}
	return opts
}
