package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"xdao.co/reservecid/cid"
	"xdao.co/reservecid/storage"
	"xdao.co/reservecid/storage/bundle"
	"xdao.co/reservecid/storage/casconfig"
	"xdao.co/reservecid/storage/casregistry"

	_ "xdao.co/reservecid/storage/grpccas"
	_ "xdao.co/reservecid/storage/ipfs"
	_ "xdao.co/reservecid/storage/localfs"
)

func cmdCAS(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: reservecid cas <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: put, get, bundle")
		return 2
	}
	switch args[0] {
	case "put":
		return cmdCASPut(args[1:], out, errOut)
	case "get":
		return cmdCASGet(args[1:], out, errOut)
	case "bundle":
		return cmdCASBundle(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown cas subcommand: %s\n", args[0])
		return 2
	}
}

type storeFlags struct {
	backend      string
	listBackends bool
	configPath   string
	prefer       string
}

func (c *storeFlags) add(fs *pflag.FlagSet) {
	fs.StringVar(&c.backend, "backend", "localfs", "CAS backend name")
	fs.BoolVar(&c.listBackends, "list-backends", false, "List supported backends and exit")
	fs.StringVar(&c.configPath, "cas-config", "", "CAS config file (YAML or JSON); overrides --backend")
	fs.StringVar(&c.prefer, "prefer", "", "With --cas-config: backend id to read from first")
	casregistry.RegisterFlags(fs, casregistry.UsageCLI)
}

func (c *storeFlags) openCAS() (storage.CAS, func() error, error) {
	if c.configPath != "" {
		cfg, err := casconfig.LoadFile(c.configPath)
		if err != nil {
			return nil, nil, err
		}
		return cfg.Open(casregistry.UsageCLI, c.prefer)
	}
	if c.prefer != "" {
		return nil, nil, fmt.Errorf("--prefer requires --cas-config")
	}
	return casregistry.Open(c.backend, casregistry.UsageCLI)
}

func printBackends(w io.Writer) {
	for _, b := range casregistry.List(casregistry.UsageCLI) {
		if b.Description == "" {
			_, _ = fmt.Fprintf(w, "%s\n", b.Name)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", b.Name, b.Description)
	}
}

func cmdCASPut(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("cas put", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	var store storeFlags
	store.add(fs)
	withReserve := fs.Bool("reserve", false, "also print the reserve address of the stored block")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if store.listBackends {
		printBackends(out)
		return 0
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: reservecid cas put [store flags] [--reserve] <file>")
		return 2
	}

	cas, closeFn, err := store.openCAS()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	p := fs.Arg(0)
	b, err := readInput(p)
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(p), err)
		return 1
	}
	id, addr, err := storage.ReserveOf(cas, b)
	if err != nil {
		return fail(errOut, err)
	}
	if *withReserve {
		_, _ = fmt.Fprintf(out, "%s\t%s\n", id, addr)
		return 0
	}
	_, _ = fmt.Fprintln(out, id.String())
	return 0
}

func cmdCASGet(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("cas get", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	var store storeFlags
	store.add(fs)

	var cidStr, reserveAddr, outPath string
	fs.StringVar(&cidStr, "cid", "", "CID to fetch (any version or base)")
	fs.StringVar(&reserveAddr, "reserve", "", "Reserve address to fetch")
	fs.StringVar(&outPath, "out", "", "Output file (optional; default stdout)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if store.listBackends {
		printBackends(out)
		return 0
	}
	if (cidStr == "") == (reserveAddr == "") || fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: reservecid cas get [store flags] (--cid <cid> | --reserve <address>) [--out <file>]")
		return 2
	}

	cas, closeFn, err := store.openCAS()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	var b []byte
	if reserveAddr != "" {
		b, err = storage.GetByReserve(cas, reserveAddr)
	} else {
		var id cid.CID
		if id, err = cid.Parse(cidStr); err == nil {
			b, err = cas.Get(id)
		}
	}
	if err != nil {
		return fail(errOut, err)
	}

	if outPath == "" {
		_, _ = out.Write(b)
		return 0
	}
	if err := os.WriteFile(outPath, b, 0o600); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", outPath, err)
		return 1
	}
	return 0
}

func cmdCASBundle(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: reservecid cas bundle <export|import> ...")
		return 2
	}
	switch args[0] {
	case "export":
		return cmdBundleExport(args[1:], out, errOut)
	case "import":
		return cmdBundleImport(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown bundle subcommand: %s\n", args[0])
		return 2
	}
}

func cmdBundleExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("cas bundle export", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	var store storeFlags
	store.add(fs)
	outPath := fs.String("out", "", "Bundle file to write (required)")
	withIndex := fs.Bool("index", false, "Write index.json")
	var labels []string
	fs.StringArrayVar(&labels, "label", nil, "Index label name=cid (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if store.listBackends {
		printBackends(out)
		return 0
	}
	if *outPath == "" || fs.NArg() == 0 {
		fmt.Fprintln(errOut, "usage: reservecid cas bundle export [store flags] --out <file> [--index] [--label name=cid ...] <cid> [<cid> ...]")
		return 2
	}

	opts := bundle.ExportOptions{IncludeIndex: *withIndex}
	for _, kv := range labels {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			fmt.Fprintf(errOut, "invalid --label %q (expected name=cid)\n", kv)
			return 2
		}
		id, err := cid.Parse(value)
		if err != nil {
			return fail(errOut, err)
		}
		if opts.Labels == nil {
			opts.Labels = map[string]cid.CID{}
		}
		opts.Labels[name] = id
	}
	if len(opts.Labels) > 0 {
		opts.IncludeIndex = true
	}

	ids := make([]cid.CID, 0, fs.NArg())
	for _, s := range fs.Args() {
		id, err := cid.Parse(s)
		if err != nil {
			return fail(errOut, err)
		}
		ids = append(ids, id)
	}

	cas, closeFn, err := store.openCAS()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	var buf bytes.Buffer
	if err := bundle.Export(&buf, cas, ids, opts); err != nil {
		return fail(errOut, err)
	}
	if err := os.WriteFile(*outPath, buf.Bytes(), 0o600); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", *outPath, err)
		return 1
	}
	return 0
}

func cmdBundleImport(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("cas bundle import", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	var store storeFlags
	store.add(fs)
	ignoreUnknown := fs.Bool("ignore-unknown", false, "Skip unknown archive entries")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if store.listBackends {
		printBackends(out)
		return 0
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: reservecid cas bundle import [store flags] [--ignore-unknown] <file>")
		return 2
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer f.Close()

	cas, closeFn, err := store.openCAS()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	ids, err := bundle.ImportWithOptions(f, cas, bundle.ImportOptions{IgnoreUnknown: *ignoreUnknown})
	if err != nil {
		return fail(errOut, err)
	}
	for _, id := range ids {
		_, _ = fmt.Fprintln(out, id.String())
	}
	return 0
}
