package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"xdao.co/reservecid/model"
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
	case "address":
		return cmdAddress(args[1:], out, errOut)
	case "url":
		return cmdURL(args[1:], out, errOut)
	case "cas":
		return cmdCAS(args[1:], out, errOut)
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
	fmt.Fprintln(w, "reservecid: content identifiers, reserve addresses and locator URLs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  reservecid cid parse [--json] <cid>")
	fmt.Fprintln(w, "  reservecid cid sum [--codec raw|dag-pb|dag-cbor|dag-json] [--v0] [--base base32|base58] [--json-input] <file>")
	fmt.Fprintln(w, "  reservecid address from-cid <cid>")
	fmt.Fprintln(w, "  reservecid address decode [--v1 [--codec <name>]] [--json] <address>")
	fmt.Fprintln(w, "  reservecid address verify <address>")
	fmt.Fprintln(w, "  reservecid url resolve [--asset-id <n>] [--var name=value ...] [--json] <url>")
	fmt.Fprintln(w, "  reservecid url expand --reserve <address> <template>")
	fmt.Fprintln(w, "  reservecid cas put [store flags] [--reserve] <file>")
	fmt.Fprintln(w, "  reservecid cas get [store flags] (--cid <cid> | --reserve <address>) [--out <file>]")
	fmt.Fprintln(w, "  reservecid cas bundle export [store flags] --out <file> [--index] [--label name=cid ...] <cid> [<cid> ...]")
	fmt.Fprintln(w, "  reservecid cas bundle import [store flags] [--ignore-unknown] <file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Store flags:")
	fmt.Fprintln(w, "  --backend <name> plus that backend's flags (see --list-backends), or")
	fmt.Fprintln(w, "  --cas-config <file.yaml|file.json> [--prefer <backend id>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - a file argument of \"-\" reads stdin")
	fmt.Fprintln(w, "  - cid sum --json-input re-encodes a JSON document as DAG-CBOR (codec dag-cbor)")
	fmt.Fprintln(w, "  - address decode prints the V0 (dag-pb) identifier unless --v1 is given")
	fmt.Fprintln(w, "  - url expand substitutes the first {ipfscid:<v>:<codec>:reserve:sha2-256} placeholder")
	fmt.Fprintln(w, "  - cas stores raw blocks (CIDv1 raw + sha2-256)")
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fail prints err with its stable error code and returns exit status 1.
func fail(errOut io.Writer, err error) int {
	fmt.Fprintln(errOut, model.ErrorFrom(err).Error())
	return 1
}
