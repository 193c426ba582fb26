package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"xdao.co/reservecid/cid"
	"xdao.co/reservecid/dagcbor"
	"xdao.co/reservecid/model"
)

func cmdCID(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: reservecid cid <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: parse, sum")
		return 2
	}
	switch args[0] {
	case "parse":
		return cmdCIDParse(args[1:], out, errOut)
	case "sum":
		return cmdCIDSum(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown cid subcommand: %s\n", args[0])
		return 2
	}
}

func cmdCIDParse(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("cid parse", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	asJSON := fs.Bool("json", false, "print all forms as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: reservecid cid parse [--json] <cid>")
		return 2
	}

	id, err := cid.Parse(fs.Arg(0))
	if err != nil {
		return fail(errOut, err)
	}
	info, err := model.DescribeCID(id)
	if err != nil {
		return fail(errOut, err)
	}
	if *asJSON {
		if err := writeJSON(out, info); err != nil {
			return fail(errOut, err)
		}
		return 0
	}
	fmt.Fprintf(out, "cid\t%s\n", info.CID)
	fmt.Fprintf(out, "version\t%s\n", info.Version)
	fmt.Fprintf(out, "codec\t%s\n", info.Codec)
	fmt.Fprintf(out, "digest\t%s\n", info.Digest)
	fmt.Fprintf(out, "reserve\t%s\n", info.Reserve)
	return 0
}

func cmdCIDSum(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("cid sum", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	codecName := fs.String("codec", cid.Raw.String(), "multicodec of the input bytes")
	v0 := fs.Bool("v0", false, "print the V0 form (dag-pb only)")
	baseName := fs.String("base", cid.Base32.String(), "text base for V1 output: base32 or base58")
	jsonInput := fs.Bool("json-input", false, "treat input as JSON and hash its DAG-CBOR encoding")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: reservecid cid sum [--codec <name>] [--v0] [--base <base>] [--json-input] <file>")
		return 2
	}

	codec, err := cid.CodecFromName(*codecName)
	if err != nil {
		return fail(errOut, err)
	}
	base, err := cid.BaseFromName(*baseName)
	if err != nil {
		return fail(errOut, err)
	}

	data, err := readInput(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", fs.Arg(0), err)
		return 1
	}

	if *jsonInput {
		if fs.Changed("codec") && codec != cid.DagCBOR {
			fmt.Fprintln(errOut, "--json-input always produces dag-cbor")
			return 2
		}
		v, err := dagcbor.FromJSON(data)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		if data, err = dagcbor.Marshal(v); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		codec = cid.DagCBOR
	}

	var id cid.CID
	if *v0 {
		if fs.Changed("codec") && codec != cid.DagPB {
			fmt.Fprintln(errOut, "--v0 requires --codec dag-pb")
			return 2
		}
		if *jsonInput {
			fmt.Fprintln(errOut, "--v0 cannot be combined with --json-input")
			return 2
		}
		id = cid.SumV0(data)
	} else if id, err = cid.Sum(codec, data); err != nil {
		return fail(errOut, err)
	}

	var text string
	if *v0 {
		if fs.Changed("base") && base != cid.Base58 {
			fmt.Fprintln(errOut, "--v0 is always base58")
			return 2
		}
		text, err = id.Encode()
	} else {
		text, err = id.EncodeBase(base)
	}
	if err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, text)
	return 0
}
