package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"xdao.co/reservecid/cid"
	"xdao.co/reservecid/model"
	"xdao.co/reservecid/reserve"
)

func cmdAddress(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: reservecid address <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: from-cid, decode, verify")
		return 2
	}
	switch args[0] {
	case "from-cid":
		return cmdAddressFromCID(args[1:], out, errOut)
	case "decode":
		return cmdAddressDecode(args[1:], out, errOut)
	case "verify":
		return cmdAddressVerify(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown address subcommand: %s\n", args[0])
		return 2
	}
}

func cmdAddressFromCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("address from-cid", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: reservecid address from-cid <cid>")
		return 2
	}
	id, err := cid.Parse(fs.Arg(0))
	if err != nil {
		return fail(errOut, err)
	}
	addr, err := reserve.AddressFromIdentifier(id)
	if err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, addr)
	return 0
}

func cmdAddressDecode(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("address decode", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	v1 := fs.Bool("v1", false, "print a CIDv1 instead of the dag-pb CIDv0")
	codecName := fs.String("codec", cid.DagPB.String(), "multicodec for --v1")
	asJSON := fs.Bool("json", false, "print payload, checksum and identifier as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: reservecid address decode [--v1 [--codec <name>]] [--json] <address>")
		return 2
	}
	if fs.Changed("codec") && !*v1 {
		fmt.Fprintln(errOut, "--codec requires --v1")
		return 2
	}

	addr, err := reserve.ParseAddress(fs.Arg(0))
	if err != nil {
		return fail(errOut, err)
	}
	if *asJSON {
		if err := writeJSON(out, model.DescribeAddress(addr)); err != nil {
			return fail(errOut, err)
		}
		return 0
	}

	id := addr.Identifier()
	if *v1 {
		codec, err := cid.CodecFromName(*codecName)
		if err != nil {
			return fail(errOut, err)
		}
		if id, err = cid.NewV1(codec, addr.Payload[:]); err != nil {
			return fail(errOut, err)
		}
	}
	fmt.Fprintln(out, id.String())
	return 0
}

func cmdAddressVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("address verify", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: reservecid address verify <address>")
		return 2
	}
	if _, err := reserve.Decode(fs.Arg(0)); err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, "OK")
	return 0
}
