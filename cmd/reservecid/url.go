package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"xdao.co/reservecid/locator"
	"xdao.co/reservecid/model"
)

func cmdURL(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: reservecid url <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: resolve, expand")
		return 2
	}
	switch args[0] {
	case "resolve":
		return cmdURLResolve(args[1:], out, errOut)
	case "expand":
		return cmdURLExpand(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown url subcommand: %s\n", args[0])
		return 2
	}
}

func cmdURLResolve(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("url resolve", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	assetID := fs.String("asset-id", "", "substitute {id} with this decimal asset id")
	var vars []string
	fs.StringArrayVar(&vars, "var", nil, "template variable name=value (repeatable)")
	asJSON := fs.Bool("json", false, "print the parsed URL as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: reservecid url resolve [--asset-id <n>] [--var name=value ...] [--json] <url>")
		return 2
	}

	values := map[string]string{}
	for _, kv := range vars {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			fmt.Fprintf(errOut, "invalid --var %q (expected name=value)\n", kv)
			return 2
		}
		values[name] = value
	}
	if *assetID != "" {
		n, err := strconv.ParseUint(*assetID, 10, 64)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --asset-id %q\n", *assetID)
			return 2
		}
		values["id"] = strconv.FormatUint(n, 10)
	}

	u, err := locator.Parse(fs.Arg(0))
	if err != nil {
		return fail(errOut, err)
	}
	u = locator.ResolveTemplate(u, values)

	if *asJSON {
		info, err := model.DescribeURL(u)
		if err != nil {
			return fail(errOut, err)
		}
		if err := writeJSON(out, info); err != nil {
			return fail(errOut, err)
		}
		return 0
	}
	text, err := u.Encode()
	if err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, text)
	return 0
}

func cmdURLExpand(args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("url expand", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	reserveAddr := fs.String("reserve", "", "reserve address to substitute (required)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 || *reserveAddr == "" {
		fmt.Fprintln(errOut, "usage: reservecid url expand --reserve <address> <template>")
		return 2
	}
	s, err := locator.ExpandReserve(fs.Arg(0), *reserveAddr)
	if err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, s)
	return 0
}
