// netlist-facts imports netlists and dumps the resulting fact tables as
// JSON, optionally computing a row-level delta against a previous dump.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/robert-at-pretension-io/netlist-import/internal/design"
	"github.com/robert-at-pretension-io/netlist-import/internal/extnets"
	"github.com/robert-at-pretension-io/netlist-import/internal/facts"
	"github.com/robert-at-pretension-io/netlist-import/internal/importer"
	"github.com/robert-at-pretension-io/netlist-import/internal/netlist"
)

func main() {
	output := flag.String("output", "", "write facts JSON to file (default: stdout)")
	flag.StringVar(output, "o", "", "write facts JSON to file (shorthand)")
	deltaFrom := flag.String("delta-from", "", "previous facts JSON to compute delta from")
	deltaOut := flag.String("delta-out", "", "write delta JSON to file (requires --delta-from)")
	gates := flag.Bool("gates", false, "lower primitives to single-bit gates")
	keep := flag.Bool("keep", false, "keep unsupported primitives as opaque cells")
	verbose := flag.Bool("v", false, "enable verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: netlist-facts [--output file] [--delta-from prev.json --delta-out delta.json] <netlist.json ...>")
		os.Exit(1)
	}

	d := design.NewDesign()
	imp := importer.New(d)
	imp.ModeGates = *gates
	imp.ModeKeep = *keep
	imp.Verbose = *verbose

	for _, path := range args {
		root, err := netlist.LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
			os.Exit(1)
		}

		p := extnets.NewPromoter()
		p.Verbose = *verbose
		p.Run(root)

		if err := imp.Run(root); err != nil {
			fmt.Fprintf(os.Stderr, "Error importing %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	tables := facts.BuildTables(d, imp.Warnings)

	if *output != "" {
		if err := writeJSON(*output, tables); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing facts: %v\n", err)
			os.Exit(1)
		}
	} else {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(tables); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding facts: %v\n", err)
			os.Exit(1)
		}
	}

	if *deltaFrom != "" || *deltaOut != "" {
		if *deltaFrom == "" || *deltaOut == "" {
			fmt.Fprintln(os.Stderr, "Error: --delta-from and --delta-out must be used together")
			os.Exit(1)
		}
		prev, err := readTables(*deltaFrom)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading delta-from: %v\n", err)
			os.Exit(1)
		}
		delta := facts.ComputeDelta(prev, tables)
		if err := writeJSON(*deltaOut, delta); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing delta: %v\n", err)
			os.Exit(1)
		}
	}
}

func readTables(path string) (facts.Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return facts.Tables{}, err
	}
	defer func() { _ = f.Close() }()

	var tables facts.Tables
	if err := json.NewDecoder(f).Decode(&tables); err != nil {
		return facts.Tables{}, err
	}
	return tables, nil
}

func writeJSON(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
