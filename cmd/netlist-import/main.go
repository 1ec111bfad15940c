// netlist-import translates elaborated hierarchical netlists into a flat
// per-scope design and checks the result.
//
// THE PIPELINE:
//  1. The netlist JSON is loaded into the source object model
//  2. External net references are promoted to fresh ports (extnets)
//  3. The importer translates each reachable scope into a module,
//     lowering operators and compiling temporal assertions to checkers
//  4. Fact tables are built from the imported design
//  5. The CUE validator enforces the data contract (crash on mismatch)
//  6. OPA evaluates compliance rules against the fact tables
//
// When investigating a bad import, start at the beginning of the pipeline,
// not the end: source netlist issues come before importer issues, importer
// issues come before policy issues.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/robert-at-pretension-io/netlist-import/internal/config"
	"github.com/robert-at-pretension-io/netlist-import/internal/design"
	"github.com/robert-at-pretension-io/netlist-import/internal/extnets"
	"github.com/robert-at-pretension-io/netlist-import/internal/facts"
	"github.com/robert-at-pretension-io/netlist-import/internal/importer"
	"github.com/robert-at-pretension-io/netlist-import/internal/netlist"
	"github.com/robert-at-pretension-io/netlist-import/internal/policy"
	"github.com/robert-at-pretension-io/netlist-import/internal/validator"
)

// Report is the final artifact of a pipeline run.
type Report struct {
	Top        string             `json:"top"`
	Modules    []string           `json:"modules"`
	Facts      facts.Tables       `json:"facts"`
	Violations []policy.Violation `json:"violations"`
	Summary    policy.Summary     `json:"summary"`
}

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "init" {
		runInit()
		return
	}

	configPath := flag.String("c", "", "path to a configuration file")
	top := flag.String("top", "", "name of the root scope (default: first netlist's top)")
	gates := flag.Bool("gates", false, "lower primitives to single-bit gates")
	keep := flag.Bool("keep", false, "keep unsupported primitives as opaque cells")
	nosva := flag.Bool("nosva", false, "skip temporal assertion compilation")
	nosvapp := flag.Bool("nosvapp", false, "skip the assertion pre-processing transform")
	names := flag.Bool("names", false, "preserve all source names")
	noextnets := flag.Bool("noextnets", false, "skip external reference promotion")
	policyDir := flag.String("policy", "", "directory of .rego rule files (default: built-in rules)")
	noPolicy := flag.Bool("no-policy", false, "skip policy evaluation")
	factsOut := flag.String("facts", "", "write fact tables JSON to file")
	reportOut := flag.String("report", "", "write report JSON to file (default: stdout)")
	verbose := flag.Bool("v", false, "enable verbose output")
	flag.Usage = printUsage
	flag.Parse()

	cfg := loadConfig(*configPath)
	overrideConfig(cfg, *top, *gates, *keep, *nosva, *nosvapp, *names, *noextnets,
		*policyDir, *noPolicy, *factsOut, *reportOut, *verbose)

	paths := flag.Args()
	if len(paths) == 0 {
		var err error
		paths, err = cfg.ResolveNetlists(".")
		if err != nil || len(paths) == 0 {
			fmt.Fprintln(os.Stderr, "Error: no netlist files given and none matched the configured patterns")
			os.Exit(1)
		}
	}

	report, err := run(cfg, paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Output.Facts != "" {
		if err := writeJSON(cfg.Output.Facts, report.Facts); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing facts: %v\n", err)
			os.Exit(1)
		}
	}

	if cfg.Output.Report != "" {
		if err := writeJSON(cfg.Output.Report, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			os.Exit(1)
		}
	} else {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
			os.Exit(1)
		}
	}

	if report.Summary.Errors > 0 {
		os.Exit(1)
	}
}

// run executes the import pipeline over the given netlist files and
// returns the validated report.
func run(cfg *config.Config, paths []string) (*Report, error) {
	d := design.NewDesign()
	imp := importer.New(d)
	imp.ModeGates = cfg.Import.Gates
	imp.ModeKeep = cfg.Import.Keep
	imp.ModeNoSva = cfg.Import.NoSva
	imp.ModeNoSvaPP = cfg.Import.NoSvaPP
	imp.ModeNames = cfg.Import.FullNames
	imp.Verbose = cfg.Verbose

	topName := cfg.Top
	for _, path := range paths {
		root, err := netlist.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		if topName == "" {
			topName = root.Name
		}

		if !cfg.Import.NoExtNets {
			p := extnets.NewPromoter()
			p.Verbose = cfg.Verbose
			p.Run(root)
		}

		if err := imp.Run(root); err != nil {
			return nil, fmt.Errorf("importing %s: %w", path, err)
		}
	}

	if !d.Has(topName) {
		return nil, fmt.Errorf("top module %q was not imported", topName)
	}

	tables := facts.BuildTables(d, imp.Warnings)

	v, err := validator.New()
	if err != nil {
		return nil, fmt.Errorf("creating validator: %w", err)
	}
	if err := v.ValidateFacts(tables); err != nil {
		for _, msg := range v.ValidationErrors(tables) {
			fmt.Fprintf(os.Stderr, "schema: %s\n", msg)
		}
		return nil, fmt.Errorf("fact tables violate the schema contract: %w", err)
	}

	report := &Report{
		Top:        topName,
		Facts:      tables,
		Violations: []policy.Violation{},
	}
	for _, m := range d.Modules() {
		report.Modules = append(report.Modules, m.Name)
	}

	if !cfg.Policy.Disabled {
		engine, err := newEngine(cfg.Policy.Dir)
		if err != nil {
			return nil, fmt.Errorf("creating policy engine: %w", err)
		}
		result, err := engine.Evaluate(tables)
		if err != nil {
			return nil, fmt.Errorf("evaluating policies: %w", err)
		}
		if result.Violations != nil {
			report.Violations = result.Violations
		}
		report.Summary = result.Summary
	}

	if err := v.ValidateReport(report); err != nil {
		return nil, fmt.Errorf("report violates the schema contract: %w", err)
	}

	return report, nil
}

func newEngine(dir string) (*policy.Engine, error) {
	if dir == "" {
		return policy.NewDefault()
	}
	return policy.New(dir)
}

func loadConfig(path string) *config.Config {
	if path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", path, err)
			os.Exit(1)
		}
		return cfg
	}

	cfg, err := config.Load(".")
	if err != nil {
		fmt.Printf("Warning: Could not load config: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	return cfg
}

func overrideConfig(cfg *config.Config, top string, gates, keep, nosva, nosvapp, names, noextnets bool,
	policyDir string, noPolicy bool, factsOut, reportOut string, verbose bool) {
	if top != "" {
		cfg.Top = top
	}
	if gates {
		cfg.Import.Gates = true
	}
	if keep {
		cfg.Import.Keep = true
	}
	if nosva {
		cfg.Import.NoSva = true
	}
	if nosvapp {
		cfg.Import.NoSvaPP = true
	}
	if names {
		cfg.Import.FullNames = true
	}
	if noextnets {
		cfg.Import.NoExtNets = true
	}
	if policyDir != "" {
		cfg.Policy.Dir = policyDir
	}
	if noPolicy {
		cfg.Policy.Disabled = true
	}
	if factsOut != "" {
		cfg.Output.Facts = factsOut
	}
	if reportOut != "" {
		cfg.Output.Report = reportOut
	}
	if verbose {
		cfg.Verbose = true
	}
}

func runInit() {
	configPath := "netlist_import.json"

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file %s already exists. Overwrite? [y/N]: ", configPath)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("\nEdit this file to configure:")
	fmt.Println("  - Netlist file patterns")
	fmt.Println("  - Importer modes (gates, keep, nosva, ...)")
	fmt.Println("  - Policy rule directory and output paths")
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: netlist-import [command] [options] [netlist.json ...]

Commands:
  init              Create a netlist_import.json configuration file

Options:
  -c file           Specify a configuration file
  -top name         Name of the root scope (default: first netlist's top)
  -gates            Lower primitives to single-bit gates
  -keep             Keep unsupported primitives as opaque cells
  -nosva            Skip temporal assertion compilation
  -nosvapp          Skip the assertion pre-processing transform
  -names            Preserve all source names
  -noextnets        Skip external reference promotion
  -policy dir       Directory of .rego rule files (default: built-in rules)
  -no-policy        Skip policy evaluation
  -facts file       Write fact tables JSON to file
  -report file      Write report JSON to file (default: stdout)
  -v                Enable verbose output

Configuration:
  netlist-import looks for configuration in:
    1. ./netlist_import.json
    2. ./.netlist_import.json
    3. ~/.config/netlist_import/config.json

  Run 'netlist-import init' to create a default configuration file.`)
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
