// Package config loads the importer configuration file. All command-line
// modes have a configuration counterpart so CI runs can pin behavior
// without wrapper scripts.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the top-level configuration for netlist-import.
type Config struct {
	// Top is the name of the root scope to import. Empty means the CLI
	// argument is required.
	Top string `json:"top,omitempty"`

	// Netlists is a list of glob patterns for netlist JSON inputs.
	Netlists []string `json:"netlists,omitempty"`

	// Exclude is a list of glob patterns removed from the netlist set.
	Exclude []string `json:"exclude,omitempty"`

	// Import contains importer mode switches.
	Import ImportConfig `json:"import,omitempty"`

	// Policy contains policy engine configuration.
	Policy PolicyConfig `json:"policy,omitempty"`

	// Output contains artifact paths.
	Output OutputConfig `json:"output,omitempty"`

	// Verbose enables progress logging throughout the pipeline.
	Verbose bool `json:"verbose,omitempty"`
}

// ImportConfig contains importer mode switches.
type ImportConfig struct {
	// Gates lowers gate-level primitives to single-bit gate cells instead
	// of width-one word-level cells.
	Gates bool `json:"gates,omitempty"`

	// Keep preserves unsupported primitives and assertion structures as
	// structural instances instead of failing.
	Keep bool `json:"keep,omitempty"`

	// NoSva skips compiling temporal assertion trees into checkers.
	NoSva bool `json:"noSva,omitempty"`

	// NoSvaPP skips the assertion preprocessing rewrite.
	NoSvaPP bool `json:"noSvaPp,omitempty"`

	// FullNames keeps tool-generated object names instead of demoting
	// them to auto-generated ones.
	FullNames bool `json:"fullNames,omitempty"`

	// NoExtNets skips the external reference promotion pass.
	NoExtNets bool `json:"noExtNets,omitempty"`
}

// PolicyConfig contains policy engine configuration.
type PolicyConfig struct {
	// Dir is a directory of .rego rule files. Empty means the built-in
	// rule set.
	Dir string `json:"dir,omitempty"`

	// Disabled skips policy evaluation entirely.
	Disabled bool `json:"disabled,omitempty"`
}

// OutputConfig contains artifact paths.
type OutputConfig struct {
	// Facts is where the fact tables JSON is written. Empty means no
	// facts artifact.
	Facts string `json:"facts,omitempty"`

	// Report is where the final report JSON is written. Empty means
	// stdout only.
	Report string `json:"report,omitempty"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Netlists: []string{"*.json", "**/*.json"},
		Exclude:  []string{},
	}
}

// Load finds and loads the configuration file.
// Search order:
//  1. ./netlist_import.json (current working directory)
//  2. ./.netlist_import.json (current working directory)
//  3. <rootPath>/netlist_import.json (if different from cwd)
//  4. ~/.config/netlist_import/config.json
//
// Returns DefaultConfig if no config file is found.
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "netlist_import.json"),
		filepath.Join(cwd, ".netlist_import.json"),
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, "netlist_import.json"),
				filepath.Join(rootPath, ".netlist_import.json"),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "netlist_import", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Netlists) == 0 {
		c.Netlists = []string{"*.json", "**/*.json"}
	}
}

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
