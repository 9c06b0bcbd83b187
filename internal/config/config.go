// Package config loads contractgen.yaml.
//
// A file is decoded strictly with yaml.v3 and then checked against the
// embedded CUE schema, so both typos and out-of-range values are reported
// with the offending path and line.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file name used when none is given.
const DefaultFile = "contractgen.yaml"

// Defaults applied to packages that leave the field empty.
const (
	DefaultOutput          = "contract_gen.go"
	DefaultClientSuffix    = "ContractForClient"
	DefaultImplementSuffix = "ContractForImplement"
)

//go:embed schema.cue
var schemaCUE string

// Config is a parsed contractgen.yaml.
type Config struct {
	Version  int       `yaml:"version" json:"version"`
	Packages []Package `yaml:"packages" json:"packages"`

	// BaseDir is the directory package paths are relative to.
	BaseDir string `yaml:"-" json:"-"`
}

// Package selects one Go package to generate forwarders for.
type Package struct {
	// Dir is the package directory, relative to the config file.
	Dir string `yaml:"dir" json:"dir"`

	// Output is the generated file name inside Dir.
	Output string `yaml:"output,omitempty" json:"output,omitempty"`

	// Capabilities restricts generation to these interfaces. Empty means
	// every interface that has a holder.
	Capabilities []string `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`

	ClientSuffix    string `yaml:"client_suffix,omitempty" json:"client_suffix,omitempty"`
	ImplementSuffix string `yaml:"implement_suffix,omitempty" json:"implement_suffix,omitempty"`
}

// Load reads, validates and defaults the config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	cfg.BaseDir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes and validates a config document. filename is used in
// error positions only.
func Parse(data []byte, filename string) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := Validate(data, filename); err != nil {
		return nil, err
	}

	for i := range cfg.Packages {
		cfg.Packages[i].applyDefaults()
	}
	return &cfg, nil
}

func (p *Package) applyDefaults() {
	if p.Output == "" {
		p.Output = DefaultOutput
	}
	if p.ClientSuffix == "" {
		p.ClientSuffix = DefaultClientSuffix
	}
	if p.ImplementSuffix == "" {
		p.ImplementSuffix = DefaultImplementSuffix
	}
}

// PackageDir resolves p.Dir against the config's base directory.
func (c *Config) PackageDir(p Package) string {
	if filepath.IsAbs(p.Dir) || c.BaseDir == "" {
		return p.Dir
	}
	return filepath.Join(c.BaseDir, p.Dir)
}

// OutputPath is the file generated for p.
func (c *Config) OutputPath(p Package) string {
	return filepath.Join(c.PackageDir(p), p.Output)
}
