// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 PatternDef is a user-supplied substitution rule, applied after the
// built-in stages in declaration order.
type PatternDef struct {
	ID          string   `json:"id" yaml:"id" toml:"id" hcl:"id,label"`
	Files       string   `json:"files,omitempty" yaml:"files,omitempty" toml:"files,omitempty" hcl:"files,optional"`
	Pattern     string   `json:"pattern" yaml:"pattern" toml:"pattern" hcl:"pattern"`
	Replacement string   `json:"replacement" yaml:"replacement" toml:"replacement" hcl:"replacement,optional"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty" hcl:"tags,optional"`
}

// 📚 Config represents the complete run configuration
type Config struct {
	Root     string       `json:"root,omitempty" yaml:"root,omitempty" toml:"root,omitempty" hcl:"root,optional"`
	Include  []string     `json:"include,omitempty" yaml:"include,omitempty" toml:"include,omitempty" hcl:"include,optional"`
	Exclude  []string     `json:"exclude,omitempty" yaml:"exclude,omitempty" toml:"exclude,omitempty" hcl:"exclude,optional"`
	Jobs     int          `json:"jobs,omitempty" yaml:"jobs,omitempty" toml:"jobs,omitempty" hcl:"jobs,optional"`
	Rules    []string     `json:"rules,omitempty" yaml:"rules,omitempty" toml:"rules,omitempty" hcl:"rules,optional"`
	Patterns []PatternDef `json:"patterns,omitempty" yaml:"patterns,omitempty" toml:"patterns,omitempty" hcl:"pattern,block"`
}

// 🎯 Load loads the configuration from a file. A missing file is not an
// error: the flag defaults alone are a complete configuration.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			if verr := cfg.Validate(); verr != nil {
				return nil, verr
			}
			return cfg, nil
		}
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills defaults
func (cfg *Config) Validate() error {
	if cfg.Root == "" {
		cfg.Root = "src"
	}
	cfg.Root = filepath.Clean(cfg.Root)

	if cfg.Jobs < 0 {
		return errors.Errorf("jobs must not be negative")
	}

	seen := map[string]bool{}
	for i, p := range cfg.Patterns {
		if p.ID == "" {
			return errors.Errorf("pattern %d: id is required", i)
		}
		if seen[p.ID] {
			return errors.Errorf("pattern %q: duplicate id", p.ID)
		}
		seen[p.ID] = true
		if p.Pattern == "" {
			return errors.Errorf("pattern %q: pattern is required", p.ID)
		}
	}
	return nil
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var cfg Config
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
