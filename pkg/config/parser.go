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
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse decodes a config file; unknown fields are an error
	Parse(ctx context.Context, filename string, data []byte) (*File, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var parsers []Parser

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

func init() {
	Register(&YAMLParser{})
	Register(&HCLParser{})
	Register(&JSONParser{})
}

func hasExt(filename string, exts ...string) bool {
	name := strings.ToLower(strings.TrimSpace(filename))
	for _, e := range exts {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func (p *YAMLParser) CanParse(filename string) bool {
	return hasExt(filename, ".yaml", ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, filename string, data []byte) (*File, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &f, nil
}

// 🔧 JSONParser implements the Parser interface for JSON files
type JSONParser struct{}

func (p *JSONParser) CanParse(filename string) bool {
	return hasExt(filename, ".json")
}

func (p *JSONParser) Parse(ctx context.Context, filename string, data []byte) (*File, error) {
	var f File
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&f); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return &f, nil
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func (p *HCLParser) CanParse(filename string) bool {
	return hasExt(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, filename string, data []byte) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var f File
	if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &f); diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}
	return &f, nil
}
