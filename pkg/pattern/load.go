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

package pattern

import (
	"bytes"
	"context"
	"encoding/json"
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

// 📄 catalogFile is the on-disk form of a catalog
type catalogFile struct {
	Version  string       `json:"version" yaml:"version" hcl:"version"`
	Extends  string       `json:"extends,omitempty" yaml:"extends,omitempty" hcl:"extends,optional"`
	Rules    []ruleFile   `json:"rules" yaml:"rules" hcl:"rule,block"`
	Liveness []markerFile `json:"liveness,omitempty" yaml:"liveness,omitempty" hcl:"liveness,block"`
}

type ruleFile struct {
	Kind        string `json:"kind" yaml:"kind" hcl:"kind,label"`
	Pattern     string `json:"pattern" yaml:"pattern" hcl:"pattern"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" hcl:"description,optional"`
	Requires    string `json:"requires,omitempty" yaml:"requires,omitempty" hcl:"requires,optional"`
}

type markerFile struct {
	Description string `json:"description" yaml:"description" hcl:"description,label"`
	Files       string `json:"files" yaml:"files" hcl:"files"`
	Regexp      string `json:"regexp,omitempty" yaml:"regexp,omitempty" hcl:"regexp,optional"`
	JSONPath    string `json:"jsonpath,omitempty" yaml:"jsonpath,omitempty" hcl:"jsonpath,optional"`
}

// 📖 Load reads a catalog file. The format follows the extension
// (.yaml/.yml, .hcl, .json). A file may extend the built-in "firewall" catalog.
func Load(ctx context.Context, path string) (*Catalog, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading pattern catalog")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading catalog file: %w", err)
	}
	return Parse(ctx, path, data)
}

// Parse decodes catalog data; filename picks the format.
func Parse(ctx context.Context, filename string, data []byte) (*Catalog, error) {
	var (
		file *catalogFile
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		file, err = parseJSON(data)
	case ".yaml", ".yml":
		file, err = parseYAML(data)
	case ".hcl":
		file, err = parseHCL(data, filename)
	default:
		return nil, errors.Errorf("unsupported catalog extension %q", ext)
	}
	if err != nil {
		return nil, err
	}

	c, err := file.build()
	if err != nil {
		return nil, errors.Errorf("building catalog from %s: %w", filename, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("version", c.Version()).
		Int("rules", len(c.Rules())).
		Int("markers", len(c.Markers())).
		Msg("catalog loaded")
	return c, nil
}

func (f *catalogFile) build() (*Catalog, error) {
	var (
		rules   []Rule
		markers []LivenessMarker
	)
	switch f.Extends {
	case "":
	case "firewall":
		base := DefaultFirewall()
		rules = base.Rules()
		markers = base.Markers()
	default:
		return nil, errors.Errorf("unknown base catalog %q", f.Extends)
	}

	for i, rf := range f.Rules {
		kind, err := ParseKind(rf.Kind)
		if err != nil {
			return nil, errors.Errorf("rule %d: %w", i, err)
		}
		r, err := NewRule(kind, rf.Pattern, rf.Description)
		if err != nil {
			return nil, err
		}
		if rf.Requires != "" {
			if kind != JSONKey {
				return nil, errors.Errorf("rule %q: requires is only valid for json_key rules", r.Description)
			}
			r = r.RequiresMember(rf.Requires)
		}
		rules = append(rules, r)
	}

	for _, mf := range f.Liveness {
		var (
			m   LivenessMarker
			err error
		)
		switch {
		case mf.Regexp != "" && mf.JSONPath != "":
			return nil, errors.Errorf("marker %q: regexp and jsonpath are exclusive", mf.Description)
		case mf.Regexp != "":
			m, err = NewRegexpMarker(mf.Description, mf.Files, mf.Regexp)
		case mf.JSONPath != "":
			m, err = NewJSONPathMarker(mf.Description, mf.Files, mf.JSONPath)
		default:
			return nil, errors.Errorf("marker %q: one of regexp or jsonpath is required", mf.Description)
		}
		if err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}

	return NewCatalog(f.Version, rules, markers)
}

func parseJSON(data []byte) (*catalogFile, error) {
	var f catalogFile
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return &f, nil
}

func parseYAML(data []byte) (*catalogFile, error) {
	var f catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &f, nil
}

func parseHCL(data []byte, filename string) (*catalogFile, error) {
	parser := hclparse.NewParser()
	hf, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}
	ectx := &hcl.EvalContext{Variables: map[string]cty.Value{}}
	var f catalogFile
	if diags := gohcl.DecodeBody(hf.Body, ectx, &f); diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}
	return &f, nil
}
