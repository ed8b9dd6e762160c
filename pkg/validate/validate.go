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

// Package validate checks a rewritten file set before it is kept.
package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"github.com/tailscale/hujson"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/devcontainer-sync/pkg/manifest"
	"github.com/walteh/devcontainer-sync/pkg/pattern"
)

// NothingToStrip is the warning for a run that found no feature content.
const NothingToStrip = "nothing to strip"

// 🗂️ Baseline hands out pre-rewrite content
type Baseline interface {
	Original(path string) ([]byte, bool)
}

// 📥 Input is one validation request
type Input struct {
	Structured []string
	Lines      []string
	Manifest   *manifest.Manifest
	Baseline   Baseline
}

// 🔬 Validator runs the removal and liveness checks
type Validator struct {
	fs      billy.Filesystem
	markers []pattern.LivenessMarker
}

// 🏭 New creates a validator using the catalog's liveness markers
func New(fs billy.Filesystem, catalog *pattern.Catalog) *Validator {
	return &Validator{fs: fs, markers: catalog.Markers()}
}

// ✅ Validate reads the files as they are now and checks that removed text
// is gone and that every liveness marker that held before still holds.
func (v *Validator) Validate(ctx context.Context, in Input) manifest.ValidationResult {
	logger := zerolog.Ctx(ctx)
	res := manifest.ValidationResult{Errors: []string{}, Warnings: []string{}}
	m := in.Manifest
	if m == nil {
		m = manifest.New()
	}

	removed := map[string]bool{}
	for _, p := range m.FilesRemoved {
		removed[p] = true
		if _, err := v.fs.Stat(p); err == nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: still exists after removal", p))
		}
	}

	check := func(p string, structured bool) {
		if removed[p] {
			return
		}
		current, err := util.ReadFile(v.fs, p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				if _, had := v.original(in.Baseline, p); had {
					res.Errors = append(res.Errors, fmt.Sprintf("%s: missing after rewrite", p))
				}
				return
			}
			res.Errors = append(res.Errors, fmt.Sprintf("%s: cannot read back: %v", p, err))
			return
		}
		before, _ := v.original(in.Baseline, p)

		res.Errors = append(res.Errors, v.removalErrors(p, structured, before, current, m.SignaturesFor(p))...)
		res.Errors = append(res.Errors, v.livenessErrors(p, before, current)...)
	}
	for _, p := range in.Structured {
		check(p, true)
	}
	for _, p := range in.Lines {
		check(p, false)
	}

	if len(m.Changes) == 0 && len(m.FilesRemoved) == 0 {
		res.Warnings = append(res.Warnings, NothingToStrip)
	}
	for _, d := range m.PatternsNotFound {
		res.Warnings = append(res.Warnings, "pattern not found: "+d)
	}

	res.Valid = len(res.Errors) == 0
	logger.Debug().
		Bool("valid", res.Valid).
		Int("errors", len(res.Errors)).
		Int("warnings", len(res.Warnings)).
		Msg("validation finished")
	return res
}

func (v *Validator) original(b Baseline, p string) ([]byte, bool) {
	if b == nil {
		return nil, false
	}
	return b.Original(p)
}

// removalErrors fails a signature whose text occurs more often than the
// baseline count minus the removals recorded for it.
func (v *Validator) removalErrors(p string, structured bool, before, current []byte, sigs []manifest.Signature) []string {
	type key struct {
		kind pattern.Kind
		text string
	}
	want := map[key]int{}
	var order []key
	for _, s := range sigs {
		k := key{s.Kind, s.Text}
		if _, ok := want[k]; !ok {
			order = append(order, k)
		}
		want[k]++
	}

	var errs []string
	for _, k := range order {
		var beforeN, afterN int
		if structured {
			beforeN, afterN = jsonOccurrences(before, k.text), jsonOccurrences(current, k.text)
		} else {
			beforeN, afterN = lineOccurrences(before, k.kind, k.text), lineOccurrences(current, k.kind, k.text)
		}
		if afterN > beforeN-want[k] {
			errs = append(errs, fmt.Sprintf("%s: %s %q still present after rewrite", p, k.kind, k.text))
		}
	}
	return errs
}

func (v *Validator) livenessErrors(p string, before, current []byte) []string {
	var errs []string
	slashed := filepath.ToSlash(p)
	for _, mk := range v.markers {
		if !mk.AppliesTo(slashed) {
			continue
		}
		// only markers that held before the rewrite are enforced
		if held, err := mk.Holds(before); before == nil || err != nil || !held {
			continue
		}
		ok, err := mk.Holds(current)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: checking %s: %v", p, mk.Description, err))
			continue
		}
		if !ok {
			errs = append(errs, fmt.Sprintf("%s: %s missing after rewrite", p, mk.Description))
		}
	}
	return errs
}

// jsonOccurrences counts text as an object key or array string element.
func jsonOccurrences(content []byte, text string) int {
	if content == nil {
		return 0
	}
	root, err := hujson.Parse(content)
	if err != nil {
		return 0
	}
	n := 0
	var walk func(val hujson.ValueTrimmed)
	walk = func(val hujson.ValueTrimmed) {
		switch node := val.(type) {
		case *hujson.Object:
			for _, mem := range node.Members {
				if literalString(mem.Name.Value) == text {
					n++
				}
				walk(mem.Value.Value)
			}
		case *hujson.Array:
			for _, el := range node.Elements {
				if lit, ok := el.Value.(hujson.Literal); ok && lit.Kind() == '"' && literalString(lit) == text {
					n++
				}
				walk(el.Value)
			}
		}
	}
	walk(root.Value)
	return n
}

func literalString(v hujson.ValueTrimmed) string {
	lit, ok := v.(hujson.Literal)
	if !ok || lit.Kind() != '"' {
		return ""
	}
	s, err := unquote(lit)
	if err != nil {
		return ""
	}
	return s
}

func unquote(lit hujson.Literal) (string, error) {
	var s string
	err := json.Unmarshal(lit, &s)
	return s, err
}

// lineOccurrences counts section markers by whole line and other kinds by
// whitespace separated token, skipping comment lines.
func lineOccurrences(content []byte, kind pattern.Kind, text string) int {
	n := 0
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if kind == pattern.SectionMarker {
			if trimmed == text {
				n++
			}
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		for _, tok := range strings.Fields(trimmed) {
			if bareToken(tok) == bareToken(text) {
				n++
			}
		}
	}
	return n
}

// bareToken drops a line continuation glued to the end of a token.
func bareToken(tok string) string {
	if len(tok) > 1 {
		return strings.TrimSuffix(tok, `\`)
	}
	return tok
}
