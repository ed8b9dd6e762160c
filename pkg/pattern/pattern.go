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

// Package pattern holds the rules that describe a removable feature.
package pattern

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/tailscale/hujson"
	"gitlab.com/tozd/go/errors"
)

// 🏷️ Kind tags what a rule matches against
type Kind int

const (
	Package Kind = iota + 1
	Capability
	ScriptName
	JSONKey
	SectionMarker
)

var kindNames = map[Kind]string{
	Package:       "package",
	Capability:    "capability",
	ScriptName:    "script_name",
	JSONKey:       "json_key",
	SectionMarker: "section_marker",
}

// Kinds lists every kind in a stable order.
func Kinds() []Kind {
	return []Kind{Package, Capability, ScriptName, JSONKey, SectionMarker}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// 🔍 ParseKind turns a catalog file name into a Kind
func ParseKind(s string) (Kind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for k, name := range kindNames {
		if name == norm {
			return k, nil
		}
	}
	return 0, errors.Errorf("unknown rule kind %q", s)
}

// 📏 Rule is one detection pattern. Rules never depend on each other.
type Rule struct {
	Kind        Kind
	Matcher     *regexp.Regexp
	Description string
	// Requires names a JSON member that must be removed from the same object
	// before this rule applies. Empty for independent rules.
	Requires string
}

// 🏭 NewRule compiles expr into a rule
func NewRule(kind Kind, expr, description string) (Rule, error) {
	if _, ok := kindNames[kind]; !ok {
		return Rule{}, errors.Errorf("rule %q: invalid kind %d", description, kind)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return Rule{}, errors.Errorf("compiling rule %q: %w", description, err)
	}
	if description == "" {
		description = expr
	}
	return Rule{Kind: kind, Matcher: re, Description: description}, nil
}

// MustRule is NewRule for package level tables.
func MustRule(kind Kind, expr, description string) Rule {
	r, err := NewRule(kind, expr, description)
	if err != nil {
		panic(err)
	}
	return r
}

// Matches reports whether the rule matches text.
func (r Rule) Matches(text string) bool {
	return r.Matcher != nil && r.Matcher.MatchString(text)
}

// RequiresMember returns a copy of r that only applies once key was removed
// from the same object.
func (r Rule) RequiresMember(key string) Rule {
	r.Requires = key
	return r
}

func (r Rule) String() string {
	return r.Description
}

// 💓 LivenessMarker is a property that must survive a rewrite of any file
// matched by Files. Exactly one of Regexp or JSONPath is set.
type LivenessMarker struct {
	Description string
	Files       string
	Regexp      *regexp.Regexp
	JSONPath    jp.Expr
}

// 🏭 NewRegexpMarker builds a marker checked against raw file content
func NewRegexpMarker(description, files, expr string) (LivenessMarker, error) {
	if !doublestar.ValidatePattern(files) {
		return LivenessMarker{}, errors.Errorf("marker %q: invalid file glob %q", description, files)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return LivenessMarker{}, errors.Errorf("compiling marker %q: %w", description, err)
	}
	return LivenessMarker{Description: description, Files: files, Regexp: re}, nil
}

// 🏭 NewJSONPathMarker builds a marker that holds when path selects at least one value
func NewJSONPathMarker(description, files, path string) (LivenessMarker, error) {
	if !doublestar.ValidatePattern(files) {
		return LivenessMarker{}, errors.Errorf("marker %q: invalid file glob %q", description, files)
	}
	x, err := jp.ParseString(path)
	if err != nil {
		return LivenessMarker{}, errors.Errorf("parsing marker %q json path: %w", description, err)
	}
	return LivenessMarker{Description: description, Files: files, JSONPath: x}, nil
}

// AppliesTo reports whether the marker scopes path. Paths use forward slashes.
func (m LivenessMarker) AppliesTo(path string) bool {
	ok, err := doublestar.Match(m.Files, path)
	return err == nil && ok
}

// 💓 Holds evaluates the marker against content
func (m LivenessMarker) Holds(content []byte) (bool, error) {
	switch {
	case m.Regexp != nil:
		return m.Regexp.Match(content), nil
	case m.JSONPath != nil:
		std, err := hujson.Standardize(append([]byte(nil), content...))
		if err != nil {
			return false, errors.Errorf("standardizing json: %w", err)
		}
		data, err := oj.Parse(std)
		if err != nil {
			return false, errors.Errorf("parsing json: %w", err)
		}
		return len(m.JSONPath.Get(data)) > 0, nil
	default:
		return false, errors.Errorf("marker %q has no check", m.Description)
	}
}
