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
	"gitlab.com/tozd/go/errors"
)

// 📚 Catalog is a versioned, read-only set of rules and liveness markers
type Catalog struct {
	version string
	rules   map[Kind][]Rule
	markers []LivenessMarker
}

// 🏭 NewCatalog builds a catalog. Rule descriptions must be unique since
// they identify a rule in manifests.
func NewCatalog(version string, rules []Rule, markers []LivenessMarker) (*Catalog, error) {
	if version == "" {
		return nil, errors.Errorf("catalog version is required")
	}
	seen := map[string]bool{}
	byKind := map[Kind][]Rule{}
	for _, r := range rules {
		if r.Matcher == nil {
			return nil, errors.Errorf("rule %q has no matcher", r.Description)
		}
		if seen[r.Description] {
			return nil, errors.Errorf("duplicate rule %q", r.Description)
		}
		seen[r.Description] = true
		byKind[r.Kind] = append(byKind[r.Kind], r)
	}
	for _, m := range markers {
		if m.Regexp == nil && m.JSONPath == nil {
			return nil, errors.Errorf("marker %q has no check", m.Description)
		}
	}
	return &Catalog{
		version: version,
		rules:   byKind,
		markers: append([]LivenessMarker(nil), markers...),
	}, nil
}

// Version returns the catalog version string.
func (c *Catalog) Version() string {
	return c.version
}

// 🔍 RulesFor returns a copy of the rules of the given kinds, in kind order
// then declaration order. Unknown or empty kinds contribute nothing.
func (c *Catalog) RulesFor(kinds ...Kind) []Rule {
	out := []Rule{}
	for _, k := range kinds {
		out = append(out, c.rules[k]...)
	}
	return out
}

// Rules returns every rule in the catalog.
func (c *Catalog) Rules() []Rule {
	return c.RulesFor(Kinds()...)
}

// Markers returns a copy of the liveness markers.
func (c *Catalog) Markers() []LivenessMarker {
	return append([]LivenessMarker(nil), c.markers...)
}

// Without returns a catalog with the named rules left out.
func (c *Catalog) Without(descriptions ...string) *Catalog {
	drop := map[string]bool{}
	for _, d := range descriptions {
		drop[d] = true
	}
	next := &Catalog{version: c.version, rules: map[Kind][]Rule{}, markers: c.Markers()}
	for k, rules := range c.rules {
		for _, r := range rules {
			if !drop[r.Description] {
				next.rules[k] = append(next.rules[k], r)
			}
		}
	}
	return next
}
