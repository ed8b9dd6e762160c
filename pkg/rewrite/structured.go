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

package rewrite

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/walteh/devcontainer-sync/pkg/manifest"
	"github.com/walteh/devcontainer-sync/pkg/pattern"
)

var _ Rewriter = (*Structured)(nil)

// 🧩 Structured strips members and array elements from JSON with comments
// and trailing commas (devcontainer.json). Bytes outside removed nodes are
// kept as they were.
type Structured struct{}

// 🏭 NewStructured creates a structured rewriter
func NewStructured() *Structured {
	return &Structured{}
}

func (s *Structured) Kinds() []pattern.Kind {
	return []pattern.Kind{pattern.JSONKey}
}

// ✂️ Strip removes every object member whose "key: value" text (or bare key
// for objects and arrays) matches a rule, and every matching array element.
func (s *Structured) Strip(path string, content []byte, rules []pattern.Rule) ([]byte, *manifest.Manifest, error) {
	m := manifest.New()
	m.Evaluate(rules...)

	root, err := hujson.Parse(content)
	if err != nil {
		return nil, nil, &ParseError{Path: path, Err: err}
	}

	w := &jsonWalker{path: path, rules: rules, m: m}
	w.walk(&root, "")
	if !w.changed {
		return content, m, nil
	}

	m.MarkModified(path)
	return root.Pack(), m, nil
}

type jsonWalker struct {
	path    string
	rules   []pattern.Rule
	m       *manifest.Manifest
	changed bool
}

func (w *jsonWalker) walk(v *hujson.Value, where string) {
	switch node := v.Value.(type) {
	case *hujson.Object:
		w.object(node, where)
	case *hujson.Array:
		w.array(node, where)
	}
}

func (w *jsonWalker) object(obj *hujson.Object, where string) {
	members := obj.Members

	// rules that require a sibling to go run once the independent ones are done
	matches := make([][]pattern.Rule, len(members))
	removedKeys := map[string]bool{}
	for i, mem := range members {
		key, text := memberText(mem)
		if matches[i] = w.match(text, nil); len(matches[i]) > 0 {
			removedKeys[key] = true
		}
	}
	for i, mem := range members {
		if len(matches[i]) == 0 {
			_, text := memberText(mem)
			matches[i] = w.match(text, removedKeys)
		}
	}

	kept := make([]hujson.ObjectMember, 0, len(members))
	lastRemoved := false
	for i, mem := range members {
		key, _ := memberText(mem)
		loc := joinLocation(where, key)

		if matched := matches[i]; len(matched) > 0 {
			w.m.Hit(matched...)
			w.m.Change(pattern.JSONKey, 1, fmt.Sprintf("%s: removed %s (%s)", w.path, loc, describe(matched)))
			w.m.Sign(w.path, pattern.JSONKey, key)
			w.changed = true
			lastRemoved = true
			continue
		}
		lastRemoved = false

		w.walk(&mem.Value, loc)
		kept = append(kept, mem)
	}

	if len(kept) == len(members) {
		return
	}
	if lastRemoved && len(kept) > 0 {
		// keep the whitespace that closed the object
		kept[len(kept)-1].Value.AfterExtra = members[len(members)-1].Value.AfterExtra
	}
	obj.Members = kept
}

// memberText is "key: value" for scalar members and the bare key otherwise.
func memberText(mem hujson.ObjectMember) (key, text string) {
	key = literalText(mem.Name.Value)
	text = key
	if lit, ok := mem.Value.Value.(hujson.Literal); ok {
		text = key + ": " + literalText(lit)
	}
	return key, text
}

func (w *jsonWalker) array(arr *hujson.Array, where string) {
	elems := arr.Elements
	kept := make([]hujson.Value, 0, len(elems))
	lastRemoved := false
	for i, el := range elems {
		if lit, ok := el.Value.(hujson.Literal); ok {
			text := literalText(lit)
			if matched := w.match(text, nil); len(matched) > 0 {
				w.m.Hit(matched...)
				w.m.Change(pattern.JSONKey, 1, fmt.Sprintf("%s: removed %q from %s (%s)", w.path, text, where, describe(matched)))
				w.m.Sign(w.path, pattern.JSONKey, text)
				w.changed = true
				lastRemoved = true
				continue
			}
		}
		lastRemoved = false

		w.walk(&el, fmt.Sprintf("%s[%d]", where, i))
		kept = append(kept, el)
	}

	if len(kept) == len(elems) {
		return
	}
	if lastRemoved && len(kept) > 0 {
		kept[len(kept)-1].AfterExtra = elems[len(elems)-1].AfterExtra
	}
	arr.Elements = kept
}

// match returns the independent rules matching text, or with removed set,
// the dependent rules whose required member is in it.
func (w *jsonWalker) match(text string, removed map[string]bool) []pattern.Rule {
	var out []pattern.Rule
	for _, r := range w.rules {
		if removed == nil && r.Requires != "" {
			continue
		}
		if removed != nil && (r.Requires == "" || !removed[r.Requires]) {
			continue
		}
		if r.Matches(text) {
			out = append(out, r)
		}
	}
	return out
}

// literalText returns strings unquoted and other scalars as written.
func literalText(v hujson.ValueTrimmed) string {
	lit, ok := v.(hujson.Literal)
	if !ok {
		return ""
	}
	if lit.Kind() == '"' {
		var s string
		if err := json.Unmarshal(lit, &s); err == nil {
			return s
		}
	}
	return string(lit)
}

func joinLocation(where, key string) string {
	if where == "" {
		return key
	}
	return where + "." + key
}

func describe(rules []pattern.Rule) string {
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Description)
	}
	return strings.Join(names, ", ")
}
