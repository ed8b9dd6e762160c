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

// Package manifest records what a customization changed.
package manifest

import (
	"sort"

	"github.com/walteh/devcontainer-sync/pkg/pattern"
)

// ✍️ Signature is the literal text a rewrite removed from a file. The
// validator checks that it is really gone.
type Signature struct {
	Path string
	Kind pattern.Kind
	Text string
}

// 📋 Manifest describes the edits of one rewrite, or of a whole run once merged.
// Rewriters build a fragment and hand it over; it is not mutated afterwards.
type Manifest struct {
	FilesModified    []string
	FilesRemoved     []string
	Changes          []string
	PatternsNotFound []string
	KindCounts       map[pattern.Kind]int
	Signatures       []Signature

	evaluated []string
	hits      map[string]int
}

// 🏭 New returns an empty manifest
func New() *Manifest {
	return &Manifest{
		FilesModified:    []string{},
		FilesRemoved:     []string{},
		Changes:          []string{},
		PatternsNotFound: []string{},
		KindCounts:       map[pattern.Kind]int{},
		Signatures:       []Signature{},
		hits:             map[string]int{},
	}
}

// Evaluate records that rules were run against some content.
func (m *Manifest) Evaluate(rules ...pattern.Rule) {
	for _, r := range rules {
		if _, ok := m.hits[r.Description]; ok {
			continue
		}
		m.hits[r.Description] = 0
		m.evaluated = append(m.evaluated, r.Description)
	}
	m.refresh()
}

// Hit marks a rule as found. It does not imply a change.
func (m *Manifest) Hit(rules ...pattern.Rule) {
	for _, r := range rules {
		if _, ok := m.hits[r.Description]; !ok {
			m.evaluated = append(m.evaluated, r.Description)
		}
		m.hits[r.Description]++
	}
	m.refresh()
}

// Change appends a human readable change and bumps the kind count.
func (m *Manifest) Change(kind pattern.Kind, count int, text string) {
	m.Changes = append(m.Changes, text)
	m.Count(kind, count)
}

// Count bumps a kind count without adding a change line.
func (m *Manifest) Count(kind pattern.Kind, n int) {
	if n == 0 {
		return
	}
	m.KindCounts[kind] += n
}

// Sign records removed text for the validator.
func (m *Manifest) Sign(path string, kind pattern.Kind, text string) {
	m.Signatures = append(m.Signatures, Signature{Path: path, Kind: kind, Text: text})
}

// MarkModified adds path to FilesModified.
func (m *Manifest) MarkModified(path string) {
	m.FilesModified = addSorted(m.FilesModified, path)
}

// MarkRemoved adds path to FilesRemoved.
func (m *Manifest) MarkRemoved(path string) {
	m.FilesRemoved = addSorted(m.FilesRemoved, path)
}

// Found reports whether the rule with the given description matched anywhere.
func (m *Manifest) Found(description string) bool {
	return m.hits[description] > 0
}

// Empty reports whether nothing was changed or removed.
func (m *Manifest) Empty() bool {
	return len(m.Changes) == 0 && len(m.FilesRemoved) == 0 && len(m.FilesModified) == 0
}

// SignaturesFor returns the signatures recorded against path.
func (m *Manifest) SignaturesFor(path string) []Signature {
	out := []Signature{}
	for _, s := range m.Signatures {
		if s.Path == path {
			out = append(out, s)
		}
	}
	return out
}

// 🔀 Merge combines fragments. A rule lands in PatternsNotFound only when no
// fragment matched it.
func Merge(fragments ...*Manifest) *Manifest {
	out := New()
	for _, f := range fragments {
		if f == nil {
			continue
		}
		for _, p := range f.FilesModified {
			out.MarkModified(p)
		}
		for _, p := range f.FilesRemoved {
			out.MarkRemoved(p)
		}
		out.Changes = append(out.Changes, f.Changes...)
		out.Signatures = append(out.Signatures, f.Signatures...)
		for k, n := range f.KindCounts {
			out.KindCounts[k] += n
		}
		for _, d := range f.evaluated {
			if _, ok := out.hits[d]; !ok {
				out.evaluated = append(out.evaluated, d)
			}
			out.hits[d] += f.hits[d]
		}
	}
	out.refresh()
	return out
}

func (m *Manifest) refresh() {
	m.PatternsNotFound = []string{}
	for _, d := range m.evaluated {
		if m.hits[d] == 0 {
			m.PatternsNotFound = append(m.PatternsNotFound, d)
		}
	}
}

func addSorted(set []string, v string) []string {
	i := sort.SearchStrings(set, v)
	if i < len(set) && set[i] == v {
		return set
	}
	set = append(set, "")
	copy(set[i+1:], set[i:])
	set[i] = v
	return set
}
