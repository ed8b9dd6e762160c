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
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/shlex"

	"github.com/walteh/devcontainer-sync/pkg/manifest"
	"github.com/walteh/devcontainer-sync/pkg/pattern"
)

var _ Rewriter = (*Lines)(nil)

// package names only count inside an install statement
var installStatement = regexp.MustCompile(`(?i)\b(apt-get|apt|apk|yum|dnf|microdnf)\s+(-\S+\s+)*(install|add)\b`)

var installWords = map[string]bool{
	"apt-get": true, "apt": true, "apk": true, "yum": true, "dnf": true, "microdnf": true,
	"sudo": true, "run": true,
}

// 📜 Lines strips Dockerfiles and shell scripts line by line
type Lines struct{}

// 🏭 NewLines creates a line rewriter
func NewLines() *Lines {
	return &Lines{}
}

func (l *Lines) Kinds() []pattern.Kind {
	return []pattern.Kind{pattern.Package, pattern.Capability, pattern.ScriptName, pattern.SectionMarker}
}

// ✂️ Strip drops marked sections, removes package and capability tokens and
// drops lines referencing feature scripts. Line endings are kept.
func (l *Lines) Strip(path string, content []byte, rules []pattern.Rule) ([]byte, *manifest.Manifest, error) {
	m := manifest.New()
	m.Evaluate(rules...)

	doc := splitLines(content)
	s := &lineStripper{path: path, m: m}
	for _, r := range rules {
		switch r.Kind {
		case pattern.SectionMarker:
			s.sections = append(s.sections, r)
		case pattern.Package:
			s.packages = append(s.packages, r)
		case pattern.Capability:
			s.caps = append(s.caps, r)
		case pattern.ScriptName:
			s.scripts = append(s.scripts, r)
		}
	}

	for i, line := range doc.lines {
		s.line(i+1, line)
	}
	s.closeBlock()

	if !s.changed {
		return content, m, nil
	}
	m.MarkModified(path)
	return doc.join(s.out), m, nil
}

type section struct {
	start  int
	marker string
	lines  int
}

type lineStripper struct {
	path     string
	m        *manifest.Manifest
	sections []pattern.Rule
	packages []pattern.Rule
	caps     []pattern.Rule
	scripts  []pattern.Rule

	out     []string
	changed bool
	block   *section

	continued bool
	inInstall bool
}

func (s *lineStripper) line(n int, line string) {
	trimmed := strings.TrimSpace(line)

	if matched := matchRules(s.sections, trimmed); len(matched) > 0 {
		s.closeBlock()
		s.m.Hit(matched...)
		s.m.Sign(s.path, pattern.SectionMarker, trimmed)
		s.block = &section{start: n, marker: trimmed}
		s.changed = true
		s.continued = false
		s.inInstall = false
		return
	}

	if s.block != nil {
		if trimmed == "" {
			s.closeBlock()
			if len(s.out) == 0 || strings.TrimSpace(s.out[len(s.out)-1]) == "" {
				return
			}
			s.out = append(s.out, line)
			return
		}
		s.block.lines++
		if !strings.HasPrefix(trimmed, "#") {
			s.hitTokens(line)
		}
		return
	}

	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		s.out = append(s.out, line)
		return
	}

	s.statement(n, line)
}

func (s *lineStripper) statement(n int, line string) {
	starts := !s.continued
	if starts {
		s.inInstall = false
	}
	if installStatement.MatchString(line) {
		s.inInstall = true
	}
	ends := continues(line)
	defer s.advance(ends)

	if matched, refs := s.scriptRefs(line); len(matched) > 0 {
		s.hitTokens(line)
		s.m.Hit(matched...)
		for _, ref := range refs {
			s.m.Sign(s.path, pattern.ScriptName, ref)
		}
		s.m.Change(pattern.ScriptName, 1, fmt.Sprintf("%s:%d: removed line referencing %s", s.path, n, strings.Join(refs, ", ")))
		s.drop(ends)
		return
	}

	segs, tail := segments(line)
	var (
		kept              []segment
		removed           []string
		pkgs, capsRemoved int
	)
	for _, sg := range segs {
		cand := strings.Trim(sg.token, `"'`)
		if matched := matchRules(s.caps, cand); len(matched) > 0 {
			s.m.Hit(matched...)
			s.m.Sign(s.path, pattern.Capability, sg.token)
			removed = append(removed, sg.token)
			capsRemoved++
			continue
		}
		if s.inInstall {
			if matched := matchRules(s.packages, cand); len(matched) > 0 {
				s.m.Hit(matched...)
				s.m.Sign(s.path, pattern.Package, sg.token)
				removed = append(removed, sg.token)
				pkgs++
				continue
			}
		}
		kept = append(kept, sg)
	}
	if len(removed) == 0 {
		s.out = append(s.out, line)
		return
	}

	rebuilt := rebuild(segs, kept, tail)
	text := fmt.Sprintf("%s:%d: removed %s", s.path, n, strings.Join(removed, ", "))
	if emptyStatement(rebuilt, starts, ends) {
		text += " (line dropped)"
		s.drop(ends)
	} else {
		s.out = append(s.out, rebuilt)
		s.changed = true
	}

	if pkgs > 0 {
		s.m.Change(pattern.Package, pkgs, text)
		s.m.Count(pattern.Capability, capsRemoved)
	} else {
		s.m.Change(pattern.Capability, capsRemoved, text)
	}
}

func (s *lineStripper) advance(ends bool) {
	s.continued = ends
	if !ends {
		s.inInstall = false
	}
}

// drop discards the current line. If it ended a continued statement, the
// statement now ends on the previous kept line.
func (s *lineStripper) drop(ends bool) {
	s.changed = true
	if ends || !s.continued {
		return
	}
	for i := len(s.out) - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(s.out[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if continues(s.out[i]) {
			body := strings.TrimRightFunc(s.out[i], unicode.IsSpace)
			s.out[i] = strings.TrimRightFunc(strings.TrimSuffix(body, `\`), unicode.IsSpace)
		}
		return
	}
}

func (s *lineStripper) closeBlock() {
	if s.block == nil {
		return
	}
	b := s.block
	s.block = nil
	s.m.Change(pattern.SectionMarker, 1, fmt.Sprintf("%s:%d: removed section %q (%d lines)", s.path, b.start, b.marker, b.lines+1))
}

// hitTokens marks rules found in a line that is removed anyway.
func (s *lineStripper) hitTokens(line string) {
	for _, tok := range strings.Fields(line) {
		cand := strings.Trim(bareToken(tok), `"'`)
		s.m.Hit(matchRules(s.caps, cand)...)
		s.m.Hit(matchRules(s.packages, cand)...)
		s.m.Hit(matchRules(s.scripts, path.Base(cand))...)
	}
}

func (s *lineStripper) scriptRefs(line string) ([]pattern.Rule, []string) {
	var (
		matched []pattern.Rule
		refs    []string
	)
	seen := map[string]bool{}
	for _, tok := range strings.Fields(line) {
		cand := strings.TrimRight(strings.Trim(bareToken(tok), `"'`), ";")
		hits := matchRules(s.scripts, path.Base(cand))
		if len(hits) == 0 {
			continue
		}
		for _, h := range hits {
			if !seen[h.Description] {
				seen[h.Description] = true
				matched = append(matched, h)
			}
		}
		refs = append(refs, bareToken(tok))
	}
	return matched, refs
}

func matchRules(rules []pattern.Rule, text string) []pattern.Rule {
	var out []pattern.Rule
	for _, r := range rules {
		if r.Matches(text) {
			out = append(out, r)
		}
	}
	return out
}

type segment struct {
	space string
	token string
}

// segments splits a line into tokens, each with the whitespace before it.
func segments(line string) ([]segment, string) {
	var (
		segs []segment
		i    int
	)
	for i < len(line) {
		start := i
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i == len(line) {
			return segs, line[start:]
		}
		tokStart := i
		for i < len(line) && line[i] != ' ' && line[i] != '\t' {
			i++
		}
		tok := line[tokStart:i]
		if bare := bareToken(tok); bare != tok {
			// "iptables\" is the token iptables followed by a continuation
			segs = append(segs,
				segment{space: line[start:tokStart], token: bare},
				segment{token: `\`})
			continue
		}
		segs = append(segs, segment{space: line[start:tokStart], token: tok})
	}
	return segs, ""
}

// bareToken drops a line continuation glued to the end of a token.
func bareToken(tok string) string {
	if len(tok) > 1 {
		return strings.TrimSuffix(tok, `\`)
	}
	return tok
}

// rebuild joins the kept segments. The first kept token takes the original
// indentation.
func rebuild(all, kept []segment, tail string) string {
	var b strings.Builder
	for i, sg := range kept {
		if i == 0 && len(all) > 0 {
			b.WriteString(all[0].space)
		} else {
			b.WriteString(sg.space)
		}
		b.WriteString(sg.token)
	}
	if len(kept) > 0 {
		b.WriteString(tail)
	}
	return b.String()
}

func continues(line string) bool {
	return strings.HasSuffix(strings.TrimRightFunc(line, unicode.IsSpace), `\`)
}

// emptyStatement reports whether a rewritten line has nothing left to run.
func emptyStatement(line string, starts, ends bool) bool {
	body := strings.TrimSpace(line)
	body = strings.TrimSpace(strings.TrimSuffix(body, `\`))
	if body == "" {
		return true
	}
	if !starts || ends {
		return false
	}
	words, err := shlex.Split(body)
	if err != nil {
		return false
	}
	verb := false
	for _, w := range words {
		lw := strings.ToLower(w)
		switch {
		case strings.HasPrefix(w, "-"), installWords[lw]:
		case lw == "install" || lw == "add":
			verb = true
		default:
			return false
		}
	}
	return verb
}

type lineDoc struct {
	lines    []string
	eol      string
	trailing bool
}

func splitLines(content []byte) lineDoc {
	text := string(content)
	doc := lineDoc{eol: "\n"}
	if strings.Contains(text, "\r\n") {
		doc.eol = "\r\n"
	}
	if strings.HasSuffix(text, "\n") {
		doc.trailing = true
		text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
	}
	doc.lines = strings.Split(text, "\n")
	for i := range doc.lines {
		doc.lines[i] = strings.TrimSuffix(doc.lines[i], "\r")
	}
	return doc
}

func (d lineDoc) join(lines []string) []byte {
	out := strings.Join(lines, d.eol)
	if d.trailing && len(lines) > 0 {
		out += d.eol
	}
	return []byte(out)
}
