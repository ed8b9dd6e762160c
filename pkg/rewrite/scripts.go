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
	"path"
	"strings"

	"github.com/google/shlex"

	"github.com/walteh/devcontainer-sync/pkg/pattern"
)

// shell words after which the next word is a command
var commandSeparators = map[string]bool{
	"&&": true, "||": true, "|": true, ";": true, "!": true,
	"then": true, "do": true, "else": true, "sudo": true, "exec": true,
}

// 🔎 ScriptDetector decides whether a shell script exists only to serve the
// feature, in which case it is deleted rather than rewritten.
type ScriptDetector struct{}

// 🏭 NewScriptDetector creates a detector
func NewScriptDetector() *ScriptDetector {
	return &ScriptDetector{}
}

func (d *ScriptDetector) Kinds() []pattern.Kind {
	return []pattern.Kind{pattern.ScriptName, pattern.Package}
}

// IsScript reports whether p names a shell script.
func (d *ScriptDetector) IsScript(p string) bool {
	return strings.HasSuffix(p, ".sh")
}

// 🔎 Detect returns the rules that mark p as a feature script: a ScriptName
// rule matching its base name, or a Package rule matching a command it runs.
// An empty result means the script stays.
func (d *ScriptDetector) Detect(p string, content []byte, rules []pattern.Rule) []pattern.Rule {
	if !d.IsScript(p) {
		return nil
	}

	var out []pattern.Rule
	seen := map[string]bool{}
	add := func(rs ...pattern.Rule) {
		for _, r := range rs {
			if !seen[r.Description] {
				seen[r.Description] = true
				out = append(out, r)
			}
		}
	}

	var names, packages []pattern.Rule
	for _, r := range rules {
		switch r.Kind {
		case pattern.ScriptName:
			names = append(names, r)
		case pattern.Package:
			packages = append(packages, r)
		}
	}

	add(matchRules(names, path.Base(p))...)

	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		for _, cmd := range commands(trimmed) {
			add(matchRules(packages, path.Base(cmd))...)
		}
	}
	return out
}

// commands lists the words of a shell line that sit in command position.
func commands(line string) []string {
	words, err := shlex.Split(line)
	if err != nil {
		words = strings.Fields(line)
	}
	var out []string
	next := true
	for _, w := range words {
		if commandSeparators[w] {
			next = true
			continue
		}
		if next {
			if strings.Contains(w, "=") && !strings.HasPrefix(w, "-") {
				// VAR=value prefix
				continue
			}
			out = append(out, strings.TrimRight(w, ";"))
			next = strings.HasSuffix(w, ";")
			continue
		}
		if strings.HasSuffix(w, ";") {
			next = true
		}
	}
	return out
}
