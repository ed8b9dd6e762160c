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

package validate

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/devcontainer-sync/pkg/manifest"
	"github.com/walteh/devcontainer-sync/pkg/pattern"
	"github.com/walteh/devcontainer-sync/pkg/testutils"
)

type baseline map[string]string

func (b baseline) Original(path string) ([]byte, bool) {
	s, ok := b[path]
	if !ok {
		return nil, false
	}
	return []byte(s), true
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		before       baseline
		after        map[string]string
		manifest     func() *manifest.Manifest
		wantValid    bool
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:   "clean_rewrite",
			before: baseline{"Dockerfile": "FROM debian\nRUN apt-get install -y git iptables\n"},
			after:  map[string]string{"Dockerfile": "FROM debian\nRUN apt-get install -y git\n"},
			manifest: func() *manifest.Manifest {
				m := manifest.New()
				m.MarkModified("Dockerfile")
				m.Change(pattern.Package, 1, "Dockerfile:2: removed iptables")
				m.Sign("Dockerfile", pattern.Package, "iptables")
				return m
			},
			wantValid:    true,
			wantErrors:   []string{},
			wantWarnings: []string{},
		},
		{
			name:   "change_recorded_but_not_applied",
			before: baseline{"Dockerfile": "FROM debian\nRUN apt-get install -y git iptables\n"},
			after:  map[string]string{"Dockerfile": "FROM debian\nRUN apt-get install -y git iptables\n"},
			manifest: func() *manifest.Manifest {
				m := manifest.New()
				m.Change(pattern.Package, 1, "Dockerfile:2: removed iptables")
				m.Sign("Dockerfile", pattern.Package, "iptables")
				return m
			},
			wantValid:    false,
			wantErrors:   []string{`Dockerfile: package "iptables" still present after rewrite`},
			wantWarnings: []string{},
		},
		{
			name:   "unrelated_occurrence_is_tolerated",
			before: baseline{"Dockerfile": "FROM debian\nRUN iptables --version\nRUN apt-get install -y iptables\n"},
			after:  map[string]string{"Dockerfile": "FROM debian\nRUN iptables --version\n"},
			manifest: func() *manifest.Manifest {
				m := manifest.New()
				m.Change(pattern.Package, 1, "Dockerfile:3: removed iptables (line dropped)")
				m.Sign("Dockerfile", pattern.Package, "iptables")
				return m
			},
			wantValid:    true,
			wantErrors:   []string{},
			wantWarnings: []string{},
		},
		{
			name:   "liveness_marker_lost",
			before: baseline{"Dockerfile": "FROM debian\nRUN apt-get install -y iptables\n"},
			after:  map[string]string{"Dockerfile": "RUN true\n"},
			manifest: func() *manifest.Manifest {
				m := manifest.New()
				m.Change(pattern.Package, 1, "Dockerfile:2: removed iptables (line dropped)")
				return m
			},
			wantValid:    false,
			wantErrors:   []string{"Dockerfile: base image directive missing after rewrite"},
			wantWarnings: []string{},
		},
		{
			name:   "marker_absent_in_baseline_is_not_enforced",
			before: baseline{"Dockerfile.partial": "RUN apt-get install -y iptables\n"},
			after:  map[string]string{"Dockerfile.partial": "RUN true\n"},
			manifest: func() *manifest.Manifest {
				m := manifest.New()
				m.Change(pattern.Package, 1, "Dockerfile.partial:1: removed iptables (line dropped)")
				return m
			},
			wantValid:    true,
			wantErrors:   []string{},
			wantWarnings: []string{},
		},
		{
			name:   "json_key_still_present",
			before: baseline{"devcontainer.json": `{"name": "x", "image": "y", "waitFor": "postStartCommand"}`},
			after:  map[string]string{"devcontainer.json": `{"name": "x", "image": "y", "waitFor": "postStartCommand"}`},
			manifest: func() *manifest.Manifest {
				m := manifest.New()
				m.Change(pattern.JSONKey, 1, "devcontainer.json: removed waitFor")
				m.Sign("devcontainer.json", pattern.JSONKey, "waitFor")
				return m
			},
			wantValid:    false,
			wantErrors:   []string{`devcontainer.json: json_key "waitFor" still present after rewrite`},
			wantWarnings: []string{},
		},
		{
			name:   "json_name_lost",
			before: baseline{"devcontainer.json": `{"name": "x", "image": "y", "waitFor": "postStartCommand"}`},
			after:  map[string]string{"devcontainer.json": `{"image": "y"}`},
			manifest: func() *manifest.Manifest {
				m := manifest.New()
				m.Change(pattern.JSONKey, 1, "devcontainer.json: removed waitFor")
				m.Sign("devcontainer.json", pattern.JSONKey, "waitFor")
				return m
			},
			wantValid:    false,
			wantErrors:   []string{"devcontainer.json: container name missing after rewrite"},
			wantWarnings: []string{},
		},
		{
			name:   "nothing_to_strip",
			before: baseline{"Dockerfile": "FROM debian\n"},
			after:  map[string]string{"Dockerfile": "FROM debian\n"},
			manifest: func() *manifest.Manifest {
				m := manifest.New()
				m.Evaluate(pattern.MustRule(pattern.Package, "^iptables$", "iptables package"))
				return m
			},
			wantValid:    true,
			wantErrors:   []string{},
			wantWarnings: []string{NothingToStrip, "pattern not found: iptables package"},
		},
		{
			name:   "removed_file_still_exists",
			before: baseline{"init-firewall.sh": "iptables -F\n"},
			after:  map[string]string{"init-firewall.sh": "iptables -F\n"},
			manifest: func() *manifest.Manifest {
				m := manifest.New()
				m.MarkRemoved("init-firewall.sh")
				return m
			},
			wantValid:    false,
			wantErrors:   []string{"init-firewall.sh: still exists after removal"},
			wantWarnings: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutils.Context(t)
			fs := memfs.New()
			testutils.WriteFiles(t, fs, tt.after)

			var structured, lines []string
			for p := range tt.before {
				if p == "devcontainer.json" {
					structured = append(structured, p)
				} else {
					lines = append(lines, p)
				}
			}

			res := New(fs, pattern.DefaultFirewall()).Validate(ctx, Input{
				Structured: structured,
				Lines:      lines,
				Manifest:   tt.manifest(),
				Baseline:   tt.before,
			})

			assert.Equal(t, tt.wantValid, res.Valid)
			assert.Equal(t, tt.wantErrors, res.Errors)
			assert.Equal(t, tt.wantWarnings, res.Warnings)
		})
	}
}

func TestValidateWithoutBaseline(t *testing.T) {
	ctx := testutils.Context(t)
	fs := memfs.New()
	testutils.WriteFiles(t, fs, map[string]string{"Dockerfile": "RUN true\n"})

	m := manifest.New()
	m.Change(pattern.Package, 1, "removed")
	res := New(fs, pattern.DefaultFirewall()).Validate(ctx, Input{Lines: []string{"Dockerfile"}, Manifest: m})
	require.True(t, res.Valid)
}

func TestLineOccurrences(t *testing.T) {
	content := []byte("FROM debian\nRUN apt-get install -y curl iptables\\\n  ipset \\\n  && echo ok\n# iptables\n")

	tests := []struct {
		name string
		kind pattern.Kind
		text string
		want int
	}{
		{name: "glued_continuation", kind: pattern.Package, text: "iptables", want: 1},
		{name: "spaced_continuation", kind: pattern.Package, text: "ipset", want: 1},
		{name: "comment_ignored", kind: pattern.Package, text: "aggregate", want: 0},
		{name: "lone_backslash_not_a_token_match", kind: pattern.Package, text: "curl", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lineOccurrences(content, tt.kind, tt.text))
		})
	}
}
