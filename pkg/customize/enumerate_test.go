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

package customize

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/devcontainer-sync/pkg/manifest"
	"github.com/walteh/devcontainer-sync/pkg/testutils"
)

func TestEnumerate(t *testing.T) {
	fs := memfs.New()
	testutils.WriteFiles(t, fs, map[string]string{
		".devcontainer/devcontainer.json":        "{}",
		".devcontainer/Dockerfile":               "FROM x",
		".devcontainer/Dockerfile.dev":           "FROM y",
		".devcontainer/scripts/init-firewall.sh": "",
		".devcontainer/README.md":                "",
		"other/Dockerfile":                       "FROM z",
	})

	files, err := Enumerate(fs, ".devcontainer", DefaultGlobs)
	require.NoError(t, err)

	assert.Equal(t, []string{".devcontainer/devcontainer.json"}, files.Structured)
	assert.Equal(t, []string{
		".devcontainer/Dockerfile",
		".devcontainer/Dockerfile.dev",
		".devcontainer/scripts/init-firewall.sh",
	}, files.Lines)
	assert.False(t, files.Empty())
}

func TestEnumerateMissingRoot(t *testing.T) {
	_, err := Enumerate(memfs.New(), ".devcontainer", DefaultGlobs)
	require.Error(t, err)
}

func TestFileSetAll(t *testing.T) {
	f := FileSet{Structured: []string{"b", "a"}, Lines: []string{"a", "c"}}
	assert.Equal(t, []string{"a", "b", "c"}, f.All())
	assert.True(t, FileSet{}.Empty())
}

func TestCommitMessage(t *testing.T) {
	tests := []struct {
		name  string
		title string
		m     *manifest.Manifest
		want  string
	}{
		{
			name: "nil_manifest_uses_default_title",
			want: DefaultCommitTitle,
		},
		{
			name:  "changes_and_missing_patterns",
			title: "Customize devcontainer",
			m: &manifest.Manifest{
				Changes:          []string{"Dockerfile:3: removed ipset", "init-firewall.sh: removed feature script (init-firewall.sh script)"},
				PatternsNotFound: []string{"NET_RAW capability flag"},
			},
			want: "Customize devcontainer\n\nChanges made:\n- Dockerfile:3: removed ipset\n- init-firewall.sh: removed feature script (init-firewall.sh script)\n\nPatterns not found:\n- NET_RAW capability flag",
		},
		{
			name:  "empty_manifest",
			title: "t",
			m:     manifest.New(),
			want:  "t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommitMessage(tt.title, tt.m))
		})
	}
}

func TestStateTransitions(t *testing.T) {
	assert.True(t, canTransition(StateIdle, StateCheckpointed))
	assert.True(t, canTransition(StateValidating, StateRolledBack))
	assert.False(t, canTransition(StateIdle, StateCommitted))
	assert.False(t, canTransition(StateCommitted, StateRolledBack))
	for _, s := range []State{StateCommitted, StateRolledBack, StateFailed} {
		assert.True(t, s.Terminal(), s.String())
	}
	assert.Equal(t, "rolled_back", StateRolledBack.String())
}
