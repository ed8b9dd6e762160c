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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:     "yaml_overrides",
			filename: ".devcontainer-sync.yaml",
			config: `
upstream:
  url: https://github.com/example/devcontainers.git
local:
  main_branch: main
strip_firewall: true
timeout: 45s
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://github.com/example/devcontainers.git", cfg.Upstream.URL, "url should be overridden")
				assert.Equal(t, DefaultRemote, cfg.Upstream.Remote, "remote should keep default")
				assert.Equal(t, DefaultRemoteBranch, cfg.Upstream.RemoteBranch, "remote branch should keep default")
				assert.Equal(t, "main", cfg.Local.MainBranch, "main branch should be overridden")
				assert.Equal(t, DefaultPrefix, cfg.Local.Prefix, "prefix should keep default")
				assert.True(t, cfg.StripFirewall, "strip firewall should be set")
				assert.Equal(t, 45*time.Second, cfg.Timeout, "timeout should be parsed")
			},
		},
		{
			name:     "renamed_remote_moves_remote_branch",
			filename: "config.yml",
			config: `
upstream:
  remote: anthropic
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "anthropic", cfg.Upstream.Remote)
				assert.Equal(t, "anthropic/main", cfg.Upstream.RemoteBranch)
			},
		},
		{
			name:     "hcl_blocks",
			filename: ".devcontainer-sync.hcl",
			config: `
upstream {
  branch = "upstream-main"
}

local {
  prefix = "tools/devcontainer"
}

catalog        = "catalog.yaml"
strip_firewall = true
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "upstream-main", cfg.Upstream.Branch)
				assert.Equal(t, "tools/devcontainer", cfg.Local.Prefix)
				assert.Equal(t, "catalog.yaml", cfg.Catalog)
				assert.True(t, cfg.StripFirewall)
				assert.Equal(t, DefaultTimeout, cfg.Timeout)
			},
		},
		{
			name:     "json_minimal",
			filename: ".devcontainer-sync.json",
			config:   `{"strip_firewall": false, "local": {"split_branch": "dc"}}`,
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.StripFirewall)
				assert.Equal(t, "dc", cfg.Local.SplitBranch)
			},
		},
		{
			name:        "yaml_unknown_field",
			filename:    "config.yaml",
			config:      "upstream:\n  repo: x\n",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "json_unknown_field",
			filename:    "config.json",
			config:      `{"remote": "x"}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name:        "hcl_unknown_attribute",
			filename:    "config.hcl",
			config:      `remote = "x"`,
			wantErr:     true,
			errContains: "decoding HCL",
		},
		{
			name:        "bad_timeout",
			filename:    "config.yaml",
			config:      "timeout: soon\n",
			wantErr:     true,
			errContains: "parsing timeout",
		},
		{
			name:        "negative_timeout",
			filename:    "config.yaml",
			config:      "timeout: -5s\n",
			wantErr:     true,
			errContains: "Timeout must be positive",
		},
		{
			name:        "prefix_outside_repo",
			filename:    "config.yaml",
			config:      "local:\n  prefix: ../elsewhere\n",
			wantErr:     true,
			errContains: "Local.Prefix must be a relative path inside the repository",
		},
		{
			name:        "split_branches_collide",
			filename:    "config.yaml",
			config:      "local:\n  updated_split_branch: devcontainer\n",
			wantErr:     true,
			errContains: "Local.UpdatedSplitBranch must differ from SplitBranch",
		},
		{
			name:        "branch_with_space",
			filename:    "config.yaml",
			config:      "upstream:\n  branch: claude main\n",
			wantErr:     true,
			errContains: "Upstream.Branch is not a valid branch or remote name",
		},
		{
			name:        "unsupported_extension",
			filename:    "config.toml",
			config:      "",
			wantErr:     true,
			errContains: "no parser found",
		},
	}

	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), tt.filename)
			err := os.WriteFile(configPath, []byte(tt.config), 0o644)
			require.NoError(t, err, "writing config file should succeed")

			cfg, err := Load(ctx, configPath)
			if tt.wantErr {
				require.Error(t, err, "Load should return error")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "Load should succeed")
			assert.Equal(t, configPath, cfg.Location())
			tt.check(t, cfg)
		})
	}
}

func TestDiscover(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	dir := t.TempDir()
	cfg, err := Discover(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg, "no file yields defaults")
	assert.Empty(t, cfg.Location())

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".devcontainer-sync.json"), []byte(`{"strip_firewall": true}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".devcontainer-sync.yml"), []byte("strip_firewall: false\n"), 0o644))

	cfg, err = Discover(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".devcontainer-sync.yml"), cfg.Location(), "yml is looked up before json")
	assert.False(t, cfg.StripFirewall)
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
	assert.Equal(t, "claude (https://github.com/anthropics/claude-code.git) claude/main -> .devcontainer", Default().String())
}

func TestParserSelection(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Parser
	}{
		{name: "yaml", filename: ".devcontainer-sync.yaml", want: &YAMLParser{}},
		{name: "yml_upper", filename: "CONFIG.YML", want: &YAMLParser{}},
		{name: "hcl", filename: ".devcontainer-sync.hcl", want: &HCLParser{}},
		{name: "json", filename: ".devcontainer-sync.json", want: &JSONParser{}},
		{name: "none", filename: ".devcontainer-sync", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.IsType(t, tt.want, GetParser(tt.filename))
		})
	}
}
