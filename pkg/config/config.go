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

// Package config loads the optional .devcontainer-sync file that overrides the
// upstream repository, branch names and customization settings.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	DefaultRemote             = "claude"
	DefaultURL                = "https://github.com/anthropics/claude-code.git"
	DefaultBranch             = "claude-main"
	DefaultRemoteBranch       = "claude/main"
	DefaultPrefix             = ".devcontainer"
	DefaultMainBranch         = "master"
	DefaultSplitBranch        = "devcontainer"
	DefaultUpdatedSplitBranch = "devcontainer-updated"
	DefaultTimeout            = 30 * time.Second
)

// FileNames are looked up in order by Discover.
var FileNames = []string{
	".devcontainer-sync.yaml",
	".devcontainer-sync.yml",
	".devcontainer-sync.hcl",
	".devcontainer-sync.json",
}

// 🔗 Upstream is where the devcontainer comes from
type Upstream struct {
	Remote       string `validate:"required,refname"`
	URL          string `validate:"required"`
	Branch       string `validate:"required,refname"`
	RemoteBranch string `validate:"required"`
}

// 📁 Local is how the devcontainer lands in this repository
type Local struct {
	Prefix             string `validate:"required,relpath"`
	MainBranch         string `validate:"required,refname"`
	SplitBranch        string `validate:"required,refname"`
	UpdatedSplitBranch string `validate:"required,refname,nefield=SplitBranch"`
}

// 📚 Config is the resolved configuration
type Config struct {
	Upstream      Upstream
	Local         Local
	Catalog       string
	StripFirewall bool
	Timeout       time.Duration `validate:"gt=0"`

	location string
}

// 🏭 Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Upstream: Upstream{
			Remote:       DefaultRemote,
			URL:          DefaultURL,
			Branch:       DefaultBranch,
			RemoteBranch: DefaultRemoteBranch,
		},
		Local: Local{
			Prefix:             DefaultPrefix,
			MainBranch:         DefaultMainBranch,
			SplitBranch:        DefaultSplitBranch,
			UpdatedSplitBranch: DefaultUpdatedSplitBranch,
		},
		Timeout: DefaultTimeout,
	}
}

// Location is the file the config was loaded from, empty for defaults.
func (cfg *Config) Location() string {
	return cfg.location
}

func (cfg *Config) String() string {
	return fmt.Sprintf("%s (%s) %s -> %s", cfg.Upstream.Remote, cfg.Upstream.URL, cfg.Upstream.RemoteBranch, cfg.Local.Prefix)
}

// 🎯 Load reads a config file and lays it over the defaults
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	f, err := p.Parse(ctx, filepath.Base(path), data)
	if err != nil {
		return nil, err
	}

	cfg, err := f.apply(Default())
	if err != nil {
		return nil, errors.Errorf("applying %s: %w", path, err)
	}
	cfg.location = path

	if err := Validate(cfg); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// 🔍 Discover loads the first config file found in dir, or the defaults.
func Discover(ctx context.Context, dir string) (*Config, error) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return Load(ctx, p)
		}
	}
	zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("no config file, using defaults")
	return Default(), nil
}
