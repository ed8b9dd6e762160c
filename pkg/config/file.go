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
	"time"

	"gitlab.com/tozd/go/errors"
)

// 📄 File is the on-disk form. Unset fields keep their defaults.
type File struct {
	Upstream      *UpstreamFile `json:"upstream,omitempty" yaml:"upstream,omitempty" hcl:"upstream,block"`
	Local         *LocalFile    `json:"local,omitempty" yaml:"local,omitempty" hcl:"local,block"`
	Catalog       string        `json:"catalog,omitempty" yaml:"catalog,omitempty" hcl:"catalog,optional"`
	StripFirewall *bool         `json:"strip_firewall,omitempty" yaml:"strip_firewall,omitempty" hcl:"strip_firewall,optional"`
	Timeout       string        `json:"timeout,omitempty" yaml:"timeout,omitempty" hcl:"timeout,optional"`
}

type UpstreamFile struct {
	Remote       string `json:"remote,omitempty" yaml:"remote,omitempty" hcl:"remote,optional"`
	URL          string `json:"url,omitempty" yaml:"url,omitempty" hcl:"url,optional"`
	Branch       string `json:"branch,omitempty" yaml:"branch,omitempty" hcl:"branch,optional"`
	RemoteBranch string `json:"remote_branch,omitempty" yaml:"remote_branch,omitempty" hcl:"remote_branch,optional"`
}

type LocalFile struct {
	Prefix             string `json:"prefix,omitempty" yaml:"prefix,omitempty" hcl:"prefix,optional"`
	MainBranch         string `json:"main_branch,omitempty" yaml:"main_branch,omitempty" hcl:"main_branch,optional"`
	SplitBranch        string `json:"split_branch,omitempty" yaml:"split_branch,omitempty" hcl:"split_branch,optional"`
	UpdatedSplitBranch string `json:"updated_split_branch,omitempty" yaml:"updated_split_branch,omitempty" hcl:"updated_split_branch,optional"`
}

func (f *File) apply(cfg *Config) (*Config, error) {
	if u := f.Upstream; u != nil {
		set(&cfg.Upstream.Remote, u.Remote)
		set(&cfg.Upstream.URL, u.URL)
		set(&cfg.Upstream.Branch, u.Branch)
		set(&cfg.Upstream.RemoteBranch, u.RemoteBranch)
		// a renamed remote moves the default remote branch with it
		if u.Remote != "" && u.RemoteBranch == "" {
			cfg.Upstream.RemoteBranch = u.Remote + "/main"
		}
	}
	if l := f.Local; l != nil {
		set(&cfg.Local.Prefix, l.Prefix)
		set(&cfg.Local.MainBranch, l.MainBranch)
		set(&cfg.Local.SplitBranch, l.SplitBranch)
		set(&cfg.Local.UpdatedSplitBranch, l.UpdatedSplitBranch)
	}
	set(&cfg.Catalog, f.Catalog)
	if f.StripFirewall != nil {
		cfg.StripFirewall = *f.StripFirewall
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return nil, errors.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

func set(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
