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

// Package upstream asks the hosting service of the upstream repository which
// commit last touched the devcontainer, so status can tell whether an update
// is waiting without fetching.
package upstream

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// ErrNoCommits means the path has no history on the branch.
var ErrNoCommits = errors.Base("no commits found")

// 📍 Ref names a path on a branch of a hosted repository
type Ref struct {
	Repo   string // clone URL or host/owner/name
	Branch string
	Path   string
}

// 📝 Commit is the upstream commit that last touched a Ref
type Commit struct {
	SHA     string
	Message string
	Date    time.Time
	URL     string
}

// Short is the abbreviated hash.
func (c Commit) Short() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

// Title is the first line of the message.
func (c Commit) Title() string {
	title, _, _ := strings.Cut(c.Message, "\n")
	return title
}

// 🌐 Provider talks to one hosting service
type Provider interface {
	// Name returns the name of the provider (e.g. "github")
	Name() string
	// LatestCommit returns the newest commit on ref.Branch touching ref.Path
	LatestCommit(ctx context.Context, ref Ref) (Commit, error)
}

// Factory builds a provider.
type Factory func(ctx context.Context) (Provider, error)

var (
	// 🗺️ providers maps a host to its factory
	providers = make(map[string]Factory)
)

// Register makes a provider available for repositories on host.
func Register(host string, factory Factory) {
	providers[host] = factory
}

// 🔍 ForRepo builds the provider that serves repo
func ForRepo(ctx context.Context, repo string) (Provider, error) {
	host, err := Host(repo)
	if err != nil {
		return nil, err
	}
	factory, ok := providers[host]
	if !ok {
		options := make([]string, 0, len(providers))
		for k := range providers {
			options = append(options, k)
		}
		sort.Strings(options)
		return nil, errors.Errorf("no provider for host %s, options: %s", host, strings.Join(options, ", "))
	}
	return factory(ctx)
}

// Host extracts the host from an https, ssh or bare repository reference.
func Host(repo string) (string, error) {
	switch {
	case strings.HasPrefix(repo, "git@"):
		host, _, ok := strings.Cut(strings.TrimPrefix(repo, "git@"), ":")
		if !ok || host == "" {
			return "", errors.Errorf("invalid repository reference: %s", repo)
		}
		return host, nil
	case strings.Contains(repo, "://"):
		u, err := url.Parse(repo)
		if err != nil {
			return "", errors.Errorf("parsing repository URL: %w", err)
		}
		if u.Host == "" {
			return "", errors.Errorf("invalid repository reference: %s", repo)
		}
		return u.Host, nil
	default:
		host, _, ok := strings.Cut(repo, "/")
		if !ok || !strings.Contains(host, ".") {
			return "", errors.Errorf("invalid repository reference: %s", repo)
		}
		return host, nil
	}
}
