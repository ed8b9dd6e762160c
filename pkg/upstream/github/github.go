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

package github

import (
	"context"
	"os"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/devcontainer-sync/pkg/upstream"
)

func init() {
	upstream.Register("github.com", func(ctx context.Context) (upstream.Provider, error) {
		return New(ctx), nil
	})
}

// 🐙 Provider reads commit history through the GitHub API
type Provider struct {
	client *github.Client
}

// 🏭 New creates a provider, authenticated when GITHUB_TOKEN is set
func New(ctx context.Context) *Provider {
	client := github.NewClient(nil)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		client = client.WithAuthToken(token)
	} else {
		zerolog.Ctx(ctx).Debug().Msg("GITHUB_TOKEN not set, using unauthenticated requests")
	}
	return NewWithClient(client)
}

// NewWithClient wraps an existing client.
func NewWithClient(client *github.Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Name() string {
	return "github"
}

// 🔍 ParseRepo splits a GitHub reference into owner and name
func ParseRepo(repo string) (owner, name string, err error) {
	r := strings.TrimSuffix(strings.TrimSpace(repo), "/")
	r = strings.TrimSuffix(r, ".git")
	r = strings.TrimPrefix(r, "git@github.com:")
	r = strings.TrimPrefix(r, "https://")
	r = strings.TrimPrefix(r, "http://")
	r = strings.TrimPrefix(r, "github.com/")

	parts := strings.Split(r, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("invalid GitHub repository URL: %s", repo)
	}
	return parts[0], parts[1], nil
}

// 📝 LatestCommit returns the newest commit on the branch touching the path
func (p *Provider) LatestCommit(ctx context.Context, ref upstream.Ref) (upstream.Commit, error) {
	owner, name, err := ParseRepo(ref.Repo)
	if err != nil {
		return upstream.Commit{}, errors.Errorf("parsing repo: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("owner", owner).
		Str("repo", name).
		Str("branch", ref.Branch).
		Str("path", ref.Path).
		Msg("listing upstream commits")

	commits, _, err := p.client.Repositories.ListCommits(ctx, owner, name, &github.CommitsListOptions{
		SHA:         ref.Branch,
		Path:        ref.Path,
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return upstream.Commit{}, errors.Errorf("listing commits: %w", err)
	}
	if len(commits) == 0 {
		return upstream.Commit{}, errors.WithStack(upstream.ErrNoCommits)
	}

	c := commits[0]
	return upstream.Commit{
		SHA:     c.GetSHA(),
		Message: c.GetCommit().GetMessage(),
		Date:    c.GetCommit().GetAuthor().GetDate().Time,
		URL:     c.GetHTMLURL(),
	}, nil
}
