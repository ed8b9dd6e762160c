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

package git

import (
	"context"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Branch is a local branch as reported by `git branch -vv`.
type Branch struct {
	Name     string
	Current  bool
	Upstream string
}

// 🌿 Branches manages local branches
type Branches struct {
	runner Runner
}

// 🏭 NewBranches creates a branch manager
func NewBranches(runner Runner) *Branches {
	return &Branches{runner: runner}
}

func (b *Branches) Create(ctx context.Context, name, source string) error {
	if _, err := b.runner.Run(ctx, "branch", name, source); err != nil {
		return errors.Errorf("creating branch %s: %w", name, err)
	}
	return nil
}

// ForceCreate creates name at source, moving it if it already exists.
func (b *Branches) ForceCreate(ctx context.Context, name, source string) error {
	if _, err := b.runner.Run(ctx, "branch", "-f", name, source); err != nil {
		return errors.Errorf("creating branch %s: %w", name, err)
	}
	return nil
}

func (b *Branches) Delete(ctx context.Context, name string) error {
	if _, err := b.runner.Run(ctx, "branch", "-D", name); err != nil {
		return errors.Errorf("deleting branch %s: %w", name, err)
	}
	return nil
}

func (b *Branches) Checkout(ctx context.Context, name string) error {
	if _, err := b.runner.Run(ctx, "checkout", name); err != nil {
		return errors.Errorf("checking out %s: %w", name, err)
	}
	return nil
}

// ResetHard points the current branch and work tree at ref.
func (b *Branches) ResetHard(ctx context.Context, ref string) error {
	if _, err := b.runner.Run(ctx, "reset", "--hard", ref); err != nil {
		return errors.Errorf("resetting to %s: %w", ref, err)
	}
	return nil
}

func (b *Branches) Exists(ctx context.Context, name string) bool {
	_, err := b.runner.Run(ctx, "show-ref", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil
}

// RefExists reports whether ref resolves to a commit, e.g. a remote-tracking branch.
func (b *Branches) RefExists(ctx context.Context, ref string) bool {
	_, err := b.runner.Run(ctx, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	return err == nil
}

// Current returns the checked out branch name.
func (b *Branches) Current(ctx context.Context) (string, error) {
	res, err := b.runner.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", errors.Errorf("reading current branch: %w", err)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// LastCommit returns the newest commit on ref that touched path.
func (b *Branches) LastCommit(ctx context.Context, ref, path string) (string, error) {
	res, err := b.runner.Run(ctx, "log", "-1", "--format=%H", ref, "--", path)
	if err != nil {
		return "", errors.Errorf("reading last commit of %s: %w", ref, err)
	}
	return strings.TrimSpace(res.Stdout), nil
}

func (b *Branches) List(ctx context.Context) ([]Branch, error) {
	res, err := b.runner.Run(ctx, "branch", "-vv")
	if err != nil {
		return nil, errors.Errorf("listing branches: %w", err)
	}
	return parseBranches(res.Stdout), nil
}

func parseBranches(out string) []Branch {
	branches := []Branch{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		br := Branch{}
		if strings.HasPrefix(line, "*") {
			br.Current = true
			line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		br.Name = fields[0]
		if start := strings.Index(line, "["); start >= 0 {
			if end := strings.Index(line[start:], "]"); end > 0 {
				up := line[start+1 : start+end]
				if i := strings.Index(up, ":"); i >= 0 {
					up = up[:i]
				}
				br.Upstream = up
			}
		}
		branches = append(branches, br)
	}
	return branches
}
