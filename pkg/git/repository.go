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
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrNotRepository = errors.Base("current directory is not a git repository")
	ErrNoCommits     = errors.Base("git repository has no commits")
)

// ✅ Repository checks the preconditions every command relies on
type Repository struct {
	runner Runner
}

// 🏭 NewRepository creates a precondition checker
func NewRepository(runner Runner) *Repository {
	return &Repository{runner: runner}
}

// Validate fails with ErrNotRepository unless the runner directory is a work tree root.
func (r *Repository) Validate(ctx context.Context) error {
	// .git is a directory in a plain clone and a file in a linked worktree
	if _, err := os.Stat(filepath.Join(r.runner.Dir(), ".git")); err != nil {
		return errors.WithStack(ErrNotRepository)
	}
	if _, err := r.runner.Run(ctx, "rev-parse", "--git-dir"); err != nil {
		return errors.Errorf("%w (%s)", ErrNotRepository, err.Error())
	}
	return nil
}

// HasCommits fails with ErrNoCommits on an unborn HEAD.
func (r *Repository) HasCommits(ctx context.Context) error {
	if _, err := r.runner.Run(ctx, "rev-parse", "--verify", "HEAD"); err != nil {
		return errors.WithStack(ErrNoCommits)
	}
	return nil
}

// Dirty reports whether path has staged, unstaged or untracked changes.
func (r *Repository) Dirty(ctx context.Context, path string) (bool, error) {
	res, err := r.runner.Run(ctx, "status", "--porcelain", "--", path)
	if err != nil {
		return false, errors.Errorf("reading status of %s: %w", path, err)
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}
