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

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gitlab.com/tozd/go/errors"
)

// 🌳 Subtrees wraps `git subtree` for one prefix-based subtree
type Subtrees struct {
	runner Runner
	fs     billy.Filesystem
}

// 🏭 NewSubtrees creates a subtree manager. fs must be rooted at the work tree.
func NewSubtrees(runner Runner, fs billy.Filesystem) *Subtrees {
	return &Subtrees{runner: runner, fs: fs}
}

// Split writes the history of prefix on the current branch to branch.
func (s *Subtrees) Split(ctx context.Context, prefix, branch string) error {
	if _, err := s.runner.Run(ctx, "subtree", "split", "--prefix="+prefix, "-b", branch); err != nil {
		return errors.Errorf("splitting %s into %s: %w", prefix, branch, err)
	}
	return nil
}

func (s *Subtrees) Add(ctx context.Context, prefix, branch string, squash bool) error {
	args := []string{"subtree", "add", "--prefix=" + prefix}
	if squash {
		args = append(args, "--squash")
	}
	args = append(args, branch)
	if _, err := s.runner.Run(ctx, args...); err != nil {
		return errors.Errorf("adding subtree %s from %s: %w", prefix, branch, err)
	}
	return nil
}

func (s *Subtrees) Merge(ctx context.Context, prefix, branch string, squash bool) error {
	args := []string{"subtree", "merge", "--prefix=" + prefix}
	if squash {
		args = append(args, "--squash")
	}
	args = append(args, branch)
	if _, err := s.runner.Run(ctx, args...); err != nil {
		return errors.Errorf("merging %s into subtree %s: %w", branch, prefix, err)
	}
	return nil
}

// Remove deletes the subtree directory and stages the deletion. A missing
// directory is not an error.
func (s *Subtrees) Remove(ctx context.Context, prefix string) error {
	if _, err := s.fs.Stat(prefix); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errors.Errorf("checking %s: %w", prefix, err)
	}
	if err := util.RemoveAll(s.fs, prefix); err != nil {
		return errors.Errorf("removing %s: %w", prefix, err)
	}
	if _, err := s.runner.Run(ctx, "add", "-A", "--", prefix); err != nil {
		return errors.Errorf("staging removal of %s: %w", prefix, err)
	}
	return nil
}
