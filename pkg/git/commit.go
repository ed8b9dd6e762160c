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
	"path"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/devcontainer-sync/pkg/customize"
)

// ErrNotCommittable is returned for outcomes that did not commit.
var ErrNotCommittable = errors.Base("customization did not succeed")

// 📝 Committer records a customization outcome as a git commit
type Committer struct {
	runner Runner
}

// 🏭 NewCommitter creates a committer
func NewCommitter(runner Runner) *Committer {
	return &Committer{runner: runner}
}

// Commit stages the modified and removed paths of out and commits them.
// prefix is the directory the manifest paths are relative to, empty for the
// work tree root. It returns false when there was nothing to commit.
func (c *Committer) Commit(ctx context.Context, prefix string, out *customize.Outcome, title string) (bool, error) {
	if out == nil || !out.Success || out.Manifest == nil {
		return false, errors.WithStack(ErrNotCommittable)
	}
	m := out.Manifest
	paths := make([]string, 0, len(m.FilesModified)+len(m.FilesRemoved))
	for _, p := range append(append([]string{}, m.FilesModified...), m.FilesRemoved...) {
		paths = append(paths, path.Join(prefix, p))
	}
	if len(paths) == 0 {
		zerolog.Ctx(ctx).Debug().Msg("nothing to commit")
		return false, nil
	}

	if _, err := c.runner.Run(ctx, append([]string{"add", "-A", "--"}, paths...)...); err != nil {
		return false, errors.Errorf("staging customization: %w", err)
	}
	if _, err := c.runner.Run(ctx, "commit", "-m", customize.CommitMessage(title, m)); err != nil {
		return false, errors.Errorf("committing customization: %w", err)
	}
	return true, nil
}

// CommitAll commits whatever is staged.
func (c *Committer) CommitAll(ctx context.Context, message string) error {
	if _, err := c.runner.Run(ctx, "commit", "-m", message); err != nil {
		return errors.Errorf("committing: %w", err)
	}
	return nil
}
