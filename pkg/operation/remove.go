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

package operation

import (
	"context"

	"github.com/rs/zerolog"
)

// RemoveCommitMessage is used when the devcontainer directory is deleted.
const RemoveCommitMessage = "Remove devcontainer configuration"

type RemoveOptions struct {
	// KeepFiles leaves the devcontainer directory in place
	KeepFiles bool
}

// 🧹 Remove deletes the remote and the sync branches, and unless asked not
// to, the devcontainer directory in its own commit.
func (o *Operator) Remove(ctx context.Context, opts RemoveOptions) error {
	up, loc := o.cfg.Upstream, o.cfg.Local

	if err := o.repo.Validate(ctx); err != nil {
		return classify("not a git repository", err)
	}

	steps := []step{
		gitStep("Removing remote", "removing remote "+up.Remote, func(ctx context.Context) error {
			return o.remotes.Remove(ctx, up.Remote)
		}),
		gitStep("Removing branches", "deleting "+up.Branch, func(ctx context.Context) error {
			if err := o.branches.Delete(ctx, up.Branch); err != nil {
				return err
			}
			for _, b := range []string{loc.SplitBranch, loc.UpdatedSplitBranch} {
				// split branches may never have been created
				if err := o.branches.Delete(ctx, b); err != nil {
					zerolog.Ctx(ctx).Debug().Err(err).Str("branch", b).Msg("skipping branch")
				}
			}
			return nil
		}),
	}
	if !opts.KeepFiles {
		steps = append(steps, step{name: "Removing files", run: func(ctx context.Context) error {
			if err := o.subtrees.Remove(ctx, loc.Prefix); err != nil {
				return classify("removing "+loc.Prefix, err)
			}
			dirty, err := o.repo.Dirty(ctx, loc.Prefix)
			if err != nil {
				return classify("checking "+loc.Prefix, err)
			}
			if !dirty {
				return nil
			}
			return classify("committing removal", o.committer.CommitAll(ctx, RemoveCommitMessage))
		}})
	}

	return o.steps.Run(ctx, steps...)
}
