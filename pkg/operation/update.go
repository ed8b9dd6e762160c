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
)

type UpdateOptions struct {
	// Backup copies the devcontainer aside before merging
	Backup bool
	// Force skips the uncommitted changes check
	Force bool
	// StripFirewall runs the customization after the merge
	StripFirewall bool
}

// 🔄 Update fetches the upstream, splits its devcontainer again and merges it
// into the existing subtree.
func (o *Operator) Update(ctx context.Context, opts UpdateOptions) (*Result, error) {
	up, loc := o.cfg.Upstream, o.cfg.Local

	if err := o.validateRepository(ctx); err != nil {
		return nil, err
	}

	exists, err := o.prefixExists()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, newError(CategoryFileSystem, "no "+loc.Prefix+" directory found to update", suggestInit)
	}

	if !opts.Force {
		dirty, err := o.repo.Dirty(ctx, loc.Prefix)
		if err != nil {
			return nil, classify("checking "+loc.Prefix, err)
		}
		if dirty {
			return nil, newError(CategoryRepository, loc.Prefix+" has uncommitted changes", suggestForce)
		}
	}

	res := &Result{}
	var steps []step
	if opts.Backup {
		steps = append(steps, step{name: "Creating backup", run: func(ctx context.Context) error {
			p, err := o.backup(ctx)
			res.BackupPath = p
			return err
		}})
	}
	steps = append(steps,
		gitStep("Fetching updates", "fetching "+up.Remote, func(ctx context.Context) error {
			return o.remotes.Fetch(ctx, up.Remote)
		}),
		gitStep("Updating tracking branch", "updating "+up.Branch, func(ctx context.Context) error {
			if err := o.branches.Checkout(ctx, up.Branch); err != nil {
				return err
			}
			return o.branches.ResetHard(ctx, up.RemoteBranch)
		}),
		gitStep("Extracting updates", "splitting "+loc.Prefix, func(ctx context.Context) error {
			// a stale split branch from an earlier update may not be an ancestor
			if o.branches.Exists(ctx, loc.UpdatedSplitBranch) {
				if err := o.branches.Delete(ctx, loc.UpdatedSplitBranch); err != nil {
					return err
				}
			}
			return o.subtrees.Split(ctx, loc.Prefix, loc.UpdatedSplitBranch)
		}),
		gitStep("Returning to "+loc.MainBranch, "switching to "+loc.MainBranch, func(ctx context.Context) error {
			return o.branches.Checkout(ctx, loc.MainBranch)
		}),
		gitStep("Applying updates", "merging into "+loc.Prefix, func(ctx context.Context) error {
			return o.subtrees.Merge(ctx, loc.Prefix, loc.UpdatedSplitBranch, true)
		}),
	)

	if err := o.steps.Run(ctx, steps...); err != nil {
		o.returnToMain(ctx)
		return res, err
	}

	if opts.StripFirewall {
		stripped, err := o.stripAfterSync(ctx, UpdateStripTitle)
		if stripped == nil {
			stripped = &Result{}
		}
		stripped.BackupPath = res.BackupPath
		return stripped, err
	}
	return res, nil
}
