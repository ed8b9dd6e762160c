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
	"fmt"

	"github.com/rs/zerolog"
)

type InitOptions struct {
	// StripFirewall runs the customization after the subtree is added
	StripFirewall bool
	// Force replaces an existing devcontainer without asking
	Force bool
}

// 🚀 Init adds the upstream remote, splits its devcontainer and adds it as a
// squashed subtree of the main branch.
func (o *Operator) Init(ctx context.Context, opts InitOptions) (*Result, error) {
	up, loc := o.cfg.Upstream, o.cfg.Local

	if err := o.validateRepository(ctx); err != nil {
		return nil, err
	}

	exists, err := o.prefixExists()
	if err != nil {
		return nil, err
	}
	if exists && !opts.Force {
		ok, err := o.confirm(ctx, fmt.Sprintf("%s already exists and will be overwritten. Continue?", loc.Prefix))
		if err != nil {
			return nil, &Error{Category: CategoryFileSystem, Message: "reading confirmation", Suggestion: "Try running the command again", Err: err}
		}
		if !ok {
			return nil, newError(CategoryRepository, "operation cancelled by user", suggestForce)
		}
	}

	var steps []step
	if exists {
		steps = append(steps, step{name: "Replacing existing devcontainer", run: o.replaceExisting})
	}
	steps = append(steps,
		step{name: "Adding remote", run: o.ensureRemote},
		gitStep("Fetching repository", "fetching "+up.Remote, func(ctx context.Context) error {
			return o.remotes.Fetch(ctx, up.Remote)
		}),
		gitStep("Creating branch", "creating tracking branch "+up.Branch, func(ctx context.Context) error {
			return o.branches.ForceCreate(ctx, up.Branch, up.RemoteBranch)
		}),
		gitStep("Switching branches", "switching to "+up.Branch, func(ctx context.Context) error {
			return o.branches.Checkout(ctx, up.Branch)
		}),
		gitStep("Extracting devcontainer", "splitting "+loc.Prefix, func(ctx context.Context) error {
			return o.subtrees.Split(ctx, loc.Prefix, loc.SplitBranch)
		}),
		gitStep("Returning to "+loc.MainBranch, "switching to "+loc.MainBranch, func(ctx context.Context) error {
			return o.branches.Checkout(ctx, loc.MainBranch)
		}),
		gitStep("Adding devcontainer files", "adding subtree "+loc.Prefix, func(ctx context.Context) error {
			return o.subtrees.Add(ctx, loc.Prefix, loc.SplitBranch, true)
		}),
	)

	if err := o.steps.Run(ctx, steps...); err != nil {
		o.returnToMain(ctx)
		return nil, err
	}

	if opts.StripFirewall {
		return o.stripAfterSync(ctx, InitStripTitle)
	}
	return &Result{}, nil
}

func (o *Operator) ensureRemote(ctx context.Context) error {
	up := o.cfg.Upstream
	if o.remotes.Exists(ctx, up.Remote) {
		zerolog.Ctx(ctx).Info().Str("remote", up.Remote).Msg("remote already configured")
		return nil
	}
	return classify("adding remote "+up.Remote, o.remotes.Add(ctx, up.Remote, up.URL))
}

// replaceExisting deletes the current devcontainer and commits the deletion
// when it was tracked, so the subtree can be added in its place.
func (o *Operator) replaceExisting(ctx context.Context) error {
	prefix := o.cfg.Local.Prefix
	if err := o.subtrees.Remove(ctx, prefix); err != nil {
		return classify("removing existing "+prefix, err)
	}
	dirty, err := o.repo.Dirty(ctx, prefix)
	if err != nil {
		return classify("checking "+prefix, err)
	}
	if !dirty {
		return nil
	}
	return classify("committing removal of "+prefix, o.committer.CommitAll(ctx, "Remove existing devcontainer configuration"))
}

// returnToMain leaves the tracking branch after a failed sequence.
func (o *Operator) returnToMain(ctx context.Context) {
	logger := zerolog.Ctx(ctx)
	cur, err := o.branches.Current(context.WithoutCancel(ctx))
	if err != nil || cur != o.cfg.Upstream.Branch {
		return
	}
	if err := o.branches.Checkout(context.WithoutCancel(ctx), o.cfg.Local.MainBranch); err != nil {
		logger.Warn().Err(err).Str("branch", o.cfg.Local.MainBranch).Msg("could not return to main branch")
	}
}
