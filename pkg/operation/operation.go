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
	"os"

	"github.com/go-git/go-billy/v5"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/devcontainer-sync/pkg/config"
	"github.com/walteh/devcontainer-sync/pkg/customize"
	"github.com/walteh/devcontainer-sync/pkg/git"
	"github.com/walteh/devcontainer-sync/pkg/pattern"
	"github.com/walteh/devcontainer-sync/pkg/upstream"
)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

type Options struct {
	// Config names the upstream, branches and prefix
	Config *config.Config
	// Runner executes git in the repository root
	Runner git.Runner
	// FS is rooted at the repository root
	FS billy.Filesystem
	// Catalog drives firewall stripping, defaults to the built-in one
	Catalog *pattern.Catalog
	// Confirm is asked before init overwrites an existing devcontainer
	Confirm ConfirmFunc
	// Progress shows each step, optional
	Progress Progress
	// Upstream answers status queries, looked up from the URL when nil
	Upstream upstream.Provider
}

// ⚙️ Operator runs the commands against one repository
type Operator struct {
	cfg      *config.Config
	fs       billy.Filesystem
	catalog  *pattern.Catalog
	confirm  ConfirmFunc
	upstream upstream.Provider
	steps    *stepRunner

	repo      *git.Repository
	remotes   *git.Remotes
	branches  *git.Branches
	subtrees  *git.Subtrees
	committer *git.Committer
	runner    git.Runner
}

// 🏭 New creates an operator
func New(opts Options) (*Operator, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if opts.Runner == nil {
		return nil, errors.Errorf("git runner is required")
	}
	if opts.FS == nil {
		return nil, errors.Errorf("filesystem is required")
	}
	if opts.Catalog == nil {
		opts.Catalog = pattern.DefaultFirewall()
	}
	if opts.Confirm == nil {
		opts.Confirm = func(context.Context, string) (bool, error) { return false, nil }
	}
	if opts.Progress == nil {
		opts.Progress = noProgress{}
	}
	return &Operator{
		cfg:       opts.Config,
		fs:        opts.FS,
		catalog:   opts.Catalog,
		confirm:   opts.Confirm,
		upstream:  opts.Upstream,
		steps:     &stepRunner{progress: opts.Progress},
		repo:      git.NewRepository(opts.Runner),
		remotes:   git.NewRemotes(opts.Runner),
		branches:  git.NewBranches(opts.Runner),
		subtrees:  git.NewSubtrees(opts.Runner, opts.FS),
		committer: git.NewCommitter(opts.Runner),
		runner:    opts.Runner,
	}, nil
}

// 📦 Result is what a sync command did
type Result struct {
	// Customization is set when firewall stripping ran
	Customization *customize.Outcome
	// Committed reports whether the customization produced a commit
	Committed bool
	// BackupPath is where the previous devcontainer was copied, if anywhere
	BackupPath string
}

// StripFailed reports whether stripping ran and was rolled back.
func (r *Result) StripFailed() bool {
	return r != nil && r.Customization != nil && !r.Customization.Success
}

func (o *Operator) validateRepository(ctx context.Context) error {
	if err := o.repo.Validate(ctx); err != nil {
		return classify("not a git repository", err)
	}
	if err := o.repo.HasCommits(ctx); err != nil {
		return classify("repository has no commits", err)
	}
	return nil
}

func (o *Operator) prefixExists() (bool, error) {
	info, err := o.fs.Stat(o.cfg.Local.Prefix)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, classify("checking "+o.cfg.Local.Prefix, err)
	}
	return info.IsDir(), nil
}

// gitStep wraps a git call so failures carry the git category.
func gitStep(name, msg string, fn func(ctx context.Context) error) step {
	return step{name: name, run: func(ctx context.Context) error {
		return classify(msg, fn(ctx))
	}}
}
