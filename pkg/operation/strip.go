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

	"github.com/walteh/devcontainer-sync/pkg/customize"
)

const (
	InitStripTitle   = "Strip firewall configurations from devcontainer"
	UpdateStripTitle = "Strip firewall configurations from updated devcontainer"
)

// 🔥 Strip removes the firewall feature from the devcontainer and commits it.
// A rolled back customization is an error here, unlike during init and update.
func (o *Operator) Strip(ctx context.Context, title string) (*Result, error) {
	if err := o.validateRepository(ctx); err != nil {
		return nil, err
	}

	var res *Result
	err := o.steps.Run(ctx, step{name: "Stripping firewall", run: func(ctx context.Context) error {
		var err error
		res, err = o.strip(ctx, title)
		return err
	}})
	if err != nil {
		return res, err
	}
	if res.StripFailed() {
		return res, classify("stripping firewall", res.Customization.Err)
	}
	return res, nil
}

// stripAfterSync runs the customization at the end of init or update. Only a
// partial rollback fails the command; any other failure leaves the freshly
// synced files as they were and is reported through the result.
func (o *Operator) stripAfterSync(ctx context.Context, title string) (*Result, error) {
	var res *Result
	err := o.steps.Run(ctx, step{name: "Stripping firewall", run: func(ctx context.Context) error {
		var err error
		res, err = o.strip(ctx, title)
		return err
	}})
	if res.StripFailed() {
		zerolog.Ctx(ctx).Warn().Err(res.Customization.Err).Msg("firewall stripping rolled back")
	}
	return res, err
}

func (o *Operator) strip(ctx context.Context, title string) (*Result, error) {
	prefix := o.cfg.Local.Prefix
	exists, err := o.prefixExists()
	if err != nil {
		return &Result{}, err
	}
	if !exists {
		return &Result{}, newError(CategoryFileSystem, "no "+prefix+" directory found", suggestInit)
	}

	files, err := customize.Enumerate(o.fs, prefix, customize.DefaultGlobs)
	if err != nil {
		return &Result{}, classify("finding devcontainer files", err)
	}
	zerolog.Ctx(ctx).Debug().
		Strs("structured", files.Structured).
		Strs("lines", files.Lines).
		Msg("customizing devcontainer")

	engine, err := customize.New(customize.Options{FS: o.fs, Catalog: o.catalog})
	if err != nil {
		return &Result{}, classify("creating customization engine", err)
	}

	out, err := engine.Run(ctx, files)
	res := &Result{Customization: out}
	if err != nil {
		return res, classify("rolling back customization", err)
	}
	if !out.Success {
		return res, nil
	}

	committed, err := o.committer.Commit(ctx, "", out, title)
	if err != nil {
		return res, classify("committing customization", err)
	}
	res.Committed = committed
	return res, nil
}
