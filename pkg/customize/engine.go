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

// Package customize strips a feature out of a devcontainer file set and
// undoes everything if the result does not validate.
package customize

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/devcontainer-sync/pkg/checkpoint"
	"github.com/walteh/devcontainer-sync/pkg/manifest"
	"github.com/walteh/devcontainer-sync/pkg/pattern"
	"github.com/walteh/devcontainer-sync/pkg/rewrite"
	"github.com/walteh/devcontainer-sync/pkg/validate"
)

// 📁 FileSet is the candidate files of one run, split by rewriter
type FileSet struct {
	Structured []string
	Lines      []string
}

// All returns every path once, sorted.
func (f FileSet) All() []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range append(append([]string{}, f.Structured...), f.Lines...) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Empty reports whether there is nothing to look at.
func (f FileSet) Empty() bool {
	return len(f.Structured) == 0 && len(f.Lines) == 0
}

// 🔧 Options configures an Engine. Rewriters default to the built-in ones.
type Options struct {
	FS         billy.Filesystem
	Catalog    *pattern.Catalog
	Structured rewrite.Rewriter
	Lines      rewrite.Rewriter
}

// ⚙️ Engine runs checkpoint, rewrite, validate and commit or roll back
type Engine struct {
	fs         billy.Filesystem
	catalog    *pattern.Catalog
	store      *checkpoint.Store
	structured rewrite.Rewriter
	lines      rewrite.Rewriter
	scripts    *rewrite.ScriptDetector
	validator  *validate.Validator
}

// 🏭 New creates an engine
func New(opts Options) (*Engine, error) {
	if opts.FS == nil {
		return nil, errors.Errorf("filesystem is required")
	}
	if opts.Catalog == nil {
		return nil, errors.Errorf("catalog is required")
	}
	if opts.Structured == nil {
		opts.Structured = rewrite.NewStructured()
	}
	if opts.Lines == nil {
		opts.Lines = rewrite.NewLines()
	}
	return &Engine{
		fs:         opts.FS,
		catalog:    opts.Catalog,
		store:      checkpoint.NewStore(opts.FS),
		structured: opts.Structured,
		lines:      opts.Lines,
		scripts:    rewrite.NewScriptDetector(),
		validator:  validate.New(opts.FS, opts.Catalog),
	}, nil
}

type run struct {
	logger  *zerolog.Logger
	outcome *Outcome
}

func (r *run) to(next State) {
	cur := r.outcome.State
	if !canTransition(cur, next) {
		r.logger.Error().Stringer("from", cur).Stringer("to", next).Msg("invalid state transition")
	}
	r.logger.Debug().Stringer("from", cur).Stringer("to", next).Msg("customization state")
	r.outcome.State = next
	r.outcome.History = append(r.outcome.History, next)
}

// 🏃 Run customizes files. Every failure short of a partial rollback is
// reported through the Outcome; only *checkpoint.PartialRollbackError is
// returned as an error.
func (e *Engine) Run(ctx context.Context, files FileSet) (*Outcome, error) {
	logger := zerolog.Ctx(ctx)
	r := &run{
		logger: logger,
		outcome: &Outcome{
			State:     StateIdle,
			History:   []State{StateIdle},
			Manifest:  manifest.New(),
			Attempted: manifest.New(),
		},
	}
	o := r.outcome

	cp, err := e.store.Create(ctx, files.All())
	if err != nil {
		logger.Error().Err(err).Msg("taking checkpoint")
		o.Err = err
		r.to(StateFailed)
		return o, nil
	}
	o.CheckpointID = cp.ID
	r.to(StateCheckpointed)

	if err := ctx.Err(); err != nil {
		return e.rollback(ctx, r, cp, errors.Errorf("before rewrite: %w", err))
	}

	r.to(StateRewriting)
	attempted, err := e.rewrite(ctx, files, cp)
	o.Attempted = attempted
	if err != nil {
		return e.rollback(ctx, r, cp, err)
	}

	if err := ctx.Err(); err != nil {
		return e.rollback(ctx, r, cp, errors.Errorf("before validation: %w", err))
	}

	r.to(StateValidating)
	o.Validation = e.validator.Validate(ctx, validate.Input{
		Structured: files.Structured,
		Lines:      files.Lines,
		Manifest:   attempted,
		Baseline:   cp,
	})
	if !o.Validation.Valid {
		return e.rollback(ctx, r, cp, &ValidationFailure{Errors: o.Validation.Errors})
	}

	e.store.Discard(ctx, cp)
	r.to(StateCommitted)
	o.Success = true
	o.Manifest = attempted

	logger.Info().
		Int("modified", len(attempted.FilesModified)).
		Int("removed", len(attempted.FilesRemoved)).
		Int("changes", len(attempted.Changes)).
		Msg("customization committed")
	for _, d := range attempted.PatternsNotFound {
		logger.Warn().Str("pattern", d).Msg("pattern not found")
	}
	return o, nil
}

func (e *Engine) rollback(ctx context.Context, r *run, cp *checkpoint.Checkpoint, cause error) (*Outcome, error) {
	logger := zerolog.Ctx(ctx)
	o := r.outcome
	o.Err = cause
	logger.Warn().Err(cause).Str("checkpoint", cp.ID).Msg("rolling back customization")

	if err := e.store.Restore(ctx, cp); err != nil {
		logger.Error().Err(err).Msg("rollback incomplete")
		o.Err = err
		r.to(StateFailed)
		return o, err
	}

	r.to(StateRolledBack)
	o.RolledBack = true
	o.Manifest = manifest.New()
	return o, nil
}

// rewrite applies every rewriter and writes results as it goes. The returned
// manifest covers everything attempted, also when err is set.
func (e *Engine) rewrite(ctx context.Context, files FileSet, cp *checkpoint.Checkpoint) (*manifest.Manifest, error) {
	logger := zerolog.Ctx(ctx)

	// every catalog rule counts as evaluated, even with no file of its kind
	seed := manifest.New()
	seed.Evaluate(e.catalog.Rules()...)
	fragments := []*manifest.Manifest{seed}

	for _, p := range files.Structured {
		frag, err := e.rewriteFile(ctx, p, e.structured, cp)
		fragments = append(fragments, frag)
		if err != nil {
			return manifest.Merge(fragments...), err
		}
	}

	scriptRules := e.catalog.RulesFor(e.scripts.Kinds()...)
	for _, p := range files.Lines {
		content, ok := cp.Original(p)
		if ok && e.scripts.IsScript(p) {
			if matched := e.scripts.Detect(p, content, scriptRules); len(matched) > 0 {
				frag := manifest.New()
				frag.Hit(matched...)
				if err := e.fs.Remove(p); err != nil {
					return manifest.Merge(append(fragments, frag)...), errors.Errorf("removing %s: %w", p, err)
				}
				frag.MarkRemoved(p)
				frag.Change(pattern.ScriptName, 1, fmt.Sprintf("%s: removed feature script (%s)", p, describe(matched)))
				logger.Debug().Str("path", p).Msg("removed feature script")
				fragments = append(fragments, frag)
				continue
			}
		}

		frag, err := e.rewriteFile(ctx, p, e.lines, cp)
		fragments = append(fragments, frag)
		if err != nil {
			return manifest.Merge(fragments...), err
		}
	}

	return manifest.Merge(fragments...), nil
}

func (e *Engine) rewriteFile(ctx context.Context, p string, rw rewrite.Rewriter, cp *checkpoint.Checkpoint) (*manifest.Manifest, error) {
	logger := zerolog.Ctx(ctx)
	content, ok := cp.Original(p)
	if !ok {
		logger.Debug().Str("path", p).Msg("skipping missing file")
		return nil, nil
	}

	out, frag, err := rw.Strip(p, content, e.catalog.RulesFor(rw.Kinds()...))
	if err != nil {
		return nil, err
	}
	if frag == nil {
		frag = manifest.New()
	}
	if bytes.Equal(out, content) {
		return frag, nil
	}

	entry, _ := cp.Entry(p)
	if err := util.WriteFile(e.fs, p, out, entry.Mode); err != nil {
		return frag, errors.Errorf("writing %s: %w", p, err)
	}
	logger.Debug().Str("path", p).Int("changes", len(frag.Changes)).Msg("rewrote file")

	written := manifest.New()
	written.MarkModified(p)
	return manifest.Merge(frag, written), nil
}

func describe(rules []pattern.Rule) string {
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Description)
	}
	return strings.Join(names, ", ")
}
