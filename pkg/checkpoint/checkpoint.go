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

// Package checkpoint snapshots files so a failed rewrite can be undone.
package checkpoint

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📦 Entry is the captured state of one path
type Entry struct {
	Existed bool
	Content []byte
	Mode    os.FileMode
}

// 📸 Checkpoint is an in-memory snapshot of a path set
type Checkpoint struct {
	ID       string
	entries  map[string]Entry
	consumed bool
}

// Paths returns the checkpointed paths, sorted.
func (c *Checkpoint) Paths() []string {
	paths := make([]string, 0, len(c.entries))
	for p := range c.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Original returns the captured content of path. ok is false when the path was
// not captured or did not exist.
func (c *Checkpoint) Original(path string) ([]byte, bool) {
	e, ok := c.entries[path]
	if !ok || !e.Existed {
		return nil, false
	}
	return e.Content, true
}

// Entry returns the raw captured entry for path.
func (c *Checkpoint) Entry(path string) (Entry, bool) {
	e, ok := c.entries[path]
	return e, ok
}

// Consumed reports whether the checkpoint was already restored or discarded.
func (c *Checkpoint) Consumed() bool {
	return c.consumed
}

// 🗄️ Store takes and restores checkpoints on a filesystem
type Store struct {
	fs billy.Filesystem
}

// 🏭 NewStore creates a store backed by fs
func NewStore(fs billy.Filesystem) *Store {
	return &Store{fs: fs}
}

// 📸 Create reads every path before returning. Paths that do not exist are
// recorded as absent. Any other failure captures nothing and returns *IOError.
func (s *Store) Create(ctx context.Context, paths []string) (*Checkpoint, error) {
	cp := &Checkpoint{
		ID:      uuid.NewString(),
		entries: make(map[string]Entry, len(paths)),
	}

	for _, p := range paths {
		if _, ok := cp.entries[p]; ok {
			continue
		}
		entry, err := s.capture(p)
		if err != nil {
			return nil, err
		}
		cp.entries[p] = entry
	}

	zerolog.Ctx(ctx).Debug().
		Str("checkpoint", cp.ID).
		Int("paths", len(cp.entries)).
		Msg("checkpoint created")
	return cp, nil
}

func (s *Store) capture(path string) (Entry, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Entry{Existed: false}, nil
		}
		return Entry{}, &IOError{Path: path, Op: "stat", Err: err}
	}
	if info.IsDir() {
		return Entry{}, &IOError{Path: path, Op: "read", Err: errors.New("is a directory")}
	}
	content, err := util.ReadFile(s.fs, path)
	if err != nil {
		return Entry{}, &IOError{Path: path, Op: "read", Err: err}
	}
	return Entry{Existed: true, Content: content, Mode: info.Mode().Perm()}, nil
}

// ⏪ Restore puts every path back the way it was captured. It keeps going
// past failures and reports the paths it could not restore.
func (s *Store) Restore(ctx context.Context, cp *Checkpoint) error {
	logger := zerolog.Ctx(ctx)
	if cp.consumed {
		return errors.Errorf("checkpoint %s already consumed", cp.ID)
	}
	cp.consumed = true

	failed := &PartialRollbackError{}
	for _, p := range cp.Paths() {
		e := cp.entries[p]
		var err error
		if e.Existed {
			err = s.write(p, e)
		} else {
			err = s.fs.Remove(p)
			if errors.Is(err, os.ErrNotExist) {
				err = nil
			}
		}
		if err != nil {
			logger.Error().Err(err).Str("path", p).Msg("restoring file")
			failed.Paths = append(failed.Paths, p)
			failed.Errs = append(failed.Errs, err)
			continue
		}
		logger.Debug().Str("path", p).Bool("existed", e.Existed).Msg("restored file")
	}

	cp.entries = nil
	if len(failed.Paths) > 0 {
		return failed
	}
	return nil
}

func (s *Store) write(path string, e Entry) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf("creating parent of %s: %w", path, err)
		}
	}
	mode := e.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := util.WriteFile(s.fs, path, e.Content, mode); err != nil {
		return errors.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// 🗑️ Discard drops the captured bytes. Discarding twice is a no-op.
func (s *Store) Discard(ctx context.Context, cp *Checkpoint) {
	if cp.consumed {
		return
	}
	cp.consumed = true
	cp.entries = nil
	zerolog.Ctx(ctx).Debug().Str("checkpoint", cp.ID).Msg("checkpoint discarded")
}

// 💥 IOError means a path could not be captured
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return "checkpoint " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// 💥 PartialRollbackError lists the paths a restore could not put back. The
// tree is in a mixed state and needs manual attention.
type PartialRollbackError struct {
	Paths []string
	Errs  []error
}

func (e *PartialRollbackError) Error() string {
	return "partial rollback, could not restore: " + strings.Join(e.Paths, ", ")
}

func (e *PartialRollbackError) Unwrap() []error {
	return e.Errs
}
