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
	"os"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/devcontainer-sync/pkg/checkpoint"
	"github.com/walteh/devcontainer-sync/pkg/customize"
	"github.com/walteh/devcontainer-sync/pkg/git"
	"github.com/walteh/devcontainer-sync/pkg/rewrite"
)

// 🏷️ Category groups failures by what the user has to fix
type Category int

const (
	CategoryRepository Category = iota + 1
	CategoryNetwork
	CategoryGit
	CategoryFileSystem
)

func (c Category) String() string {
	switch c {
	case CategoryRepository:
		return "Repository"
	case CategoryNetwork:
		return "Network"
	case CategoryGit:
		return "Git operation"
	case CategoryFileSystem:
		return "File system"
	default:
		return "Unknown"
	}
}

// ExitCode is the process exit status for the category.
func (c Category) ExitCode() int {
	if c < CategoryRepository || c > CategoryFileSystem {
		return 1
	}
	return int(c)
}

// 💥 Error is a failed command step
type Error struct {
	Category   Category
	Message    string
	Suggestion string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Category.String() + " error: " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

const (
	suggestNotRepository = "Run this command from within a git repository or initialize one with 'git init'"
	suggestNoCommits     = "Make at least one commit before running this command"
	suggestNetwork       = "Check your network connection and that the upstream repository is reachable"
	suggestGit           = "Check the repository state with 'git status' and try again"
	suggestFileSystem    = "Check file permissions and try again"
	suggestInit          = "Run 'devcontainer-sync init' first to create the devcontainer configuration"
	suggestForce         = "Use --force to skip this check or back up the existing files first"
	suggestRestored      = "The devcontainer was restored unchanged; compare the pattern catalog with the upstream files"
	suggestPartial       = "Restore the listed files with 'git checkout -- <path>' before retrying"
)

// 🔍 classify wraps err in an *Error, picking the category from its type
func classify(msg string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *Error
	if errors.As(err, &opErr) {
		return err
	}

	var (
		fetchErr   *git.FetchError
		ioErr      *checkpoint.IOError
		partialErr *checkpoint.PartialRollbackError
		parseErr   *rewrite.ParseError
		validErr   *customize.ValidationFailure
	)
	e := &Error{Message: msg, Err: err}
	switch {
	case errors.Is(err, git.ErrNotRepository):
		e.Category, e.Suggestion = CategoryRepository, suggestNotRepository
	case errors.Is(err, git.ErrNoCommits):
		e.Category, e.Suggestion = CategoryRepository, suggestNoCommits
	case errors.As(err, &fetchErr):
		e.Category, e.Suggestion = CategoryNetwork, suggestNetwork
	case errors.As(err, &partialErr):
		e.Category, e.Suggestion = CategoryFileSystem, suggestPartial
	case errors.As(err, &validErr):
		e.Category, e.Suggestion = CategoryFileSystem, suggestRestored
	case errors.As(err, &ioErr), errors.As(err, &parseErr), errors.Is(err, os.ErrPermission), errors.Is(err, os.ErrNotExist):
		e.Category, e.Suggestion = CategoryFileSystem, suggestFileSystem
	default:
		e.Category, e.Suggestion = CategoryGit, suggestGit
	}
	return e
}

func newError(c Category, msg, suggestion string) error {
	return &Error{Category: c, Message: msg, Suggestion: suggestion}
}
