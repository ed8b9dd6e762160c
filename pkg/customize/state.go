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

package customize

import (
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/devcontainer-sync/pkg/checkpoint"
	"github.com/walteh/devcontainer-sync/pkg/manifest"
)

// 🚦 State is a step of a customization run
type State int

const (
	StateIdle State = iota
	StateCheckpointed
	StateRewriting
	StateValidating
	StateCommitted
	StateRolledBack
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCheckpointed:
		return "checkpointed"
	case StateRewriting:
		return "rewriting"
	case StateValidating:
		return "validating"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateRolledBack || s == StateFailed
}

var transitions = map[State][]State{
	StateIdle:         {StateCheckpointed, StateFailed},
	StateCheckpointed: {StateRewriting, StateRolledBack, StateFailed},
	StateRewriting:    {StateValidating, StateRolledBack, StateFailed},
	StateValidating:   {StateCommitted, StateRolledBack, StateFailed},
	StateRolledBack:   {},
	StateCommitted:    {},
	StateFailed:       {},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// 📦 Outcome is the result of one run
type Outcome struct {
	State      State
	Success    bool
	RolledBack bool
	// Manifest holds what was applied. It is empty unless the run committed.
	Manifest *manifest.Manifest
	// Attempted holds what the rewriters tried, also after a rollback.
	Attempted    *manifest.Manifest
	Validation   manifest.ValidationResult
	CheckpointID string
	// History lists every state the run passed through.
	History []State
	Err     error
}

// 💥 ValidationFailure means the rewritten files failed validation
type ValidationFailure struct {
	Errors []string
}

func (e *ValidationFailure) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// IsPartialRollback reports whether err left the tree in a mixed state.
func IsPartialRollback(err error) bool {
	var p *checkpoint.PartialRollbackError
	return errors.As(err, &p)
}
