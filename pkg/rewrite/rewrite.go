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

// Package rewrite strips pattern matches out of file content. Rewriters are
// pure: bytes in, bytes and a manifest fragment out.
package rewrite

import (
	"github.com/walteh/devcontainer-sync/pkg/manifest"
	"github.com/walteh/devcontainer-sync/pkg/pattern"
)

// ✂️ Rewriter strips one kind of file
type Rewriter interface {
	// Kinds lists the rule kinds the rewriter understands.
	Kinds() []pattern.Kind
	// Strip removes every match of rules from content. Unchanged input is
	// returned as the same bytes.
	Strip(path string, content []byte, rules []pattern.Rule) ([]byte, *manifest.Manifest, error)
}

// 💥 ParseError means content could not be parsed as its expected format
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "parsing " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
