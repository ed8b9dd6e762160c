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

	"github.com/walteh/devcontainer-sync/pkg/manifest"
)

// DefaultCommitTitle is used when the caller has no better title.
const DefaultCommitTitle = "Strip firewall configuration from devcontainer"

// 📝 CommitMessage renders a commit message from an applied manifest
func CommitMessage(title string, m *manifest.Manifest) string {
	if title == "" {
		title = DefaultCommitTitle
	}
	var b strings.Builder
	b.WriteString(title)
	if m == nil {
		return b.String()
	}
	if len(m.Changes) > 0 {
		b.WriteString("\n\nChanges made:")
		for _, c := range m.Changes {
			b.WriteString("\n- ")
			b.WriteString(c)
		}
	}
	if len(m.PatternsNotFound) > 0 {
		b.WriteString("\n\nPatterns not found:")
		for _, p := range m.PatternsNotFound {
			b.WriteString("\n- ")
			b.WriteString(p)
		}
	}
	return b.String()
}
