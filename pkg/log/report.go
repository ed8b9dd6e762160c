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

package log

import (
	"context"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/walteh/devcontainer-sync/pkg/manifest"
	"github.com/walteh/devcontainer-sync/pkg/pattern"
)

// 📊 RenderKindTable writes one row per pattern kind that removed something
func RenderKindTable(w io.Writer, m *manifest.Manifest) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"KIND", "REMOVED"})
	total := 0
	for _, k := range pattern.Kinds() {
		n := m.KindCounts[k]
		if n == 0 {
			continue
		}
		total += n
		t.AppendRow(table.Row{k.String(), n})
	}
	t.AppendFooter(table.Row{"TOTAL", total})
	t.Render()
}

// 📋 Report prints the files, kind totals and warnings of an applied manifest
func (l *Logger) Report(ctx context.Context, m *manifest.Manifest, v manifest.ValidationResult) {
	if m == nil {
		return
	}
	for _, p := range m.FilesModified {
		l.LogFileOperation(ctx, FileOperation{Path: p, Status: "modified", Changes: changesFor(m, p)})
	}
	for _, p := range m.FilesRemoved {
		l.LogFileOperation(ctx, FileOperation{Path: p, Status: "removed", IsRemoved: true})
	}
	if len(m.KindCounts) > 0 {
		l.LogNewline()
		l.mu.Lock()
		RenderKindTable(l.console, m)
		l.mu.Unlock()
	}
	for _, w := range v.Warnings {
		l.Warning(w)
	}
}

func changesFor(m *manifest.Manifest, path string) int {
	n := 0
	for _, c := range m.Changes {
		if strings.HasPrefix(c, path+":") {
			n++
		}
	}
	return n
}
