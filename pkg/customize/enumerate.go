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
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gitlab.com/tozd/go/errors"
)

// 🔍 Globs select candidate files relative to the enumeration root
type Globs struct {
	Structured []string
	Lines      []string
}

// DefaultGlobs finds the devcontainer descriptor, Dockerfiles and shell scripts.
var DefaultGlobs = Globs{
	Structured: []string{"**/devcontainer.json"},
	Lines:      []string{"**/Dockerfile*", "**/*.sh"},
}

// 🔍 Enumerate walks root and sorts regular files into a FileSet. Returned
// paths are relative to the filesystem, not to root. A structured match wins
// over a line match.
func Enumerate(fs billy.Filesystem, root string, globs Globs) (FileSet, error) {
	var set FileSet
	err := util.Walk(fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return errors.Errorf("relativizing %s: %w", p, err)
		}
		rel = filepath.ToSlash(rel)
		p = strings.TrimPrefix(filepath.ToSlash(p), "/")

		switch {
		case matchAny(globs.Structured, rel):
			set.Structured = append(set.Structured, p)
		case matchAny(globs.Lines, rel):
			set.Lines = append(set.Lines, p)
		}
		return nil
	})
	if err != nil {
		return FileSet{}, errors.Errorf("enumerating %s: %w", root, err)
	}
	return set, nil
}

func matchAny(globs []string, p string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, p); err == nil && ok {
			return true
		}
	}
	return false
}
