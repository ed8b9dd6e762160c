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
	"path/filepath"

	"github.com/otiai10/copy"
	"github.com/rs/zerolog"
)

// BackupSuffix is appended to the prefix to name the backup directory.
const BackupSuffix = ".backup"

// 💾 backup replaces <prefix>.backup with a copy of the devcontainer and
// returns its repository-relative path
func (o *Operator) backup(ctx context.Context) (string, error) {
	prefix := o.cfg.Local.Prefix
	dst := prefix + BackupSuffix

	exists, err := o.prefixExists()
	if err != nil {
		return "", err
	}
	if !exists {
		return "", newError(CategoryFileSystem, "no "+prefix+" directory found to back up", suggestInit)
	}

	root := o.runner.Dir()
	if err := os.RemoveAll(filepath.Join(root, dst)); err != nil {
		return "", &Error{Category: CategoryFileSystem, Message: "removing existing backup " + dst, Suggestion: suggestFileSystem, Err: err}
	}
	if err := copy.Copy(filepath.Join(root, prefix), filepath.Join(root, dst), copy.Options{PreserveTimes: true}); err != nil {
		return "", &Error{Category: CategoryFileSystem, Message: "copying " + prefix + " to " + dst, Suggestion: "Check file permissions and available disk space", Err: err}
	}

	zerolog.Ctx(ctx).Info().Str("path", dst).Msg("backup created")
	return dst, nil
}
