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

package testutils

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// Context returns a context carrying a zerolog logger that writes to t.
func Context(t testing.TB) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

// WriteFiles seeds fs with path to content pairs.
func WriteFiles(t testing.TB, fs billy.Filesystem, files map[string]string) {
	t.Helper()
	for path, content := range files {
		require.NoError(t, util.WriteFile(fs, path, []byte(content), 0o644), "writing %s", path)
	}
}

// Snapshot reads every regular file under fs into a map.
func Snapshot(t testing.TB, fs billy.Filesystem) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := util.Walk(fs, "/", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		data, err := util.ReadFile(fs, path)
		if err != nil {
			return err
		}
		out[strings.TrimPrefix(path, "/")] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}
