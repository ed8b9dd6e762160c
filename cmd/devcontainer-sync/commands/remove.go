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

package commands

import (
	"github.com/spf13/cobra"

	"github.com/walteh/devcontainer-sync/cmd/devcontainer-sync/opts"
	"github.com/walteh/devcontainer-sync/pkg/operation"
)

func NewRemoveCmd(ro *opts.RootOpts) *cobra.Command {
	var keepFiles bool

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove the devcontainer sync from this repository",
		Long: `Remove undoes init.
It will:
1. Remove the upstream remote
2. Delete the tracking and split branches
3. Unless --keep-files is set, delete the devcontainer directory in its own commit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			startSync(ctx, ro, "remove")
			defer ro.Logger.EndSyncOperation(ctx)

			if err := ro.Operator.Remove(ctx, operation.RemoveOptions{KeepFiles: keepFiles}); err != nil {
				return err
			}

			ro.Logger.LogNewline()
			ro.Logger.Success("Successfully removed devcontainer sync!")
			ro.Logger.Bullet("Removed '" + ro.Config.Upstream.Remote + "' remote and tracking branches")
			if keepFiles {
				ro.Logger.Bullet("Kept " + ro.Config.Local.Prefix + " (--keep-files specified)")
			} else {
				ro.Logger.Bullet("Removed " + ro.Config.Local.Prefix + " and committed the removal")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepFiles, "keep-files", false, "keep the devcontainer directory")

	return cmd
}
