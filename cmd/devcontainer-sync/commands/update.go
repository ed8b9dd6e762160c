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

func NewUpdateCmd(ro *opts.RootOpts) *cobra.Command {
	var (
		backup        bool
		force         bool
		stripFirewall bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Merge the latest upstream devcontainer",
		Long: `Update merges upstream changes into the existing devcontainer subtree.
It will:
1. Optionally back up the current devcontainer
2. Fetch the upstream and reset the tracking branch to it
3. Split the updated devcontainer history
4. Merge it into the subtree on the main branch
5. Optionally strip the firewall feature and commit the result`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			startSync(ctx, ro, "update")
			defer ro.Logger.EndSyncOperation(ctx)

			res, err := ro.Operator.Update(ctx, operation.UpdateOptions{
				Backup:        backup,
				Force:         force,
				StripFirewall: stripEnabled(cmd, stripFirewall, ro),
			})
			if err != nil {
				return err
			}
			reportCustomization(ctx, ro, res)

			ro.Logger.LogNewline()
			ro.Logger.Success("Successfully updated devcontainer configurations!")
			if res.BackupPath != "" {
				ro.Logger.Bullet("Backup created at " + res.BackupPath)
			}
			ro.Logger.Bullet("Merged latest changes from " + ro.Config.Upstream.URL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&backup, "backup", false, "copy the devcontainer to <prefix>.backup first")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "update even with uncommitted devcontainer changes")
	cmd.Flags().BoolVar(&stripFirewall, "strip-firewall", false, "remove the firewall feature after merging")

	return cmd
}
