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

func NewInitCmd(ro *opts.RootOpts) *cobra.Command {
	var (
		stripFirewall bool
		force         bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Add the upstream devcontainer to this repository",
		Long: `Init brings the upstream .devcontainer directory into this repository.
It will:
1. Add the upstream remote and fetch it
2. Create a tracking branch for the upstream main branch
3. Split the devcontainer history into its own branch
4. Add it to the main branch as a squashed git subtree
5. Optionally strip the firewall feature and commit the result`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			startSync(ctx, ro, "init")
			defer ro.Logger.EndSyncOperation(ctx)

			res, err := ro.Operator.Init(ctx, operation.InitOptions{
				StripFirewall: stripEnabled(cmd, stripFirewall, ro),
				Force:         force,
			})
			if err != nil {
				return err
			}
			reportCustomization(ctx, ro, res)

			up := ro.Config.Upstream
			ro.Logger.LogNewline()
			ro.Logger.Success("Successfully initialized devcontainer sync!")
			ro.Logger.Bullet("Created " + ro.Config.Local.Prefix + " from " + up.URL)
			ro.Logger.Bullet("Remote '" + up.Remote + "' and tracking branch '" + up.Branch + "' are ready for updates")
			ro.Logger.LogNewline()
			ro.Logger.Info("Next steps:")
			ro.Logger.Bullet("Run 'devcontainer-sync update' to get the latest configurations")
			ro.Logger.Bullet("Run 'devcontainer-sync remove' to clean up if no longer needed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&stripFirewall, "strip-firewall", false, "remove the firewall feature after syncing")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing devcontainer without asking")

	return cmd
}
