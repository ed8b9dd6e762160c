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
	"github.com/walteh/devcontainer-sync/pkg/customize"
)

func NewStripCmd(ro *opts.RootOpts) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "strip",
		Short: "Strip the firewall feature from the devcontainer",
		Long: `Strip removes the firewall feature from the synced devcontainer and commits it.
The files are checkpointed first; if any rewrite or the validation fails,
every file is restored and nothing is committed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			startSync(ctx, ro, "strip")
			defer ro.Logger.EndSyncOperation(ctx)

			res, err := ro.Operator.Strip(ctx, message)
			reportCustomization(ctx, ro, res)
			return err
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", customize.DefaultCommitTitle, "commit title")

	return cmd
}
