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
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/walteh/devcontainer-sync/cmd/devcontainer-sync/opts"
	"github.com/walteh/devcontainer-sync/pkg/operation"
)

func NewStatusCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check whether the devcontainer is synced and up to date",
		Long: `Status reports the local sync state and asks the upstream host whether
the devcontainer changed since it was last fetched.
It will:
1. Check the devcontainer directory, remote and tracking branch
2. Read the last fetched upstream commit touching the devcontainer
3. Compare it with the latest upstream commit touching the devcontainer`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			report, err := ro.Operator.Status(ctx)
			if err != nil {
				return err
			}

			renderStatus(cmd.OutOrStdout(), report)

			l := ro.Logger
			switch {
			case !report.Initialized():
				l.Warning("Devcontainer sync is not initialized")
				l.Bullet("Run 'devcontainer-sync init' to set it up")
			case report.UpstreamErr != nil:
				l.Warningf("Could not check the upstream: %v", report.UpstreamErr)
			case !report.Upstream.Fetched():
				l.Info("The upstream has not been fetched yet")
				l.Bullet("Run 'devcontainer-sync update' to fetch it")
			case report.Upstream.UpToDate():
				l.Success("Devcontainer is up to date")
			default:
				c := report.Upstream.Upstream
				l.Infof("Update available: %s %s", c.Short(), c.Title())
				l.Bullet("Run 'devcontainer-sync update' to merge it")
			}
			return nil
		},
	}

	return cmd
}

func presence(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

// 📊 renderStatus writes the report as a table
func renderStatus(w io.Writer, r *operation.StatusReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ITEM", "NAME", "OK"})

	t.AppendRow(table.Row{"devcontainer", r.Prefix, presence(r.PrefixExists)})
	remote := r.Remote
	if r.RemoteURL != "" {
		remote += " (" + r.RemoteURL + ")"
	}
	t.AppendRow(table.Row{"remote", remote, presence(r.RemoteURL != "")})
	t.AppendRow(table.Row{"tracking branch", r.TrackingBranch, presence(r.TrackingExists)})
	t.AppendRow(table.Row{"current branch", r.CurrentBranch, ""})

	if r.Upstream != nil {
		t.AppendSeparator()
		local := r.Upstream.Local
		if len(local) > 7 {
			local = local[:7]
		}
		if local == "" {
			local = "-"
		}
		t.AppendRow(table.Row{"fetched commit", local, ""})
		up := r.Upstream.Upstream
		t.AppendRow(table.Row{"upstream commit", up.Short() + " " + up.Date.Format("2006-01-02"), presence(r.Upstream.UpToDate())})
	}
	t.Render()
}
