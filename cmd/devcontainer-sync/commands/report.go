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
	"context"

	"github.com/spf13/cobra"

	"github.com/walteh/devcontainer-sync/cmd/devcontainer-sync/opts"
	"github.com/walteh/devcontainer-sync/pkg/log"
	"github.com/walteh/devcontainer-sync/pkg/operation"
)

// stripEnabled lets an explicit flag win over the config file.
func stripEnabled(cmd *cobra.Command, flag bool, ro *opts.RootOpts) bool {
	if cmd.Flags().Changed("strip-firewall") {
		return flag
	}
	return ro.Config.StripFirewall
}

func startSync(ctx context.Context, ro *opts.RootOpts, command string) {
	ro.Logger.Header(command)
	ro.Logger.StartSyncOperation(ctx, log.SyncOperation{
		Command: command,
		Remote:  ro.Config.Upstream.Remote,
		Branch:  ro.Config.Upstream.RemoteBranch,
		Prefix:  ro.Config.Local.Prefix,
	})
}

// 📋 reportCustomization prints what firewall stripping did, if it ran
func reportCustomization(ctx context.Context, ro *opts.RootOpts, res *operation.Result) {
	if res == nil || res.Customization == nil {
		return
	}
	out := res.Customization
	l := ro.Logger

	l.LogNewline()
	if !out.Success {
		l.Warningf("Firewall stripping was rolled back: %v", out.Err)
		if ro.Verbose {
			for _, e := range out.Validation.Errors {
				l.Bullet(e)
			}
		}
		return
	}
	if out.Manifest == nil || out.Manifest.Empty() {
		l.Info("No firewall configurations found to strip")
		return
	}

	l.Report(ctx, out.Manifest, out.Validation)
	if ro.Verbose {
		for _, c := range out.Manifest.Changes {
			l.Bullet(c)
		}
	}
	if res.Committed {
		l.Success("Committed firewall customization")
	}
}
