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
	"strings"

	"github.com/rs/zerolog"

	"github.com/walteh/devcontainer-sync/pkg/upstream"
)

// 📊 StatusReport is the sync state of the repository
type StatusReport struct {
	Prefix         string
	PrefixExists   bool
	Remote         string
	RemoteURL      string // empty when the remote is not configured
	TrackingBranch string
	TrackingExists bool
	CurrentBranch  string

	// Upstream is nil when the remote is missing or the query failed
	Upstream    *upstream.Status
	UpstreamErr error
}

// Initialized reports whether init has run in this repository.
func (r *StatusReport) Initialized() bool {
	return r.RemoteURL != "" && r.TrackingExists && r.PrefixExists
}

// 🔍 Status inspects the local sync state and asks the upstream host whether
// the devcontainer changed since the last fetch. Upstream failures are
// reported in the result, not returned.
func (o *Operator) Status(ctx context.Context) (*StatusReport, error) {
	logger := zerolog.Ctx(ctx)
	up, loc := o.cfg.Upstream, o.cfg.Local

	if err := o.repo.Validate(ctx); err != nil {
		return nil, classify("not a git repository", err)
	}

	exists, err := o.prefixExists()
	if err != nil {
		return nil, err
	}
	current, err := o.branches.Current(ctx)
	if err != nil {
		return nil, classify("reading current branch", err)
	}
	remotes, err := o.remotes.List(ctx)
	if err != nil {
		return nil, classify("listing remotes", err)
	}

	report := &StatusReport{
		Prefix:         loc.Prefix,
		PrefixExists:   exists,
		Remote:         up.Remote,
		TrackingBranch: up.Branch,
		TrackingExists: o.branches.Exists(ctx, up.Branch),
		CurrentBranch:  current,
	}
	for _, r := range remotes {
		if r.Name == up.Remote {
			report.RemoteURL = r.URL
		}
	}
	if report.RemoteURL == "" {
		return report, nil
	}

	provider := o.upstream
	if provider == nil {
		provider, err = upstream.ForRepo(ctx, report.RemoteURL)
		if err != nil {
			logger.Debug().Err(err).Msg("no upstream provider")
			report.UpstreamErr = err
			return report, nil
		}
	}

	ref := upstream.Ref{
		Repo:   report.RemoteURL,
		Branch: strings.TrimPrefix(up.RemoteBranch, up.Remote+"/"),
		Path:   loc.Prefix,
	}
	st, err := upstream.Compare(ctx, provider, ref, func(ctx context.Context) (string, error) {
		if !o.branches.RefExists(ctx, up.RemoteBranch) {
			return "", nil
		}
		return o.branches.LastCommit(ctx, up.RemoteBranch, loc.Prefix)
	})
	if err != nil {
		report.UpstreamErr = err
		return report, nil
	}
	report.Upstream = &st
	return report, nil
}
