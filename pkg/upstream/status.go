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

package upstream

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// LocalCommit returns the hash of the last fetched upstream commit touching
// the devcontainer, or "" if nothing was fetched yet.
type LocalCommit func(ctx context.Context) (string, error)

// 📊 Status compares what was last fetched with what the upstream has now
type Status struct {
	Local    string
	Upstream Commit
}

// UpToDate reports whether the fetched commit is the upstream's latest.
func (s Status) UpToDate() bool {
	return s.Local != "" && s.Local == s.Upstream.SHA
}

// Fetched reports whether the upstream was ever fetched locally.
func (s Status) Fetched() bool {
	return s.Local != ""
}

// 🔄 Compare asks the provider and the local repository at the same time
func Compare(ctx context.Context, p Provider, ref Ref, local LocalCommit) (Status, error) {
	logger := zerolog.Ctx(ctx)

	var st Status
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := p.LatestCommit(gctx, ref)
		if err != nil {
			return errors.Errorf("querying %s: %w", p.Name(), err)
		}
		st.Upstream = c
		return nil
	})
	g.Go(func() error {
		sha, err := local(gctx)
		if err != nil {
			return errors.Errorf("reading local commit: %w", err)
		}
		st.Local = sha
		return nil
	})
	if err := g.Wait(); err != nil {
		return Status{}, err
	}

	logger.Debug().
		Str("local", st.Local).
		Str("upstream", st.Upstream.SHA).
		Bool("up_to_date", st.UpToDate()).
		Msg("compared upstream")
	return st, nil
}
