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

package git

import (
	"context"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrRemoteMissing is returned when an operation needs a remote that is not configured.
var ErrRemoteMissing = errors.Base("remote does not exist")

// 🌐 FetchError is a fetch that failed, usually a network problem
type FetchError struct {
	Remote string
	Err    error
}

func (e *FetchError) Error() string {
	return "fetching " + e.Remote + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Remote is one configured remote.
type Remote struct {
	Name string
	URL  string
}

// 🔗 Remotes manages git remotes
type Remotes struct {
	runner Runner
}

// 🏭 NewRemotes creates a remote manager
func NewRemotes(runner Runner) *Remotes {
	return &Remotes{runner: runner}
}

// Exists reports whether name is a configured remote.
func (r *Remotes) Exists(ctx context.Context, name string) bool {
	_, err := r.runner.Run(ctx, "remote", "get-url", name)
	return err == nil
}

// Add adds a remote and checks that git now knows it.
func (r *Remotes) Add(ctx context.Context, name, url string) error {
	if _, err := r.runner.Run(ctx, "remote", "add", name, url); err != nil {
		return errors.Errorf("adding remote %s: %w", name, err)
	}
	if !r.Exists(ctx, name) {
		return errors.Errorf("remote %s with url %s was not added", name, url)
	}
	return nil
}

// Remove deletes a remote.
func (r *Remotes) Remove(ctx context.Context, name string) error {
	if !r.Exists(ctx, name) {
		return errors.Errorf("removing remote %s: %w", name, ErrRemoteMissing)
	}
	if _, err := r.runner.Run(ctx, "remote", "remove", name); err != nil {
		return errors.Errorf("removing remote %s: %w", name, err)
	}
	return nil
}

// Fetch fetches a remote. Failures of the fetch itself are *FetchError.
func (r *Remotes) Fetch(ctx context.Context, name string) error {
	if !r.Exists(ctx, name) {
		return errors.Errorf("fetching %s: %w", name, ErrRemoteMissing)
	}
	if _, err := r.runner.Run(ctx, "fetch", name); err != nil {
		return &FetchError{Remote: name, Err: err}
	}
	return nil
}

// List returns every remote once, in git's order.
func (r *Remotes) List(ctx context.Context) ([]Remote, error) {
	res, err := r.runner.Run(ctx, "remote", "-v")
	if err != nil {
		return nil, errors.Errorf("listing remotes: %w", err)
	}
	return parseRemotes(res.Stdout), nil
}

func parseRemotes(out string) []Remote {
	remotes := []Remote{}
	seen := map[string]bool{}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || seen[fields[0]] {
			continue
		}
		seen[fields[0]] = true
		remotes = append(remotes, Remote{Name: fields[0], URL: fields[1]})
	}
	return remotes
}
