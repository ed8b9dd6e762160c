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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/devcontainer-sync/pkg/config"
	"github.com/walteh/devcontainer-sync/pkg/git"
	"github.com/walteh/devcontainer-sync/pkg/testutils"
	"github.com/walteh/devcontainer-sync/pkg/upstream"
)

// MockRunner answers git invocations keyed by their space-joined arguments.
type MockRunner struct {
	mock.Mock
	dir string
}

func (m *MockRunner) Dir() string {
	return m.dir
}

func (m *MockRunner) Run(ctx context.Context, args ...string) (git.Result, error) {
	result := m.Called(strings.Join(args, " "))
	return result.Get(0).(git.Result), result.Error(1)
}

// ok expects each command once and lets it succeed.
func (m *MockRunner) ok(cmds ...string) {
	for _, c := range cmds {
		m.On("Run", c).Return(git.Result{}, nil).Once()
	}
}

func (m *MockRunner) stdout(cmd, out string) {
	m.On("Run", cmd).Return(git.Result{Stdout: out}, nil).Once()
}

func (m *MockRunner) fail(cmd string) {
	m.On("Run", cmd).Return(git.Result{}, &git.ExecError{
		Args: strings.Fields(cmd),
		Err:  errors.New("exit status 1"),
	}).Once()
}

func (m *MockRunner) commands() []string {
	out := []string{}
	for _, c := range m.Calls {
		out = append(out, c.Arguments.String(0))
	}
	return out
}

type MockProgress struct {
	mock.Mock
}

func (m *MockProgress) Start(step string) {
	m.Called(step)
}

func (m *MockProgress) Stop(step string, err error) {
	m.Called(step, err)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) LatestCommit(ctx context.Context, ref upstream.Ref) (upstream.Commit, error) {
	result := m.Called(ctx, ref)
	return result.Get(0).(upstream.Commit), result.Error(1)
}

const upstreamURL = "https://github.com/anthropics/claude-code.git"

const devcontainerJSON = `{
  "name": "Claude Code Sandbox",
  "build": { "dockerfile": "Dockerfile" },
  "runArgs": ["--cap-add=NET_ADMIN", "--cap-add=NET_RAW"],
  "postStartCommand": "sudo /usr/local/bin/init-firewall.sh",
  "waitFor": "postStartCommand"
}
`

const dockerfile = `FROM node:20

RUN apt-get update && apt-get install -y --no-install-recommends \
  less \
  git \
  iptables \
  ipset \
  iproute2 \
  dnsutils \
  aggregate \
  jq \
  && apt-get clean && rm -rf /var/lib/apt/lists/*

# Copy and set up firewall script
COPY init-firewall.sh /usr/local/bin/
USER root
RUN chmod +x /usr/local/bin/init-firewall.sh
USER node

ENV SHELL=/bin/zsh
`

func newRepoDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	return dir
}

func writeDevcontainer(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	testutils.WriteFiles(t, osfs.New(dir), files)
}

func newOperator(t *testing.T, r *MockRunner, opts ...func(*Options)) *Operator {
	t.Helper()
	o := Options{
		Config: config.Default(),
		Runner: r,
		FS:     osfs.New(r.dir),
	}
	for _, fn := range opts {
		fn(&o)
	}
	op, err := New(o)
	require.NoError(t, err)
	return op
}

func requireCategory(t *testing.T, err error, want Category) *Error {
	t.Helper()
	require.Error(t, err)
	var opErr *Error
	require.True(t, errors.As(err, &opErr), "error should be an *Error: %v", err)
	assert.Equal(t, want, opErr.Category, "category of %q", err.Error())
	return opErr
}

var validRepo = []string{"rev-parse --git-dir", "rev-parse --verify HEAD"}

func TestNewRequiresDependencies(t *testing.T) {
	r := &MockRunner{dir: t.TempDir()}
	tests := []struct {
		name        string
		opts        Options
		errContains string
	}{
		{name: "no_config", opts: Options{Runner: r, FS: osfs.New(r.dir)}, errContains: "config is required"},
		{name: "no_runner", opts: Options{Config: config.Default(), FS: osfs.New(r.dir)}, errContains: "git runner is required"},
		{name: "no_fs", opts: Options{Config: config.Default(), Runner: r}, errContains: "filesystem is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestInit(t *testing.T) {
	ctx := testutils.Context(t)
	r := &MockRunner{dir: newRepoDir(t)}
	r.ok(validRepo...)
	r.fail("remote get-url claude")
	r.ok(
		"remote add claude "+upstreamURL,
		"remote get-url claude",
		"remote get-url claude",
		"fetch claude",
		"branch -f claude-main claude/main",
		"checkout claude-main",
		"subtree split --prefix=.devcontainer -b devcontainer",
		"checkout master",
		"subtree add --prefix=.devcontainer --squash devcontainer",
	)

	progress := &MockProgress{}
	progress.On("Start", mock.Anything).Return()
	progress.On("Stop", mock.Anything, nil).Return()

	res, err := newOperator(t, r, func(o *Options) { o.Progress = progress }).Init(ctx, InitOptions{})
	require.NoError(t, err)
	assert.Nil(t, res.Customization, "no strip was requested")

	assert.Equal(t, []string{
		"rev-parse --git-dir",
		"rev-parse --verify HEAD",
		"remote get-url claude",
		"remote add claude " + upstreamURL,
		"remote get-url claude",
		"remote get-url claude",
		"fetch claude",
		"branch -f claude-main claude/main",
		"checkout claude-main",
		"subtree split --prefix=.devcontainer -b devcontainer",
		"checkout master",
		"subtree add --prefix=.devcontainer --squash devcontainer",
	}, r.commands())
	progress.AssertNumberOfCalls(t, "Start", 7)
	progress.AssertCalled(t, "Start", "Fetching repository")
	r.AssertExpectations(t)
}

func TestInitExistingRemoteIsReused(t *testing.T) {
	ctx := testutils.Context(t)
	r := &MockRunner{dir: newRepoDir(t)}
	r.ok(validRepo...)
	r.ok(
		"remote get-url claude",
		"remote get-url claude",
		"fetch claude",
		"branch -f claude-main claude/main",
		"checkout claude-main",
		"subtree split --prefix=.devcontainer -b devcontainer",
		"checkout master",
		"subtree add --prefix=.devcontainer --squash devcontainer",
	)

	_, err := newOperator(t, r).Init(ctx, InitOptions{})
	require.NoError(t, err)
	assert.NotContains(t, r.commands(), "remote add claude "+upstreamURL)
	r.AssertExpectations(t)
}

func TestInitFailures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, r *MockRunner)
		opts     InitOptions
		confirm  ConfirmFunc
		category Category
		exitCode int
		check    func(t *testing.T, r *MockRunner, opErr *Error)
	}{
		{
			name:     "not_a_repository",
			setup:    func(t *testing.T, r *MockRunner) { r.dir = t.TempDir() },
			category: CategoryRepository,
			exitCode: 1,
			check: func(t *testing.T, r *MockRunner, opErr *Error) {
				assert.Empty(t, r.commands(), "git is never run outside a repository")
				assert.Equal(t, suggestNotRepository, opErr.Suggestion)
			},
		},
		{
			name: "no_commits",
			setup: func(t *testing.T, r *MockRunner) {
				r.ok("rev-parse --git-dir")
				r.fail("rev-parse --verify HEAD")
			},
			category: CategoryRepository,
			exitCode: 1,
			check: func(t *testing.T, r *MockRunner, opErr *Error) {
				assert.Equal(t, suggestNoCommits, opErr.Suggestion)
			},
		},
		{
			name: "cancelled_by_user",
			setup: func(t *testing.T, r *MockRunner) {
				writeDevcontainer(t, r.dir, map[string]string{".devcontainer/Dockerfile": "FROM debian\n"})
				r.ok(validRepo...)
			},
			confirm: func(ctx context.Context, prompt string) (bool, error) {
				assert.Contains(t, prompt, ".devcontainer already exists")
				return false, nil
			},
			category: CategoryRepository,
			exitCode: 1,
			check: func(t *testing.T, r *MockRunner, opErr *Error) {
				assert.Contains(t, opErr.Error(), "operation cancelled by user")
				assert.FileExists(t, filepath.Join(r.dir, ".devcontainer/Dockerfile"), "nothing is touched")
			},
		},
		{
			name: "fetch_fails",
			setup: func(t *testing.T, r *MockRunner) {
				r.ok(validRepo...)
				r.ok("remote get-url claude", "remote get-url claude")
				r.fail("fetch claude")
				r.stdout("rev-parse --abbrev-ref HEAD", "master\n")
			},
			category: CategoryNetwork,
			exitCode: 2,
			check: func(t *testing.T, r *MockRunner, opErr *Error) {
				var fetchErr *git.FetchError
				assert.True(t, errors.As(opErr, &fetchErr))
				assert.NotContains(t, r.commands(), "checkout master", "already on the main branch")
			},
		},
		{
			name: "split_fails_returns_to_main",
			setup: func(t *testing.T, r *MockRunner) {
				r.ok(validRepo...)
				r.ok(
					"remote get-url claude",
					"remote get-url claude",
					"fetch claude",
					"branch -f claude-main claude/main",
					"checkout claude-main",
				)
				r.fail("subtree split --prefix=.devcontainer -b devcontainer")
				r.stdout("rev-parse --abbrev-ref HEAD", "claude-main\n")
				r.ok("checkout master")
			},
			category: CategoryGit,
			exitCode: 3,
			check: func(t *testing.T, r *MockRunner, opErr *Error) {
				cmds := r.commands()
				assert.Equal(t, "checkout master", cmds[len(cmds)-1])
				assert.Contains(t, opErr.Error(), "Git operation error: splitting .devcontainer")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutils.Context(t)
			r := &MockRunner{dir: newRepoDir(t)}
			tt.setup(t, r)

			op := newOperator(t, r, func(o *Options) { o.Confirm = tt.confirm })
			_, err := op.Init(ctx, tt.opts)

			opErr := requireCategory(t, err, tt.category)
			assert.Equal(t, tt.exitCode, opErr.Category.ExitCode())
			tt.check(t, r, opErr)
			r.AssertExpectations(t)
		})
	}
}

func TestInitForceReplacesTrackedDevcontainer(t *testing.T) {
	ctx := testutils.Context(t)
	r := &MockRunner{dir: newRepoDir(t)}
	writeDevcontainer(t, r.dir, map[string]string{".devcontainer/Dockerfile": "FROM debian\n"})

	r.ok(validRepo...)
	r.ok("add -A -- .devcontainer")
	r.stdout("status --porcelain -- .devcontainer", "D  .devcontainer/Dockerfile\n")
	r.ok(
		"commit -m Remove existing devcontainer configuration",
		"remote get-url claude",
		"remote get-url claude",
		"fetch claude",
		"branch -f claude-main claude/main",
		"checkout claude-main",
		"subtree split --prefix=.devcontainer -b devcontainer",
		"checkout master",
		"subtree add --prefix=.devcontainer --squash devcontainer",
	)

	_, err := newOperator(t, r).Init(ctx, InitOptions{Force: true})
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(r.dir, ".devcontainer"))
	r.AssertExpectations(t)
}

func TestUpdate(t *testing.T) {
	ctx := testutils.Context(t)
	r := &MockRunner{dir: newRepoDir(t)}
	writeDevcontainer(t, r.dir, map[string]string{
		".devcontainer/Dockerfile":        "FROM debian\n",
		".devcontainer/devcontainer.json": `{"name": "x"}`,
	})
	// a stale backup is replaced, not merged
	writeDevcontainer(t, r.dir, map[string]string{".devcontainer.backup/old.txt": "old"})

	r.ok(validRepo...)
	r.stdout("status --porcelain -- .devcontainer", "")
	r.ok(
		"remote get-url claude",
		"fetch claude",
		"checkout claude-main",
		"reset --hard claude/main",
	)
	r.fail("show-ref --verify --quiet refs/heads/devcontainer-updated")
	r.ok(
		"subtree split --prefix=.devcontainer -b devcontainer-updated",
		"checkout master",
		"subtree merge --prefix=.devcontainer --squash devcontainer-updated",
	)

	res, err := newOperator(t, r).Update(ctx, UpdateOptions{Backup: true})
	require.NoError(t, err)
	assert.Equal(t, ".devcontainer.backup", res.BackupPath)

	data, err := os.ReadFile(filepath.Join(r.dir, ".devcontainer.backup/Dockerfile"))
	require.NoError(t, err)
	assert.Equal(t, "FROM debian\n", string(data))
	assert.FileExists(t, filepath.Join(r.dir, ".devcontainer.backup/devcontainer.json"))
	assert.NoFileExists(t, filepath.Join(r.dir, ".devcontainer.backup/old.txt"))
	r.AssertExpectations(t)
}

func TestUpdateDeletesStaleSplitBranch(t *testing.T) {
	ctx := testutils.Context(t)
	r := &MockRunner{dir: newRepoDir(t)}
	writeDevcontainer(t, r.dir, map[string]string{".devcontainer/Dockerfile": "FROM debian\n"})

	r.ok(validRepo...)
	r.ok(
		"remote get-url claude",
		"fetch claude",
		"checkout claude-main",
		"reset --hard claude/main",
		"show-ref --verify --quiet refs/heads/devcontainer-updated",
		"branch -D devcontainer-updated",
		"subtree split --prefix=.devcontainer -b devcontainer-updated",
		"checkout master",
		"subtree merge --prefix=.devcontainer --squash devcontainer-updated",
	)

	res, err := newOperator(t, r).Update(ctx, UpdateOptions{Force: true})
	require.NoError(t, err)
	assert.Empty(t, res.BackupPath)
	assert.NotContains(t, r.commands(), "status --porcelain -- .devcontainer", "force skips the dirty check")
	r.AssertExpectations(t)
}

func TestUpdateFailures(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T, r *MockRunner)
		category    Category
		errContains string
	}{
		{
			name: "missing_devcontainer",
			setup: func(t *testing.T, r *MockRunner) {
				r.ok(validRepo...)
			},
			category:    CategoryFileSystem,
			errContains: "no .devcontainer directory found to update",
		},
		{
			name: "uncommitted_changes",
			setup: func(t *testing.T, r *MockRunner) {
				writeDevcontainer(t, r.dir, map[string]string{".devcontainer/Dockerfile": "FROM debian\n"})
				r.ok(validRepo...)
				r.stdout("status --porcelain -- .devcontainer", " M .devcontainer/Dockerfile\n")
			},
			category:    CategoryRepository,
			errContains: ".devcontainer has uncommitted changes",
		},
		{
			name: "remote_missing",
			setup: func(t *testing.T, r *MockRunner) {
				writeDevcontainer(t, r.dir, map[string]string{".devcontainer/Dockerfile": "FROM debian\n"})
				r.ok(validRepo...)
				r.stdout("status --porcelain -- .devcontainer", "")
				r.fail("remote get-url claude")
				r.stdout("rev-parse --abbrev-ref HEAD", "master\n")
			},
			category:    CategoryGit,
			errContains: "remote does not exist",
		},
		{
			name: "merge_conflict",
			setup: func(t *testing.T, r *MockRunner) {
				writeDevcontainer(t, r.dir, map[string]string{".devcontainer/Dockerfile": "FROM debian\n"})
				r.ok(validRepo...)
				r.stdout("status --porcelain -- .devcontainer", "")
				r.ok("remote get-url claude", "fetch claude", "checkout claude-main", "reset --hard claude/main")
				r.fail("show-ref --verify --quiet refs/heads/devcontainer-updated")
				r.ok("subtree split --prefix=.devcontainer -b devcontainer-updated", "checkout master")
				r.fail("subtree merge --prefix=.devcontainer --squash devcontainer-updated")
				r.stdout("rev-parse --abbrev-ref HEAD", "master\n")
			},
			category:    CategoryGit,
			errContains: "merging into .devcontainer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutils.Context(t)
			r := &MockRunner{dir: newRepoDir(t)}
			tt.setup(t, r)

			_, err := newOperator(t, r).Update(ctx, UpdateOptions{})
			requireCategory(t, err, tt.category)
			assert.Contains(t, err.Error(), tt.errContains)
			r.AssertExpectations(t)
		})
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name      string
		keepFiles bool
		setup     func(r *MockRunner)
		wantDir   bool
	}{
		{
			name:      "keep_files",
			keepFiles: true,
			setup:     func(r *MockRunner) {},
			wantDir:   true,
		},
		{
			name: "delete_files",
			setup: func(r *MockRunner) {
				r.ok("add -A -- .devcontainer")
				r.stdout("status --porcelain -- .devcontainer", "D  .devcontainer/Dockerfile\n")
				r.ok("commit -m " + RemoveCommitMessage)
			},
			wantDir: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutils.Context(t)
			r := &MockRunner{dir: newRepoDir(t)}
			writeDevcontainer(t, r.dir, map[string]string{".devcontainer/Dockerfile": "FROM debian\n"})

			r.ok("rev-parse --git-dir", "remote get-url claude", "remote remove claude", "branch -D claude-main")
			r.fail("branch -D devcontainer")
			r.fail("branch -D devcontainer-updated")
			tt.setup(r)

			err := newOperator(t, r).Remove(ctx, RemoveOptions{KeepFiles: tt.keepFiles})
			require.NoError(t, err, "missing split branches are ignored")

			if tt.wantDir {
				assert.DirExists(t, filepath.Join(r.dir, ".devcontainer"))
			} else {
				assert.NoDirExists(t, filepath.Join(r.dir, ".devcontainer"))
			}
			r.AssertExpectations(t)
		})
	}
}

func TestRemoveWithoutRemote(t *testing.T) {
	ctx := testutils.Context(t)
	r := &MockRunner{dir: newRepoDir(t)}
	r.ok("rev-parse --git-dir")
	r.fail("remote get-url claude")

	err := newOperator(t, r).Remove(ctx, RemoveOptions{})
	requireCategory(t, err, CategoryGit)
	assert.True(t, errors.Is(err, git.ErrRemoteMissing))
}

func TestStrip(t *testing.T) {
	ctx := testutils.Context(t)
	r := &MockRunner{dir: newRepoDir(t)}
	writeDevcontainer(t, r.dir, map[string]string{
		".devcontainer/devcontainer.json": devcontainerJSON,
		".devcontainer/Dockerfile":        dockerfile,
		".devcontainer/init-firewall.sh":  "#!/bin/bash\niptables -F OUTPUT\n",
	})

	r.ok(validRepo...)
	var message string
	r.On("Run", mock.MatchedBy(func(cmd string) bool {
		return strings.HasPrefix(cmd, "add -A -- ")
	})).Return(git.Result{}, nil).Once()
	r.On("Run", mock.MatchedBy(func(cmd string) bool {
		return strings.HasPrefix(cmd, "commit -m ")
	})).Run(func(args mock.Arguments) {
		message = strings.TrimPrefix(args.String(0), "commit -m ")
	}).Return(git.Result{}, nil).Once()

	res, err := newOperator(t, r).Strip(ctx, InitStripTitle)
	require.NoError(t, err)
	require.NotNil(t, res.Customization)
	assert.True(t, res.Customization.Success)
	assert.True(t, res.Committed)

	assert.NoFileExists(t, filepath.Join(r.dir, ".devcontainer/init-firewall.sh"))
	data, err := os.ReadFile(filepath.Join(r.dir, ".devcontainer/Dockerfile"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "iptables")
	assert.Contains(t, string(data), "jq")

	assert.True(t, strings.HasPrefix(message, InitStripTitle+"\n\nChanges made:"), "message: %s", message)
	for _, c := range r.commands() {
		if strings.HasPrefix(c, "add -A -- ") {
			assert.Contains(t, c, ".devcontainer/init-firewall.sh")
			assert.Contains(t, c, ".devcontainer/Dockerfile")
		}
	}
	r.AssertExpectations(t)
}

func TestStripNothingToStrip(t *testing.T) {
	ctx := testutils.Context(t)
	r := &MockRunner{dir: newRepoDir(t)}
	writeDevcontainer(t, r.dir, map[string]string{
		".devcontainer/devcontainer.json": `{"name": "plain", "image": "debian"}`,
		".devcontainer/Dockerfile":        "FROM debian\nRUN echo hi\n",
	})
	r.ok(validRepo...)

	res, err := newOperator(t, r).Strip(ctx, "")
	require.NoError(t, err)
	assert.True(t, res.Customization.Success)
	assert.False(t, res.Committed, "nothing changed, nothing committed")
	assert.Equal(t, validRepo, r.commands())
}

func TestStripWithoutDevcontainer(t *testing.T) {
	ctx := testutils.Context(t)
	r := &MockRunner{dir: newRepoDir(t)}
	r.ok(validRepo...)

	_, err := newOperator(t, r).Strip(ctx, "")
	opErr := requireCategory(t, err, CategoryFileSystem)
	assert.Equal(t, suggestInit, opErr.Suggestion)
}

func TestStatus(t *testing.T) {
	ref := upstream.Ref{Repo: upstreamURL, Branch: "main", Path: ".devcontainer"}

	tests := []struct {
		name  string
		setup func(r *MockRunner, p *MockProvider)
		check func(t *testing.T, report *StatusReport)
	}{
		{
			name: "up_to_date",
			setup: func(r *MockRunner, p *MockProvider) {
				r.stdout("remote -v", "claude\t"+upstreamURL+" (fetch)\nclaude\t"+upstreamURL+" (push)\n")
				r.ok("show-ref --verify --quiet refs/heads/claude-main", "rev-parse --verify --quiet claude/main^{commit}")
				r.stdout("log -1 --format=%H claude/main -- .devcontainer", "abc123\n")
				p.On("LatestCommit", mock.Anything, ref).Return(upstream.Commit{SHA: "abc123"}, nil)
			},
			check: func(t *testing.T, report *StatusReport) {
				assert.Equal(t, upstreamURL, report.RemoteURL)
				assert.True(t, report.Initialized())
				require.NotNil(t, report.Upstream)
				assert.True(t, report.Upstream.UpToDate())
				assert.NoError(t, report.UpstreamErr)
			},
		},
		{
			name: "update_available",
			setup: func(r *MockRunner, p *MockProvider) {
				r.stdout("remote -v", "claude\t"+upstreamURL+" (fetch)\n")
				r.ok("show-ref --verify --quiet refs/heads/claude-main", "rev-parse --verify --quiet claude/main^{commit}")
				r.stdout("log -1 --format=%H claude/main -- .devcontainer", "abc123\n")
				p.On("LatestCommit", mock.Anything, ref).Return(upstream.Commit{SHA: "def456"}, nil)
			},
			check: func(t *testing.T, report *StatusReport) {
				require.NotNil(t, report.Upstream)
				assert.False(t, report.Upstream.UpToDate())
				assert.Equal(t, "def456", report.Upstream.Upstream.SHA)
			},
		},
		{
			name: "not_initialized",
			setup: func(r *MockRunner, p *MockProvider) {
				r.stdout("remote -v", "origin\tgit@github.com:me/repo.git (fetch)\n")
				r.fail("show-ref --verify --quiet refs/heads/claude-main")
			},
			check: func(t *testing.T, report *StatusReport) {
				assert.Empty(t, report.RemoteURL)
				assert.False(t, report.Initialized())
				assert.Nil(t, report.Upstream)
			},
		},
		{
			name: "upstream_unreachable",
			setup: func(r *MockRunner, p *MockProvider) {
				r.stdout("remote -v", "claude\t"+upstreamURL+" (fetch)\n")
				r.ok("show-ref --verify --quiet refs/heads/claude-main")
				r.fail("rev-parse --verify --quiet claude/main^{commit}")
				p.On("LatestCommit", mock.Anything, ref).Return(upstream.Commit{}, errors.New("rate limited"))
			},
			check: func(t *testing.T, report *StatusReport) {
				assert.Nil(t, report.Upstream)
				require.Error(t, report.UpstreamErr)
				assert.Contains(t, report.UpstreamErr.Error(), "rate limited")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutils.Context(t)
			r := &MockRunner{dir: newRepoDir(t)}
			writeDevcontainer(t, r.dir, map[string]string{".devcontainer/Dockerfile": "FROM debian\n"})
			p := &MockProvider{}

			r.ok("rev-parse --git-dir")
			r.stdout("rev-parse --abbrev-ref HEAD", "master\n")
			tt.setup(r, p)

			report, err := newOperator(t, r, func(o *Options) { o.Upstream = p }).Status(ctx)
			require.NoError(t, err)
			assert.Equal(t, "master", report.CurrentBranch)
			assert.True(t, report.PrefixExists)
			tt.check(t, report)
			p.AssertExpectations(t)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{name: "not_repository", err: errors.WithStack(git.ErrNotRepository), want: CategoryRepository},
		{name: "fetch", err: &git.FetchError{Remote: "claude", Err: errors.New("timeout")}, want: CategoryNetwork},
		{name: "exec", err: &git.ExecError{Args: []string{"checkout"}, Err: errors.New("exit status 1")}, want: CategoryGit},
		{name: "permission", err: errors.Errorf("writing: %w", os.ErrPermission), want: CategoryFileSystem},
		{name: "unknown", err: errors.New("boom"), want: CategoryGit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireCategory(t, classify("doing it", tt.err), tt.want)
		})
	}

	assert.NoError(t, classify("nothing", nil))
	inner := newError(CategoryNetwork, "x", "y")
	got := requireCategory(t, classify("outer", errors.Errorf("wrapped: %w", inner)), CategoryNetwork)
	assert.Same(t, inner, got, "existing categories are kept")
}
