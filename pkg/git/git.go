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

// Package git drives the git command line for remotes, branches and
// subtrees. Git itself is treated as a black box.
package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultTimeout bounds a single git invocation.
const DefaultTimeout = 30 * time.Second

// 🏃 Runner runs git with the given arguments in a fixed directory
type Runner interface {
	Run(ctx context.Context, args ...string) (Result, error)
	Dir() string
}

// Result holds the captured output of one invocation.
type Result struct {
	Stdout string
	Stderr string
}

// 💥 ExecError is a git invocation that exited non-zero or could not start
type ExecError struct {
	Args   []string
	Err    error
	Stdout string
	Stderr string
}

func (e *ExecError) Error() string {
	b := new(strings.Builder)
	b.WriteString("git ")
	b.WriteString(strings.Join(e.Args, " "))
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if s := strings.TrimSpace(e.Stderr); s != "" {
		b.WriteString(": ")
		b.WriteString(s)
	}
	return b.String()
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// 🖥️ LocalRunner runs the git binary found on PATH
type LocalRunner struct {
	gitPath string
	dir     string
	timeout time.Duration
}

// 🏭 NewLocalRunner creates a runner for dir. A zero timeout means DefaultTimeout.
func NewLocalRunner(dir string, timeout time.Duration) (*LocalRunner, error) {
	p, err := exec.LookPath("git")
	if err != nil {
		return nil, errors.Errorf("no 'git' program on path: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &LocalRunner{gitPath: p, dir: dir, timeout: timeout}, nil
}

func (g *LocalRunner) Dir() string {
	return g.dir
}

func (g *LocalRunner) Run(ctx context.Context, args ...string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.gitPath, args...)
	cmd.Dir = g.dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	zerolog.Ctx(ctx).Debug().Strs("args", args).Str("dir", g.dir).Msg("running git")

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = errors.Errorf("%w (%s)", ctx.Err(), err.Error())
		}
		return Result{}, &ExecError{
			Args:   args,
			Err:    err,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
		}
	}
	return Result{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}
