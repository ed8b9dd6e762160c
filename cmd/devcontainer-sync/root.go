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

package main

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/devcontainer-sync/cmd/devcontainer-sync/commands"
	"github.com/walteh/devcontainer-sync/cmd/devcontainer-sync/opts"
	"github.com/walteh/devcontainer-sync/pkg/config"
	"github.com/walteh/devcontainer-sync/pkg/git"
	"github.com/walteh/devcontainer-sync/pkg/log"
	"github.com/walteh/devcontainer-sync/pkg/operation"
	"github.com/walteh/devcontainer-sync/pkg/pattern"

	_ "github.com/walteh/devcontainer-sync/pkg/upstream/github"
)

type rootFlags struct {
	configFile string
	dir        string
	verbose    bool
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *opts.RootOpts) {
	flags := &rootFlags{}
	ro := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:           "devcontainer-sync",
		Short:         "Sync the Claude Code devcontainer into a repository with git subtree",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ro.Verbose = flags.verbose
			if cmd.Name() == "version" {
				return nil
			}
			ctx, err := setup(cmd.Context(), flags, ro, stdout, stderr)
			if err != nil {
				return err
			}
			cmd.SetContext(ctx)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "config file path (default: discovered in the repository root)")
	cmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", ".", "repository root")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "show every step and debug logs")

	cmd.AddCommand(
		commands.NewInitCmd(ro),
		commands.NewUpdateCmd(ro),
		commands.NewRemoveCmd(ro),
		commands.NewStripCmd(ro),
		commands.NewStatusCmd(ro),
		newVersionCmd(),
	)
	return cmd, ro
}

func setupLogging(ctx context.Context, w io.Writer, verbose bool) context.Context {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
	return logger.WithContext(ctx)
}

// setup resolves the repository, loads configuration and builds the operator.
func setup(ctx context.Context, flags *rootFlags, ro *opts.RootOpts, stdout, stderr io.Writer) (context.Context, error) {
	ctx = setupLogging(ctx, stderr, flags.verbose)

	dir, err := filepath.Abs(flags.dir)
	if err != nil {
		return ctx, errors.Errorf("resolving %s: %w", flags.dir, err)
	}

	var cfg *config.Config
	if flags.configFile != "" {
		cfg, err = config.Load(ctx, flags.configFile)
	} else {
		cfg, err = config.Discover(ctx, dir)
	}
	if err != nil {
		return ctx, errors.Errorf("loading config: %w", err)
	}

	catalog := pattern.DefaultFirewall()
	if cfg.Catalog != "" {
		p := cfg.Catalog
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		catalog, err = pattern.Load(ctx, p)
		if err != nil {
			return ctx, errors.Errorf("loading catalog: %w", err)
		}
	}

	runner, err := git.NewLocalRunner(dir, cfg.Timeout)
	if err != nil {
		return ctx, err
	}

	logger := log.New(stdout, *zerolog.Ctx(ctx))
	op, err := operation.New(operation.Options{
		Config:   cfg,
		Runner:   runner,
		FS:       osfs.New(dir),
		Catalog:  catalog,
		Confirm:  confirm,
		Progress: &spinnerProgress{out: stdout, logger: logger, verbose: flags.verbose},
	})
	if err != nil {
		return ctx, errors.Errorf("creating operator: %w", err)
	}

	ro.Config = cfg
	ro.Operator = op
	ro.Logger = logger
	ro.Verbose = flags.verbose

	zerolog.Ctx(ctx).Debug().
		Str("dir", dir).
		Str("config", cfg.Location()).
		Str("catalog", catalog.Version()).
		Stringer("upstream", cfg).
		Msg("configured")
	return log.NewContext(ctx, logger), nil
}
