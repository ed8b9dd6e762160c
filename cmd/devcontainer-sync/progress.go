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

	"github.com/pterm/pterm"

	"github.com/walteh/devcontainer-sync/pkg/log"
)

// ⏳ spinnerProgress shows a spinner per step, or plain lines when verbose
type spinnerProgress struct {
	out     io.Writer
	logger  *log.Logger
	verbose bool
	spinner *pterm.SpinnerPrinter
}

func (p *spinnerProgress) Start(step string) {
	if p.verbose {
		p.logger.Info(step + "...")
		return
	}
	s, err := pterm.DefaultSpinner.WithWriter(p.out).WithRemoveWhenDone(false).Start(step + "...")
	if err != nil {
		return
	}
	p.spinner = s
}

func (p *spinnerProgress) Stop(step string, err error) {
	if p.spinner == nil {
		if err != nil && p.verbose {
			p.logger.Errorf("%s failed", step)
		}
		return
	}
	if err != nil {
		p.spinner.Fail(step)
	} else {
		p.spinner.Success(step)
	}
	p.spinner = nil
}

// confirm asks on the terminal, defaulting to no.
func confirm(_ context.Context, prompt string) (bool, error) {
	return pterm.DefaultInteractiveConfirm.
		WithDefaultValue(false).
		Show(prompt)
}
