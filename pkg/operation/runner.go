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
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ⏳ Progress shows the step currently running
type Progress interface {
	Start(step string)
	Stop(step string, err error)
}

type noProgress struct{}

func (noProgress) Start(string)       {}
func (noProgress) Stop(string, error) {}

// step is one named unit of a command sequence.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// 🏃 stepRunner executes steps in order and stops at the first failure
type stepRunner struct {
	progress Progress
}

func (r *stepRunner) Run(ctx context.Context, steps ...step) error {
	logger := zerolog.Ctx(ctx)
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return classify("operation cancelled before "+s.name, errors.WithStack(err))
		}

		start := time.Now()
		r.progress.Start(s.name)
		err := s.run(ctx)
		r.progress.Stop(s.name, err)

		logger.Debug().
			Str("step", s.name).
			Dur("took", time.Since(start)).
			Err(err).
			Msg("step finished")
		if err != nil {
			return err
		}
	}
	return nil
}
