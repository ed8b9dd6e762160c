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

// Package testutils holds helpers shared by package tests.
package testutils

import (
	"os"
	"sync"

	"github.com/go-git/go-billy/v5"
)

// 💣 FaultFS wraps a billy filesystem and fails chosen operations on chosen paths
type FaultFS struct {
	billy.Filesystem

	mu         sync.Mutex
	readErrs   map[string]error
	removeErrs map[string]error
	writes     map[string]*writeFault
}

type writeFault struct {
	allowed int
	err     error
}

// 🏭 NewFaultFS wraps fs; no faults are armed
func NewFaultFS(fs billy.Filesystem) *FaultFS {
	return &FaultFS{
		Filesystem: fs,
		readErrs:   map[string]error{},
		removeErrs: map[string]error{},
		writes:     map[string]*writeFault{},
	}
}

// FailRead makes every Open of path return err.
func (f *FaultFS) FailRead(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErrs[path] = err
}

// FailWriteAfter lets n writes to path through, then fails the rest with err.
func (f *FaultFS) FailWriteAfter(path string, n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes[path] = &writeFault{allowed: n, err: err}
}

// FailRemove makes Remove of path return err.
func (f *FaultFS) FailRemove(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeErrs[path] = err
}

func (f *FaultFS) Open(filename string) (billy.File, error) {
	f.mu.Lock()
	err := f.readErrs[filename]
	f.mu.Unlock()
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: filename, Err: err}
	}
	return f.Filesystem.Open(filename)
}

func (f *FaultFS) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		f.mu.Lock()
		w := f.writes[filename]
		if w != nil {
			if w.allowed <= 0 {
				f.mu.Unlock()
				return nil, &os.PathError{Op: "open", Path: filename, Err: w.err}
			}
			w.allowed--
		}
		f.mu.Unlock()
	} else {
		f.mu.Lock()
		err := f.readErrs[filename]
		f.mu.Unlock()
		if err != nil {
			return nil, &os.PathError{Op: "open", Path: filename, Err: err}
		}
	}
	return f.Filesystem.OpenFile(filename, flag, perm)
}

func (f *FaultFS) Remove(filename string) error {
	f.mu.Lock()
	err := f.removeErrs[filename]
	f.mu.Unlock()
	if err != nil {
		return &os.PathError{Op: "remove", Path: filename, Err: err}
	}
	return f.Filesystem.Remove(filename)
}
