// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package localstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// File keeps every key in one JSON document on disk. Writes go through a
// temp file and a rename so a crash never leaves a torn document.
type File struct {
	path string

	mu     sync.Mutex
	loaded bool
	values map[string]string
}

func NewFile(path string) *File {
	return &File{path: path}
}

// load must be called with mu held.
func (f *File) load() error {
	if f.loaded {
		return nil
	}
	f.values = make(map[string]string)
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		f.loaded = true
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "read %s", f.path)
	}
	if len(raw) > 0 {
		if err := sonic.Unmarshal(raw, &f.values); err != nil {
			return errors.Wrapf(err, "decode %s", f.path)
		}
	}
	f.loaded = true
	return nil
}

// flush must be called with mu held.
func (f *File) flush() error {
	raw, err := sonic.ConfigStd.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode state")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(f.path))
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".state-*")
	if err != nil {
		return errors.Wrap(err, "create temp state")
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "write temp state")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "close temp state")
	}
	return errors.Wrap(os.Rename(tmp.Name(), f.path), "replace state")
}

func (f *File) Get(_ context.Context, key string, out any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return false, err
	}
	v, ok := f.values[key]
	if !ok {
		return false, nil
	}
	if err := sonic.UnmarshalString(v, out); err != nil {
		return false, errors.Wrapf(err, "decode key %s", key)
	}
	return true, nil
}

func (f *File) Set(_ context.Context, key string, value any) error {
	encoded, err := sonic.MarshalString(value)
	if err != nil {
		return errors.Wrapf(err, "encode key %s", key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return err
	}
	prev, had := f.values[key]
	f.values[key] = encoded
	if err := f.flush(); err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return err
	}
	prev, had := f.values[key]
	if !had {
		return nil
	}
	delete(f.values, key)
	if err := f.flush(); err != nil {
		f.values[key] = prev
		return err
	}
	return nil
}
