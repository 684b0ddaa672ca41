// Wordclock Core
// Copyright (c) 2026 The Wordclock Core Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Wordclock Core.
//
// Wordclock Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Wordclock Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Wordclock Core.  If not, see <http://www.gnu.org/licenses/>.

package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileStore keeps the record in a single file. Commits write a sibling
// temporary file and rename it over the record.
type FileStore struct {
	fs   afero.Fs
	path string
	region
}

func NewFileStore(afs afero.Fs, path string) *FileStore {
	return &FileStore{fs: afs, path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Begin(size int) error {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		data = nil
	} else if err != nil {
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	s.load(size, data)
	return nil
}

func (s *FileStore) Commit() error {
	data, err := s.snapshot()
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("%w: failed to create store directory: %w", ErrCommitFail, err)
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitFail, err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitFail, err)
	}
	return nil
}
