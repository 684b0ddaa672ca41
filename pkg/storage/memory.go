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
	"github.com/wordclock/wordclock-core/pkg/helpers/syncutil"
)

// MemoryStore keeps committed bytes in memory. It is safe to inspect from
// another goroutine while the owner uses it.
type MemoryStore struct {
	committed  []byte
	commits    int
	failCommit bool
	region
	mu syncutil.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// FailCommits makes every following Commit fail until switched off.
func (s *MemoryStore) FailCommits(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCommit = fail
}

// Committed returns a copy of the last committed bytes.
func (s *MemoryStore) Committed() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.committed...)
}

// Commits returns how many commits succeeded.
func (s *MemoryStore) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Preload replaces the committed bytes, as if written by an earlier run.
func (s *MemoryStore) Preload(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = append([]byte(nil), data...)
}

func (s *MemoryStore) Begin(size int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(size, s.committed)
	return nil
}

func (s *MemoryStore) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCommit {
		return ErrCommitFail
	}
	data, err := s.snapshot()
	if err != nil {
		return err
	}
	s.committed = data
	s.commits++
	return nil
}
