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

// Package storage provides the byte-addressable durable stores the mode
// record is kept in. Every store follows the same session shape: Begin maps
// the stored bytes into memory, Read and Write work on that copy and Commit
// makes the copy durable.
package storage

import (
	"errors"
	"fmt"
)

var (
	ErrNotBegun    = errors.New("store session not begun")
	ErrOutOfRange  = errors.New("access outside store")
	ErrCommitFail  = errors.New("commit failed")
	ErrUnknownKind = errors.New("unknown store backend")
)

// Store is a durable byte area of fixed size.
type Store interface {
	// Begin loads size bytes. Bytes never written read as zero.
	Begin(size int) error
	Read(offset int, buf []byte) error
	Write(offset int, buf []byte) error
	// Commit persists every write since Begin.
	Commit() error
}

// region is the in-memory copy shared by the backends.
type region struct {
	data  []byte
	begun bool
}

func (r *region) load(size int, stored []byte) {
	r.data = make([]byte, size)
	copy(r.data, stored)
	r.begun = true
}

func (r *region) check(offset, n int) error {
	if !r.begun {
		return ErrNotBegun
	}
	if offset < 0 || offset+n > len(r.data) {
		return fmt.Errorf("%w: %d+%d of %d", ErrOutOfRange, offset, n, len(r.data))
	}
	return nil
}

func (r *region) Read(offset int, buf []byte) error {
	if err := r.check(offset, len(buf)); err != nil {
		return err
	}
	copy(buf, r.data[offset:])
	return nil
}

func (r *region) Write(offset int, buf []byte) error {
	if err := r.check(offset, len(buf)); err != nil {
		return err
	}
	copy(r.data[offset:], buf)
	return nil
}

func (r *region) snapshot() ([]byte, error) {
	if !r.begun {
		return nil, ErrNotBegun
	}
	out := make([]byte, len(r.data))
	copy(out, r.data)
	return out, nil
}

// Load reads size bytes from the start of s.
func Load(s Store, size int) ([]byte, error) {
	if err := s.Begin(size); err != nil {
		return nil, fmt.Errorf("failed to begin store: %w", err)
	}
	buf := make([]byte, size)
	if err := s.Read(0, buf); err != nil {
		return nil, fmt.Errorf("failed to read store: %w", err)
	}
	return buf, nil
}

// Save writes data at the start of s and commits it.
func Save(s Store, data []byte) error {
	if err := s.Begin(len(data)); err != nil {
		return fmt.Errorf("failed to begin store: %w", err)
	}
	if err := s.Write(0, data); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := s.Commit(); err != nil {
		return fmt.Errorf("failed to commit store: %w", err)
	}
	return nil
}
