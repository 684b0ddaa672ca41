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
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]func() Store {
	t.Helper()
	afs := afero.NewMemMapFs()
	mem := NewMemoryStore()
	boltPath := filepath.Join(t.TempDir(), "record.db")
	bs, err := OpenBoltStore(boltPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bs.Close() })
	ss, err := OpenSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "record.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	return map[string]func() Store{
		"file":   func() Store { return NewFileStore(afs, "/data/record.bin") },
		"bolt":   func() Store { return bs },
		"memory": func() Store { return mem },
		"sqlite": func() Store { return ss },
	}
}

func TestStoreSession(t *testing.T) {
	t.Parallel()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s := open()

			fresh, err := Load(s, 8)
			require.NoError(t, err)
			assert.Equal(t, make([]byte, 8), fresh, "never written bytes read as zero")

			require.NoError(t, s.Begin(8))
			require.NoError(t, s.Write(2, []byte{1, 2, 3}))
			require.NoError(t, s.Commit())

			got, err := Load(open(), 8)
			require.NoError(t, err)
			assert.Equal(t, []byte{0, 0, 1, 2, 3, 0, 0, 0}, got)

			require.NoError(t, Save(s, []byte{9, 9}))
			got, err = Load(open(), 4)
			require.NoError(t, err)
			assert.Equal(t, []byte{9, 9, 0, 0}, got, "shorter stored data is zero padded")
		})
	}
}

func TestStoreBounds(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	require.ErrorIs(t, s.Write(0, []byte{1}), ErrNotBegun)
	require.ErrorIs(t, s.Commit(), ErrNotBegun)

	require.NoError(t, s.Begin(4))
	require.ErrorIs(t, s.Write(3, []byte{1, 2}), ErrOutOfRange)
	require.ErrorIs(t, s.Read(-1, make([]byte, 1)), ErrOutOfRange)
	require.NoError(t, s.Read(0, make([]byte, 4)))
}

func TestMemoryStoreFailCommit(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	s.FailCommits(true)

	err := Save(s, []byte{1})
	require.ErrorIs(t, err, ErrCommitFail)
	assert.Empty(t, s.Committed())
	assert.Zero(t, s.Commits())

	s.FailCommits(false)
	require.NoError(t, Save(s, []byte{1}))
	assert.Equal(t, []byte{1}, s.Committed())
	assert.Equal(t, 1, s.Commits())
}

func TestFileStoreCommitIsAtomic(t *testing.T) {
	t.Parallel()
	afs := afero.NewMemMapFs()
	s := NewFileStore(afs, "/data/record.bin")

	require.NoError(t, Save(s, []byte("abc")))
	exists, err := afero.Exists(afs, "/data/record.bin.tmp")
	require.NoError(t, err)
	assert.False(t, exists)

	data, err := afero.ReadFile(afs, s.Path())
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)

	ro := NewFileStore(afero.NewReadOnlyFs(afs), "/data/record.bin")
	require.ErrorIs(t, Save(ro, []byte("xyz")), ErrCommitFail)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, closer, err := Open(ctx, BackendMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	require.NoError(t, closer.Close())

	s, closer, err = Open(ctx, BackendBolt, filepath.Join(t.TempDir(), "wordclock.db"))
	require.NoError(t, err)
	assert.IsType(t, &BoltStore{}, s)
	require.NoError(t, closer.Close())

	s, closer, err = Open(ctx, BackendSQLite, filepath.Join(t.TempDir(), "nested", "wordclock.sqlite"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, closer.Close())

	_, _, err = Open(ctx, "eeprom", "")
	require.ErrorIs(t, err, ErrUnknownKind)
}
