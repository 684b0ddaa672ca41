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
	"fmt"
	"io"

	"github.com/spf13/afero"
)

const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the store named by backend. The closer releases the backend
// once the engine is done with it.
func Open(ctx context.Context, backend, path string) (Store, io.Closer, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(afero.NewOsFs(), path), nopCloser{}, nil
	case BackendBolt:
		s, err := OpenBoltStore(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case BackendSQLite:
		s, err := OpenSQLiteStore(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case BackendMemory:
		return NewMemoryStore(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownKind, backend)
	}
}
