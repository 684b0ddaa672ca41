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
	"fmt"

	bolt "go.etcd.io/bbolt"
)

const (
	BucketRecord = "eeprom"
	KeyRecord    = "record"
)

// BoltStore keeps the record as a single value in a bbolt database.
type BoltStore struct {
	db *bolt.DB
	region
}

func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close bolt database: %w", err)
	}
	return nil
}

func (s *BoltStore) Begin(size int) error {
	var stored []byte
	err := s.db.View(func(txn *bolt.Tx) error {
		b := txn.Bucket([]byte(BucketRecord))
		if b == nil {
			return nil
		}
		// values are only valid inside the transaction
		if v := b.Get([]byte(KeyRecord)); v != nil {
			stored = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to view bolt database: %w", err)
	}
	s.load(size, stored)
	return nil
}

func (s *BoltStore) Commit() error {
	data, err := s.snapshot()
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *bolt.Tx) error {
		b, err := txn.CreateBucketIfNotExists([]byte(BucketRecord))
		if err != nil {
			return fmt.Errorf("failed to create bucket %q: %w", BucketRecord, err)
		}
		return b.Put([]byte(KeyRecord), data)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCommitFail, err)
	}
	return nil
}
