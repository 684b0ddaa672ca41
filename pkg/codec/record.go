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

// Package codec packs the mode slots into the fixed size record kept in
// durable storage and unpacks them again.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/wordclock/wordclock-core/pkg/modes"
)

const (
	// Marker identifies a record written by this layout.
	Marker uint8 = 0x44
	// NameBudget is the size of the shared name buffer in bytes.
	NameBudget = 176
	// WordBudget is the number of 64-bit payload words shared by all slots.
	WordBudget = 64
	// BootOff is the boot slot value meaning the display starts switched off.
	BootOff uint8 = 0xFF

	metaSize    = 3
	metaOffset  = 2
	namesOffset = metaOffset + modes.SlotCount*metaSize
	wordsOffset = namesOffset + NameBudget

	// RecordSize is the encoded size of a Record.
	RecordSize = wordsOffset + WordBudget*8

	maxWordsPerSlot = 0x0F
)

var ErrShortRecord = errors.New("record too short")

// SlotMeta is the per-slot header: the kind tag and word count share one
// byte, low nibble first.
type SlotMeta struct {
	Kind       uint8
	Words      uint8
	Brightness uint8
	Color      uint8
}

// Record mirrors the bytes kept in durable storage.
type Record struct {
	Marker uint8
	Boot   uint8
	Slots  [modes.SlotCount]SlotMeta
	Names  [NameBudget]byte
	Words  [WordBudget]uint64
}

// MarshalBinary encodes the record, little endian.
func (r *Record) MarshalBinary() ([]byte, error) {
	buf := make([]byte, RecordSize)
	buf[0] = r.Marker
	buf[1] = r.Boot
	for i, m := range r.Slots {
		off := metaOffset + i*metaSize
		buf[off] = m.Kind&0x0F | m.Words<<4
		buf[off+1] = m.Brightness
		buf[off+2] = m.Color
	}
	copy(buf[namesOffset:wordsOffset], r.Names[:])
	for i, w := range r.Words {
		binary.LittleEndian.PutUint64(buf[wordsOffset+i*8:], w)
	}
	return buf, nil
}

// UnmarshalBinary decodes a record produced by MarshalBinary.
func (r *Record) UnmarshalBinary(data []byte) error {
	if len(data) < RecordSize {
		return fmt.Errorf("%w: %d of %d bytes", ErrShortRecord, len(data), RecordSize)
	}
	r.Marker = data[0]
	r.Boot = data[1]
	for i := range r.Slots {
		off := metaOffset + i*metaSize
		r.Slots[i] = SlotMeta{
			Kind:       data[off] & 0x0F,
			Words:      data[off] >> 4,
			Brightness: data[off+1],
			Color:      data[off+2],
		}
	}
	copy(r.Names[:], data[namesOffset:wordsOffset])
	for i := range r.Words {
		r.Words[i] = binary.LittleEndian.Uint64(data[wordsOffset+i*8:])
	}
	return nil
}
