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

// Package timedef turns a time of day into the German sentence shown on the
// word clock and locates that sentence on the letter grid.
package timedef

import (
	"errors"
	"fmt"
	"strings"
)

// Layout is the letter grid read row by row, 11 letters per row. Minute words
// are lower case and hour words upper case so a search never confuses them.
const Layout = "espistkfunfdreiviertelzwanzigzehnuminutenullvorqkjanachhalb" +
	"NELFUNFEINSZWEIUNDDREISIGVIERSECHSXYACHTSIEBENZWOLFZEHNEUNAUHR"

const (
	// Segments is the number of five minute periods in an hour.
	Segments = 12
	// MaxVariants is the number of phrase choices a segment may offer.
	MaxVariants = 4
	prefix      = "es ist "
)

var ErrWordNotOnClock = errors.New("word cannot be shown on clock")

type period struct {
	label  string
	phrase string
	// next selects the upcoming hour, as in "halb elf" for 10:30.
	next bool
	uhr  bool
}

var periods = [Segments][]period{
	{{label: "10 Uhr", uhr: true}, {label: "um 10", phrase: "um "}},
	{{label: "5 nach 10", phrase: "funf nach "}},
	{{label: "10 nach 10", phrase: "zehn nach "}},
	{
		{label: "viertel nach 10", phrase: "viertel nach "},
		{label: "viertel 11", phrase: "viertel ", next: true},
	},
	{
		{label: "10 vor halb 11", phrase: "zehn vor halb ", next: true},
		{label: "zwanzig nach 10", phrase: "zwanzig nach "},
	},
	{{label: "5 vor halb 11", phrase: "funf vor halb ", next: true}},
	{{label: "halb 11", phrase: "halb ", next: true}},
	{{label: "5 nach halb 11", phrase: "funf nach halb ", next: true}},
	{
		{label: "10 nach halb 11", phrase: "zehn nach halb ", next: true},
		{label: "20 vor 11", phrase: "zwanzig vor ", next: true},
	},
	{
		{label: "viertel vor 11", phrase: "viertel vor ", next: true},
		{label: "dreiviertel 11", phrase: "dreiviertel ", next: true},
	},
	{{label: "10 vor 11", phrase: "zehn vor ", next: true}},
	{{label: "5 vor 11", phrase: "funf vor ", next: true}},
}

var hourWords = [12]string{
	"ZWOLF", "EINS", "ZWEI", "DREI", "VIER", "FUNF",
	"SECHS", "SIEBEN", "ACHT", "NEUN", "ZEHN", "ELF",
}

func hourWord(hours int, uhr bool) string {
	h := ((hours % 12) + 12) % 12
	if uhr {
		if h == 1 {
			return "EIN UHR"
		}
		return hourWords[h] + " UHR"
	}
	return hourWords[h]
}

// Variants returns the phrase labels offered for a segment, in choice order.
func Variants(segment int) []string {
	if segment < 0 || segment >= Segments {
		return nil
	}
	out := make([]string, 0, len(periods[segment]))
	for _, p := range periods[segment] {
		out = append(out, p.label)
	}
	return out
}

// Table returns the labels of every segment, the shape served to clients.
func Table() [][]string {
	out := make([][]string, Segments)
	for i := range Segments {
		out[i] = Variants(i)
	}
	return out
}

// Sentence builds the clock sentence for the given time. choices holds the
// phrase variant per segment; a choice the segment does not offer falls back
// to the first variant.
func Sentence(choices [Segments]uint8, hours, minutes int) string {
	minutes = ((minutes % 60) + 60) % 60
	segment := minutes / 5
	options := periods[segment]
	choice := int(choices[segment])
	if choice >= len(options) {
		choice = 0
	}
	p := options[choice]

	h := hours
	if p.next {
		h++
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(p.phrase)
	sb.WriteString(hourWord(h, p.uhr))
	return sb.String()
}

// Locate returns the Layout offsets of every letter of sentence. Words are
// searched left to right, each after the end of the previous one.
func Locate(sentence string) ([]int, error) {
	var out []int
	cursor := 0
	for _, word := range strings.Fields(sentence) {
		pos := strings.Index(Layout[cursor:], word)
		if pos < 0 {
			return out, fmt.Errorf("%w: %q", ErrWordNotOnClock, word)
		}
		pos += cursor
		for i := range len(word) {
			out = append(out, pos+i)
		}
		cursor = pos + len(word)
	}
	return out, nil
}

// Text returns the letters of Layout at the given offsets, used to describe
// what is currently lit.
func Text(offsets []int) string {
	var sb strings.Builder
	for _, o := range offsets {
		if o >= 0 && o < len(Layout) {
			sb.WriteByte(Layout[o])
		}
	}
	return sb.String()
}
