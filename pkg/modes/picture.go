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

package modes

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wordclock/wordclock-core/pkg/colors"
	"github.com/wordclock/wordclock-core/pkg/display"
)

// Picture is a static image. Each pixel holds 0 (dark), 1 (the base color),
// 2 (Color1) or 3 (Color2). Without additional colors only 0 and 1 are used.
type Picture struct {
	Pixels [display.Height][display.Width]uint8
	Color1 uint8
	Color2 uint8
	Base
}

func (*Picture) Kind() Kind { return KindPicture }

// MultiColor reports whether an additional color is in use, which switches
// the pixel encoding to two bits.
func (p *Picture) MultiColor() bool {
	return p.Color1 != colors.Off || p.Color2 != colors.Off
}

func (p *Picture) normalize() {
	multi := p.MultiColor()
	for r := range p.Pixels {
		for c, v := range p.Pixels[r] {
			v &= 0b11
			if !multi && v != 1 {
				v = 0
			}
			p.Pixels[r][c] = v
		}
	}
}

const (
	pictureWordsMono  = 2
	pictureWordsMulti = 4
	pictureColor1Bit  = 56
	pictureColor2Bit  = 60
)

type pictureHandler struct{}

func (pictureHandler) kind() Kind { return KindPicture }

func (pictureHandler) init(*Env) *Picture {
	return &Picture{Base: newBase(KindPicture)}
}

func (pictureHandler) size(cfg *Picture) int {
	if cfg.MultiColor() {
		return pictureWordsMulti
	}
	return pictureWordsMono
}

func (h pictureHandler) toBinary(cfg *Picture, _ *Env, words []uint64) int {
	n := h.size(cfg)
	bpp := uint(1)
	if n == pictureWordsMulti {
		bpp = 2
	}
	for i := range words[:n] {
		words[i] = 0
	}
	for r := range cfg.Pixels {
		for c, v := range cfg.Pixels[r] {
			bit := uint(r*display.Width+c) * bpp //nolint:gosec // small grid index
			setBits(&words[bit/64], bit%64, bpp, uint64(v))
		}
	}
	if n == pictureWordsMulti {
		setBits(&words[n-1], pictureColor1Bit, 4, uint64(cfg.Color1))
		setBits(&words[n-1], pictureColor2Bit, 4, uint64(cfg.Color2))
	}
	return n
}

func (pictureHandler) fromBinary(cfg *Picture, _ *Env, words []uint64) {
	cfg.Pixels = [display.Height][display.Width]uint8{}
	cfg.Color1, cfg.Color2 = colors.Off, colors.Off

	var bpp uint
	switch len(words) {
	case pictureWordsMono:
		bpp = 1
	case pictureWordsMulti:
		bpp = 2
		cfg.Color1 = uint8(getBits(words[3], pictureColor1Bit, 4)) //nolint:gosec // 4 bits
		cfg.Color2 = uint8(getBits(words[3], pictureColor2Bit, 4)) //nolint:gosec // 4 bits
	default:
		log.Warn().Msgf("picture: unexpected word count %d", len(words))
		return
	}
	for r := range cfg.Pixels {
		for c := range cfg.Pixels[r] {
			bit := uint(r*display.Width+c) * bpp //nolint:gosec // small grid index
			cfg.Pixels[r][c] = uint8(getBits(words[bit/64], bit%64, bpp)) //nolint:gosec // <= 2 bits
		}
	}
}

func (pictureHandler) toDocument(cfg *Picture, env *Env, data, schema Document) {
	data["color1"] = env.Colors.Name(cfg.Color1)
	data["color2"] = env.Colors.Name(cfg.Color2)

	rows := make(map[string]string, display.Height)
	var sb strings.Builder
	for r := range cfg.Pixels {
		sb.Reset()
		for _, v := range cfg.Pixels[r] {
			if v == 0 {
				sb.WriteByte(' ')
			} else {
				sb.WriteByte('0' + v)
			}
		}
		rows[display.RowKey(r)] = sb.String()
	}
	data["pixels"] = rows

	schema["color1"] = schemaColor()
	schema["color2"] = schemaColor()
	schema["pixels"] = Document{
		"type":    "pixels",
		"rows":    display.Height,
		"columns": display.Width,
		"values":  []string{" ", "1", "2", "3"},
	}
}

func (pictureHandler) fromDocument(cfg *Picture, env *Env, doc Fields) error {
	color1, has1, err := doc.DecodeColor("color1", env.Colors)
	if err != nil {
		return err
	}
	color2, has2, err := doc.DecodeColor("color2", env.Colors)
	if err != nil {
		return err
	}
	var rows map[string]string
	hasPixels, err := doc.Decode("pixels", &rows)
	if err != nil {
		return err
	}

	var pixels [display.Height][display.Width]uint8
	if hasPixels {
		for r := range pixels {
			row := rows[display.RowKey(r)]
			for c := range pixels[r] {
				if c >= len(row) || row[c] == ' ' {
					continue
				}
				if row[c] < '0' || row[c] > '3' {
					return fmt.Errorf("%w: pixel %q at row %d column %d", ErrInvalidField, row[c], r, c)
				}
				pixels[r][c] = row[c] - '0'
			}
		}
	}

	if has1 {
		cfg.Color1 = color1
	}
	if has2 {
		cfg.Color2 = color2
	}
	if hasPixels {
		cfg.Pixels = pixels
	}
	cfg.normalize()
	return nil
}

func (pictureHandler) onActivate(cfg *Picture, env *Env) {
	env.Surface.Clear()
	env.Surface.SetBrightness(cfg.Brightness)
}

func (pictureHandler) onLoop(cfg *Picture, env *Env, _ uint64) uint32 {
	palette := [4]uint8{colors.Off, cfg.Color, cfg.Color1, cfg.Color2}
	env.Surface.Clear()
	for r := range cfg.Pixels {
		for c, v := range cfg.Pixels[r] {
			if v != 0 {
				env.Surface.SetPixel(c, r, palette[v&0b11])
			}
		}
	}
	return 0
}
