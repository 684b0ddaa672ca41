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

// Package ledserial pushes rendered frames to an LED controller over a
// serial line.
//
// A frame is the magic bytes "WC", the brightness, the LED count as a
// big-endian uint16, one RGB triplet per LED (grid rows top to bottom, then
// the minute indicators) and an XOR checksum of everything after the magic.
// RGB values are already scaled by the brightness.
package ledserial

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wordclock/wordclock-core/pkg/colors"
	"github.com/wordclock/wordclock-core/pkg/display"
	"github.com/wordclock/wordclock-core/pkg/helpers/syncutil"
	"go.bug.st/serial"
)

const (
	DefaultBaudRate = 115200
	LEDCount        = display.Width*display.Height + display.Indicators
	headerSize      = 5
	FrameSize       = headerSize + LEDCount*3 + 1
)

var (
	Magic        = [2]byte{'W', 'C'}
	ErrNoPort    = errors.New("no serial port found")
	ErrClosed    = errors.New("panel closed")
	ErrShortSend = errors.New("short write to serial port")
)

// PortFactory opens a serial port. Tests swap it for a fake.
type PortFactory func(path string, mode *serial.Mode) (io.WriteCloser, error)

func DefaultPortFactory(path string, mode *serial.Mode) (io.WriteCloser, error) {
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	return port, nil
}

// Panel sends a frame whenever the presented snapshot differs from the last
// one sent.
type Panel struct {
	port   io.WriteCloser
	colors colors.Table
	path   string
	last   []byte
	mu     syncutil.Mutex
}

// Open connects to the controller on path. An empty path picks the first
// USB serial device found.
func Open(path string, baud int, table colors.Table, factory PortFactory) (*Panel, error) {
	if factory == nil {
		factory = DefaultPortFactory
	}
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	if path == "" {
		found, err := DetectPort()
		if err != nil {
			return nil, err
		}
		path = found
	}
	port, err := factory(path, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int("baud", baud).Msgf("led panel connected: %s", path)
	return NewPanel(port, table, path), nil
}

func NewPanel(port io.WriteCloser, table colors.Table, path string) *Panel {
	if table == nil {
		table = colors.Default()
	}
	return &Panel{port: port, colors: table, path: path}
}

func (p *Panel) Path() string {
	return p.path
}

// Present writes snap to the controller unless it is unchanged.
func (p *Panel) Present(snap display.Snapshot) error {
	frame := EncodeFrame(snap, p.colors)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return ErrClosed
	}
	if string(frame) == string(p.last) {
		return nil
	}
	n, err := p.port.Write(frame)
	if err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if n != len(frame) {
		return fmt.Errorf("%w: %d of %d bytes", ErrShortSend, n, len(frame))
	}
	p.last = frame
	return nil
}

func (p *Panel) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	if err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

// EncodeFrame renders snap into the wire frame.
func EncodeFrame(snap display.Snapshot, table colors.Table) []byte {
	frame := make([]byte, 0, FrameSize)
	frame = append(frame, Magic[0], Magic[1], snap.Brightness)
	frame = binary.BigEndian.AppendUint16(frame, LEDCount)

	put := func(index uint8) {
		c := table.Color(index)
		frame = append(frame,
			scale(c.R, snap.Brightness),
			scale(c.G, snap.Brightness),
			scale(c.B, snap.Brightness),
		)
	}
	for row := range display.Height {
		for col := range display.Width {
			put(snap.Pixels[row][col])
		}
	}
	for _, index := range snap.Indicators {
		put(index)
	}

	var sum byte
	for _, b := range frame[len(Magic):] {
		sum ^= b
	}
	return append(frame, sum)
}

func scale(v, brightness uint8) uint8 {
	return uint8(uint16(v) * uint16(brightness) / display.MaxBrightness) //nolint:gosec // brightness <= 100
}

// DetectPort returns the first serial port that looks like a USB adapter.
func DetectPort() (string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return "", fmt.Errorf("failed to list serial ports: %w", err)
	}
	if port := pickPort(runtime.GOOS, ports); port != "" {
		return port, nil
	}
	return "", ErrNoPort
}

func pickPort(goos string, ports []string) string {
	prefixes := []string{"/dev/ttyUSB", "/dev/ttyACM"}
	switch goos {
	case "darwin":
		prefixes = []string{"/dev/tty.usbserial", "/dev/tty.usbmodem"}
	case "windows":
		prefixes = []string{"COM"}
	}
	for _, port := range ports {
		for _, prefix := range prefixes {
			if strings.HasPrefix(port, prefix) {
				return port
			}
		}
	}
	return ""
}
