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

// Package helpers holds process bootstrap helpers shared by the commands.
package helpers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const (
	AppName = "wordclock"
	LogFile = "wordclock.log"
	// DirEnv overrides the config and data directory.
	DirEnv = "WORDCLOCK_DIR"
)

// ConfigDir is where the config file, the log and the stored slots live.
// WORDCLOCK_DIR wins, then the XDG config home.
func ConfigDir() (string, error) {
	if v := os.Getenv(DirEnv); v != "" {
		return v, nil
	}
	if xdg.ConfigHome == "" {
		return "", errors.New("failed to find user config dir")
	}
	return filepath.Join(xdg.ConfigHome, AppName), nil
}

// InitLogging sends the global logger to a rotated file in logDir and to
// any extra writers. The returned closer releases the log file.
func InitLogging(logDir string, writers ...io.Writer) (io.Closer, error) {
	if logDir == "" {
		return nil, errors.New("log directory not set")
	}
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, LogFile),
		MaxSize:    1,
		MaxBackups: 2,
	}
	logWriters := append([]io.Writer{file}, writers...)

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logWriter = io.MultiWriter(logWriters...)
	log.Logger = log.Output(logWriter).
		With().Timestamp().Caller().Logger()

	return file, nil
}

var logWriter io.Writer = os.Stderr

// LogWriter returns the writer set up by InitLogging, for hooks that need to
// wrap the global logger.
func LogWriter() io.Writer {
	return logWriter
}

// ConsoleWriter is the human-readable writer used when running in a
// terminal.
func ConsoleWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
}
