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

package api

import (
	"io"
	"net/http"
	"path"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// mimeFallbacks covers extensions the mime package may not know on every
// platform.
var mimeFallbacks = map[string]string{
	".woff":  "font/woff",
	".woff2": "font/woff2",
}

const indexFile = "/index.html"

// WebFS returns the web client directory dir on afs as a read-only
// http.FileSystem, or nil when there is no such directory.
func WebFS(afs afero.Fs, dir string) http.FileSystem {
	if dir == "" {
		return nil
	}
	info, err := afs.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Info().Msgf("web client not found: %s", dir)
		return nil
	}
	return afero.NewHttpFs(afero.NewReadOnlyFs(afero.NewBasePathFs(afs, dir))).Dir("/")
}

// fsCustom404 serves files from root and answers every other path with
// index.html so client-side routes survive a reload.
func fsCustom404(root http.FileSystem) http.Handler {
	files := http.FileServer(root)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")

		name := path.Clean("/" + r.URL.Path)
		if name != indexFile && isFile(root, name) {
			if ct, ok := mimeFallbacks[path.Ext(name)]; ok {
				w.Header().Set("Content-Type", ct)
			}
			files.ServeHTTP(w, r)
			return
		}
		serveIndex(w, root)
	})
}

func isFile(root http.FileSystem, name string) bool {
	f, err := root.Open(name)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	return err == nil && !info.IsDir()
}

func serveIndex(w http.ResponseWriter, root http.FileSystem) {
	f, err := root.Open(indexFile)
	if err != nil {
		log.Error().Err(err).Msg("web client has no index.html")
		http.Error(w, "web client unavailable", http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		log.Warn().Err(err).Msg("writing index.html")
	}
}
