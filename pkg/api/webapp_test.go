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
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordclock/wordclock-core/pkg/config"
)

const testIndex = "<!DOCTYPE html><html><body>clock</body></html>"

func TestFsCustom404(t *testing.T) {
	t.Parallel()

	mockFS := fstest.MapFS{
		"index.html":        {Data: []byte(testIndex)},
		"assets/app.js":     {Data: []byte("console.log('clock');")},
		"assets/style.css":  {Data: []byte("body { color: red; }")},
		"assets/font.woff2": {Data: []byte("WOFF2 binary data")},
	}
	handler := fsCustom404(http.FS(mockFS))

	tests := []struct {
		name          string
		path          string
		contentType   string
		contentTypes  []string
		body          string
		expectNoCache bool
	}{
		{
			name:          "index at root",
			path:          "/",
			contentType:   "text/html; charset=utf-8",
			body:          "<!DOCTYPE html>",
			expectNoCache: true,
		},
		{
			name:         "javascript",
			path:         "/assets/app.js",
			contentTypes: []string{"text/javascript; charset=utf-8", "application/javascript"},
			body:         "console.log",
		},
		{
			name:        "css",
			path:        "/assets/style.css",
			contentType: "text/css; charset=utf-8",
			body:        "body {",
		},
		{
			name:        "woff2 fallback type",
			path:        "/assets/font.woff2",
			contentType: "font/woff2",
		},
		{
			name:          "client route falls back to index",
			path:          "/modes/3",
			contentType:   "text/html; charset=utf-8",
			body:          "<!DOCTYPE html>",
			expectNoCache: true,
		},
		{
			name:          "directory serves index",
			path:          "/assets/",
			contentType:   "text/html; charset=utf-8",
			expectNoCache: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			if len(tt.contentTypes) > 0 {
				assert.Contains(t, tt.contentTypes, rec.Header().Get("Content-Type"))
			} else {
				assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			}
			if tt.body != "" {
				assert.Contains(t, rec.Body.String(), tt.body)
			}
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			if tt.expectNoCache {
				assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
			}
		})
	}
}

func TestFsCustom404MissingIndex(t *testing.T) {
	t.Parallel()
	handler := fsCustom404(http.FS(fstest.MapFS{"other.txt": {Data: []byte("x")}}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unknown", http.NoBody))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebFS(t *testing.T) {
	t.Parallel()
	afs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(afs, "/srv/web/index.html", []byte(testIndex), 0o644))
	require.NoError(t, afero.WriteFile(afs, "/srv/notes.txt", []byte("x"), 0o644))

	assert.Nil(t, WebFS(afs, ""))
	assert.Nil(t, WebFS(afs, "/srv/missing"))
	assert.Nil(t, WebFS(afs, "/srv/notes.txt"))

	web := WebFS(afs, "/srv/web")
	require.NotNil(t, web)
	f, err := web.Open("/index.html")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = web.Open("/../notes.txt")
	require.Error(t, err, "paths stay inside the web root")
}

func TestServerServesWebClient(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.NewConfig(dir, config.BaseDefaults)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, config.DefaultWebRoot), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultWebRoot, "index.html"), []byte(testIndex), 0o600))

	s := NewServer(cfg, &directRunner{}, nil, nil)
	t.Cleanup(func() { _ = s.Close() })

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app", http.NoBody))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/app/", rec.Header().Get("Location"))

	for _, path := range []string{"/app/", "/app/modes/2"} {
		rec = httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, testIndex, rec.Body.String(), path)
	}
}

func TestServerWithoutWebClient(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/app/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
