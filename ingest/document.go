// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingest

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/recallit/core"
)

// supportedExtensions lists the file extensions treated as documents.
var supportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// readDocuments loads the supported files in dir as documents for owner.
// Unreadable files are logged and counted, not fatal.
func readDocuments(owner, dir string, logger *slog.Logger) ([]*core.Document, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, err
	}

	var (
		docs       []*core.Document
		unreadable int
	)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !supportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			logger.Error("skipping unreadable file", "file", entry.Name(), "err", err)
			unreadable++
			continue
		}

		docs = append(docs, &core.Document{
			Owner:  owner,
			Source: entry.Name(),
			Text:   string(data),
		})
	}

	return docs, unreadable, nil
}
