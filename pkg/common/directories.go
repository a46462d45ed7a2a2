// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const FilePermissions = 0755

// ConfigFile is the location of the default configuration file relative
// to the xdg config directories.
var ConfigFile = filepath.Join("duel", "config.yaml")

// FindConfig looks for the default configuration file in the xdg config
// directories. It reports false if there is none.
func FindConfig() (string, bool) {
	path, err := xdg.SearchConfigFile(ConfigFile)
	if err != nil {
		return "", false
	}

	return path, true
}

// TryMkdir creates dir and its parents if they do not exist yet.
func TryMkdir(dir string) error {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return os.MkdirAll(dir, FilePermissions)
	}

	return nil
}

// ClearDir makes sure dir exists and deletes the files inside it.
// Subdirectories are left alone.
func ClearDir(dir string) error {
	if err := TryMkdir(dir); err != nil {
		return fmt.Errorf("clear %s: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("clear %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("clear %s: %w", dir, err)
		}
	}

	return nil
}
