// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pom

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/spf13/afero"
)

// FileName is the name of the files rewritten by this package.
const FileName = "pom.xml"

// skippedDirs are never searched for pom files.
var skippedDirs = []string{".git", "target", "node_modules"}

// Result summarizes the rewrite of a directory tree.
type Result struct {
	// Files lists the pom files that were written, relative to the root.
	Files   []string `json:"files" yaml:"files"`
	Changes []Change `json:"changes" yaml:"changes"`
	Skips   []Skip   `json:"skips,omitempty" yaml:"skips,omitempty"`
}

// Find returns the path of every pom.xml below root, sorted. Paths matching
// one of the gitignore-style ignore patterns are left out.
func Find(fsys afero.Fs, root string, ignore []string) ([]string, error) {
	var patterns []gitignore.Pattern
	for _, p := range ignore {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	matcher := gitignore.NewMatcher(patterns)

	var found []string
	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if info.IsDir() {
			if path != root && (slices.Contains(skippedDirs, info.Name()) || matcher.Match(parts, true)) {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Name() != FileName || matcher.Match(parts, false) {
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(found)
	return found, nil
}

// UpgradeFile rewrites a single pom file. The file is only written when at
// least one version changed.
func UpgradeFile(fsys afero.Fs, path string, opts Options) ([]Change, []Skip, error) {
	edit, err := upgradeFile(fsys, path, opts)
	if err != nil {
		return nil, nil, err
	}
	if err := edit.write(fsys); err != nil {
		return nil, nil, err
	}
	return edit.changes, edit.skips, nil
}

// fileEdit is the upgraded content of one pom file, not yet written.
type fileEdit struct {
	path    string
	data    []byte
	changes []Change
	skips   []Skip
}

func upgradeFile(fsys afero.Fs, path string, opts Options) (*fileEdit, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	changes, skips, err := doc.Upgrade(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	edit := &fileEdit{path: path, changes: changes, skips: skips}
	if len(changes) == 0 {
		return edit, nil
	}
	edit.data, err = doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return edit, nil
}

func (e *fileEdit) write(fsys afero.Fs) error {
	if len(e.changes) == 0 {
		return nil
	}
	info, err := fsys.Stat(e.path)
	if err != nil {
		return err
	}
	return afero.WriteFile(fsys, e.path, e.data, info.Mode().Perm())
}

// UpgradeTree rewrites every pom file below root. Nothing is written unless
// every file could be parsed and upgraded.
func UpgradeTree(fsys afero.Fs, root string, ignore []string, opts Options) (*Result, error) {
	paths, err := Find(fsys, root, ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to find pom files: %w", err)
	}
	var edits []*fileEdit
	for _, path := range paths {
		edit, err := upgradeFile(fsys, path, opts)
		if err != nil {
			return nil, err
		}
		edits = append(edits, edit)
	}

	result := &Result{}
	for _, edit := range edits {
		if err := edit.write(fsys); err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(root, edit.path)
		if err != nil {
			return nil, err
		}
		rel = filepath.ToSlash(rel)
		for i := range edit.changes {
			edit.changes[i].File = rel
		}
		for i := range edit.skips {
			edit.skips[i].File = rel
		}
		if len(edit.changes) > 0 {
			result.Files = append(result.Files, rel)
		}
		result.Changes = append(result.Changes, edit.changes...)
		result.Skips = append(result.Skips, edit.skips...)
	}
	return result, nil
}
