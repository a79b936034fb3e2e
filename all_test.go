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

package jdu

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"testing"
)

var noHeaderRequiredFiles = []string{
	".gitignore",
	"LICENSE",
	"go.mod",
	"go.sum",
	"jdu",
}

var ignoredExts = map[string]bool{
	".json": true,
	".md":   true,
	".toml": true,
	".txt":  true,
	".xml":  true,
	".yaml": true,
	".yml":  true,
}

var ignoredDirs = []string{
	".git",
	".idea",
	".vscode",
	"_examples",
	"testdata",
}

// expectedHeader defines the regex for the required copyright header.
const expectedHeader = `^// Copyright 202\d Google LLC
//
// Licensed under the Apache License, Version 2.0 \(the "License"\);
// you may not use this file except in compliance with the License\.
// You may obtain a copy of the License at`

var headerRegex = regexp.MustCompile(expectedHeader)

func TestHeaders(t *testing.T) {
	sfs := os.DirFS(".")
	err := fs.WalkDir(sfs, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if slices.Contains(ignoredDirs, d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if slices.Contains(noHeaderRequiredFiles, filepath.Base(path)) || ignoredExts[filepath.Ext(path)] {
			return nil
		}
		data, err := fs.ReadFile(sfs, path)
		if err != nil {
			return err
		}
		if !headerRegex.Match(data) {
			t.Errorf("%q: invalid header", path)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
