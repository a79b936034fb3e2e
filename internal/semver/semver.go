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

// Package semver compares Maven version strings that follow semantic
// versioning closely enough to be ordered.
package semver

import (
	"cmp"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	// releaseQualifierRegexp matches the qualifiers some projects append to
	// release versions, such as "5.3.20.RELEASE" or "6.2.0.Final".
	releaseQualifierRegexp = regexp.MustCompile(`(?i)[.-](RELEASE|FINAL|GA)$`)

	numericRegexp = regexp.MustCompile(`^\d+$`)
)

// Compare returns -1, 0 or +1 depending on whether a is lower than, equal to
// or greater than b. The second result is false when either version cannot be
// interpreted as a semantic version, for example "2.13.4.2" or "${spring}".
// In that case the first result is 0 and must be ignored.
func Compare(a, b string) (int, bool) {
	va, buildA, ok := canonical(a)
	if !ok {
		return 0, false
	}
	vb, buildB, ok := canonical(b)
	if !ok {
		return 0, false
	}
	if c := semver.Compare(va, vb); c != 0 {
		return c, true
	}
	return cmp.Compare(buildA, buildB), true
}

// IsNewer reports whether current is comparable to and strictly newer than
// target.
func IsNewer(current, target string) bool {
	c, ok := Compare(current, target)
	return ok && c > 0
}

// canonical converts a Maven version into the "v"-prefixed form understood by
// [semver]. Missing minor and patch segments are zero-filled so that "1.2" and
// "1.2-SNAPSHOT" are accepted. A purely numeric suffix such as the "1" in
// "1.2.3-1" is a Maven build number, which orders after the release; it is
// returned separately instead of as a prerelease.
func canonical(version string) (string, int, bool) {
	version = strings.TrimSpace(version)
	if version == "" || strings.HasPrefix(version, "v") {
		return "", 0, false
	}
	version = releaseQualifierRegexp.ReplaceAllString(version, "")

	core, prerelease, _ := strings.Cut(version, "-")
	build := 0
	if numericRegexp.MatchString(prerelease) {
		n, err := strconv.Atoi(prerelease)
		if err != nil {
			return "", 0, false
		}
		build, prerelease = n, ""
	}
	parts := strings.Split(core, ".")
	if len(parts) > 3 {
		return "", 0, false
	}
	for _, p := range parts {
		if !numericRegexp.MatchString(p) {
			return "", 0, false
		}
	}
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	v := "v" + strings.Join(parts, ".")
	if prerelease != "" {
		v += "-" + prerelease
	}
	if !semver.IsValid(v) {
		return "", 0, false
	}
	return semver.Canonical(v), build, true
}
