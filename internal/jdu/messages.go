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
	"fmt"
	"strings"

	"github.com/cbroglie/mustache"
	"github.com/jdubot/jdu/internal/config"
	"github.com/jdubot/jdu/internal/pom"
)

// messageData is the mustache context for commit messages and pull request
// titles and bodies.
func messageData(cfg *config.Config, repo *config.Repository, base, branch string, changes []pom.Change) map[string]any {
	var items []map[string]string
	for _, c := range changes {
		items = append(items, map[string]string{
			"file":    c.File,
			"section": c.Section,
			"element": c.Element,
			"name":    c.Name,
			"from":    c.From,
			"to":      c.To,
		})
	}
	return map[string]any{
		"dependencyName":    cfg.DependencyName,
		"dependencyVersion": cfg.DependencyVersion,
		"repository":        repo.Name(),
		"artifactVersion":   repo.ArtifactVersion,
		"originBranch":      base,
		"destinyBranch":     branch,
		"changes":           items,
		"hasChanges":        len(items) > 0,
	}
}

func render(name, tmpl string, data map[string]any) (string, error) {
	out, err := mustache.Render(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%s is empty", name)
	}
	return out, nil
}
