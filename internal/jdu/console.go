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
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/jdubot/jdu/internal/config"
)

// console prints progress for people watching a run. Reports and logs are
// written elsewhere.
type console struct {
	w io.Writer
}

func (c console) banner(cfg *config.Config, runID string) {
	owner := cfg.ServerOwner
	if owner == "" {
		owner = "-"
	}
	fmt.Fprintln(c.w, color.New(color.Bold).Sprint("JDU: Java Dependency Upgrader"))
	fmt.Fprintf(c.w, "%s %s (%s)\n", color.HiBlackString("Organization:"), owner, cfg.Server)
	fmt.Fprintf(c.w, "%s %s\n", color.HiBlackString("Dependency:  "), cfg.DependencyName)
	fmt.Fprintf(c.w, "%s %s\n", color.HiBlackString("Version:     "), cfg.DependencyVersion)
	fmt.Fprintf(c.w, "%s %d\n", color.HiBlackString("Repositories:"), len(cfg.Repositories))
	fmt.Fprintf(c.w, "%s %s\n\n", color.HiBlackString("Run:         "), runID)
}

func (c console) status(res *Result) {
	var mark, detail string
	switch res.Status {
	case StatusPushed:
		mark = color.GreenString("✔")
		detail = fmt.Sprintf("pushed %s", res.Branch)
		if res.PullRequestURL != "" {
			detail += ", " + res.PullRequestURL
		}
	case StatusDryRun:
		mark = color.CyanString("•")
		detail = fmt.Sprintf("committed to %s, not pushed", res.Branch)
	case StatusSkipped:
		mark = color.YellowString("-")
		detail = res.Reason
	default:
		mark = color.RedString("✘")
		detail = res.Reason
	}
	fmt.Fprintf(c.w, "%s %s: %s\n", mark, res.Repository, detail)
}

func (c console) done(elapsed time.Duration) {
	fmt.Fprintf(c.w, "\n%s in %s\n", color.GreenString("Done!"), elapsed.Round(time.Millisecond))
}
