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
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/jdubot/jdu/internal/config"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "validate the configuration and print the plan",
		UsageText: "jdu check [-c <config>]",
		Description: `Examples:
  jdu check
  jdu check -c jdu.yaml

Validates the configuration and prints, for every repository, the URL it
will be cloned from and the branches that will be used. Nothing is cloned.`,
		Flags: configFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return writePlan(cmd.Root().Writer, cfg)
		},
	}
}

func writePlan(w io.Writer, cfg *config.Config) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Upgrade %s to %s in %d repositories (%s)\n\n",
		cfg.DependencyName, cfg.DependencyVersion, len(cfg.Repositories), cfg.Server)
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"Repository", "Clone URL", "Origin", "Destiny", "Artifact version"})
	for _, repo := range cfg.Repositories {
		origin := repo.OriginBranch
		if origin == "" {
			origin = "(default)"
		}
		destiny := repo.DestinyBranch
		if destiny == "" {
			destiny = origin
		}
		t.AppendRow(table.Row{repo.Name(), cfg.CloneURL(repo), origin, destiny, repo.ArtifactVersion})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	_, err := w.Write(buf.Bytes())
	return err
}
