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
	"context"
	"fmt"
	"path/filepath"

	"github.com/jdubot/jdu/internal/pom"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

func rewriteCommand() *cli.Command {
	return &cli.Command{
		Name:      "rewrite",
		Usage:     "rewrite pom.xml files in a local directory",
		UsageText: "jdu rewrite [-C <dir>] --dependency <name> --version <version> [--artifact-version <version>]",
		Description: `Examples:
  jdu rewrite --dependency jackson-databind --version 2.17.0
  jdu rewrite -C ~/src/orders --dependency com.google.guava:guava --version 33.0.0-jre

Rewrites every pom.xml below the directory the same way "jdu upgrade" does,
without cloning, committing or pushing.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "C",
				Value: ".",
				Usage: "rewrite the poms below `directory`",
			},
			&cli.StringFlag{
				Name:     "dependency",
				Required: true,
				Usage:    "artifactId, or groupId:artifactId, to upgrade",
			},
			&cli.StringFlag{
				Name:     "version",
				Required: true,
				Usage:    "target `version`",
			},
			&cli.StringFlag{
				Name:  "artifact-version",
				Usage: "also set the project version to `version`",
			},
			&cli.StringSliceFlag{
				Name:  "ignore",
				Usage: "skip poms matching the gitignore-style `pattern`",
			},
			&cli.BoolFlag{
				Name:  "allow-downgrade",
				Usage: "replace versions newer than the target",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
			outputFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			setupLogger(cmd.Bool("verbose"))
			dir, err := filepath.Abs(cmd.String("C"))
			if err != nil {
				return fmt.Errorf("failed to resolve directory path: %w", err)
			}
			result, err := pom.UpgradeTree(afero.NewOsFs(), dir, cmd.StringSlice("ignore"), pom.Options{
				Dependency:      cmd.String("dependency"),
				Version:         cmd.String("version"),
				ArtifactVersion: cmd.String("artifact-version"),
				AllowDowngrade:  cmd.Bool("allow-downgrade"),
			})
			if err != nil {
				return err
			}
			return writeRewrite(cmd, result)
		},
	}
}

func writeRewrite(cmd *cli.Command, result *pom.Result) error {
	out := cmd.Root().Writer
	output := cmd.String("output")
	if output != "table" {
		data, err := encodeResult(output, result)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
	if len(result.Changes) == 0 {
		fmt.Fprintln(out, reasonNoChanges)
	} else if _, err := out.Write(encodeChangesAsTable(result.Changes)); err != nil {
		return err
	}
	for _, skip := range result.Skips {
		fmt.Fprintf(out, "skipped %s %s in %s: %s\n", skip.Name, skip.Version, skip.File, skip.Reason)
	}
	return nil
}
