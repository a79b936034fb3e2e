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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jdubot/jdu/internal/config"
	"github.com/jdubot/jdu/internal/yaml"
	"github.com/urfave/cli/v3"
)

const defaultInitPath = "jdu.yaml"

var errConfigExists = errors.New("config file already exists")

var sampleComments = []string{
	"jdu configuration.",
	"",
	"server is one of github, bitbucket or git. The token can also be set with",
	"the " + tokenEnvVar + " environment variable.",
	"commitMessage, pullRequestTitle and pullRequestBody are mustache templates.",
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "write a sample configuration file",
		UsageText: "jdu init [path]",
		Description: `Examples:
  jdu init
  jdu init configs/spring-boot.yaml

Writes a commented sample configuration to path (default: jdu.yaml). An
existing file is never overwritten.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := defaultInitPath
			if cmd.Args().Len() > 0 {
				path = cmd.Args().Get(0)
			}
			if err := writeSample(path); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.Root().Writer, "Wrote %s\n", path)
			return err
		},
	}
}

func writeSample(path string) error {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
	default:
		return fmt.Errorf("init writes YAML, use a .yaml or .yml path instead of %q", path)
	}
	_, err := os.Stat(path)
	if err == nil {
		return fmt.Errorf("%w: %s", errConfigExists, path)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return yaml.Write(path, config.Sample(), sampleComments...)
}
