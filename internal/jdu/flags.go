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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/jdubot/jdu/internal/command"
	"github.com/jdubot/jdu/internal/config"
	"github.com/urfave/cli/v3"
)

const tokenEnvVar = "JDU_SERVER_TOKEN"

var (
	// defaultConfigPaths are tried in order when --config is not given.
	defaultConfigPaths = []string{"config.json", "jdu.yaml", "jdu.yml", "jdu.toml"}

	outputFormats = []string{"table", "json", "yaml"}

	errNoConfig = errors.New("no config file found")
)

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "read the configuration from `file` (default: config.json, jdu.yaml, jdu.yml or jdu.toml)",
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "server access `token`, overrides serverToken",
			Sources: cli.EnvVars(tokenEnvVar),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "enable debug logging and print executed commands",
		},
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "output",
		Value: "table",
		Usage: "report `format`: table, json or yaml",
		Validator: func(s string) error {
			if !slices.Contains(outputFormats, s) {
				return fmt.Errorf("unknown output format %q", s)
			}
			return nil
		},
	}
}

// loadConfig reads and validates the configuration selected by the flags of
// cmd. It also configures logging.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	verbose := cmd.Bool("verbose")
	setupLogger(verbose)
	command.Verbose = verbose

	path, err := resolveConfigPath(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	cfg, err := config.Read(path)
	if err != nil {
		return nil, err
	}
	if token := cmd.String("token"); token != "" {
		cfg.ServerToken = token
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	for _, p := range defaultConfigPaths {
		_, err := os.Stat(p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w, tried %v; run \"jdu init\" to create one", errNoConfig, defaultConfigPaths)
}
