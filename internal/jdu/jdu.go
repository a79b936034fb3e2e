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

// Package jdu implements the jdu command, which upgrades a Maven dependency
// across a fleet of git repositories.
package jdu

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/urfave/cli/v3"
)

// Run executes the jdu command with the given arguments.
func Run(ctx context.Context, args ...string) error {
	return newCommand(os.Stdout).Run(ctx, args)
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "jdu",
		Usage:     "upgrade a Maven dependency across repositories",
		UsageText: "jdu <command> [flags]",
		Writer:    out,
		Commands: []*cli.Command{
			upgradeCommand(),
			checkCommand(),
			rewriteCommand(),
			initCommand(),
			versionCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:      "version",
		Usage:     "print the version",
		UsageText: "jdu version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintf(cmd.Root().Writer, "jdu %s\n", Version())
			return err
		},
	}
}

// Version returns the module version jdu was built from.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "(devel)"
	}
	return info.Main.Version
}

func setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	handler := slog.NewTextHandler(os.Stderr, opts)
	slog.SetDefault(slog.New(handler))
}
