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

// Package command provides helpers to execute external commands with logging.
package command

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Verbose controls whether commands are printed to stderr before execution.
var Verbose bool

// RunInDir runs the program in dir with optional extra environment
// variables and captures any error output. An empty dir runs the program in
// the current working directory. If env is nil or empty, the command inherits
// the environment of the calling process.
func RunInDir(ctx context.Context, dir string, env map[string]string, command string, arg ...string) error {
	cmd := newCmd(ctx, dir, env, command, arg...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%v: %v\n%s", cmd, err, output)
	}
	return nil
}

// Shell runs a command line through "sh -c" in dir. It is used for
// user-provided commands, such as a build verification step.
func Shell(ctx context.Context, dir string, env map[string]string, line string) error {
	return RunInDir(ctx, dir, env, "sh", "-c", line)
}

func newCmd(ctx context.Context, dir string, env map[string]string, command string, arg ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, command, arg...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}
	if Verbose {
		fmt.Fprintf(os.Stderr, "%s\n", cmd.String())
	}
	return cmd
}
