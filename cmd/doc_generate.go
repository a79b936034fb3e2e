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

//go:build docgen

// Command doc_generate regenerates the doc.go of a command from the help
// text of its subcommands. It is run with go generate from the command's
// directory.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"text/template"
)

const jduDesc = `Jdu upgrades a Maven dependency across many git repositories.

Usage:

	jdu <command> [arguments]
`

var docTemplate = template.Must(template.New("doc").Parse(`// Copyright 2026 Google LLC
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

//go:generate go run -tags docgen ../doc_generate.go -cmd .

/*
{{.Description}}
The commands are:
{{range .Commands}}
# {{.Name}}

{{.Help}}{{end}}*/
package main
`))

type commandDoc struct {
	Name string
	Help string
}

var cmdPath = flag.String("cmd", "", "path of the command to document, such as ./cmd/jdu")

func main() {
	flag.Parse()
	if *cmdPath == "" {
		log.Fatal("must specify -cmd flag")
	}
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	root, err := help()
	if err != nil {
		return err
	}
	names, err := commandNames(root)
	if err != nil {
		return err
	}
	var commands []commandDoc
	for _, name := range names {
		text, err := help(name)
		if err != nil {
			return fmt.Errorf("help for %s: %w", name, err)
		}
		commands = append(commands, commandDoc{Name: name, Help: indent(text)})
	}
	var buf bytes.Buffer
	if err := docTemplate.Execute(&buf, struct {
		Description string
		Commands    []commandDoc
	}{
		Description: jduDesc,
		Commands:    commands,
	}); err != nil {
		return err
	}
	return os.WriteFile("doc.go", buf.Bytes(), 0644)
}

// help returns the --help output of the given subcommand.
func help(args ...string) (string, error) {
	cmd := exec.Command("go", append(append([]string{"run", *cmdPath}, args...), "--help")...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil && out.Len() == 0 {
		return "", err
	}
	return strings.ReplaceAll(out.String(), "*/", "* /"), nil
}

// commandNames parses the COMMANDS section of urfave/cli help output.
func commandNames(help string) ([]string, error) {
	_, block, ok := strings.Cut(help, "COMMANDS:\n")
	if !ok {
		return nil, errors.New("could not find commands header")
	}
	block, _, _ = strings.Cut(block, "\n\n")
	var names []string
	sc := bufio.NewScanner(strings.NewReader(block))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		name := strings.TrimSuffix(fields[0], ",")
		if name == "help" || name == "h" {
			continue
		}
		names = append(names, name)
	}
	return names, sc.Err()
}

// indent formats help text as a gofmt-friendly doc comment block.
func indent(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		switch {
		case strings.TrimSpace(line) == "":
			b.WriteString("\n")
		case strings.HasSuffix(line, ":") && !strings.HasPrefix(line, " "):
			b.WriteString(line + "\n\n")
		default:
			b.WriteString("\t" + strings.TrimSpace(line) + "\n")
		}
	}
	return b.String() + "\n"
}
