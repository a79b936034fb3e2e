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
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jdubot/jdu/internal/config"
	"github.com/jdubot/jdu/internal/pom"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newCommand(&out).Run(t.Context(), append([]string{"jdu"}, args...))
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	got, err := runCommand(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if want := "jdu " + Version() + "\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "jdu.yaml")
	got, err := runCommand(t, "init", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Wrote "+path) {
		t.Errorf("output = %q", got)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# jdu configuration.\n#\n") {
		t.Errorf("missing header comment:\n%s", data)
	}
	cfg, err := config.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	want := config.Sample()
	want.SetDefaults()
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if _, err := runCommand(t, "init", path); !errors.Is(err, errConfigExists) {
		t.Errorf("second init error = %v, want %v", err, errConfigExists)
	}
}

func TestInitCommand_NotYAML(t *testing.T) {
	if _, err := runCommand(t, "init", filepath.Join(t.TempDir(), "config.json")); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestInitCommand_DefaultPath(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := runCommand(t, "init"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(defaultInitPath); err != nil {
		t.Errorf("expected %s to be written: %v", defaultInitPath, err)
	}
}

func TestCheckCommand(t *testing.T) {
	t.Setenv(tokenEnvVar, "")
	cfg := &config.Config{
		Server:            config.ServerBitbucket,
		ServerOwner:       "jdoe",
		DependencyName:    "guava",
		DependencyVersion: "33.0.0",
		Repositories: []*config.Repository{
			{URL: "https://bitbucket.example.com/scm/team/orders.git", DestinyBranch: "jdu/guava"},
			{URL: "https://bitbucket.example.com/scm/team/billing.git", OriginBranch: "develop", ArtifactVersion: "2.1.0"},
		},
	}
	path := writeConfig(t, cfg)

	if _, err := runCommand(t, "check", "-c", path); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("check without token error = %v, want %v", err, config.ErrInvalid)
	}

	t.Setenv(tokenEnvVar, "secret")
	got, err := runCommand(t, "check", "-c", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"Upgrade guava to 33.0.0 in 2 repositories (bitbucket)",
		"https://bitbucket.example.com/scm/team/orders.git",
		"jdu/guava",
		"(default)",
		"develop",
		"2.1.0",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "secret") {
		t.Errorf("output leaks the token:\n%s", got)
	}
}

func TestResolveConfigPath(t *testing.T) {
	for _, test := range []struct {
		name    string
		flag    string
		files   []string
		want    string
		wantErr error
	}{
		{name: "flag wins", flag: "custom.toml", files: []string{"config.json"}, want: "custom.toml"},
		{name: "legacy json first", files: []string{"jdu.yaml", "config.json"}, want: "config.json"},
		{name: "yaml", files: []string{"jdu.yaml"}, want: "jdu.yaml"},
		{name: "toml", files: []string{"jdu.toml"}, want: "jdu.toml"},
		{name: "nothing", wantErr: errNoConfig},
	} {
		t.Run(test.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for _, name := range test.files {
				if err := os.WriteFile(name, nil, 0644); err != nil {
					t.Fatal(err)
				}
			}
			got, err := resolveConfigPath(test.flag)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("error = %v, want %v", err, test.wantErr)
			}
			if got != test.want {
				t.Errorf("resolveConfigPath() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestRewriteCommand(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pom.xml"), []byte(ordersPOM), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := runCommand(t, "rewrite", "-C", dir, "--dependency", "com.google.guava:guava", "--version", "33.0.0", "--artifact-version", "1.1.0")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"guava.version", "31.0.0", "33.0.0", "1.1.0"} {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "pom.xml"))
	if err != nil {
		t.Fatal(err)
	}
	want := strings.NewReplacer(
		"<guava.version>31.0.0</guava.version>", "<guava.version>33.0.0</guava.version>",
		"<version>1.0.0</version>", "<version>1.1.0</version>",
	).Replace(ordersPOM)
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	got, err = runCommand(t, "rewrite", "-C", dir, "--dependency", "guava", "--version", "32.0.0")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{reasonNoChanges, "skipped guava.version 33.0.0 in pom.xml"} {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
}

func TestRewriteCommand_MissingFlags(t *testing.T) {
	if _, err := runCommand(t, "rewrite", "-C", t.TempDir(), "--version", "1.0.0"); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestEncodeReport(t *testing.T) {
	report := &Report{
		RunID:      "run-1",
		Dependency: "guava",
		Version:    "33.0.0",
		Results: []*Result{
			{
				Repository:     "orders",
				Branch:         "jdu/guava",
				Status:         StatusPushed,
				PullRequestURL: "https://github.com/my-org/orders/pull/7",
				Changes: []pom.Change{
					{File: "pom.xml", Section: "dependencies", Element: "dependency", Name: "guava", From: "31.0.0", To: "33.0.0"},
				},
			},
			{Repository: "billing", Branch: "main", Status: StatusSkipped, Reason: reasonNoChanges},
		},
	}
	for _, test := range []struct {
		output string
		want   []string
	}{
		{
			output: "table",
			want: []string{
				"REPOSITORY",
				"https://github.com/my-org/orders/pull/7",
				reasonNoChanges,
			},
		},
		{
			output: "json",
			want: []string{
				`"runID": "run-1"`,
				`"status": "pushed"`,
				`"pullRequestURL": "https://github.com/my-org/orders/pull/7"`,
				`"reason": "No changes detected to commit"`,
			},
		},
		{
			output: "yaml",
			want: []string{
				"runID: run-1",
				"status: skipped",
				"from: 31.0.0",
			},
		},
	} {
		t.Run(test.output, func(t *testing.T) {
			data, err := encodeReport(test.output, report)
			if err != nil {
				t.Fatal(err)
			}
			for _, want := range test.want {
				if !strings.Contains(string(data), want) {
					t.Errorf("output does not contain %q:\n%s", want, data)
				}
			}
		})
	}
	if _, err := encodeReport("xml", report); err == nil {
		t.Error("expected error for unknown output, got nil")
	}
}

func TestReportFailed(t *testing.T) {
	report := &Report{Results: []*Result{
		{Status: StatusPushed},
		{Status: StatusFailed},
		{Status: StatusSkipped},
		{Status: StatusFailed},
	}}
	if got := report.Failed(); got != 2 {
		t.Errorf("Failed() = %d, want 2", got)
	}
}

func TestRender(t *testing.T) {
	cfg := &config.Config{DependencyName: "guava", DependencyVersion: "33.0.0"}
	cfg.SetDefaults()
	repo := &config.Repository{URL: "https://github.com/my-org/orders.git", ArtifactVersion: "1.1.0"}
	changes := []pom.Change{
		{File: "pom.xml", Element: "property", Name: "guava.version", From: "31.0.0", To: "33.0.0"},
		{File: "api/pom.xml", Element: "parent", Name: "orders-api", From: "1.0.0", To: "1.1.0"},
	}
	data := messageData(cfg, repo, "main", "jdu/guava", changes)
	for _, test := range []struct {
		name string
		tmpl string
		want string
	}{
		{name: "default commit message", tmpl: cfg.CommitMessage, want: "build(deps): Upgrade guava 33.0.0"},
		{name: "branches", tmpl: "{{{repository}}}: {{{destinyBranch}}} -> {{{originBranch}}}", want: "orders: jdu/guava -> main"},
		{name: "artifact version", tmpl: "release {{{artifactVersion}}}", want: "release 1.1.0"},
		{name: "change list", tmpl: "{{#changes}}{{{name}}}={{{to}}};{{/changes}}", want: "guava.version=33.0.0;orders-api=1.1.0;"},
		{name: "escaped variable", tmpl: "{{dependencyName}} <b>", want: "guava <b>"},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, err := render(test.name, test.tmpl, data)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRender_Errors(t *testing.T) {
	data := messageData(&config.Config{}, &config.Repository{}, "", "", nil)
	for _, test := range []struct {
		name string
		tmpl string
	}{
		{name: "unclosed section", tmpl: "{{#changes}}"},
		{name: "empty", tmpl: "{{#hasChanges}}x{{/hasChanges}}"},
	} {
		t.Run(test.name, func(t *testing.T) {
			if _, err := render(test.name, test.tmpl, data); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := console{w: &buf}
	cfg := &config.Config{Server: config.ServerGit, DependencyName: "guava", DependencyVersion: "33.0.0"}
	c.banner(cfg, "run-1")
	c.status(&Result{Repository: "orders", Branch: "main", Status: StatusPushed})
	c.status(&Result{Repository: "billing", Status: StatusSkipped, Reason: reasonNoChanges})
	c.status(&Result{Repository: "legacy", Status: StatusFailed, Reason: "boom"})
	c.status(&Result{Repository: "api", Branch: "main", Status: StatusDryRun})
	c.done(1500 * time.Millisecond)
	for _, want := range []string{
		"JDU: Java Dependency Upgrader",
		"guava",
		"33.0.0",
		"run-1",
		"orders: pushed main",
		"billing: " + reasonNoChanges,
		"legacy: boom",
		"api: committed to main, not pushed",
		"Done!",
		"1.5s",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output does not contain %q:\n%s", want, buf.String())
		}
	}
}
