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

// Package testhelper provides helper functions for tests.
// These are used across packages
package testhelper

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DefaultBranch is the branch created by [SetupRemote].
const DefaultBranch = "main"

// RequireCommand skips the test if the specified command is not found in PATH.
// Use this to skip tests that depend on external tools like sh or mvn, so
// that `go test ./...` will always pass on a fresh clone of the repo.
func RequireCommand(t *testing.T, cmd string) {
	t.Helper()
	if _, err := exec.LookPath(cmd); err != nil {
		t.Skipf("skipping test because %s is not installed", cmd)
	}
}

// SetupRemote creates a bare repository named name.git in a temporary
// directory and pushes a single commit holding files to its [DefaultBranch].
// It returns the path of the bare repository, which can be used as a clone
// URL.
func SetupRemote(t *testing.T, name string, files map[string]string) string {
	t.Helper()
	remoteDir := filepath.Join(t.TempDir(), name+".git")
	if _, err := git.PlainInitWithOptions(remoteDir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(DefaultBranch)},
		Bare:        true,
	}); err != nil {
		t.Fatal(err)
	}

	workDir := t.TempDir()
	repo, err := git.PlainInitWithOptions(workDir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(DefaultBranch)},
	})
	if err != nil {
		t.Fatal(err)
	}
	for name, contents := range files {
		path := filepath.Join(workDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
			t.Fatal(err)
		}
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Commit("initial commit", &git.CommitOptions{
		Author:            testSignature(),
		AllowEmptyCommits: true,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{remoteDir}}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Push(&git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{"refs/heads/*:refs/heads/*"},
	}); err != nil {
		t.Fatal(err)
	}
	return remoteDir
}

// CreateRemoteBranch creates branch in the bare repository at remoteDir,
// pointing at the head of [DefaultBranch].
func CreateRemoteBranch(t *testing.T, remoteDir, branch string) {
	t.Helper()
	repo := openRemote(t, remoteDir)
	head, err := repo.Reference(plumbing.NewBranchReferenceName(DefaultBranch), true)
	if err != nil {
		t.Fatal(err)
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(branch), head.Hash())
	if err := repo.Storer.SetReference(ref); err != nil {
		t.Fatal(err)
	}
}

// RemoteHasBranch reports whether branch exists in the bare repository at
// remoteDir.
func RemoteHasBranch(t *testing.T, remoteDir, branch string) bool {
	t.Helper()
	_, err := openRemote(t, remoteDir).Reference(plumbing.NewBranchReferenceName(branch), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false
	}
	if err != nil {
		t.Fatal(err)
	}
	return true
}

// RemoteCommit returns the commit at the head of branch in the bare
// repository at remoteDir.
func RemoteCommit(t *testing.T, remoteDir, branch string) *object.Commit {
	t.Helper()
	repo := openRemote(t, remoteDir)
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		t.Fatal(err)
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		t.Fatal(err)
	}
	return commit
}

// RemoteFile returns the contents of name at the head of branch in the bare
// repository at remoteDir.
func RemoteFile(t *testing.T, remoteDir, branch, name string) string {
	t.Helper()
	file, err := RemoteCommit(t, remoteDir, branch).File(name)
	if err != nil {
		t.Fatal(err)
	}
	contents, err := file.Contents()
	if err != nil {
		t.Fatal(err)
	}
	return contents
}

func openRemote(t *testing.T, remoteDir string) *git.Repository {
	t.Helper()
	repo, err := git.PlainOpen(remoteDir)
	if err != nil {
		t.Fatal(err)
	}
	return repo
}

func testSignature() *object.Signature {
	return &object.Signature{
		Name:  "Test Account",
		Email: "test@test-only.com",
		When:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}
