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

package gitrepo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jdubot/jdu/internal/testhelper"
)

const pomContents = `<project>
  <version>1.0.0</version>
</project>
`

func cloneRemote(t *testing.T, remote, branch string) *Repository {
	t.Helper()
	repo, err := Clone(t.Context(), filepath.Join(t.TempDir(), "clone"), CloneOptions{URL: remote, Branch: branch})
	if err != nil {
		t.Fatal(err)
	}
	return repo
}

func TestClone(t *testing.T) {
	remote := testhelper.SetupRemote(t, "orders", map[string]string{"pom.xml": pomContents})
	testhelper.CreateRemoteBranch(t, remote, "develop")
	for _, test := range []struct {
		name       string
		branch     string
		wantBranch string
	}{
		{name: "remote head", wantBranch: testhelper.DefaultBranch},
		{name: "explicit branch", branch: "develop", wantBranch: "develop"},
	} {
		t.Run(test.name, func(t *testing.T) {
			repo := cloneRemote(t, remote, test.branch)
			got, err := repo.CurrentBranch()
			if err != nil {
				t.Fatal(err)
			}
			if got != test.wantBranch {
				t.Errorf("CurrentBranch() = %q, want %q", got, test.wantBranch)
			}
			data, err := os.ReadFile(filepath.Join(repo.Dir, "pom.xml"))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(pomContents, string(data)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClone_MissingBranch(t *testing.T) {
	remote := testhelper.SetupRemote(t, "orders", map[string]string{"pom.xml": pomContents})
	_, err := Clone(t.Context(), filepath.Join(t.TempDir(), "clone"), CloneOptions{URL: remote, Branch: "missing"})
	if !errors.Is(err, ErrBranchNotFound) {
		t.Errorf("Clone() error = %v, want %v", err, ErrBranchNotFound)
	}
}

func TestClone_BadURL(t *testing.T) {
	_, err := Clone(t.Context(), filepath.Join(t.TempDir(), "clone"), CloneOptions{URL: filepath.Join(t.TempDir(), "nothing-here")})
	if err == nil {
		t.Fatal("Clone() expected error, got nil")
	}
	if errors.Is(err, ErrBranchNotFound) {
		t.Errorf("Clone() error = %v, want a clone failure", err)
	}
}

func TestRemoteBranchExists(t *testing.T) {
	remote := testhelper.SetupRemote(t, "orders", map[string]string{"pom.xml": pomContents})
	testhelper.CreateRemoteBranch(t, remote, "feature/upgrade")
	repo := cloneRemote(t, remote, "")
	for _, test := range []struct {
		branch string
		want   bool
	}{
		{branch: testhelper.DefaultBranch, want: true},
		{branch: "feature/upgrade", want: true},
		{branch: "feature", want: false},
		{branch: "develop", want: false},
	} {
		t.Run(test.branch, func(t *testing.T) {
			got, err := repo.RemoteBranchExists(t.Context(), test.branch)
			if err != nil {
				t.Fatal(err)
			}
			if got != test.want {
				t.Errorf("RemoteBranchExists(%q) = %v, want %v", test.branch, got, test.want)
			}
		})
	}
}

func TestCommitAndPush(t *testing.T) {
	remote := testhelper.SetupRemote(t, "orders", map[string]string{"pom.xml": pomContents})
	repo := cloneRemote(t, remote, "")
	if err := repo.CreateBranch("jdu/upgrade"); err != nil {
		t.Fatal(err)
	}
	got, err := repo.CurrentBranch()
	if err != nil {
		t.Fatal(err)
	}
	if got != "jdu/upgrade" {
		t.Errorf("CurrentBranch() = %q, want %q", got, "jdu/upgrade")
	}

	const updated = `<project>
  <version>1.1.0</version>
</project>
`
	if err := os.WriteFile(filepath.Join(repo.Dir, "pom.xml"), []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddAll(); err != nil {
		t.Fatal(err)
	}
	clean, err := repo.IsClean()
	if err != nil {
		t.Fatal(err)
	}
	if clean {
		t.Fatal("IsClean() = true after a change, want false")
	}
	author := Signature{Name: "JDU Bot", Email: "jdu-bot@example.com"}
	hash, err := repo.Commit("build(deps): Upgrade app 1.1.0", author)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Push(t.Context(), "jdu/upgrade"); err != nil {
		t.Fatal(err)
	}

	commit := testhelper.RemoteCommit(t, remote, "jdu/upgrade")
	if commit.Hash.String() != hash {
		t.Errorf("remote head = %s, want %s", commit.Hash, hash)
	}
	if diff := cmp.Diff("build(deps): Upgrade app 1.1.0", commit.Message); diff != "" {
		t.Errorf("message mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(author, Signature{Name: commit.Author.Name, Email: commit.Author.Email}); diff != "" {
		t.Errorf("author mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(updated, testhelper.RemoteFile(t, remote, "jdu/upgrade", "pom.xml")); diff != "" {
		t.Errorf("pushed file mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(pomContents, testhelper.RemoteFile(t, remote, testhelper.DefaultBranch, "pom.xml")); diff != "" {
		t.Errorf("default branch changed (-want +got):\n%s", diff)
	}

	// A second push has nothing to send.
	if err := repo.Push(t.Context(), "jdu/upgrade"); err != nil {
		t.Errorf("Push() again = %v, want nil", err)
	}
}

func TestCommit_NothingToCommit(t *testing.T) {
	remote := testhelper.SetupRemote(t, "orders", map[string]string{"pom.xml": pomContents})
	repo := cloneRemote(t, remote, "")
	if err := repo.AddAll(); err != nil {
		t.Fatal(err)
	}
	clean, err := repo.IsClean()
	if err != nil {
		t.Fatal(err)
	}
	if !clean {
		t.Error("IsClean() = false on a fresh clone, want true")
	}
	if _, err := repo.Commit("empty", Signature{Name: "a", Email: "a@example.com"}); !errors.Is(err, ErrNothingToCommit) {
		t.Errorf("Commit() error = %v, want %v", err, ErrNothingToCommit)
	}
}
