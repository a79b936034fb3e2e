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

// Package gitrepo clones, branches, commits and pushes the repositories
// being upgraded. It uses go-git, so no git binary is required.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// RemoteName is the name of the remote a repository is cloned from.
const RemoteName = "origin"

var (
	// ErrBranchExists is returned when a branch to be created already exists
	// on the remote.
	ErrBranchExists = errors.New("branch already exists on the remote")

	// ErrBranchNotFound is returned when a requested branch does not exist
	// on the remote.
	ErrBranchNotFound = errors.New("branch not found on the remote")

	// ErrNothingToCommit is returned by [Repository.Commit] when the working
	// tree has no changes.
	ErrNothingToCommit = errors.New("nothing to commit")
)

// Auth holds HTTP basic credentials. A zero Auth clones anonymously.
type Auth struct {
	Username string
	Password string
}

func (a Auth) method() transport.AuthMethod {
	if a.Password == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: a.Username, Password: a.Password}
}

// CloneOptions configures [Clone].
type CloneOptions struct {
	URL string
	// Branch is the branch to check out. If empty, the remote HEAD is used.
	Branch          string
	Auth            Auth
	InsecureSkipTLS bool
}

// Signature identifies the author of a commit.
type Signature struct {
	Name  string
	Email string
}

// Repository is a working copy cloned by [Clone].
type Repository struct {
	// Dir is the root of the working tree.
	Dir string

	repo     *git.Repository
	auth     transport.AuthMethod
	insecure bool
}

// Clone clones opts.URL into dir.
func Clone(ctx context.Context, dir string, opts CloneOptions) (*Repository, error) {
	slog.Debug("cloning repository", "url", opts.URL, "branch", opts.Branch, "dir", dir)
	auth := opts.Auth.method()
	cloneOpts := &git.CloneOptions{
		URL:             opts.URL,
		RemoteName:      RemoteName,
		Auth:            auth,
		InsecureSkipTLS: opts.InsecureSkipTLS,
	}
	if opts.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
		cloneOpts.SingleBranch = true
	}
	repo, err := git.PlainCloneContext(ctx, dir, false, cloneOpts)
	if err != nil {
		if opts.Branch != "" && isMissingRef(err) {
			return nil, fmt.Errorf("%w: %s", ErrBranchNotFound, opts.Branch)
		}
		return nil, fmt.Errorf("failed to clone %s: %w", opts.URL, err)
	}
	return &Repository{
		Dir:      dir,
		repo:     repo,
		auth:     auth,
		insecure: opts.InsecureSkipTLS,
	}, nil
}

func isMissingRef(err error) bool {
	return errors.Is(err, git.NoMatchingRefSpecError{}) || errors.Is(err, plumbing.ErrReferenceNotFound)
}

// CurrentBranch returns the short name of the checked out branch.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is detached at %s", head.Hash())
	}
	return head.Name().Short(), nil
}

// RemoteBranchExists reports whether branch exists on the remote. It lists
// the remote references, like git ls-remote.
func (r *Repository) RemoteBranchExists(ctx context.Context, branch string) (bool, error) {
	remote, err := r.repo.Remote(RemoteName)
	if err != nil {
		return false, err
	}
	refs, err := remote.ListContext(ctx, &git.ListOptions{
		Auth:            r.auth,
		InsecureSkipTLS: r.insecure,
	})
	if err != nil {
		return false, fmt.Errorf("failed to list remote branches: %w", err)
	}
	want := plumbing.NewBranchReferenceName(branch)
	for _, ref := range refs {
		if ref.Name() == want {
			return true, nil
		}
	}
	return false, nil
}

// CreateBranch creates branch at the current HEAD and checks it out.
func (r *Repository) CreateBranch(branch string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	if err := wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: true,
		Keep:   true,
	}); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branch, err)
	}
	return nil
}

// AddAll stages every change in the working tree, including deletions.
func (r *Repository) AddAll() error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// IsClean reports whether the working tree and index match HEAD.
func (r *Repository) IsClean() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, err
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}
	return status.IsClean(), nil
}

// Commit records the staged changes and returns the new commit hash. It
// returns [ErrNothingToCommit] when the working tree is clean.
func (r *Repository) Commit(message string, author Signature) (string, error) {
	clean, err := r.IsClean()
	if err != nil {
		return "", err
	}
	if clean {
		return "", ErrNothingToCommit
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", err
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author.Name,
			Email: author.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return hash.String(), nil
}

// Push pushes the local branch to the branch of the same name on the
// remote. Pushing a branch that is already up to date is not an error.
func (r *Repository) Push(ctx context.Context, branch string) error {
	ref := plumbing.NewBranchReferenceName(branch)
	slog.Debug("pushing branch", "branch", branch, "dir", r.Dir)
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName:      RemoteName,
		RefSpecs:        []config.RefSpec{config.RefSpec(ref + ":" + ref)},
		Auth:            r.auth,
		InsecureSkipTLS: r.insecure,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push %s: %w", branch, err)
	}
	return nil
}
