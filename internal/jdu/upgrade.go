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
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jdubot/jdu/internal/command"
	"github.com/jdubot/jdu/internal/config"
	"github.com/jdubot/jdu/internal/github"
	"github.com/jdubot/jdu/internal/gitrepo"
	"github.com/jdubot/jdu/internal/pom"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const reasonNoChanges = "No changes detected to commit"

func upgradeCommand() *cli.Command {
	flags := configFlags()
	flags = append(flags,
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "rewrite and commit in the local clones, but never push",
		},
		&cli.BoolFlag{
			Name:  "keep",
			Usage: "keep the workspace and clones after the run",
		},
		&cli.StringFlag{
			Name:  "workspace",
			Usage: "create the workspace in `directory` (default: home directory)",
		},
		outputFlag(),
	)
	return &cli.Command{
		Name:      "upgrade",
		Usage:     "upgrade the dependency in every configured repository",
		UsageText: "jdu upgrade [-c <config>] [--dry-run] [--keep] [--output table|json|yaml]",
		Description: `Examples:
  jdu upgrade
  jdu upgrade -c jdu.yaml --dry-run --keep
  JDU_SERVER_TOKEN=... jdu upgrade -c config.json --output json

Repositories are processed one at a time. For each repository, jdu will:
  1. Clone the origin branch (or the default branch) into the workspace
  2. Create the destiny branch, if configured; it must not exist yet
  3. Rewrite matching versions in every pom.xml
  4. Run verifyCommand, if configured
  5. Commit the changes; repositories without changes are skipped
  6. Push the branch
  7. Open a pull request (GitHub, with createPullRequest)

A failure only aborts the repository it happened in. The command exits with
an error when any repository failed.`,
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			output := cmd.String("output")
			out := cmd.Root().Writer
			progress := out
			if output != "table" {
				progress = cmd.Root().ErrWriter
			}
			parent := cmd.String("workspace")
			if parent == "" {
				parent, err = os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("failed to find home directory: %w", err)
				}
			}
			u, err := newUpgrader(cfg, filepath.Join(parent, cfg.TempDirName), progress)
			if err != nil {
				return err
			}
			u.dryRun = cmd.Bool("dry-run")
			u.keep = cmd.Bool("keep")
			return u.run(ctx, out, output)
		},
	}
}

// pullRequestCreator opens pull requests. It is satisfied by
// [github.Client].
type pullRequestCreator interface {
	CreatePullRequest(ctx context.Context, owner, repo string, pr github.PullRequest) (*github.PullRequestInfo, error)
}

type upgrader struct {
	cfg       *config.Config
	workspace string
	dryRun    bool
	keep      bool
	runID     string
	fs        afero.Fs
	console   console
	log       *slog.Logger
	prs       pullRequestCreator
}

func newUpgrader(cfg *config.Config, workspace string, progress io.Writer) (*upgrader, error) {
	runID := uuid.New().String()
	u := &upgrader{
		cfg:       cfg,
		workspace: workspace,
		runID:     runID,
		fs:        afero.NewOsFs(),
		console:   console{w: progress},
		log:       slog.With("run", runID),
	}
	if cfg.Server == config.ServerGitHub && cfg.CreatePullRequest {
		client, err := github.NewClient(cfg.ServerToken, cfg.ServerURL)
		if err != nil {
			return nil, err
		}
		u.prs = client
	}
	return u, nil
}

// run processes every repository, then writes the report to out.
func (u *upgrader) run(ctx context.Context, out io.Writer, output string) (err error) {
	start := time.Now()
	u.console.banner(u.cfg, u.runID)
	if err := os.RemoveAll(u.workspace); err != nil {
		return fmt.Errorf("failed to clean workspace: %w", err)
	}
	if err := os.MkdirAll(u.workspace, 0755); err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	if !u.keep {
		defer func() {
			cerr := os.RemoveAll(u.workspace)
			if err == nil && cerr != nil {
				err = fmt.Errorf("failed to remove workspace: %w", cerr)
			}
		}()
	}

	report := &Report{
		RunID:      u.runID,
		Dependency: u.cfg.DependencyName,
		Version:    u.cfg.DependencyVersion,
	}
	for _, repo := range u.cfg.Repositories {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := u.processRepo(ctx, repo)
		report.Results = append(report.Results, res)
		u.console.status(res)
	}

	data, err := encodeReport(output, report)
	if err != nil {
		return err
	}
	if output == "table" {
		fmt.Fprintln(out)
	}
	if _, err := out.Write(data); err != nil {
		return err
	}
	u.console.done(time.Since(start))
	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%d of %d repositories failed", n, len(report.Results))
	}
	return nil
}

// processRepo upgrades one repository. Errors are recorded in the result;
// the clone of a failed repository is removed unless --keep is set.
func (u *upgrader) processRepo(ctx context.Context, repo *config.Repository) *Result {
	res := &Result{Repository: repo.Name()}
	dir := filepath.Join(u.workspace, res.Repository)
	log := u.log.With("repository", res.Repository)
	if err := u.upgradeRepo(ctx, log, repo, dir, res); err != nil {
		log.Error("repository failed", "error", err)
		res.Status = StatusFailed
		res.Reason = err.Error()
		if !u.keep {
			if err := os.RemoveAll(dir); err != nil {
				log.Warn("failed to remove clone", "dir", dir, "error", err)
			}
		}
	}
	return res
}

func (u *upgrader) upgradeRepo(ctx context.Context, log *slog.Logger, repo *config.Repository, dir string, res *Result) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove stale clone: %w", err)
	}
	user, password := u.cfg.Credentials()
	r, err := gitrepo.Clone(ctx, dir, gitrepo.CloneOptions{
		URL:             u.cfg.CloneURL(repo),
		Branch:          repo.OriginBranch,
		Auth:            gitrepo.Auth{Username: user, Password: password},
		InsecureSkipTLS: u.cfg.DisableSSL,
	})
	if err != nil {
		return err
	}
	base, err := r.CurrentBranch()
	if err != nil {
		return err
	}
	branch := base
	if repo.DestinyBranch != "" {
		exists, err := r.RemoteBranchExists(ctx, repo.DestinyBranch)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", gitrepo.ErrBranchExists, repo.DestinyBranch)
		}
		if err := r.CreateBranch(repo.DestinyBranch); err != nil {
			return err
		}
		branch = repo.DestinyBranch
	}
	res.Branch = branch
	log.Debug("cloned repository", "dir", dir, "base", base, "branch", branch)

	result, err := pom.UpgradeTree(u.fs, dir, u.cfg.Ignore, pom.Options{
		Dependency:      u.cfg.DependencyName,
		Version:         u.cfg.DependencyVersion,
		ArtifactVersion: repo.ArtifactVersion,
		AllowDowngrade:  u.cfg.AllowDowngrade,
	})
	if err != nil {
		return err
	}
	res.Changes = result.Changes
	res.Skips = result.Skips
	for _, skip := range result.Skips {
		log.Info("left version unchanged", "file", skip.File, "name", skip.Name, "version", skip.Version, "reason", skip.Reason)
	}

	if u.cfg.VerifyCommand != "" {
		log.Debug("running verify command", "command", u.cfg.VerifyCommand)
		env := map[string]string{
			"JDU_DEPENDENCY_NAME":    u.cfg.DependencyName,
			"JDU_DEPENDENCY_VERSION": u.cfg.DependencyVersion,
			"JDU_REPOSITORY":         res.Repository,
			"JDU_BRANCH":             branch,
		}
		if err := command.Shell(ctx, dir, env, u.cfg.VerifyCommand); err != nil {
			return fmt.Errorf("verify command failed: %w", err)
		}
	}

	if err := r.AddAll(); err != nil {
		return err
	}
	data := messageData(u.cfg, repo, base, branch, result.Changes)
	message, err := render("commit message", u.cfg.CommitMessage, data)
	if err != nil {
		return err
	}
	hash, err := r.Commit(message, gitrepo.Signature{
		Name:  u.cfg.CommitAuthorName,
		Email: u.cfg.CommitAuthorEmail,
	})
	if errors.Is(err, gitrepo.ErrNothingToCommit) {
		res.Status = StatusSkipped
		res.Reason = reasonNoChanges
		return nil
	}
	if err != nil {
		return err
	}
	res.Commit = hash

	if u.dryRun {
		res.Status = StatusDryRun
		return nil
	}
	if err := r.Push(ctx, branch); err != nil {
		return err
	}
	res.Status = StatusPushed
	log.Info("pushed upgrade", "branch", branch, "commit", hash)

	if repo.DestinyBranch == "" {
		return nil
	}
	if u.prs == nil {
		if u.cfg.Server == config.ServerBitbucket {
			log.Info("open a pull request to merge the upgrade", "from", branch, "into", base)
		}
		return nil
	}
	url, err := u.openPullRequest(ctx, repo, base, branch, data)
	if err != nil {
		return fmt.Errorf("pushed %s, but %w", branch, err)
	}
	res.PullRequestURL = url
	return nil
}

func (u *upgrader) openPullRequest(ctx context.Context, repo *config.Repository, base, head string, data map[string]any) (string, error) {
	title, err := render("pull request title", u.cfg.PullRequestTitle, data)
	if err != nil {
		return "", err
	}
	body, err := render("pull request body", u.cfg.PullRequestBody, data)
	if err != nil {
		return "", err
	}
	remote, err := github.ParseRemote(u.cfg.CloneURL(repo))
	if err != nil {
		return "", err
	}
	info, err := u.prs.CreatePullRequest(ctx, remote.Owner, remote.Name, github.PullRequest{
		Title: title,
		Body:  body,
		Head:  head,
		Base:  base,
	})
	if err != nil {
		return "", err
	}
	u.log.Info("created pull request", "repository", repo.Name(), "url", info.URL)
	return info.URL, nil
}
