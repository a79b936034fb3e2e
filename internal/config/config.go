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

//go:generate go run -tags configdocgen ../../cmd/config_doc_generate.go -input . -output ../../doc/config.md

// Package config defines the jdu configuration file: the hosting server and
// its credentials, the dependency to upgrade, and the repositories to process.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jdubot/jdu/internal/yaml"
	"github.com/pelletier/go-toml/v2"
)

// Server identifies where repositories are hosted.
type Server string

const (
	// ServerGitHub clones from https://github.com/<owner>/<name> (or a GitHub
	// Enterprise host derived from ServerURL) and can open pull requests.
	ServerGitHub Server = "github"
	// ServerBitbucket clones from the repository URL using the owner and token
	// as basic auth credentials.
	ServerBitbucket Server = "bitbucket"
	// ServerGit clones the repository URL verbatim. Credentials are optional,
	// which makes it suitable for self-hosted remotes and local paths.
	ServerGit Server = "git"
)

// Servers lists the supported servers in the order they are documented.
var Servers = []Server{ServerGitHub, ServerBitbucket, ServerGit}

const (
	// DefaultTempDirName is the workspace directory created under the user's
	// home directory.
	DefaultTempDirName = ".jdu"

	// DefaultCommitAuthorName is the author name of upgrade commits.
	DefaultCommitAuthorName = "JDU Bot"

	// DefaultCommitAuthorEmail is the author email of upgrade commits.
	DefaultCommitAuthorEmail = "jdu-bot@users.noreply.github.com"

	// DefaultCommitMessage is the mustache template for upgrade commits.
	DefaultCommitMessage = "build(deps): Upgrade {{{dependencyName}}} {{{dependencyVersion}}}"

	// DefaultPullRequestBody is the mustache template for pull request bodies.
	DefaultPullRequestBody = `Upgrade {{{dependencyName}}} to {{{dependencyVersion}}}.
{{#hasChanges}}

Changed declarations:

{{#changes}}
- {{{file}}}: {{{element}}} {{{from}}} -> {{{to}}}
{{/changes}}
{{/hasChanges}}`

	// githubUser is the basic auth user name paired with a GitHub token.
	githubUser = "x-access-token"
)

// ErrInvalid is returned by [Config.Validate] when required values are
// missing or inconsistent.
var ErrInvalid = errors.New("invalid config")

// Config is the jdu configuration. Field names match the keys of the legacy
// config.json file, so existing files keep working.
type Config struct {
	// Server is one of "github", "bitbucket" or "git".
	Server Server `json:"server" yaml:"server" toml:"server"`

	// ServerToken is the access token used to clone, push and open pull
	// requests. It can also be provided through JDU_SERVER_TOKEN.
	ServerToken string `json:"serverToken,omitempty" yaml:"serverToken,omitempty" toml:"serverToken,omitempty"`

	// ServerOwner is the GitHub organization, or the Bitbucket user name.
	ServerOwner string `json:"serverOwner,omitempty" yaml:"serverOwner,omitempty" toml:"serverOwner,omitempty"`

	// ServerURL is the GitHub API endpoint for GitHub Enterprise, such as
	// https://github.example.com/api/v3/. Empty means github.com.
	ServerURL string `json:"serverURL,omitempty" yaml:"serverURL,omitempty" toml:"serverURL,omitempty"`

	// DependencyName is the artifactId to upgrade. A "groupId:artifactId"
	// value also requires the groupId to match.
	DependencyName string `json:"dependencyName" yaml:"dependencyName" toml:"dependencyName"`

	// DependencyVersion is the version written to matching declarations.
	DependencyVersion string `json:"dependencyVersion" yaml:"dependencyVersion" toml:"dependencyVersion"`

	Repositories []*Repository `json:"repositories" yaml:"repositories" toml:"repositories"`

	// TempDirName is the name of the workspace directory under the home
	// directory. It is deleted and recreated on every run.
	TempDirName string `json:"tempDirName,omitempty" yaml:"tempDirName,omitempty" toml:"tempDirName,omitempty"`

	// DisableSSL skips TLS certificate verification for git operations.
	DisableSSL bool `json:"disableSSL,omitempty" yaml:"disableSSL,omitempty" toml:"disableSSL,omitempty"`

	CommitAuthorName  string `json:"commitAuthorName,omitempty" yaml:"commitAuthorName,omitempty" toml:"commitAuthorName,omitempty"`
	CommitAuthorEmail string `json:"commitAuthorEmail,omitempty" yaml:"commitAuthorEmail,omitempty" toml:"commitAuthorEmail,omitempty"`

	// CommitMessage is a mustache template. See [DefaultCommitMessage].
	CommitMessage string `json:"commitMessage,omitempty" yaml:"commitMessage,omitempty" toml:"commitMessage,omitempty"`

	// CreatePullRequest opens a pull request from the destiny branch into the
	// origin branch. Only supported for GitHub.
	CreatePullRequest bool `json:"createPullRequest,omitempty" yaml:"createPullRequest,omitempty" toml:"createPullRequest,omitempty"`

	// PullRequestTitle is a mustache template; it defaults to CommitMessage.
	PullRequestTitle string `json:"pullRequestTitle,omitempty" yaml:"pullRequestTitle,omitempty" toml:"pullRequestTitle,omitempty"`

	// PullRequestBody is a mustache template. See [DefaultPullRequestBody].
	PullRequestBody string `json:"pullRequestBody,omitempty" yaml:"pullRequestBody,omitempty" toml:"pullRequestBody,omitempty"`

	// VerifyCommand is run with "sh -c" inside each clone after the poms are
	// rewritten. A failure aborts the repository before anything is committed.
	// JDU_DEPENDENCY_NAME, JDU_DEPENDENCY_VERSION, JDU_REPOSITORY and
	// JDU_BRANCH are set in its environment.
	VerifyCommand string `json:"verifyCommand,omitempty" yaml:"verifyCommand,omitempty" toml:"verifyCommand,omitempty"`

	// Ignore lists gitignore-style patterns of pom.xml files to leave alone.
	Ignore []string `json:"ignore,omitempty" yaml:"ignore,omitempty" toml:"ignore,omitempty"`

	// AllowDowngrade permits replacing a newer version with an older one.
	AllowDowngrade bool `json:"allowDowngrade,omitempty" yaml:"allowDowngrade,omitempty" toml:"allowDowngrade,omitempty"`
}

// Repository describes one repository to upgrade.
type Repository struct {
	// URL locates the repository. For GitHub only its last path segment is
	// used, as the clone URL is built from the owner.
	URL string `json:"url" yaml:"url" toml:"url"`

	// OriginBranch is the branch to clone. Empty means the remote's default
	// branch.
	OriginBranch string `json:"originBranch,omitempty" yaml:"originBranch,omitempty" toml:"originBranch,omitempty"`

	// DestinyBranch, if set, is created from OriginBranch and receives the
	// upgrade commit. It must not exist on the remote yet.
	DestinyBranch string `json:"destinyBranch,omitempty" yaml:"destinyBranch,omitempty" toml:"destinyBranch,omitempty"`

	// ArtifactVersion, if set, replaces the project's own version.
	ArtifactVersion string `json:"artifactVersion,omitempty" yaml:"artifactVersion,omitempty" toml:"artifactVersion,omitempty"`
}

// Read reads the configuration file at path and applies defaults. The format
// is chosen by extension: .json, .toml, or YAML for anything else.
func Read(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		cfg, err = readJSON(path)
	case ".toml":
		cfg, err = readTOML(path)
	default:
		cfg, err = yaml.Read[Config](path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg.SetDefaults()
	return cfg, nil
}

func readJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readTOML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills in optional values that were left empty.
func (c *Config) SetDefaults() {
	if c.TempDirName == "" {
		c.TempDirName = DefaultTempDirName
	}
	if c.CommitAuthorName == "" {
		c.CommitAuthorName = DefaultCommitAuthorName
	}
	if c.CommitAuthorEmail == "" {
		c.CommitAuthorEmail = DefaultCommitAuthorEmail
	}
	if c.CommitMessage == "" {
		c.CommitMessage = DefaultCommitMessage
	}
	if c.PullRequestTitle == "" {
		c.PullRequestTitle = c.CommitMessage
	}
	if c.PullRequestBody == "" {
		c.PullRequestBody = DefaultPullRequestBody
	}
}

// Validate reports every missing or inconsistent value. The returned error
// wraps [ErrInvalid].
func (c *Config) Validate() error {
	var problems []string
	switch {
	case c.Server == "":
		problems = append(problems, "server is required")
	case !slices.Contains(Servers, c.Server):
		problems = append(problems, fmt.Sprintf("server %q is not valid, must be one of %s", c.Server, serverNames()))
	case c.Server != ServerGit:
		if c.ServerToken == "" {
			problems = append(problems, "serverToken is required")
		}
		if c.ServerOwner == "" {
			problems = append(problems, "serverOwner is required")
		}
	}
	if c.ServerURL != "" {
		if _, err := url.ParseRequestURI(c.ServerURL); err != nil {
			problems = append(problems, fmt.Sprintf("serverURL %q is not a valid URL", c.ServerURL))
		}
	}
	if c.DependencyName == "" {
		problems = append(problems, "dependencyName is required")
	}
	if c.DependencyVersion == "" {
		problems = append(problems, "dependencyVersion is required")
	}
	if len(c.Repositories) == 0 {
		problems = append(problems, "at least one repository is required")
	}
	if c.CreatePullRequest && c.Server != ServerGitHub {
		problems = append(problems, "createPullRequest is only supported for the github server")
	}
	seen := make(map[string]bool)
	for i, repo := range c.Repositories {
		if repo == nil || repo.URL == "" {
			problems = append(problems, fmt.Sprintf("repositories[%d].url is required", i))
			continue
		}
		name := repo.Name()
		if seen[name] {
			problems = append(problems, fmt.Sprintf("repository name %q is used more than once", name))
		}
		seen[name] = true
		if repo.DestinyBranch != "" && repo.DestinyBranch == repo.OriginBranch {
			problems = append(problems, fmt.Sprintf("repository %q: destinyBranch must differ from originBranch", name))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func serverNames() string {
	var names []string
	for _, s := range Servers {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// Name returns the repository name: the last segment of its URL without a
// ".git" suffix.
func (r *Repository) Name() string {
	u := strings.TrimRight(r.URL, "/")
	if i := strings.LastIndexAny(u, "/:"); i != -1 {
		u = u[i+1:]
	}
	return strings.TrimSuffix(u, ".git")
}

// CloneURL returns the URL the repository is cloned from.
func (c *Config) CloneURL(r *Repository) string {
	switch c.Server {
	case ServerGitHub:
		return fmt.Sprintf("https://%s/%s/%s.git", c.gitHubHost(), c.ServerOwner, r.Name())
	case ServerBitbucket:
		u := r.URL
		if i := strings.Index(u, "://"); i != -1 {
			u = u[i+len("://"):]
		}
		return "https://" + u
	default:
		return r.URL
	}
}

// gitHubHost returns the host serving git for GitHub. For GitHub Enterprise
// it is the host of ServerURL.
func (c *Config) gitHubHost() string {
	if c.ServerURL == "" {
		return "github.com"
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Host == "" {
		return "github.com"
	}
	return u.Host
}

// Credentials returns the basic auth user name and password for git
// operations. Both are empty when no token is configured.
func (c *Config) Credentials() (user, password string) {
	if c.ServerToken == "" {
		return "", ""
	}
	switch c.Server {
	case ServerGitHub:
		return githubUser, c.ServerToken
	case ServerBitbucket:
		return c.ServerOwner, c.ServerToken
	default:
		if c.ServerOwner != "" {
			return c.ServerOwner, c.ServerToken
		}
		return githubUser, c.ServerToken
	}
}

// Sample returns an example configuration, written by "jdu init".
func Sample() *Config {
	return &Config{
		Server:            ServerGitHub,
		ServerOwner:       "my-org",
		DependencyName:    "spring-boot-starter-parent",
		DependencyVersion: "3.3.4",
		Repositories: []*Repository{
			{
				URL:           "https://github.com/my-org/orders-service",
				OriginBranch:  "main",
				DestinyBranch: "jdu/spring-boot-3.3.4",
			},
			{
				URL:             "https://github.com/my-org/billing-service",
				OriginBranch:    "develop",
				ArtifactVersion: "1.4.0",
			},
		},
		CreatePullRequest: true,
		Ignore:            []string{"**/src/test/**"},
	}
}
