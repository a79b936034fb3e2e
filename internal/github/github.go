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

// Package github opens pull requests on GitHub and GitHub Enterprise.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v69/github"
)

var errNotGitHubRemote = errors.New("not a GitHub remote")

// Client wraps a go-github client.
type Client struct {
	client *github.Client
}

// NewClient returns a client authenticated with token. An empty apiURL
// targets github.com; otherwise apiURL is the GitHub Enterprise endpoint.
func NewClient(token, apiURL string) (*Client, error) {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if apiURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", apiURL, err)
		}
	}
	return &Client{client: client}, nil
}

// PullRequest describes a pull request to open.
type PullRequest struct {
	Title string
	Body  string
	// Head is the branch holding the changes.
	Head string
	// Base is the branch the changes are merged into.
	Base string
}

// PullRequestInfo identifies an opened pull request.
type PullRequestInfo struct {
	Number int
	URL    string
}

// CreatePullRequest opens a pull request in owner/repo.
func (c *Client) CreatePullRequest(ctx context.Context, owner, repo string, pr PullRequest) (*PullRequestInfo, error) {
	created, _, err := c.client.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title: github.Ptr(pr.Title),
		Body:  github.Ptr(pr.Body),
		Head:  github.Ptr(pr.Head),
		Base:  github.Ptr(pr.Base),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request in %s/%s: %w", owner, repo, err)
	}
	return &PullRequestInfo{
		Number: created.GetNumber(),
		URL:    created.GetHTMLURL(),
	}, nil
}

// Repository is a GitHub repository.
type Repository struct {
	Owner string
	Name  string
}

// ParseRemote parses the owner and name of a repository from an https or
// scp-like GitHub URL, such as https://github.com/owner/name.git or
// git@github.com:owner/name.git.
func ParseRemote(remote string) (*Repository, error) {
	var path string
	if rest, ok := strings.CutPrefix(remote, "git@"); ok {
		_, p, found := strings.Cut(rest, ":")
		if !found {
			return nil, fmt.Errorf("%w: %s", errNotGitHubRemote, remote)
		}
		path = p
	} else {
		u, err := url.Parse(remote)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("%w: %s", errNotGitHubRemote, remote)
		}
		path = u.Path
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: %s", errNotGitHubRemote, remote)
	}
	return &Repository{
		Owner: parts[0],
		Name:  strings.TrimSuffix(parts[1], ".git"),
	}, nil
}
