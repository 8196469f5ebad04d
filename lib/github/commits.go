// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"fmt"
	"net/url"
)

// GetCommit retrieves a commit by SHA (or any ref the API accepts).
func (client *Client) GetCommit(ctx context.Context, repository, sha string) (*RepositoryCommit, error) {
	owner, name, err := splitRepository(repository)
	if err != nil {
		return nil, err
	}
	var commit RepositoryCommit
	path := fmt.Sprintf("/repos/%s/%s/commits/%s", owner, name, url.PathEscape(sha))
	if err := client.get(ctx, path, &commit); err != nil {
		return nil, fmt.Errorf("getting commit %s in %s: %w", sha, repository, err)
	}
	return &commit, nil
}

// AuthorLogin returns the best display name for the commit author: the
// linked GitHub login, else the git author name, else "".
func (commit *RepositoryCommit) AuthorLogin() string {
	if commit.Author != nil && commit.Author.Login != "" {
		return commit.Author.Login
	}
	return commit.Commit.Author.Name
}
