/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package actions

import (
	"context"
	"fmt"
	"strings"

	"chainguard.dev/agentbench/agents/agenttrace"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"golang.org/x/oauth2"
)

// Labels are applied to every issue the log monitor files.
var Labels = []string{"auto-generated", "log-monitor"}

// Ticket is an issue to file.
type Ticket struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Ticketer files issues, skipping problems that are already tracked.
type Ticketer interface {
	// Exists reports whether an open issue already covers query.
	Exists(ctx context.Context, query string) (bool, error)
	// Create files a new issue.
	Create(ctx context.Context, ticket Ticket) error
}

// LogTicketer logs tickets instead of filing them. It never finds an
// existing issue, so every low severity problem produces a ticket.
type LogTicketer struct{}

var _ Ticketer = LogTicketer{}

// Exists implements Ticketer.
func (LogTicketer) Exists(ctx context.Context, query string) (bool, error) {
	ctx, span := agenttrace.StartSpan(ctx, "check_existing_github_issue", agenttrace.SpanKindTool)
	span.SetInputs(map[string]string{"query": query})
	clog.InfoContextf(ctx, "Stub ticketer, no existing issue for: %s", query)
	span.SetOutputs(false)
	span.End(nil)
	return false, nil
}

// Create implements Ticketer.
func (LogTicketer) Create(ctx context.Context, ticket Ticket) error {
	ctx, span := agenttrace.StartSpan(ctx, "create_github_issue", agenttrace.SpanKindTool)
	span.SetInputs(ticket)
	clog.FromContext(ctx).With("body", preview(ticket.Body, 100)).
		Infof("Stub ticketer, not creating issue: %s", ticket.Title)
	span.End(nil)
	return nil
}

// NewGitHubClient returns a GitHub client authenticated with a static token.
func NewGitHubClient(ctx context.Context, token string) *github.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(ctx, ts))
}

// GitHubTicketer files issues in a single repository.
type GitHubTicketer struct {
	client *github.Client
	owner  string
	repo   string
}

var _ Ticketer = (*GitHubTicketer)(nil)

// NewGitHubTicketer returns a ticketer for owner/repo.
func NewGitHubTicketer(client *github.Client, owner, repo string) *GitHubTicketer {
	return &GitHubTicketer{client: client, owner: owner, repo: repo}
}

// Exists implements Ticketer. It matches open issues whose title contains
// query, ignoring case. Pull requests are skipped.
func (g *GitHubTicketer) Exists(ctx context.Context, query string) (found bool, err error) {
	ctx, span := agenttrace.StartSpan(ctx, "check_existing_github_issue", agenttrace.SpanKindTool)
	span.SetInputs(map[string]string{"query": query})
	defer func() {
		span.SetOutputs(found)
		span.End(err)
	}()

	needle := strings.ToLower(query)
	opts := &github.IssueListByRepoOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		issues, resp, err := g.client.Issues.ListByRepo(ctx, g.owner, g.repo, opts)
		if err != nil {
			return false, fmt.Errorf("listing issues of %s/%s: %w", g.owner, g.repo, err)
		}
		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			if strings.Contains(strings.ToLower(issue.GetTitle()), needle) {
				clog.InfoContext(ctx, "Found existing issue", "number", issue.GetNumber(), "url", issue.GetHTMLURL())
				return true, nil
			}
		}
		if resp.NextPage == 0 {
			return false, nil
		}
		opts.ListOptions.Page = resp.NextPage
	}
}

// Create implements Ticketer.
func (g *GitHubTicketer) Create(ctx context.Context, ticket Ticket) (err error) {
	ctx, span := agenttrace.StartSpan(ctx, "create_github_issue", agenttrace.SpanKindTool)
	span.SetInputs(ticket)
	defer func() { span.End(err) }()

	labels := append([]string(nil), Labels...)
	issue, _, err := g.client.Issues.Create(ctx, g.owner, g.repo, &github.IssueRequest{
		Title:  github.Ptr(ticket.Title),
		Body:   github.Ptr(ticket.Body),
		Labels: &labels,
	})
	if err != nil {
		return fmt.Errorf("creating issue in %s/%s: %w", g.owner, g.repo, err)
	}
	span.SetOutputs(map[string]any{"number": issue.GetNumber(), "url": issue.GetHTMLURL()})
	clog.InfoContext(ctx, "Created issue", "number", issue.GetNumber(), "url", issue.GetHTMLURL())
	return nil
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
