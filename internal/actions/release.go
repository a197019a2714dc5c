package actions

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/srcops/notifyd/internal/webhook"
)

var ErrNotEligibleRelease = errors.New("actions: pull request not eligible for release")

// eligibleReleasePullRequest checks that a merged PR really is one of the
// bot's release PRs: versioned title, head branch named after the release,
// and a merge commit to tag.
func eligibleReleasePullRequest(pr *webhook.PullRequest) bool {
	if pr == nil || !pr.Merged {
		return false
	}
	if !strings.HasPrefix(pr.Title, titleReleaseVersion) {
		return false
	}
	release := strings.TrimSpace(pr.Head.Ref)
	if release == "" || strings.TrimSpace(pr.MergeCommitSHA) == "" {
		return false
	}
	version := strings.TrimSpace(strings.TrimPrefix(pr.Title, titleReleaseVersion))
	return version == "" || strings.TrimPrefix(release, "v") == strings.TrimPrefix(version, "v")
}

var issueRefPattern = regexp.MustCompile(`#(\d+)`)

// releaseIssueNumber finds the release issue referenced from the PR body.
func releaseIssueNumber(pr *webhook.PullRequest) (int, bool) {
	match := issueRefPattern.FindStringSubmatch(pr.Body)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// handleReleasePullRequest tags the merge commit of a merged release PR,
// then comments on and closes the release issue. Returns the tagged commit
// and the release name for the chat message.
func (b *Bot) handleReleasePullRequest(ctx context.Context, pr *webhook.PullRequest) (string, string, error) {
	if !eligibleReleasePullRequest(pr) {
		b.logger.Warn().
			Str("title", pr.Title).
			Str("url", pr.HTMLURL).
			Msg("release_pr_not_eligible")
		return "", "", ErrNotEligibleRelease
	}

	commit := pr.MergeCommitSHA
	release := strings.TrimSpace(pr.Head.Ref)
	repoURL := pr.Base.Repo.URL

	b.logger.Info().
		Str("release", release).
		Str("commit", commit).
		Msg("tagging_release")

	tagSHA, err := b.gh.CreateTag(ctx, repoURL, release, release, commit)
	if err != nil {
		return "", "", fmt.Errorf("create tag %s: %w", release, err)
	}
	if err := b.gh.CreateRef(ctx, repoURL, "refs/tags/"+release, tagSHA); err != nil {
		return "", "", fmt.Errorf("create ref for %s: %w", release, err)
	}

	if issue, ok := releaseIssueNumber(pr); ok {
		comment := fmt.Sprintf(
			"I have tagged commit [%s](%s/commit/%s) as release %s :+1:",
			commit, pr.Base.Repo.HTMLURL, commit, release,
		)
		if err := b.gh.CreateComment(ctx, repoURL, issue, comment); err != nil {
			return "", "", fmt.Errorf("comment on release issue %d: %w", issue, err)
		}
		b.logger.Info().Int("issue", issue).Msg("closing_release_issue")
		if err := b.gh.CloseIssue(ctx, repoURL, issue); err != nil {
			return "", "", fmt.Errorf("close release issue %d: %w", issue, err)
		}
	} else {
		b.logger.Warn().
			Str("url", pr.HTMLURL).
			Msg("release_pr_has_no_issue_reference")
	}

	return commit, release, nil
}
