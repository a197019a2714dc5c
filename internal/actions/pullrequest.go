package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/srcops/notifyd/internal/chat"
	"github.com/srcops/notifyd/internal/webhook"
)

func prThreadKey(repo *webhook.Repository, pr *webhook.PullRequest) string {
	return fmt.Sprintf("pull_request_%s_%d", repo.Name, pr.ID)
}

func (b *Bot) onPullRequestClosed(ctx context.Context, p webhook.Payload) error {
	pr := p.PullRequest
	if pr == nil || p.Repository == nil {
		return nil
	}
	b.logger.Debug().Str("url", pr.HTMLURL).Msg("pr_closed")

	if !hasAnyPrefix(pr.Title, ignoredClosedPRTitles) {
		if pr.Merged {
			sender := ""
			if p.Sender != nil {
				sender = p.Sender.Login
			}
			b.notifier.Notify(ctx, chat.Message{
				Kind:      "plain",
				Text:      fmt.Sprintf("👌 Pull Request *%s* has been merged by '%s' 🍻", pr.Title, b.roster.RealName(sender)),
				ThreadKey: prThreadKey(p.Repository, pr),
				URL:       pr.HTMLURL,
			})
			return nil
		}
		b.notifier.Notify(ctx, chat.Message{
			Kind:      "plain",
			Text:      fmt.Sprintf("👌 Pull Request *%s* has been *closed* with *unmerged commits*! 🚧", pr.Title),
			ThreadKey: prThreadKey(p.Repository, pr),
			URL:       pr.HTMLURL,
		})
		return nil
	}

	if strings.HasPrefix(pr.Title, titleRelease) {
		if !pr.Merged {
			b.notifier.Notify(ctx, chat.Message{
				Kind:      "plain",
				Text:      fmt.Sprintf("👌 Pull Request *%s* has been *closed* with *unmerged commits*! 🚧", pr.Title),
				ThreadKey: prThreadKey(p.Repository, pr),
				URL:       pr.HTMLURL,
			})
			return nil
		}
		commit, release, err := b.handleReleasePullRequest(ctx, pr)
		if err != nil {
			return err
		}
		b.notifier.Notify(ctx, chat.Message{
			Kind: "plain",
			Text: fmt.Sprintf("I have tagged %s to be release %s of %s %s",
				commit, release, pr.Base.Repo.FullName, b.roster.PositiveEmoji()),
			ThreadKey: fmt.Sprintf("pull_request_%s", p.Repository.Name),
			URL:       pr.URL,
		})
	}
	return nil
}

func (b *Bot) onPullRequestOpenOrEdit(ctx context.Context, p webhook.Payload) error {
	pr := p.PullRequest
	if pr == nil || p.Repository == nil {
		return nil
	}
	b.logger.Debug().Str("url", pr.HTMLURL).Str("action", p.Action).Msg("pr_open_or_edit")

	if p.Action != "opened" && p.Action != "reopened" {
		return nil
	}

	if !strings.HasPrefix(pr.Title, "Automatic ") && !strings.HasPrefix(pr.Title, titleRelease) {
		b.notifier.Notify(ctx, chat.Message{
			Kind:      "plain",
			Text:      fmt.Sprintf("🆕 %s a new Pull Request has been *opened*!", pr.HTMLURL),
			ThreadKey: prThreadKey(p.Repository, pr),
			URL:       pr.HTMLURL,
		})
	}

	if strings.HasPrefix(pr.Title, titleReleaseVersion) {
		b.maybeAutoApprove(ctx, pr, "This is an auto-approve of the releases.")
	}

	if strings.HasPrefix(pr.Title, titleAutomaticUpdate) || strings.HasPrefix(pr.Title, titleRelock) {
		b.maybeAutoApprove(ctx, pr, "This is an auto-approve of an auto-PR.")
	}

	if isStageVersionBump(pr.Title) {
		b.logger.Debug().Str("url", pr.HTMLURL).Msg("stage_version_bump")
		b.notifier.Notify(ctx, chat.Message{
			Kind:      "plain",
			Text:      fmt.Sprintf("🆕 %s is bumping a version in STAGE, please check if the new tag is available on quay", pr.HTMLURL),
			ThreadKey: fmt.Sprintf("pull_request_%s", p.Repository.Name),
			URL:       pr.HTMLURL,
		})
	}
	return nil
}

// maybeAutoApprove approves and labels trusted automated PRs. Failures are
// logged, never propagated: a missed approval must not fail the delivery.
func (b *Bot) maybeAutoApprove(ctx context.Context, pr *webhook.PullRequest, reviewBody string) {
	if !b.isBotLogin(pr.User.Login) {
		b.logger.Error().
			Str("url", pr.HTMLURL).
			Str("author", pr.User.Login).
			Msg("automated_pr_from_unexpected_author")
	}

	org := pr.Base.User.Login
	if !b.orgAllowed(org) {
		b.logger.Info().
			Str("url", pr.HTMLURL).
			Str("org", org).
			Msg("auto_approve_skipped_for_org")
		return
	}

	b.logger.Debug().Str("url", pr.HTMLURL).Msg("auto_approving")
	if err := b.gh.ApprovePullRequest(ctx, pr.URL, reviewBody); err != nil {
		b.logger.Error().Err(err).Str("url", pr.HTMLURL).Msg("auto_approve_failed")
	}
	if err := b.gh.AddLabels(ctx, pr.IssueURL, []string{"approved", "ok-to-test"}); err != nil {
		b.logger.Error().Err(err).Str("url", pr.HTMLURL).Msg("auto_label_failed")
	}
}

func (b *Bot) onReviewRequested(ctx context.Context, p webhook.Payload) error {
	pr := p.PullRequest
	if pr == nil || p.Repository == nil {
		return nil
	}
	b.logger.Debug().Str("title", pr.Title).Str("url", pr.HTMLURL).Msg("review_requested")

	if strings.HasPrefix(pr.Title, titleAutomaticUpdate) || strings.HasPrefix(pr.Title, titleRelease) {
		return nil
	}

	for _, reviewer := range pr.RequestedReviewers {
		if b.isBotLogin(reviewer.Login) {
			continue
		}
		if b.roster.Ignored(reviewer.Login) {
			b.logger.Info().
				Str("reviewer", reviewer.Login).
				Msg("review_notification_suppressed_for_login")
			continue
		}
		b.logger.Info().
			Str("reviewer", reviewer.Login).
			Str("url", pr.HTMLURL).
			Msg("requesting_review")
		key := fmt.Sprintf("%s_%d_%s", p.Repository.Name, pr.ID, reviewer.Login)
		b.notifier.NotifyOnce(ctx, key, chat.Message{
			Kind:      "plain",
			Text:      fmt.Sprintf("🔎 a review by %s has been requested", b.roster.Mention(reviewer.Login)),
			ThreadKey: prThreadKey(p.Repository, pr),
			URL:       pr.HTMLURL,
		})
	}
	return nil
}

func (b *Bot) onReviewSubmitted(ctx context.Context, p webhook.Payload) error {
	pr := p.PullRequest
	if pr == nil || p.Repository == nil || p.Review == nil {
		return nil
	}
	b.logger.Debug().Str("url", pr.HTMLURL).Msg("review_submitted")

	reviewer := p.Review.User.Login
	if b.isBotLogin(reviewer) || b.roster.Ignored(reviewer) {
		return nil
	}

	var text string
	if p.Review.State == "approved" {
		text = fmt.Sprintf("📗 '%s' *approved* this Pull Request!", b.roster.RealName(reviewer))
	} else {
		text = fmt.Sprintf("📔 some new comment by '%s' has arrived...", b.roster.RealName(reviewer))
	}

	b.notifier.Notify(ctx, chat.Message{
		Kind:      "plain",
		Text:      text,
		ThreadKey: prThreadKey(p.Repository, pr),
		URL:       pr.HTMLURL,
	})
	return nil
}
