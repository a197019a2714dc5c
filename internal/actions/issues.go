package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/srcops/notifyd/internal/chat"
	"github.com/srcops/notifyd/internal/webhook"
)

func (b *Bot) onIssueOpened(ctx context.Context, p webhook.Payload) error {
	issue := p.Issue
	if issue == nil || p.Repository == nil {
		return nil
	}
	b.logger.Info().Str("url", issue.HTMLURL).Msg("issue_opened")

	if hasAnyPrefix(issue.Title, ignoredIssueTitles) {
		b.logger.Debug().
			Str("url", issue.URL).
			Str("title", issue.Title).
			Msg("automated_issue_not_notified")
		return nil
	}

	if strings.HasPrefix(issue.Title, titleWorkshopIssue) && len(b.cfg.WorkshopAssignees) > 0 {
		if err := b.gh.AddAssignees(ctx, issue.URL, b.cfg.WorkshopAssignees); err != nil {
			b.logger.Error().Err(err).Str("url", issue.URL).Msg("workshop_assign_failed")
		}
	}

	if strings.HasPrefix(issue.Title, titleReleaseVersion) {
		b.logger.Debug().Str("url", issue.URL).Msg("release_issue")
		if err := b.gh.AddLabels(ctx, issue.URL, []string{"bot"}); err != nil {
			b.logger.Error().Err(err).Str("url", issue.URL).Msg("release_issue_label_failed")
		}
	}

	b.notifier.Notify(ctx, chat.Message{
		Kind: "plain",
		Text: fmt.Sprintf("%s just opened an issue: *%s*... 🚨 check %s for details",
			b.roster.RealName(issue.User.Login), issue.Title, issue.HTMLURL),
		ThreadKey: fmt.Sprintf("issue_%s_%d", p.Repository.Name, issue.ID),
		URL:       issue.HTMLURL,
	})
	return nil
}
