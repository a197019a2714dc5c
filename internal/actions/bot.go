// Package actions implements the bot's reactions to GitHub webhook events.
package actions

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/srcops/notifyd/internal/chat"
	"github.com/srcops/notifyd/internal/config"
	"github.com/srcops/notifyd/internal/roster"
	"github.com/srcops/notifyd/internal/webhook"
)

// GitHubAPI is the slice of the GitHub REST surface the bot mutates.
type GitHubAPI interface {
	ApprovePullRequest(ctx context.Context, prURL, body string) error
	AddLabels(ctx context.Context, issueURL string, labels []string) error
	AddAssignees(ctx context.Context, issueURL string, assignees []string) error
	CreateComment(ctx context.Context, repoURL string, issueNumber int, body string) error
	CloseIssue(ctx context.Context, repoURL string, issueNumber int) error
	CreateTag(ctx context.Context, repoURL, tag, message, commitSHA string) (string, error)
	CreateRef(ctx context.Context, repoURL, ref, sha string) error
}

// Notifier queues outgoing chat messages.
type Notifier interface {
	Notify(ctx context.Context, msg chat.Message)
	NotifyOnce(ctx context.Context, key string, msg chat.Message)
}

// Bot owns the webhook handlers and their side-effect dependencies.
type Bot struct {
	gh       GitHubAPI
	notifier Notifier
	roster   *roster.Roster
	cfg      config.GitHubConfig
	logger   zerolog.Logger
}

func NewBot(gh GitHubAPI, notifier Notifier, r *roster.Roster, cfg config.GitHubConfig, logger zerolog.Logger) *Bot {
	return &Bot{
		gh:       gh,
		notifier: notifier,
		roster:   r,
		cfg:      cfg,
		logger:   logger,
	}
}

// Register wires every handler onto the dispatcher.
func (b *Bot) Register(d *webhook.Dispatcher) {
	d.On("ping", b.onPing)
	d.OnActions("installation", []string{"created"}, b.onInstall)
	d.OnActions("integration_installation", []string{"created"}, b.onInstall)
	d.OnActions("pull_request", []string{"closed"}, b.onPullRequestClosed)
	d.OnActions("pull_request", []string{"opened", "reopened", "synchronize", "edited"}, b.onPullRequestOpenOrEdit)
	d.OnActions("pull_request", []string{"review_requested"}, b.onReviewRequested)
	d.OnActions("pull_request_review", []string{"submitted"}, b.onReviewSubmitted)
	d.OnActions("issues", []string{"opened", "reopened"}, b.onIssueOpened)
	d.On("security_advisory", b.onSecurityAdvisory)
}

func (b *Bot) onPing(ctx context.Context, p webhook.Payload) error {
	appID := int64(0)
	if p.Hook != nil {
		appID = p.Hook.AppID
	}
	b.logger.Info().
		Int64("app_id", appID).
		Int64("hook_id", p.HookID).
		Str("zen", p.Zen).
		Msg("ping")
	return nil
}

func (b *Bot) onInstall(ctx context.Context, p webhook.Payload) error {
	if p.Installation == nil {
		return nil
	}
	b.logger.Info().
		Int64("installation_id", p.Installation.ID).
		Msg("app_installed")
	return nil
}

// isBotLogin reports whether the login belongs to one of the configured
// automation accounts.
func (b *Bot) isBotLogin(login string) bool {
	for _, bot := range b.cfg.BotLogins {
		if bot == login {
			return true
		}
	}
	return false
}

// orgAllowed reports whether auto-approval is enabled for the base org.
func (b *Bot) orgAllowed(org string) bool {
	for _, allowed := range b.cfg.AutoApproveOrgs {
		if allowed == org {
			return true
		}
	}
	return false
}
