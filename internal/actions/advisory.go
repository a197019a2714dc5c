package actions

import (
	"context"
	"fmt"

	"github.com/srcops/notifyd/internal/chat"
	"github.com/srcops/notifyd/internal/webhook"
)

func (b *Bot) onSecurityAdvisory(ctx context.Context, p webhook.Payload) error {
	advisory := p.SecurityAdvisory
	if advisory == nil {
		return nil
	}
	b.logger.Warn().
		Str("ghsa_id", advisory.GHSAID).
		Str("summary", advisory.Summary).
		Msg("security_advisory")

	ecosystem := "unknown"
	if len(advisory.Vulnerabilities) > 0 {
		ecosystem = advisory.Vulnerabilities[0].Package.Ecosystem
	}
	references := ""
	if len(advisory.References) > 0 {
		references = advisory.References[0].URL
	}

	text := fmt.Sprintf(
		"🙀 🔐 GitHub issued some information on security advisory %s, it is related to %s ecosystem: %s",
		advisory.GHSAID, ecosystem, advisory.Description,
	)
	if references != "" {
		text += fmt.Sprintf(" see also: %s", references)
	}

	b.notifier.Notify(ctx, chat.Message{
		Kind:      "plain",
		Text:      text,
		ThreadKey: advisory.GHSAID,
	})
	return nil
}
