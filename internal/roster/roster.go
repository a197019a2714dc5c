// Package roster maps GitHub logins to chat identities.
package roster

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/srcops/notifyd/internal/config"
)

// Roster resolves GitHub logins to chat mentions and display names and knows
// which logins never get pinged.
type Roster struct {
	byLogin map[string]config.RosterUser
	ignored map[string]struct{}

	mu  sync.Mutex
	rng *rand.Rand
}

func New(cfg config.RosterConfig, rng *rand.Rand) *Roster {
	r := &Roster{
		byLogin: make(map[string]config.RosterUser, len(cfg.Users)),
		ignored: make(map[string]struct{}, len(cfg.IgnoredLogins)),
		rng:     rng,
	}
	for _, user := range cfg.Users {
		r.byLogin[normalize(user.Login)] = user
	}
	for _, login := range cfg.IgnoredLogins {
		r.ignored[normalize(login)] = struct{}{}
	}
	return r
}

func normalize(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}

// RealName returns the configured display name, falling back to the login.
func (r *Roster) RealName(login string) string {
	if user, ok := r.byLogin[normalize(login)]; ok && strings.TrimSpace(user.Name) != "" {
		return user.Name
	}
	return login
}

// Mention returns a chat mention for the login, or the bare login for
// unmapped users.
func (r *Roster) Mention(login string) string {
	if user, ok := r.byLogin[normalize(login)]; ok && strings.TrimSpace(user.ChatID) != "" {
		return fmt.Sprintf("<users/%s>", user.ChatID)
	}
	return login
}

// Ignored reports whether notifications about this login are suppressed.
func (r *Roster) Ignored(login string) bool {
	_, ok := r.ignored[normalize(login)]
	return ok
}

var positiveEmojis = []string{"🚀", "🎉", "🍻", "💚", "🥳", "👏", "✨", "🙌"}

// PositiveEmoji picks a random celebratory emoji for release messages.
func (r *Roster) PositiveEmoji() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rng == nil {
		return positiveEmojis[0]
	}
	return positiveEmojis[r.rng.Intn(len(positiveEmojis))]
}
