// Package notify turns bot events into deduplicated, retried chat messages.
package notify

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/srcops/notifyd/internal/backoff"
	"github.com/srcops/notifyd/internal/chat"
	"github.com/srcops/notifyd/internal/dedup"
	"github.com/srcops/notifyd/internal/observability"
)

const (
	maxAttempts   = 5
	flushInterval = 500 * time.Millisecond
)

// Notifier queues chat messages and delivers them with retry. Duplicate
// suppression is keyed by caller-provided dedup keys.
type Notifier struct {
	sender  chat.Sender
	store   dedup.Store
	outbox  *Outbox
	backoff backoff.Config
	rng     *rand.Rand
	logger  zerolog.Logger
}

func New(sender chat.Sender, store dedup.Store, logger zerolog.Logger) *Notifier {
	return &Notifier{
		sender:  sender,
		store:   store,
		outbox:  NewOutbox(),
		backoff: backoff.DefaultConfig(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  logger,
	}
}

// Notify queues a message for delivery.
func (n *Notifier) Notify(ctx context.Context, msg chat.Message) {
	now := time.Now()
	n.outbox.Upsert(PendingDelivery{
		ID:            uuid.NewString(),
		Message:       msg,
		QueuedAt:      now,
		NextAttemptAt: now,
	})
	observability.RecordNotification(msg.Kind, "queued")
}

// NotifyOnce queues a message unless the dedup key was seen inside the
// suppression window.
func (n *Notifier) NotifyOnce(ctx context.Context, key string, msg chat.Message) {
	first, err := n.store.FirstSeen(ctx, key)
	if err != nil {
		// A broken dedup store must not silence the bot; send anyway.
		n.logger.Warn().Err(err).Str("key", key).Msg("dedup_store_unavailable")
		first = true
	}
	if !first {
		n.logger.Debug().Str("key", key).Msg("notification_suppressed")
		observability.RecordNotification(msg.Kind, "suppressed")
		return
	}
	n.Notify(ctx, msg)
}

// Run drains the outbox until the context is canceled.
func (n *Notifier) Run(ctx context.Context) {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.flushDue(ctx, time.Now())
		}
	}
}

// flushDue attempts every due delivery once.
func (n *Notifier) flushDue(ctx context.Context, now time.Time) {
	for _, item := range n.outbox.Due(now) {
		if err := n.sender.Send(ctx, item.Message); err != nil {
			attempts := item.Attempts + 1
			if attempts >= maxAttempts {
				n.outbox.Remove(item.ID)
				n.logger.Error().
					Err(err).
					Str("delivery_id", item.ID).
					Str("thread_key", item.Message.ThreadKey).
					Int("attempts", attempts).
					Msg("notification_dropped")
				observability.RecordNotification(item.Message.Kind, "dropped")
				continue
			}
			next := now.Add(backoff.NextDelay(n.backoff, attempts, n.rng))
			n.outbox.MarkAttempt(item.ID, now, next, err.Error())
			n.logger.Warn().
				Err(err).
				Str("delivery_id", item.ID).
				Int("attempt", attempts).
				Time("next_attempt", next).
				Msg("notification_retry")
			continue
		}
		n.outbox.Remove(item.ID)
		observability.RecordNotification(item.Message.Kind, "sent")
	}
}

// Pending reports queued deliveries, used by readiness reporting and tests.
func (n *Notifier) Pending() int {
	return n.outbox.Len()
}
