package notify

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/srcops/notifyd/internal/chat"
)

// PendingDelivery tracks one chat message awaiting successful delivery.
type PendingDelivery struct {
	ID            string
	Message       chat.Message
	Attempts      int
	QueuedAt      time.Time
	LastAttemptAt time.Time
	NextAttemptAt time.Time
	LastError     string
}

// Outbox stores pending deliveries by stable delivery id.
type Outbox struct {
	mu    sync.RWMutex
	items map[string]PendingDelivery
}

func NewOutbox() *Outbox {
	return &Outbox{
		items: make(map[string]PendingDelivery),
	}
}

func (o *Outbox) Upsert(item PendingDelivery) {
	key := strings.TrimSpace(item.ID)
	if key == "" {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items[key] = item
}

func (o *Outbox) MarkAttempt(id string, at, next time.Time, lastErr string) (PendingDelivery, bool) {
	key := strings.TrimSpace(id)
	o.mu.Lock()
	defer o.mu.Unlock()
	item, ok := o.items[key]
	if !ok {
		return PendingDelivery{}, false
	}
	item.Attempts++
	item.LastAttemptAt = at
	item.NextAttemptAt = next
	item.LastError = strings.TrimSpace(lastErr)
	o.items[key] = item
	return item, true
}

func (o *Outbox) Remove(id string) {
	key := strings.TrimSpace(id)
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.items, key)
}

func (o *Outbox) Get(id string) (PendingDelivery, bool) {
	key := strings.TrimSpace(id)
	o.mu.RLock()
	defer o.mu.RUnlock()
	item, ok := o.items[key]
	return item, ok
}

// Due returns deliveries whose next attempt time has passed, oldest first.
func (o *Outbox) Due(now time.Time) []PendingDelivery {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]PendingDelivery, 0, len(o.items))
	for _, item := range o.items {
		if !now.Before(item.NextAttemptAt) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].QueuedAt.Before(out[j].QueuedAt)
	})
	return out
}

func (o *Outbox) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.items)
}
