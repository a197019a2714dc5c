package webhook

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/srcops/notifyd/internal/observability"
)

// Handler processes one decoded webhook payload.
type Handler func(ctx context.Context, p Payload) error

type handlerEntry struct {
	actions map[string]struct{}
	fn      Handler
}

// Dispatcher routes deliveries to handlers by event name and action.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]handlerEntry
	logger   zerolog.Logger
}

func NewDispatcher(logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]handlerEntry),
		logger:   logger,
	}
}

// On registers a handler for every action of an event.
func (d *Dispatcher) On(event string, fn Handler) {
	d.register(event, nil, fn)
}

// OnActions registers a handler for a subset of an event's actions.
func (d *Dispatcher) OnActions(event string, actions []string, fn Handler) {
	set := make(map[string]struct{}, len(actions))
	for _, a := range actions {
		set[strings.TrimSpace(a)] = struct{}{}
	}
	d.register(event, set, fn)
}

func (d *Dispatcher) register(event string, actions map[string]struct{}, fn Handler) {
	event = strings.TrimSpace(event)
	if event == "" || fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], handlerEntry{actions: actions, fn: fn})
}

// Dispatch decodes the delivery body and fans out to matching handlers.
// Handler errors are logged and counted, never returned: a delivery is
// acknowledged once its payload decodes.
func (d *Dispatcher) Dispatch(ctx context.Context, delivery Delivery) error {
	payload, err := ParsePayload(delivery.Body)
	if err != nil {
		observability.RecordWebhookEvent(delivery.Event, "", "undecodable")
		return fmt.Errorf("webhook: decode %s delivery %s: %w", delivery.Event, delivery.ID, err)
	}

	d.mu.RLock()
	entries := d.handlers[delivery.Event]
	d.mu.RUnlock()

	if len(entries) == 0 {
		d.logger.Debug().
			Str("event", delivery.Event).
			Str("delivery_id", delivery.ID).
			Msg("webhook_event_ignored")
		observability.RecordWebhookEvent(delivery.Event, payload.Action, "ignored")
		return nil
	}

	matched, succeeded := 0, 0
	for _, entry := range entries {
		if entry.actions != nil {
			if _, ok := entry.actions[payload.Action]; !ok {
				continue
			}
		}
		matched++
		if err := entry.fn(ctx, payload); err != nil {
			d.logger.Error().
				Err(err).
				Str("event", delivery.Event).
				Str("action", payload.Action).
				Str("delivery_id", delivery.ID).
				Msg("webhook_handler_failed")
			observability.RecordWebhookEvent(delivery.Event, payload.Action, "handler_error")
			continue
		}
		succeeded++
	}
	if matched == 0 {
		observability.RecordWebhookEvent(delivery.Event, payload.Action, "ignored")
		return nil
	}
	if succeeded > 0 {
		observability.RecordWebhookEvent(delivery.Event, payload.Action, "handled")
	}
	return nil
}
