// Package events publishes domain notifications to downstream consumers.
package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Event is a single domain notification. Key groups events that must stay
// ordered relative to each other, such as all events for one clip.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps an event with the current UTC time.
func New(eventType, key string, payload any) Event {
	return Event{
		Type:       eventType,
		Key:        key,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events. Publish must not block on downstream acknowledgement.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type logPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher returns a Publisher that writes each event to the logger.
func NewLogPublisher(logger *slog.Logger) Publisher {
	return &logPublisher{logger: logger.With("system", "events")}
}

func (p *logPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Info("event published", "type", event.Type, "key", event.Key)
	return nil
}

type multi []Publisher

// Multi fans an event out to every publisher and joins their errors.
func Multi(publishers ...Publisher) Publisher {
	return multi(publishers)
}

func (m multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish appends the event.
func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events with the given type.
func (r *Recorder) OfType(eventType string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
