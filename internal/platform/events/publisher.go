package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/core/ports"
)

// LogPublisher writes every event to a structured logger.
type LogPublisher struct {
	logger *slog.Logger
}

var _ ports.EventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, e domain.Event) {
	attrs := []any{
		slog.String("event_id", e.EventID),
		slog.String("event_type", string(e.Type)),
		slog.String("actor", e.Actor),
		slog.Time("occurred_at", e.OccurredAt),
	}
	if !e.Reference.IsZero() {
		attrs = append(attrs, slog.String("reference_type", string(e.Reference.Type)), slog.String("reference_id", e.Reference.ID))
	}
	if len(e.Attributes) > 0 {
		group := make([]any, 0, len(e.Attributes))
		for k, v := range e.Attributes {
			group = append(group, slog.String(k, v))
		}
		attrs = append(attrs, slog.Group("attributes", group...))
	}
	p.logger.Info("Audit event", attrs...)
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.Event) {}

// Recorder keeps published events in memory; useful in tests.
type Recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, e domain.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Event(nil), r.events...)
}

// Types returns the type of every published event, in order.
func (r *Recorder) Types() []domain.EventType {
	evs := r.Events()
	out := make([]domain.EventType, len(evs))
	for i, e := range evs {
		out[i] = e.Type
	}
	return out
}
