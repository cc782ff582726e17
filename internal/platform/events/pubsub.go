package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/core/ports"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// PubSubConfig configures the Google Pub/Sub audit sink.
type PubSubConfig struct {
	ProjectID       string
	Topic           string
	CredentialsJSON string // empty uses Application Default Credentials
}

// PubSubPublisher sends events to a Pub/Sub topic without waiting for the
// server acknowledgement; delivery failures are only logged.
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	logger *slog.Logger
}

var _ ports.EventPublisher = (*PubSubPublisher)(nil)

// NewPubSubPublisher connects to Pub/Sub and resolves the topic, creating it
// when missing.
func NewPubSubPublisher(ctx context.Context, cfg PubSubConfig, logger *slog.Logger) (*PubSubPublisher, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID is required for the pubsub event sink")
	}
	if cfg.Topic == "" {
		return nil, errors.New("PUBSUB_TOPIC is required for the pubsub event sink")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.CredentialsJSON), pubsub.ScopePubSub)
		if err != nil {
			return nil, fmt.Errorf("failed to parse pubsub credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	topic := client.Topic(cfg.Topic)
	exists, err := topic.Exists(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to check pubsub topic %q: %w", cfg.Topic, err)
	}
	if !exists {
		if topic, err = client.CreateTopic(ctx, cfg.Topic); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("create topic %q: %w", cfg.Topic, err)
		}
	}
	return &PubSubPublisher{client: client, topic: topic, logger: logger}, nil
}

func (p *PubSubPublisher) Publish(_ context.Context, e domain.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		p.logger.Error("Failed to encode audit event", slog.String("event_id", e.EventID), slog.String("error", err.Error()))
		return
	}
	// detached from the request context: the request may finish first
	result := p.topic.Publish(context.Background(), &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type":     string(e.Type),
			"reference_type": string(e.Reference.Type),
			"reference_id":   e.Reference.ID,
		},
	})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := result.Get(ctx); err != nil {
			p.logger.Error("Failed to publish audit event",
				slog.String("event_id", e.EventID),
				slog.String("event_type", string(e.Type)),
				slog.String("error", err.Error()))
		}
	}()
}

// Close flushes pending messages and closes the client.
func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
