package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"cloud.google.com/go/pubsub/pstest"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/platform/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() domain.Event {
	return domain.Event{
		EventID:    "evt-1",
		Type:       domain.EventSaleCreated,
		OccurredAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Actor:      "clerk",
		Reference:  domain.Reference{Type: domain.RefSale, ID: "sale-1"},
		Attributes: map[string]string{"total": "200"},
	}
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := events.NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))
	p.Publish(context.Background(), sampleEvent())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Audit event", line["msg"])
	assert.Equal(t, "sale.created", line["event_type"])
	assert.Equal(t, "sale-1", line["reference_id"])
	assert.Equal(t, map[string]any{"total": "200"}, line["attributes"])
}

func TestRecorder(t *testing.T) {
	r := events.NewRecorder()
	r.Publish(context.Background(), sampleEvent())
	e := sampleEvent()
	e.Type = domain.EventSaleCancelled
	r.Publish(context.Background(), e)

	assert.Equal(t, []domain.EventType{domain.EventSaleCreated, domain.EventSaleCancelled}, r.Types())
	got := r.Events()
	got[0].Actor = "changed"
	assert.Equal(t, "clerk", r.Events()[0].Actor)
}

func TestPubSubPublisher(t *testing.T) {
	srv := pstest.NewServer()
	defer srv.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", srv.Addr)

	ctx := context.Background()
	p, err := events.NewPubSubPublisher(ctx, events.PubSubConfig{ProjectID: "vault-test", Topic: "ledger-audit"}, nil)
	require.NoError(t, err)

	p.Publish(ctx, sampleEvent())
	require.NoError(t, p.Close())

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "sale.created", msgs[0].Attributes["event_type"])
	assert.Equal(t, "sale-1", msgs[0].Attributes["reference_id"])

	var decoded domain.Event
	require.NoError(t, json.Unmarshal(msgs[0].Data, &decoded))
	assert.Equal(t, "evt-1", decoded.EventID)
	assert.Equal(t, "200", decoded.Attributes["total"])
}

func TestPubSubPublisher_RequiresProjectAndTopic(t *testing.T) {
	_, err := events.NewPubSubPublisher(context.Background(), events.PubSubConfig{Topic: "t"}, nil)
	assert.Error(t, err)
	_, err = events.NewPubSubPublisher(context.Background(), events.PubSubConfig{ProjectID: "p"}, nil)
	assert.Error(t, err)
}
