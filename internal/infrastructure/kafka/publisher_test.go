package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vi31/anxiety-predictor/internal/domain/event"
	"github.com/vi31/anxiety-predictor/pkg/testutil"
)

type mockWriter struct {
	written  []kafkago.Message
	writeErr error
	closed   bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.written = append(m.written, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func servedEvent() event.PredictionServed {
	return event.NewPredictionServed(uuid.New(), "explain", 4.5, 3, "sample", "v1", time.Now().UTC())
}

func TestPublisher_Publish(t *testing.T) {
	t.Run("keys messages by aggregate and tags the type", func(t *testing.T) {
		w := &mockWriter{}
		p := newPublisher(w, "anxiety.predictions", testLogger())
		evt := servedEvent()

		require.NoError(t, p.Publish(context.Background(), evt))
		require.Len(t, w.written, 1)

		msg := w.written[0]
		assert.Equal(t, evt.PredictionID.String(), string(msg.Key))
		assert.Contains(t, msg.Headers, kafkago.Header{Key: "event_type", Value: []byte(event.EventTypePredictionServed)})

		var payload map[string]any
		require.NoError(t, json.Unmarshal(msg.Value, &payload))
		assert.Equal(t, 4.5, payload["predicted_anxiety_level"])
	})

	t.Run("no events writes nothing", func(t *testing.T) {
		w := &mockWriter{}
		p := newPublisher(w, "anxiety.predictions", testLogger())

		require.NoError(t, p.Publish(context.Background()))
		assert.Empty(t, w.written)
	})

	t.Run("wraps writer errors", func(t *testing.T) {
		w := &mockWriter{writeErr: fmt.Errorf("leader not available")}
		p := newPublisher(w, "anxiety.predictions", testLogger())

		err := p.Publish(context.Background(), servedEvent())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "anxiety.predictions")
	})
}

func TestPublisher_Close(t *testing.T) {
	w := &mockWriter{}
	require.NoError(t, newPublisher(w, "t", testLogger()).Close())
	assert.True(t, w.closed)
}

func TestNewTransport(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantNil bool
		wantErr bool
	}{
		{name: "plain connection", cfg: Config{}, wantNil: true},
		{name: "tls only", cfg: Config{TLS: true}},
		{name: "sasl plain", cfg: Config{SASLUsername: "u", SASLPassword: "p"}},
		{name: "sasl scram", cfg: Config{SASLMechanism: "SCRAM-SHA-512", SASLUsername: "u", SASLPassword: "p"}},
		{name: "unknown mechanism", cfg: Config{SASLMechanism: "GSSAPI", SASLUsername: "u"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := newTransport(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, tr)
			} else {
				assert.NotNil(t, tr)
			}
		})
	}
}

func TestPublisher_Integration(t *testing.T) {
	testutil.RequireIntegration(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	kc := testutil.NewKafkaContainer(ctx, t)
	defer kc.Cleanup(t)

	const topic = "anxiety.predictions.test"
	p, err := NewPublisher(Config{Brokers: kc.Brokers, Topic: topic}, testLogger())
	require.NoError(t, err)

	evt := servedEvent()
	require.NoError(t, p.Publish(ctx, evt))
	require.NoError(t, p.Close())

	r := kafkago.NewReader(kafkago.ReaderConfig{Brokers: kc.Brokers, Topic: topic})
	defer r.Close()

	msg, err := r.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, evt.PredictionID.String(), string(msg.Key))
}
