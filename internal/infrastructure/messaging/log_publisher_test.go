package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vi31/anxiety-predictor/internal/domain/event"
)

func TestLogPublisher_Publish(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := NewLogPublisher(logger)

	id := uuid.New()
	evt := event.NewPredictionServed(id, "predict", 3.21, 0, "", "v1", time.Now().UTC())
	require.NoError(t, p.Publish(context.Background(), evt))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &info))
	assert.Equal(t, "event published", info["msg"])
	assert.Equal(t, event.EventTypePredictionServed, info["event_type"])
	assert.Equal(t, id.String(), info["aggregate_id"])

	var debug map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &debug))
	assert.Contains(t, debug["payload"], `"predicted_anxiety_level":3.21`)
}

func TestLogPublisher_NoEvents(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, p.Publish(context.Background()))
	assert.Empty(t, buf.String())
}
