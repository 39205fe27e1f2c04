package model

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vi31/anxiety-predictor/internal/domain/event"
)

func TestNewPredictionRecord(t *testing.T) {
	input := InputRecord{Age: 40, Gender: "Male"}
	cs := Contributions{{Feature: "num__Age", Value: 0.2}}

	rec, err := NewPredictionRecord(RequestExplain, input, 5.43, cs, "training", "v3")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, rec.ID())
	assert.Equal(t, RequestExplain, rec.Kind())
	assert.Equal(t, input, rec.Input())
	assert.Equal(t, 5.43, rec.Score())
	assert.Equal(t, cs, rec.Contributions())
	assert.Equal(t, "training", rec.Baseline())
	assert.Equal(t, "v3", rec.ModelVersion())
	assert.WithinDuration(t, time.Now().UTC(), rec.CreatedAt(), time.Minute)

	evts := rec.DomainEvents()
	require.Len(t, evts, 1)
	served, ok := evts[0].(event.PredictionServed)
	require.True(t, ok)
	assert.Equal(t, rec.ID(), served.AggregateID())
	assert.Equal(t, "explain", served.Kind)
	assert.Equal(t, 1, served.ContributionCount)
	assert.Equal(t, event.EventTypePredictionServed, served.EventType())

	assert.Empty(t, rec.DomainEvents(), "events are cleared once read")
}

func TestNewPredictionRecord_Rejects(t *testing.T) {
	cs := Contributions{{Feature: "num__Age", Value: 0.2}}

	tests := []struct {
		name          string
		kind          RequestKind
		score         float64
		contributions Contributions
	}{
		{name: "unknown kind", kind: "guess", score: 1},
		{name: "nan score", kind: RequestPredict, score: math.NaN()},
		{name: "infinite score", kind: RequestPredict, score: math.Inf(1)},
		{name: "explain without contributions", kind: RequestExplain, score: 1},
		{name: "predict with contributions", kind: RequestPredict, score: 1, contributions: cs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPredictionRecord(tt.kind, InputRecord{}, tt.score, tt.contributions, "", "v1")
			assert.Error(t, err)
		})
	}
}

func TestReconstructPredictionRecord(t *testing.T) {
	id := uuid.New()
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

	rec := ReconstructPredictionRecord(id, RequestPredict, InputRecord{Age: 1}, 2.5, nil, "", "v1", at)

	assert.Equal(t, id, rec.ID())
	assert.Equal(t, at, rec.CreatedAt())
	assert.Empty(t, rec.DomainEvents())
}

func TestParseRequestKind(t *testing.T) {
	k, err := ParseRequestKind("predict")
	require.NoError(t, err)
	assert.Equal(t, RequestPredict, k)

	_, err = ParseRequestKind("PREDICT")
	assert.Error(t, err)
}
