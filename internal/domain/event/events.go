package event

import (
	"time"

	"github.com/google/uuid"
)

// EventTypePredictionServed is emitted every time a score is returned to a caller.
const EventTypePredictionServed = "anxiety.prediction.served"

// DomainEvent is implemented by every event the service publishes.
type DomainEvent interface {
	EventType() string
	AggregateID() uuid.UUID
}

// PredictionServed is published after a predict or explain request succeeded.
type PredictionServed struct {
	ServedAt          time.Time `json:"served_at"`
	PredictionID      uuid.UUID `json:"prediction_id"`
	Kind              string    `json:"kind"`
	ModelVersion      string    `json:"model_version"`
	Baseline          string    `json:"baseline,omitempty"`
	Score             float64   `json:"predicted_anxiety_level"`
	ContributionCount int       `json:"contribution_count"`
}

// NewPredictionServed creates a PredictionServed event.
func NewPredictionServed(
	predictionID uuid.UUID,
	kind string,
	score float64,
	contributionCount int,
	baseline string,
	modelVersion string,
	servedAt time.Time,
) PredictionServed {
	return PredictionServed{
		PredictionID:      predictionID,
		Kind:              kind,
		Score:             score,
		ContributionCount: contributionCount,
		Baseline:          baseline,
		ModelVersion:      modelVersion,
		ServedAt:          servedAt,
	}
}

// EventType returns the event type identifier.
func (e PredictionServed) EventType() string {
	return EventTypePredictionServed
}

// AggregateID returns the prediction ID.
func (e PredictionServed) AggregateID() uuid.UUID {
	return e.PredictionID
}
