package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/vi31/anxiety-predictor/internal/domain/event"
)

// RequestKind tells which operation produced a prediction record.
type RequestKind string

const (
	RequestPredict RequestKind = "predict"
	RequestExplain RequestKind = "explain"
)

// ParseRequestKind validates a persisted kind string.
func ParseRequestKind(s string) (RequestKind, error) {
	switch RequestKind(s) {
	case RequestPredict, RequestExplain:
		return RequestKind(s), nil
	default:
		return "", fmt.Errorf("unknown request kind %q", s)
	}
}

// PredictionRecord is the history entry kept for every served score.
type PredictionRecord struct {
	createdAt     time.Time
	kind          RequestKind
	baseline      string
	modelVersion  string
	contributions Contributions
	domainEvents  []event.DomainEvent
	input         InputRecord
	score         float64
	id            uuid.UUID
}

// NewPredictionRecord creates a history entry for a served score and records
// a PredictionServed event. Explain records must carry contributions and
// predict records must not.
func NewPredictionRecord(
	kind RequestKind,
	input InputRecord,
	score float64,
	contributions Contributions,
	baseline string,
	modelVersion string,
) (*PredictionRecord, error) {
	if _, err := ParseRequestKind(string(kind)); err != nil {
		return nil, err
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return nil, fmt.Errorf("score must be finite, got %v", score)
	}
	switch {
	case kind == RequestExplain && len(contributions) == 0:
		return nil, fmt.Errorf("explain record requires contributions")
	case kind == RequestPredict && len(contributions) > 0:
		return nil, fmt.Errorf("predict record cannot carry contributions")
	}

	r := &PredictionRecord{
		id:            uuid.New(),
		kind:          kind,
		input:         input,
		score:         score,
		contributions: contributions,
		baseline:      baseline,
		modelVersion:  modelVersion,
		createdAt:     time.Now().UTC(),
	}
	r.domainEvents = append(r.domainEvents, event.NewPredictionServed(
		r.id, string(r.kind), r.score, len(r.contributions),
		r.baseline, r.modelVersion, r.createdAt,
	))
	return r, nil
}

// ReconstructPredictionRecord rebuilds a record from storage (no validation, no events).
func ReconstructPredictionRecord(
	id uuid.UUID,
	kind RequestKind,
	input InputRecord,
	score float64,
	contributions Contributions,
	baseline, modelVersion string,
	createdAt time.Time,
) *PredictionRecord {
	return &PredictionRecord{
		id:            id,
		kind:          kind,
		input:         input,
		score:         score,
		contributions: contributions,
		baseline:      baseline,
		modelVersion:  modelVersion,
		createdAt:     createdAt,
	}
}

func (r *PredictionRecord) ID() uuid.UUID                { return r.id }
func (r *PredictionRecord) Kind() RequestKind            { return r.kind }
func (r *PredictionRecord) Input() InputRecord           { return r.input }
func (r *PredictionRecord) Score() float64               { return r.score }
func (r *PredictionRecord) Contributions() Contributions { return r.contributions }
func (r *PredictionRecord) Baseline() string             { return r.baseline }
func (r *PredictionRecord) ModelVersion() string         { return r.modelVersion }
func (r *PredictionRecord) CreatedAt() time.Time         { return r.createdAt }

// DomainEvents returns all accumulated domain events and clears them.
func (r *PredictionRecord) DomainEvents() []event.DomainEvent {
	evts := r.domainEvents
	r.domainEvents = nil
	return evts
}
