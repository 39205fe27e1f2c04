package port

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vi31/anxiety-predictor/internal/domain/event"
	"github.com/vi31/anxiety-predictor/internal/domain/model"
)

// Preprocessor is the fitted transformation stage of a trained pipeline.
type Preprocessor interface {
	// Transform encodes one feature vector into the numeric space the
	// regressor consumes. The vector must match the fitted column contract.
	Transform(fv model.FeatureVector) ([]float64, error)

	// FeatureNamesOut returns the names of the transformed columns, in the
	// order Transform emits them.
	FeatureNamesOut() []string
}

// Regressor is the fitted estimator stage of a trained pipeline.
type Regressor interface {
	Predict(row []float64) (float64, error)
}

// Pipeline is a trained preprocessing + regression artifact. It is loaded
// once and only ever read afterwards.
type Pipeline interface {
	Predict(fv model.FeatureVector) (float64, error)
	Preprocessor() Preprocessor
	Regressor() Regressor
	Version() string
}

// BackgroundSource is implemented by pipelines that carry a sample of
// transformed training rows usable as an attribution baseline.
type BackgroundSource interface {
	Background() [][]float64
}

// Explainer computes per-feature attributions of a regressor's output.
type Explainer interface {
	// ExpectedValue is the mean regressor output over the background.
	ExpectedValue() float64

	// Attributions returns one value per transformed column of row.
	Attributions(row []float64) ([]float64, error)
}

// ExplainerFactory binds an explainer to a regressor and a background matrix.
type ExplainerFactory func(reg Regressor, background [][]float64) (Explainer, error)

// StageError tags an error raised inside one pipeline stage.
type StageError struct {
	Err   error
	Stage string
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// PredictionRepository defines the persistence port for served predictions.
type PredictionRepository interface {
	// Save persists a prediction record.
	Save(ctx context.Context, record *model.PredictionRecord) error

	// FindByID retrieves a record by its identifier. It returns
	// ErrPredictionNotFound when no record exists.
	FindByID(ctx context.Context, id uuid.UUID) (*model.PredictionRecord, error)

	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]*model.PredictionRecord, error)
}

// ErrPredictionNotFound is returned by repositories for unknown ids.
var ErrPredictionNotFound = errors.New("prediction not found")

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}
