package service

import (
	"errors"
	"fmt"

	"github.com/vi31/anxiety-predictor/internal/domain/failure"
	"github.com/vi31/anxiety-predictor/internal/domain/model"
	"github.com/vi31/anxiety-predictor/internal/domain/port"
)

// InferenceEngine scores feature vectors with the shared trained pipeline.
// It never retries and never substitutes defaults.
type InferenceEngine struct {
	pipeline port.Pipeline
}

// NewInferenceEngine creates an engine over an already loaded pipeline.
func NewInferenceEngine(pipeline port.Pipeline) *InferenceEngine {
	return &InferenceEngine{pipeline: pipeline}
}

// Predict returns the raw, unrounded score for fv. Any pipeline error is
// returned as an inference failure naming the stage that raised it.
func (e *InferenceEngine) Predict(fv model.FeatureVector) (float64, error) {
	score, err := e.pipeline.Predict(fv)
	if err != nil {
		return 0, failure.Inference(stageOf(err, failure.StageRegressor), err)
	}
	if !isFinite(score) {
		return 0, failure.Inference(failure.StageRegressor, fmt.Errorf("non-finite prediction %v", score))
	}
	return score, nil
}

// stageOf returns the stage tagged on err, or fallback when untagged.
func stageOf(err error, fallback string) string {
	var se *port.StageError
	if errors.As(err, &se) && se.Stage != "" {
		return se.Stage
	}
	return fallback
}
