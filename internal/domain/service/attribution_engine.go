package service

import (
	"errors"
	"fmt"

	"github.com/vi31/anxiety-predictor/internal/domain/failure"
	"github.com/vi31/anxiety-predictor/internal/domain/model"
	"github.com/vi31/anxiety-predictor/internal/domain/port"
)

// Baseline selects the reference distribution attributions are measured against.
type Baseline string

const (
	// BaselineSample uses the explained row as its own one-row background.
	// The decomposition is exact for that row but the baseline is degenerate:
	// every attribution is measured against the sample itself.
	BaselineSample Baseline = "sample"

	// BaselineTraining uses the transformed training sample stored in the
	// artifact at fit time.
	BaselineTraining Baseline = "training"
)

// ParseBaseline validates a configured baseline name.
func ParseBaseline(s string) (Baseline, error) {
	switch Baseline(s) {
	case BaselineSample, BaselineTraining:
		return Baseline(s), nil
	default:
		return "", fmt.Errorf("unknown attribution baseline %q", s)
	}
}

var errNoBackground = errors.New("pipeline carries no training background")

// AttributionEngine explains single predictions in the transformed feature
// space of the regressor.
type AttributionEngine struct {
	newExplainer port.ExplainerFactory
	baseline     Baseline
}

// NewAttributionEngine creates an engine that builds explainers with factory.
func NewAttributionEngine(factory port.ExplainerFactory, baseline Baseline) *AttributionEngine {
	return &AttributionEngine{newExplainer: factory, baseline: baseline}
}

// Baseline returns the configured baseline mode.
func (e *AttributionEngine) Baseline() Baseline { return e.baseline }

// Explain attributes the pipeline's prediction for fv to the transformed
// features. Contributions are rounded to three decimals and the prediction,
// recomputed through the full pipeline, to two.
func (e *AttributionEngine) Explain(fv model.FeatureVector, pipeline port.Pipeline) (model.AttributionResult, error) {
	pre := pipeline.Preprocessor()

	row, err := pre.Transform(fv)
	if err != nil {
		return model.AttributionResult{}, failure.Explanation(failure.StagePreprocessor, err)
	}

	background, err := e.background(row, pipeline)
	if err != nil {
		return model.AttributionResult{}, failure.Explanation(failure.StageExplainer, err)
	}

	explainer, err := e.newExplainer(pipeline.Regressor(), background)
	if err != nil {
		return model.AttributionResult{}, failure.Explanation(failure.StageExplainer, fmt.Errorf("build explainer: %w", err))
	}

	values, err := explainer.Attributions(row)
	if err != nil {
		return model.AttributionResult{}, failure.Explanation(failure.StageExplainer, err)
	}

	names := pre.FeatureNamesOut()
	if len(names) != len(values) {
		return model.AttributionResult{}, failure.Explanation(failure.StageExplainer,
			fmt.Errorf("%d attribution values for %d transformed features", len(values), len(names)))
	}

	contributions := make(model.Contributions, len(names))
	for i, name := range names {
		if !isFinite(values[i]) {
			return model.AttributionResult{}, failure.Explanation(failure.StageExplainer,
				fmt.Errorf("non-finite attribution for %q", name))
		}
		contributions[i] = model.Contribution{Feature: name, Value: RoundContribution(values[i])}
	}

	prediction, err := pipeline.Predict(fv)
	if err != nil {
		return model.AttributionResult{}, failure.Explanation(stageOf(err, failure.StageRegressor), err)
	}
	if !isFinite(prediction) {
		return model.AttributionResult{}, failure.Explanation(failure.StageRegressor,
			fmt.Errorf("non-finite prediction %v", prediction))
	}

	return model.AttributionResult{
		Contributions: contributions,
		Prediction:    RoundPrediction(prediction),
		ExpectedValue: RoundContribution(explainer.ExpectedValue()),
	}, nil
}

func (e *AttributionEngine) background(row []float64, pipeline port.Pipeline) ([][]float64, error) {
	if e.baseline != BaselineTraining {
		return [][]float64{row}, nil
	}
	src, ok := pipeline.(port.BackgroundSource)
	if !ok {
		return nil, errNoBackground
	}
	bg := src.Background()
	if len(bg) == 0 {
		return nil, errNoBackground
	}
	return bg, nil
}
