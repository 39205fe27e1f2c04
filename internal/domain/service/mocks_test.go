package service

import (
	"github.com/vi31/anxiety-predictor/internal/domain/failure"
	"github.com/vi31/anxiety-predictor/internal/domain/model"
	"github.com/vi31/anxiety-predictor/internal/domain/port"
)

// --- Mock implementations ---

// mockPreprocessor emits [age, stress] and names them like the real one.
type mockPreprocessor struct {
	transformErr error
	names        []string
}

func (m *mockPreprocessor) Transform(fv model.FeatureVector) ([]float64, error) {
	if m.transformErr != nil {
		return nil, m.transformErr
	}
	age, _ := fv.Get("Age")
	stress, _ := fv.Get("Stress Level (1-10)")
	return []float64{age.Float(), stress.Float()}, nil
}

func (m *mockPreprocessor) FeatureNamesOut() []string {
	if m.names != nil {
		return m.names
	}
	return []string{"num__Age", "num__Stress Level (1-10)"}
}

type mockRegressor struct{}

func (mockRegressor) Predict(row []float64) (float64, error) {
	return 0.1*row[0] + 0.5*row[1], nil
}

type mockPipeline struct {
	pre        *mockPreprocessor
	predictFn  func(fv model.FeatureVector) (float64, error)
	background [][]float64
}

func (m *mockPipeline) Predict(fv model.FeatureVector) (float64, error) {
	if m.predictFn != nil {
		return m.predictFn(fv)
	}
	row, err := m.pre.Transform(fv)
	if err != nil {
		return 0, &port.StageError{Stage: failure.StagePreprocessor, Err: err}
	}
	return mockRegressor{}.Predict(row)
}

func (m *mockPipeline) Preprocessor() port.Preprocessor { return m.pre }
func (m *mockPipeline) Regressor() port.Regressor       { return mockRegressor{} }
func (m *mockPipeline) Version() string                 { return "v-test" }

// backgroundPipeline adds a stored training sample.
type backgroundPipeline struct {
	mockPipeline
}

func (b *backgroundPipeline) Background() [][]float64 { return b.background }

// linearExplainer gives exact attributions of mockRegressor against the
// mean of its background.
type linearExplainer struct {
	mean   []float64
	values []float64
	err    error
}

func (e *linearExplainer) ExpectedValue() float64 {
	v, _ := mockRegressor{}.Predict(e.mean)
	return v
}

func (e *linearExplainer) Attributions(row []float64) ([]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.values != nil {
		return e.values, nil
	}
	return []float64{0.1 * (row[0] - e.mean[0]), 0.5 * (row[1] - e.mean[1])}, nil
}

func columnMeans(bg [][]float64) []float64 {
	mean := make([]float64, len(bg[0]))
	for _, row := range bg {
		for j, v := range row {
			mean[j] += v / float64(len(bg))
		}
	}
	return mean
}

type factoryCall struct {
	background [][]float64
}

func linearFactory(calls *[]factoryCall, tweak func(*linearExplainer)) port.ExplainerFactory {
	return func(_ port.Regressor, background [][]float64) (port.Explainer, error) {
		if calls != nil {
			*calls = append(*calls, factoryCall{background: background})
		}
		e := &linearExplainer{mean: columnMeans(background)}
		if tweak != nil {
			tweak(e)
		}
		return e, nil
	}
}
