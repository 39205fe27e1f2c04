package usecase_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vi31/anxiety-predictor/internal/application/dto"
	"github.com/vi31/anxiety-predictor/internal/application/usecase"
	"github.com/vi31/anxiety-predictor/internal/domain/event"
	"github.com/vi31/anxiety-predictor/internal/domain/failure"
	"github.com/vi31/anxiety-predictor/internal/domain/model"
	"github.com/vi31/anxiety-predictor/internal/domain/port"
	"github.com/vi31/anxiety-predictor/internal/domain/service"
	"github.com/vi31/anxiety-predictor/pkg/testutil"
)

// --- Mock implementations ---

type mockPreprocessor struct {
	transformErr error
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
	return []string{"num__Age", "num__Stress Level (1-10)"}
}

// mockRegressor scores 0.1*age + 0.5*stress.
type mockRegressor struct{}

func (mockRegressor) Predict(row []float64) (float64, error) {
	return 0.1*row[0] + 0.5*row[1], nil
}

type mockPipeline struct {
	pre        *mockPreprocessor
	predictErr error
}

func (m *mockPipeline) Predict(fv model.FeatureVector) (float64, error) {
	if m.predictErr != nil {
		return 0, m.predictErr
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

// linearExplainer attributes a linear regressor exactly against its background.
type linearExplainer struct {
	background [][]float64
}

func (e *linearExplainer) ExpectedValue() float64 {
	v, _ := mockRegressor{}.Predict(e.background[0])
	return v
}

func (e *linearExplainer) Attributions(row []float64) ([]float64, error) {
	z := e.background[0]
	return []float64{0.1 * (row[0] - z[0]), 0.5 * (row[1] - z[1])}, nil
}

func linearFactory(_ port.Regressor, background [][]float64) (port.Explainer, error) {
	return &linearExplainer{background: background}, nil
}

type mockPredictionRepository struct {
	mu           sync.Mutex
	saved        []*model.PredictionRecord
	saveErr      error
	findByIDFunc func(ctx context.Context, id uuid.UUID) (*model.PredictionRecord, error)
	listFunc     func(ctx context.Context, limit int) ([]*model.PredictionRecord, error)
}

func (m *mockPredictionRepository) Save(_ context.Context, rec *model.PredictionRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, rec)
	return nil
}

func (m *mockPredictionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PredictionRecord, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, port.ErrPredictionNotFound
}

func (m *mockPredictionRepository) ListRecent(ctx context.Context, limit int) ([]*model.PredictionRecord, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit)
	}
	return nil, nil
}

type mockEventPublisher struct {
	published  []event.DomainEvent
	publishErr error
}

func (m *mockEventPublisher) Publish(_ context.Context, evts ...event.DomainEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, evts...)
	return nil
}

// --- Helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPredict(p port.Pipeline, repo port.PredictionRepository, pub port.EventPublisher) *usecase.PredictAnxiety {
	return usecase.NewPredictAnxiety(
		service.NewFeatureMapper(), service.NewInferenceEngine(p),
		repo, pub, p.Version(), testLogger(),
	)
}

func newExplain(p port.Pipeline, repo port.PredictionRepository, pub port.EventPublisher) *usecase.ExplainAnxiety {
	return usecase.NewExplainAnxiety(
		service.NewFeatureMapper(),
		service.NewAttributionEngine(linearFactory, service.BaselineSample),
		p, repo, pub, testLogger(),
	)
}

// --- Tests ---

func TestPredictAnxiety_Execute(t *testing.T) {
	t.Run("scores and records the prediction", func(t *testing.T) {
		repo := &mockPredictionRepository{}
		pub := &mockEventPublisher{}
		uc := newPredict(&mockPipeline{pre: &mockPreprocessor{}}, repo, pub)

		resp, err := uc.Execute(context.Background(), dto.PredictRequest{Input: testutil.ScenarioInput()})
		require.NoError(t, err)

		assert.Equal(t, 5.0, resp.PredictedAnxietyLevel)
		require.Len(t, repo.saved, 1)
		assert.Equal(t, resp.PredictionID, repo.saved[0].ID())
		assert.Equal(t, model.RequestPredict, repo.saved[0].Kind())
		assert.Equal(t, "v-test", repo.saved[0].ModelVersion())

		require.Len(t, pub.published, 1)
		served, ok := pub.published[0].(event.PredictionServed)
		require.True(t, ok)
		assert.Equal(t, event.EventTypePredictionServed, served.EventType())
		assert.Equal(t, resp.PredictionID, served.AggregateID())
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		in := testutil.ScenarioInput()
		in.Age = 23
		in.StressLevel = 3
		uc := newPredict(&mockPipeline{pre: &mockPreprocessor{}}, &mockPredictionRepository{}, &mockEventPublisher{})

		resp, err := uc.Execute(context.Background(), dto.PredictRequest{Input: in})
		require.NoError(t, err)
		assert.Equal(t, 3.8, resp.PredictedAnxietyLevel)
	})

	t.Run("pipeline failure is an inference failure", func(t *testing.T) {
		repo := &mockPredictionRepository{}
		p := &mockPipeline{pre: &mockPreprocessor{transformErr: fmt.Errorf("columns are missing")}}
		uc := newPredict(p, repo, &mockEventPublisher{})

		_, err := uc.Execute(context.Background(), dto.PredictRequest{Input: testutil.ScenarioInput()})
		require.Error(t, err)

		fe, ok := failure.As(err)
		require.True(t, ok)
		assert.Equal(t, failure.KindInference, fe.Kind)
		assert.Equal(t, failure.StagePreprocessor, fe.Stage)
		assert.Equal(t, "columns are missing", fe.Detail())
		assert.Empty(t, repo.saved)
	})

	t.Run("history failures do not fail the request", func(t *testing.T) {
		repo := &mockPredictionRepository{saveErr: fmt.Errorf("database down")}
		pub := &mockEventPublisher{publishErr: fmt.Errorf("broker down")}
		uc := newPredict(&mockPipeline{pre: &mockPreprocessor{}}, repo, pub)

		resp, err := uc.Execute(context.Background(), dto.PredictRequest{Input: testutil.ScenarioInput()})
		require.NoError(t, err)
		assert.Equal(t, 5.0, resp.PredictedAnxietyLevel)
	})
}

func TestExplainAnxiety_Execute(t *testing.T) {
	t.Run("returns ordered contributions and records them", func(t *testing.T) {
		repo := &mockPredictionRepository{}
		pub := &mockEventPublisher{}
		uc := newExplain(&mockPipeline{pre: &mockPreprocessor{}}, repo, pub)

		resp, err := uc.Execute(context.Background(), dto.ExplainRequest{Input: testutil.ScenarioInput()})
		require.NoError(t, err)

		assert.Equal(t, 5.0, resp.PredictedAnxietyLevel)
		assert.Equal(t, []string{"num__Age", "num__Stress Level (1-10)"}, resp.Contributions.Features())
		// The sample baseline measures the row against itself.
		assert.Equal(t, 0.0, resp.Contributions.Sum())
		assert.Equal(t, 5.0, resp.ExpectedValue)

		require.Len(t, repo.saved, 1)
		assert.Equal(t, model.RequestExplain, repo.saved[0].Kind())
		assert.Equal(t, "sample", repo.saved[0].Baseline())
		assert.Len(t, repo.saved[0].Contributions(), 2)
		assert.Len(t, pub.published, 1)
	})

	t.Run("preprocessor failure is an explanation failure", func(t *testing.T) {
		p := &mockPipeline{pre: &mockPreprocessor{transformErr: fmt.Errorf("bad contract")}}
		uc := newExplain(p, &mockPredictionRepository{}, &mockEventPublisher{})

		_, err := uc.Execute(context.Background(), dto.ExplainRequest{Input: testutil.ScenarioInput()})
		fe, ok := failure.As(err)
		require.True(t, ok)
		assert.Equal(t, failure.KindExplanation, fe.Kind)
		assert.Equal(t, failure.StagePreprocessor, fe.Stage)
	})

	t.Run("recompute failure keeps the stage", func(t *testing.T) {
		p := &mockPipeline{
			pre:        &mockPreprocessor{},
			predictErr: &port.StageError{Stage: failure.StageRegressor, Err: fmt.Errorf("tree corrupt")},
		}
		uc := newExplain(p, &mockPredictionRepository{}, &mockEventPublisher{})

		_, err := uc.Execute(context.Background(), dto.ExplainRequest{Input: testutil.ScenarioInput()})
		fe, ok := failure.As(err)
		require.True(t, ok)
		assert.Equal(t, failure.KindExplanation, fe.Kind)
		assert.Equal(t, failure.StageRegressor, fe.Stage)
	})
}

func TestGetPrediction_Execute(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		rec, err := model.NewPredictionRecord(model.RequestPredict, testutil.ScenarioInput(), 4.2, nil, "", "v1")
		require.NoError(t, err)
		repo := &mockPredictionRepository{
			findByIDFunc: func(_ context.Context, id uuid.UUID) (*model.PredictionRecord, error) {
				if id == rec.ID() {
					return rec, nil
				}
				return nil, port.ErrPredictionNotFound
			},
		}

		resp, err := usecase.NewGetPrediction(repo).Execute(context.Background(), dto.GetPredictionRequest{PredictionID: rec.ID()})
		require.NoError(t, err)
		assert.Equal(t, rec.ID(), resp.ID)
		assert.Equal(t, "predict", resp.Kind)
		assert.Equal(t, 4.2, resp.PredictedAnxietyLevel)
		assert.Equal(t, testutil.ScenarioInput(), resp.Input)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := usecase.NewGetPrediction(&mockPredictionRepository{}).Execute(
			context.Background(), dto.GetPredictionRequest{PredictionID: uuid.New()})
		assert.True(t, failure.Is(err, failure.KindNotFound))
	})

	t.Run("repository error", func(t *testing.T) {
		repo := &mockPredictionRepository{
			findByIDFunc: func(context.Context, uuid.UUID) (*model.PredictionRecord, error) {
				return nil, fmt.Errorf("connection refused")
			},
		}
		_, err := usecase.NewGetPrediction(repo).Execute(context.Background(), dto.GetPredictionRequest{PredictionID: uuid.New()})
		require.Error(t, err)
		assert.False(t, failure.Is(err, failure.KindNotFound))
		assert.Contains(t, err.Error(), "failed to find prediction")
	})
}

func TestListPredictions_Execute(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "default", limit: 0, wantLimit: 20},
		{name: "explicit", limit: 5, wantLimit: 5},
		{name: "capped", limit: 1000, wantLimit: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got int
			repo := &mockPredictionRepository{
				listFunc: func(_ context.Context, limit int) ([]*model.PredictionRecord, error) {
					got = limit
					rec, err := model.NewPredictionRecord(model.RequestPredict, testutil.ScenarioInput(), 3, nil, "", "v1")
					require.NoError(t, err)
					return []*model.PredictionRecord{rec}, nil
				},
			}
			resp, err := usecase.NewListPredictions(repo).Execute(context.Background(), dto.ListPredictionsRequest{Limit: tt.limit})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, got)
			assert.Len(t, resp.Predictions, 1)
		})
	}
}
