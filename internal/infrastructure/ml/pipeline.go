package ml

import (
	"time"

	"github.com/vi31/anxiety-predictor/internal/domain/failure"
	"github.com/vi31/anxiety-predictor/internal/domain/model"
	"github.com/vi31/anxiety-predictor/internal/domain/port"
)

// Metrics are hold-out regression scores recorded at training time.
type Metrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
}

// Metadata describes how an artifact was produced.
type Metadata struct {
	TrainedAt  time.Time `json:"trained_at"`
	Version    string    `json:"version"`
	Source     string    `json:"source,omitempty"`
	Metrics    Metrics   `json:"metrics"`
	TrainRows  int       `json:"train_rows"`
	TestRows   int       `json:"test_rows"`
	NumTrees   int       `json:"n_trees"`
	SplitSeed  int64     `json:"split_seed"`
	ForestSeed int64     `json:"forest_seed"`
}

// Pipeline chains the fitted column transformer and forest. It is immutable
// after construction and safe for concurrent use.
type Pipeline struct {
	preprocessor *ColumnTransformer
	regressor    *Forest
	background   [][]float64
	meta         Metadata
}

var (
	_ port.Pipeline         = (*Pipeline)(nil)
	_ port.BackgroundSource = (*Pipeline)(nil)
)

// NewPipeline assembles a pipeline from fitted stages.
func NewPipeline(pre *ColumnTransformer, reg *Forest, background [][]float64, meta Metadata) *Pipeline {
	return &Pipeline{preprocessor: pre, regressor: reg, background: background, meta: meta}
}

// Predict transforms fv and scores it. Errors carry the failing stage.
func (p *Pipeline) Predict(fv model.FeatureVector) (float64, error) {
	row, err := p.preprocessor.Transform(fv)
	if err != nil {
		return 0, &port.StageError{Stage: failure.StagePreprocessor, Err: err}
	}
	score, err := p.regressor.Predict(row)
	if err != nil {
		return 0, &port.StageError{Stage: failure.StageRegressor, Err: err}
	}
	return score, nil
}

func (p *Pipeline) Preprocessor() port.Preprocessor { return p.preprocessor }
func (p *Pipeline) Regressor() port.Regressor       { return p.regressor }
func (p *Pipeline) Version() string                 { return p.meta.Version }

// Background returns the transformed training sample kept for attribution.
func (p *Pipeline) Background() [][]float64 { return p.background }

// Metadata returns the training metadata.
func (p *Pipeline) Metadata() Metadata { return p.meta }

// ColumnTransformer returns the concrete preprocessing stage.
func (p *Pipeline) ColumnTransformer() *ColumnTransformer { return p.preprocessor }

// Forest returns the concrete regression stage.
func (p *Pipeline) Forest() *Forest { return p.regressor }
