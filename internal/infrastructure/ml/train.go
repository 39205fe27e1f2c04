package ml

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/vi31/anxiety-predictor/internal/domain/model"
)

// TrainConfig controls the end-to-end fitting procedure.
type TrainConfig struct {
	Forest ForestParams
	// TestFraction is the share of rows held out for scoring.
	TestFraction float64
	SplitSeed    int64
	// BackgroundSize caps the transformed training rows stored for
	// attribution. Zero stores none.
	BackgroundSize int
	Version        string
	Source         string
}

// DefaultTrainConfig holds out a quarter of the rows with seed 42.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Forest:         DefaultForestParams(),
		TestFraction:   0.25,
		SplitSeed:      42,
		BackgroundSize: 100,
	}
}

// Train fits the preprocessor on the training split, fits the forest on the
// transformed training rows and scores the held-out rows.
func Train(ctx context.Context, rows []model.FeatureVector, y []float64, cfg TrainConfig) (*Pipeline, error) {
	if len(rows) != len(y) {
		return nil, fmt.Errorf("train: %d rows for %d targets", len(rows), len(y))
	}
	if cfg.TestFraction < 0 || cfg.TestFraction >= 1 {
		return nil, fmt.Errorf("train: test fraction must be in [0, 1), got %v", cfg.TestFraction)
	}
	if cfg.BackgroundSize < 0 {
		return nil, fmt.Errorf("train: background size must not be negative")
	}

	trainIdx, testIdx := splitIndices(len(rows), cfg.TestFraction, cfg.SplitSeed)
	if len(trainIdx) == 0 {
		return nil, fmt.Errorf("train: no training rows")
	}

	trainRows := pick(rows, trainIdx)
	pre, err := FitColumnTransformer(model.Columns(), trainRows)
	if err != nil {
		return nil, err
	}

	X, err := transformAll(pre, trainRows)
	if err != nil {
		return nil, err
	}
	forest, err := FitForest(ctx, X, pick(y, trainIdx), cfg.Forest)
	if err != nil {
		return nil, err
	}

	var metrics Metrics
	if len(testIdx) > 0 {
		testX, err := transformAll(pre, pick(rows, testIdx))
		if err != nil {
			return nil, err
		}
		pred := make([]float64, len(testX))
		for i, row := range testX {
			pred[i] = forest.predict(row)
		}
		metrics = score(pick(y, testIdx), pred)
	}

	background := X[:min(cfg.BackgroundSize, len(X))]

	version := cfg.Version
	if version == "" {
		version = time.Now().UTC().Format("20060102T150405Z")
	}

	meta := Metadata{
		TrainedAt:  time.Now().UTC(),
		Version:    version,
		Source:     cfg.Source,
		Metrics:    metrics,
		TrainRows:  len(trainIdx),
		TestRows:   len(testIdx),
		NumTrees:   cfg.Forest.NumTrees,
		SplitSeed:  cfg.SplitSeed,
		ForestSeed: cfg.Forest.Seed,
	}
	return NewPipeline(pre, forest, background, meta), nil
}

// splitIndices shuffles 0..n-1 with seed and returns the train and test
// index sets. The test set size is ceil(n * fraction).
func splitIndices(n int, fraction float64, seed int64) ([]int, []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(math.Ceil(float64(n) * fraction))
	return perm[nTest:], perm[:nTest]
}

func pick[T any](xs []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = xs[j]
	}
	return out
}

func transformAll(pre *ColumnTransformer, rows []model.FeatureVector) ([][]float64, error) {
	X := make([][]float64, len(rows))
	for i, fv := range rows {
		row, err := pre.Transform(fv)
		if err != nil {
			return nil, fmt.Errorf("transform row %d: %w", i, err)
		}
		X[i] = row
	}
	return X, nil
}

func score(y, pred []float64) Metrics {
	n := float64(len(y))
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= n

	var absErr, sqErr, total float64
	for i := range y {
		d := y[i] - pred[i]
		absErr += math.Abs(d)
		sqErr += d * d
		total += (y[i] - mean) * (y[i] - mean)
	}

	m := Metrics{MAE: absErr / n, RMSE: math.Sqrt(sqErr / n)}
	if total > 0 {
		m.R2 = 1 - sqErr/total
	}
	return m
}
