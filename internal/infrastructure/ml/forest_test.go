package ml

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stumpTree splits feature 0 at 0.5; its right child splits feature 1 at 0.5.
func stumpTree() Tree {
	return Tree{
		Left:      []int{1, leaf, 3, leaf, leaf},
		Right:     []int{2, leaf, 4, leaf, leaf},
		Feature:   []int{0, 0, 1, 0, 0},
		Threshold: []float64{0.5, 0, 0.5, 0, 0},
		Value:     []float64{2, 1, 3, 2, 4},
		Cover:     []float64{4, 2, 2, 1, 1},
	}
}

func TestTree_Predict(t *testing.T) {
	tree := stumpTree()

	tests := []struct {
		name string
		x    []float64
		want float64
	}{
		{name: "left leaf", x: []float64{0, 9}, want: 1},
		{name: "threshold goes left", x: []float64{0.5, 9}, want: 1},
		{name: "right then left", x: []float64{1, 0}, want: 2},
		{name: "right then right", x: []float64{1, 1}, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tree.Predict(tt.x))
		})
	}
	assert.Equal(t, 2, tree.Depth())
}

func TestTree_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tree := stumpTree()
		assert.NoError(t, tree.validate(2))
	})

	t.Run("feature out of range", func(t *testing.T) {
		tree := stumpTree()
		assert.Error(t, tree.validate(1))
	})

	t.Run("child before parent", func(t *testing.T) {
		tree := stumpTree()
		tree.Left[2] = 1
		assert.Error(t, tree.validate(2))
	})

	t.Run("single child", func(t *testing.T) {
		tree := stumpTree()
		tree.Right[0] = leaf
		assert.Error(t, tree.validate(2))
	})

	t.Run("ragged arrays", func(t *testing.T) {
		tree := stumpTree()
		tree.Cover = tree.Cover[:2]
		assert.Error(t, tree.validate(2))
	})
}

func TestForest_Predict(t *testing.T) {
	constant := Tree{Left: []int{leaf}, Right: []int{leaf}, Feature: []int{0}, Threshold: []float64{0}, Value: []float64{10}, Cover: []float64{1}}
	forest := &Forest{Trees: []Tree{stumpTree(), constant}, NumFeatures: 2}

	got, err := forest.Predict([]float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)

	_, err = forest.Predict([]float64{1})
	assert.Error(t, err)
}

func linearMatrix(n int, seed int64) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		X[i] = []float64{rng.Float64(), rng.Float64(), rng.Float64(), rng.Float64()}
		y[i] = 3*X[i][0] - 2*X[i][1] + X[i][2]*X[i][3]
	}
	return X, y
}

func TestFitForest(t *testing.T) {
	X, y := linearMatrix(200, 11)

	t.Run("fits the training data", func(t *testing.T) {
		params := DefaultForestParams()
		params.NumTrees = 10
		forest, err := FitForest(context.Background(), X, y, params)
		require.NoError(t, err)
		require.Len(t, forest.Trees, 10)
		require.NoError(t, forest.validate())

		var sqErr, total, mean float64
		for _, v := range y {
			mean += v
		}
		mean /= float64(len(y))
		for i, row := range X {
			d := forest.predict(row) - y[i]
			sqErr += d * d
			total += (y[i] - mean) * (y[i] - mean)
		}
		assert.Greater(t, 1-sqErr/total, 0.8)
	})

	t.Run("root cover counts the bootstrap sample", func(t *testing.T) {
		params := DefaultForestParams()
		params.NumTrees = 3
		forest, err := FitForest(context.Background(), X, y, params)
		require.NoError(t, err)
		for _, tree := range forest.Trees {
			assert.Equal(t, float64(len(X)), tree.Cover[0])
		}
	})

	t.Run("max depth is honored", func(t *testing.T) {
		params := DefaultForestParams()
		params.NumTrees = 4
		params.MaxDepth = 3
		forest, err := FitForest(context.Background(), X, y, params)
		require.NoError(t, err)
		for _, tree := range forest.Trees {
			assert.LessOrEqual(t, tree.Depth(), 3)
		}
	})

	t.Run("independent of worker count", func(t *testing.T) {
		params := DefaultForestParams()
		params.NumTrees = 6
		params.MaxFeatures = 0.5
		params.Workers = 1
		serial, err := FitForest(context.Background(), X, y, params)
		require.NoError(t, err)
		params.Workers = 4
		parallel, err := FitForest(context.Background(), X, y, params)
		require.NoError(t, err)
		assert.Equal(t, serial, parallel)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := FitForest(ctx, X, y, DefaultForestParams())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFitForest_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		X      [][]float64
		y      []float64
		params func(*ForestParams)
	}{
		{name: "no rows", X: nil, y: nil},
		{name: "length mismatch", X: [][]float64{{1}, {2}}, y: []float64{1}},
		{name: "ragged rows", X: [][]float64{{1, 2}, {3}}, y: []float64{1, 2}},
		{name: "zero trees", X: [][]float64{{1}}, y: []float64{1}, params: func(p *ForestParams) { p.NumTrees = 0 }},
		{name: "max features out of range", X: [][]float64{{1}}, y: []float64{1}, params: func(p *ForestParams) { p.MaxFeatures = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultForestParams()
			if tt.params != nil {
				tt.params(&params)
			}
			_, err := FitForest(context.Background(), tt.X, tt.y, params)
			assert.Error(t, err)
		})
	}
}
