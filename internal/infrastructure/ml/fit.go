package ml

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ForestParams configures random forest fitting.
type ForestParams struct {
	// NumTrees is the number of bootstrap trees.
	NumTrees int
	// MaxDepth bounds tree depth; zero grows until leaves are pure.
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	// MaxFeatures is the fraction of features tried at each split.
	MaxFeatures float64
	Seed        int64
	// Workers bounds concurrent tree fits; zero uses GOMAXPROCS.
	Workers int
}

// DefaultForestParams returns the production model settings: 100 fully grown
// trees over all features, seed 42.
func DefaultForestParams() ForestParams {
	return ForestParams{
		NumTrees:        100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     1.0,
		Seed:            42,
	}
}

func (p ForestParams) validate() error {
	switch {
	case p.NumTrees < 1:
		return fmt.Errorf("number of trees must be positive, got %d", p.NumTrees)
	case p.MaxDepth < 0:
		return fmt.Errorf("max depth must not be negative, got %d", p.MaxDepth)
	case p.MinSamplesSplit < 2:
		return fmt.Errorf("min samples split must be at least 2, got %d", p.MinSamplesSplit)
	case p.MinSamplesLeaf < 1:
		return fmt.Errorf("min samples leaf must be at least 1, got %d", p.MinSamplesLeaf)
	case p.MaxFeatures <= 0 || p.MaxFeatures > 1:
		return fmt.Errorf("max features must be in (0, 1], got %v", p.MaxFeatures)
	}
	return nil
}

// FitForest fits a random forest on the transformed matrix X and target y.
// Every tree draws from its own seeded source, so the result does not depend
// on worker scheduling.
func FitForest(ctx context.Context, X [][]float64, y []float64, params ForestParams) (*Forest, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	if len(X) == 0 {
		return nil, fmt.Errorf("fit forest: no rows")
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("fit forest: %d rows for %d targets", len(X), len(y))
	}
	width := len(X[0])
	for i, row := range X {
		if len(row) != width {
			return nil, fmt.Errorf("fit forest: row %d has %d features, expected %d", i, len(row), width)
		}
	}

	workers := params.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	trees := make([]Tree, params.NumTrees)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b := newTreeBuilder(X, y, params, rand.New(rand.NewSource(params.Seed+int64(i))))
			trees[i] = b.fit()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}

	return &Forest{Trees: trees, NumFeatures: width}, nil
}

type treeBuilder struct {
	X      [][]float64
	y      []float64
	rng    *rand.Rand
	tree   Tree
	params ForestParams
	order  []int
}

func newTreeBuilder(X [][]float64, y []float64, params ForestParams, rng *rand.Rand) *treeBuilder {
	return &treeBuilder{X: X, y: y, params: params, rng: rng}
}

func (b *treeBuilder) fit() Tree {
	n := len(b.X)
	sample := make([]int, n)
	for i := range sample {
		sample[i] = b.rng.Intn(n)
	}
	b.order = make([]int, n)
	b.grow(sample, 0)
	return b.tree
}

func (b *treeBuilder) addNode(idx []int) int {
	var sum float64
	for _, i := range idx {
		sum += b.y[i]
	}
	t := &b.tree
	t.Left = append(t.Left, leaf)
	t.Right = append(t.Right, leaf)
	t.Feature = append(t.Feature, 0)
	t.Threshold = append(t.Threshold, 0)
	t.Value = append(t.Value, sum/float64(len(idx)))
	t.Cover = append(t.Cover, float64(len(idx)))
	return len(t.Value) - 1
}

// grow builds the subtree for idx and returns its root node.
func (b *treeBuilder) grow(idx []int, depth int) int {
	node := b.addNode(idx)

	if len(idx) < b.params.MinSamplesSplit || len(idx) < 2*b.params.MinSamplesLeaf {
		return node
	}
	if b.params.MaxDepth > 0 && depth >= b.params.MaxDepth {
		return node
	}
	if b.pure(idx) {
		return node
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return node
	}

	// Partition in place: left block first.
	k := 0
	for i := range idx {
		if b.X[idx[i]][feature] <= threshold {
			idx[i], idx[k] = idx[k], idx[i]
			k++
		}
	}

	left := b.grow(idx[:k], depth+1)
	right := b.grow(idx[k:], depth+1)

	b.tree.Feature[node] = feature
	b.tree.Threshold[node] = threshold
	b.tree.Left[node] = left
	b.tree.Right[node] = right
	return node
}

func (b *treeBuilder) pure(idx []int) bool {
	first := b.y[idx[0]]
	for _, i := range idx[1:] {
		if b.y[i] != first {
			return false
		}
	}
	return true
}

// bestSplit returns the split that most reduces squared error. Maximizing
// sumL²/nL + sumR²/nR is equivalent to minimizing the children's SSE.
func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	n := len(idx)
	var total float64
	for _, i := range idx {
		total += b.y[i]
	}
	parent := total * total / float64(n)
	bestScore := parent + 1e-12*max(1, math.Abs(parent))
	bestFeature, bestThreshold, found := 0, 0.0, false

	buf := b.order[:n]
	for _, f := range b.candidateFeatures() {
		copy(buf, idx)
		sort.SliceStable(buf, func(a, c int) bool { return b.X[buf[a]][f] < b.X[buf[c]][f] })

		var leftSum float64
		for i := 0; i < n-1; i++ {
			leftSum += b.y[buf[i]]
			lo, hi := b.X[buf[i]][f], b.X[buf[i+1]][f]
			if lo == hi {
				continue
			}
			nl, nr := i+1, n-i-1
			if nl < b.params.MinSamplesLeaf || nr < b.params.MinSamplesLeaf {
				continue
			}
			rightSum := total - leftSum
			score := leftSum*leftSum/float64(nl) + rightSum*rightSum/float64(nr)
			if score > bestScore {
				threshold := lo + (hi-lo)/2
				if threshold >= hi {
					threshold = lo
				}
				bestScore, bestFeature, bestThreshold, found = score, f, threshold, true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func (b *treeBuilder) candidateFeatures() []int {
	width := len(b.X[0])
	if b.params.MaxFeatures >= 1 {
		all := make([]int, width)
		for i := range all {
			all[i] = i
		}
		return all
	}
	k := max(1, int(b.params.MaxFeatures*float64(width)))
	return b.rng.Perm(width)[:k]
}
