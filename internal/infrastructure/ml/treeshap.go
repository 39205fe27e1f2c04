package ml

import (
	"fmt"
	"math"

	"github.com/vi31/anxiety-predictor/internal/domain/port"
)

// TreeExplainer computes exact interventional Shapley values for a forest
// against a fixed background matrix. For one background row z the values
// satisfy sum(phi) == f(x) - f(z); averaged over the background they sum to
// f(x) - ExpectedValue().
type TreeExplainer struct {
	forest     *Forest
	background [][]float64
	expected   float64
	weights    [][]float64
}

// NewTreeExplainer binds a tree explainer to reg, which must be a *Forest.
// It has the signature of port.ExplainerFactory.
func NewTreeExplainer(reg port.Regressor, background [][]float64) (port.Explainer, error) {
	forest, ok := reg.(*Forest)
	if !ok {
		return nil, fmt.Errorf("tree explainer requires a tree ensemble, got %T", reg)
	}
	if len(forest.Trees) == 0 {
		return nil, fmt.Errorf("forest has no trees")
	}
	if len(background) == 0 {
		return nil, fmt.Errorf("background is empty")
	}

	var sum float64
	for i, z := range background {
		if len(z) != forest.NumFeatures {
			return nil, fmt.Errorf("background row %d has %d features, expected %d", i, len(z), forest.NumFeatures)
		}
		sum += forest.predict(z)
	}

	return &TreeExplainer{
		forest:     forest,
		background: background,
		expected:   sum / float64(len(background)),
		weights:    shapleyWeights(forest.NumFeatures),
	}, nil
}

// ExpectedValue returns the mean forest output over the background.
func (e *TreeExplainer) ExpectedValue() float64 { return e.expected }

// Attributions returns one Shapley value per transformed feature of row.
func (e *TreeExplainer) Attributions(row []float64) ([]float64, error) {
	width := e.forest.NumFeatures
	if len(row) != width {
		return nil, fmt.Errorf("expected %d features, got %d", width, len(row))
	}
	for i, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("feature %d is not finite", i)
		}
	}

	phi := make([]float64, width)
	w := &shapWalker{
		x:       row,
		phi:     phi,
		weights: e.weights,
		fromX:   make([]bool, width),
		fromZ:   make([]bool, width),
	}
	for t := range e.forest.Trees {
		w.tree = &e.forest.Trees[t]
		for _, z := range e.background {
			w.z = z
			w.walk(0)
		}
	}

	n := float64(len(e.forest.Trees) * len(e.background))
	for i := range phi {
		phi[i] /= n
	}
	return phi, nil
}

// shapleyWeights returns w[a][b] = a! b! / (a+b+1)! for a+b < n.
func shapleyWeights(n int) [][]float64 {
	w := make([][]float64, n+1)
	for a := range w {
		w[a] = make([]float64, n+1)
		for b := 0; a+b <= n; b++ {
			la, _ := math.Lgamma(float64(a + 1))
			lb, _ := math.Lgamma(float64(b + 1))
			lab, _ := math.Lgamma(float64(a + b + 2))
			w[a][b] = math.Exp(la + lb - lab)
		}
	}
	return w
}

// shapWalker enumerates the leaves reachable when each split feature is
// taken either from x or from z. Features that route x and z the same way
// are irrelevant to the leaf and are not assigned.
type shapWalker struct {
	tree    *Tree
	x, z    []float64
	phi     []float64
	weights [][]float64

	fromX, fromZ []bool
	xs, zs       []int
}

func (w *shapWalker) walk(node int) {
	t := w.tree
	if t.IsLeaf(node) {
		w.credit(t.Value[node])
		return
	}

	f := t.Feature[node]
	xChild := t.Right[node]
	if w.x[f] <= t.Threshold[node] {
		xChild = t.Left[node]
	}
	zChild := t.Right[node]
	if w.z[f] <= t.Threshold[node] {
		zChild = t.Left[node]
	}

	switch {
	case w.fromX[f]:
		w.walk(xChild)
	case w.fromZ[f]:
		w.walk(zChild)
	case xChild == zChild:
		w.walk(xChild)
	default:
		w.fromX[f] = true
		w.xs = append(w.xs, f)
		w.walk(xChild)
		w.xs = w.xs[:len(w.xs)-1]
		w.fromX[f] = false

		w.fromZ[f] = true
		w.zs = append(w.zs, f)
		w.walk(zChild)
		w.zs = w.zs[:len(w.zs)-1]
		w.fromZ[f] = false
	}
}

// credit distributes a reached leaf over the features that decided the path.
// A feature taken from x gains when it joins the coalition. A feature taken
// from z loses when it does, since x's value would route elsewhere.
func (w *shapWalker) credit(v float64) {
	nx, nz := len(w.xs), len(w.zs)
	if nx > 0 {
		pos := v * w.weights[nx-1][nz]
		for _, f := range w.xs {
			w.phi[f] += pos
		}
	}
	if nz > 0 {
		neg := v * w.weights[nx][nz-1]
		for _, f := range w.zs {
			w.phi[f] -= neg
		}
	}
}
