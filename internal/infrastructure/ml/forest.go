package ml

import (
	"fmt"
)

// leaf marks a node without children.
const leaf = -1

// Tree is a fitted regression tree stored as flat node arrays. Node 0 is the
// root. A sample goes left when x[Feature] <= Threshold.
type Tree struct {
	Left      []int     `json:"left"`
	Right     []int     `json:"right"`
	Feature   []int     `json:"feature"`
	Threshold []float64 `json:"threshold"`
	Value     []float64 `json:"value"`
	// Cover is the number of training samples that reached each node.
	Cover []float64 `json:"cover"`
}

// NumNodes returns the node count.
func (t *Tree) NumNodes() int { return len(t.Value) }

// IsLeaf reports whether node has no children.
func (t *Tree) IsLeaf(node int) bool { return t.Left[node] == leaf }

// Predict drops x down the tree and returns the leaf value.
func (t *Tree) Predict(x []float64) float64 {
	node := 0
	for !t.IsLeaf(node) {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.Left[node]
		} else {
			node = t.Right[node]
		}
	}
	return t.Value[node]
}

// Depth returns the length of the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var walk func(node int) int
	walk = func(node int) int {
		if t.IsLeaf(node) {
			return 0
		}
		return 1 + max(walk(t.Left[node]), walk(t.Right[node]))
	}
	return walk(0)
}

func (t *Tree) validate(numFeatures int) error {
	n := len(t.Value)
	if n == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	if len(t.Left) != n || len(t.Right) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Cover) != n {
		return fmt.Errorf("tree node arrays have inconsistent lengths")
	}
	for i := 0; i < n; i++ {
		if t.Left[i] == leaf {
			if t.Right[i] != leaf {
				return fmt.Errorf("node %d has only one child", i)
			}
			continue
		}
		// Children always come after their parent, which also rules out cycles.
		if t.Left[i] <= i || t.Left[i] >= n || t.Right[i] <= i || t.Right[i] >= n {
			return fmt.Errorf("node %d has out of range children", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= numFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, t.Feature[i], numFeatures)
		}
	}
	return nil
}

// Forest is a fitted random forest regressor. Its prediction is the mean of
// the tree outputs.
type Forest struct {
	Trees       []Tree `json:"trees"`
	NumFeatures int    `json:"n_features"`
}

// Predict scores one transformed row.
func (f *Forest) Predict(row []float64) (float64, error) {
	if len(row) != f.NumFeatures {
		return 0, fmt.Errorf("expected %d features, got %d", f.NumFeatures, len(row))
	}
	if len(f.Trees) == 0 {
		return 0, fmt.Errorf("forest has no trees")
	}
	return f.predict(row), nil
}

func (f *Forest) predict(row []float64) float64 {
	var sum float64
	for i := range f.Trees {
		sum += f.Trees[i].Predict(row)
	}
	return sum / float64(len(f.Trees))
}

func (f *Forest) validate() error {
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(f.NumFeatures); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}
