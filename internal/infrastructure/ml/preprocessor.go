package ml

import (
	"fmt"
	"math"
	"sort"

	"github.com/vi31/anxiety-predictor/internal/domain/model"
)

const (
	numericPrefix     = "num__"
	categoricalPrefix = "cat__"
)

// NumericStep imputes a missing value with the fitted median, then
// standardizes with the fitted mean and scale.
type NumericStep struct {
	Column string  `json:"column"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	Scale  float64 `json:"scale"`
}

// CategoricalStep imputes a missing value with the most frequent fitted
// level, then one-hot encodes against the sorted fitted categories. Levels
// never seen during fitting encode to an all-zero block.
type CategoricalStep struct {
	Column       string   `json:"column"`
	MostFrequent string   `json:"most_frequent"`
	Categories   []string `json:"categories"`
}

// ColumnTransformer is the fitted preprocessing stage. Numeric columns are
// emitted first in declared order, followed by the one-hot blocks of the
// categorical columns.
type ColumnTransformer struct {
	Columns     []string          `json:"columns"`
	Numeric     []NumericStep     `json:"numeric"`
	Categorical []CategoricalStep `json:"categorical"`

	namesOut []string
	levels   []map[string]int
	offsets  []int
}

// prepare derives the lookup tables used by Transform. It must run after
// construction or decoding and before first use.
func (ct *ColumnTransformer) prepare() error {
	known := make(map[string]bool, len(ct.Columns))
	for _, c := range ct.Columns {
		known[c] = true
	}

	ct.namesOut = ct.namesOut[:0]
	for _, step := range ct.Numeric {
		if !known[step.Column] {
			return fmt.Errorf("numeric step references unknown column %q", step.Column)
		}
		if step.Scale == 0 || math.IsNaN(step.Scale) {
			return fmt.Errorf("numeric step %q has invalid scale %v", step.Column, step.Scale)
		}
		ct.namesOut = append(ct.namesOut, numericPrefix+step.Column)
	}

	ct.levels = make([]map[string]int, len(ct.Categorical))
	ct.offsets = make([]int, len(ct.Categorical))
	for i, step := range ct.Categorical {
		if !known[step.Column] {
			return fmt.Errorf("categorical step references unknown column %q", step.Column)
		}
		ct.offsets[i] = len(ct.namesOut)
		ct.levels[i] = make(map[string]int, len(step.Categories))
		for j, level := range step.Categories {
			if _, dup := ct.levels[i][level]; dup {
				return fmt.Errorf("categorical step %q has duplicate level %q", step.Column, level)
			}
			ct.levels[i][level] = j
			ct.namesOut = append(ct.namesOut, categoricalPrefix+step.Column+"_"+level)
		}
	}
	return nil
}

// FeatureNamesOut returns the transformed column names.
func (ct *ColumnTransformer) FeatureNamesOut() []string {
	out := make([]string, len(ct.namesOut))
	copy(out, ct.namesOut)
	return out
}

// NumFeaturesOut returns the width of the transformed row.
func (ct *ColumnTransformer) NumFeaturesOut() int { return len(ct.namesOut) }

// Transform encodes one feature vector. The vector must carry exactly the
// fitted columns in the fitted order.
func (ct *ColumnTransformer) Transform(fv model.FeatureVector) ([]float64, error) {
	if err := ct.checkContract(fv); err != nil {
		return nil, err
	}

	row := make([]float64, len(ct.namesOut))
	for i, step := range ct.Numeric {
		v, _ := fv.Get(step.Column)
		x, err := numericInput(step, v)
		if err != nil {
			return nil, err
		}
		row[i] = (x - step.Mean) / step.Scale
	}

	for i, step := range ct.Categorical {
		v, _ := fv.Get(step.Column)
		if v.Kind() != model.KindString {
			return nil, fmt.Errorf("column %q: expected categorical value, got %s", step.Column, v.Kind())
		}
		level := v.Category()
		if v.IsMissing() {
			level = step.MostFrequent
		}
		if j, ok := ct.levels[i][level]; ok {
			row[ct.offsets[i]+j] = 1
		}
	}
	return row, nil
}

func numericInput(step NumericStep, v model.Value) (float64, error) {
	if !v.IsNumeric() {
		return 0, fmt.Errorf("column %q: expected numeric value, got %s", step.Column, v.Kind())
	}
	if v.IsMissing() {
		return step.Median, nil
	}
	x := v.Float()
	if math.IsNaN(x) {
		return step.Median, nil
	}
	if math.IsInf(x, 0) {
		return 0, fmt.Errorf("column %q: value is infinite", step.Column)
	}
	return x, nil
}

func (ct *ColumnTransformer) checkContract(fv model.FeatureVector) error {
	if fv.Len() != len(ct.Columns) {
		return fmt.Errorf("expected %d columns, got %d", len(ct.Columns), fv.Len())
	}
	for i, want := range ct.Columns {
		if got, _ := fv.At(i); got != want {
			return fmt.Errorf("column %d: expected %q, got %q", i, want, got)
		}
	}
	return nil
}

// FitColumnTransformer fits imputers, scalers and encoders on rows. All
// columns listed in the manifest must be present in every row.
func FitColumnTransformer(columns []model.Column, rows []model.FeatureVector) (*ColumnTransformer, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("fit preprocessor: no rows")
	}

	ct := &ColumnTransformer{}
	for _, c := range columns {
		ct.Columns = append(ct.Columns, c.Name)
	}

	for _, c := range columns {
		if c.IsCategorical() {
			continue
		}
		step, err := fitNumeric(c.Name, rows)
		if err != nil {
			return nil, err
		}
		ct.Numeric = append(ct.Numeric, step)
	}
	for _, c := range columns {
		if !c.IsCategorical() {
			continue
		}
		step, err := fitCategorical(c.Name, rows)
		if err != nil {
			return nil, err
		}
		ct.Categorical = append(ct.Categorical, step)
	}

	if err := ct.prepare(); err != nil {
		return nil, err
	}
	return ct, nil
}

func fitNumeric(column string, rows []model.FeatureVector) (NumericStep, error) {
	present := make([]float64, 0, len(rows))
	for i, fv := range rows {
		v, ok := fv.Get(column)
		if !ok {
			return NumericStep{}, fmt.Errorf("fit preprocessor: row %d has no column %q", i, column)
		}
		if !v.IsNumeric() {
			return NumericStep{}, fmt.Errorf("fit preprocessor: row %d column %q is not numeric", i, column)
		}
		if !v.IsMissing() && !math.IsNaN(v.Float()) {
			present = append(present, v.Float())
		}
	}
	if len(present) == 0 {
		return NumericStep{}, fmt.Errorf("fit preprocessor: column %q has no values", column)
	}

	median := medianOf(present)
	imputed := len(rows) - len(present)

	var sum float64
	for _, x := range present {
		sum += x
	}
	sum += float64(imputed) * median
	n := float64(len(rows))
	mean := sum / n

	var ss float64
	for _, x := range present {
		ss += (x - mean) * (x - mean)
	}
	ss += float64(imputed) * (median - mean) * (median - mean)

	scale := math.Sqrt(ss / n)
	if scale < 1e-12 {
		scale = 1
	}
	return NumericStep{Column: column, Median: median, Mean: mean, Scale: scale}, nil
}

func fitCategorical(column string, rows []model.FeatureVector) (CategoricalStep, error) {
	counts := make(map[string]int)
	for i, fv := range rows {
		v, ok := fv.Get(column)
		if !ok {
			return CategoricalStep{}, fmt.Errorf("fit preprocessor: row %d has no column %q", i, column)
		}
		if v.Kind() != model.KindString {
			return CategoricalStep{}, fmt.Errorf("fit preprocessor: row %d column %q is not categorical", i, column)
		}
		if !v.IsMissing() {
			counts[v.Category()]++
		}
	}
	if len(counts) == 0 {
		return CategoricalStep{}, fmt.Errorf("fit preprocessor: column %q has no values", column)
	}

	categories := make([]string, 0, len(counts))
	for level := range counts {
		categories = append(categories, level)
	}
	sort.Strings(categories)

	// Ties resolve to the smallest level.
	mostFrequent := categories[0]
	for _, level := range categories[1:] {
		if counts[level] > counts[mostFrequent] {
			mostFrequent = level
		}
	}

	return CategoricalStep{Column: column, MostFrequent: mostFrequent, Categories: categories}, nil
}

func medianOf(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
