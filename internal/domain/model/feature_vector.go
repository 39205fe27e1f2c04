package model

import "fmt"

// FeatureVector is an ordered mapping from training column name to value.
// It is immutable once built.
type FeatureVector struct {
	index  map[string]int
	names  []string
	values []Value
}

// NewFeatureVector builds a vector from parallel name and value slices.
func NewFeatureVector(names []string, values []Value) (FeatureVector, error) {
	if len(names) != len(values) {
		return FeatureVector{}, fmt.Errorf("feature vector: %d names for %d values", len(names), len(values))
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		if _, dup := index[name]; dup {
			return FeatureVector{}, fmt.Errorf("feature vector: duplicate column %q", name)
		}
		index[name] = i
	}

	fv := FeatureVector{
		index:  index,
		names:  make([]string, len(names)),
		values: make([]Value, len(values)),
	}
	copy(fv.names, names)
	copy(fv.values, values)
	return fv, nil
}

// Len returns the number of columns.
func (fv FeatureVector) Len() int { return len(fv.names) }

// Names returns the column names in order.
func (fv FeatureVector) Names() []string {
	out := make([]string, len(fv.names))
	copy(out, fv.names)
	return out
}

// At returns the i-th column name and value.
func (fv FeatureVector) At(i int) (string, Value) {
	return fv.names[i], fv.values[i]
}

// Get returns the value stored under the given column name.
func (fv FeatureVector) Get(name string) (Value, bool) {
	i, ok := fv.index[name]
	if !ok {
		return Value{}, false
	}
	return fv.values[i], true
}
