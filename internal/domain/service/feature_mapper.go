package service

import (
	"fmt"

	"github.com/vi31/anxiety-predictor/internal/domain/model"
)

// FeatureMapper renames API records into the feature vectors the trained
// pipeline was fit on. It reads the shared column manifest, so the column
// list and order always match what the fitting procedure used.
type FeatureMapper struct {
	columns []model.Column
}

// NewFeatureMapper creates a mapper over the model's column manifest.
func NewFeatureMapper() *FeatureMapper {
	return &FeatureMapper{columns: model.Columns()}
}

// Map converts a record into a feature vector. Values keep their declared
// type; no coercion happens here.
func (m *FeatureMapper) Map(r model.InputRecord) model.FeatureVector {
	names := make([]string, len(m.columns))
	values := make([]model.Value, len(m.columns))
	for i, c := range m.columns {
		names[i] = c.Name
		values[i] = c.Get(r)
	}

	fv, err := model.NewFeatureVector(names, values)
	if err != nil {
		// The manifest rejects duplicate names at init, so this cannot happen.
		panic(err)
	}
	return fv
}

// Unmap converts a feature vector back into a record. Every manifest column
// must be present with a value of its declared type.
func (m *FeatureMapper) Unmap(fv model.FeatureVector) (model.InputRecord, error) {
	if fv.Len() != len(m.columns) {
		return model.InputRecord{}, fmt.Errorf("expected %d columns, got %d", len(m.columns), fv.Len())
	}

	var r model.InputRecord
	for _, c := range m.columns {
		v, ok := fv.Get(c.Name)
		if !ok {
			return model.InputRecord{}, fmt.Errorf("column %q is missing", c.Name)
		}
		if err := c.Set(&r, v); err != nil {
			return model.InputRecord{}, err
		}
	}
	return r, nil
}
