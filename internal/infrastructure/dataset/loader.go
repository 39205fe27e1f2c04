// Package dataset reads training data into manifest-shaped feature vectors.
package dataset

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/vi31/anxiety-predictor/internal/domain/model"
)

// Dataset is a loaded training table.
type Dataset struct {
	Rows   []model.FeatureVector
	Target []float64
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// LoadCSV reads a CSV whose header carries the training column names and the
// target column. Extra columns are ignored. Empty cells become missing values
// and are left to the preprocessor's imputers.
func LoadCSV(r io.Reader) (*Dataset, error) {
	records, err := gocsv.CSVToMaps(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset has no rows")
	}

	cols := model.Columns()
	required := append(model.ColumnNames(), model.TargetColumn)
	for _, name := range required {
		if _, ok := records[0][name]; !ok {
			return nil, fmt.Errorf("dataset is missing column %q", name)
		}
	}

	names := model.ColumnNames()
	ds := &Dataset{
		Rows:   make([]model.FeatureVector, 0, len(records)),
		Target: make([]float64, 0, len(records)),
	}
	for i, rec := range records {
		// Line numbers count the header.
		line := i + 2

		values := make([]model.Value, len(cols))
		for j, c := range cols {
			v, err := parseCell(c, rec[c.Name])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			values[j] = v
		}

		target, err := parseTarget(rec[model.TargetColumn])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		fv, err := model.NewFeatureVector(names, values)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ds.Rows = append(ds.Rows, fv)
		ds.Target = append(ds.Target, target)
	}
	return ds, nil
}

// LoadFile opens path and loads it with LoadCSV.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return LoadCSV(f)
}

func parseCell(c model.Column, raw string) (model.Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.MissingValue(c.Type.Kind()), nil
	}

	switch c.Type {
	case model.TypeCategorical:
		return model.StringValue(raw), nil
	case model.TypeFloat:
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.Value{}, fmt.Errorf("column %q: %q is not a number", c.Name, raw)
		}
		return model.FloatValue(x), nil
	default:
		if n, err := strconv.Atoi(raw); err == nil {
			return model.IntValue(n), nil
		}
		// Exported frames often write integer columns as 7.0.
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil || x != math.Trunc(x) || math.IsInf(x, 0) {
			return model.Value{}, fmt.Errorf("column %q: %q is not an integer", c.Name, raw)
		}
		return model.IntValue(int(x)), nil
	}
}

func parseTarget(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("target %q is empty", model.TargetColumn)
	}
	y, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("target %q: %q is not a finite number", model.TargetColumn, raw)
	}
	return y, nil
}
