package ml

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/vi31/anxiety-predictor/internal/domain/model"
)

// FormatVersion identifies the artifact layout written by Save.
const FormatVersion = 1

// artifact is the on-disk form of a trained pipeline.
type artifact struct {
	FormatVersion int                `json:"format_version"`
	Columns       []string           `json:"columns"`
	Preprocessor  *ColumnTransformer `json:"preprocessor"`
	Forest        *Forest            `json:"forest"`
	Background    [][]float64        `json:"background,omitempty"`
	Metadata      Metadata           `json:"metadata"`
}

// Save writes p as JSON to w.
func Save(w io.Writer, p *Pipeline) error {
	a := artifact{
		FormatVersion: FormatVersion,
		Columns:       model.ColumnNames(),
		Preprocessor:  p.preprocessor,
		Forest:        p.regressor,
		Background:    p.background,
		Metadata:      p.meta,
	}
	if err := json.NewEncoder(w).Encode(a); err != nil {
		return fmt.Errorf("failed to encode model artifact: %w", err)
	}
	return nil
}

// SaveFile writes p to path, replacing any existing file.
func SaveFile(path string, p *Pipeline) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create model artifact: %w", err)
	}
	if err := Save(f, p); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write model artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to install model artifact: %w", err)
	}
	return nil
}

// Load decodes and validates an artifact. The artifact's column list must
// match the input manifest exactly.
func Load(r io.Reader) (*Pipeline, error) {
	var a artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}
	if a.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("unsupported artifact format version %d", a.FormatVersion)
	}
	if want := model.ColumnNames(); !slices.Equal(a.Columns, want) {
		return nil, fmt.Errorf("artifact columns do not match the input manifest")
	}
	if a.Preprocessor == nil || a.Forest == nil {
		return nil, fmt.Errorf("artifact is missing a pipeline stage")
	}
	if !slices.Equal(a.Preprocessor.Columns, a.Columns) {
		return nil, fmt.Errorf("preprocessor columns do not match artifact columns")
	}
	if err := a.Preprocessor.prepare(); err != nil {
		return nil, fmt.Errorf("invalid preprocessor: %w", err)
	}
	if a.Forest.NumFeatures != a.Preprocessor.NumFeaturesOut() {
		return nil, fmt.Errorf("forest expects %d features, preprocessor emits %d",
			a.Forest.NumFeatures, a.Preprocessor.NumFeaturesOut())
	}
	if err := a.Forest.validate(); err != nil {
		return nil, fmt.Errorf("invalid forest: %w", err)
	}
	for i, row := range a.Background {
		if len(row) != a.Forest.NumFeatures {
			return nil, fmt.Errorf("background row %d has %d features, expected %d", i, len(row), a.Forest.NumFeatures)
		}
	}
	return NewPipeline(a.Preprocessor, a.Forest, a.Background, a.Metadata), nil
}

// LoadFile opens and loads the artifact at path.
func LoadFile(path string) (*Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model artifact: %w", err)
	}
	defer f.Close()
	return Load(f)
}
