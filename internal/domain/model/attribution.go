package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Contribution is the attribution of one transformed feature.
type Contribution struct {
	Feature string
	Value   float64
}

// Contributions is an ordered attribution mapping. It marshals to a JSON
// object whose keys keep the slice order.
type Contributions []Contribution

// Map returns the contributions keyed by feature name.
func (cs Contributions) Map() map[string]float64 {
	out := make(map[string]float64, len(cs))
	for _, c := range cs {
		out[c.Feature] = c.Value
	}
	return out
}

// Sum adds all contribution values.
func (cs Contributions) Sum() float64 {
	var sum float64
	for _, c := range cs {
		sum += c.Value
	}
	return sum
}

// Features returns the feature names in order.
func (cs Contributions) Features() []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Feature
	}
	return names
}

// MarshalJSON writes the contributions as an ordered JSON object.
func (cs Contributions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range cs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Feature)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.Value)
		if err != nil {
			return nil, fmt.Errorf("contribution %q: %w", c.Feature, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an ordered JSON object back into contributions.
func (cs *Contributions) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("contributions: expected object, got %v", tok)
	}

	out := Contributions{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("contributions: expected key, got %v", tok)
		}
		var v float64
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("contribution %q: %w", key, err)
		}
		out = append(out, Contribution{Feature: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*cs = out
	return nil
}

// AttributionResult pairs a prediction with the per-feature contributions
// explaining it. Contributions are expressed over the transformed feature
// space the regressor consumes, not over the raw input fields.
type AttributionResult struct {
	Contributions Contributions
	Prediction    float64
	ExpectedValue float64
}
