package payload

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vi31/anxiety-predictor/internal/domain/failure"
	"github.com/vi31/anxiety-predictor/internal/domain/model"
	"github.com/vi31/anxiety-predictor/pkg/testutil"
)

func TestInput_FieldsMatchManifest(t *testing.T) {
	typ := reflect.TypeOf(Input{})
	var names []string
	for i := 0; i < typ.NumField(); i++ {
		name, _, _ := strings.Cut(typ.Field(i).Tag.Get("json"), ",")
		names = append(names, name)
	}

	var want []string
	for _, c := range model.Columns() {
		want = append(want, c.APIName)
	}
	assert.Equal(t, want, names)
}

func TestDecode(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		rec, err := Decode(strings.NewReader(testutil.ScenarioJSON))
		require.NoError(t, err)
		assert.Equal(t, testutil.ScenarioInput(), rec)
	})

	t.Run("zero values are present values", func(t *testing.T) {
		body := strings.Replace(testutil.ScenarioJSON, `"Gender": "Female"`, `"Gender": ""`, 1)
		rec, err := Decode(strings.NewReader(body))
		require.NoError(t, err)
		assert.Equal(t, "", rec.Gender)
		assert.Equal(t, 0, rec.TherapySessionsPerMonth)
	})
}

func TestDecode_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
		wantType  string
	}{
		{
			name:      "missing field",
			body:      strings.Replace(testutil.ScenarioJSON, `"Age": 25,`, "", 1),
			wantField: "Age",
			wantType:  "missing",
		},
		{
			name:      "null field",
			body:      strings.Replace(testutil.ScenarioJSON, `"Age": 25,`, `"Age": null,`, 1),
			wantField: "Age",
			wantType:  "missing",
		},
		{
			name:      "wrong type",
			body:      strings.Replace(testutil.ScenarioJSON, `"Stress_Level_1_10": 5`, `"Stress_Level_1_10": "high"`, 1),
			wantField: "Stress_Level_1_10",
			wantType:  "type_error",
		},
		{
			name:      "fractional integer",
			body:      strings.Replace(testutil.ScenarioJSON, `"Heart_Rate_bpm": 72`, `"Heart_Rate_bpm": 72.5`, 1),
			wantField: "Heart_Rate_bpm",
			wantType:  "type_error",
		},
		{
			name:      "unknown field",
			body:      strings.Replace(testutil.ScenarioJSON, `"Age": 25,`, `"Age": 25, "Mood": "ok",`, 1),
			wantField: "Mood",
			wantType:  "extra_forbidden",
		},
		{
			name:     "not json",
			body:     "{",
			wantType: "json_invalid",
		},
		{
			name:     "empty body",
			body:     "",
			wantType: "missing",
		},
		{
			name:     "array body",
			body:     "[]",
			wantType: "type_error",
		},
		{
			name:     "trailing data",
			body:     testutil.ScenarioJSON + "{}",
			wantType: "json_invalid",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.body))
			require.Error(t, err)
			assert.True(t, failure.Is(err, failure.KindValidation))

			var errs Errors
			require.ErrorAs(t, err, &errs)
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.wantType, errs[0].Type)
			if tt.wantField != "" {
				assert.Equal(t, []string{"body", tt.wantField}, errs[0].Loc)
				fe, ok := failure.As(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantField, fe.Field)
			}
		})
	}
}

func TestInput_ValidateListsEveryMissingField(t *testing.T) {
	var in Input
	errs := in.Validate()
	assert.Len(t, errs, len(model.Columns()))
	assert.Equal(t, []string{"body", "Age"}, errs[0].Loc)
}
