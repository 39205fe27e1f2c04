package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vi31/anxiety-predictor/internal/domain/model"
)

const header = "Age,Gender,Occupation,Sleep Hours,Physical Activity (hrs/week),Caffeine Intake (mg/day)," +
	"Alcohol Consumption (drinks/week),Smoking,Family History of Anxiety,Stress Level (1-10),Heart Rate (bpm)," +
	"Breathing Rate (breaths/min),Sweating Level (1-5),Dizziness,Medication,Therapy Sessions (per month)," +
	"Recent Major Life Event,Diet Quality (1-10),Anxiety Level (1-10)"

func csvOf(lines ...string) *strings.Reader {
	return strings.NewReader(header + "\n" + strings.Join(lines, "\n") + "\n")
}

func TestLoadCSV(t *testing.T) {
	ds, err := LoadCSV(csvOf(
		`29,Female,Artist,6.0,2.7,181,10,Yes,No,10,114,14,4,No,Yes,1,Yes,7,5.0`,
		`46,Other,Nurse,6.2,5.7,200,8,Yes,Yes,1,62,23,2,Yes,No,2,No,8,3.0`,
	))
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, []float64{5, 3}, ds.Target)

	fv := ds.Rows[0]
	assert.Equal(t, model.ColumnNames(), fv.Names())

	age, ok := fv.Get("Age")
	require.True(t, ok)
	assert.Equal(t, model.KindInt, age.Kind())
	assert.Equal(t, 29, age.Int())

	sleep, _ := fv.Get("Sleep Hours")
	assert.Equal(t, model.KindFloat, sleep.Kind())
	assert.Equal(t, 6.0, sleep.Float())

	occ, _ := fv.Get("Occupation")
	assert.Equal(t, "Artist", occ.Category())
}

func TestLoadCSV_MissingCells(t *testing.T) {
	ds, err := LoadCSV(csvOf(
		`,Female,,6.0,,181,10,Yes,No,10,114,14,4,No,Yes,1,Yes,7,5`,
	))
	require.NoError(t, err)

	age, _ := ds.Rows[0].Get("Age")
	assert.True(t, age.IsMissing())
	assert.Equal(t, model.KindInt, age.Kind())

	occ, _ := ds.Rows[0].Get("Occupation")
	assert.True(t, occ.IsMissing())
	assert.Equal(t, model.KindString, occ.Kind())

	activity, _ := ds.Rows[0].Get("Physical Activity (hrs/week)")
	assert.True(t, activity.IsMissing())
}

func TestLoadCSV_IntegralFloatInIntColumn(t *testing.T) {
	ds, err := LoadCSV(csvOf(
		`29.0,Female,Artist,6,2.7,181,10,Yes,No,10.0,114,14,4,No,Yes,1,Yes,7,5`,
	))
	require.NoError(t, err)

	stress, _ := ds.Rows[0].Get("Stress Level (1-10)")
	assert.Equal(t, 10, stress.Int())
}

func TestLoadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "missing column",
			input:   "Age,Gender\n29,Female\n",
			wantErr: "missing column",
		},
		{
			name:    "fractional integer",
			input:   header + "\n29.5,Female,Artist,6,2.7,181,10,Yes,No,10,114,14,4,No,Yes,1,Yes,7,5\n",
			wantErr: "line 2",
		},
		{
			name:    "non numeric float",
			input:   header + "\n29,Female,Artist,lots,2.7,181,10,Yes,No,10,114,14,4,No,Yes,1,Yes,7,5\n",
			wantErr: "not a number",
		},
		{
			name:    "empty target",
			input:   header + "\n29,Female,Artist,6,2.7,181,10,Yes,No,10,114,14,4,No,Yes,1,Yes,7,\n",
			wantErr: "target",
		},
		{
			name:    "no rows",
			input:   header + "\n",
			wantErr: "no rows",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
