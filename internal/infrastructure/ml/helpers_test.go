package ml

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vi31/anxiety-predictor/internal/domain/model"
)

// --- Helpers ---

var (
	genders     = []string{"Female", "Male", "Other"}
	occupations = []string{"Artist", "Doctor", "Engineer", "Teacher"}
	yesNo       = []string{"No", "Yes"}
)

func sampleRecord() model.InputRecord {
	return model.InputRecord{
		Age:                             29,
		Gender:                          "Female",
		Occupation:                      "Artist",
		SleepHours:                      6,
		PhysicalActivityHrsPerWeek:      2.7,
		CaffeineIntakeMgPerDay:          181,
		AlcoholConsumptionDrinksPerWeek: 10,
		Smoking:                         "Yes",
		FamilyHistoryOfAnxiety:          "No",
		StressLevel:                     10,
		HeartRateBPM:                    114,
		BreathingRateBreathsPerMin:      14,
		SweatingLevel:                   4,
		Dizziness:                       "No",
		Medication:                      "Yes",
		TherapySessionsPerMonth:         1,
		RecentMajorLifeEvent:            "Yes",
		DietQuality:                     7,
	}
}

func vectorOf(t testing.TB, r model.InputRecord) model.FeatureVector {
	t.Helper()
	cols := model.Columns()
	names := make([]string, len(cols))
	values := make([]model.Value, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		values[i] = c.Get(r)
	}
	fv, err := model.NewFeatureVector(names, values)
	require.NoError(t, err)
	return fv
}

func unpack(fv model.FeatureVector) ([]string, []model.Value) {
	names := make([]string, fv.Len())
	values := make([]model.Value, fv.Len())
	for i := range names {
		names[i], values[i] = fv.At(i)
	}
	return names, values
}

// syntheticDataset draws n records whose target depends mostly on stress,
// sleep and family history.
func syntheticDataset(t testing.TB, n int, seed int64) ([]model.FeatureVector, []float64) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	rows := make([]model.FeatureVector, n)
	y := make([]float64, n)
	for i := range rows {
		r := model.InputRecord{
			Age:                             18 + rng.Intn(50),
			Gender:                          genders[rng.Intn(len(genders))],
			Occupation:                      occupations[rng.Intn(len(occupations))],
			SleepHours:                      4 + rng.Float64()*5,
			PhysicalActivityHrsPerWeek:      rng.Float64() * 10,
			CaffeineIntakeMgPerDay:          float64(rng.Intn(500)),
			AlcoholConsumptionDrinksPerWeek: float64(rng.Intn(20)),
			Smoking:                         yesNo[rng.Intn(2)],
			FamilyHistoryOfAnxiety:          yesNo[rng.Intn(2)],
			StressLevel:                     1 + rng.Intn(10),
			HeartRateBPM:                    60 + rng.Intn(60),
			BreathingRateBreathsPerMin:      12 + rng.Intn(12),
			SweatingLevel:                   1 + rng.Intn(5),
			Dizziness:                       yesNo[rng.Intn(2)],
			Medication:                      yesNo[rng.Intn(2)],
			TherapySessionsPerMonth:         rng.Intn(6),
			RecentMajorLifeEvent:            yesNo[rng.Intn(2)],
			DietQuality:                     1 + rng.Intn(10),
		}
		target := 0.6*float64(r.StressLevel) - 0.5*(r.SleepHours-6.5)
		if r.FamilyHistoryOfAnxiety == "Yes" {
			target += 1.5
		}
		target += rng.NormFloat64() * 0.3
		rows[i] = vectorOf(t, r)
		y[i] = target
	}
	return rows, y
}

func smallTrainConfig() TrainConfig {
	cfg := DefaultTrainConfig()
	cfg.Forest.NumTrees = 8
	cfg.Forest.MaxDepth = 5
	cfg.BackgroundSize = 12
	cfg.Version = "test"
	return cfg
}

func trainSmall(t testing.TB) *Pipeline {
	t.Helper()
	rows, y := syntheticDataset(t, 160, 7)
	p, err := Train(context.Background(), rows, y, smallTrainConfig())
	require.NoError(t, err)
	return p
}
