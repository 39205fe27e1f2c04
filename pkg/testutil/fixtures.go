package testutil

import (
	"github.com/vi31/anxiety-predictor/internal/domain/model"
)

// ScenarioInput is a complete, valid self-report used across test packages.
func ScenarioInput() model.InputRecord {
	return model.InputRecord{
		Age:                             25,
		Gender:                          "Female",
		Occupation:                      "Student",
		SleepHours:                      7.5,
		PhysicalActivityHrsPerWeek:      3,
		CaffeineIntakeMgPerDay:          100,
		AlcoholConsumptionDrinksPerWeek: 1,
		Smoking:                         "No",
		FamilyHistoryOfAnxiety:          "No",
		StressLevel:                     5,
		HeartRateBPM:                    72,
		BreathingRateBreathsPerMin:      16,
		SweatingLevel:                   2,
		Dizziness:                       "No",
		Medication:                      "No",
		TherapySessionsPerMonth:         0,
		RecentMajorLifeEvent:            "No",
		DietQuality:                     7,
	}
}

// ScenarioJSON is ScenarioInput as the public API receives it.
const ScenarioJSON = `{
	"Age": 25,
	"Gender": "Female",
	"Occupation": "Student",
	"Sleep_Hours": 7.5,
	"Physical_Activity_hrs_per_week": 3,
	"Caffeine_Intake_mg_per_day": 100,
	"Alcohol_Consumption_drinks_per_week": 1,
	"Smoking": "No",
	"Family_History_of_Anxiety": "No",
	"Stress_Level_1_10": 5,
	"Heart_Rate_bpm": 72,
	"Breathing_Rate_breaths_per_min": 16,
	"Sweating_Level_1_5": 2,
	"Dizziness": "No",
	"Medication": "No",
	"Therapy_Sessions_per_month": 0,
	"Recent_Major_Life_Event": "No",
	"Diet_Quality_1_10": 7
}`
