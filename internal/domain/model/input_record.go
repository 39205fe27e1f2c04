package model

// InputRecord is the eighteen-field self-report submitted for scoring.
// Field names follow the public API; the training-time column names live in
// the schema table (see Columns).
type InputRecord struct {
	Age                             int     `json:"Age"`
	Gender                          string  `json:"Gender"`
	Occupation                      string  `json:"Occupation"`
	SleepHours                      float64 `json:"Sleep_Hours"`
	PhysicalActivityHrsPerWeek      float64 `json:"Physical_Activity_hrs_per_week"`
	CaffeineIntakeMgPerDay          float64 `json:"Caffeine_Intake_mg_per_day"`
	AlcoholConsumptionDrinksPerWeek float64 `json:"Alcohol_Consumption_drinks_per_week"`
	Smoking                         string  `json:"Smoking"`
	FamilyHistoryOfAnxiety          string  `json:"Family_History_of_Anxiety"`
	StressLevel                     int     `json:"Stress_Level_1_10"`
	HeartRateBPM                    int     `json:"Heart_Rate_bpm"`
	BreathingRateBreathsPerMin      int     `json:"Breathing_Rate_breaths_per_min"`
	SweatingLevel                   int     `json:"Sweating_Level_1_5"`
	Dizziness                       string  `json:"Dizziness"`
	Medication                      string  `json:"Medication"`
	TherapySessionsPerMonth         int     `json:"Therapy_Sessions_per_month"`
	RecentMajorLifeEvent            string  `json:"Recent_Major_Life_Event"`
	DietQuality                     int     `json:"Diet_Quality_1_10"`
}
