package model

import "fmt"

// TargetColumn is the training-time name of the regression target.
const TargetColumn = "Anxiety Level (1-10)"

// ColumnType is the declared type of a schema column.
type ColumnType int

const (
	TypeInt ColumnType = iota + 1
	TypeFloat
	TypeCategorical
)

// Kind returns the Value kind a column of this type carries.
func (t ColumnType) Kind() ValueKind {
	switch t {
	case TypeInt:
		return KindInt
	case TypeFloat:
		return KindFloat
	default:
		return KindString
	}
}

// Column is one entry of the feature manifest. The manifest is the only
// place that pairs API field names with training column names; the feature
// mapper, the dataset loader, the fitting procedure and the artifact loader
// all read it.
type Column struct {
	get     func(*InputRecord) Value
	set     func(*InputRecord, Value)
	APIName string
	Name    string
	Type    ColumnType
}

// IsCategorical reports whether the column is one-hot encoded.
func (c Column) IsCategorical() bool { return c.Type == TypeCategorical }

// Get reads the column's field from the record.
func (c Column) Get(r InputRecord) Value { return c.get(&r) }

// Set writes v into the column's field. The value kind must match the
// declared column type and must not be missing.
func (c Column) Set(r *InputRecord, v Value) error {
	if v.IsMissing() {
		return fmt.Errorf("column %q: value is missing", c.Name)
	}
	if v.Kind() != c.Type.Kind() {
		return fmt.Errorf("column %q: expected %s value, got %s", c.Name, c.Type.Kind(), v.Kind())
	}
	c.set(r, v)
	return nil
}

func intColumn(api, name string, field func(*InputRecord) *int) Column {
	return Column{
		APIName: api,
		Name:    name,
		Type:    TypeInt,
		get:     func(r *InputRecord) Value { return IntValue(*field(r)) },
		set:     func(r *InputRecord, v Value) { *field(r) = v.Int() },
	}
}

func floatColumn(api, name string, field func(*InputRecord) *float64) Column {
	return Column{
		APIName: api,
		Name:    name,
		Type:    TypeFloat,
		get:     func(r *InputRecord) Value { return FloatValue(*field(r)) },
		set:     func(r *InputRecord, v Value) { *field(r) = v.Float() },
	}
}

func categoryColumn(api, name string, field func(*InputRecord) *string) Column {
	return Column{
		APIName: api,
		Name:    name,
		Type:    TypeCategorical,
		get:     func(r *InputRecord) Value { return StringValue(*field(r)) },
		set:     func(r *InputRecord, v Value) { *field(r) = v.Category() },
	}
}

// columns is in training order.
var columns = []Column{
	intColumn("Age", "Age", func(r *InputRecord) *int { return &r.Age }),
	categoryColumn("Gender", "Gender", func(r *InputRecord) *string { return &r.Gender }),
	categoryColumn("Occupation", "Occupation", func(r *InputRecord) *string { return &r.Occupation }),
	floatColumn("Sleep_Hours", "Sleep Hours", func(r *InputRecord) *float64 { return &r.SleepHours }),
	floatColumn("Physical_Activity_hrs_per_week", "Physical Activity (hrs/week)", func(r *InputRecord) *float64 { return &r.PhysicalActivityHrsPerWeek }),
	floatColumn("Caffeine_Intake_mg_per_day", "Caffeine Intake (mg/day)", func(r *InputRecord) *float64 { return &r.CaffeineIntakeMgPerDay }),
	floatColumn("Alcohol_Consumption_drinks_per_week", "Alcohol Consumption (drinks/week)", func(r *InputRecord) *float64 { return &r.AlcoholConsumptionDrinksPerWeek }),
	categoryColumn("Smoking", "Smoking", func(r *InputRecord) *string { return &r.Smoking }),
	categoryColumn("Family_History_of_Anxiety", "Family History of Anxiety", func(r *InputRecord) *string { return &r.FamilyHistoryOfAnxiety }),
	intColumn("Stress_Level_1_10", "Stress Level (1-10)", func(r *InputRecord) *int { return &r.StressLevel }),
	intColumn("Heart_Rate_bpm", "Heart Rate (bpm)", func(r *InputRecord) *int { return &r.HeartRateBPM }),
	intColumn("Breathing_Rate_breaths_per_min", "Breathing Rate (breaths/min)", func(r *InputRecord) *int { return &r.BreathingRateBreathsPerMin }),
	intColumn("Sweating_Level_1_5", "Sweating Level (1-5)", func(r *InputRecord) *int { return &r.SweatingLevel }),
	categoryColumn("Dizziness", "Dizziness", func(r *InputRecord) *string { return &r.Dizziness }),
	categoryColumn("Medication", "Medication", func(r *InputRecord) *string { return &r.Medication }),
	intColumn("Therapy_Sessions_per_month", "Therapy Sessions (per month)", func(r *InputRecord) *int { return &r.TherapySessionsPerMonth }),
	categoryColumn("Recent_Major_Life_Event", "Recent Major Life Event", func(r *InputRecord) *string { return &r.RecentMajorLifeEvent }),
	intColumn("Diet_Quality_1_10", "Diet Quality (1-10)", func(r *InputRecord) *int { return &r.DietQuality }),
}

var (
	byAPIName = make(map[string]int, len(columns))
	byName    = make(map[string]int, len(columns))
)

func init() {
	for i, c := range columns {
		if _, dup := byAPIName[c.APIName]; dup {
			panic("model: duplicate API field " + c.APIName)
		}
		if _, dup := byName[c.Name]; dup {
			panic("model: duplicate column " + c.Name)
		}
		byAPIName[c.APIName] = i
		byName[c.Name] = i
	}
}

// Columns returns the manifest in training order.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// ColumnNames returns the training column names in order.
func ColumnNames() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

// NumericColumns returns the training names of numeric columns in order.
func NumericColumns() []string {
	return filterNames(func(c Column) bool { return !c.IsCategorical() })
}

// CategoricalColumns returns the training names of categorical columns in order.
func CategoricalColumns() []string {
	return filterNames(Column.IsCategorical)
}

func filterNames(keep func(Column) bool) []string {
	var names []string
	for _, c := range columns {
		if keep(c) {
			names = append(names, c.Name)
		}
	}
	return names
}

// ColumnByAPIName looks up a column by its API field name.
func ColumnByAPIName(api string) (Column, bool) {
	i, ok := byAPIName[api]
	if !ok {
		return Column{}, false
	}
	return columns[i], true
}

// ColumnByName looks up a column by its training column name.
func ColumnByName(name string) (Column, bool) {
	i, ok := byName[name]
	if !ok {
		return Column{}, false
	}
	return columns[i], true
}

// TrainingName maps an API field name to its training column name.
func TrainingName(api string) (string, bool) {
	c, ok := ColumnByAPIName(api)
	return c.Name, ok
}

// APIName maps a training column name back to its API field name.
func APIName(name string) (string, bool) {
	c, ok := ColumnByName(name)
	return c.APIName, ok
}
