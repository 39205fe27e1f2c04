// Package payload decodes and validates the self-report body shared by the
// REST and gRPC transports.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vi31/anxiety-predictor/internal/domain/failure"
	"github.com/vi31/anxiety-predictor/internal/domain/model"
)

// Input mirrors model.InputRecord with pointer fields so that an absent
// field can be told apart from a zero value.
type Input struct {
	Age                             *int     `json:"Age"                                 validate:"required"`
	Gender                          *string  `json:"Gender"                              validate:"required"`
	Occupation                      *string  `json:"Occupation"                          validate:"required"`
	SleepHours                      *float64 `json:"Sleep_Hours"                         validate:"required"`
	PhysicalActivityHrsPerWeek      *float64 `json:"Physical_Activity_hrs_per_week"      validate:"required"`
	CaffeineIntakeMgPerDay          *float64 `json:"Caffeine_Intake_mg_per_day"          validate:"required"`
	AlcoholConsumptionDrinksPerWeek *float64 `json:"Alcohol_Consumption_drinks_per_week" validate:"required"`
	Smoking                         *string  `json:"Smoking"                             validate:"required"`
	FamilyHistoryOfAnxiety          *string  `json:"Family_History_of_Anxiety"           validate:"required"`
	StressLevel                     *int     `json:"Stress_Level_1_10"                   validate:"required"`
	HeartRateBPM                    *int     `json:"Heart_Rate_bpm"                      validate:"required"`
	BreathingRateBreathsPerMin      *int     `json:"Breathing_Rate_breaths_per_min"      validate:"required"`
	SweatingLevel                   *int     `json:"Sweating_Level_1_5"                  validate:"required"`
	Dizziness                       *string  `json:"Dizziness"                           validate:"required"`
	Medication                      *string  `json:"Medication"                          validate:"required"`
	TherapySessionsPerMonth         *int     `json:"Therapy_Sessions_per_month"          validate:"required"`
	RecentMajorLifeEvent            *string  `json:"Recent_Major_Life_Event"             validate:"required"`
	DietQuality                     *int     `json:"Diet_Quality_1_10"                   validate:"required"`
}

// FieldError describes one offending field.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// Errors is a non-empty list of field errors.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fmt.Sprintf("%s: %s", strings.Join(fe.Loc, "."), fe.Msg)
	}
	return strings.Join(parts, "; ")
}

// Failure wraps the list in a validation failure naming the first field.
func (e Errors) Failure() *failure.Error {
	field := ""
	if len(e) > 0 && len(e[0].Loc) > 0 {
		field = e[0].Loc[len(e[0].Loc)-1]
	}
	return failure.Validation(field, e)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode reads one JSON object from r, rejecting unknown fields, type
// mismatches and trailing data. A malformed body is reported as a
// validation failure.
func Decode(r io.Reader) (model.InputRecord, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var in Input
	if err := dec.Decode(&in); err != nil {
		return model.InputRecord{}, decodeErrors(err).Failure()
	}
	if dec.More() {
		return model.InputRecord{}, Errors{{Loc: []string{"body"}, Msg: "unexpected data after JSON object", Type: "json_invalid"}}.Failure()
	}
	return in.Record()
}

// Unmarshal is Decode for an in-memory document.
func Unmarshal(data []byte) (model.InputRecord, error) {
	return Decode(bytes.NewReader(data))
}

// Validate checks every field is present.
func (in *Input) Validate() Errors {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}}
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Loc:  []string{"body", fe.Field()},
			Msg:  "field required",
			Type: "missing",
		})
	}
	return out
}

// Record validates the payload and converts it to the domain record.
func (in *Input) Record() (model.InputRecord, error) {
	if errs := in.Validate(); len(errs) > 0 {
		return model.InputRecord{}, errs.Failure()
	}
	return model.InputRecord{
		Age:                             *in.Age,
		Gender:                          *in.Gender,
		Occupation:                      *in.Occupation,
		SleepHours:                      *in.SleepHours,
		PhysicalActivityHrsPerWeek:      *in.PhysicalActivityHrsPerWeek,
		CaffeineIntakeMgPerDay:          *in.CaffeineIntakeMgPerDay,
		AlcoholConsumptionDrinksPerWeek: *in.AlcoholConsumptionDrinksPerWeek,
		Smoking:                         *in.Smoking,
		FamilyHistoryOfAnxiety:          *in.FamilyHistoryOfAnxiety,
		StressLevel:                     *in.StressLevel,
		HeartRateBPM:                    *in.HeartRateBPM,
		BreathingRateBreathsPerMin:      *in.BreathingRateBreathsPerMin,
		SweatingLevel:                   *in.SweatingLevel,
		Dizziness:                       *in.Dizziness,
		Medication:                      *in.Medication,
		TherapySessionsPerMonth:         *in.TherapySessionsPerMonth,
		RecentMajorLifeEvent:            *in.RecentMajorLifeEvent,
		DietQuality:                     *in.DietQuality,
	}, nil
}

func decodeErrors(err error) Errors {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		loc := []string{"body"}
		if typeErr.Field != "" {
			loc = append(loc, typeErr.Field)
		}
		return Errors{{
			Loc:  loc,
			Msg:  fmt.Sprintf("expected %s, got %s", typeName(typeErr.Type), typeErr.Value),
			Type: "type_error",
		}}
	case errors.As(err, &syntaxErr):
		return Errors{{Loc: []string{"body"}, Msg: syntaxErr.Error(), Type: "json_invalid"}}
	case errors.Is(err, io.EOF):
		return Errors{{Loc: []string{"body"}, Msg: "request body is empty", Type: "missing"}}
	}

	// encoding/json reports unknown fields only as text.
	if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return Errors{{Loc: []string{"body", strings.Trim(name, `"`)}, Msg: "extra fields not permitted", Type: "extra_forbidden"}}
	}
	return Errors{{Loc: []string{"body"}, Msg: err.Error(), Type: "json_invalid"}}
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int64:
		return "integer"
	case reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.String()
	}
}
