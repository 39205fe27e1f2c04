package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/vi31/anxiety-predictor/internal/domain/model"
)

// PredictRequest is the input DTO for the PredictAnxiety use case. The
// record has already passed transport validation.
type PredictRequest struct {
	Input model.InputRecord
}

// ExplainRequest is the input DTO for the ExplainAnxiety use case.
type ExplainRequest struct {
	Input model.InputRecord
}

// PredictResponse is the output DTO of a prediction.
type PredictResponse struct {
	PredictedAnxietyLevel float64   `json:"predicted_anxiety_level"`
	PredictionID          uuid.UUID `json:"-"`
}

// ExplainResponse is the output DTO of an explanation. Contributions keep
// the preprocessor's output order when encoded.
type ExplainResponse struct {
	Contributions         model.Contributions `json:"shap_feature_contributions"`
	PredictedAnxietyLevel float64             `json:"predicted_anxiety_level"`
	ExpectedValue         float64             `json:"-"`
	PredictionID          uuid.UUID           `json:"-"`
}

// GetPredictionRequest is the input DTO for retrieving a history entry.
type GetPredictionRequest struct {
	PredictionID uuid.UUID `json:"prediction_id"`
}

// ListPredictionsRequest is the input DTO for listing recent history.
type ListPredictionsRequest struct {
	Limit int `json:"limit"`
}

// PredictionResponse is the output DTO for a history entry.
type PredictionResponse struct {
	CreatedAt             time.Time           `json:"created_at"`
	Contributions         model.Contributions `json:"shap_feature_contributions,omitempty"`
	Input                 model.InputRecord   `json:"input"`
	ID                    uuid.UUID           `json:"id"`
	Kind                  string              `json:"kind"`
	Baseline              string              `json:"baseline,omitempty"`
	ModelVersion          string              `json:"model_version"`
	PredictedAnxietyLevel float64             `json:"predicted_anxiety_level"`
}

// ListPredictionsResponse wraps a page of history entries.
type ListPredictionsResponse struct {
	Predictions []PredictionResponse `json:"predictions"`
}

// FromRecord maps a domain record to the response DTO.
func FromRecord(r *model.PredictionRecord) PredictionResponse {
	return PredictionResponse{
		ID:                    r.ID(),
		Kind:                  string(r.Kind()),
		Input:                 r.Input(),
		PredictedAnxietyLevel: r.Score(),
		Contributions:         r.Contributions(),
		Baseline:              r.Baseline(),
		ModelVersion:          r.ModelVersion(),
		CreatedAt:             r.CreatedAt(),
	}
}
