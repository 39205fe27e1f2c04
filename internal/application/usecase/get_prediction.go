package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/vi31/anxiety-predictor/internal/application/dto"
	"github.com/vi31/anxiety-predictor/internal/domain/failure"
	"github.com/vi31/anxiety-predictor/internal/domain/port"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// GetPrediction is the use case for retrieving a served prediction.
type GetPrediction struct {
	repo port.PredictionRepository
}

// NewGetPrediction creates a new GetPrediction use case.
func NewGetPrediction(repo port.PredictionRepository) *GetPrediction {
	return &GetPrediction{repo: repo}
}

// Execute retrieves a history entry by ID.
func (uc *GetPrediction) Execute(ctx context.Context, req dto.GetPredictionRequest) (dto.PredictionResponse, error) {
	rec, err := uc.repo.FindByID(ctx, req.PredictionID)
	if errors.Is(err, port.ErrPredictionNotFound) {
		return dto.PredictionResponse{}, failure.NotFound(fmt.Errorf("prediction %s not found", req.PredictionID))
	}
	if err != nil {
		return dto.PredictionResponse{}, fmt.Errorf("failed to find prediction: %w", err)
	}
	return dto.FromRecord(rec), nil
}

// ListPredictions is the use case for listing recent history, newest first.
type ListPredictions struct {
	repo port.PredictionRepository
}

// NewListPredictions creates a new ListPredictions use case.
func NewListPredictions(repo port.PredictionRepository) *ListPredictions {
	return &ListPredictions{repo: repo}
}

// Execute lists up to req.Limit entries. Non-positive limits use the
// default and large ones are capped.
func (uc *ListPredictions) Execute(ctx context.Context, req dto.ListPredictionsRequest) (dto.ListPredictionsResponse, error) {
	limit := req.Limit
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	records, err := uc.repo.ListRecent(ctx, limit)
	if err != nil {
		return dto.ListPredictionsResponse{}, fmt.Errorf("failed to list predictions: %w", err)
	}

	resp := dto.ListPredictionsResponse{Predictions: make([]dto.PredictionResponse, 0, len(records))}
	for _, rec := range records {
		resp.Predictions = append(resp.Predictions, dto.FromRecord(rec))
	}
	return resp, nil
}
