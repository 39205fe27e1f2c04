package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vi31/anxiety-predictor/internal/application/dto"
	"github.com/vi31/anxiety-predictor/internal/domain/model"
	"github.com/vi31/anxiety-predictor/internal/domain/port"
	"github.com/vi31/anxiety-predictor/internal/domain/service"
)

// PredictAnxiety is the use case for scoring one validated input record.
type PredictAnxiety struct {
	mapper       *service.FeatureMapper
	engine       *service.InferenceEngine
	recorder     recorder
	modelVersion string
}

// NewPredictAnxiety creates a new PredictAnxiety use case.
func NewPredictAnxiety(
	mapper *service.FeatureMapper,
	engine *service.InferenceEngine,
	repo port.PredictionRepository,
	publisher port.EventPublisher,
	modelVersion string,
	logger *slog.Logger,
) *PredictAnxiety {
	return &PredictAnxiety{
		mapper:       mapper,
		engine:       engine,
		recorder:     recorder{repo: repo, publisher: publisher, logger: logger},
		modelVersion: modelVersion,
	}
}

// Execute maps the record, scores it and rounds the score to two decimals.
// A failure is returned as an inference failure naming the stage.
func (uc *PredictAnxiety) Execute(ctx context.Context, req dto.PredictRequest) (dto.PredictResponse, error) {
	ctx, span := tracer.Start(ctx, "PredictAnxiety")
	defer span.End()

	fv := uc.mapper.Map(req.Input)

	raw, err := uc.engine.Predict(fv)
	if err != nil {
		fail(span, err)
		return dto.PredictResponse{}, fmt.Errorf("failed to predict: %w", err)
	}
	score := service.RoundPrediction(raw)
	span.SetAttributes(attribute.Float64("anxiety.score", score))

	rec, err := model.NewPredictionRecord(model.RequestPredict, req.Input, score, nil, "", uc.modelVersion)
	if err != nil {
		uc.recorder.logger.Warn("failed to create prediction record", "error", err)
		return dto.PredictResponse{PredictedAnxietyLevel: score}, nil
	}
	uc.recorder.record(ctx, rec)

	return dto.PredictResponse{PredictedAnxietyLevel: score, PredictionID: rec.ID()}, nil
}
