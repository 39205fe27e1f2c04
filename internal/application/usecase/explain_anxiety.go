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

// ExplainAnxiety is the use case for scoring one record and attributing the
// score to the transformed features.
type ExplainAnxiety struct {
	mapper   *service.FeatureMapper
	engine   *service.AttributionEngine
	pipeline port.Pipeline
	recorder recorder
}

// NewExplainAnxiety creates a new ExplainAnxiety use case.
func NewExplainAnxiety(
	mapper *service.FeatureMapper,
	engine *service.AttributionEngine,
	pipeline port.Pipeline,
	repo port.PredictionRepository,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *ExplainAnxiety {
	return &ExplainAnxiety{
		mapper:   mapper,
		engine:   engine,
		pipeline: pipeline,
		recorder: recorder{repo: repo, publisher: publisher, logger: logger},
	}
}

// Execute explains the record's prediction. Any failure on this path is an
// explanation failure naming the stage.
func (uc *ExplainAnxiety) Execute(ctx context.Context, req dto.ExplainRequest) (dto.ExplainResponse, error) {
	ctx, span := tracer.Start(ctx, "ExplainAnxiety")
	defer span.End()
	span.SetAttributes(attribute.String("anxiety.baseline", string(uc.engine.Baseline())))

	fv := uc.mapper.Map(req.Input)

	result, err := uc.engine.Explain(fv, uc.pipeline)
	if err != nil {
		fail(span, err)
		return dto.ExplainResponse{}, fmt.Errorf("failed to explain: %w", err)
	}
	span.SetAttributes(
		attribute.Float64("anxiety.score", result.Prediction),
		attribute.Int("anxiety.contributions", len(result.Contributions)),
	)

	resp := dto.ExplainResponse{
		Contributions:         result.Contributions,
		PredictedAnxietyLevel: result.Prediction,
		ExpectedValue:         result.ExpectedValue,
	}

	rec, err := model.NewPredictionRecord(
		model.RequestExplain, req.Input, result.Prediction, result.Contributions,
		string(uc.engine.Baseline()), uc.pipeline.Version(),
	)
	if err != nil {
		uc.recorder.logger.Warn("failed to create prediction record", "error", err)
		return resp, nil
	}
	uc.recorder.record(ctx, rec)

	resp.PredictionID = rec.ID()
	return resp, nil
}
