package usecase

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vi31/anxiety-predictor/internal/domain/model"
	"github.com/vi31/anxiety-predictor/internal/domain/port"
)

var tracer = otel.Tracer("github.com/vi31/anxiety-predictor/internal/application/usecase")

// recorder persists served predictions and publishes their events. Its
// failures are logged and never reach the caller: a served score stands
// whether or not it was recorded.
type recorder struct {
	repo      port.PredictionRepository
	publisher port.EventPublisher
	logger    *slog.Logger
}

func (r recorder) record(ctx context.Context, rec *model.PredictionRecord) {
	if err := r.repo.Save(ctx, rec); err != nil {
		r.logger.Warn("failed to save prediction",
			"prediction_id", rec.ID(),
			"kind", rec.Kind(),
			"error", err,
		)
	}

	events := rec.DomainEvents()
	if len(events) == 0 {
		return
	}
	if err := r.publisher.Publish(ctx, events...); err != nil {
		r.logger.Warn("failed to publish events",
			"prediction_id", rec.ID(),
			"count", len(events),
			"error", err,
		)
	}
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
