package grpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vi31/anxiety-predictor/internal/application/dto"
	"github.com/vi31/anxiety-predictor/internal/domain/failure"
	"github.com/vi31/anxiety-predictor/internal/domain/model"
	"github.com/vi31/anxiety-predictor/internal/presentation/payload"
	"github.com/vi31/anxiety-predictor/pkg/observability"
)

// Predictor serves predictions.
type Predictor interface {
	Execute(ctx context.Context, req dto.PredictRequest) (dto.PredictResponse, error)
}

// Explainer serves explanations.
type Explainer interface {
	Execute(ctx context.Context, req dto.ExplainRequest) (dto.ExplainResponse, error)
}

// PredictionGetter retrieves one history entry.
type PredictionGetter interface {
	Execute(ctx context.Context, req dto.GetPredictionRequest) (dto.PredictionResponse, error)
}

// Compile-time assertion that AnxietyServiceHandler implements AnxietyServiceServer.
var _ AnxietyServiceServer = (*AnxietyServiceHandler)(nil)

// AnxietyServiceHandler implements the gRPC AnxietyServiceServer interface.
type AnxietyServiceHandler struct {
	UnimplementedAnxietyServiceServer
	predict Predictor
	explain Explainer
	get     PredictionGetter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewAnxietyServiceHandler creates a new gRPC handler. metrics may be nil.
func NewAnxietyServiceHandler(
	predict Predictor,
	explain Explainer,
	get PredictionGetter,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *AnxietyServiceHandler {
	return &AnxietyServiceHandler{
		predict: predict,
		explain: explain,
		get:     get,
		metrics: metrics,
		logger:  logger,
	}
}

// Proto-aligned request/response message types.

// PredictRequest represents the proto PredictRequest message.
type PredictRequest struct {
	Input *payload.Input `json:"input"`
}

// PredictResponse represents the proto PredictResponse message.
type PredictResponse struct {
	PredictionID          string  `json:"prediction_id"`
	PredictedAnxietyLevel float64 `json:"predicted_anxiety_level"`
}

// ExplainRequest represents the proto ExplainRequest message.
type ExplainRequest struct {
	Input *payload.Input `json:"input"`
}

// ExplainResponse represents the proto ExplainResponse message.
type ExplainResponse struct {
	PredictionID          string              `json:"prediction_id"`
	Contributions         model.Contributions `json:"shap_feature_contributions"`
	PredictedAnxietyLevel float64             `json:"predicted_anxiety_level"`
	ExpectedValue         float64             `json:"expected_value"`
}

// GetPredictionRequest represents the proto GetPredictionRequest message.
type GetPredictionRequest struct {
	ID string `json:"id"`
}

// PredictionMsg represents the proto Prediction message.
type PredictionMsg struct {
	ID                    string              `json:"id"`
	Kind                  string              `json:"kind"`
	Input                 model.InputRecord   `json:"input"`
	Contributions         model.Contributions `json:"shap_feature_contributions,omitempty"`
	Baseline              string              `json:"baseline,omitempty"`
	ModelVersion          string              `json:"model_version"`
	CreatedAt             string              `json:"created_at"`
	PredictedAnxietyLevel float64             `json:"predicted_anxiety_level"`
}

// GetPredictionResponse represents the proto GetPredictionResponse message.
type GetPredictionResponse struct {
	Prediction *PredictionMsg `json:"prediction"`
}

// Predict handles a prediction request.
func (h *AnxietyServiceHandler) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	if req == nil || req.Input == nil {
		return nil, status.Error(codes.InvalidArgument, "input is required")
	}

	input, err := req.Input.Record()
	if err != nil {
		return nil, h.toStatus(ctx, "Predict", err)
	}

	result, err := h.predict.Execute(ctx, dto.PredictRequest{Input: input})
	if err != nil {
		return nil, h.toStatus(ctx, "Predict", err)
	}

	return &PredictResponse{
		PredictionID:          result.PredictionID.String(),
		PredictedAnxietyLevel: result.PredictedAnxietyLevel,
	}, nil
}

// Explain handles an explanation request.
func (h *AnxietyServiceHandler) Explain(ctx context.Context, req *ExplainRequest) (*ExplainResponse, error) {
	if req == nil || req.Input == nil {
		return nil, status.Error(codes.InvalidArgument, "input is required")
	}

	input, err := req.Input.Record()
	if err != nil {
		return nil, h.toStatus(ctx, "Explain", err)
	}

	result, err := h.explain.Execute(ctx, dto.ExplainRequest{Input: input})
	if err != nil {
		return nil, h.toStatus(ctx, "Explain", err)
	}

	return &ExplainResponse{
		PredictionID:          result.PredictionID.String(),
		Contributions:         result.Contributions,
		PredictedAnxietyLevel: result.PredictedAnxietyLevel,
		ExpectedValue:         result.ExpectedValue,
	}, nil
}

// GetPrediction handles a history lookup.
func (h *AnxietyServiceHandler) GetPrediction(ctx context.Context, req *GetPredictionRequest) (*GetPredictionResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid id: %v", err)
	}

	result, err := h.get.Execute(ctx, dto.GetPredictionRequest{PredictionID: id})
	if err != nil {
		return nil, h.toStatus(ctx, "GetPrediction", err)
	}

	return &GetPredictionResponse{
		Prediction: &PredictionMsg{
			ID:                    result.ID.String(),
			Kind:                  result.Kind,
			Input:                 result.Input,
			Contributions:         result.Contributions,
			Baseline:              result.Baseline,
			ModelVersion:          result.ModelVersion,
			CreatedAt:             result.CreatedAt.Format(time.RFC3339Nano),
			PredictedAnxietyLevel: result.PredictedAnxietyLevel,
		},
	}, nil
}

// toStatus maps a use case error to a gRPC status carrying its detail.
func (h *AnxietyServiceHandler) toStatus(ctx context.Context, method string, err error) error {
	fe, ok := failure.As(err)
	if !ok {
		h.logger.Error("unclassified request failure",
			slog.String("method", method),
			slog.String("error", err.Error()),
		)
		h.metrics.RecordFailure(ctx, "internal_error", "")
		return status.Error(codes.Internal, err.Error())
	}

	h.metrics.RecordFailure(ctx, fe.Kind.String(), fe.Stage)

	switch fe.Kind {
	case failure.KindValidation:
		return status.Error(codes.InvalidArgument, fe.Detail())
	case failure.KindNotFound:
		return status.Error(codes.NotFound, fe.Detail())
	default:
		h.logger.Error("request failed",
			slog.String("method", method),
			slog.String("kind", fe.Kind.String()),
			slog.String("stage", fe.Stage),
			slog.String("error", fe.Detail()),
		)
		return status.Errorf(codes.Internal, "%s (%s stage): %s", fe.Kind, fe.Stage, fe.Detail())
	}
}
