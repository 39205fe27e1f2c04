package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/vi31/anxiety-predictor/internal/application/dto"
	"github.com/vi31/anxiety-predictor/internal/presentation/payload"
	"github.com/vi31/anxiety-predictor/pkg/observability"
)

// maxBodyBytes bounds request bodies; a self-report is well under 1 KiB.
const maxBodyBytes = 64 << 10

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

// PredictionLister lists recent history entries.
type PredictionLister interface {
	Execute(ctx context.Context, req dto.ListPredictionsRequest) (dto.ListPredictionsResponse, error)
}

// AnxietyHandler serves the prediction API over HTTP.
type AnxietyHandler struct {
	predict Predictor
	explain Explainer
	get     PredictionGetter
	list    PredictionLister
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewAnxietyHandler creates a new HTTP handler. metrics may be nil.
func NewAnxietyHandler(
	predict Predictor,
	explain Explainer,
	get PredictionGetter,
	list PredictionLister,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *AnxietyHandler {
	return &AnxietyHandler{
		predict: predict,
		explain: explain,
		get:     get,
		list:    list,
		metrics: metrics,
		logger:  logger,
	}
}

// RegisterRoutes registers the API endpoints on the provided ServeMux.
func (h *AnxietyHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /predict", h.Predict)
	mux.HandleFunc("POST /explain", h.Explain)
	mux.HandleFunc("GET /predictions/{id}", h.GetPrediction)
	mux.HandleFunc("GET /predictions", h.ListPredictions)
}

// Predict handles POST /predict.
func (h *AnxietyHandler) Predict(w http.ResponseWriter, r *http.Request) {
	input, err := payload.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.predict.Execute(r.Context(), dto.PredictRequest{Input: input})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set(headerPredictionID, resp.PredictionID.String())
	writeJSON(w, http.StatusOK, resp)
}

// Explain handles POST /explain.
func (h *AnxietyHandler) Explain(w http.ResponseWriter, r *http.Request) {
	input, err := payload.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.explain.Execute(r.Context(), dto.ExplainRequest{Input: input})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set(headerPredictionID, resp.PredictionID.String())
	w.Header().Set(headerExpectedValue, strconv.FormatFloat(resp.ExpectedValue, 'g', -1, 64))
	writeJSON(w, http.StatusOK, resp)
}

// GetPrediction handles GET /predictions/{id}.
func (h *AnxietyHandler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, paramError("path", "id", fmt.Sprintf("invalid prediction id: %v", err)))
		return
	}

	resp, err := h.get.Execute(r.Context(), dto.GetPredictionRequest{PredictionID: id})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListPredictions handles GET /predictions?limit=N.
func (h *AnxietyHandler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeError(w, r, paramError("query", "limit", "limit must be a positive integer"))
			return
		}
		limit = n
	}

	resp, err := h.list.Execute(r.Context(), dto.ListPredictionsRequest{Limit: limit})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

const (
	headerPredictionID  = "X-Prediction-ID"
	headerExpectedValue = "X-Expected-Value"
)

func paramError(where, name, msg string) error {
	return payload.Errors{{Loc: []string{where, name}, Msg: msg, Type: "value_error"}}.Failure()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
