package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vi31/anxiety-predictor/internal/domain/failure"
	"github.com/vi31/anxiety-predictor/internal/presentation/payload"
)

// ErrorResponse is the body of a failed request other than validation.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
	Stage  string `json:"stage,omitempty"`
}

// ValidationResponse is the body of a 422 response.
type ValidationResponse struct {
	Detail payload.Errors `json:"detail"`
}

func (h *AnxietyHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	fe, ok := failure.As(err)
	if !ok {
		h.logger.Error("unclassified request failure",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		h.metrics.RecordFailure(r.Context(), "internal_error", "")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: err.Error(), Error: "internal_error"})
		return
	}

	h.metrics.RecordFailure(r.Context(), fe.Kind.String(), fe.Stage)

	switch fe.Kind {
	case failure.KindValidation:
		var fields payload.Errors
		if !errors.As(fe, &fields) {
			fields = payload.Errors{{Loc: []string{"body", fe.Field}, Msg: fe.Detail(), Type: "value_error"}}
		}
		writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{Detail: fields})
	case failure.KindNotFound:
		writeJSON(w, http.StatusNotFound, ErrorResponse{Detail: fe.Detail(), Error: fe.Kind.String()})
	default:
		h.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("kind", fe.Kind.String()),
			slog.String("stage", fe.Stage),
			slog.String("error", fe.Detail()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Detail: fe.Detail(),
			Error:  fe.Kind.String(),
			Stage:  fe.Stage,
		})
	}
}
