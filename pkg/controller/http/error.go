package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/engenharia-apr/aprd/pkg/usecase"
	"github.com/engenharia-apr/aprd/pkg/utils/errutil"
)

// errorBody is the stable error payload: a machine code, a user-facing
// message, and the offending field when one is known
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, usecase.ErrNotEditable):
		return http.StatusBadRequest, "apr_not_editable"
	case errors.Is(err, usecase.ErrInvalidTransition):
		return http.StatusBadRequest, "invalid_status_transition"
	case errors.Is(err, usecase.ErrRiskScoreInvalid):
		return http.StatusBadRequest, "risk_score_invalid"
	case errors.Is(err, usecase.ErrResponsibleMismatch):
		return http.StatusBadRequest, "responsible_mismatch"
	case errors.Is(err, usecase.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, usecase.ErrNotFinal):
		return http.StatusBadRequest, "apr_not_exportable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// respondError maps a use case error onto the HTTP surface. Store
// faults stay out of the business taxonomy: anything unrecognized is an
// internal error with the detail kept in the log, not the response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)

	body := errorBody{Code: code, Message: err.Error()}
	var ge *goerr.Error
	if errors.As(err, &ge) {
		if field, ok := ge.Values()[usecase.FieldKey].(string); ok {
			body.Field = field
		}
	}
	if status == http.StatusInternalServerError {
		_ = errutil.Handle(r.Context(), err, "request failed")
		body.Message = "internal error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		_ = errutil.Handle(r.Context(), err, "failed to write error response")
	}
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		_ = errutil.Handle(r.Context(), err, "failed to write response")
	}
}
