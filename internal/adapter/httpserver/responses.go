// Package httpserver contains HTTP handlers and middleware.
//
// It provides REST API endpoints for sermon submission, analysis,
// recommendations, and report downloads. The package follows clean
// architecture principles and provides a clear separation between HTTP
// concerns and business logic.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
	"github.com/fairyhunter13/sermon-evaluator/internal/usecase"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, _ *http.Request, err error, details interface{}) {
	code := http.StatusInternalServerError
	codeStr := "INTERNAL"

	// Validation failures carry the full field list in details.
	var ferr *usecase.FieldErrors
	if errors.As(err, &ferr) && details == nil {
		details = ferr.Fields
	}

	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		code = http.StatusBadRequest
		codeStr = "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrUnauthorized):
		code = http.StatusUnauthorized
		codeStr = "UNAUTHORIZED"
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
		codeStr = "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		code = http.StatusConflict
		codeStr = "CONFLICT"
	case errors.Is(err, domain.ErrRateLimited):
		code = http.StatusTooManyRequests
		codeStr = "RATE_LIMITED"
	case errors.Is(err, domain.ErrQuotaExceeded):
		code = http.StatusServiceUnavailable
		codeStr = "AI_QUOTA_EXCEEDED"
	case errors.Is(err, domain.ErrCredentialRejected):
		code = http.StatusServiceUnavailable
		codeStr = "AI_CREDENTIAL_REJECTED"
	case errors.Is(err, domain.ErrInvalidAnalysis):
		code = http.StatusUnprocessableEntity
		codeStr = "ANALYSIS_INVALID"
	case errors.Is(err, domain.ErrMalformedResponse):
		code = http.StatusBadGateway
		codeStr = "ANALYSIS_MALFORMED"
	}
	writeJSON(w, code, errorEnvelope{Error: apiError{Code: codeStr, Message: err.Error(), Details: details}})
}
