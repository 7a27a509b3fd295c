package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchday-preview/internal/usecase"
)

// Responses follow the Google JSON style guide: {"apiVersion","data"} on
// success and {"apiVersion","error"} on failure.
const (
	apiVersion  = "2.0"
	errorDomain = "matchday-preview"
)

type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorClass struct {
	target error
	code   int
	status string
	reason string
}

// Guard refusals (ErrConflict) surface as 400 so the admin UI shows the
// message next to the action that was refused.
var errorClasses = []errorClass{
	{usecase.ErrInvalidInput, http.StatusBadRequest, "INVALID_ARGUMENT", "invalidInput"},
	{usecase.ErrConflict, http.StatusBadRequest, "FAILED_PRECONDITION", "conflict"},
	{usecase.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "notFound"},
	{usecase.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHENTICATED", "unauthorized"},
	{usecase.ErrForbidden, http.StatusForbidden, "PERMISSION_DENIED", "forbidden"},
	{usecase.ErrDependencyUnavailable, http.StatusServiceUnavailable, "UNAVAILABLE", "dependencyUnavailable"},
}

var internalClass = errorClass{code: http.StatusInternalServerError, status: "INTERNAL", reason: "internalError"}

func classify(err error) errorClass {
	for _, c := range errorClasses {
		if errors.Is(err, c.target) {
			return c
		}
	}
	return internalClass
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(_ context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{APIVersion: apiVersion, Data: data})
}

// writeError renders err in the error envelope. Unclassified errors are
// replaced with a generic message; callers log them before writing.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	c := classify(err)
	msg := "internal server error"
	if c.code < http.StatusInternalServerError {
		msg = err.Error()
	}
	writeClass(ctx, w, c, msg)
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeClass(ctx, w, internalClass, "internal server error")
}

func writeClass(_ context.Context, w http.ResponseWriter, c errorClass, msg string) {
	writeJSON(w, c.code, envelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    c.code,
			Message: msg,
			Status:  c.status,
			Errors:  []errorItem{{Domain: errorDomain, Reason: c.reason, Message: msg}},
		},
	})
}
