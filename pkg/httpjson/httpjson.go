// Package httpjson carries the JSON response conventions shared by the HTTP
// controllers.
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/serrors"
)

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func Write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func Error(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	var coded *serrors.Error
	if errors.As(err, &coded) {
		resp.Code = coded.Code
		resp.Error = coded.Message
		resp.Details = coded.Details
	}
	Write(w, status, resp)
}

// ServiceError maps a service-layer error onto an HTTP status. Repositories
// surface "not found" sentinels and wrap infrastructure failures with a
// "failed to" prefix; everything else is treated as a rejected request.
func ServiceError(w http.ResponseWriter, err error) {
	var coded *serrors.Error
	switch {
	case errors.As(err, &coded) && strings.HasPrefix(coded.Code, "AUTHZ"):
		Error(w, http.StatusForbidden, err)
	case strings.Contains(err.Error(), "not found"):
		Error(w, http.StatusNotFound, err)
	case strings.Contains(err.Error(), "failed to"):
		Error(w, http.StatusInternalServerError, err)
	default:
		Error(w, http.StatusBadRequest, err)
	}
}
