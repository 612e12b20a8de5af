package api

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/bookthickness/pkg/errors"
)

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type errorBody struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

// statusFor maps an error code to its HTTP status.
func statusFor(err error) int {
	if errors.IsValidation(err) {
		return http.StatusBadRequest
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeResourceExhausted:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTimeout, errors.ErrCodeCanceled:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.GetCode(err) == "" {
		err = errors.Interrupted(err, "request interrupted")
	}
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "request_id", RequestID(r.Context()))
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{
		Error:     errorDetail{Code: code, Message: msg},
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
