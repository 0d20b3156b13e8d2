package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

const maxBodyBytes = 1 << 20

const (
	msgServerError      = "Server Error"
	msgInvalidBody      = "Invalid request body"
	msgValidationFailed = "Validation failed"
	msgRouteNotFound    = "Route not found"
)

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type validationResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Errors  []services.FieldError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Success: status < http.StatusBadRequest, Message: message})
}

// writeValidation reports err as a 400 if it carries field errors.
func writeValidation(w http.ResponseWriter, err error) bool {
	var verr services.ValidationErrors
	if !errors.As(err, &verr) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, validationResponse{
		Success: false,
		Message: msgValidationFailed,
		Errors:  verr,
	})
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(target)
	if errors.Is(err, io.EOF) {
		// an empty body decodes as an empty object and is left to validation
		return nil
	}
	return err
}
