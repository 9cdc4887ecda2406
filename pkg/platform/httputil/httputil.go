// Package httputil maps domain errors onto HTTP responses so every handler
// reports failures the same way.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "dealdesk/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders a domain error as a JSON error response. Internal errors
// omit the detail string so infrastructure specifics never leak to clients;
// client-caused errors carry the message as error_description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := statusFor(code)

	body := map[string]string{"error": string(code)}
	if status < http.StatusInternalServerError {
		body["error_description"] = err.Error()
	}
	WriteJSON(w, status, body)
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound, dErrors.CodeBlobContainerNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeValidation, dErrors.CodeInvariantViolation,
		dErrors.CodeInvalidInput, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeRemoteStorageSave, dErrors.CodeRemoteStorageDownload,
		dErrors.CodeRemoteStorageDelete:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
