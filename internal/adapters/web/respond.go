package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"inventory-api/internal/core"

	"github.com/rs/zerolog/log"
)

// apiResponse is the envelope every endpoint returns: success plus either
// data/pagination or message/details.
type apiResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	Data       any               `json:"data,omitempty"`
	Pagination *core.Pagination  `json:"pagination,omitempty"`
	Details    []core.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeData writes a success envelope with status 200.
func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: data})
}

// writePage writes a success envelope carrying pagination.
func writePage(w http.ResponseWriter, data any, p core.Pagination) {
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: data, Pagination: &p})
}

// writeCreated writes a success envelope with status 201.
func writeCreated(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusCreated, apiResponse{Success: true, Message: message, Data: data})
}

// writeFailure maps a core error to its HTTP status and failure envelope.
// Unclassified errors are logged with the request ID and surfaced as a
// generic 500, never leaking internal detail.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound     *core.NotFoundError
		insufficient *core.InsufficientStockError
		duplicate    *core.DuplicateSKUError
		validation   *core.ValidationError
	)

	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, apiResponse{Success: false, Message: notFound.Error()})
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: insufficient.Error()})
	case errors.As(err, &duplicate):
		writeJSON(w, http.StatusConflict, apiResponse{Success: false, Message: duplicate.Error()})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, apiResponse{
			Success: false,
			Message: validation.Message,
			Details: validation.Details,
		})
	default:
		log.Error().Err(err).
			Str("request_id", requestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("unhandled error")
		writeJSON(w, http.StatusInternalServerError, apiResponse{
			Success: false,
			Message: "An internal error occurred. Please try again later.",
		})
	}
}

// decodeJSON decodes the request body into v. On failure it writes the
// error response and returns false: 413 when the body exceeds the limit
// set by RequestBodyLimit, 400 for everything else.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, apiResponse{
				Success: false, Message: "request body too large",
			})
			return false
		}
		writeJSON(w, http.StatusBadRequest, apiResponse{
			Success: false, Message: "invalid JSON body: " + err.Error(),
		})
		return false
	}
	return true
}
