package http

import (
	"encoding/json"
	"net/http"

	apperrors "barbershop/pkg/errors"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationResponse struct {
	Errors []apperrors.FieldError `json:"errors"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError renders err as either {"errors": [...]} for field validation
// failures or {"error": "..."} for everything else. Errors that are not
// AppErrors never leak their text.
func WriteError(w http.ResponseWriter, err error) error {
	if !apperrors.IsAppError(err) {
		return WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}

	appErr := apperrors.AsAppError(err)
	statusCode := appErr.StatusCode()
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}

	if appErr.Code == apperrors.CodeValidation && len(appErr.Fields) > 0 {
		return WriteJSON(w, statusCode, ValidationResponse{Errors: appErr.Fields})
	}
	return WriteJSON(w, statusCode, ErrorResponse{Error: appErr.Message})
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, data)
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, data)
}
