package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-videotube/internal/model"
	"go-videotube/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.NewAPIResponse(status, data, message))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"
	var details []string

	var apiErr *apierror.APIError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		message = apiErr.Message
		details = apiErr.Errors
		if status >= http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		}
	case errors.As(err, &maxBytesErr):
		status = http.StatusRequestEntityTooLarge
		message = "Request body too large"
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		message = "User does not exist"
	case errors.Is(err, model.ErrUserAlreadyExists):
		status = http.StatusConflict
		message = "User with email or username already exists"
	case errors.Is(err, model.ErrChannelNotFound):
		status = http.StatusNotFound
		message = "Channel not found"
	default:
		slog.ErrorContext(r.Context(), "unhandled error in writeError", "path", r.URL.Path, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.NewAPIErrorResponse(status, message, details))
}
