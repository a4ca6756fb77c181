package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go-videotube/internal/model"
)

func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	body, _ := json.Marshal(model.NewAPIErrorResponse(http.StatusServiceUnavailable, "Request timed out", nil))
	message := string(body)

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
