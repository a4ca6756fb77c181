package handler

import (
	"context"
	"net/http"
	"time"

	"go-videotube/pkg/apierror"
)

type pinger interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	db pinger
}

func NewHealthHandler(db pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Health(ctx); err != nil {
		writeError(w, r, apierror.Unavailable(err, "Database unreachable"))
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, "OK")
}
