package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-videotube/internal/model"
)

type channelService interface {
	Profile(ctx context.Context, viewer model.User, username string) (model.ChannelProfile, error)
	Subscribe(ctx context.Context, viewer model.User, username string) (model.ChannelProfile, error)
	Unsubscribe(ctx context.Context, viewer model.User, username string) (model.ChannelProfile, error)
}

type ChannelHandler struct {
	service channelService
}

func NewChannelHandler(service channelService) *ChannelHandler {
	return &ChannelHandler{service: service}
}

func (h *ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Profile, "User channel fetched successfully")
}

func (h *ChannelHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Subscribe, "Subscribed successfully")
}

func (h *ChannelHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Unsubscribe, "Unsubscribed successfully")
}

type channelAction func(ctx context.Context, viewer model.User, username string) (model.ChannelProfile, error)

func (h *ChannelHandler) respond(w http.ResponseWriter, r *http.Request, action channelAction, message string) {
	viewer, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	profile, err := action(r.Context(), viewer, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, profile, message)
}
