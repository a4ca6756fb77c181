package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go-videotube/internal/model"
	"go-videotube/pkg/apierror"
)

type channelStore interface {
	Profile(ctx context.Context, username string, viewerID string) (model.ChannelProfile, error)
	Subscribe(ctx context.Context, subscriberID string, channelID string) error
	Unsubscribe(ctx context.Context, subscriberID string, channelID string) error
}

type ChannelService struct {
	channels channelStore
}

func NewChannelService(channels channelStore) *ChannelService {
	return &ChannelService{channels: channels}
}

// Profile returns the channel of username with counts relative to viewer.
func (s *ChannelService) Profile(ctx context.Context, viewer model.User, username string) (model.ChannelProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.ChannelProfile{}, apierror.BadRequest("Username is missing")
	}

	profile, err := s.channels.Profile(ctx, username, viewer.ID)
	if err != nil {
		if errors.Is(err, model.ErrChannelNotFound) {
			return model.ChannelProfile{}, apierror.NotFound("Channel not found")
		}
		return model.ChannelProfile{}, apierror.Internal(err, "Something went wrong while fetching the channel")
	}

	return profile, nil
}

func (s *ChannelService) Subscribe(ctx context.Context, viewer model.User, username string) (model.ChannelProfile, error) {
	return s.toggle(ctx, viewer, username, true)
}

func (s *ChannelService) Unsubscribe(ctx context.Context, viewer model.User, username string) (model.ChannelProfile, error) {
	return s.toggle(ctx, viewer, username, false)
}

func (s *ChannelService) toggle(ctx context.Context, viewer model.User, username string, subscribe bool) (model.ChannelProfile, error) {
	profile, err := s.Profile(ctx, viewer, username)
	if err != nil {
		return model.ChannelProfile{}, err
	}
	if profile.ID == viewer.ID {
		return model.ChannelProfile{}, apierror.BadRequest("You cannot subscribe to your own channel")
	}

	if subscribe {
		err = s.channels.Subscribe(ctx, viewer.ID, profile.ID)
	} else {
		err = s.channels.Unsubscribe(ctx, viewer.ID, profile.ID)
	}
	if err != nil {
		return model.ChannelProfile{}, apierror.Internal(err, "Something went wrong while updating the subscription")
	}

	slog.InfoContext(ctx, "subscription changed", "subscriber_id", viewer.ID, "channel_id", profile.ID, "subscribed", subscribe)
	return s.Profile(ctx, viewer, profile.Username)
}
