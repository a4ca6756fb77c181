package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-videotube/internal/model"
	"go-videotube/pkg/apierror"
)

type mockChannelStore struct {
	mock.Mock
}

func (m *mockChannelStore) Profile(ctx context.Context, username string, viewerID string) (model.ChannelProfile, error) {
	args := m.Called(ctx, username, viewerID)
	return args.Get(0).(model.ChannelProfile), args.Error(1)
}

func (m *mockChannelStore) Subscribe(ctx context.Context, subscriberID string, channelID string) error {
	return m.Called(ctx, subscriberID, channelID).Error(0)
}

func (m *mockChannelStore) Unsubscribe(ctx context.Context, subscriberID string, channelID string) error {
	return m.Called(ctx, subscriberID, channelID).Error(0)
}

func TestChannelService_Profile(t *testing.T) {
	ctx := context.Background()
	viewer := model.User{ID: "viewer-id", Username: "alice"}

	t.Run("blank username", func(t *testing.T) {
		svc := NewChannelService(new(mockChannelStore))
		_, err := svc.Profile(ctx, viewer, "  ")
		assert.True(t, apierror.HasCode(err, apierror.CodeBadRequest))
	})

	t.Run("not found", func(t *testing.T) {
		channels := new(mockChannelStore)
		channels.On("Profile", ctx, "ghost", viewer.ID).Return(model.ChannelProfile{}, model.ErrChannelNotFound)

		_, err := NewChannelService(channels).Profile(ctx, viewer, "ghost")
		assert.True(t, apierror.HasCode(err, apierror.CodeNotFound))
	})

	t.Run("store failure", func(t *testing.T) {
		channels := new(mockChannelStore)
		channels.On("Profile", ctx, "bob", viewer.ID).Return(model.ChannelProfile{}, errors.New("timeout"))

		_, err := NewChannelService(channels).Profile(ctx, viewer, "bob")
		assert.True(t, apierror.HasCode(err, apierror.CodeInternal))
	})

	t.Run("found", func(t *testing.T) {
		channels := new(mockChannelStore)
		want := model.ChannelProfile{ID: "bob-id", Username: "bob", SubscriberCount: 3, IsSubscribed: true}
		channels.On("Profile", ctx, "bob", viewer.ID).Return(want, nil)

		got, err := NewChannelService(channels).Profile(ctx, viewer, " bob ")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestChannelService_Subscribe(t *testing.T) {
	ctx := context.Background()
	viewer := model.User{ID: "viewer-id", Username: "alice"}

	t.Run("subscribe returns refreshed profile", func(t *testing.T) {
		channels := new(mockChannelStore)
		before := model.ChannelProfile{ID: "bob-id", Username: "bob"}
		after := model.ChannelProfile{ID: "bob-id", Username: "bob", SubscriberCount: 1, IsSubscribed: true}
		channels.On("Profile", ctx, "bob", viewer.ID).Return(before, nil).Once()
		channels.On("Subscribe", ctx, viewer.ID, "bob-id").Return(nil).Once()
		channels.On("Profile", ctx, "bob", viewer.ID).Return(after, nil).Once()

		got, err := NewChannelService(channels).Subscribe(ctx, viewer, "bob")
		require.NoError(t, err)
		assert.Equal(t, after, got)
		channels.AssertExpectations(t)
	})

	t.Run("own channel is rejected", func(t *testing.T) {
		channels := new(mockChannelStore)
		channels.On("Profile", ctx, "alice", viewer.ID).Return(model.ChannelProfile{ID: viewer.ID, Username: "alice"}, nil)

		_, err := NewChannelService(channels).Subscribe(ctx, viewer, "alice")
		assert.True(t, apierror.HasCode(err, apierror.CodeBadRequest))
		channels.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unsubscribe", func(t *testing.T) {
		channels := new(mockChannelStore)
		profile := model.ChannelProfile{ID: "bob-id", Username: "bob"}
		channels.On("Profile", ctx, "bob", viewer.ID).Return(profile, nil)
		channels.On("Unsubscribe", ctx, viewer.ID, "bob-id").Return(nil).Once()

		_, err := NewChannelService(channels).Unsubscribe(ctx, viewer, "bob")
		require.NoError(t, err)
		channels.AssertExpectations(t)
	})
}
