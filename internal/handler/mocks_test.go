package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-videotube/internal/model"
)

type mockAccountService struct {
	mock.Mock
}

func (m *mockAccountService) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockAccountService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.LoginResult), args.Error(1)
}

func (m *mockAccountService) Logout(ctx context.Context, identity model.User) error {
	return m.Called(ctx, identity).Error(0)
}

func (m *mockAccountService) Refresh(ctx context.Context, presented string) (model.TokenPair, error) {
	args := m.Called(ctx, presented)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *mockAccountService) ChangePassword(ctx context.Context, identity model.User, req model.ChangePasswordRequest) error {
	return m.Called(ctx, identity, req).Error(0)
}

func (m *mockAccountService) CurrentUser(identity model.User) model.User {
	return m.Called(identity).Get(0).(model.User)
}

func (m *mockAccountService) UpdateAccount(ctx context.Context, identity model.User, req model.UpdateAccountRequest) (model.User, error) {
	args := m.Called(ctx, identity, req)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockAccountService) UpdateAvatar(ctx context.Context, identity model.User, upload *model.Upload) (model.User, error) {
	args := m.Called(ctx, identity, upload)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockAccountService) UpdateCoverImage(ctx context.Context, identity model.User, upload *model.Upload) (model.User, error) {
	args := m.Called(ctx, identity, upload)
	return args.Get(0).(model.User), args.Error(1)
}

type mockChannelService struct {
	mock.Mock
}

func (m *mockChannelService) Profile(ctx context.Context, viewer model.User, username string) (model.ChannelProfile, error) {
	args := m.Called(ctx, viewer, username)
	return args.Get(0).(model.ChannelProfile), args.Error(1)
}

func (m *mockChannelService) Subscribe(ctx context.Context, viewer model.User, username string) (model.ChannelProfile, error) {
	args := m.Called(ctx, viewer, username)
	return args.Get(0).(model.ChannelProfile), args.Error(1)
}

func (m *mockChannelService) Unsubscribe(ctx context.Context, viewer model.User, username string) (model.ChannelProfile, error) {
	args := m.Called(ctx, viewer, username)
	return args.Get(0).(model.ChannelProfile), args.Error(1)
}
