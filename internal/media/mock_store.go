package media

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-videotube/internal/model"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upload(ctx context.Context, folder string, upload model.Upload) (Asset, error) {
	args := m.Called(ctx, folder, upload)
	return args.Get(0).(Asset), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, urlOrKey string) error {
	args := m.Called(ctx, urlOrKey)
	return args.Error(0)
}
