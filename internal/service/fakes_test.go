package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-videotube/internal/model"
)

// memoryUsers is an in-memory users table shared by the account and token
// services under test.
type memoryUsers struct {
	mu      sync.Mutex
	byID    map[string]model.User
	writes  int
	findErr error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[string]model.User{}}
}

func (m *memoryUsers) add(t *testing.T, username string, email string, password string) model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		FullName:     strings.ToUpper(username[:1]) + username[1:],
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	m.mu.Lock()
	m.byID[u.ID] = u
	m.mu.Unlock()
	return u
}

func (m *memoryUsers) get(id string) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id]
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return model.User{}, m.findErr
	}
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryUsers) FindByUsernameOrEmail(_ context.Context, username string, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	username = strings.ToLower(strings.TrimSpace(username))
	for _, u := range m.byID {
		if (username != "" && u.Username == username) || (email != "" && strings.EqualFold(u.Email, email)) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (m *memoryUsers) ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	username = strings.ToLower(strings.TrimSpace(username))
	for _, u := range m.byID {
		if u.Username == username || strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryUsers) Create(_ context.Context, u model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Username == u.Username || strings.EqualFold(existing.Email, u.Email) {
			return model.ErrUserAlreadyExists
		}
	}
	m.writes++
	m.byID[u.ID] = u
	return nil
}

func (m *memoryUsers) patch(id string, fn func(*model.User)) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	fn(&u)
	m.writes++
	m.byID[id] = u
	return u, nil
}

func (m *memoryUsers) UpdateAccount(_ context.Context, id string, fullName string, email string) (model.User, error) {
	m.mu.Lock()
	for otherID, other := range m.byID {
		if otherID != id && strings.EqualFold(other.Email, email) {
			m.mu.Unlock()
			return model.User{}, model.ErrUserAlreadyExists
		}
	}
	m.mu.Unlock()
	return m.patch(id, func(u *model.User) { u.FullName, u.Email = fullName, email })
}

func (m *memoryUsers) UpdateAvatar(_ context.Context, id string, url string) (model.User, error) {
	return m.patch(id, func(u *model.User) { u.Avatar = url })
}

func (m *memoryUsers) UpdateCoverImage(_ context.Context, id string, url string) (model.User, error) {
	return m.patch(id, func(u *model.User) { u.CoverImage = url })
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id string, hash string) error {
	_, err := m.patch(id, func(u *model.User) { u.PasswordHash = hash })
	return err
}

func (m *memoryUsers) Store(_ context.Context, userID string, token string) error {
	_, err := m.patch(userID, func(u *model.User) { u.RefreshToken = &token })
	return err
}

func (m *memoryUsers) Revoke(_ context.Context, userID string) error {
	_, err := m.patch(userID, func(u *model.User) { u.RefreshToken = nil })
	return err
}

func pngUpload(t *testing.T, name string) *model.Upload {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return &model.Upload{
		Filename: name,
		Size:     int64(buf.Len()),
		Body:     bytes.NewReader(buf.Bytes()),
	}
}

func textUpload(name string) *model.Upload {
	body := []byte("just some words, definitely not pixels")
	return &model.Upload{Filename: name, Size: int64(len(body)), Body: bytes.NewReader(body)}
}

func newTestTokenService(t *testing.T, users *memoryUsers) *TokenService {
	t.Helper()

	svc, err := NewTokenService(users, users, "access-secret", 15*time.Minute, "refresh-secret", 240*time.Hour)
	require.NoError(t, err)
	return svc
}
