package media

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-videotube/internal/model"
)

func newLocalUpload(name string, body string) model.Upload {
	return model.Upload{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(body)),
		Body:        bytes.NewReader([]byte(body)),
	}
}

func TestLocalStoreUploadAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "http://localhost:8000/media/")
	require.NoError(t, err)

	asset, err := store.Upload(context.Background(), FolderAvatars, newLocalUpload("me.PNG", "png-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(asset.Key, "avatars/"))
	assert.True(t, strings.HasSuffix(asset.Key, ".png"))
	assert.Equal(t, "http://localhost:8000/media/"+asset.Key, asset.URL)

	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(asset.Key)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))

	require.NoError(t, store.Delete(context.Background(), asset.URL))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(asset.Key)))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, store.Delete(context.Background(), asset.URL), model.ErrMediaNotFound)
}

func TestLocalStoreUploadsGetDistinctKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost/media")
	require.NoError(t, err)

	first, err := store.Upload(context.Background(), FolderCovers, newLocalUpload("c.jpg", "a"))
	require.NoError(t, err)
	second, err := store.Upload(context.Background(), FolderCovers, newLocalUpload("c.jpg", "b"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)
}

func TestLocalStoreDeleteRejectsForeignURL(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost/media")
	require.NoError(t, err)

	assert.ErrorIs(t, store.Delete(context.Background(), "https://elsewhere.example/avatars/a.png"), model.ErrMediaNotFound)
	assert.Error(t, store.Delete(context.Background(), "../../etc/passwd"))
}

func TestLocalStoreUploadHonorsCanceledContext(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "http://localhost/media")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Upload(ctx, FolderAvatars, newLocalUpload("a.png", "data"))
	require.Error(t, err)

	entries, readErr := os.ReadDir(filepath.Join(root, FolderAvatars))
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestLocalStoreHandlerServesFilesButNotDirectories(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost/media")
	require.NoError(t, err)

	asset, err := store.Upload(context.Background(), FolderAvatars, newLocalUpload("a.png", "image"))
	require.NoError(t, err)

	handler := http.StripPrefix("/media", store.Handler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/"+asset.Key, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image", rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/avatars/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
