// Package media stores user images (avatars, cover images) as opaque blobs
// on an external host and hands back the public URL for each one.
package media

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"go-videotube/internal/model"
)

const (
	FolderAvatars = "avatars"
	FolderCovers  = "covers"
)

type Asset struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Store is implemented by every media backend. Neither operation is retried.
type Store interface {
	Upload(ctx context.Context, folder string, upload model.Upload) (Asset, error)
	// Delete accepts either a URL previously returned by Upload or a bare key.
	Delete(ctx context.Context, urlOrKey string) error
}

// objectKey builds a collision-free key that keeps the upload's extension.
func objectKey(folder string, upload model.Upload) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(upload.Filename)))
	if !IsImageExtension(ext) {
		ext = extensionForMIME(upload.ContentType)
	}
	return path.Join(folder, uuid.NewString()+ext)
}

// keyFromURL strips baseURL from a public URL. Values that are not URLs are
// returned unchanged and treated as keys.
func keyFromURL(baseURL string, urlOrKey string) (string, bool) {
	value := strings.TrimSpace(urlOrKey)
	if value == "" {
		return "", false
	}

	prefix := strings.TrimRight(baseURL, "/") + "/"
	if strings.HasPrefix(value, prefix) {
		return strings.TrimPrefix(value, prefix), true
	}

	if strings.Contains(value, "://") {
		return "", false
	}

	return strings.TrimPrefix(value, "/"), true
}
