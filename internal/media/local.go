package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go-videotube/internal/model"
)

// LocalStore keeps media on the local filesystem and serves it through
// Handler. It is meant for development and single-node deployments.
type LocalStore struct {
	resolver *keyResolver
	baseURL  string
}

func NewLocalStore(root string, publicBaseURL string) (*LocalStore, error) {
	resolver, err := newKeyResolver(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(resolver.RootAbs(), 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}

	return &LocalStore{resolver: resolver, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

func (s *LocalStore) RootAbs() string {
	return s.resolver.RootAbs()
}

func (s *LocalStore) Upload(ctx context.Context, folder string, upload model.Upload) (Asset, error) {
	if upload.Body == nil {
		return Asset{}, fmt.Errorf("upload %q has no body", upload.Filename)
	}

	key := objectKey(folder, upload)
	resolved, err := s.resolver.Resolve(key)
	if err != nil {
		return Asset{}, err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return Asset{}, fmt.Errorf("create parent directory: %w", err)
	}

	file, err := os.OpenFile(resolved, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return Asset{}, fmt.Errorf("create media file: %w", err)
	}

	if _, err := io.Copy(file, contextReader{ctx: ctx, r: upload.Body}); err != nil {
		_ = file.Close()
		_ = os.Remove(resolved)
		return Asset{}, fmt.Errorf("write media file: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(resolved)
		return Asset{}, fmt.Errorf("close media file: %w", err)
	}

	slog.DebugContext(ctx, "media stored", "backend", "local", "key", key)
	return Asset{Key: key, URL: s.baseURL + "/" + key}, nil
}

func (s *LocalStore) Delete(ctx context.Context, urlOrKey string) error {
	key, ok := keyFromURL(s.baseURL, urlOrKey)
	if !ok {
		return model.ErrMediaNotFound
	}

	resolved, err := s.resolver.Resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(resolved); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.ErrMediaNotFound
		}
		return fmt.Errorf("remove media %q: %w", key, err)
	}

	slog.DebugContext(ctx, "media deleted", "backend", "local", "key", key)
	return nil
}

// Handler serves stored files; mount it with the public prefix stripped.
func (s *LocalStore) Handler() http.Handler {
	return http.FileServer(noDirFS{http.Dir(s.resolver.RootAbs())})
}

// contextReader stops a copy once the request context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// noDirFS hides directory listings.
type noDirFS struct {
	fs http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}

	return f, nil
}
