package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-videotube/api"
	"go-videotube/internal/config"
	"go-videotube/internal/database"
	"go-videotube/internal/handler"
	"go-videotube/internal/media"
	"go-videotube/internal/middleware"
	"go-videotube/internal/repository"
	"go-videotube/internal/router"
	"go-videotube/internal/service"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	channelRepo := repository.NewChannelRepository(pool)
	slog.Info("database ready")

	store, mediaHandler, err := newMediaStore(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize media store: %w", err)
	}

	tokenService, err := service.NewTokenService(userRepo, tokenRepo,
		cfg.AccessTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenSecret, cfg.RefreshTokenTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	accountService := service.NewAccountService(userRepo, tokenService, store)
	channelService := service.NewChannelService(channelRepo)

	cookies := handler.CookieOptions{
		Secure:     cfg.CookieSecure,
		SameSite:   cfg.CookieSameSite,
		Domain:     cfg.CookieDomain,
		AccessTTL:  tokenService.AccessTTL(),
		RefreshTTL: tokenService.RefreshTTL(),
	}

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(tokenService, userRepo), router.Handlers{
		Account: handler.NewAccountHandler(accountService, cookies, cfg.MaxUploadSize),
		Channel: handler.NewChannelHandler(channelService),
		Health:  handler.NewHealthHandler(db),
		Docs:    handler.NewDocsHandler(api.OpenAPI),
		Media:   mediaHandler,
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		cleanupFuncs: []func(){
			db.Close,
		},
	}, nil
}

// newMediaStore picks the configured backend. Only the local backend serves
// files itself.
func newMediaStore(ctx context.Context, cfg *config.Config) (media.Store, http.Handler, error) {
	switch cfg.MediaBackend {
	case config.MediaBackendS3:
		store, err := media.NewS3Store(ctx, media.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, nil, err
		}
		slog.Info("media backend ready", "backend", "s3", "bucket", cfg.S3Bucket)
		return store, nil, nil
	default:
		store, err := media.NewLocalStore(cfg.MediaRoot, cfg.MediaPublicURL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("media backend ready", "backend", "local", "root", store.RootAbs())
		return store, store.Handler(), nil
	}
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err, ok := <-serveErr:
		a.cleanup()
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup()
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

func (a *App) cleanup() {
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}
}
