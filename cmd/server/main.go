package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"yatube/internal/config"
	"yatube/internal/db"
	"yatube/internal/logger"
	"yatube/internal/middleware"
	"yatube/internal/router"
	"yatube/internal/storage"
	"yatube/internal/utils"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// pageCacheSize bounds the in-process page cache.
const pageCacheSize = 500

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, sync := logger.Init(cfg.Env, cfg.LogLevel)
	defer sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	// Initialize Database
	if err := db.Init(cfg); err != nil {
		return err
	}

	cache, err := utils.NewPageCache(ctx, cfg.RedisURL, pageCacheSize)
	if err != nil {
		return err
	}

	store, err := newImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/media"})))

	// Setup Sessions
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 3600,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("yatube_session", sessionStore))

	templates, err := router.LoadTemplates(cfg.TemplatesDir)
	if err != nil {
		return err
	}
	r.HTMLRender = templates

	// Static Assets
	r.Static("/static", cfg.StaticDir)
	if cfg.MediaBackend == config.MediaLocal {
		r.Static("/media", cfg.MediaRoot)
	}

	r.Use(middleware.LoadUser(), middleware.RequestLogger(log))

	router.RegisterRoutes(r, router.Deps{
		Cache:         cache,
		Store:         store,
		IndexCacheTTL: cfg.IndexCacheTTL,
		SiteURL:       cfg.SiteURL,
	})

	log.Info("Yatube server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	return r.Run(":" + cfg.Port)
}

func newImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	switch cfg.MediaBackend {
	case config.MediaMinIO:
		return storage.NewMinIOStore(ctx, storage.MinIOOptions{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			PublicURL: cfg.MinIOPublicURL,
		})
	default:
		return storage.NewLocalStore(cfg.MediaRoot, "/media")
	}
}
